// Package pipeline runs a briefing: validate topics, fetch and dedupe each
// one in order, aggregate, then stream the summary as progress snapshots.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/samvad-hq/neura-briefing/internal/config"
	"github.com/samvad-hq/neura-briefing/internal/dedupe"
	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/internal/logger"
)

const (
	fetchShare        = 0.5
	aggregateProgress = 0.6
	doneProgress      = 1.0

	msgNoTopics      = "⚠️ Please enter at least one topic."
	msgInitializing  = "📡 Initializing scan..."
	msgThinking      = "🧠 AI is thinking..."
	msgSynthesizing  = "Synthesizing with AI..."
	msgSuccess       = "✅ Success. Intelligence briefing ready."
	msgSummaryFailed = "❌ AI synthesis failed."
)

// Deps wires the collaborators of a pipeline. Clock stamps log lines and
// defaults to time.Now.
type Deps struct {
	Fetcher       Fetcher
	Summarizer    Summarizer
	Logger        logger.Logger
	DefaultRegion string
	Clock         func() time.Time
}

// Pipeline is safe for concurrent runs; each Run owns its log, rows and topic set.
type Pipeline struct {
	fetcher       Fetcher
	summarizer    Summarizer
	log           logger.Logger
	defaultRegion string
	now           func() time.Time
}

// New constructs a pipeline from deps.
func New(deps Deps) (*Pipeline, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("pipeline: fetcher is required")
	}
	if deps.Summarizer == nil {
		return nil, errors.New("pipeline: summarizer is required")
	}

	region := strings.ToUpper(strings.TrimSpace(deps.DefaultRegion))
	if region == "" {
		region = "IN"
	}
	if !config.IsRegionCode(region) {
		return nil, fmt.Errorf("pipeline: invalid default region %q", deps.DefaultRegion)
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		fetcher:       deps.Fetcher,
		summarizer:    deps.Summarizer,
		log:           logger.Ensure(deps.Logger),
		defaultRegion: region,
		now:           now,
	}, nil
}

// NormalizeTopics trims topics, drops empty ones and keeps at most domain.MaxTopics.
func NormalizeTopics(topics []string) []string {
	out := make([]string, 0, domain.MaxTopics)
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == domain.MaxTopics {
			break
		}
	}
	return out
}

// Run returns the lazy snapshot sequence of one briefing. Nothing happens
// until the sequence is ranged over; stopping early cancels in-flight work.
func (p *Pipeline) Run(ctx context.Context, topics []string, region string) iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		r := &run{p: p, yield: yield}
		r.execute(ctx, topics, region)
	}
}

type run struct {
	p     *Pipeline
	yield func(Snapshot) bool
	lines []string
	rows  []domain.AggregateRow
	set   domain.TopicSet
}

func (r *run) logLine(msg string) string {
	line := fmt.Sprintf("[%s] %s", r.p.now().Format("15:04:05"), msg)
	r.lines = append(r.lines, line)
	return line
}

func (r *run) table() []domain.AggregateRow {
	return slices.Clone(r.rows)
}

func (r *run) emit(s Snapshot) bool {
	s.Log = strings.Join(r.lines, "\n")
	return r.yield(s)
}

func (r *run) execute(ctx context.Context, topics []string, region string) {
	p := r.p

	valid := NormalizeTopics(topics)
	if len(valid) == 0 {
		r.emit(Snapshot{
			Stage:   StageFailed,
			Summary: Set(msgNoTopics),
			Line:    r.logLine("Aborted: No topics entered."),
			Table:   Set([]domain.AggregateRow{}),
			View:    Set(ViewConfig),
			Err:     &domain.ValidationError{Reason: "no topics entered"},
		})
		return
	}

	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = p.defaultRegion
	}
	if !config.IsRegionCode(region) {
		r.emit(Snapshot{
			Stage:   StageFailed,
			Summary: Set(fmt.Sprintf("⚠️ Unsupported region code %q.", region)),
			Line:    r.logLine("Aborted: Invalid region."),
			Table:   Set([]domain.AggregateRow{}),
			View:    Set(ViewConfig),
			Err:     &domain.ValidationError{Reason: fmt.Sprintf("invalid region %q", region)},
		})
		return
	}

	if !r.emit(Snapshot{
		Stage:    StageValidating,
		Progress: Set(0.0),
		Summary:  Set(msgInitializing),
		Line:     r.logLine(fmt.Sprintf("Starting analysis for %d topics...", len(valid))),
		Table:    Set([]domain.AggregateRow{}),
		View:     Set(ViewResults),
	}) {
		return
	}

	if !r.fetchAll(ctx, valid, region) {
		return
	}

	if !r.emit(Snapshot{
		Stage:    StageAggregating,
		Progress: Set(aggregateProgress),
		Line:     r.logLine(msgSynthesizing),
		Table:    Set(r.table()),
	}) {
		return
	}

	r.summarize(ctx)
}

// fetchAll reports whether the run should continue.
func (r *run) fetchAll(ctx context.Context, topics []string, region string) bool {
	p := r.p
	n := float64(len(topics))

	for i, topic := range topics {
		if !r.emit(Snapshot{
			Stage:    StageFetching,
			Topic:    topic,
			Progress: Set(float64(i) / n * fetchShare),
			Line:     r.logLine("🔍 Fetching RSS for: " + topic),
			Table:    Set(r.table()),
		}) {
			return false
		}

		items, err := p.fetcher.Fetch(ctx, topic, region)
		if err != nil {
			var fetchErr *domain.FetchError
			if !errors.As(err, &fetchErr) {
				fetchErr = &domain.FetchError{Topic: topic, Region: region, Err: err}
			}
			p.log.ErrorObj("topic fetch failed", "fetch_error", map[string]any{
				"topic":  topic,
				"region": region,
				"error":  err.Error(),
			})
			r.emit(Snapshot{
				Stage:   StageFailed,
				Topic:   topic,
				Summary: Set(fmt.Sprintf("⚠️ Could not fetch news for %s.", topic)),
				Line:    r.logLine("Aborted: " + err.Error()),
				Err:     fetchErr,
			})
			return false
		}

		res := dedupe.Topic(topic, items)
		r.set = append(r.set, res)
		r.rows = append(r.rows, res.Rows()...)

		p.log.DebugObj("topic fetched", "topic_result", map[string]any{
			"topic":   topic,
			"fetched": len(items),
			"kept":    len(res.Items),
		})
	}
	return true
}

func (r *run) summarize(ctx context.Context) {
	p := r.p
	thinking := false

	for text, err := range p.summarizer.Summarize(ctx, r.set) {
		if err != nil {
			var sumErr *domain.SummarizationError
			if !errors.As(err, &sumErr) {
				sumErr = &domain.SummarizationError{Backend: "unknown", Err: err}
			}
			p.log.ErrorObj("summarization failed", "summarize_error", map[string]any{
				"topics": r.set.Topics(),
				"error":  err.Error(),
			})
			r.emit(Snapshot{
				Stage:   StageDone,
				Summary: Set(text),
				Line:    r.logLine(msgSummaryFailed),
				Err:     sumErr,
			})
			return
		}

		s := Snapshot{Stage: StageSummarizing, Summary: Set(text)}
		if !thinking {
			s.Line = r.logLine(msgThinking)
			thinking = true
		}
		if !r.emit(s) {
			return
		}
	}

	r.emit(Snapshot{
		Stage:    StageDone,
		Progress: Set(doneProgress),
		Line:     r.logLine(msgSuccess),
	})
}
