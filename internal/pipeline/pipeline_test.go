package pipeline

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/neura-briefing/internal/domain"
)

type fakeFetcher struct {
	items   map[string][]domain.NewsItem
	errs    map[string]error
	calls   []string
	regions []string
	ctx     context.Context
}

func (f *fakeFetcher) Fetch(ctx context.Context, topic, region string) ([]domain.NewsItem, error) {
	f.ctx = ctx
	f.calls = append(f.calls, topic)
	f.regions = append(f.regions, region)
	if err := f.errs[topic]; err != nil {
		return nil, err
	}
	return f.items[topic], nil
}

type fakeSummarizer struct {
	chunks  []string
	err     error
	calls   int
	sets    []domain.TopicSet
	ctx     context.Context
	yielded int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, set domain.TopicSet) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f.ctx = ctx
		f.calls++
		f.sets = append(f.sets, set)
		acc := ""
		for _, c := range f.chunks {
			acc += c
			f.yielded++
			if !yield(acc, nil) {
				return
			}
		}
		if f.err != nil {
			yield("❌ Error: "+f.err.Error(), &domain.SummarizationError{Backend: "fake", Err: f.err})
		}
	}
}

func at(hour int) time.Time {
	return time.Date(2025, time.November, 17, hour, 0, 0, 0, time.UTC)
}

func fixedClock() time.Time {
	return time.Date(2025, time.November, 17, 10, 30, 5, 0, time.UTC)
}

func newTestPipeline(t *testing.T, f *fakeFetcher, s *fakeSummarizer) *Pipeline {
	t.Helper()
	p, err := New(Deps{Fetcher: f, Summarizer: s, DefaultRegion: "IN", Clock: fixedClock})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return p
}

func collect(seq iter.Seq[Snapshot]) []Snapshot {
	var out []Snapshot
	for s := range seq {
		out = append(out, s)
	}
	return out
}

func stages(snaps []Snapshot) []Stage {
	out := make([]Stage, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.Stage)
	}
	return out
}

func TestRunQuantumComputingEndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{items: map[string][]domain.NewsItem{
		"Quantum Computing": {
			{Title: "Older qubit news", Source: "Wire", Published: at(1)},
			{Title: "Fresh qubit record", Source: "Nature", Published: at(9)},
			{Title: "Fresh qubit record!", Source: "Dup", Published: at(10)},
		},
	}}
	summarizer := &fakeSummarizer{chunks: []string{"## Quantum", " outlook"}}
	p := newTestPipeline(t, fetcher, summarizer)

	snaps := collect(p.Run(context.Background(), []string{"Quantum Computing", "", ""}, "US"))

	want := []Stage{StageValidating, StageFetching, StageAggregating, StageSummarizing, StageSummarizing, StageDone}
	got := stages(snaps)
	if len(got) != len(want) {
		t.Fatalf("expected stages %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if v, ok := snaps[1].Progress.Get(); !ok || v != 0.0 {
		t.Fatalf("expected fetching progress 0.0, got %v (set=%v)", v, ok)
	}
	if snaps[1].Topic != "Quantum Computing" {
		t.Fatalf("expected fetching topic, got %q", snaps[1].Topic)
	}
	if v, ok := snaps[2].Progress.Get(); !ok || v != 0.6 {
		t.Fatalf("expected aggregating progress 0.6, got %v (set=%v)", v, ok)
	}

	if len(fetcher.regions) != 1 || fetcher.regions[0] != "US" {
		t.Fatalf("expected one fetch for region US, got %v", fetcher.regions)
	}
	if summarizer.calls != 1 {
		t.Fatalf("expected summarizer invoked once, got %d", summarizer.calls)
	}
	if topics := summarizer.sets[0].Topics(); len(topics) != 1 || topics[0] != "Quantum Computing" {
		t.Fatalf("unexpected summarizer topics: %v", topics)
	}

	var st State
	for _, s := range snaps {
		st.Apply(s)
	}
	if st.Stage != StageDone || st.Err != nil {
		t.Fatalf("expected clean done state, got %v err=%v", st.Stage, st.Err)
	}
	if st.Summary != "## Quantum outlook" {
		t.Fatalf("unexpected summary: %q", st.Summary)
	}
	if st.Progress != 1.0 {
		t.Fatalf("expected progress 1.0, got %v", st.Progress)
	}
	if len(st.Table) != 2 {
		t.Fatalf("expected 2 deduplicated rows, got %d", len(st.Table))
	}
	for _, row := range st.Table {
		if row.Topic != "Quantum Computing" {
			t.Fatalf("unexpected row topic: %+v", row)
		}
	}
	if st.Table[0].Source != "Nature" {
		t.Fatalf("expected most recent first-seen row first, got %+v", st.Table[0])
	}
	if st.View != ViewResults {
		t.Fatalf("expected results view, got %v", st.View)
	}
}

func TestRunOrderingAndMonotonicVisibility(t *testing.T) {
	fetcher := &fakeFetcher{items: map[string][]domain.NewsItem{
		"Space": {
			{Title: "Rocket lands", Source: "A", Published: at(3)},
			{Title: "Probe wakes", Source: "B", Published: at(7)},
		},
		"AI": {
			{Title: "Model ships", Source: "C", Published: at(8)},
		},
	}}
	p := newTestPipeline(t, fetcher, &fakeSummarizer{chunks: []string{"ok"}})

	var prev []domain.AggregateRow
	var st State
	for s := range p.Run(context.Background(), []string{"Space", "AI"}, "IN") {
		st.Apply(s)
		if len(st.Table) < len(prev) {
			t.Fatalf("stage %v dropped rows: %d -> %d", s.Stage, len(prev), len(st.Table))
		}
		for i := range prev {
			if st.Table[i] != prev[i] {
				t.Fatalf("stage %v changed row %d: %+v -> %+v", s.Stage, i, prev[i], st.Table[i])
			}
		}
		if s.Stage == StageFetching && s.Topic == "AI" {
			rows, ok := s.Table.Get()
			if !ok || len(rows) != 2 {
				t.Fatalf("expected Space rows visible before AI fetch, got %v", rows)
			}
			if v, _ := s.Progress.Get(); v != 0.25 {
				t.Fatalf("expected progress 0.25 for second topic, got %v", v)
			}
		}
		prev = append([]domain.AggregateRow(nil), st.Table...)
	}

	wantTitles := []string{"Probe wakes", "Rocket lands", "Model ships"}
	if len(st.Table) != len(wantTitles) {
		t.Fatalf("expected %d rows, got %d", len(wantTitles), len(st.Table))
	}
	for i, title := range wantTitles {
		if st.Table[i].Title != title {
			t.Fatalf("row %d: expected %q, got %q", i, title, st.Table[i].Title)
		}
	}
}

func TestRunNoTopics(t *testing.T) {
	fetcher := &fakeFetcher{}
	summarizer := &fakeSummarizer{}
	p := newTestPipeline(t, fetcher, summarizer)

	snaps := collect(p.Run(context.Background(), []string{"", "   ", ""}, "IN"))
	if len(snaps) != 1 {
		t.Fatalf("expected a single snapshot, got %d", len(snaps))
	}
	s := snaps[0]
	if s.Stage != StageFailed {
		t.Fatalf("expected failed stage, got %v", s.Stage)
	}
	var vErr *domain.ValidationError
	if !errors.As(s.Err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", s.Err)
	}
	if got, _ := s.Summary.Get(); got != "⚠️ Please enter at least one topic." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if s.Line != "[10:30:05] Aborted: No topics entered." {
		t.Fatalf("unexpected log line: %q", s.Line)
	}
	if v, ok := s.View.Get(); !ok || v != ViewConfig {
		t.Fatalf("expected config view, got %v", v)
	}
	if len(fetcher.calls) != 0 || summarizer.calls != 0 {
		t.Fatalf("expected no fetch or summarize calls")
	}
}

func TestRunInvalidRegion(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPipeline(t, fetcher, &fakeSummarizer{})

	snaps := collect(p.Run(context.Background(), []string{"AI"}, "USA"))
	if len(snaps) != 1 || snaps[0].Stage != StageFailed {
		t.Fatalf("expected a single failed snapshot, got %v", stages(snaps))
	}
	var vErr *domain.ValidationError
	if !errors.As(snaps[0].Err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", snaps[0].Err)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("expected no fetch calls")
	}
}

func TestRunEmptyRegionUsesDefault(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPipeline(t, fetcher, &fakeSummarizer{chunks: []string{"x"}})

	collect(p.Run(context.Background(), []string{"AI"}, " "))
	if len(fetcher.regions) != 1 || fetcher.regions[0] != "IN" {
		t.Fatalf("expected default region IN, got %v", fetcher.regions)
	}
}

func TestRunKeepsFirstThreeTopics(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPipeline(t, fetcher, &fakeSummarizer{chunks: []string{"x"}})

	collect(p.Run(context.Background(), []string{" a ", "b", "", "c", "d"}, "IN"))
	want := []string{"a", "b", "c"}
	if strings.Join(fetcher.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected fetches %v, got %v", want, fetcher.calls)
	}
}

func TestRunFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{
		"Space": &domain.FetchError{Topic: "Space", Region: "IN", Err: errors.New("dial tcp: unreachable")},
	}}
	summarizer := &fakeSummarizer{chunks: []string{"never"}}
	p := newTestPipeline(t, fetcher, summarizer)

	var st State
	snaps := collect(p.Run(context.Background(), []string{"Space"}, "IN"))
	for _, s := range snaps {
		st.Apply(s)
	}

	last := snaps[len(snaps)-1]
	if last.Stage != StageFailed {
		t.Fatalf("expected failed stage, got %v", last.Stage)
	}
	var fErr *domain.FetchError
	if !errors.As(last.Err, &fErr) || fErr.Topic != "Space" {
		t.Fatalf("expected FetchError for Space, got %v", last.Err)
	}
	if last.Table.IsSet() {
		t.Fatalf("expected table left unchanged on failure")
	}
	if summarizer.calls != 0 {
		t.Fatalf("summarizer must not be invoked after a fetch failure")
	}
	if len(st.Table) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(st.Table))
	}
	if st.Summary != "⚠️ Could not fetch news for Space." {
		t.Fatalf("unexpected summary: %q", st.Summary)
	}
}

func TestRunFetchFailureWrapsPlainErrors(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{"AI": errors.New("boom")}}
	p := newTestPipeline(t, fetcher, &fakeSummarizer{})

	snaps := collect(p.Run(context.Background(), []string{"AI"}, "US"))
	var fErr *domain.FetchError
	if !errors.As(snaps[len(snaps)-1].Err, &fErr) {
		t.Fatalf("expected FetchError, got %v", snaps[len(snaps)-1].Err)
	}
	if fErr.Region != "US" {
		t.Fatalf("expected region US, got %q", fErr.Region)
	}
}

func TestRunSummarizerError(t *testing.T) {
	fetcher := &fakeFetcher{items: map[string][]domain.NewsItem{
		"AI": {{Title: "Model ships", Source: "C", Published: at(8)}},
	}}
	summarizer := &fakeSummarizer{err: errors.New("quota exceeded")}
	p := newTestPipeline(t, fetcher, summarizer)

	snaps := collect(p.Run(context.Background(), []string{"AI"}, "IN"))
	last := snaps[len(snaps)-1]
	if last.Stage != StageDone {
		t.Fatalf("expected done stage, got %v", last.Stage)
	}
	var sErr *domain.SummarizationError
	if !errors.As(last.Err, &sErr) {
		t.Fatalf("expected SummarizationError, got %v", last.Err)
	}
	if got, _ := last.Summary.Get(); got != "❌ Error: quota exceeded" {
		t.Fatalf("unexpected summary: %q", got)
	}
	if !strings.HasSuffix(last.Line, "❌ AI synthesis failed.") {
		t.Fatalf("unexpected log line: %q", last.Line)
	}

	var st State
	for _, s := range snaps {
		st.Apply(s)
	}
	if len(st.Table) != 1 {
		t.Fatalf("expected gathered rows to stay visible, got %d", len(st.Table))
	}
}

func TestRunLogsThinkingOnce(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPipeline(t, fetcher, &fakeSummarizer{chunks: []string{"a", "b", "c"}})

	snaps := collect(p.Run(context.Background(), []string{"AI"}, "IN"))
	last := snaps[len(snaps)-1]

	if n := strings.Count(last.Log, "🧠 AI is thinking..."); n != 1 {
		t.Fatalf("expected thinking logged once, got %d", n)
	}
	lines := strings.Split(last.Log, "\n")
	wantLines := []string{
		"[10:30:05] Starting analysis for 1 topics...",
		"[10:30:05] 🔍 Fetching RSS for: AI",
		"[10:30:05] Synthesizing with AI...",
		"[10:30:05] 🧠 AI is thinking...",
		"[10:30:05] ✅ Success. Intelligence briefing ready.",
	}
	if len(lines) != len(wantLines) {
		t.Fatalf("expected %d log lines, got %d: %q", len(wantLines), len(lines), last.Log)
	}
	for i := range wantLines {
		if lines[i] != wantLines[i] {
			t.Fatalf("line %d: expected %q, got %q", i, wantLines[i], lines[i])
		}
	}
}

func TestRunStreamingSummaryGrows(t *testing.T) {
	p := newTestPipeline(t, &fakeFetcher{}, &fakeSummarizer{chunks: []string{"The ", "quick ", "brief"}})

	prev := ""
	for s := range p.Run(context.Background(), []string{"AI"}, "IN") {
		if s.Stage != StageSummarizing {
			continue
		}
		text, _ := s.Summary.Get()
		if !strings.HasPrefix(text, prev) {
			t.Fatalf("summary %q does not extend %q", text, prev)
		}
		prev = text
	}
	if prev != "The quick brief" {
		t.Fatalf("unexpected final summary: %q", prev)
	}
}

func TestRunEarlyBreakCancelsContext(t *testing.T) {
	fetcher := &fakeFetcher{}
	summarizer := &fakeSummarizer{chunks: []string{"a", "b", "c"}}
	p := newTestPipeline(t, fetcher, summarizer)

	for s := range p.Run(context.Background(), []string{"AI"}, "IN") {
		if s.Stage == StageSummarizing {
			break
		}
	}

	if summarizer.yielded != 1 {
		t.Fatalf("expected summarizer to stop after the first chunk, got %d", summarizer.yielded)
	}
	if summarizer.ctx == nil || summarizer.ctx.Err() == nil {
		t.Fatalf("expected run context cancelled after early break")
	}
	if fetcher.ctx == nil || !errors.Is(fetcher.ctx.Err(), context.Canceled) {
		t.Fatalf("expected fetch context cancelled after early break")
	}
}

func TestRunIsLazy(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPipeline(t, fetcher, &fakeSummarizer{})

	_ = p.Run(context.Background(), []string{"AI"}, "IN")
	if len(fetcher.calls) != 0 {
		t.Fatalf("expected no work before iteration")
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Deps{Summarizer: &fakeSummarizer{}}); err == nil {
		t.Fatalf("expected error without fetcher")
	}
	if _, err := New(Deps{Fetcher: &fakeFetcher{}}); err == nil {
		t.Fatalf("expected error without summarizer")
	}
	if _, err := New(Deps{Fetcher: &fakeFetcher{}, Summarizer: &fakeSummarizer{}, DefaultRegion: "India"}); err == nil {
		t.Fatalf("expected error for invalid default region")
	}
}
