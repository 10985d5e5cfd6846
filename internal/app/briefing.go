package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/neura-briefing/internal/config"
	"github.com/samvad-hq/neura-briefing/internal/logger"
	"github.com/samvad-hq/neura-briefing/internal/pipeline"
	"github.com/samvad-hq/neura-briefing/internal/storage"
	"github.com/samvad-hq/neura-briefing/internal/summarizer"
	"github.com/samvad-hq/neura-briefing/pkg/feeds"
	"github.com/samvad-hq/neura-briefing/pkg/httpclient"
	"github.com/samvad-hq/neura-briefing/pkg/llm"
	"github.com/samvad-hq/neura-briefing/pkg/publishers"
)

// Briefing is the briefing runtime shared by the CLI and the HTTP server. It
// owns the pipeline, the preference store and the optional export fanout.
type Briefing struct {
	pipeline      *pipeline.Pipeline
	prefs         *storage.Preferences
	store         storage.Store
	fanout        *publishers.Fanout
	generator     llm.StreamClient
	log           logger.Logger
	profile       string
	defaultRegion string
	newRunID      func() string
}

// NewBriefing builds a briefing runtime from config.
func NewBriefing(ctx context.Context, cfg *config.Config, log logger.Logger) (*Briefing, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	provider, err := feeds.LoadProvider(cfg.FeedProviderFile)
	if err != nil {
		return nil, fmt.Errorf("load feed provider: %w", err)
	}
	httpClient := httpclient.NewRestyClientWithOptions(httpclient.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	feedClient := feeds.NewClient(provider, httpClient, log)
	log.InfoObj("feed provider loaded", "provider_meta", map[string]any{
		"id":          provider.ID,
		"max_entries": provider.MaxEntries,
	})

	generator, err := llm.New(ctx, llm.Options{Backend: cfg.SummarizerBackend, APIKey: cfg.APIKey()})
	if err != nil {
		return nil, fmt.Errorf("init summarizer backend: %w", err)
	}
	sum := summarizer.New(generator, cfg.SummarizerModel, log)
	log.InfoObj("summarizer initialized", "summarizer_config", map[string]any{
		"backend": generator.Name(),
		"model":   sum.Model(),
	})

	pipe, err := pipeline.New(pipeline.Deps{
		Fetcher:       feedClient,
		Summarizer:    sum,
		Logger:        log,
		DefaultRegion: cfg.DefaultRegion,
	})
	if err != nil {
		generator.Close()
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, storage.Options{
		BoltPath: cfg.BBoltPath,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		generator.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":    cfg.StorageType,
		"profile": cfg.PreferencesProfile,
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		generator.Close()
		return nil, err
	}

	b := newBriefing(pipe, store, fanout, log, cfg.PreferencesProfile, cfg.DefaultRegion)
	b.generator = generator
	return b, nil
}

func newBriefing(pipe *pipeline.Pipeline, store storage.Store, fanout *publishers.Fanout, log logger.Logger, profile, defaultRegion string) *Briefing {
	log = logger.Ensure(log)
	return &Briefing{
		pipeline:      pipe,
		prefs:         storage.NewPreferences(store, log),
		store:         store,
		fanout:        fanout,
		log:           log,
		profile:       strings.TrimSpace(profile),
		defaultRegion: strings.ToUpper(strings.TrimSpace(defaultRegion)),
		newRunID:      uuid.NewString,
	}
}

// buildFanout loads the publishers file; an empty path disables export.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("briefing export disabled", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// DefaultProfile is the preference profile configured for this process.
func (b *Briefing) DefaultProfile() string {
	if b == nil || b.profile == "" {
		return "default"
	}
	return b.profile
}

// Preferences returns the preference service.
func (b *Briefing) Preferences() *storage.Preferences {
	if b == nil {
		return nil
	}
	return b.prefs
}

// Run streams one briefing run. Successful runs are exported to the
// configured publishers once the final snapshot has been delivered.
func (b *Briefing) Run(ctx context.Context, topics []string, region string) iter.Seq[pipeline.Snapshot] {
	return func(yield func(pipeline.Snapshot) bool) {
		if b == nil || b.pipeline == nil {
			yield(pipeline.Snapshot{
				Stage: pipeline.StageFailed,
				Err:   errors.New("briefing is not initialized"),
			})
			return
		}

		runID := b.newRunID()
		start := time.Now()
		valid := pipeline.NormalizeTopics(topics)
		region = b.resolveRegion(region)

		b.log.InfoObj("briefing started", "briefing_run", map[string]any{
			"run_id": runID,
			"topics": valid,
			"region": region,
		})

		var st pipeline.State
		for snap := range b.pipeline.Run(ctx, topics, region) {
			st.Apply(snap)
			if !yield(snap) {
				b.log.InfoObj("briefing abandoned", "briefing_run", map[string]any{
					"run_id": runID,
					"stage":  snap.Stage.String(),
				})
				return
			}
		}

		result := map[string]any{
			"run_id":     runID,
			"stage":      st.Stage.String(),
			"rows":       len(st.Table),
			"elapsed_ms": time.Since(start).Milliseconds(),
		}
		if st.Err != nil {
			result["error"] = st.Err.Error()
			b.log.WarnObj("briefing finished with error", "briefing_result", result)
			return
		}
		b.log.InfoObj("briefing completed", "briefing_result", result)

		if st.Stage == pipeline.StageDone {
			b.export(ctx, publishers.NewEvent(runID, region, valid, st.Table, st.Summary))
		}
	}
}

func (b *Briefing) resolveRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return b.defaultRegion
	}
	return region
}

func (b *Briefing) export(ctx context.Context, evt publishers.Event) {
	if b.fanout.Size() == 0 {
		return
	}
	count, err := b.fanout.Publish(ctx, evt)
	if err != nil {
		b.log.ErrorObj("briefing export failed", "export_error", map[string]any{
			"run_id":    evt.RunID,
			"delivered": count,
			"error":     err.Error(),
		})
		return
	}
	b.log.InfoObj("briefing exported", "export_result", map[string]any{
		"run_id":    evt.RunID,
		"delivered": count,
	})
}

// Close releases the store, the publishers and the generation backend.
func (b *Briefing) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	if err := b.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if b.store != nil {
		if err := b.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if b.generator != nil {
		if err := b.generator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close summarizer backend: %w", err))
		}
	}
	return errors.Join(errs...)
}
