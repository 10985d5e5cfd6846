package pipeline

import (
	"context"
	"iter"

	"github.com/samvad-hq/neura-briefing/internal/domain"
)

// Fetcher retrieves the normalized feed items for one topic/region pair.
type Fetcher interface {
	Fetch(ctx context.Context, topic, region string) ([]domain.NewsItem, error)
}

// Summarizer streams the accumulated summary for a topic set. Each element is
// the full text so far; a non-nil error marks the final element.
type Summarizer interface {
	Summarize(ctx context.Context, set domain.TopicSet) iter.Seq2[string, error]
}
