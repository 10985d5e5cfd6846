// Package dedupe collapses near-duplicate headlines and orders them by recency.
package dedupe

import (
	"slices"
	"strings"
	"unicode"

	"github.com/samvad-hq/neura-briefing/internal/domain"
)

// KeyLength is the number of runes kept from a normalized title.
const KeyLength = 40

// Key returns the deduplication key of a title: lowercased, letters and
// digits only, truncated to KeyLength runes.
func Key(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(title) {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			continue
		}
		b.WriteRune(r)
		n++
		if n == KeyLength {
			break
		}
	}
	return b.String()
}

// Items drops items whose key was already seen (first one wins) and returns
// the survivors sorted by Published, most recent first. The input is not modified.
func Items(items []domain.NewsItem) []domain.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.NewsItem, 0, len(items))
	for _, itm := range items {
		key := Key(itm.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, itm)
	}

	slices.SortStableFunc(out, func(a, b domain.NewsItem) int {
		return b.Published.Compare(a.Published)
	})
	return out
}

// Topic builds the TopicResult for topic from raw fetched items.
func Topic(topic string, items []domain.NewsItem) domain.TopicResult {
	return domain.TopicResult{Topic: topic, Items: Items(items)}
}
