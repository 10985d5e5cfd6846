package feeds

import (
	"bytes"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

const customSourceKey = "source"

// rawEntry is one feed item before normalization.
type rawEntry struct {
	Title           string
	Source          string
	Published       string
	PublishedParsed *time.Time
}

// sourceTranslator keeps the RSS <source> channel name, which the default
// translator drops.
type sourceTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *sourceTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	rssFeed, ok := feed.(*rss.Feed)
	if !ok {
		return out, nil
	}
	for i, item := range rssFeed.Items {
		if i >= len(out.Items) {
			break
		}
		if item == nil || item.Source == nil {
			continue
		}
		name := strings.TrimSpace(item.Source.Title)
		if name == "" {
			continue
		}
		if out.Items[i].Custom == nil {
			out.Items[i].Custom = map[string]string{}
		}
		out.Items[i].Custom[customSourceKey] = name
	}
	return out, nil
}

func newParser() *gofeed.Parser {
	fp := gofeed.NewParser()
	fp.RSSTranslator = &sourceTranslator{}
	return fp
}

func parseEntries(data []byte) ([]rawEntry, error) {
	feed, err := newParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	entries := make([]rawEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entry := rawEntry{
			Title:           item.Title,
			Published:       item.Published,
			PublishedParsed: item.PublishedParsed,
		}
		if item.Custom != nil {
			entry.Source = item.Custom[customSourceKey]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
