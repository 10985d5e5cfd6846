package feeds

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// cleanText strips markup and entities from feed text and collapses whitespace.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// publishedAt resolves the entry timestamp, preferring the parser's own result.
func publishedAt(e rawEntry) (time.Time, bool) {
	if e.PublishedParsed != nil && !e.PublishedParsed.IsZero() {
		return e.PublishedParsed.UTC(), true
	}
	raw := strings.TrimSpace(e.Published)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
