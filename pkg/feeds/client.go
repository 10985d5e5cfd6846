package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/pkg/httpclient"
)

const defaultHTTPTimeout = 15 * time.Second

// DefaultHTTPClient returns the resty-backed client used when none is injected.
func DefaultHTTPClient() httpclient.Client {
	return httpclient.NewRestyClient(defaultHTTPTimeout)
}

// Client fetches one topic search from the configured provider.
type Client struct {
	provider Provider
	http     httpclient.Client
	log      Logger
}

// NewClient builds a feed client. A nil http client falls back to DefaultHTTPClient.
func NewClient(p Provider, client httpclient.Client, log Logger) *Client {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strings.TrimSpace(p.URLTemplate) == "" {
		p = DefaultProvider()
	}
	return &Client{provider: sanitizeProvider(p), http: client, log: ensureLogger(log)}
}

// Provider returns the provider definition in use.
func (c *Client) Provider() Provider { return c.provider }

// Fetch searches the provider for topic in region and returns at most
// MaxEntries normalized items. Entries without a parseable date are dropped.
// Transport, status and parse failures are reported as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, topic, region string) ([]domain.NewsItem, error) {
	topic = strings.TrimSpace(topic)
	region = strings.ToUpper(strings.TrimSpace(region))

	fail := func(err error) error {
		return &domain.FetchError{Topic: topic, Region: region, Err: err}
	}

	if topic == "" {
		return nil, fail(fmt.Errorf("empty topic"))
	}

	url := c.provider.BuildURL(topic, region)
	raw, err := fetchFeed(ctx, c.http, url, c.provider.ID, Headers(c.provider))
	if err != nil {
		return nil, fail(err)
	}

	entries, err := parseEntries(raw)
	if err != nil {
		return nil, fail(fmt.Errorf("decode %s feed: %w", c.provider.ID, err))
	}

	if len(entries) > c.provider.MaxEntries {
		entries = entries[:c.provider.MaxEntries]
	}

	items := make([]domain.NewsItem, 0, len(entries))
	for _, e := range entries {
		published, ok := publishedAt(e)
		if !ok {
			c.log.DebugObj("skipping feed entry without parseable date", "entry", map[string]string{
				"topic":     topic,
				"title":     e.Title,
				"published": e.Published,
			})
			continue
		}

		source := cleanText(e.Source)
		if source == "" {
			source = c.provider.DefaultSource
		}

		items = append(items, domain.NewsItem{
			Title:     cleanText(e.Title),
			Source:    source,
			Published: published,
		})
	}

	return items, nil
}
