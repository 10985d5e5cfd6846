// Package feeds fetches and normalizes topic searches from the feed provider.
package feeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// HardEntryCap bounds how many raw entries one fetch may return.
	HardEntryCap = 8

	DefaultProviderID    = "google_news"
	DefaultProviderName  = "Google News"
	DefaultURLTemplate   = "https://news.google.com/rss/search?q={query}&hl=en-{region}&gl={region}&ceid={region}:en"
	DefaultSourceChannel = "Google News"
)

// Provider describes the single feed provider the client talks to.
type Provider struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	URLTemplate   string         `json:"url_template" yaml:"url_template"`
	DefaultSource string         `json:"default_source" yaml:"default_source"`
	MaxEntries    int            `json:"max_entries" yaml:"max_entries"`
	Config        map[string]any `json:"config" yaml:"config"`
}

type providerFile struct {
	Provider Provider `json:"provider" yaml:"provider"`
}

// DefaultProvider returns the built-in Google News search provider.
func DefaultProvider() Provider {
	return sanitizeProvider(Provider{
		ID:            DefaultProviderID,
		Name:          DefaultProviderName,
		URLTemplate:   DefaultURLTemplate,
		DefaultSource: DefaultSourceChannel,
		MaxEntries:    HardEntryCap,
	})
}

// LoadProvider loads the provider definition from a YAML/JSON file.
// An empty path yields DefaultProvider.
func LoadProvider(path string) (Provider, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultProvider(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Provider{}, fmt.Errorf("open feed provider file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Provider{}, fmt.Errorf("read feed provider file: %w", err)
	}

	pf, err := parseProviderFile(raw, filepath.Ext(path))
	if err != nil {
		return Provider{}, err
	}

	p := sanitizeProvider(pf.Provider)
	if err := validateProvider(p); err != nil {
		return Provider{}, fmt.Errorf("feed provider: %w", err)
	}
	return p, nil
}

type unmarshalFn func([]byte, any) error

func parseProviderFile(data []byte, ext string) (providerFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var pf providerFile
		if err := d.fn(data, &pf); err == nil {
			return pf, nil
		}
	}

	return providerFile{}, errors.New("feed provider file format not recognized (expected YAML or JSON)")
}

func sanitizeProvider(p Provider) Provider {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.URLTemplate = strings.TrimSpace(p.URLTemplate)
	p.DefaultSource = strings.TrimSpace(p.DefaultSource)

	if p.DefaultSource == "" {
		p.DefaultSource = p.Name
	}
	if p.DefaultSource == "" {
		p.DefaultSource = DefaultSourceChannel
	}
	if p.MaxEntries <= 0 || p.MaxEntries > HardEntryCap {
		p.MaxEntries = HardEntryCap
	}
	if p.Config == nil {
		p.Config = map[string]any{}
	}
	return p
}

func validateProvider(p Provider) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.URLTemplate == "" {
		return fmt.Errorf("url_template is required for provider %q", p.ID)
	}
	if !strings.Contains(p.URLTemplate, "{query}") {
		return fmt.Errorf("url_template for provider %q must contain {query}", p.ID)
	}
	return nil
}

// BuildURL renders the search URL for a topic and region.
func (p Provider) BuildURL(topic, region string) string {
	r := strings.NewReplacer(
		"{query}", url.QueryEscape(strings.TrimSpace(topic)),
		"{region}", url.QueryEscape(strings.ToUpper(strings.TrimSpace(region))),
	)
	return r.Replace(p.URLTemplate)
}
