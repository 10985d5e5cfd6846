// Package llm wraps the text generation backends behind one streaming interface.
package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

const (
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"

	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-haiku-4-5"
)

// StreamClient streams text fragments (deltas) generated for a prompt.
// The sequence ends after the first non-nil error.
type StreamClient interface {
	Name() string
	Stream(ctx context.Context, model, prompt string) iter.Seq2[string, error]
	Close() error
}

// Options selects and authenticates a backend.
type Options struct {
	Backend string
	APIKey  string
}

// New builds the StreamClient for opts.Backend.
func New(ctx context.Context, opts Options) (StreamClient, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, fmt.Errorf("llm: api key is required for backend %q", opts.Backend)
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendGemini:
		return NewGeminiClient(ctx, key)
	case BackendOpenAI:
		return NewOpenAIClient(key), nil
	case BackendAnthropic:
		return NewAnthropicClient(key), nil
	default:
		return nil, fmt.Errorf("llm: unsupported backend %q", opts.Backend)
	}
}

// ResolveModel returns model, or the backend default when model is empty.
func ResolveModel(backend, model string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendOpenAI:
		return DefaultOpenAIModel
	case BackendAnthropic:
		return DefaultAnthropicModel
	default:
		return DefaultGeminiModel
	}
}
