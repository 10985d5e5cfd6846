// Package summarizer turns an aggregated topic set into a streamed briefing.
package summarizer

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/internal/logger"
	"github.com/samvad-hq/neura-briefing/pkg/llm"
)

const (
	// NoDataMessage is the single element produced for an empty topic set.
	NoDataMessage = "No data gathered."
	// ErrorPrefix marks a summary that is a failure message.
	ErrorPrefix = "❌ Error: "
)

var errEmptyOutput = errors.New("generation returned no text")

// Service accumulates a backend's text stream into growing summaries.
type Service struct {
	client llm.StreamClient
	model  string
	log    logger.Logger
}

func New(client llm.StreamClient, model string, log logger.Logger) *Service {
	name := ""
	if client != nil {
		name = client.Name()
	}
	return &Service{
		client: client,
		model:  llm.ResolveModel(name, model),
		log:    logger.Ensure(log),
	}
}

// Model returns the model identifier sent to the backend.
func (s *Service) Model() string { return s.model }

// Summarize yields the full summary text after every non-empty fragment.
// Any backend failure, or a stream without text, ends the sequence with one
// ErrorPrefix element paired with a *domain.SummarizationError.
func (s *Service) Summarize(ctx context.Context, set domain.TopicSet) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if set.Len() == 0 {
			yield(NoDataMessage, nil)
			return
		}
		if s == nil || s.client == nil {
			s.fail(yield, "none", errors.New("summarizer is not initialized"))
			return
		}

		prompt := BuildPrompt(set)
		s.log.DebugObj("summarization started", "summarize_request", map[string]any{
			"backend":      s.client.Name(),
			"model":        s.model,
			"topics":       set.Topics(),
			"prompt_chars": len(prompt),
		})

		var acc strings.Builder
		for fragment, err := range s.client.Stream(ctx, s.model, prompt) {
			if err != nil {
				s.fail(yield, s.client.Name(), err)
				return
			}
			if fragment == "" {
				continue
			}
			acc.WriteString(fragment)
			if !yield(acc.String(), nil) {
				return
			}
		}

		if acc.Len() == 0 {
			s.fail(yield, s.client.Name(), errEmptyOutput)
			return
		}

		s.log.InfoObj("summarization completed", "summarize_result", map[string]any{
			"backend": s.client.Name(),
			"chars":   acc.Len(),
		})
	}
}

func (s *Service) fail(yield func(string, error) bool, backend string, err error) {
	yield(ErrorPrefix+err.Error(), &domain.SummarizationError{Backend: backend, Err: err})
}
