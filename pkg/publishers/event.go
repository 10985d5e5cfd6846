package publishers

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/neura-briefing/internal/domain"
)

// Event is a finished briefing exported downstream.
type Event struct {
	ID          string                `json:"id"`
	RunID       string                `json:"run_id"`
	Region      string                `json:"region"`
	Topics      []string              `json:"topics"`
	Rows        []domain.AggregateRow `json:"rows"`
	Summary     string                `json:"summary"`
	CompletedAt time.Time             `json:"completed_at"`
}

// NewEvent constructs an Event for a completed run.
func NewEvent(runID, region string, topics []string, rows []domain.AggregateRow, summary string) Event {
	return Event{
		ID:          uuid.NewString(),
		RunID:       runID,
		Region:      region,
		Topics:      slices.Clone(topics),
		Rows:        slices.Clone(rows),
		Summary:     summary,
		CompletedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"run_id": e.RunID,
		"region": e.Region,
	}
}
