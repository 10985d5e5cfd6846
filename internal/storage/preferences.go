package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/neura-briefing/internal/config"
	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/internal/logger"
)

const (
	msgSaved       = "✅ Saved."
	msgSaveFailed  = "❌ Save failed: "
	msgNotEnabled  = "Persistence not configured."
	defaultCountry = "IN"
)

// DefaultPreferences is returned when nothing is stored or the store is unreachable.
func DefaultPreferences() domain.PreferenceRecord {
	return domain.PreferenceRecord{
		Topics:  []string{"Artificial Intelligence", "Space Exploration", "Quantum Computing"},
		Country: defaultCountry,
	}
}

// SaveOutcome is the user-facing result of a save action.
type SaveOutcome struct {
	OK      bool
	Message string
	Err     error
}

// Preferences wraps a Store with default fallback and save-side normalization.
type Preferences struct {
	store Store
	log   logger.Logger
	now   func() time.Time
}

func NewPreferences(store Store, log logger.Logger) *Preferences {
	if store == nil {
		store = noopStore{}
	}
	return &Preferences{store: store, log: logger.Ensure(log), now: time.Now}
}

// Load never fails: a missing, unreadable or invalid record yields DefaultPreferences.
func (p *Preferences) Load(ctx context.Context, profile string) domain.PreferenceRecord {
	if p == nil {
		return DefaultPreferences()
	}

	rec, found, err := p.store.LoadPreferences(ctx, profile)
	if err != nil {
		p.log.WarnObj("preferences load failed, using defaults", "preferences_error", map[string]any{
			"profile": profileKey(profile),
			"error":   (&domain.PersistenceError{Op: "load", Err: err}).Error(),
		})
		return DefaultPreferences()
	}
	if !found {
		return DefaultPreferences()
	}

	rec.Country = strings.ToUpper(strings.TrimSpace(rec.Country))
	if !config.IsRegionCode(rec.Country) {
		rec.Country = defaultCountry
	}
	return rec
}

// Save trims and caps the topics, validates the country and stamps LastUpdated.
// Failures are reported in the outcome, never returned.
func (p *Preferences) Save(ctx context.Context, profile string, rec domain.PreferenceRecord) SaveOutcome {
	if p == nil {
		return SaveOutcome{Message: msgNotEnabled, Err: domain.ErrPersistenceDisabled}
	}

	topics := make([]string, 0, domain.MaxTopics)
	for _, t := range rec.Topics {
		if len(topics) == domain.MaxTopics {
			break
		}
		topics = append(topics, strings.TrimSpace(t))
	}

	country := strings.ToUpper(strings.TrimSpace(rec.Country))
	if !config.IsRegionCode(country) {
		err := &domain.ValidationError{Reason: fmt.Sprintf("invalid country %q", rec.Country)}
		return SaveOutcome{Message: msgSaveFailed + err.Error(), Err: err}
	}

	clean := domain.PreferenceRecord{
		Topics:      topics,
		Country:     country,
		LastUpdated: p.now().UTC(),
	}

	if err := p.store.SavePreferences(ctx, profile, clean); err != nil {
		if errors.Is(err, domain.ErrPersistenceDisabled) {
			return SaveOutcome{Message: msgNotEnabled, Err: err}
		}
		perr := &domain.PersistenceError{Op: "save", Err: err}
		p.log.ErrorObj("preferences save failed", "preferences_error", map[string]any{
			"profile": profileKey(profile),
			"error":   perr.Error(),
		})
		return SaveOutcome{Message: msgSaveFailed + err.Error(), Err: perr}
	}

	p.log.InfoObj("preferences saved", "preferences", map[string]any{
		"profile": profileKey(profile),
		"topics":  len(topics),
		"country": country,
	})
	return SaveOutcome{OK: true, Message: msgSaved}
}
