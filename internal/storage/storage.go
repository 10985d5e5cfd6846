// Package storage keeps the per-profile preference record.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/neura-briefing/internal/domain"
)

// Store loads and saves preference records keyed by profile.
type Store interface {
	Close() error
	// LoadPreferences reports found=false when the profile has no record.
	LoadPreferences(ctx context.Context, profile string) (domain.PreferenceRecord, bool, error)
	SavePreferences(ctx context.Context, profile string, rec domain.PreferenceRecord) error
}

// Options carries backend-specific settings.
type Options struct {
	BoltPath  string
	RedisURL  string
	KeyPrefix string
}

const (
	TypeNone  = "none"
	TypeBBolt = "bbolt"
	TypeRedis = "redis"

	defaultKeyPrefix = "neura:prefs:"
)

// NewStore creates the configured storage backend.
func NewStore(typ string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(opts.BoltPath) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(opts.BoltPath)
	case TypeRedis:
		if strings.TrimSpace(opts.RedisURL) == "" {
			return nil, fmt.Errorf("redis storage requires a url")
		}
		return openRedis(opts.RedisURL, opts.KeyPrefix)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if strings.TrimSpace(opts.KeyPrefix) == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	return opts
}

func profileKey(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "default"
	}
	return profile
}

type noopStore struct{}

func (noopStore) Close() error { return nil }

func (noopStore) LoadPreferences(context.Context, string) (domain.PreferenceRecord, bool, error) {
	return domain.PreferenceRecord{}, false, nil
}

func (noopStore) SavePreferences(context.Context, string, domain.PreferenceRecord) error {
	return domain.ErrPersistenceDisabled
}
