package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samvad-hq/neura-briefing/internal/domain"
)

// redisKV is the subset of *redis.Client the store uses.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

type redisStore struct {
	client redisKV
	prefix string
}

func openRedis(url, prefix string) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return newRedisStore(redis.NewClient(opts), prefix), nil
}

func newRedisStore(client redisKV, prefix string) *redisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisStore{client: client, prefix: prefix}
}

func (r *redisStore) key(profile string) string {
	return r.prefix + profileKey(profile)
}

func (r *redisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *redisStore) LoadPreferences(ctx context.Context, profile string) (domain.PreferenceRecord, bool, error) {
	var rec domain.PreferenceRecord

	raw, err := r.client.Get(ctx, r.key(profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.PreferenceRecord{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	return rec, true, nil
}

func (r *redisStore) SavePreferences(ctx context.Context, profile string, rec domain.PreferenceRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := r.client.Set(ctx, r.key(profile), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
