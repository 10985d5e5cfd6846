package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/neura-briefing/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const preferencesBucket = "preferences"

// boltStore implements a Store backed by BoltDB, one JSON document per profile.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(preferencesBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) LoadPreferences(_ context.Context, profile string) (domain.PreferenceRecord, bool, error) {
	var rec domain.PreferenceRecord
	if b == nil || b.db == nil {
		return rec, false, nil
	}

	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return fmt.Errorf("preferences bucket missing")
		}
		if v := bucket.Get([]byte(profileKey(profile))); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return rec, false, err
	}
	if raw == nil {
		return rec, false, nil
	}

	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.PreferenceRecord{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	return rec, true, nil
}

func (b *boltStore) SavePreferences(_ context.Context, profile string, rec domain.PreferenceRecord) error {
	if b == nil || b.db == nil {
		return domain.ErrPersistenceDisabled
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return fmt.Errorf("preferences bucket missing")
		}
		return bucket.Put([]byte(profileKey(profile)), raw)
	})
}
