// Package collection implements the persisted collections on top of a
// KVStore. Each collection is one JSON array under a fixed key and every
// write rewrites the whole array.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/repositories"
)

// Storage keys. Per-user collections are namespaced with the owner ID.
const (
	KeyChatSessions = "booleanLegalAIChatSessions"
	KeyDrafts       = "dharmabotSavedDrafts"
	KeyVoicenotes   = "dharmabotVoicenotes"
	KeyResearch     = "dharmabotSavedResearch"
	KeyUsers        = "dharmabotUsers"
	KeyUserSession  = "dharmabotUserSession"
	KeyPreferences  = "dharmabotPreferences"
	KeyAudio        = "dharmabotAudio"
)

// OwnerKey returns the storage key of a per-user collection.
func OwnerKey(ownerID, key string) string {
	return ownerID + ":" + key
}

// Store is a CollectionRepository for one record type.
type Store[T repositories.Record] struct {
	kv  repositories.KVStore
	key string
	// sortByRecency is false for collections that keep insertion order
	sortByRecency bool
}

// NewStore creates a per-user collection stored under key.
func NewStore[T repositories.Record](kv repositories.KVStore, key string) *Store[T] {
	return &Store[T]{kv: kv, key: key, sortByRecency: true}
}

func (s *Store[T]) keyFor(ownerID string) string {
	if ownerID == "" {
		return s.key
	}
	return OwnerKey(ownerID, s.key)
}

// GetAll returns the collection, most recent first. Ties keep stored order.
func (s *Store[T]) GetAll(ctx context.Context, ownerID string) ([]T, error) {
	data, ok, err := s.kv.Get(ctx, s.keyFor(ownerID))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	if !ok {
		return []T{}, nil
	}

	records, err := decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if s.sortByRecency {
		SortByRecency(records)
	}
	return records, nil
}

// GetOne scans the collection for id.
func (s *Store[T]) GetOne(ctx context.Context, ownerID, id string) (T, error) {
	var zero T
	records, err := s.GetAll(ctx, ownerID)
	if err != nil {
		return zero, err
	}
	for _, r := range records {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return zero, &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", s.key, id)}
}

// Save replaces the record with the same id, or appends it.
func (s *Store[T]) Save(ctx context.Context, ownerID string, record T) error {
	return s.rewrite(ctx, ownerID, func(records []T) ([]T, error) {
		for i, r := range records {
			if r.RecordID() == record.RecordID() {
				records[i] = record
				return records, nil
			}
		}
		return append(records, record), nil
	})
}

// Delete filters id out of the collection.
func (s *Store[T]) Delete(ctx context.Context, ownerID, id string) error {
	return s.rewrite(ctx, ownerID, func(records []T) ([]T, error) {
		kept := records[:0]
		for _, r := range records {
			if r.RecordID() != id {
				kept = append(kept, r)
			}
		}
		return kept, nil
	})
}

// rewrite loads, modifies and writes back the whole collection atomically.
func (s *Store[T]) rewrite(ctx context.Context, ownerID string, fn func([]T) ([]T, error)) error {
	err := s.kv.Update(ctx, s.keyFor(ownerID), func(current []byte) ([]byte, error) {
		records := []T{}
		if current != nil {
			var err error
			if records, err = decode[T](current); err != nil {
				return nil, fmt.Errorf("decode %s: %w", s.key, err)
			}
		}
		next, err := fn(records)
		if err != nil {
			return nil, err
		}
		if s.sortByRecency {
			SortByRecency(next)
		}
		return json.Marshal(next)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func decode[T any](data []byte) ([]T, error) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// SortByRecency orders records by RecencyMillis descending, keeping the
// relative order of equal timestamps.
func SortByRecency[T repositories.Record](records []T) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecencyMillis() > records[j].RecencyMillis()
	})
}
