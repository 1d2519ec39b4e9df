// Package memory is an in-process key-value store. It can enforce a byte
// quota to behave like a size-limited browser store.
package memory

import (
	"context"
	"sync"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/repositories"
)

// KVStore keeps values in a map. Values are copied on the way in and out.
type KVStore struct {
	mu         sync.Mutex
	data       map[string][]byte
	quotaBytes int
	used       int
}

// NewKVStore creates a store. quotaBytes <= 0 means unlimited.
func NewKVStore(quotaBytes int) *KVStore {
	return &KVStore{
		data:       make(map[string][]byte),
		quotaBytes: quotaBytes,
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value)
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.data[key]; ok {
		s.used -= len(key) + len(v)
		delete(s.data, key)
	}
	return nil
}

func (s *KVStore) Update(ctx context.Context, key string, fn repositories.UpdateFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	if v, ok := s.data[key]; ok {
		current = clone(v)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.setLocked(key, next)
}

// Keys returns every stored key. Used by tests and the seed tool.
func (s *KVStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

func (s *KVStore) Close() error { return nil }

func (s *KVStore) setLocked(key string, value []byte) error {
	old, exists := s.data[key]
	size := s.used + len(value)
	if exists {
		size -= len(old)
	} else {
		size += len(key)
	}
	if s.quotaBytes > 0 && size > s.quotaBytes {
		return &domain.QuotaExceededError{Key: key}
	}
	s.data[key] = clone(value)
	s.used = size
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
