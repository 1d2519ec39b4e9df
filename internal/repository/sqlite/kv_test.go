package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dharmabot/internal/domain"
)

func newTestStore(t *testing.T, quota int64) *KVStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "kv.db"), quota)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	if err := s.Set(ctx, "sessions", []byte(`[]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "sessions", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("overwrite Set() error = %v", err)
	}

	got, ok, err := s.Get(ctx, "sessions")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("Get() = %s", got)
	}

	if err := s.Delete(ctx, "sessions"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "sessions"); ok {
		t.Error("key present after Delete")
	}
}

func TestKVStore_UpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	boom := errors.New("boom")
	if err := s.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v", err)
	}

	err := s.Update(ctx, "k", func(cur []byte) ([]byte, error) {
		return append(cur, []byte("+v2")...), nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _, _ := s.Get(ctx, "k")
	if string(got) != "v1+v2" {
		t.Errorf("value = %q, want v1+v2", got)
	}
}

func TestKVStore_Quota(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 16)

	if err := s.Set(ctx, "a", []byte("12345678")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "b", []byte("12345678")); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	// Replacing a key only counts its new size
	if err := s.Set(ctx, "a", []byte("123456789012345")); err != nil {
		t.Fatalf("replace within quota error = %v", err)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := newTestStore(t, 0)

	var mode string
	if err := s.db.QueryRow(`PRAGMA journal_mode;`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := s.db.QueryRow(`PRAGMA busy_timeout;`).Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != busyTimeoutMillis {
		t.Errorf("busy_timeout = %d, want %d", timeout, busyTimeoutMillis)
	}
}
