package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "state.db")
	s, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if err := s.Set(ctx, "app-users", []byte(`[{"id":1,"name":"Anitha"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "app-users", []byte(`[{"id":1,"name":"Anitha R"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer func() { _ = s2.Close() }()
	got, ok, err := s2.Get(ctx, "app-users")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"id":1,"name":"Anitha R"}]` {
		t.Fatalf("expected last write to win, got %s", got)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
	if s2.Path() != dbPath {
		t.Fatalf("unexpected path %s", s2.Path())
	}
}

func TestStoreMissKeysAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, ok, err := s.Get(ctx, "app-holidays"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	for _, k := range []string{"app-vrps", "app-audits"} {
		if err := s.Set(ctx, k, []byte("[]")); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "app-audits" || keys[1] != "app-vrps" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := s.Delete(ctx, "app-vrps"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "app-vrps"); ok {
		t.Fatalf("expected deleted key to miss")
	}
}
