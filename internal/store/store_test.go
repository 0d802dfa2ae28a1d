package store

import (
	"context"
	"testing"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = "sqlite3"
	cfg.Databases = map[string]config.DatabaseConfig{
		"sqlite3": {DSN: ":memory:"},
	}
	st, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSetGetRemove(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, KeyToken); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := st.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	value, ok, err := st.Get(ctx, KeyToken)
	if err != nil || !ok || value != "t1" {
		t.Fatalf("Get: value=%q ok=%v err=%v", value, ok, err)
	}

	// Overwrite.
	if err := st.Set(ctx, KeyToken, "t2"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	value, _, _ = st.Get(ctx, KeyToken)
	if value != "t2" {
		t.Fatalf("expected overwrite, got %q", value)
	}

	if err := st.Remove(ctx, KeyToken); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, ok, _ := st.Get(ctx, KeyToken); ok {
		t.Fatalf("expected key removed")
	}
	// Removing again is harmless.
	if err := st.Remove(ctx, KeyToken); err != nil {
		t.Fatalf("second Remove error: %v", err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := st.Set(ctx, KeyUserRole, "student"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := st.Remove(ctx, KeyToken); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	role, ok, err := st.Get(ctx, KeyUserRole)
	if err != nil || !ok || role != "student" {
		t.Fatalf("expected role to survive token removal: %q ok=%v err=%v", role, ok, err)
	}
}

func TestScopedStoreIsolatesDevices(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a := Scoped(st, "device:a")
	b := Scoped(st, "device:b")

	if err := a.Set(ctx, KeyToken, "token-a"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok, _ := b.Get(ctx, KeyToken); ok {
		t.Fatalf("device b must not see device a's token")
	}
	value, ok, _ := a.Get(ctx, KeyToken)
	if !ok || value != "token-a" {
		t.Fatalf("device a lost its token: %q ok=%v", value, ok)
	}

	if err := b.Set(ctx, KeyToken, "token-b"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := a.Remove(ctx, KeyToken); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if value, ok, _ := b.Get(ctx, KeyToken); !ok || value != "token-b" {
		t.Fatalf("device b affected by device a's removal: %q ok=%v", value, ok)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "cassandra"
	if _, err := Open(cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
