package core

import (
	"context"
	"path/filepath"
	"testing"

	"nurserycore/internal/infra/persistence/memory"
	"nurserycore/internal/infra/persistence/sqlite"
)

func TestOpenSnapshotStoreDefaultsToMemory(t *testing.T) {
	store, err := OpenSnapshotStore(context.Background(), StorageConfig{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected *memory.Store, got %T", store)
	}
}

func TestOpenSnapshotStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	store, err := OpenSnapshotStore(context.Background(), StorageConfig{Driver: StorageSQLite, SQLitePath: path})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	s, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected *sqlite.Store, got %T", store)
	}
	defer func() { _ = s.Close() }()
	if s.Path() != path {
		t.Fatalf("expected path %s, got %s", path, s.Path())
	}
}

func TestOpenSnapshotStoreUnknownDriver(t *testing.T) {
	if _, err := OpenSnapshotStore(context.Background(), StorageConfig{Driver: "etcd"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
