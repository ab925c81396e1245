package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"nurserycore/pkg/domain"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "nursery.db")
	store := openStore(t, path)
	m := domain.Memento{
		Day:        7,
		Components: []string{`Cactus|{"id":2,"age":7,"health":100,"water_level":93,"stage":"growing"}`},
		Pending:    []domain.CommandRecord{{Kind: "water", TargetID: 2, Status: domain.CommandPending}},
	}
	if err := store.SaveSnapshot(ctx, "week-1", m); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded := openStore(t, path)
	got, err := reloaded.LoadSnapshot(ctx, "week-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Day != 7 || len(got.Components) != 1 || got.Components[0] != m.Components[0] {
		t.Fatalf("expected persisted memento, got %+v", got)
	}
	if len(got.Pending) != 1 || got.Pending[0].Kind != "water" {
		t.Fatalf("expected pending command, got %+v", got.Pending)
	}
	if reloaded.Path() != path {
		t.Fatalf("expected path %s, got %s", path, reloaded.Path())
	}
}

func TestSQLiteStoreUpsertAndList(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "nursery.db"))
	for _, label := range []string{"b", "a"} {
		if err := store.SaveSnapshot(ctx, label, domain.Memento{Day: 1}); err != nil {
			t.Fatalf("save %s: %v", label, err)
		}
	}
	if err := store.SaveSnapshot(ctx, "a", domain.Memento{Day: 5}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	infos, err := store.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Label != "a" || infos[0].Day != 5 || infos[1].Label != "b" {
		t.Fatalf("expected upserted listing, got %+v", infos)
	}
	if infos[0].SavedAt.IsZero() {
		t.Fatalf("expected saved_at to be recorded")
	}
}

func TestSQLiteStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "nursery.db"))
	if err := store.SaveSnapshot(ctx, "", domain.Memento{}); !errors.Is(err, domain.ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	if _, err := store.LoadSnapshot(ctx, "missing"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if err := store.DeleteSnapshot(ctx, "missing"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound on delete, got %v", err)
	}
	if _, err := store.DB().ExecContext(ctx, `INSERT INTO snapshots(label,day,saved_at,payload) VALUES('bad',0,'x',x'ff')`); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}
	if _, err := store.LoadSnapshot(ctx, "bad"); err == nil {
		t.Fatalf("expected decode error for corrupt payload")
	}
	if err := store.DeleteSnapshot(ctx, "bad"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
