package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"nurserycore/internal/infra/persistence/postgres/testutil"
	"nurserycore/pkg/domain"
)

func newStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn
}

func TestNewStoreCreatesSnapshotTable(t *testing.T) {
	_, conn := newStubStore(t)
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS SNAPSHOTS") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected snapshots DDL, got execs: %v", conn.Execs)
	}
}

func TestSaveLoadListDelete(t *testing.T) {
	ctx := context.Background()
	store, conn := newStubStore(t)
	fixed := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	m := domain.Memento{Day: 12, Components: []string{`Group|{"id":1,"name":"Shelf","owns_children":true,"children":[]}`}}
	if err := store.SaveSnapshot(ctx, "late", m); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveSnapshot(ctx, "early", domain.Memento{Day: 2}); err != nil {
		t.Fatalf("save early: %v", err)
	}
	if err := store.SaveSnapshot(ctx, "late", m); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if got := len(conn.Tables["snapshots"]); got != 2 {
		t.Fatalf("expected 2 rows after upsert, got %d", got)
	}

	loaded, err := store.LoadSnapshot(ctx, "late")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Day != 12 || len(loaded.Components) != 1 || loaded.Components[0] != m.Components[0] {
		t.Fatalf("expected stored memento, got %+v", loaded)
	}

	infos, err := store.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Label != "early" || infos[1].Day != 12 || !infos[1].SavedAt.Equal(fixed) {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	if err := store.DeleteSnapshot(ctx, "early"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteSnapshot(ctx, "early"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound on second delete, got %v", err)
	}
	if _, err := store.LoadSnapshot(ctx, "early"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound on load, got %v", err)
	}
}

func TestSaveFailures(t *testing.T) {
	ctx := context.Background()
	store, conn := newStubStore(t)
	if err := store.SaveSnapshot(ctx, "", domain.Memento{}); !errors.Is(err, domain.ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	conn.FailBegin = true
	if err := store.SaveSnapshot(ctx, "x", domain.Memento{}); err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin failure, got %v", err)
	}
	conn.FailBegin = false
	conn.FailCommit = true
	if err := store.SaveSnapshot(ctx, "x", domain.Memento{}); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit failure, got %v", err)
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "postgres://example"); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestNewStoreOpenFailure(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("boom") })
	defer restore()
	if _, err := NewStore(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open failure, got %v", err)
	}
}
