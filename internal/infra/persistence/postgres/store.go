// Package postgres persists nursery snapshots in a PostgreSQL table through
// the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"nurserycore/internal/codec"
	"nurserycore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ domain.SnapshotStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/nursery?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps one row per label with the memento encoded as CBOR.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore connects using dsn (falling back to a local default), pings the
// server and ensures the snapshots table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureSnapshotTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func ensureSnapshotTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS snapshots (
		label TEXT PRIMARY KEY,
		day INTEGER NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL,
		payload BYTEA NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure snapshots table: %w", err)
	}
	return nil
}

// SaveSnapshot upserts m under label inside a transaction.
func (s *Store) SaveSnapshot(ctx context.Context, label string, m domain.Memento) error {
	if strings.TrimSpace(label) == "" {
		return domain.ErrEmptyLabel
	}
	payload, err := codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", label, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots(label,day,saved_at,payload) VALUES($1,$2,$3,$4) ON CONFLICT(label) DO UPDATE SET day=EXCLUDED.day, saved_at=EXCLUDED.saved_at, payload=EXCLUDED.payload`,
		label, m.Day, s.now(), payload); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", label, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// LoadSnapshot decodes the memento stored under label.
func (s *Store) LoadSnapshot(ctx context.Context, label string) (domain.Memento, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE label = $1`, label).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Memento{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Memento{}, fmt.Errorf("select snapshot %s: %w", label, err)
	}
	var m domain.Memento
	if err := codec.Unmarshal(payload, &m); err != nil {
		return domain.Memento{}, fmt.Errorf("decode snapshot %s: %w", label, err)
	}
	return m, nil
}

// ListSnapshots returns every stored snapshot ordered by label.
func (s *Store) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, day, saved_at FROM snapshots ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.SnapshotInfo
	for rows.Next() {
		var info domain.SnapshotInfo
		if err := rows.Scan(&info.Label, &info.Day, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// DeleteSnapshot removes label.
func (s *Store) DeleteSnapshot(ctx context.Context, label string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE label = $1`, label)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", label, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSnapshotNotFound
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
