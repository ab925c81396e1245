// Package sqlite persists nursery snapshots in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nurserycore/internal/codec"
	"nurserycore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.SnapshotStore = (*Store)(nil)

// Store keeps one row per label with the memento encoded as CBOR.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore opens (creating if needed) the database at path. An empty path
// defaults to nursery.db in the working directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "nursery.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		label TEXT PRIMARY KEY,
		day INTEGER NOT NULL,
		saved_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}, nil
}

// SaveSnapshot upserts m under label.
func (s *Store) SaveSnapshot(ctx context.Context, label string, m domain.Memento) error {
	if strings.TrimSpace(label) == "" {
		return domain.ErrEmptyLabel
	}
	payload, err := codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", label, err)
	}
	savedAt := s.now().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(label,day,saved_at,payload) VALUES(?,?,?,?)
		ON CONFLICT(label) DO UPDATE SET day=excluded.day, saved_at=excluded.saved_at, payload=excluded.payload`,
		label, m.Day, savedAt, payload); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", label, err)
	}
	return nil
}

// LoadSnapshot decodes the memento stored under label.
func (s *Store) LoadSnapshot(ctx context.Context, label string) (domain.Memento, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE label = ?`, label).Scan(&payload)
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
		var (
			info    domain.SnapshotInfo
			savedAt string
		)
		if err := rows.Scan(&info.Label, &info.Day, &savedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if info.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("parse saved_at for %s: %w", info.Label, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteSnapshot removes label.
func (s *Store) DeleteSnapshot(ctx context.Context, label string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE label = ?`, label)
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

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
