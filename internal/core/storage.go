package core

import (
	"context"
	"fmt"

	"nurserycore/internal/infra/persistence/memory"
	"nurserycore/internal/infra/persistence/postgres"
	"nurserycore/internal/infra/persistence/sqlite"
	"nurserycore/pkg/domain"
)

// StorageDriver identifies a snapshot store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects and configures a snapshot store.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// SnapshotStore aliases the domain contract for callers of this package.
type SnapshotStore = domain.SnapshotStore

// OpenSnapshotStore builds the store named by cfg.Driver. An empty driver
// selects the in-memory store.
func OpenSnapshotStore(ctx context.Context, cfg StorageConfig) (SnapshotStore, error) {
	switch cfg.Driver {
	case "", StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
