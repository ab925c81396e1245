package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned by SnapshotStore implementations when a
// label has never been saved.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrEmptyLabel is returned when a snapshot is saved under an empty label.
var ErrEmptyLabel = errors.New("snapshot label is empty")

// CommandStatus tracks a queued care or sales command.
type CommandStatus string

// Command statuses.
const (
	CommandPending   CommandStatus = "pending"
	CommandCompleted CommandStatus = "completed"
	CommandFailed    CommandStatus = "failed"
	CommandCancelled CommandStatus = "cancelled"
)

// CommandRecord is the persisted form of a queued command.
type CommandRecord struct {
	Kind     string        `json:"kind" cbor:"kind"`
	TargetID ID            `json:"target_id" cbor:"target_id"`
	Status   CommandStatus `json:"status" cbor:"status"`
}

// Memento captures the nursery at the end of a day: the serialized
// top-level components in inventory order and the commands still queued.
type Memento struct {
	Day        int             `json:"day" cbor:"day"`
	Components []string        `json:"components" cbor:"components"`
	Pending    []CommandRecord `json:"pending,omitempty" cbor:"pending,omitempty"`
	CreatedAt  time.Time       `json:"created_at" cbor:"created_at"`
}

// CaptureInventory serializes every top-level component of inv.
func CaptureInventory(inv *Inventory) []string {
	items := inv.Components()
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Serialize())
	}
	return out
}

// RestoreInventory decodes the components of m into a new inventory. The
// allocator is advanced past every restored identifier.
func (m Memento) RestoreInventory(ids *IDAllocator) (*Inventory, error) {
	inv := NewInventory()
	for _, text := range m.Components {
		c, err := DecodeComponent(text, ids)
		if err != nil {
			return nil, err
		}
		inv.Add(c)
	}
	return inv, nil
}

// SnapshotInfo describes a stored memento without loading it.
type SnapshotInfo struct {
	Label   string
	Day     int
	SavedAt time.Time
}

// SnapshotStore is a minimal abstraction over durable memento backends.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, label string, m Memento) error
	LoadSnapshot(ctx context.Context, label string) (Memento, error)
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, label string) error
}
