package domain

import (
	"strconv"
	"sync/atomic"
)

// ID identifies an inventory component. IDs are assigned once at
// construction and never reused by the allocator that issued them.
type ID uint64

// String renders the identifier in decimal form.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IDAllocator hands out monotonically increasing component identifiers.
// It is safe for concurrent use.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator returns an allocator whose first identifier is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh identifier.
func (a *IDAllocator) Next() ID {
	return ID(a.last.Add(1))
}

// Observe advances the allocator past id so identifiers restored from a
// snapshot are never handed out again.
func (a *IDAllocator) Observe(id ID) {
	for {
		cur := a.last.Load()
		if uint64(id) <= cur {
			return
		}
		if a.last.CompareAndSwap(cur, uint64(id)) {
			return
		}
	}
}

var defaultIDs = NewIDAllocator()

// DefaultIDs returns the process-wide allocator used when constructors
// receive a nil allocator.
func DefaultIDs() *IDAllocator {
	return defaultIDs
}

func allocatorOrDefault(ids *IDAllocator) *IDAllocator {
	if ids == nil {
		return defaultIDs
	}
	return ids
}
