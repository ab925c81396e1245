package core

import (
	"slices"

	"nurserycore/pkg/domain"
)

// CommandKind names the work a command asks staff to do.
type CommandKind string

// Command kinds handled by the staff chain.
const (
	CommandWater     CommandKind = "water"
	CommandFertilize CommandKind = "fertilize"
	CommandSell      CommandKind = "sell"
)

// Command is a unit of work dispatched through the staff chain.
type Command struct {
	Kind   CommandKind
	Target domain.ID
	Status domain.CommandStatus
	Err    error
	// Order and Sale are only used by sell commands.
	Order *Specification
	Sale  *Sale
}

// NewCommand returns a pending command for target.
func NewCommand(kind CommandKind, target domain.ID) *Command {
	return &Command{Kind: kind, Target: target, Status: domain.CommandPending}
}

// Record converts the command to its persisted form.
func (c *Command) Record() domain.CommandRecord {
	return domain.CommandRecord{Kind: string(c.Kind), TargetID: c.Target, Status: c.Status}
}

func (c *Command) complete() {
	c.Status = domain.CommandCompleted
	c.Err = nil
}

func (c *Command) fail(err error) {
	c.Status = domain.CommandFailed
	c.Err = err
}

// CommandQueue is a FIFO of pending care commands. A kind/target pair is
// queued at most once until it is drained.
type CommandQueue struct {
	items []*Command
}

// Enqueue appends cmd unless an equivalent command is already pending.
func (q *CommandQueue) Enqueue(cmd *Command) bool {
	if cmd == nil {
		return false
	}
	if slices.ContainsFunc(q.items, func(c *Command) bool { return c.Kind == cmd.Kind && c.Target == cmd.Target }) {
		return false
	}
	q.items = append(q.items, cmd)
	return true
}

// Drain removes and returns every queued command in order.
func (q *CommandQueue) Drain() []*Command {
	out := q.items
	q.items = nil
	return out
}

// Len reports the number of queued commands.
func (q *CommandQueue) Len() int { return len(q.items) }

// Records returns the persisted form of the queued commands.
func (q *CommandQueue) Records() []domain.CommandRecord {
	out := make([]domain.CommandRecord, 0, len(q.items))
	for _, c := range q.items {
		out = append(out, c.Record())
	}
	return out
}

// Cancel marks every queued command cancelled and empties the queue.
func (q *CommandQueue) Cancel() []*Command {
	out := q.Drain()
	for _, c := range out {
		c.Status = domain.CommandCancelled
	}
	return out
}
