package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nurserycore/pkg/domain"
)

// ErrNoSnapshotStore is returned by Save and Load when no store is
// configured.
var ErrNoSnapshotStore = errors.New("no snapshot store configured")

// Service runs the nursery: it owns the inventory tree, simulates days,
// dispatches care and sales work through the staff chain, and captures
// mementos. A single lock serializes every tree mutation, including the
// cross-group moves performed by auto-move.
type Service struct {
	mu         sync.Mutex
	state      *nursery
	queue      *CommandQueue
	staff      staffMember
	supervisor *Supervisor
	factory    PlantFactory

	store   domain.SnapshotStore
	logger  Logger
	clock   Clock
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
}

// NewService constructs an empty nursery on day zero.
func NewService(opts ...ServiceOption) *Service {
	cfg := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.engine == nil {
		cfg.engine = NewDefaultRulesEngine()
	}
	if cfg.ids == nil {
		cfg.ids = domain.NewIDAllocator()
	}
	queue := &CommandQueue{}
	return &Service{
		state: &nursery{
			ids:       cfg.ids,
			inventory: domain.NewInventory(),
			engine:    cfg.engine,
			season:    cfg.season,
		},
		queue:      queue,
		staff:      newStaffChain(),
		supervisor: NewSupervisor(queue, cfg.logger),
		factory:    NewPlantFactory(cfg.ids),
		store:      cfg.store,
		logger:     cfg.logger,
		clock:      cfg.clock,
		metrics:    cfg.metrics,
		tracer:     cfg.tracer,
		audit:      cfg.audit,
	}
}

// run wraps an operation with tracing, metrics, audit and logging.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) (domain.ID, error)) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := s.clock.Now()
	id, err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	s.recordAudit(ctx, op, id, duration, err)
	if err != nil {
		s.logger.Error("nursery operation failed", "operation", op, "error", err)
		return err
	}
	s.logger.Debug("nursery operation completed", "operation", op, "id", id, "duration", duration)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, op string, id domain.ID, duration time.Duration, err error) {
	entry := AuditEntry{
		Operation: op,
		EntityID:  id,
		Day:       s.Day(),
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// Day returns the current simulated day.
func (s *Service) Day() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.day
}

// Season returns the configured growing season.
func (s *Service) Season() domain.Season {
	return s.state.season
}

// PendingCommands returns the queued care commands.
func (s *Service) PendingCommands() []domain.CommandRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Records()
}

// View runs fn against the inventory under the service lock. fn must not
// retain the inventory or call back into the service.
func (s *Service) View(fn func(inv *domain.Inventory)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state.inventory)
}

// Value returns the total price of the inventory.
func (s *Service) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.inventory.Price()
}

// AddPlant creates a plant of species and places it under parent, or at the
// top level when parent is zero.
func (s *Service) AddPlant(ctx context.Context, species string, parent domain.ID) (domain.ID, error) {
	var created domain.ID
	err := s.run(ctx, "add_plant", func(context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		p, err := s.factory.Create(species)
		if err != nil {
			return 0, err
		}
		if !p.IsSuitableForSeason(s.state.season) {
			s.logger.Warn("planting out of season", "species", p.Name(), "season", s.state.season)
		}
		if err := s.state.place(p, parent); err != nil {
			return p.ID(), err
		}
		p.Attach(s.supervisor)
		created = p.ID()
		return created, nil
	})
	return created, err
}

// AddGroup creates a group. Owning groups hold their children; views only
// reference components owned elsewhere.
func (s *Service) AddGroup(ctx context.Context, name string, ownsChildren bool, parent domain.ID) (domain.ID, error) {
	var created domain.ID
	err := s.run(ctx, "add_group", func(context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		g := domain.NewGroup(s.state.ids, name, ownsChildren)
		if err := s.state.place(g, parent); err != nil {
			return g.ID(), err
		}
		created = g.ID()
		return created, nil
	})
	return created, err
}

// Move re-homes a component under parent, or at the top level when parent
// is zero. Moving into an owning group detaches it from its old owner;
// moving into a view only adds a reference. A decorated plant moves with
// its decorators.
func (s *Service) Move(ctx context.Context, id, parent domain.ID) error {
	return s.run(ctx, "move", func(context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c, err := s.state.resolve(id)
		if err != nil {
			return id, err
		}
		return id, s.state.place(c, parent)
	})
}

// Decorate wraps the component id with kind in place. The decorator takes
// the component's position in the tree and in every view referencing it.
// Decorating an already decorated plant adds to the outside of the chain.
func (s *Service) Decorate(ctx context.Context, id domain.ID, kind domain.DecoratorKind) (domain.ID, error) {
	var created domain.ID
	err := s.run(ctx, "decorate", func(context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := domain.ParseDecoratorKind(string(kind)); !ok {
			return id, fmt.Errorf("unknown decorator %q", kind)
		}
		c, err := s.state.resolve(id)
		if err != nil {
			return id, err
		}
		d := domain.NewDecorator(s.state.ids, kind, c)
		if err := s.state.replace(c, d); err != nil {
			return id, err
		}
		created = d.ID()
		return created, nil
	})
	return created, err
}

// Remove takes a component out of the nursery. Its plants stop being
// observed. Removing a decorated plant removes its decorators too.
func (s *Service) Remove(ctx context.Context, id domain.ID) error {
	return s.run(ctx, "remove", func(context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c, err := s.state.resolve(id)
		if err != nil {
			return id, err
		}
		return id, s.state.detach(c)
	})
}

// DayReport summarizes one simulated day.
type DayReport struct {
	Day        int
	Changes    []domain.Change
	Processed  []domain.CommandRecord
	Violations []domain.Violation
	Value      float64
}

// Advance simulates one day: every plant performs its daily activity and
// notifies the supervisor, queued care work is dispatched through the staff
// chain and the care rules are evaluated. A blocking violation rolls the
// day back.
func (s *Service) Advance(ctx context.Context) (DayReport, error) {
	var report DayReport
	err := s.run(ctx, "advance", func(ctx context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		r, err := s.advanceLocked(ctx)
		report = r
		return 0, err
	})
	return report, err
}

func (s *Service) advanceLocked(ctx context.Context) (DayReport, error) {
	n := s.state
	cp := n.checkpoint()
	pending := s.queue.Records()
	n.day++
	for _, p := range n.inventory.Plants() {
		before := p.Stage()
		p.PerformDailyActivity()
		n.record(domain.Change{Action: domain.ActionGrow, Target: p.ID(), Name: p.Name(), Before: before, After: p.Stage()})
		p.Notify()
	}
	processed := s.dispatchLocked(ctx)
	changes := n.takeChanges()
	res, err := n.engine.Evaluate(ctx, n, changes)
	if err == nil && res.HasBlocking() {
		err = domain.RuleViolationError{Result: res}
	}
	if err != nil {
		n.rollback(cp)
		s.restoreQueueLocked(pending)
		s.attachSupervisorLocked()
		return DayReport{Day: n.day, Violations: res.Violations}, err
	}
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarn {
			s.logger.Warn("care rule", "rule", v.Rule, "plant", v.EntityID, "message", v.Message)
		}
	}
	return DayReport{
		Day:        n.day,
		Changes:    changes,
		Processed:  processed,
		Violations: res.Violations,
		Value:      n.inventory.Price(),
	}, nil
}

// dispatchLocked drains the queue through the staff chain. Failed commands
// are reported, not retried.
func (s *Service) dispatchLocked(ctx context.Context) []domain.CommandRecord {
	var out []domain.CommandRecord
	for _, cmd := range s.queue.Drain() {
		if err := s.staff.handle(ctx, s.state, cmd); err != nil {
			s.logger.Warn("command failed", "kind", cmd.Kind, "target", cmd.Target, "error", err)
		}
		out = append(out, cmd.Record())
	}
	return out
}

// Run advances days times, stopping early on cancellation or error.
func (s *Service) Run(ctx context.Context, days int) ([]DayReport, error) {
	reports := make([]DayReport, 0, max(days, 0))
	for range days {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.Advance(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Fulfill sells the first plant matching spec, preferring mature stock.
// The plant leaves the nursery and is returned wrapped in the requested
// decorators.
func (s *Service) Fulfill(ctx context.Context, spec Specification) (Sale, error) {
	var sale Sale
	err := s.run(ctx, "fulfill", func(ctx context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		cmd := &Command{Kind: CommandSell, Status: domain.CommandPending, Order: &spec}
		if err := s.staff.handle(ctx, s.state, cmd); err != nil {
			return cmd.Target, err
		}
		s.state.takeChanges()
		sale = *cmd.Sale
		return cmd.Target, nil
	})
	return sale, err
}

// Snapshot captures the current day, the serialized inventory and the
// queued commands.
func (s *Service) Snapshot(ctx context.Context) (domain.Memento, error) {
	var m domain.Memento
	err := s.run(ctx, "snapshot", func(context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		m = domain.Memento{
			Day:        s.state.day,
			Components: domain.CaptureInventory(s.state.inventory),
			Pending:    s.queue.Records(),
			CreatedAt:  s.clock.Now(),
		}
		return 0, nil
	})
	return m, err
}

// Restore replaces the nursery with the memento contents. Nothing changes
// if the memento cannot be decoded.
func (s *Service) Restore(ctx context.Context, m domain.Memento) error {
	return s.run(ctx, "restore", func(context.Context) (domain.ID, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		inv, err := m.RestoreInventory(s.state.ids)
		if err != nil {
			return 0, err
		}
		old := s.state.inventory
		for _, c := range old.Components() {
			old.Remove(c)
		}
		s.state.inventory = inv
		s.state.day = m.Day
		s.state.changes = nil
		s.queue.Cancel()
		s.restoreQueueLocked(m.Pending)
		s.attachSupervisorLocked()
		return 0, nil
	})
}

// Save stores a snapshot under label.
func (s *Service) Save(ctx context.Context, label string) error {
	if s.store == nil {
		return ErrNoSnapshotStore
	}
	m, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	return s.run(ctx, "save", func(ctx context.Context) (domain.ID, error) {
		return 0, s.store.SaveSnapshot(ctx, label, m)
	})
}

// Load restores the snapshot stored under label.
func (s *Service) Load(ctx context.Context, label string) error {
	if s.store == nil {
		return ErrNoSnapshotStore
	}
	var m domain.Memento
	if err := s.run(ctx, "load", func(ctx context.Context) (domain.ID, error) {
		var err error
		m, err = s.store.LoadSnapshot(ctx, label)
		return 0, err
	}); err != nil {
		return err
	}
	return s.Restore(ctx, m)
}

// Snapshots lists the stored snapshots.
func (s *Service) Snapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	if s.store == nil {
		return nil, ErrNoSnapshotStore
	}
	return s.store.ListSnapshots(ctx)
}

func (s *Service) restoreQueueLocked(records []domain.CommandRecord) {
	for _, r := range records {
		kind := CommandKind(r.Kind)
		if kind != CommandWater && kind != CommandFertilize {
			continue
		}
		s.queue.Enqueue(NewCommand(kind, r.TargetID))
	}
}

func (s *Service) attachSupervisorLocked() {
	for _, p := range s.state.inventory.Plants() {
		p.Attach(s.supervisor)
	}
}
