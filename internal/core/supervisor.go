package core

import "nurserycore/pkg/domain"

// Supervisor watches plants and queues care work. Plants hold it weakly.
type Supervisor struct {
	queue  *CommandQueue
	logger Logger
}

// NewSupervisor returns a supervisor feeding queue.
func NewSupervisor(queue *CommandQueue, logger Logger) *Supervisor {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Supervisor{queue: queue, logger: logger}
}

// WeakRef implements domain.WeakReferent.
func (s *Supervisor) WeakRef() domain.Observer { return domain.WeakObserver(s) }

// Update queues a watering request for thirsty plants and fertilizer for
// withering ones. Withered plants are past help.
func (s *Supervisor) Update(subject domain.Subject) {
	p, ok := subject.(*domain.Plant)
	if !ok || p.Stage() == domain.StageWithered {
		return
	}
	if p.NeedsWater() && s.queue.Enqueue(NewCommand(CommandWater, p.ID())) {
		s.logger.Debug("queued watering", "plant", p.ID(), "species", p.Name(), "water", p.WaterLevel())
	}
	if p.Stage() == domain.StageWithering && s.queue.Enqueue(NewCommand(CommandFertilize, p.ID())) {
		s.logger.Debug("queued fertilizer", "plant", p.ID(), "species", p.Name(), "health", p.Health())
	}
}
