package domain

// Stage names a plant lifecycle state.
type Stage string

// Canonical lifecycle stages in the order a healthy plant passes through them.
const (
	StageSeedling  Stage = "seedling"
	StageGrowing   Stage = "growing"
	StageMature    Stage = "mature"
	StageWithering Stage = "withering"
	StageWithered  Stage = "withered"
)

const (
	// drySpellDamage is the health a mature plant loses per day without water.
	drySpellDamage = 40
	// witheringDamage is the health a withering plant loses per day without water.
	witheringDamage = 20
	// witheringGraceDays is how long a withering plant can be revived.
	witheringGraceDays = 3
)

// LifecycleState drives a plant's daily behaviour. PerformDailyActivity may
// mutate the plant and replace its state through Plant.SetState.
type LifecycleState interface {
	Stage() Stage
	PerformDailyActivity(p *Plant)
	HandleStateChange(p *Plant)
	Clone() LifecycleState
}

// NewLifecycleState returns a fresh state object for stage.
func NewLifecycleState(stage Stage) (LifecycleState, bool) {
	switch stage {
	case StageSeedling:
		return seedling{}, true
	case StageGrowing:
		return growing{}, true
	case StageMature:
		return mature{}, true
	case StageWithering:
		return &withering{}, true
	case StageWithered:
		return withered{}, true
	default:
		return nil, false
	}
}

type seedling struct{}

func (seedling) Stage() Stage { return StageSeedling }

func (s seedling) PerformDailyActivity(p *Plant) {
	p.consumeWater()
	p.SetAge(p.Age() + 1)
	s.HandleStateChange(p)
}

func (seedling) HandleStateChange(p *Plant) {
	if p.Age() >= p.SeedlingDuration() {
		p.SetState(growing{})
	}
}

func (seedling) Clone() LifecycleState { return seedling{} }

type growing struct{}

func (growing) Stage() Stage { return StageGrowing }

func (g growing) PerformDailyActivity(p *Plant) {
	p.consumeWater()
	p.SetAge(p.Age() + 1)
	g.HandleStateChange(p)
}

func (growing) HandleStateChange(p *Plant) {
	if p.Age() >= p.SeedlingDuration()+p.GrowingDuration() {
		p.SetState(mature{})
	}
}

func (growing) Clone() LifecycleState { return growing{} }

type mature struct{}

func (mature) Stage() Stage { return StageMature }

func (m mature) PerformDailyActivity(p *Plant) {
	p.consumeWater()
	if p.WaterLevel() <= 0 {
		p.SetHealth(p.Health() - drySpellDamage)
	}
	m.HandleStateChange(p)
}

func (mature) HandleStateChange(p *Plant) {
	if p.Health() <= 0 {
		p.SetState(&withering{})
	}
}

func (mature) Clone() LifecycleState { return mature{} }

// withering counts the days spent without recovering.
type withering struct {
	days int
}

func (*withering) Stage() Stage { return StageWithering }

func (w *withering) PerformDailyActivity(p *Plant) {
	p.consumeWater()
	if p.WaterLevel() <= 0 {
		p.SetHealth(p.Health() - witheringDamage)
	}
	w.days++
	w.HandleStateChange(p)
}

func (w *withering) HandleStateChange(p *Plant) {
	switch {
	case p.Health() > 0:
		p.SetState(mature{})
	case w.days >= witheringGraceDays:
		p.SetState(withered{})
	}
}

func (w *withering) Clone() LifecycleState { return &withering{days: w.days} }

type withered struct{}

func (withered) Stage() Stage { return StageWithered }

func (withered) PerformDailyActivity(*Plant) {}

func (withered) HandleStateChange(*Plant) {}

func (withered) Clone() LifecycleState { return withered{} }
