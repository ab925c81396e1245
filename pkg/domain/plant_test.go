package domain

import "testing"

func TestPlantDefaults(t *testing.T) {
	p := newTestPlant(t, NewIDAllocator(), Rose)
	if p.Age() != 0 || p.Health() != 100 || p.WaterLevel() != 100 {
		t.Fatalf("expected fresh plant defaults, got age=%d health=%d water=%d", p.Age(), p.Health(), p.WaterLevel())
	}
	if p.Stage() != StageSeedling {
		t.Fatalf("expected seedling, got %s", p.Stage())
	}
	if p.Name() != "Rose" || p.TypeName() != "Rose" || p.Price() != 135 {
		t.Fatalf("unexpected species constants: %s %v", p.Name(), p.Price())
	}
	if p.Owner() != nil {
		t.Fatalf("expected no owner")
	}
}

func TestPlantCloneFidelity(t *testing.T) {
	p := newTestPlant(t, NewIDAllocator(), Rose)
	p.SetID(12345)
	p.SetAge(50)
	p.SetHealth(75)
	p.SetWaterLevel(60)
	p.SetState(mature{})

	c := p.Clone().(*Plant)
	if c == p {
		t.Fatalf("expected new instance")
	}
	if c.ID() != 12345 || c.Age() != 50 || c.Health() != 75 || c.WaterLevel() != 60 || c.Stage() != StageMature {
		t.Fatalf("expected identical runtime state, got %+v", c.Serialize())
	}

	bp := p.BlueprintClone().(*Plant)
	if bp.ID() == p.ID() {
		t.Fatalf("expected fresh id")
	}
	if bp.Age() != 0 || bp.Health() != 100 || bp.WaterLevel() != 100 || bp.Stage() != StageSeedling {
		t.Fatalf("expected default runtime state")
	}
	if bp.Price() != p.Price() || bp.Species().Name != p.Species().Name {
		t.Fatalf("expected identical species")
	}
}

func TestPlantCloneDoesNotShareObserversOrState(t *testing.T) {
	p := newTestPlant(t, nil, Fern)
	p.Attach(&countingObserver{})
	w := &withering{days: 2}
	p.SetState(w)
	c := p.Clone().(*Plant)
	if c.ObserverCount() != 0 {
		t.Fatalf("expected clone without observers")
	}
	if c.State() == LifecycleState(w) {
		t.Fatalf("expected cloned state object")
	}
	if c.State().(*withering).days != 2 {
		t.Fatalf("expected withering progress kept")
	}
}

func TestPlantWaterAndFertilizeClamp(t *testing.T) {
	p := newTestPlant(t, nil, Cactus)
	p.SetWaterLevel(90)
	p.Water()
	if p.WaterLevel() != 100 {
		t.Fatalf("expected water capped at 100, got %d", p.WaterLevel())
	}
	p.SetWaterLevel(10)
	p.Water()
	if p.WaterLevel() != 28 {
		t.Fatalf("expected cactus refill of 18, got %d", p.WaterLevel())
	}
	p.SetHealth(90)
	p.Fertilize()
	if p.Health() != 100 {
		t.Fatalf("expected health capped, got %d", p.Health())
	}
	p.SetHealth(30)
	p.Fertilize()
	if p.Health() != 50 {
		t.Fatalf("expected +20 health, got %d", p.Health())
	}
	p.SetWaterLevel(-5)
	if p.WaterLevel() != 0 {
		t.Fatalf("expected water floored at 0")
	}
}

func TestPlantLifecycleProgression(t *testing.T) {
	p := newTestPlant(t, nil, Basil)
	want := []Stage{StageGrowing, StageGrowing, StageMature}
	for day, stage := range want {
		p.PerformDailyActivity()
		if p.Stage() != stage {
			t.Fatalf("day %d: expected %s, got %s", day+1, stage, p.Stage())
		}
	}
	if p.Age() != 3 || p.WaterLevel() != 100-3*6 {
		t.Fatalf("expected age 3 and consumed water, got age=%d water=%d", p.Age(), p.WaterLevel())
	}
}

func TestPlantWitheringAndRecovery(t *testing.T) {
	p := newTestPlant(t, nil, Daisy)
	p.SetState(mature{})
	p.SetWaterLevel(0)
	for range 3 {
		p.PerformDailyActivity()
	}
	if p.Stage() != StageWithering {
		t.Fatalf("expected withering after a dry spell, got %s health=%d", p.Stage(), p.Health())
	}
	p.SetHealth(10)
	p.SetWaterLevel(50)
	p.PerformDailyActivity()
	if p.Stage() != StageMature {
		t.Fatalf("expected recovery to mature, got %s", p.Stage())
	}
}

func TestPlantWithersAfterGracePeriod(t *testing.T) {
	p := newTestPlant(t, nil, Mint)
	p.SetState(&withering{})
	p.SetHealth(0)
	p.SetWaterLevel(0)
	for range witheringGraceDays {
		p.PerformDailyActivity()
	}
	if p.Stage() != StageWithered {
		t.Fatalf("expected withered, got %s", p.Stage())
	}
	age, water := p.Age(), p.WaterLevel()
	p.PerformDailyActivity()
	if p.Age() != age || p.WaterLevel() != water || p.Stage() != StageWithered {
		t.Fatalf("expected withered to be terminal")
	}
}

func TestPlantSetStateReplaces(t *testing.T) {
	p := newTestPlant(t, nil, Ivy)
	p.SetState(withered{})
	p.SetState(nil)
	if p.Stage() != StageWithered {
		t.Fatalf("expected nil state to be ignored")
	}
}

func TestPlantSeasonsAndThirst(t *testing.T) {
	tulip := newTestPlant(t, nil, Tulip)
	if !tulip.IsSuitableForSeason(SeasonSpring) || tulip.IsSuitableForSeason(SeasonWinter) {
		t.Fatalf("expected tulip to be a spring plant")
	}
	fern := newTestPlant(t, nil, Fern)
	if !fern.IsSuitableForSeason(SeasonWinter) {
		t.Fatalf("expected year-round fern")
	}
	fern.SetWaterLevel(8)
	if !fern.NeedsWater() {
		t.Fatalf("expected fern at consumption level to need water")
	}
	fern.SetWaterLevel(9)
	if fern.NeedsWater() {
		t.Fatalf("expected fern above consumption level not to need water")
	}
}

func TestPlantObservers(t *testing.T) {
	p := newTestPlant(t, nil, Rose)
	first, second := &countingObserver{}, &countingObserver{}
	p.Attach(first)
	p.Attach(second)
	p.Attach(first)
	p.Attach(nil)
	if p.ObserverCount() != 2 {
		t.Fatalf("expected two observers, got %d", p.ObserverCount())
	}
	p.Notify()
	for _, o := range []*countingObserver{first, second} {
		if len(o.updates) != 1 || o.updates[0] != Subject(p) {
			t.Fatalf("expected one update with the plant as subject")
		}
	}

	p.Detach(first)
	p.Notify()
	if len(first.updates) != 1 || len(second.updates) != 2 {
		t.Fatalf("expected detached observer to stop receiving updates")
	}
	p.DetachAllObservers()
	p.Notify()
	if len(second.updates) != 2 || p.ObserverCount() != 0 {
		t.Fatalf("expected no observers after DetachAllObservers")
	}
}

type orderedObserver struct {
	name string
	log  *[]string
}

func (o *orderedObserver) Update(Subject) { *o.log = append(*o.log, o.name) }

func TestPlantNotifyInAttachmentOrder(t *testing.T) {
	p := newTestPlant(t, nil, Aloe)
	var log []string
	for _, name := range []string{"c", "a", "b"} {
		p.Attach(&orderedObserver{name: name, log: &log})
	}
	p.Notify()
	if !equalStrings(log, []string{"c", "a", "b"}) {
		t.Fatalf("expected attachment order, got %v", log)
	}
}

//go:noinline
func attachTransientObserver(p *Plant) {
	p.Attach(WeakObserver(&countingObserver{}))
}

func TestPlantWeakObservers(t *testing.T) {
	p := newTestPlant(t, nil, Rose)
	held := &countingObserver{}
	p.Attach(WeakObserver(held))
	p.Notify()
	if len(held.updates) != 1 {
		t.Fatalf("expected weak observer to forward updates")
	}
	p.Detach(held)
	if p.ObserverCount() != 0 {
		t.Fatalf("expected detach to match the weakly held observer")
	}

	attachTransientObserver(p)
	if !collect(func() bool { p.Notify(); return p.ObserverCount() == 0 }) {
		t.Fatalf("expected expired weak observer to be dropped on notify")
	}
}

type referentObserver struct {
	countingObserver
}

func (o *referentObserver) WeakRef() Observer { return WeakObserver(o) }

//go:noinline
func attachTransientReferent(p *Plant) {
	p.Attach(&referentObserver{})
}

func TestPlantHoldsWeakReferentsWeakly(t *testing.T) {
	p := newTestPlant(t, nil, Rose)
	held := &referentObserver{}
	p.Attach(held)
	p.Attach(held)
	p.Attach(WeakObserver(held))
	if p.ObserverCount() != 1 {
		t.Fatalf("expected one registration, got %d", p.ObserverCount())
	}
	p.Notify()
	if len(held.updates) != 1 {
		t.Fatalf("expected the weak handle to forward updates")
	}
	p.Detach(held)
	if p.ObserverCount() != 0 {
		t.Fatalf("expected detach to find the weak handle")
	}

	attachTransientReferent(p)
	if !collect(func() bool { p.Notify(); return p.ObserverCount() == 0 }) {
		t.Fatalf("expected collected observer to be dropped on notify")
	}
}
