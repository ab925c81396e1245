package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

const (
	// MaxLevel caps health and water level.
	MaxLevel = 100
	// fertilizeBoost is the health restored by a single Fertilize call.
	fertilizeBoost = 20
)

// Plant is the leaf of the inventory tree. Species constants are fixed at
// construction; age, health, water level and lifecycle state change daily.
type Plant struct {
	base
	species    Species
	age        int
	health     int
	waterLevel int
	state      LifecycleState
	observers  observerList
}

// NewPlant constructs a seedling of the given species with full health and
// water. A nil allocator uses DefaultIDs.
func NewPlant(ids *IDAllocator, species Species) *Plant {
	return &Plant{
		base:       newBase(ids),
		species:    species,
		health:     MaxLevel,
		waterLevel: MaxLevel,
		state:      seedling{},
	}
}

func (p *Plant) Name() string { return string(p.species.Name) }

func (p *Plant) Price() float64 { return p.species.Price }

// TypeName is the species name.
func (p *Plant) TypeName() string { return string(p.species.Name) }

// Species returns the species constants the plant was built with.
func (p *Plant) Species() Species { return p.species }

func (p *Plant) Age() int { return p.age }

func (p *Plant) SetAge(age int) {
	if age < 0 {
		age = 0
	}
	p.age = age
}

func (p *Plant) Health() int { return p.health }

// SetHealth stores health capped at MaxLevel. Negative values are kept so
// lifecycle states can observe an overdraw.
func (p *Plant) SetHealth(health int) {
	p.health = min(health, MaxLevel)
}

func (p *Plant) WaterLevel() int { return p.waterLevel }

// SetWaterLevel stores the level clamped to [0, MaxLevel].
func (p *Plant) SetWaterLevel(level int) {
	p.waterLevel = max(0, min(level, MaxLevel))
}

func (p *Plant) WaterConsumption() int { return p.species.WaterConsumption }

func (p *Plant) SeedlingDuration() int { return p.species.SeedlingDays }

func (p *Plant) GrowingDuration() int { return p.species.GrowingDays }

func (p *Plant) WaterRequirement() WaterRequirement { return p.species.Requirement }

// PreferredSeasons returns a copy of the species' seasons.
func (p *Plant) PreferredSeasons() []Season { return slices.Clone(p.species.Seasons) }

// IsSuitableForSeason reports whether the plant grows in season.
func (p *Plant) IsSuitableForSeason(season Season) bool {
	return slices.Contains(p.species.Seasons, SeasonYearRound) || slices.Contains(p.species.Seasons, season)
}

// NeedsWater reports whether the next day's consumption would drain the plant.
func (p *Plant) NeedsWater() bool {
	return p.waterLevel <= p.species.WaterConsumption
}

// Water adds the species refill amount.
func (p *Plant) Water() {
	p.SetWaterLevel(p.waterLevel + p.species.Refill)
}

// Fertilize restores a fixed amount of health.
func (p *Plant) Fertilize() {
	p.SetHealth(p.health + fertilizeBoost)
}

func (p *Plant) consumeWater() {
	p.SetWaterLevel(p.waterLevel - p.species.WaterConsumption)
}

// State returns the active lifecycle state.
func (p *Plant) State() LifecycleState { return p.state }

// Stage is shorthand for State().Stage().
func (p *Plant) Stage() Stage { return p.state.Stage() }

// SetState replaces the active lifecycle state. Nil is ignored.
func (p *Plant) SetState(s LifecycleState) {
	if s == nil {
		return
	}
	p.state = s
}

// PerformDailyActivity delegates to the current lifecycle state.
func (p *Plant) PerformDailyActivity() {
	p.state.PerformDailyActivity(p)
}

// Attach registers o. Observers implementing WeakReferent are held weakly;
// others are held until detached. Attaching the same observer twice is a
// no-op.
func (p *Plant) Attach(o Observer) { p.observers.attach(o) }

// Detach unregisters o, including a weak wrapper around it.
func (p *Plant) Detach(o Observer) { p.observers.detach(o) }

// Notify calls Update on every live observer in attachment order.
func (p *Plant) Notify() {
	for _, o := range p.observers.live() {
		o.Update(p)
	}
}

func (p *Plant) DetachAllObservers() { p.observers.clear() }

// ObserverCount reports how many observers are registered, expired weak
// entries included until the next Notify.
func (p *Plant) ObserverCount() int { return p.observers.len() }

// CreateIterator yields the plant itself once.
func (p *Plant) CreateIterator() Iterator {
	return newSliceIterator([]Component{p})
}

// Clone copies identity and runtime progress. Observers and owner are not
// carried over.
func (p *Plant) Clone() Component {
	return &Plant{
		base:       base{id: p.id, ids: p.ids},
		species:    p.species,
		age:        p.age,
		health:     p.health,
		waterLevel: p.waterLevel,
		state:      p.state.Clone(),
	}
}

// BlueprintClone returns a fresh seedling of the same species.
func (p *Plant) BlueprintClone() Component {
	return NewPlant(p.ids, p.species)
}

type plantPayload struct {
	ID         ID    `json:"id"`
	Age        int   `json:"age"`
	Health     int   `json:"health"`
	WaterLevel int   `json:"water_level"`
	Stage      Stage `json:"stage"`
	StageDays  int   `json:"stage_days,omitempty"`
}

// Serialize renders "<Species>|{json}".
func (p *Plant) Serialize() string {
	payload := plantPayload{
		ID:         p.id,
		Age:        p.age,
		Health:     p.health,
		WaterLevel: p.waterLevel,
		Stage:      p.state.Stage(),
	}
	if w, ok := p.state.(*withering); ok {
		payload.StageDays = w.days
	}
	raw, _ := json.Marshal(payload)
	return p.TypeName() + typeSeparator + string(raw)
}

// Deserialize restores runtime state from Serialize output of the same
// species. On error the plant is left untouched.
func (p *Plant) Deserialize(data string) error {
	tag, body, ok := splitTag(data)
	if !ok {
		return newDeserializationError(p.TypeName(), "missing type tag", nil)
	}
	if tag != p.TypeName() {
		return newDeserializationError(p.TypeName(), fmt.Sprintf("type tag %q does not match", tag), nil)
	}
	var payload plantPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return newDeserializationError(p.TypeName(), "invalid payload", err)
	}
	state, ok := NewLifecycleState(payload.Stage)
	if !ok {
		return newDeserializationError(p.TypeName(), fmt.Sprintf("unknown stage %q", payload.Stage), nil)
	}
	switch {
	case payload.Age < 0:
		return newDeserializationError(p.TypeName(), "negative age", nil)
	case payload.WaterLevel < 0 || payload.WaterLevel > MaxLevel:
		return newDeserializationError(p.TypeName(), "water level out of range", nil)
	case payload.Health > MaxLevel:
		return newDeserializationError(p.TypeName(), "health out of range", nil)
	}
	if w, ok := state.(*withering); ok {
		w.days = payload.StageDays
	}
	if payload.ID != 0 {
		p.SetID(payload.ID)
	}
	p.age = payload.Age
	p.health = payload.Health
	p.waterLevel = payload.WaterLevel
	p.state = state
	return nil
}
