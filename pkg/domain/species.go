package domain

import (
	"fmt"
	"sort"
	"strings"
)

// WaterRequirement buckets species by daily water usage.
type WaterRequirement string

// Water requirement levels.
const (
	WaterVeryLow WaterRequirement = "very_low"
	WaterLow     WaterRequirement = "low"
	WaterMedium  WaterRequirement = "medium"
	WaterHigh    WaterRequirement = "high"
)

// Season is a growing season a species prefers.
type Season string

// Seasons. SeasonYearRound marks species with no preference.
const (
	SeasonSpring    Season = "spring"
	SeasonSummer    Season = "summer"
	SeasonFall      Season = "fall"
	SeasonWinter    Season = "winter"
	SeasonYearRound Season = "year_round"
)

// SpeciesName is the stable discriminator of a plant species. It doubles as
// the plant's type name in serialized form.
type SpeciesName string

// Known species.
const (
	Aloe       SpeciesName = "Aloe"
	Bamboo     SpeciesName = "Bamboo"
	Basil      SpeciesName = "Basil"
	Cactus     SpeciesName = "Cactus"
	Daisy      SpeciesName = "Daisy"
	Fern       SpeciesName = "Fern"
	Ivy        SpeciesName = "Ivy"
	Lavender   SpeciesName = "Lavender"
	Marigold   SpeciesName = "Marigold"
	Mint       SpeciesName = "Mint"
	Orchid     SpeciesName = "Orchid"
	Petunia    SpeciesName = "Petunia"
	Rose       SpeciesName = "Rose"
	SnakePlant SpeciesName = "SnakePlant"
	Succulent  SpeciesName = "Succulent"
	Sunflower  SpeciesName = "Sunflower"
	Tulip      SpeciesName = "Tulip"
)

// Species holds the per-species constants fixed at plant construction.
type Species struct {
	Name             SpeciesName
	Price            float64
	WaterConsumption int
	SeedlingDays     int
	GrowingDays      int
	// Refill is the amount a single watering adds, capped at 100.
	Refill      int
	Requirement WaterRequirement
	Seasons     []Season
}

var yearRound = []Season{SeasonYearRound}

var speciesTable = map[SpeciesName]Species{
	Aloe:       {Name: Aloe, Price: 110, WaterConsumption: 2, SeedlingDays: 2, GrowingDays: 4, Refill: 22, Requirement: WaterVeryLow, Seasons: yearRound},
	Bamboo:     {Name: Bamboo, Price: 110, WaterConsumption: 6, SeedlingDays: 1, GrowingDays: 2, Refill: 42, Requirement: WaterMedium, Seasons: yearRound},
	Basil:      {Name: Basil, Price: 90, WaterConsumption: 6, SeedlingDays: 1, GrowingDays: 2, Refill: 43, Requirement: WaterMedium, Seasons: []Season{SeasonSummer}},
	Cactus:     {Name: Cactus, Price: 120, WaterConsumption: 1, SeedlingDays: 3, GrowingDays: 4, Refill: 18, Requirement: WaterVeryLow, Seasons: yearRound},
	Daisy:      {Name: Daisy, Price: 100, WaterConsumption: 5, SeedlingDays: 1, GrowingDays: 3, Refill: 40, Requirement: WaterMedium, Seasons: []Season{SeasonSpring, SeasonSummer}},
	Fern:       {Name: Fern, Price: 130, WaterConsumption: 8, SeedlingDays: 2, GrowingDays: 4, Refill: 50, Requirement: WaterHigh, Seasons: yearRound},
	Ivy:        {Name: Ivy, Price: 110, WaterConsumption: 4, SeedlingDays: 2, GrowingDays: 3, Refill: 38, Requirement: WaterLow, Seasons: yearRound},
	Lavender:   {Name: Lavender, Price: 100, WaterConsumption: 3, SeedlingDays: 2, GrowingDays: 3, Refill: 30, Requirement: WaterLow, Seasons: []Season{SeasonSpring, SeasonSummer}},
	Marigold:   {Name: Marigold, Price: 85, WaterConsumption: 4, SeedlingDays: 1, GrowingDays: 2, Refill: 35, Requirement: WaterLow, Seasons: []Season{SeasonSummer, SeasonFall}},
	Mint:       {Name: Mint, Price: 105, WaterConsumption: 7, SeedlingDays: 1, GrowingDays: 2, Refill: 48, Requirement: WaterHigh, Seasons: []Season{SeasonSpring, SeasonSummer, SeasonFall}},
	Orchid:     {Name: Orchid, Price: 145, WaterConsumption: 4, SeedlingDays: 3, GrowingDays: 4, Refill: 35, Requirement: WaterLow, Seasons: yearRound},
	Petunia:    {Name: Petunia, Price: 110, WaterConsumption: 5, SeedlingDays: 2, GrowingDays: 3, Refill: 40, Requirement: WaterMedium, Seasons: []Season{SeasonSpring, SeasonSummer, SeasonFall}},
	Rose:       {Name: Rose, Price: 135, WaterConsumption: 6, SeedlingDays: 2, GrowingDays: 4, Refill: 42, Requirement: WaterMedium, Seasons: []Season{SeasonSpring, SeasonSummer, SeasonFall}},
	SnakePlant: {Name: SnakePlant, Price: 120, WaterConsumption: 1, SeedlingDays: 3, GrowingDays: 4, Refill: 20, Requirement: WaterVeryLow, Seasons: yearRound},
	Succulent:  {Name: Succulent, Price: 95, WaterConsumption: 2, SeedlingDays: 2, GrowingDays: 3, Refill: 25, Requirement: WaterVeryLow, Seasons: []Season{SeasonSpring, SeasonSummer}},
	Sunflower:  {Name: Sunflower, Price: 120, WaterConsumption: 7, SeedlingDays: 2, GrowingDays: 3, Refill: 45, Requirement: WaterHigh, Seasons: []Season{SeasonSummer}},
	Tulip:      {Name: Tulip, Price: 105, WaterConsumption: 5, SeedlingDays: 2, GrowingDays: 3, Refill: 40, Requirement: WaterMedium, Seasons: []Season{SeasonSpring}},
}

// LookupSpecies returns the constants for name. Matching is case-insensitive.
func LookupSpecies(name string) (Species, bool) {
	if s, ok := speciesTable[SpeciesName(name)]; ok {
		return s, true
	}
	for key, s := range speciesTable {
		if strings.EqualFold(string(key), name) {
			return s, true
		}
	}
	return Species{}, false
}

// MustSpecies is LookupSpecies for compile-time constants.
func MustSpecies(name SpeciesName) Species {
	s, ok := speciesTable[name]
	if !ok {
		panic(fmt.Sprintf("domain: unknown species %q", name))
	}
	return s
}

// AllSpecies lists every species sorted by name.
func AllSpecies() []Species {
	out := make([]Species, 0, len(speciesTable))
	for _, s := range speciesTable {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MaturityDay is the age at which a plant of this species becomes mature.
func (s Species) MaturityDay() int {
	return s.SeedlingDays + s.GrowingDays
}
