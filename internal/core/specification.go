package core

import (
	"errors"
	"fmt"
	"slices"

	"nurserycore/pkg/domain"
)

// Specification describes what a customer wants to buy. Zero-valued fields
// match anything.
type Specification struct {
	Species     domain.SpeciesName
	Requirement domain.WaterRequirement
	Season      domain.Season
	Decorators  []domain.DecoratorKind
}

// Matches reports whether p satisfies the specification.
func (s Specification) Matches(p *domain.Plant) bool {
	if p == nil {
		return false
	}
	if s.Species != "" && p.Species().Name != s.Species {
		return false
	}
	if s.Requirement != "" && p.WaterRequirement() != s.Requirement {
		return false
	}
	if s.Season != "" && !p.IsSuitableForSeason(s.Season) {
		return false
	}
	return true
}

var knownRequirements = []domain.WaterRequirement{domain.WaterVeryLow, domain.WaterLow, domain.WaterMedium, domain.WaterHigh}

var knownSeasons = []domain.Season{domain.SeasonSpring, domain.SeasonSummer, domain.SeasonFall, domain.SeasonWinter, domain.SeasonYearRound}

// SpecificationBuilder assembles a Specification from loosely typed input,
// collecting every validation error for Build.
type SpecificationBuilder struct {
	spec Specification
	errs []error
}

// NewSpecificationBuilder returns an empty builder.
func NewSpecificationBuilder() *SpecificationBuilder {
	return &SpecificationBuilder{}
}

// Species requests a species by name, case-insensitively.
func (b *SpecificationBuilder) Species(name string) *SpecificationBuilder {
	species, ok := domain.LookupSpecies(name)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrUnknownSpecies, name))
		return b
	}
	b.spec.Species = species.Name
	return b
}

// WaterRequirement requests plants with the given water needs.
func (b *SpecificationBuilder) WaterRequirement(req string) *SpecificationBuilder {
	r := domain.WaterRequirement(req)
	if !slices.Contains(knownRequirements, r) {
		b.errs = append(b.errs, fmt.Errorf("unknown water requirement %q", req))
		return b
	}
	b.spec.Requirement = r
	return b
}

// Season requests plants suited to season.
func (b *SpecificationBuilder) Season(season string) *SpecificationBuilder {
	s := domain.Season(season)
	if !slices.Contains(knownSeasons, s) {
		b.errs = append(b.errs, fmt.Errorf("unknown season %q", season))
		return b
	}
	b.spec.Season = s
	return b
}

// Decorate appends a decorator; decorators are applied in call order.
func (b *SpecificationBuilder) Decorate(kind string) *SpecificationBuilder {
	k, ok := domain.ParseDecoratorKind(kind)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("unknown decorator %q", kind))
		return b
	}
	b.spec.Decorators = append(b.spec.Decorators, k)
	return b
}

// Build returns the specification or the joined validation errors.
func (b *SpecificationBuilder) Build() (Specification, error) {
	if len(b.errs) > 0 {
		return Specification{}, errors.Join(b.errs...)
	}
	spec := b.spec
	spec.Decorators = slices.Clone(b.spec.Decorators)
	return spec, nil
}

// Sale is the outcome of a fulfilled order. Item has been removed from the
// nursery and carries the requested decorators.
type Sale struct {
	Item     domain.Component
	Price    float64
	Day      int
	Warnings []domain.Violation
}
