package core

import (
	"errors"
	"strings"
	"testing"

	"nurserycore/pkg/domain"
)

func TestSpecificationBuilderBuildsOrder(t *testing.T) {
	spec, err := NewSpecificationBuilder().
		Species("lavender").
		WaterRequirement("low").
		Season("summer").
		Decorate("GiftWrap").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if spec.Species != domain.Lavender || spec.Requirement != domain.WaterLow || spec.Season != domain.SeasonSummer {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if len(spec.Decorators) != 1 || spec.Decorators[0] != domain.GiftWrap {
		t.Fatalf("expected gift wrap decorator, got %+v", spec.Decorators)
	}

	ids := domain.NewIDAllocator()
	if !spec.Matches(domain.NewPlant(ids, domain.MustSpecies(domain.Lavender))) {
		t.Fatalf("expected lavender to match")
	}
	if spec.Matches(domain.NewPlant(ids, domain.MustSpecies(domain.Ivy))) || spec.Matches(nil) {
		t.Fatalf("expected ivy and nil not to match")
	}
}

func TestSpecificationBuilderJoinsErrors(t *testing.T) {
	_, err := NewSpecificationBuilder().
		Species("Triffid").
		WaterRequirement("soaked").
		Season("monsoon").
		Decorate("Bow").
		Build()
	if !errors.Is(err, ErrUnknownSpecies) {
		t.Fatalf("expected ErrUnknownSpecies in joined error, got %v", err)
	}
	for _, want := range []string{"soaked", "monsoon", "Bow"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error %v", want, err)
		}
	}
}

func TestEmptySpecificationMatchesAnything(t *testing.T) {
	spec, err := NewSpecificationBuilder().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, s := range domain.AllSpecies() {
		if !spec.Matches(domain.NewPlant(domain.NewIDAllocator(), s)) {
			t.Fatalf("expected empty spec to match %s", s.Name)
		}
	}
}

func TestPlantFactory(t *testing.T) {
	f := NewPlantFactory(domain.NewIDAllocator())
	p, err := f.Create("SNAKEPLANT")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name() != "SnakePlant" || p.Stage() != domain.StageSeedling {
		t.Fatalf("unexpected plant: %s %s", p.Name(), p.Stage())
	}
	if _, err := f.Create("Triffid"); !errors.Is(err, ErrUnknownSpecies) {
		t.Fatalf("expected ErrUnknownSpecies, got %v", err)
	}
}
