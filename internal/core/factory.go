package core

import (
	"errors"
	"fmt"

	"nurserycore/pkg/domain"
)

// ErrUnknownSpecies is returned for species names outside the catalogue.
var ErrUnknownSpecies = errors.New("unknown species")

// PlantFactory creates plants by species name.
type PlantFactory struct {
	ids *domain.IDAllocator
}

// NewPlantFactory returns a factory drawing identifiers from ids.
func NewPlantFactory(ids *domain.IDAllocator) PlantFactory {
	return PlantFactory{ids: ids}
}

// Create returns a seedling of the named species.
func (f PlantFactory) Create(name string) (*domain.Plant, error) {
	species, ok := domain.LookupSpecies(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	return domain.NewPlant(f.ids, species), nil
}
