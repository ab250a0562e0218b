package geocode

import (
	"context"

	"github.com/urbsense/location-insight-service/internal/catalog"
	"github.com/urbsense/location-insight-service/internal/ibge"
	"github.com/urbsense/location-insight-service/internal/models"
)

// municipalityDirectory is the slice of the IBGE client this strategy needs.
type municipalityDirectory interface {
	SearchMunicipalities(ctx context.Context, name string, limit int) ([]ibge.Municipality, error)
}

// IBGEStrategy resolves queries against the IBGE municipality directory. The
// directory carries no geometry, so coordinates are joined from the static
// catalog; municipalities the catalog does not know are skipped.
type IBGEStrategy struct {
	directory municipalityDirectory
}

// NewIBGEStrategy creates the country-specific directory strategy.
func NewIBGEStrategy(directory municipalityDirectory) *IBGEStrategy {
	return &IBGEStrategy{directory: directory}
}

// Name implements Strategy.
func (s *IBGEStrategy) Name() string { return models.ProviderIBGE }

// Available implements Strategy. The directory needs no credential.
func (s *IBGEStrategy) Available() bool { return true }

// Search implements Strategy.
func (s *IBGEStrategy) Search(ctx context.Context, query string, limit int) ([]models.LocationData, error) {
	// Over-fetch: directory hits without catalog coordinates get dropped.
	matches, err := s.directory.SearchMunicipalities(ctx, query, limit*4)
	if err != nil {
		return nil, err
	}

	out := make([]models.LocationData, 0, limit)
	for _, m := range matches {
		if len(out) >= limit {
			break
		}
		coord, ok := catalog.Coordinates(m.Name)
		if !ok {
			continue
		}
		out = append(out, models.LocationData{
			Coordinate: coord,
			Address:    m.Name + ", " + m.State + ", Brasil",
			City:       m.Name,
			State:      m.State,
			Country:    "Brasil",
		})
	}
	return out, nil
}
