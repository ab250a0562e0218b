package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/urbsense/location-insight-service/internal/ibge"
)

type stubDirectory struct {
	matches []ibge.Municipality
	err     error
}

func (d stubDirectory) SearchMunicipalities(ctx context.Context, name string, limit int) ([]ibge.Municipality, error) {
	return d.matches, d.err
}

func TestIBGEStrategy_JoinsCatalogCoordinates(t *testing.T) {
	s := NewIBGEStrategy(stubDirectory{matches: []ibge.Municipality{
		{ID: 4106902, Name: "Curitiba", State: "PR"},
	}})

	got, err := s.Search(context.Background(), "curitiba", 5)
	if err != nil {
		t.Fatalf("Search() err = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Search() = %d results, want 1", len(got))
	}
	r := got[0]
	if r.City != "Curitiba" || r.State != "PR" || r.Country != "Brasil" {
		t.Errorf("result = %+v", r)
	}
	if r.Coordinate.Latitude != -25.4284 || r.Coordinate.Longitude != -49.2733 {
		t.Errorf("coordinate = %+v, want catalog coordinate for Curitiba", r.Coordinate)
	}
}

func TestIBGEStrategy_SkipsUnknownMunicipalities(t *testing.T) {
	s := NewIBGEStrategy(stubDirectory{matches: []ibge.Municipality{
		{ID: 1, Name: "Curitibanos", State: "SC"},
		{ID: 4106902, Name: "Curitiba", State: "PR"},
	}})

	got, err := s.Search(context.Background(), "curitib", 5)
	if err != nil {
		t.Fatalf("Search() err = %v", err)
	}
	if len(got) != 1 || got[0].City != "Curitiba" {
		t.Errorf("Search() = %+v, want only the catalog-known city", got)
	}
}

func TestIBGEStrategy_PropagatesError(t *testing.T) {
	s := NewIBGEStrategy(stubDirectory{err: errors.New("directory down")})
	if _, err := s.Search(context.Background(), "query", 5); err == nil {
		t.Error("Search() err = nil, want error")
	}
}

func TestIBGEStrategy_AlwaysAvailable(t *testing.T) {
	s := NewIBGEStrategy(stubDirectory{})
	if !s.Available() {
		t.Error("Available() = false, want true")
	}
}
