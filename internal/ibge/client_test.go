package ibge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const municipalitiesBody = `[
	{"id": 3550308, "nome": "São Paulo", "microrregiao": {"mesorregiao": {"UF": {"sigla": "SP"}}}},
	{"id": 2927408, "nome": "Salvador", "microrregiao": {"mesorregiao": {"UF": {"sigla": "BA"}}}},
	{"id": 4106902, "nome": "Curitiba", "microrregiao": {"mesorregiao": {"UF": {"sigla": "PR"}}}},
	{"id": 4301636, "nome": "Barão do Triunfo", "microrregiao": {"mesorregiao": {"UF": {"sigla": "RS"}}}}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL, time.Second)
}

func TestSearchMunicipalities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(municipalitiesBody))
	})

	got, err := c.SearchMunicipalities(context.Background(), "sa", 10)
	if err != nil {
		t.Fatalf("SearchMunicipalities() err = %v", err)
	}
	// "sa" matches Salvador only (case-insensitive, accent-sensitive).
	if len(got) != 1 {
		t.Fatalf("SearchMunicipalities() = %d results, want 1: %+v", len(got), got)
	}
	if got[0].Name != "Salvador" || got[0].State != "BA" || got[0].ID != 2927408 {
		t.Errorf("result = %+v", got[0])
	}
}

func TestSearchMunicipalities_Limit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(municipalitiesBody))
	})

	got, err := c.SearchMunicipalities(context.Background(), "o", 2)
	if err != nil {
		t.Fatalf("SearchMunicipalities() err = %v", err)
	}
	if len(got) > 2 {
		t.Errorf("SearchMunicipalities() = %d results, want at most 2", len(got))
	}
}

func TestFindMunicipality_PrefersExactMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "nome": "Curitibanos", "microrregiao": {"mesorregiao": {"UF": {"sigla": "SC"}}}},
			{"id": 2, "nome": "Curitiba", "microrregiao": {"mesorregiao": {"UF": {"sigla": "PR"}}}}
		]`))
	})

	got, err := c.FindMunicipality(context.Background(), "Curitiba")
	if err != nil {
		t.Fatalf("FindMunicipality() err = %v", err)
	}
	if got.ID != 2 || got.Name != "Curitiba" {
		t.Errorf("FindMunicipality() = %+v, want exact match", got)
	}
}

func TestFindMunicipality_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.FindMunicipality(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPopulation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"resultados": [{"series": [{"serie": {"2021": "12396372", "2020": "12325232"}}]}]}]`))
	})

	got, err := c.Population(context.Background(), 3550308)
	if err != nil {
		t.Fatalf("Population() err = %v", err)
	}
	if got != 12396372 {
		t.Errorf("Population() = %d, want latest year value 12396372", got)
	}
}

func TestDensity_SkipsMissingValues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"resultados": [{"series": [{"serie": {"2022": "...", "2010": "7398.26"}}]}]}]`))
	})

	got, err := c.Density(context.Background(), 3550308)
	if err != nil {
		t.Fatalf("Density() err = %v", err)
	}
	if got != 7398.26 {
		t.Errorf("Density() = %v, want 7398.26", got)
	}
}

func TestDevelopmentIndex_NoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"resultados": [{"series": [{"serie": {"2010": "-"}}]}]}]`))
	})

	_, err := c.DevelopmentIndex(context.Background(), 3550308)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := c.SearchMunicipalities(context.Background(), "x", 5); err == nil {
		t.Error("SearchMunicipalities() err = nil, want error for HTTP 502")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Error("Ping() err = nil, want error for HTTP 502")
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 35, "sigla": "SP"}`))
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() err = %v", err)
	}
}
