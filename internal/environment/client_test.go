package environment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/urbsense/location-insight-service/internal/models"
)

func TestOpenWeatherClient_Reading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") == "" {
			t.Error("request missing appid parameter")
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/weather"):
			_, _ = w.Write([]byte(`{"main": {"temp": 26.5, "humidity": 70}, "weather": [{"description": "céu limpo"}]}`))
		case strings.HasSuffix(r.URL.Path, "/air_pollution"):
			_, _ = w.Write([]byte(`{"list": [{"main": {"aqi": 2}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("test-key", srv.URL, time.Second)
	got, err := c.Reading(context.Background(), models.Coordinate{Latitude: -22.9, Longitude: -43.2})
	if err != nil {
		t.Fatalf("Reading() err = %v", err)
	}
	if got.Temperature != 26.5 || got.Humidity != 70 || got.AQI != 2 {
		t.Errorf("Reading() = %+v", got)
	}
	if got.Description != "céu limpo" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestOpenWeatherClient_Reading_EmptyPollutionList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/weather") {
			_, _ = w.Write([]byte(`{"main": {"temp": 20, "humidity": 50}}`))
			return
		}
		_, _ = w.Write([]byte(`{"list": []}`))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("test-key", srv.URL, time.Second)
	if _, err := c.Reading(context.Background(), models.Coordinate{}); err == nil {
		t.Error("Reading() err = nil, want error for empty pollution list")
	}
}

func TestOpenWeatherClient_Reading_Unconfigured(t *testing.T) {
	c := NewOpenWeatherClient("", "http://example.invalid", time.Second)
	if c.Configured() {
		t.Error("Configured() = true without API key")
	}
	_, err := c.Reading(context.Background(), models.Coordinate{})
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("error = %v, want ErrNoCredential", err)
	}
}

func TestOpenWeatherClient_Reading_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("bad-key", srv.URL, time.Second)
	if _, err := c.Reading(context.Background(), models.Coordinate{}); err == nil {
		t.Error("Reading() err = nil, want error for HTTP 401")
	}
}
