package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(zap.NewNop()))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		if v, ok := r.Context().Value("correlation_id").(string); !ok || v == "" {
			t.Error("correlation_id missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/x", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("X-Correlation-ID header not set")
	}
}

func TestCorrelationIDMiddleware_PreservesIncomingID(t *testing.T) {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(zap.NewNop()))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Correlation-ID", "incoming-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "incoming-id" {
		t.Errorf("X-Correlation-ID = %q, want incoming-id", got)
	}
}

func TestRateLimitMiddleware_Denies(t *testing.T) {
	router := mux.NewRouter()
	router.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(1), 1)))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest("GET", "/x", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest("GET", "/x", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	router := mux.NewRouter()
	router.Use(RateLimitMiddleware(nil))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	router := mux.NewRouter()
	router.Use(TimeoutMiddleware(50 * time.Millisecond))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); !ok {
			t.Error("request context has no deadline")
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGetRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/api/v1/locations/search", "/api/v1/locations/search"},
		{"/api/v1/analysis", "/api/v1/analysis"},
		{"/other", "/other"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest("GET", tc.path, nil)
		if got := getRoute(req); got != tc.want {
			t.Errorf("getRoute(%s) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
