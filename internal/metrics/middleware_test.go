package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newInstrumentedRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	return r
}

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := newInstrumentedRouter()
	r.Get("/v1/properties/{id}/similar", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	req := httptest.NewRequest("GET", "/v1/properties/42/similar", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	// The path label is the route pattern, never the raw URL with its id.
	count := testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues("GET", "/v1/properties/{id}/similar", "200"))
	if count < 1 {
		t.Errorf("http_requests_total = %f, want >= 1", count)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newInstrumentedRouter()
	r.Post("/v1/properties", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tests := []struct {
		method, path, status string
	}{
		{"POST", "/v1/properties", "201"},
		{"GET", "/missing", "404"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			count := testutil.ToFloat64(
				httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))
			if count < 1 {
				t.Errorf("requests_total for %s %s → %s = %f, want >= 1",
					tc.method, tc.path, tc.status, count)
			}
		})
	}
}
