// Package httpapi exposes the indexing and similarity search services over
// HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/domain/search/filter"
	"github.com/homegrid-io/comps/internal/domain/search/mode"
	indexuc "github.com/homegrid-io/comps/internal/usecase/index"
	searchuc "github.com/homegrid-io/comps/internal/usecase/search"
)

// HealthChecker reports readiness of a dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options carries the request defaults of the server.
type Options struct {
	DefaultMode  mode.Mode
	DefaultTopK  int
	MaxBatchSize int
	BatchWorkers int
}

// Server wires the use case services into chi handlers.
type Server struct {
	indexer  *indexuc.Service
	searcher *searchuc.Service
	store    HealthChecker
	opts     Options
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	indexer *indexuc.Service,
	searcher *searchuc.Service,
	store HealthChecker,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.DefaultMode == "" {
		opts.DefaultMode = mode.Balanced
	}
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 10
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 100
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = 4
	}
	return &Server{
		indexer:  indexer,
		searcher: searcher,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/properties", s.indexProperty)
	r.Post("/v1/properties/batch", s.indexBatch)
	r.Get("/v1/properties/{id}/similar", s.findSimilar)
	r.Get("/healthz", s.healthCheck)
	r.Get("/metrics", s.metrics)
}

// indexProperty handles POST /v1/properties.
func (s *Server) indexProperty(w http.ResponseWriter, r *http.Request) {
	var rec domain.PropertyRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if err := s.indexer.IndexProperty(r.Context(), &rec); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": rec.ID, "status": "indexed"})
}

type batchRequest struct {
	Properties []*domain.PropertyRecord `json:"properties"`
}

type batchResponse struct {
	Indexed int               `json:"indexed"`
	Failed  int               `json:"failed"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// indexBatch handles POST /v1/properties/batch.
func (s *Server) indexBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if len(req.Properties) == 0 || len(req.Properties) > s.opts.MaxBatchSize {
		writeError(w, http.StatusBadRequest, "validation_failed",
			"properties count must be between 1 and "+strconv.Itoa(s.opts.MaxBatchSize))
		return
	}

	report := s.indexer.IndexBatch(r.Context(), req.Properties, s.opts.BatchWorkers)

	resp := batchResponse{Indexed: report.Indexed, Failed: len(report.Failures)}
	if len(report.Failures) > 0 {
		resp.Errors = make(map[string]string, len(report.Failures))
		for _, f := range report.Failures {
			resp.Errors[strconv.FormatUint(f.ID, 10)] = safeDomainMessage(f.Err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type similarResponse struct {
	Items []similarItem `json:"items"`
	Total int           `json:"total"`
}

type similarItem struct {
	ID       uint64                 `json:"id"`
	Score    float64                `json:"score"`
	Property *domain.PropertyRecord `json:"property"`
}

// findSimilar handles GET /v1/properties/{id}/similar.
func (s *Server) findSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "property id must be a positive integer")
		return
	}

	q := r.URL.Query()

	m := s.opts.DefaultMode
	if v := q.Get("mode"); v != "" {
		m = mode.Mode(v)
	}

	topK := s.opts.DefaultTopK
	if v := q.Get("top_k"); v != "" {
		topK, err = strconv.Atoi(v)
		if err != nil || topK <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "top_k must be a positive integer")
			return
		}
	}

	filters, err := filtersFromQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	results, err := s.searcher.FindSimilar(r.Context(), id, m, filters, topK)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidMode):
			s.handleDomainError(w, err)
		default:
			// Store hiccups degrade to an explicit empty result.
			s.logger.Error("similarity search failed", zap.Uint64("id", id), zap.Error(err))
			writeJSON(w, http.StatusOK, similarResponse{Items: []similarItem{}})
		}
		return
	}

	items := make([]similarItem, len(results))
	for i, res := range results {
		items[i] = similarItem{ID: res.ID, Score: res.Score, Property: res.Payload}
	}

	writeJSON(w, http.StatusOK, similarResponse{Items: items, Total: len(items)})
}

// filtersFromQuery parses the optional filter query parameters.
func filtersFromQuery(q map[string][]string) (*filter.Filters, error) {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	var f filter.Filters

	for _, spec := range []struct {
		key  string
		dest **float64
	}{
		{"min_price", &f.MinPrice},
		{"max_price", &f.MaxPrice},
		{"min_bathrooms", &f.MinBathrooms},
		{"max_bathrooms", &f.MaxBathrooms},
	} {
		if v := get(spec.key); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errors.New(spec.key + " must be a number")
			}
			*spec.dest = &parsed
		}
	}

	for _, spec := range []struct {
		key  string
		dest **int
	}{
		{"min_bedrooms", &f.MinBedrooms},
		{"max_bedrooms", &f.MaxBedrooms},
	} {
		if v := get(spec.key); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.New(spec.key + " must be an integer")
			}
			*spec.dest = &parsed
		}
	}

	f.PropertyType = get("property_type")
	if v := get("amenities"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				f.MustHaveAmenities = append(f.MustHaveAmenities, a)
			}
		}
	}

	return &f, nil
}

// healthCheck handles GET /healthz.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrEmbeddingUnavailable,
		domain.ErrNotFound,
		domain.ErrInvalidMode,
		domain.ErrDimensionMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)

	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
	case errors.Is(err, domain.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "invalid_mode", msg)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", msg)
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		writeError(w, http.StatusUnprocessableEntity, "embedding_unavailable", msg)
	case errors.Is(err, domain.ErrTransientIO):
		writeError(w, http.StatusServiceUnavailable, "transient_io", msg)
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
