package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics: encoders, indexing, search.
var (
	EncodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comps",
			Name:      "encode_requests_total",
			Help:      "Total number of encoder requests",
		},
		[]string{"kind", "model", "status"}, // kind: "text" / "image"
	)

	EncodeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "comps",
			Name:      "encode_request_duration_seconds",
			Help:      "Encoder request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind", "model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comps",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexedPropertiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comps",
			Name:      "indexed_properties_total",
			Help:      "Total properties processed by the indexing pipeline",
		},
		[]string{"status"}, // "indexed" / "skipped" / "failed"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comps",
			Name:      "search_requests_total",
			Help:      "Total number of similarity search requests",
		},
		[]string{"mode", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "comps",
			Name:      "search_request_duration_seconds",
			Help:      "Similarity search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	SearchCandidatesFused = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "comps",
			Name:      "search_candidates_fused",
			Help:      "Number of distinct candidates entering rank fusion",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"mode"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers all Prometheus collectors, the HTTP
// middleware ones included. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(EncodeRequestsTotal)
	prometheus.MustRegister(EncodeRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(IndexedPropertiesTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchCandidatesFused)
	pipelineMetricsRegistered = true
}
