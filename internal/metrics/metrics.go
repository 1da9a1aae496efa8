// Package metrics holds Prometheus instrumentation for the search pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// EmbeddingRequestsTotal counts embedding API calls by status.
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastctl",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	// EmbeddingRequestDuration observes embedding API latency.
	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fastctl",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	// EmbeddingTokensTotal counts embedding tokens consumed.
	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastctl",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	// EmbeddingCacheTotal counts embedding cache hits and misses.
	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastctl",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	// ExtractionRequestsTotal counts query extraction calls by status.
	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastctl",
			Name:      "extraction_requests_total",
			Help:      "Total number of query extraction requests",
		},
		[]string{"model", "status"}, // status: "success" / "malformed" / "error"
	)

	// ExtractionRequestDuration observes query extraction latency.
	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fastctl",
			Name:      "extraction_request_duration_seconds",
			Help:      "Query extraction request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	// SearchesTotal counts executed searches by outcome.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastctl",
			Name:      "searches_total",
			Help:      "Total number of searches by outcome",
		},
		[]string{"outcome"}, // "ok" / "degraded" / "validation_error" / "retrieval_error"
	)
)

var registered bool

// Register registers the pipeline metrics. Must be called once from main (no init()).
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ExtractionRequestDuration)
	prometheus.MustRegister(SearchesTotal)
	registered = true
}
