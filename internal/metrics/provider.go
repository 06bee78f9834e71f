package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model-provider and query-engine Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogqa",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogqa",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogqa",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogqa",
			Name:      "llm_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"kind", "status"}, // kind: "classify" / "generate"
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogqa",
			Name:      "llm_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	RouterFastPathTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogqa",
			Name:      "router_fastpath_total",
			Help:      "Queries resolved by stage-1 rules, without the classifier",
		},
		[]string{"intent"},
	)

	BlockedQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogqa",
			Name:      "blocked_queries_total",
			Help:      "Queries stopped by the defense policy, by layer",
		},
		[]string{"layer", "intent"}, // layer: "router" / "composer"
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers the metrics above. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(RouterFastPathTotal)
	prometheus.MustRegister(BlockedQueriesTotal)
	providerMetricsRegistered = true
}
