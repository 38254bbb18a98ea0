package metrics

import "github.com/prometheus/client_golang/prometheus"

// Insight and imagery Prometheus metrics.
var (
	InsightRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "insight_requests_total",
			Help:      "Total number of vision model requests",
		},
		[]string{"provider", "model", "status"},
	)

	InsightRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insightd",
			Name:      "insight_request_duration_seconds",
			Help:      "Vision model request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "model"},
	)

	InsightTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "insight_tokens_total",
			Help:      "Total vision model tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	InsightErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "insight_errors_total",
			Help:      "Total vision model errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	InsightCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "insight_cache_total",
			Help:      "Insight cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ImageryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "imagery_requests_total",
			Help:      "Total Street View API requests",
		},
		[]string{"kind", "status"}, // kind: "image" / "metadata"
	)

	ImageryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insightd",
			Name:      "imagery_request_duration_seconds",
			Help:      "Street View API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "resolutions_total",
			Help:      "Building resolution outcomes",
		},
		[]string{"outcome"}, // "contained" / "nearby" / "not_found"
	)
)

var insightMetricsRegistered bool

// RegisterInsightMetrics registers Prometheus insight metrics. Must be called once from main.
func RegisterInsightMetrics() {
	if insightMetricsRegistered {
		return
	}
	prometheus.MustRegister(InsightRequestsTotal)
	prometheus.MustRegister(InsightRequestDuration)
	prometheus.MustRegister(InsightTokensTotal)
	prometheus.MustRegister(InsightErrorsTotal)
	prometheus.MustRegister(InsightCacheTotal)
	prometheus.MustRegister(ImageryRequestsTotal)
	prometheus.MustRegister(ImageryRequestDuration)
	prometheus.MustRegister(ResolutionsTotal)
	insightMetricsRegistered = true
}
