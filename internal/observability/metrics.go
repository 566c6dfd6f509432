package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	progressRecomputeTotal    *prometheus.CounterVec
	progressRecomputeSeconds  prometheus.Histogram
	progressRecomputeFailures *prometheus.CounterVec

	uploadRequestsTotal *prometheus.CounterVec
	uploadRejectedTotal *prometheus.CounterVec
	uploadLatency       prometheus.Histogram
	mediaDeleteFailures prometheus.Counter

	statsCacheTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		progressRecomputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_recompute_total",
			Help: "Number of progress recomputations by trigger.",
		}, []string{"trigger"})

		progressRecomputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "progress_recompute_seconds",
			Help:    "Time spent loading the curriculum and aggregating progress.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		progressRecomputeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_recompute_failures_total",
			Help: "Recomputations that failed after a ledger write succeeded.",
		}, []string{"trigger"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Stored unit media grouped by kind.",
		}, []string{"kind"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploads_rejected_total",
			Help: "Rejected unit media uploads grouped by reason.",
		}, []string{"reason"})

		uploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "media_upload_seconds",
			Help:    "Latency of storing unit media.",
			Buckets: prometheus.DefBuckets,
		})

		mediaDeleteFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_delete_failures_total",
			Help: "Media files that could not be removed during cascade deletes.",
		})

		statsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_stats_cache_total",
			Help: "Admin statistics lookups grouped by cache result.",
		}, []string{"result"})

		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			progressRecomputeTotal, progressRecomputeSeconds, progressRecomputeFailures,
			uploadRequestsTotal, uploadRejectedTotal, uploadLatency, mediaDeleteFailures,
			statsCacheTotal,
		)
	})
}

// MetricsHandler serves the API registry on the scrape endpoint.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ProgressRecomputes counts aggregator runs.
func ProgressRecomputes() *prometheus.CounterVec {
	RegisterMetrics()
	return progressRecomputeTotal
}

// ProgressRecomputeLatency observes aggregator latency.
func ProgressRecomputeLatency() prometheus.Histogram {
	RegisterMetrics()
	return progressRecomputeSeconds
}

// ProgressRecomputeFailures counts degraded write-path responses.
func ProgressRecomputeFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return progressRecomputeFailures
}

// UploadRequests counts stored media.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected counts rejected media.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency observes media storage latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatency
}

// MediaDeleteFailures counts best-effort deletes that failed.
func MediaDeleteFailures() prometheus.Counter {
	RegisterMetrics()
	return mediaDeleteFailures
}

// StatsCache counts admin stats cache hits and misses.
func StatsCache() *prometheus.CounterVec {
	RegisterMetrics()
	return statsCacheTotal
}
