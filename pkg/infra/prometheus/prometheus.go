package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWithPrefix("backbone_", registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RateLimitDecisions = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limit decisions by endpoint, backend and outcome",
		},
		[]string{"endpoint", "backend", "outcome"},
	)

	RateLimitFailOpen = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_fail_open_total",
			Help: "Checks admitted because the counter store was unavailable",
		},
		[]string{"endpoint", "backend"},
	)

	NotificationDispatches = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatches_total",
			Help: "Notification dispatch attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	NotificationDispatchLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_latency_ms",
			Help:    "Time to dispatch and persist one notification in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"channel"},
	)

	QueueRuns = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_runs_total",
			Help: "Queue processor runs by result",
		},
		[]string{"result"},
	)

	QueueJobs = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_total",
			Help: "Jobs handled by the queue processor by result",
		},
		[]string{"result"},
	)

	QueueRunLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "queue_run_latency_ms",
			Help:    "Queue processor run duration in milliseconds",
			Buckets: latencyBuckets,
		},
	)

	HTTPRequests = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "API requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
)

var initialized bool

// Initialize registers the process collectors. It is safe to call once per process.
func Initialize() {
	if initialized {
		return
	}
	initialized = true
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func Gatherer() prometheus.Gatherer {
	return registry
}
