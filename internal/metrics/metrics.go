package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Short links
	LinksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wall_links_created_total",
			Help: "Short link create-or-get requests by result",
		},
		[]string{"status"},
	)

	LinkResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wall_link_resolutions_total",
			Help: "Short link resolutions by outcome",
		},
		[]string{"outcome"},
	)

	LinkCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wall_link_cache_total",
			Help: "Short link cache lookups by result",
		},
		[]string{"result"},
	)

	// Pins
	PinOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wall_pin_operations_total",
			Help: "Pin, unpin and reorder operations by result",
		},
		[]string{"op", "status"},
	)

	ModerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wall_moderation_total",
			Help: "Moderation screens by result",
		},
		[]string{"result"},
	)
)

func RecordHTTP(method, path, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// Status maps an error to the "ok" / "error" label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
