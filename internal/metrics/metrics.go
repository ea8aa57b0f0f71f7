package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesFormatted counts formatting calls.
	MessagesFormatted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgfmt_messages_formatted_total",
			Help: "Total number of messages run through the formatting pipeline.",
		},
		[]string{"transport", "outcome"}, // transport: http, ws, cli; outcome: ok, error
	)

	// FormatDuration observes how long a single formatting call takes.
	FormatDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "msgfmt_format_duration_seconds",
			Help:    "Time spent formatting a single message.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
		[]string{"transport"},
	)

	// CatalogEntries reports the size of the loaded catalog.
	CatalogEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "msgfmt_catalog_entries",
			Help: "Number of entries in the loaded catalog snapshot.",
		},
		[]string{"kind"}, // rooms, emotes, replacements
	)

	// CatalogRefreshes counts catalog snapshot reloads.
	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgfmt_catalog_refreshes_total",
			Help: "Total number of catalog snapshot reloads.",
		},
		[]string{"status"}, // success, error
	)

	// RateLimited counts requests rejected by the per-client limiter.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgfmt_rate_limited_total",
			Help: "Total number of requests rejected by rate limiting.",
		},
		[]string{"transport"},
	)

	// ActiveConnections reports open WebSocket connections.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "msgfmt_active_ws_connections",
			Help: "Number of currently open WebSocket connections.",
		},
	)
)

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
