// Package metrics holds the Prometheus collectors of the social graph
// service. They register on the default registry and are served by the
// admin server's /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GraphMutationsTotal counts relationship mutations by operation and outcome.
	GraphMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_graph_mutations_total",
			Help: "Total number of relationship mutations",
		},
		[]string{"op", "outcome"},
	)

	// FeedRequestDuration tracks feed assembly latency per feed kind.
	FeedRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "social_graph_feed_duration_seconds",
			Help:    "Duration of feed assembly in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	// FeedRowsDroppedTotal counts rows removed by the per-row visibility
	// check after the SQL filter already ran.
	FeedRowsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_graph_feed_rows_dropped_total",
			Help: "Feed rows rejected by the post visibility rule",
		},
		[]string{"kind"},
	)

	CountCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_graph_count_cache_total",
			Help: "Counter cache lookups by result",
		},
		[]string{"result"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_graph_notifications_total",
			Help: "Notification dispatches by event type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	CDCEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_graph_cdc_events_total",
			Help: "User CDC events by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	ReconciledUsersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "social_graph_reconciled_users_total",
			Help: "Users recounted by the reconciler",
		},
	)
)

// RecordMutation counts a relationship mutation. outcome is a result status
// such as "followed", or "error".
func RecordMutation(op, outcome string) {
	GraphMutationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveFeed records how long one feed page took to assemble.
func ObserveFeed(kind string, start time.Time) {
	FeedRequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func RecordFeedDrop(kind string, n int) {
	if n > 0 {
		FeedRowsDroppedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

func RecordCountCache(hit bool) {
	if hit {
		CountCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	CountCacheTotal.WithLabelValues("miss").Inc()
}

func RecordNotification(eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	NotificationsTotal.WithLabelValues(eventType, outcome).Inc()
}

func RecordCDCEvent(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CDCEventsTotal.WithLabelValues(op, outcome).Inc()
}
