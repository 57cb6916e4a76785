package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nourish_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedItemsServed counts posts returned by the feed, split by whether the
	// viewer received the locked projection.
	FeedItemsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nourish_feed_items_served_total",
		Help: "Total number of feed items served",
	}, []string{"locked"})

	// CounterUpdateFailures counts denormalized counter updates that failed
	// after the primary write succeeded.
	CounterUpdateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nourish_counter_update_failures_total",
		Help: "Total number of failed denormalized counter updates",
	}, []string{"counter"})

	// ReconcileRepairs counts rows whose stored counter was rewritten by a
	// reconciliation sweep.
	ReconcileRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nourish_reconcile_repairs_total",
		Help: "Total number of counters repaired by reconciliation",
	}, []string{"counter"})

	// ReconcileRuns counts reconciliation sweeps by outcome.
	ReconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nourish_reconcile_runs_total",
		Help: "Total number of reconciliation sweeps",
	}, []string{"outcome"})

	// MediaUploads counts accepted uploads by content type.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nourish_media_uploads_total",
		Help: "Total number of accepted media uploads",
	}, []string{"content_type"})
)

// Counter label values.
const (
	CounterFollowers = "followers_count"
	CounterReplies   = "reply_count"
)

// TrackQuery returns a function that records query latency when called,
// typically deferred at the top of a repository method.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordFeedItems records a served feed page.
func RecordFeedItems(locked, unlocked int) {
	if locked > 0 {
		FeedItemsServed.WithLabelValues("true").Add(float64(locked))
	}
	if unlocked > 0 {
		FeedItemsServed.WithLabelValues("false").Add(float64(unlocked))
	}
}
