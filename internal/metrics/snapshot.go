package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	snapshotRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdex",
			Name:      "snapshot_refresh_total",
			Help:      "Snapshot refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	snapshotArticles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsdex",
			Name:      "snapshot_articles",
			Help:      "Articles in the current snapshot",
		},
	)
)

func init() {
	prometheus.MustRegister(snapshotRefreshTotal)
	prometheus.MustRegister(snapshotArticles)
}

// RecordSnapshotRefresh counts one refresh attempt. outcome is one of
// "ok", "stale", "spill", "error".
func RecordSnapshotRefresh(outcome string) {
	snapshotRefreshTotal.WithLabelValues(outcome).Inc()
}

// SetSnapshotArticles updates the current article count gauge.
func SetSnapshotArticles(n int) {
	snapshotArticles.Set(float64(n))
}
