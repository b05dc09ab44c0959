// Package metrics exposes Prometheus collectors for source loading and
// tree rendering.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache results recorded by TreeRequest.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
)

var (
	sourceLoadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shajara_source_load_total",
		Help: "Total GEDCOM source loads by result",
	}, []string{"result"})

	sourceParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shajara_source_parse_duration_seconds",
		Help:    "GEDCOM parse duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	})

	sourceIndividuals = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shajara_source_individuals",
		Help: "Individuals in each loaded source",
	}, []string{"source"})

	treeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shajara_tree_requests_total",
		Help: "Tree view requests by cache result",
	}, []string{"cache"})

	layoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shajara_layout_duration_seconds",
		Help:    "Tree view build and layout duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
	})
)

// SourceLoaded records a successful load of source with n individuals.
func SourceLoaded(source string, n int, parse time.Duration) {
	sourceLoadTotal.WithLabelValues("ok").Inc()
	sourceParseDuration.Observe(parse.Seconds())
	sourceIndividuals.WithLabelValues(source).Set(float64(n))
}

// SourceFailed records a failed load.
func SourceFailed() {
	sourceLoadTotal.WithLabelValues("error").Inc()
}

// SourceRemoved drops the per-source gauge.
func SourceRemoved(source string) {
	sourceIndividuals.DeleteLabelValues(source)
}

// TreeRequest counts one tree view request by cache result.
func TreeRequest(result string) {
	treeRequests.WithLabelValues(result).Inc()
}

// LayoutObserved records the time spent building one tree view.
func LayoutObserved(d time.Duration) {
	layoutDuration.Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
