package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search outcome label values.
const (
	OutcomeOK              = "ok"
	OutcomeVersionNotFound = "version_not_found"
	OutcomeError           = "error"
)

// Search modes: an exact version match or one picked by the resolver.
const (
	ModeExact    = "exact"
	ModeResolved = "resolved"
)

var (
	SearchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "requests_total",
		Help:      "Documentation searches by mode and outcome.",
	}, []string{"mode", "outcome"})

	SearchResultsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "results_returned",
		Help:      "Passages returned per search.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)

var searchOnce sync.Once

// RegisterSearchMetrics registers the search collectors.
func RegisterSearchMetrics() {
	searchOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal, SearchResultsReturned)
	})
}
