// Package telemetry exposes the Monitor's match-pipeline cost (§4.3's
// Metrics triple: total queries, prospective matches, actual matches) as
// Prometheus series, plus end-to-end match latency. It has no opinion on
// how those numbers get collected; callers hand it a monitor.Metrics and a
// duration after every match_document call.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fenwick-labs/percolate/internal/monitor"
)

var (
	registeredQueriesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "percolated",
		Name:      "registered_queries_total",
		Help:      "Number of standing queries currently registered with the monitor.",
	})

	matchDocumentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "percolated",
		Name:      "match_document_total",
		Help:      "Total match_document calls served.",
	})

	prospectiveMatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "percolated",
		Name:      "prospective_matches_total",
		Help:      "Total Phase 1 candidate ids surfaced by the presearcher across all match_document calls.",
	})

	actualMatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "percolated",
		Name:      "actual_matches_total",
		Help:      "Total Phase 2 confirmed matches across all match_document calls.",
	})

	matchLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "percolated",
		Name:      "match_document_latency_seconds",
		Help:      "End-to-end match_document latency, Phase 1 and Phase 2 combined.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})

	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "percolated",
		Name:      "registrations_total",
		Help:      "Total register_query calls served.",
	})
)

// RecordMatch records one match_document call's cost.
func RecordMatch(m monitor.Metrics, duration time.Duration) {
	matchDocumentTotal.Inc()
	registeredQueriesTotal.Set(float64(m.TotalQueries))
	prospectiveMatchesTotal.Add(float64(m.ProspectiveQueries))
	actualMatchesTotal.Add(float64(m.ActualMatches))
	matchLatencySeconds.Observe(duration.Seconds())
}

// RecordRegistration records one register_query call.
func RecordRegistration() {
	registrationsTotal.Inc()
}

// Handler returns the HTTP handler for the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
