// Package services – Prometheus instrumentation for the tracking core.
//
// Two collectors with deliberately tiny label sets: write outcomes
// (new cluster vs. increment) and count-lookup cache effectiveness.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// viewsRecorded counts successful writes by outcome: "insert" when a new
	// record cluster is created, "increment" when an active one is extended.
	viewsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "views_recorded_total",
			Help: "Total number of recorded views by write outcome.",
		},
		[]string{"outcome"},
	)

	// countLookups counts ViewCount calls by cache result ("hit" or "miss").
	countLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_count_lookups_total",
			Help: "Total number of view count lookups by cache result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(viewsRecorded, countLookups)
}
