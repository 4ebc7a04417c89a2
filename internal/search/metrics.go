package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// expansionsTotal counts worklist expansion passes.
	// Labels: age (child, adult)
	expansionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ootlogic",
		Subsystem: "search",
		Name:      "expansions_total",
		Help:      "Worklist expansion passes by age",
	}, []string{"age"})

	// edgeChecksTotal counts entrance rule evaluations during expansion.
	// Labels: age, result (pass, fail)
	edgeChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ootlogic",
		Subsystem: "search",
		Name:      "edge_checks_total",
		Help:      "Entrance rule evaluations during expansion",
	}, []string{"age", "result"})

	// todExpansionsTotal counts secondary time-of-day expansions.
	// Labels: result (hit, miss)
	todExpansionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ootlogic",
		Subsystem: "search",
		Name:      "tod_expansions_total",
		Help:      "Secondary time-of-day expansions",
	}, []string{"result"})

	// resetsTotal counts full search resets.
	// Labels: reason (explicit, world, ledger)
	resetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ootlogic",
		Subsystem: "search",
		Name:      "resets_total",
		Help:      "Full search resets by reason",
	}, []string{"reason"})

	// locationsCollectedTotal counts items collected from reachable locations.
	locationsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ootlogic",
		Subsystem: "search",
		Name:      "locations_collected_total",
		Help:      "Items collected from reachable locations",
	})

	// sphereDuration measures one CollectSpheres run.
	sphereDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ootlogic",
		Subsystem: "spheres",
		Name:      "duration_seconds",
		Help:      "Time to compute the sphere log",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	// sphereCount records the number of spheres of the last run.
	sphereCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ootlogic",
		Subsystem: "spheres",
		Name:      "last_count",
		Help:      "Number of spheres in the last sphere log",
	})
)

const (
	resetExplicit = "explicit"
	resetWorld    = "world"
	resetLedger   = "ledger"
)
