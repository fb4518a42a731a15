package itinerary

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Synthesis outcomes.
const (
	outcomeComplete  = "complete"
	outcomeDegraded  = "degraded"
	outcomeInvalid   = "invalid"
	outcomeCancelled = "cancelled"
)

// Lookup outcomes.
const (
	lookupFound    = "found"
	lookupNotFound = "not_found"
	lookupFailed   = "failed"
)

var (
	synthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_synthesis_total",
		Help: "Total number of itinerary synthesis requests by outcome",
	}, []string{"outcome", "mode"})

	synthesisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itinerary_synthesis_duration_seconds",
		Help:    "Time to synthesize an itinerary route",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
	}, []string{"outcome"})

	estimatedLegsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itinerary_estimated_legs_total",
		Help: "Total number of legs filled with estimated metrics",
	})

	providerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_provider_failures_total",
		Help: "Directions provider failures that forced the degraded path, by kind",
	}, []string{"kind"})

	linksBuiltTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itinerary_shareable_links_total",
		Help: "Total number of standalone shareable links built",
	})

	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_map_lookups_total",
		Help: "Directions, geocoding and distance matrix lookups by operation and outcome",
	}, []string{"operation", "outcome"})
)
