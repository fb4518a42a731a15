package resilience

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Breaker call outcomes.
const (
	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeRejected = "rejected"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resilience_breaker_state",
		Help: "Breaker state per upstream (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_breaker_calls_total",
		Help: "Calls submitted to a breaker by outcome",
	}, []string{"breaker", "outcome"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_breaker_transitions_total",
		Help: "Breaker state transitions",
	}, []string{"breaker", "from", "to"})

	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_retry_attempts_total",
		Help: "Individual attempts made by retried operations",
	}, []string{"operation", "outcome"})

	retryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resilience_retry_duration_seconds",
		Help:    "Wall time of retried operations across all attempts",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 13),
	}, []string{"operation", "outcome"})

	retryBackoff = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resilience_retry_backoff_seconds",
		Help:    "Backoff delays slept between attempts",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"operation"})

	anonymousBreakers uint64
)

func breakerName(name string) string {
	if name != "" {
		return name
	}
	return "breaker-" + strconv.FormatUint(atomic.AddUint64(&anonymousBreakers, 1), 10)
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	}
	return 0
}

func observeBreakerState(name string, state gobreaker.State) {
	breakerState.WithLabelValues(name).Set(stateValue(state))
}

func observeBreakerTransition(name string, from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	observeBreakerState(name, to)
}

func observeBreakerCall(name, outcome string) {
	breakerCalls.WithLabelValues(name, outcome).Inc()
}

func retryOutcome(success bool) string {
	if success {
		return outcomeSuccess
	}
	return outcomeError
}

// RecordRetryAttempt counts one attempt of a retried operation.
func RecordRetryAttempt(operation string, success bool) {
	retryAttempts.WithLabelValues(operation, retryOutcome(success)).Inc()
}

// RecordRetryOperation observes the total time spent on a retried operation.
func RecordRetryOperation(operation string, durationSeconds float64, success bool) {
	retryDuration.WithLabelValues(operation, retryOutcome(success)).Observe(durationSeconds)
}

// RecordRetryBackoff observes one backoff sleep.
func RecordRetryBackoff(operation string, durationSeconds float64) {
	retryBackoff.WithLabelValues(operation).Observe(durationSeconds)
}
