package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker refuses a request because it is open.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Settings defines runtime options for the circuit breaker.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
	// IsFailure classifies an error as a breaker failure. Errors it rejects
	// are returned to the caller without counting against the breaker.
	IsFailure func(error) bool
}

// BuildSettings converts second-based configuration into breaker settings.
func BuildSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	return Settings{
		Name:             name,
		Interval:         time.Duration(intervalSeconds) * time.Second,
		Timeout:          time.Duration(timeoutSeconds) * time.Second,
		FailureThreshold: uint32(max(failureThreshold, 0)),
		SuccessThreshold: uint32(max(successThreshold, 0)),
	}
}

// CircuitBreaker wraps gobreaker with logging and metrics.
type CircuitBreaker struct {
	name    string
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker constructs a breaker that opens after FailureThreshold
// consecutive failures.
func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	name := breakerName(settings.Name)
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breakerSettings := gobreaker.Settings{
		Name:     name,
		Timeout:  settings.Timeout,
		Interval: settings.Interval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observeBreakerTransition(name, from, to)
			logger.Info("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	if settings.SuccessThreshold > 0 {
		breakerSettings.MaxRequests = settings.SuccessThreshold
	}

	if settings.IsFailure != nil {
		isFailure := settings.IsFailure
		breakerSettings.IsSuccessful = func(err error) bool {
			return err == nil || !isFailure(err)
		}
	}

	cb := &CircuitBreaker{
		name:    name,
		breaker: gobreaker.NewCircuitBreaker(breakerSettings),
	}
	observeBreakerState(name, gobreaker.StateClosed)
	return cb
}

// Name returns the breaker name used in logs and metrics.
func (c *CircuitBreaker) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Allow reports whether the breaker would allow a request without executing it.
func (c *CircuitBreaker) Allow() bool {
	if c == nil || c.breaker == nil {
		return true
	}
	return c.breaker.State() != gobreaker.StateOpen
}

// State returns the current breaker state as a string ("closed", "half-open", "open").
func (c *CircuitBreaker) State() string {
	if c == nil || c.breaker == nil {
		return gobreaker.StateClosed.String()
	}
	return c.breaker.State().String()
}

// Execute runs operation through the breaker. A nil breaker runs it directly.
// An open or saturated breaker yields ErrCircuitOpen without calling operation.
func Execute[T any](ctx context.Context, c *CircuitBreaker, operation func(context.Context) (T, error)) (T, error) {
	if c == nil || c.breaker == nil {
		return operation(ctx)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return operation(ctx)
	})
	if err == nil {
		observeBreakerCall(c.name, outcomeSuccess)
		return result.(T), nil
	}

	var zero T
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observeBreakerCall(c.name, outcomeRejected)
		return zero, ErrCircuitOpen
	}

	observeBreakerCall(c.name, outcomeError)
	return zero, err
}
