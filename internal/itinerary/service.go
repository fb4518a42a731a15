package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/config"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/resilience"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/tracing"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	tracerName             = "itinerary"
	directionsOperation    = "maps.directions"
	geocodeOperation       = "maps.geocode"
	matrixOperation        = "maps.distance_matrix"
	defaultProviderTimeout = 30 * time.Second
)

// Config tunes how the service talks to the directions provider.
type Config struct {
	ProviderTimeout time.Duration
	Retry           resilience.RetryConfig
	// CircuitBreaker is optional; nil disables the breaker.
	CircuitBreaker *resilience.Settings
}

// DefaultConfig allows one retry and a 30 second provider timeout.
func DefaultConfig() Config {
	return Config{
		ProviderTimeout: defaultProviderTimeout,
		Retry:           resilience.DefaultRetryConfig(),
	}
}

// ConfigFrom derives service settings from application configuration.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	if timeout := cfg.Maps.Timeout(); timeout > 0 {
		c.ProviderTimeout = timeout
	}
	if cfg.Maps.MaxAttempts > 0 {
		c.Retry.MaxAttempts = cfg.Maps.MaxAttempts
	}
	if backoff := cfg.Maps.RetryBackoff(); backoff > 0 {
		c.Retry.InitialBackoff = backoff
	}

	if cb := cfg.Resilience.CircuitBreaker; cb.Enabled {
		s := cb.SettingsFor(string(maps.ProviderGoogle))
		settings := resilience.BuildSettings(directionsOperation,
			s.IntervalSeconds, s.TimeoutSeconds, s.FailureThreshold, s.SuccessThreshold)
		c.CircuitBreaker = &settings
	}
	return c
}

// Service synthesizes itinerary routes and answers single map lookups. It
// is safe for concurrent use.
type Service struct {
	provider maps.MapsProvider
	breaker  *resilience.CircuitBreaker
	retry    resilience.RetryConfig
	timeout  time.Duration
}

// NewService creates a new itinerary service
func NewService(provider maps.MapsProvider, cfg Config) *Service {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	cfg.Retry.RetryableChecker = maps.IsRetryable

	s := &Service{
		provider: provider,
		retry:    cfg.Retry,
		timeout:  cfg.ProviderTimeout,
	}

	if cfg.CircuitBreaker != nil {
		settings := *cfg.CircuitBreaker
		settings.IsFailure = isProviderFailure
		s.breaker = resilience.NewCircuitBreaker(settings)
	}

	return s
}

// isProviderFailure keeps rejected input and caller cancellation from
// tripping the breaker.
func isProviderFailure(err error) bool {
	return !errors.Is(err, maps.ErrInvalidDirectionsRequest) && !errors.Is(err, context.Canceled)
}

// Synthesize builds a complete itinerary route. Provider failures never
// surface as errors; affected legs are estimated and the route is marked
// degraded. Only invalid input and a finished caller context return errors.
func (s *Service) Synthesize(ctx context.Context, req *SynthesizeRequest) (*ItineraryRoute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, invalidRequest("request is required")
	}

	started := time.Now()
	mode := string(maps.NormalizeMode(req.Mode))

	ctx, span := tracing.StartSpan(ctx, tracerName, "itinerary.synthesize")
	defer span.End()

	start, stops, err := s.plan(ctx, req)
	if err != nil {
		s.observe(outcomeInvalid, mode, started)
		tracing.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("itinerary.mode", mode),
		attribute.Int("itinerary.stops", len(stops)),
		attribute.Bool("itinerary.optimize", req.ShouldOptimize()),
	)

	dirReq := &maps.DirectionsRequest{
		Origin:      start,
		Waypoints:   locations(stops[:len(stops)-1]),
		Destination: stops[len(stops)-1].Location,
		Mode:        maps.TravelMode(mode),
		Optimize:    req.ShouldOptimize(),
	}

	result, perr := s.fetchDirections(ctx, dirReq)
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.observe(outcomeCancelled, mode, started)
		return nil, ctxErr
	}

	route := &ItineraryRoute{
		StartLocation:  start,
		Mode:           mode,
		OptimizedOrder: []int{},
	}

	var providerLegs []maps.Leg
	if perr != nil {
		s.recordProviderFailure(ctx, perr)
	} else {
		route.Provider = string(s.provider.Name())
		route.OverviewPolyline = result.Polyline
		providerLegs = result.Legs

		if reordered, ok := reorder(stops, result.WaypointOrder); ok {
			stops = reordered
			route.OptimizedOrder = append(route.OptimizedOrder, result.WaypointOrder...)
		}
		if len(providerLegs) < dirReq.StopCount() {
			logger.WarnContext(ctx, "directions provider returned fewer legs than stops",
				zap.Int("legs", len(providerLegs)),
				zap.Int("stops", len(stops)),
			)
		}
	}

	route.ExperienceCount = len(stops)
	route.EndLocation = stops[len(stops)-1].Location
	route.Legs = assembleLegs(start, stops, providerLegs, mode)
	route.CompleteRouteLink = BuildLink(append([]string{start}, locations(stops)...), mode)
	aggregate(route)

	estimated := 0
	for _, leg := range route.Legs {
		if leg.IsEstimated {
			estimated++
		}
	}
	estimatedLegsTotal.Add(float64(estimated))

	outcome := outcomeComplete
	if route.IsDegraded {
		outcome = outcomeDegraded
	}
	s.observe(outcome, mode, started)
	span.SetAttributes(attribute.Bool("itinerary.degraded", route.IsDegraded))

	logger.InfoContext(ctx, "itinerary synthesized",
		zap.Int("experiences", route.ExperienceCount),
		zap.Int("estimated_legs", estimated),
		zap.Bool("degraded", route.IsDegraded),
		zap.String("mode", mode),
		zap.Duration("latency", time.Since(started)),
	)

	return route, nil
}

// BuildShareableLink returns a directions link from origin through
// waypoints to destination. Blank waypoints are skipped.
func (s *Service) BuildShareableLink(ctx context.Context, req *ShareableLinkRequest) (*ShareableLink, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, invalidRequest("%v", err)
	}

	stops := make([]string, 0, len(req.Waypoints)+2)
	stops = append(stops, strings.TrimSpace(req.Origin))
	for _, wp := range req.Waypoints {
		if wp = strings.TrimSpace(wp); wp != "" {
			stops = append(stops, wp)
		}
	}
	stops = append(stops, strings.TrimSpace(req.Destination))

	mode := string(maps.NormalizeMode(req.Mode))
	linksBuiltTotal.Inc()
	logger.DebugContext(ctx, "shareable link built", zap.Int("stops", len(stops)), zap.String("mode", mode))

	return &ShareableLink{URL: BuildLink(stops, mode), Mode: mode}, nil
}

// HealthCheck reports an open breaker without contacting the provider,
// otherwise it checks the provider itself.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.breaker.Allow() {
		return fmt.Errorf("%s: %w", s.provider.Name(), resilience.ErrCircuitOpen)
	}
	return s.provider.HealthCheck(ctx)
}

// plan validates req and reduces its experiences to stops. Experiences
// without a usable location are dropped.
func (s *Service) plan(ctx context.Context, req *SynthesizeRequest) (string, []stop, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return "", nil, invalidRequest("%v", err)
	}

	stops := make([]stop, 0, len(req.Experiences))
	for i, exp := range req.Experiences {
		location := exp.ResolvedLocation()
		if location == "" {
			logger.WarnContext(ctx, "dropping experience without a location", zap.Int("index", i))
			continue
		}
		stops = append(stops, stop{Name: exp.DisplayName(), Location: location})
	}

	if len(stops) == 0 {
		return "", nil, invalidRequest("no experience has a usable location")
	}

	return strings.TrimSpace(req.StartLocation), stops, nil
}

func (s *Service) fetchDirections(ctx context.Context, req *maps.DirectionsRequest) (*maps.DirectionsResult, error) {
	return call(ctx, s, directionsOperation, func(ctx context.Context) (*maps.DirectionsResult, error) {
		return s.provider.GetDirections(ctx, req)
	})
}

// call makes one logical provider call: each attempt runs through the
// breaker under its own timeout, and retryable failures get another attempt.
func call[T any](ctx context.Context, s *Service, operation string, fn func(context.Context) (T, error)) (T, error) {
	return resilience.Retry(ctx, s.retry, operation, func(ctx context.Context) (T, error) {
		return resilience.Execute(ctx, s.breaker, func(ctx context.Context) (T, error) {
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			return fn(callCtx)
		})
	})
}

func (s *Service) recordProviderFailure(ctx context.Context, err error) {
	kind := "unknown"
	var perr *maps.ProviderError
	switch {
	case errors.As(err, &perr):
		kind = string(perr.Kind)
	case errors.Is(err, resilience.ErrCircuitOpen):
		kind = "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		kind = "timeout"
	}
	providerFailuresTotal.WithLabelValues(kind).Inc()

	tracing.RecordError(ctx, err, attribute.String("maps.failure_kind", kind))
	logger.WarnContext(ctx, "directions unavailable, estimating legs",
		zap.Error(err),
		zap.String("kind", kind),
	)
}

func (s *Service) observe(outcome, mode string, started time.Time) {
	synthesisTotal.WithLabelValues(outcome, mode).Inc()
	synthesisDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

// reorder applies a provider permutation to the interior stops. The last
// stop is the destination and never moves.
func reorder(stops []stop, order []int) ([]stop, bool) {
	interior := len(stops) - 1
	if len(order) == 0 || len(order) != interior {
		return stops, false
	}

	seen := make([]bool, interior)
	out := make([]stop, 0, len(stops))
	for _, idx := range order {
		if idx < 0 || idx >= interior || seen[idx] {
			return stops, false
		}
		seen[idx] = true
		out = append(out, stops[idx])
	}
	return append(out, stops[interior]), true
}

func locations(stops []stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.Location
	}
	return out
}
