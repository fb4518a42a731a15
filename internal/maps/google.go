package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/httpclient"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	googleMapsBaseURL            = "https://maps.googleapis.com/maps/api"
	googleDirectionsEndpoint     = "/directions/json"
	googleGeocodeEndpoint        = "/geocode/json"
	googleDistanceMatrixEndpoint = "/distancematrix/json"
	defaultProviderTimeout       = 30 * time.Second

	healthCheckOrigin      = "Union Square, San Francisco, CA"
	healthCheckDestination = "Ferry Building, San Francisco, CA"
)

// GoogleDirectionsProvider implements MapsProvider over the Google Maps
// Directions, Geocoding and Distance Matrix web services.
type GoogleDirectionsProvider struct {
	apiKey string
	client *httpclient.Client
}

// NewGoogleDirectionsProvider creates a new Google provider. Options are
// passed to the underlying HTTP client.
func NewGoogleDirectionsProvider(config ProviderConfig, opts ...httpclient.Option) *GoogleDirectionsProvider {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = googleMapsBaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	return &GoogleDirectionsProvider{
		apiKey: config.APIKey,
		client: httpclient.NewClient(baseURL, timeout, opts...),
	}
}

// Name returns the provider name
func (g *GoogleDirectionsProvider) Name() Provider {
	return ProviderGoogle
}

// HealthCheck resolves a short fixed route to verify the key and upstream.
func (g *GoogleDirectionsProvider) HealthCheck(ctx context.Context) error {
	_, err := g.GetDirections(ctx, &DirectionsRequest{
		Origin:      healthCheckOrigin,
		Destination: healthCheckDestination,
		Mode:        ModeDriving,
	})
	if err != nil {
		return fmt.Errorf("google directions health check failed: %w", err)
	}
	return nil
}

// GetDirections issues one Directions API request.
func (g *GoogleDirectionsProvider) GetDirections(ctx context.Context, req *DirectionsRequest) (*DirectionsResult, error) {
	if err := req.Validate(); err != nil {
		return nil, g.fail(OpDirections, KindInvalidRequest, "", err.Error(), nil)
	}

	mode := NormalizeMode(string(req.Mode))

	ctx, span := tracing.StartSpan(ctx, "maps", "google.directions",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("maps.mode", string(mode)),
			attribute.Int("maps.waypoints", len(req.Waypoints)),
			attribute.Bool("maps.optimize", req.Optimize),
		),
	)
	defer span.End()

	result, err := g.getDirections(ctx, req, mode)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("maps.legs", len(result.Legs)))
	return result, nil
}

func (g *GoogleDirectionsProvider) getDirections(ctx context.Context, req *DirectionsRequest, mode TravelMode) (*DirectionsResult, error) {
	params := url.Values{}
	params.Set("origin", req.Origin)
	params.Set("destination", req.Destination)
	params.Set("mode", string(mode))
	params.Set("units", "metric")
	if len(req.Waypoints) > 0 {
		waypoints := strings.Join(req.Waypoints, "|")
		if req.Optimize {
			waypoints = "optimize:true|" + waypoints
		}
		params.Set("waypoints", waypoints)
	}

	logger.DebugContext(ctx, "Google directions request",
		zap.String("mode", string(mode)),
		zap.Int("waypoints", len(req.Waypoints)),
		zap.Bool("optimize", req.Optimize),
	)

	var resp googleDirectionsResponse
	if err := g.fetch(ctx, OpDirections, googleDirectionsEndpoint, params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, g.fail(OpDirections, KindNoRoute, resp.Status, resp.ErrorMessage, nil)
	default:
		return nil, g.fail(OpDirections, KindStatus, resp.Status, resp.ErrorMessage, nil)
	}

	if len(resp.Routes) == 0 {
		return nil, g.fail(OpDirections, KindNoRoute, resp.Status, "no routes returned", nil)
	}

	route := resp.Routes[0]
	if len(route.Legs) == 0 {
		return nil, g.fail(OpDirections, KindInvalidResponse, resp.Status, "route has no legs", nil)
	}

	return convertRoute(route, req), nil
}

// fetch issues a GET against endpoint with the API key and decodes the JSON
// body into dst. Transport and HTTP failures become *ProviderError.
func (g *GoogleDirectionsProvider) fetch(ctx context.Context, op, endpoint string, params url.Values, dst interface{}) error {
	params.Set("key", g.apiKey)
	body, err := g.client.Get(ctx, endpoint, params)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			perr := g.fail(op, KindStatus, "", "unexpected HTTP status", err)
			perr.HTTPStatus = httpErr.StatusCode
			return perr
		}
		return g.fail(op, KindNetwork, "", "", err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return g.fail(op, KindInvalidResponse, "", "failed to parse "+op+" response", err)
	}
	return nil
}

func (g *GoogleDirectionsProvider) fail(op string, kind ErrorKind, status, message string, err error) *ProviderError {
	return &ProviderError{
		Provider:  ProviderGoogle,
		Operation: op,
		Kind:      kind,
		Status:    status,
		Message:   message,
		Err:       err,
	}
}

func convertRoute(route googleRoute, req *DirectionsRequest) *DirectionsResult {
	result := &DirectionsResult{
		Legs:     make([]Leg, len(route.Legs)),
		Polyline: route.OverviewPolyline.Points,
		Summary:  route.Summary,
		Warnings: route.Warnings,
	}

	for i, leg := range route.Legs {
		result.Legs[i] = Leg{
			StartAddress:    leg.StartAddress,
			EndAddress:      leg.EndAddress,
			DistanceText:    leg.Distance.Text,
			DistanceMeters:  max(leg.Distance.Value, 0),
			DurationText:    leg.Duration.Text,
			DurationSeconds: max(leg.Duration.Value, 0),
			Steps:           convertSteps(leg.Steps),
		}
	}

	if req.Optimize && isReordering(route.WaypointOrder, len(req.Waypoints)) {
		result.WaypointOrder = append([]int(nil), route.WaypointOrder...)
	}

	return result
}

func convertSteps(steps []googleStep) []Step {
	if len(steps) == 0 {
		return nil
	}
	out := make([]Step, len(steps))
	for i, st := range steps {
		out[i] = Step{
			Instruction:     st.HTMLInstructions,
			DistanceText:    st.Distance.Text,
			DistanceMeters:  max(st.Distance.Value, 0),
			DurationText:    st.Duration.Text,
			DurationSeconds: max(st.Duration.Value, 0),
			StartLocation:   st.StartLocation,
			EndLocation:     st.EndLocation,
		}
	}
	return out
}

// isReordering reports whether order is a permutation of 0..n-1 other than
// the identity.
func isReordering(order []int, n int) bool {
	if len(order) != n || n < 2 {
		return false
	}

	seen := make([]bool, n)
	identity := true
	for i, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
		if idx != i {
			identity = false
		}
	}
	return !identity
}

// ========================================
// Google API response types
// ========================================

type googleDirectionsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Routes       []googleRoute `json:"routes"`
}

type googleRoute struct {
	Summary          string         `json:"summary"`
	Legs             []googleLeg    `json:"legs"`
	OverviewPolyline googlePolyline `json:"overview_polyline"`
	Warnings         []string       `json:"warnings"`
	WaypointOrder    []int          `json:"waypoint_order"`
}

type googleLeg struct {
	StartAddress string       `json:"start_address"`
	EndAddress   string       `json:"end_address"`
	Distance     googleValue  `json:"distance"`
	Duration     googleValue  `json:"duration"`
	Steps        []googleStep `json:"steps"`
}

type googleStep struct {
	HTMLInstructions string      `json:"html_instructions"`
	Distance         googleValue `json:"distance"`
	Duration         googleValue `json:"duration"`
	StartLocation    LatLng      `json:"start_location"`
	EndLocation      LatLng      `json:"end_location"`
}

type googlePolyline struct {
	Points string `json:"points"`
}

type googleValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
