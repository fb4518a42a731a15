package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/tracing"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	noRouteMessage   = "No routes found"
	noResultsMessage = "No results found"
)

// Directions returns one provider route with its steps and a shareable
// link. A missing route is reported through Found rather than an error.
func (s *Service) Directions(ctx context.Context, q *DirectionsQuery) (*Directions, error) {
	if q == nil {
		return nil, invalidRequest("query is required")
	}
	if err := validation.ValidateStruct(q); err != nil {
		return nil, invalidRequest("%v", err)
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "itinerary.directions")
	defer span.End()

	mode := maps.NormalizeMode(q.Mode)
	req := &maps.DirectionsRequest{
		Origin:      strings.TrimSpace(q.Origin),
		Waypoints:   nonBlank(q.Waypoints),
		Destination: strings.TrimSpace(q.Destination),
		Mode:        mode,
		Optimize:    q.OptimizeWaypoints,
	}
	span.SetAttributes(
		attribute.String("itinerary.mode", string(mode)),
		attribute.Int("itinerary.waypoints", len(req.Waypoints)),
	)

	out := &Directions{
		Mode:          string(mode),
		Steps:         []DirectionStep{},
		Warnings:      []string{},
		WaypointOrder: []int{},
	}

	result, err := s.fetchDirections(ctx, req)
	if err != nil {
		var perr *maps.ProviderError
		if errors.As(err, &perr) && perr.Kind == maps.KindNoRoute {
			lookupsTotal.WithLabelValues(maps.OpDirections, lookupNotFound).Inc()
			out.Message = noRouteMessage
			out.ShareableLink = BuildLink(routeStops(req, nil), out.Mode)
			return out, nil
		}
		lookupsTotal.WithLabelValues(maps.OpDirections, lookupFailed).Inc()
		tracing.RecordError(ctx, err)
		return nil, err
	}
	lookupsTotal.WithLabelValues(maps.OpDirections, lookupFound).Inc()

	out.Found = true
	out.Summary = result.Summary
	out.OverviewPolyline = result.Polyline
	out.Warnings = append(out.Warnings, result.Warnings...)

	for _, leg := range result.Legs {
		out.DistanceValue += leg.DistanceMeters
		out.DurationValue += leg.DurationSeconds
		for _, st := range leg.Steps {
			out.Steps = append(out.Steps, DirectionStep{
				Instruction:   st.Instruction,
				Distance:      st.DistanceText,
				Duration:      st.DurationText,
				StartLocation: st.StartLocation,
				EndLocation:   st.EndLocation,
			})
		}
	}

	if len(result.Legs) == 1 {
		out.Distance = textOr(result.Legs[0].DistanceText, FormatDistance(out.DistanceValue))
		out.Duration = textOr(result.Legs[0].DurationText, FormatDuration(out.DurationValue))
	} else {
		out.Distance = FormatDistance(out.DistanceValue)
		out.Duration = FormatDuration(out.DurationValue)
	}

	out.StartAddress = req.Origin
	out.EndAddress = req.Destination
	if n := len(result.Legs); n > 0 {
		out.StartAddress = textOr(result.Legs[0].StartAddress, req.Origin)
		out.EndAddress = textOr(result.Legs[n-1].EndAddress, req.Destination)
	}

	order := result.WaypointOrder
	if !validPermutation(order, len(req.Waypoints)) {
		order = nil
	}
	out.WaypointOrder = append(out.WaypointOrder, order...)
	out.ShareableLink = BuildLink(routeStops(req, order), out.Mode)

	if len(req.Waypoints) == 0 {
		out.CalendarSummary = fmt.Sprintf("%s → %s", req.Origin, req.Destination)
	} else {
		out.CalendarSummary = fmt.Sprintf("Multi-stop route: %d locations", len(req.Waypoints)+2)
	}
	out.CalendarDescription = fmt.Sprintf("Route: %s\nDistance: %s\nDuration: %s\nView route: %s",
		out.CalendarSummary, out.Distance, out.Duration, out.ShareableLink)

	logger.InfoContext(ctx, "directions resolved",
		zap.Int("legs", len(result.Legs)),
		zap.Int("steps", len(out.Steps)),
		zap.String("mode", out.Mode),
	)
	return out, nil
}

// Geocode resolves a free-text address to its best match.
func (s *Service) Geocode(ctx context.Context, q *GeocodeQuery) (*GeocodeResult, error) {
	if q == nil {
		return nil, invalidRequest("query is required")
	}
	if err := validation.ValidateStruct(q); err != nil {
		return nil, invalidRequest("%v", err)
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "itinerary.geocode")
	defer span.End()

	address := strings.TrimSpace(q.Address)
	places, err := call(ctx, s, geocodeOperation, func(ctx context.Context) ([]maps.Place, error) {
		return s.provider.Geocode(ctx, address)
	})
	return s.bestPlace(ctx, maps.OpGeocode, places, err)
}

// ReverseGeocode resolves a coordinate to its best matching address.
func (s *Service) ReverseGeocode(ctx context.Context, q *ReverseGeocodeQuery) (*GeocodeResult, error) {
	if q == nil {
		return nil, invalidRequest("query is required")
	}
	if err := validation.ValidateStruct(q); err != nil {
		return nil, invalidRequest("%v", err)
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "itinerary.reverse_geocode")
	defer span.End()

	at := maps.LatLng{Lat: *q.Latitude, Lng: *q.Longitude}
	places, err := call(ctx, s, geocodeOperation, func(ctx context.Context) ([]maps.Place, error) {
		return s.provider.ReverseGeocode(ctx, at)
	})
	return s.bestPlace(ctx, maps.OpReverseGeocode, places, err)
}

func (s *Service) bestPlace(ctx context.Context, op string, places []maps.Place, err error) (*GeocodeResult, error) {
	if err != nil {
		lookupsTotal.WithLabelValues(op, lookupFailed).Inc()
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if len(places) == 0 {
		lookupsTotal.WithLabelValues(op, lookupNotFound).Inc()
		return &GeocodeResult{Message: noResultsMessage}, nil
	}
	lookupsTotal.WithLabelValues(op, lookupFound).Inc()

	p := places[0]
	logger.DebugContext(ctx, "place resolved", zap.String("operation", op), zap.String("place_id", p.PlaceID))
	return &GeocodeResult{
		Found:             true,
		Latitude:          p.Location.Lat,
		Longitude:         p.Location.Lng,
		FormattedAddress:  p.FormattedAddress,
		PlaceID:           p.PlaceID,
		Types:             p.Types,
		AddressComponents: p.AddressComponents,
	}, nil
}

// DistanceMatrix estimates travel between every origin and destination.
// Per-pair failures stay in the cell status.
func (s *Service) DistanceMatrix(ctx context.Context, q *DistanceMatrixQuery) (*DistanceMatrixResult, error) {
	if q == nil {
		return nil, invalidRequest("query is required")
	}
	if err := validation.ValidateStruct(q); err != nil {
		return nil, invalidRequest("%v", err)
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "itinerary.distance_matrix")
	defer span.End()

	req := &maps.DistanceMatrixRequest{
		Origins:      nonBlank(q.Origins),
		Destinations: nonBlank(q.Destinations),
		Mode:         maps.NormalizeMode(q.Mode),
		Units:        maps.NormalizeUnits(q.Units),
	}
	span.SetAttributes(
		attribute.Int("itinerary.origins", len(req.Origins)),
		attribute.Int("itinerary.destinations", len(req.Destinations)),
	)

	matrix, err := call(ctx, s, matrixOperation, func(ctx context.Context) (*maps.DistanceMatrix, error) {
		return s.provider.DistanceMatrix(ctx, req)
	})
	if err != nil {
		lookupsTotal.WithLabelValues(maps.OpDistanceMatrix, lookupFailed).Inc()
		tracing.RecordError(ctx, err)
		return nil, err
	}
	lookupsTotal.WithLabelValues(maps.OpDistanceMatrix, lookupFound).Inc()

	out := &DistanceMatrixResult{
		Mode:                 string(req.Mode),
		Units:                string(req.Units),
		OriginAddresses:      matrix.OriginAddresses,
		DestinationAddresses: matrix.DestinationAddresses,
		Rows:                 make([]MatrixRow, 0, len(matrix.Rows)),
	}
	for _, row := range matrix.Rows {
		cells := make([]MatrixCell, 0, len(row))
		for _, el := range row {
			cells = append(cells, MatrixCell{
				Status:        el.Status,
				Distance:      el.DistanceText,
				DistanceValue: el.DistanceMeters,
				Duration:      el.DurationText,
				DurationValue: el.DurationSeconds,
			})
		}
		out.Rows = append(out.Rows, MatrixRow{Elements: cells})
	}
	return out, nil
}

// routeStops lists the request's places in travel order, applying order to
// the waypoints when it is set.
func routeStops(req *maps.DirectionsRequest, order []int) []string {
	stops := make([]string, 0, len(req.Waypoints)+2)
	stops = append(stops, req.Origin)
	if order != nil {
		for _, idx := range order {
			stops = append(stops, req.Waypoints[idx])
		}
	} else {
		stops = append(stops, req.Waypoints...)
	}
	return append(stops, req.Destination)
}

func validPermutation(order []int, n int) bool {
	if len(order) == 0 || len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
