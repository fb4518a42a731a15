package maps

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Geocode resolves a free-text address. ZERO_RESULTS yields an empty slice.
func (g *GoogleDirectionsProvider) Geocode(ctx context.Context, address string) ([]Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, g.fail(OpGeocode, KindInvalidRequest, "", "address is required", nil)
	}

	params := url.Values{}
	params.Set("address", address)
	return g.geocode(ctx, OpGeocode, params)
}

// ReverseGeocode resolves a coordinate to the addresses found there.
func (g *GoogleDirectionsProvider) ReverseGeocode(ctx context.Context, location LatLng) ([]Place, error) {
	if location.Lat < -90 || location.Lat > 90 || location.Lng < -180 || location.Lng > 180 {
		return nil, g.fail(OpReverseGeocode, KindInvalidRequest, "", "coordinates out of range", nil)
	}

	latlng := strconv.FormatFloat(location.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(location.Lng, 'f', -1, 64)
	params := url.Values{}
	params.Set("latlng", latlng)
	return g.geocode(ctx, OpReverseGeocode, params)
}

func (g *GoogleDirectionsProvider) geocode(ctx context.Context, op string, params url.Values) ([]Place, error) {
	ctx, span := tracing.StartSpan(ctx, "maps", "google."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var resp googleGeocodeResponse
	if err := g.fetch(ctx, op, googleGeocodeEndpoint, params, &resp); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		logger.DebugContext(ctx, "Google geocode found nothing", zap.String("operation", op))
		return []Place{}, nil
	default:
		err := g.fail(op, KindStatus, resp.Status, resp.ErrorMessage, nil)
		tracing.RecordError(ctx, err)
		return nil, err
	}

	places := make([]Place, len(resp.Results))
	for i, r := range resp.Results {
		places[i] = Place{
			FormattedAddress:  r.FormattedAddress,
			PlaceID:           r.PlaceID,
			Location:          r.Geometry.Location,
			Types:             r.Types,
			AddressComponents: r.AddressComponents,
		}
	}
	span.SetAttributes(attribute.Int("maps.results", len(places)))
	return places, nil
}

// DistanceMatrix issues one Distance Matrix request. Per-element failures
// such as ZERO_RESULTS are reported in MatrixElement.Status, not as errors.
func (g *GoogleDirectionsProvider) DistanceMatrix(ctx context.Context, req *DistanceMatrixRequest) (*DistanceMatrix, error) {
	if err := req.Validate(); err != nil {
		return nil, g.fail(OpDistanceMatrix, KindInvalidRequest, "", err.Error(), nil)
	}

	mode := NormalizeMode(string(req.Mode))
	units := NormalizeUnits(string(req.Units))

	ctx, span := tracing.StartSpan(ctx, "maps", "google.distance_matrix",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("maps.mode", string(mode)),
			attribute.Int("maps.origins", len(req.Origins)),
			attribute.Int("maps.destinations", len(req.Destinations)),
		),
	)
	defer span.End()

	params := url.Values{}
	params.Set("origins", strings.Join(req.Origins, "|"))
	params.Set("destinations", strings.Join(req.Destinations, "|"))
	params.Set("mode", string(mode))
	params.Set("units", string(units))

	var resp googleDistanceMatrixResponse
	if err := g.fetch(ctx, OpDistanceMatrix, googleDistanceMatrixEndpoint, params, &resp); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if resp.Status != "OK" {
		err := g.fail(OpDistanceMatrix, KindStatus, resp.Status, resp.ErrorMessage, nil)
		tracing.RecordError(ctx, err)
		return nil, err
	}

	matrix := &DistanceMatrix{
		OriginAddresses:      resp.OriginAddresses,
		DestinationAddresses: resp.DestinationAddresses,
		Rows:                 make([][]MatrixElement, len(resp.Rows)),
	}
	for i, row := range resp.Rows {
		matrix.Rows[i] = make([]MatrixElement, len(row.Elements))
		for j, el := range row.Elements {
			matrix.Rows[i][j] = MatrixElement{
				Status:          el.Status,
				DistanceText:    el.Distance.Text,
				DistanceMeters:  max(el.Distance.Value, 0),
				DurationText:    el.Duration.Text,
				DurationSeconds: max(el.Duration.Value, 0),
			}
		}
	}
	return matrix, nil
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

type googleDistanceMatrixResponse struct {
	Status               string   `json:"status"`
	ErrorMessage         string   `json:"error_message,omitempty"`
	OriginAddresses      []string `json:"origin_addresses"`
	DestinationAddresses []string `json:"destination_addresses"`
	Rows                 []struct {
		Elements []struct {
			Status   string      `json:"status"`
			Distance googleValue `json:"distance"`
			Duration googleValue `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}
