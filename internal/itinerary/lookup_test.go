package itinerary

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func float64Ptr(f float64) *float64 { return &f }

func ferryToCoitResult() *maps.DirectionsResult {
	return &maps.DirectionsResult{
		Summary:  "Embarcadero",
		Warnings: []string{"Walking directions are in beta."},
		Polyline: "a~l~Fjk~uOwHJy@P",
		Legs: []maps.Leg{{
			StartAddress:    "1 Ferry Building, San Francisco, CA 94111, USA",
			EndAddress:      "1 Telegraph Hill Blvd, San Francisco, CA 94133, USA",
			DistanceText:    "1.6 km",
			DistanceMeters:  1609,
			DurationText:    "21 mins",
			DurationSeconds: 1260,
			Steps: []maps.Step{
				{
					Instruction:   "Head <b>north</b> on The Embarcadero",
					DistanceText:  "1.0 km",
					DurationText:  "13 mins",
					StartLocation: maps.LatLng{Lat: 37.7955, Lng: -122.3937},
					EndLocation:   maps.LatLng{Lat: 37.8030, Lng: -122.4010},
				},
				{
					Instruction:   "Turn <b>left</b> onto Lombard St",
					DistanceText:  "0.6 km",
					DurationText:  "8 mins",
					StartLocation: maps.LatLng{Lat: 37.8030, Lng: -122.4010},
					EndLocation:   maps.LatLng{Lat: 37.8024, Lng: -122.4058},
				},
			},
		}},
	}
}

// ========================================
// TESTS: Directions
// ========================================

func TestDirections_SingleLeg(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("GetDirections", mock.Anything, mock.MatchedBy(func(req *maps.DirectionsRequest) bool {
		return req.Origin == "Ferry Building" && req.Destination == "Coit Tower" &&
			req.Mode == maps.ModeWalking && len(req.Waypoints) == 0
	})).Return(ferryToCoitResult(), nil)

	before := testutil.ToFloat64(lookupsTotal.WithLabelValues(maps.OpDirections, lookupFound))

	d, err := svc.Directions(context.Background(), &DirectionsQuery{
		Origin:      " Ferry Building ",
		Destination: "Coit Tower",
		Mode:        "WALKING",
	})

	require.NoError(t, err)
	assert.True(t, d.Found)
	assert.Equal(t, "walking", d.Mode)
	assert.Equal(t, "Embarcadero", d.Summary)
	assert.Equal(t, "1.6 km", d.Distance)
	assert.Equal(t, "21 mins", d.Duration)
	assert.Equal(t, 1609, d.DistanceValue)
	assert.Equal(t, 1260, d.DurationValue)
	assert.Equal(t, "1 Ferry Building, San Francisco, CA 94111, USA", d.StartAddress)
	assert.Equal(t, "1 Telegraph Hill Blvd, San Francisco, CA 94133, USA", d.EndAddress)
	assert.Equal(t, []string{"Walking directions are in beta."}, d.Warnings)
	assert.Equal(t, "a~l~Fjk~uOwHJy@P", d.OverviewPolyline)
	assert.Empty(t, d.WaypointOrder)

	require.Len(t, d.Steps, 2)
	assert.Equal(t, "Turn <b>left</b> onto Lombard St", d.Steps[1].Instruction)
	assert.Equal(t, "0.6 km", d.Steps[1].Distance)
	assert.Equal(t, maps.LatLng{Lat: 37.8024, Lng: -122.4058}, d.Steps[1].EndLocation)

	assert.Equal(t, BuildLink([]string{"Ferry Building", "Coit Tower"}, "walking"), d.ShareableLink)
	assert.Equal(t, "Ferry Building → Coit Tower", d.CalendarSummary)
	assert.Equal(t,
		"Route: Ferry Building → Coit Tower\nDistance: 1.6 km\nDuration: 21 mins\nView route: "+d.ShareableLink,
		d.CalendarDescription)

	assert.Equal(t, before+1, testutil.ToFloat64(lookupsTotal.WithLabelValues(maps.OpDirections, lookupFound)))
}

func TestDirections_MultiStopUsesOptimizedOrder(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("GetDirections", mock.Anything, mock.MatchedBy(func(req *maps.DirectionsRequest) bool {
		return req.Optimize && len(req.Waypoints) == 2
	})).Return(&maps.DirectionsResult{
		WaypointOrder: []int{1, 0},
		Legs: []maps.Leg{
			{DistanceText: "1 km", DistanceMeters: 1000, DurationSeconds: 600},
			{DistanceText: "2 km", DistanceMeters: 2000, DurationSeconds: 1200},
			{DistanceText: "3 km", DistanceMeters: 3000, DurationSeconds: 1800, EndAddress: "Pier 39, San Francisco, CA"},
		},
	}, nil)

	d, err := svc.Directions(context.Background(), &DirectionsQuery{
		Origin:            "Union Square",
		Waypoints:         []string{"Coit Tower", " ", "Lombard Street"},
		Destination:       "Pier 39",
		OptimizeWaypoints: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, d.WaypointOrder)
	assert.Equal(t, "3.7 miles", d.Distance)
	assert.Equal(t, "1h 0m", d.Duration)
	assert.Equal(t, "Union Square", d.StartAddress)
	assert.Equal(t, "Pier 39, San Francisco, CA", d.EndAddress)
	assert.Empty(t, d.Steps)
	assert.Equal(t, BuildLink([]string{"Union Square", "Lombard Street", "Coit Tower", "Pier 39"}, "driving"), d.ShareableLink)
	assert.Equal(t, "Multi-stop route: 4 locations", d.CalendarSummary)
}

func TestDirections_NoRoute(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("GetDirections", mock.Anything, mock.Anything).Return(nil, &maps.ProviderError{
		Provider: maps.ProviderGoogle,
		Kind:     maps.KindNoRoute,
		Status:   "ZERO_RESULTS",
	})

	d, err := svc.Directions(context.Background(), &DirectionsQuery{Origin: "Honolulu", Destination: "Tokyo"})

	require.NoError(t, err)
	assert.False(t, d.Found)
	assert.Equal(t, "No routes found", d.Message)
	assert.Equal(t, BuildLink([]string{"Honolulu", "Tokyo"}, "driving"), d.ShareableLink)
	provider.AssertNumberOfCalls(t, "GetDirections", 1)
}

func TestDirections_ProviderFailureIsReturned(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("GetDirections", mock.Anything, mock.Anything).Return(nil, errNetwork)

	d, err := svc.Directions(context.Background(), &DirectionsQuery{Origin: "A", Destination: "B"})

	assert.Nil(t, d)
	assert.ErrorIs(t, err, maps.ErrProviderUnavailable)
	provider.AssertNumberOfCalls(t, "GetDirections", 2)
}

func TestDirections_InvalidQuery(t *testing.T) {
	svc, provider := newTestService(testConfig())

	_, err := svc.Directions(context.Background(), &DirectionsQuery{Origin: "A", Destination: "  "})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Directions(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	provider.AssertNotCalled(t, "GetDirections", mock.Anything, mock.Anything)
}

// ========================================
// TESTS: Geocode
// ========================================

func TestGeocode(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("Geocode", mock.Anything, "Ferry Building").Return([]maps.Place{
		{
			FormattedAddress: "1 Ferry Building, San Francisco, CA 94111, USA",
			PlaceID:          "ChIJWTGPjmaAhYARxz6l1hOj92w",
			Location:         maps.LatLng{Lat: 37.7955, Lng: -122.3937},
			Types:            []string{"establishment"},
		},
		{FormattedAddress: "Ferry Building, Oakland, CA"},
	}, nil)

	res, err := svc.Geocode(context.Background(), &GeocodeQuery{Address: "  Ferry Building "})

	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 37.7955, res.Latitude)
	assert.Equal(t, -122.3937, res.Longitude)
	assert.Equal(t, "ChIJWTGPjmaAhYARxz6l1hOj92w", res.PlaceID)
	assert.Equal(t, []string{"establishment"}, res.Types)
}

func TestGeocode_NoResults(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("Geocode", mock.Anything, "Atlantis").Return([]maps.Place{}, nil)

	res, err := svc.Geocode(context.Background(), &GeocodeQuery{Address: "Atlantis"})

	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, "No results found", res.Message)
}

func TestGeocode_BlankAddress(t *testing.T) {
	svc, provider := newTestService(testConfig())

	_, err := svc.Geocode(context.Background(), &GeocodeQuery{Address: " "})

	assert.ErrorIs(t, err, ErrInvalidRequest)
	provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestReverseGeocode(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("ReverseGeocode", mock.Anything, maps.LatLng{Lat: 37.8024, Lng: -122.4058}).Return([]maps.Place{
		{FormattedAddress: "1 Telegraph Hill Blvd, San Francisco, CA 94133, USA", Location: maps.LatLng{Lat: 37.8024, Lng: -122.4058}},
	}, nil)

	res, err := svc.ReverseGeocode(context.Background(), &ReverseGeocodeQuery{
		Latitude:  float64Ptr(37.8024),
		Longitude: float64Ptr(-122.4058),
	})

	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "1 Telegraph Hill Blvd, San Francisco, CA 94133, USA", res.FormattedAddress)
}

func TestReverseGeocode_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		q    *ReverseGeocodeQuery
	}{
		{"missing latitude", &ReverseGeocodeQuery{Longitude: float64Ptr(0)}},
		{"latitude out of range", &ReverseGeocodeQuery{Latitude: float64Ptr(91), Longitude: float64Ptr(0)}},
		{"longitude out of range", &ReverseGeocodeQuery{Latitude: float64Ptr(0), Longitude: float64Ptr(-181)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider := newTestService(testConfig())

			_, err := svc.ReverseGeocode(context.Background(), tt.q)

			assert.ErrorIs(t, err, ErrInvalidRequest)
			provider.AssertNotCalled(t, "ReverseGeocode", mock.Anything, mock.Anything)
		})
	}
}

// ========================================
// TESTS: DistanceMatrix
// ========================================

func TestDistanceMatrix(t *testing.T) {
	svc, provider := newTestService(testConfig())
	provider.On("DistanceMatrix", mock.Anything, mock.MatchedBy(func(req *maps.DistanceMatrixRequest) bool {
		return len(req.Origins) == 1 && len(req.Destinations) == 2 &&
			req.Mode == maps.ModeTransit && req.Units == maps.UnitsImperial
	})).Return(&maps.DistanceMatrix{
		OriginAddresses:      []string{"Union Square, San Francisco, CA"},
		DestinationAddresses: []string{"Pier 39, San Francisco, CA", "Nowhere"},
		Rows: [][]maps.MatrixElement{{
			{Status: "OK", DistanceText: "1.9 mi", DistanceMeters: 3058, DurationText: "18 mins", DurationSeconds: 1080},
			{Status: "NOT_FOUND"},
		}},
	}, nil)

	res, err := svc.DistanceMatrix(context.Background(), &DistanceMatrixQuery{
		Origins:      []string{"Union Square"},
		Destinations: []string{"Pier 39", "Nowhere"},
		Mode:         "transit",
		Units:        "imperial",
	})

	require.NoError(t, err)
	assert.Equal(t, "transit", res.Mode)
	assert.Equal(t, "imperial", res.Units)
	require.Len(t, res.Rows, 1)
	require.Len(t, res.Rows[0].Elements, 2)
	assert.Equal(t, MatrixCell{Status: "OK", Distance: "1.9 mi", DistanceValue: 3058, Duration: "18 mins", DurationValue: 1080}, res.Rows[0].Elements[0])
	assert.Equal(t, "NOT_FOUND", res.Rows[0].Elements[1].Status)
}

func TestDistanceMatrix_InvalidQuery(t *testing.T) {
	svc, provider := newTestService(testConfig())

	_, err := svc.DistanceMatrix(context.Background(), &DistanceMatrixQuery{Origins: []string{"A"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.DistanceMatrix(context.Background(), &DistanceMatrixQuery{Origins: []string{"A", " "}, Destinations: []string{"B"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	provider.AssertNotCalled(t, "DistanceMatrix", mock.Anything, mock.Anything)
}

// ========================================
// TESTS: Handler
// ========================================

func TestHandler_RunTool_Directions(t *testing.T) {
	provider := new(mockMapsProvider)
	provider.On("GetDirections", mock.Anything, mock.Anything).Return(ferryToCoitResult(), nil)
	router := setupRouter(NewService(provider, testConfig()))

	w := doJSON(t, router, "/mcp/run", map[string]interface{}{
		"method": MethodDirections,
		"args":   map[string]string{"origin": "Ferry Building", "destination": "Coit Tower", "mode": "walking"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool       `json:"success"`
		Data    Directions `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Found)
	require.Len(t, resp.Data.Steps, 2)
	assert.Equal(t, "Head <b>north</b> on The Embarcadero", resp.Data.Steps[0].Instruction)
	assert.Equal(t, BuildLink([]string{"Ferry Building", "Coit Tower"}, "walking"), resp.Data.ShareableLink)
}

func TestHandler_RunTool_LookupMethods(t *testing.T) {
	svc := new(MockItineraryService)
	svc.On("Geocode", mock.Anything, &GeocodeQuery{Address: "Ferry Building"}).
		Return(&GeocodeResult{Found: true, Latitude: 37.7955}, nil)
	svc.On("ReverseGeocode", mock.Anything, mock.MatchedBy(func(q *ReverseGeocodeQuery) bool {
		return q.Latitude != nil && *q.Latitude == 37.8 && q.Longitude != nil && *q.Longitude == -122.4
	})).Return(&GeocodeResult{Found: true, FormattedAddress: "Telegraph Hill"}, nil)
	svc.On("DistanceMatrix", mock.Anything, mock.MatchedBy(func(q *DistanceMatrixQuery) bool {
		return len(q.Origins) == 2 && len(q.Destinations) == 1 && q.Units == "imperial"
	})).Return(&DistanceMatrixResult{Rows: []MatrixRow{}}, nil)
	router := setupRouter(svc)

	tests := []struct {
		method string
		args   interface{}
	}{
		{MethodGeocode, map[string]string{"address": "Ferry Building"}},
		{MethodReverseGeocode, map[string]float64{"latitude": 37.8, "longitude": -122.4}},
		{MethodDistanceMatrix, map[string]interface{}{"origins": []string{"A", "B"}, "destinations": []string{"C"}, "units": "imperial"}},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := doJSON(t, router, "/mcp/run", map[string]interface{}{"method": tt.method, "args": tt.args})

			require.Equal(t, http.StatusOK, w.Code)
			var resp ToolResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success, resp.Error)
		})
	}
	svc.AssertExpectations(t)
}

func TestHandler_GetDirections_ProviderUnavailable(t *testing.T) {
	svc := new(MockItineraryService)
	svc.On("Directions", mock.Anything, mock.Anything).Return(nil, errNetwork)

	w := doJSON(t, setupRouter(svc), "/api/v1/maps/directions", map[string]string{"origin": "A", "destination": "B"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp struct {
		Success bool              `json:"success"`
		Error   *common.ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, common.CodeUnavailable, resp.Error.ErrorCode)
	assert.Equal(t, "maps provider unavailable", resp.Error.Message)
}

func TestHandler_Geocode_InvalidRequest(t *testing.T) {
	svc := new(MockItineraryService)
	svc.On("Geocode", mock.Anything, mock.Anything).Return(nil, invalidRequest("address: is required"))

	w := doJSON(t, setupRouter(svc), "/api/v1/maps/geocode", map[string]string{"address": ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DistanceMatrix(t *testing.T) {
	svc := new(MockItineraryService)
	svc.On("DistanceMatrix", mock.Anything, mock.Anything).Return(&DistanceMatrixResult{
		Mode:  "driving",
		Units: "metric",
		Rows:  []MatrixRow{{Elements: []MatrixCell{{Status: "OK", DistanceValue: 1000}}}},
	}, nil)

	w := doJSON(t, setupRouter(svc), "/api/v1/maps/distance-matrix", map[string]interface{}{
		"origins": []string{"A"}, "destinations": []string{"B"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data DistanceMatrixResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Rows, 1)
	assert.Equal(t, 1000, resp.Data.Rows[0].Elements[0].DistanceValue)
}

func TestToAppError(t *testing.T) {
	assert.Nil(t, toAppError(nil))

	var appErr *common.AppError
	require.ErrorAs(t, toAppError(errNetwork), &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)

	require.ErrorAs(t, toAppError(invalidRequest("x")), &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	require.ErrorAs(t, toAppError(context.DeadlineExceeded), &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
}
