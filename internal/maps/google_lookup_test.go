package maps

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ferryBuildingGeocode = `{
  "status": "OK",
  "results": [{
    "formatted_address": "1 Ferry Building, San Francisco, CA 94111, USA",
    "place_id": "ChIJWTGPjmaAhYARxz6l1hOj92w",
    "types": ["establishment", "point_of_interest"],
    "address_components": [
      {"long_name": "San Francisco", "short_name": "SF", "types": ["locality", "political"]}
    ],
    "geometry": {"location": {"lat": 37.7955, "lng": -122.3937}}
  }]
}`

func TestGoogleDirectionsProvider_Geocode(t *testing.T) {
	t.Run("should decode the first match", func(t *testing.T) {
		var query url.Values
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/geocode/json", r.URL.Path)
			query = r.URL.Query()
			_, _ = w.Write([]byte(ferryBuildingGeocode))
		})

		places, err := provider.Geocode(context.Background(), " Ferry Building, San Francisco ")
		require.NoError(t, err)

		assert.Equal(t, "Ferry Building, San Francisco", query.Get("address"))
		assert.Equal(t, "test-key", query.Get("key"))
		require.Len(t, places, 1)
		assert.Equal(t, "ChIJWTGPjmaAhYARxz6l1hOj92w", places[0].PlaceID)
		assert.Equal(t, LatLng{Lat: 37.7955, Lng: -122.3937}, places[0].Location)
		assert.Equal(t, "SF", places[0].AddressComponents[0].ShortName)
	})

	t.Run("should return no places for ZERO_RESULTS", func(t *testing.T) {
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		})

		places, err := provider.Geocode(context.Background(), "nowhere at all")
		require.NoError(t, err)
		assert.Empty(t, places)
	})

	t.Run("should reject a blank address without a network call", func(t *testing.T) {
		provider, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := provider.Geocode(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrInvalidDirectionsRequest)
		assert.Equal(t, int32(0), *calls)
	})

	t.Run("should classify denied keys as a status failure", func(t *testing.T) {
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
		})

		_, err := provider.Geocode(context.Background(), "Ferry Building")
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, KindStatus, perr.Kind)
		assert.Equal(t, OpGeocode, perr.Operation)
		assert.Contains(t, err.Error(), "google geocode status REQUEST_DENIED: bad key")
		assert.False(t, IsRetryable(err))
	})
}

func TestGoogleDirectionsProvider_ReverseGeocode(t *testing.T) {
	t.Run("should send latlng", func(t *testing.T) {
		var query url.Values
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			_, _ = w.Write([]byte(ferryBuildingGeocode))
		})

		places, err := provider.ReverseGeocode(context.Background(), LatLng{Lat: 37.7955, Lng: -122.3937})
		require.NoError(t, err)
		assert.Equal(t, "37.7955,-122.3937", query.Get("latlng"))
		assert.Len(t, places, 1)
	})

	t.Run("should reject out of range coordinates", func(t *testing.T) {
		provider, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := provider.ReverseGeocode(context.Background(), LatLng{Lat: 91, Lng: 0})
		assert.ErrorIs(t, err, ErrInvalidDirectionsRequest)
		assert.Equal(t, int32(0), *calls)
	})
}

func TestGoogleDirectionsProvider_DistanceMatrix(t *testing.T) {
	t.Run("should build query and decode rows", func(t *testing.T) {
		var query url.Values
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/distancematrix/json", r.URL.Path)
			query = r.URL.Query()
			_, _ = w.Write([]byte(`{
			  "status": "OK",
			  "origin_addresses": ["Union Square, San Francisco, CA, USA"],
			  "destination_addresses": ["Ferry Building, San Francisco, CA, USA", "Honolulu, HI, USA"],
			  "rows": [{"elements": [
			    {"status": "OK", "distance": {"text": "2.1 mi", "value": 3380}, "duration": {"text": "12 mins", "value": 720}},
			    {"status": "ZERO_RESULTS"}
			  ]}]
			}`))
		})

		matrix, err := provider.DistanceMatrix(context.Background(), &DistanceMatrixRequest{
			Origins:      []string{"Union Square"},
			Destinations: []string{"Ferry Building", "Honolulu"},
			Mode:         "Walking",
			Units:        "imperial",
		})
		require.NoError(t, err)

		assert.Equal(t, "Union Square", query.Get("origins"))
		assert.Equal(t, "Ferry Building|Honolulu", query.Get("destinations"))
		assert.Equal(t, "walking", query.Get("mode"))
		assert.Equal(t, "imperial", query.Get("units"))

		require.Len(t, matrix.Rows, 1)
		require.Len(t, matrix.Rows[0], 2)
		assert.Equal(t, 3380, matrix.Rows[0][0].DistanceMeters)
		assert.Equal(t, "12 mins", matrix.Rows[0][0].DurationText)
		assert.Equal(t, "ZERO_RESULTS", matrix.Rows[0][1].Status)
		assert.Equal(t, []string{"Ferry Building, San Francisco, CA, USA", "Honolulu, HI, USA"}, matrix.DestinationAddresses)
	})

	t.Run("should reject an empty side without a network call", func(t *testing.T) {
		provider, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := provider.DistanceMatrix(context.Background(), &DistanceMatrixRequest{Origins: []string{"A"}})
		assert.ErrorIs(t, err, ErrInvalidDirectionsRequest)
		assert.Equal(t, int32(0), *calls)
	})

	t.Run("should retry on quota statuses", func(t *testing.T) {
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"OVER_QUERY_LIMIT"}`))
		})

		_, err := provider.DistanceMatrix(context.Background(), &DistanceMatrixRequest{
			Origins:      []string{"A"},
			Destinations: []string{"B"},
		})
		assert.ErrorIs(t, err, ErrProviderUnavailable)
		assert.True(t, IsRetryable(err))
	})
}

func TestNormalizeUnits(t *testing.T) {
	assert.Equal(t, UnitsImperial, NormalizeUnits(" Imperial"))
	assert.Equal(t, UnitsMetric, NormalizeUnits(""))
	assert.Equal(t, UnitsMetric, NormalizeUnits("furlongs"))
}
