package maps

import (
	"context"
	"strings"
	"time"
)

// Provider identifies a directions backend.
type Provider string

const (
	ProviderGoogle Provider = "google"
)

// TravelMode is the transport mode requested from the provider.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeTransit   TravelMode = "transit"
)

// NormalizeMode maps free-form input onto a supported mode. Anything
// unrecognized is treated as driving.
func NormalizeMode(mode string) TravelMode {
	switch m := TravelMode(strings.ToLower(strings.TrimSpace(mode))); m {
	case ModeDriving, ModeWalking, ModeBicycling, ModeTransit:
		return m
	default:
		return ModeDriving
	}
}

// DirectionsProvider resolves a multi-stop route in a single round trip.
// Implementations do not retry; every failure is reported as a
// *ProviderError matching ErrProviderUnavailable or ErrInvalidDirectionsRequest.
type DirectionsProvider interface {
	GetDirections(ctx context.Context, req *DirectionsRequest) (*DirectionsResult, error)
	HealthCheck(ctx context.Context) error
	Name() Provider
}

// Geocoder resolves free-text addresses and coordinates to places. An
// empty slice means nothing matched.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Place, error)
	ReverseGeocode(ctx context.Context, location LatLng) ([]Place, error)
}

// DistanceMatrixProvider computes travel metrics between sets of locations.
type DistanceMatrixProvider interface {
	DistanceMatrix(ctx context.Context, req *DistanceMatrixRequest) (*DistanceMatrix, error)
}

// MapsProvider is the full surface of a maps backend.
type MapsProvider interface {
	DirectionsProvider
	Geocoder
	DistanceMatrixProvider
}

// ProviderConfig holds configuration for a directions provider
type ProviderConfig struct {
	Provider Provider      `json:"provider"`
	APIKey   string        `json:"-"`
	BaseURL  string        `json:"base_url,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}
