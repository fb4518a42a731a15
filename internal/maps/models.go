package maps

import (
	"fmt"
	"strings"
)

// DirectionsRequest asks for a route from Origin through Waypoints to Destination.
type DirectionsRequest struct {
	Origin      string
	Waypoints   []string
	Destination string
	Mode        TravelMode
	// Optimize lets the provider reorder Waypoints. Destination never moves.
	Optimize bool
}

// Validate checks that every location is non-blank.
func (r *DirectionsRequest) Validate() error {
	if strings.TrimSpace(r.Origin) == "" {
		return fmt.Errorf("origin is required")
	}
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("destination is required")
	}
	for i, wp := range r.Waypoints {
		if strings.TrimSpace(wp) == "" {
			return fmt.Errorf("waypoint %d is empty", i)
		}
	}
	return nil
}

// StopCount is the number of legs a complete answer contains.
func (r *DirectionsRequest) StopCount() int {
	return len(r.Waypoints) + 1
}

// DirectionsResult is the provider's answer in travel order.
type DirectionsResult struct {
	Legs []Leg
	// WaypointOrder is the permutation applied to the request waypoints:
	// WaypointOrder[i] is the index of the waypoint visited i-th. It is
	// empty when optimization was not requested or changed nothing.
	WaypointOrder []int
	// Polyline is the encoded overview polyline, passed through unparsed.
	Polyline string
	Summary  string
	Warnings []string
}

// Leg is one hop between consecutive stops.
type Leg struct {
	StartAddress    string
	EndAddress      string
	DistanceText    string
	DistanceMeters  int
	DurationText    string
	DurationSeconds int
	Steps           []Step
}

// Step is a single turn-by-turn instruction within a leg. Instruction is
// the provider's HTML-formatted text.
type Step struct {
	Instruction     string
	DistanceText    string
	DistanceMeters  int
	DurationText    string
	DurationSeconds int
	StartLocation   LatLng
	EndLocation     LatLng
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is one geocoding match.
type Place struct {
	FormattedAddress  string
	PlaceID           string
	Location          LatLng
	Types             []string
	AddressComponents []AddressComponent
}

// AddressComponent is one structured part of a formatted address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Units selects how the provider renders distance text.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// NormalizeUnits returns imperial when asked for it and metric otherwise.
func NormalizeUnits(units string) Units {
	if Units(strings.ToLower(strings.TrimSpace(units))) == UnitsImperial {
		return UnitsImperial
	}
	return UnitsMetric
}

// DistanceMatrixRequest asks for travel metrics between every origin and
// every destination.
type DistanceMatrixRequest struct {
	Origins      []string
	Destinations []string
	Mode         TravelMode
	Units        Units
}

// Validate checks that both sides are present and non-blank.
func (r *DistanceMatrixRequest) Validate() error {
	if len(r.Origins) == 0 {
		return fmt.Errorf("at least one origin is required")
	}
	if len(r.Destinations) == 0 {
		return fmt.Errorf("at least one destination is required")
	}
	for i, o := range r.Origins {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("origin %d is empty", i)
		}
	}
	for i, d := range r.Destinations {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("destination %d is empty", i)
		}
	}
	return nil
}

// DistanceMatrix holds one row per origin and one element per destination.
type DistanceMatrix struct {
	OriginAddresses      []string
	DestinationAddresses []string
	Rows                 [][]MatrixElement
}

// MatrixElement is the travel estimate for one origin/destination pair.
// Status is the provider's per-element status, e.g. OK or ZERO_RESULTS.
type MatrixElement struct {
	Status          string
	DistanceText    string
	DistanceMeters  int
	DurationText    string
	DurationSeconds int
}
