package itinerary

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
)

// Experience is a point of interest to visit. Upstream agents send either a
// full object or a bare location string.
type Experience struct {
	Name        string `json:"name"`
	Location    string `json:"location,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts a plain string as shorthand for {"location": s}.
func (e *Experience) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var location string
		if err := json.Unmarshal(trimmed, &location); err != nil {
			return err
		}
		*e = Experience{Location: location}
		return nil
	}

	type plain Experience
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Experience(p)
	return nil
}

// ResolvedLocation returns the first non-blank of location, address and name.
func (e Experience) ResolvedLocation() string {
	for _, candidate := range []string{e.Location, e.Address, e.Name} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

// DisplayName returns the name, or the resolved location when unnamed.
func (e Experience) DisplayName() string {
	if name := strings.TrimSpace(e.Name); name != "" {
		return name
	}
	return e.ResolvedLocation()
}

// stop is an experience reduced to what routing needs.
type stop struct {
	Name     string
	Location string
}

// SynthesizeRequest asks for a route from StartLocation through Experiences.
type SynthesizeRequest struct {
	StartLocation string       `json:"start_location" validate:"required,not_blank"`
	Experiences   []Experience `json:"experiences" validate:"required,min=1,dive"`
	Mode          string       `json:"mode,omitempty"`
	// Optimize defaults to true when omitted.
	Optimize *bool `json:"optimize,omitempty"`
}

// ShouldOptimize reports whether the provider may reorder interior stops.
func (r *SynthesizeRequest) ShouldOptimize() bool {
	return r.Optimize == nil || *r.Optimize
}

// ShareableLinkRequest asks for a deep link over an explicit list of stops.
type ShareableLinkRequest struct {
	Origin      string   `json:"origin" validate:"required,not_blank"`
	Destination string   `json:"destination" validate:"required,not_blank"`
	Waypoints   []string `json:"waypoints,omitempty"`
	Mode        string   `json:"mode,omitempty"`
}

// ShareableLink is a Google Maps directions URL.
type ShareableLink struct {
	URL  string `json:"url"`
	Mode string `json:"mode"`
}

// RouteLeg is one transition between consecutive stops.
type RouteLeg struct {
	ExperienceName      string `json:"experience_name"`
	Origin              string `json:"origin"`
	Destination         string `json:"destination"`
	DistanceText        string `json:"distance_text"`
	DurationText        string `json:"duration_text"`
	DistanceMeters      int    `json:"distance_meters"`
	DurationSeconds     int    `json:"duration_seconds"`
	ShareableLink       string `json:"shareable_link"`
	CalendarDescription string `json:"calendar_description"`
	IsEstimated         bool   `json:"is_estimated"`
}

// ItineraryRoute is the complete multi-leg plan returned to callers.
type ItineraryRoute struct {
	StartLocation             string     `json:"start_location"`
	EndLocation               string     `json:"end_location"`
	Mode                      string     `json:"mode"`
	Provider                  string     `json:"provider,omitempty"`
	ExperienceCount           int        `json:"experience_count"`
	Legs                      []RouteLeg `json:"legs"`
	OptimizedOrder            []int      `json:"optimized_order"`
	TotalDistanceText         string     `json:"total_distance_text"`
	TotalDurationText         string     `json:"total_duration_text"`
	TotalDistanceMeters       int        `json:"total_distance_meters"`
	TotalDurationSeconds      int        `json:"total_duration_seconds"`
	CompleteRouteLink         string     `json:"complete_route_link"`
	CalendarMasterDescription string     `json:"calendar_master_description"`
	ItinerarySummary          string     `json:"itinerary_summary"`
	OverviewPolyline          string     `json:"overview_polyline,omitempty"`
	IsDegraded                bool       `json:"is_degraded"`
}

// DirectionsQuery asks for turn-by-turn directions between two places.
type DirectionsQuery struct {
	Origin            string   `json:"origin" validate:"required,not_blank"`
	Destination       string   `json:"destination" validate:"required,not_blank"`
	Waypoints         []string `json:"waypoints,omitempty"`
	Mode              string   `json:"mode,omitempty"`
	OptimizeWaypoints bool     `json:"optimize_waypoints,omitempty"`
}

// DirectionStep is one instruction of a route. Instruction keeps the
// provider's HTML markup.
type DirectionStep struct {
	Instruction   string      `json:"instruction"`
	Distance      string      `json:"distance"`
	Duration      string      `json:"duration"`
	StartLocation maps.LatLng `json:"start_location"`
	EndLocation   maps.LatLng `json:"end_location"`
}

// Directions is a single provider route with its steps and a shareable link.
// Found is false when the provider has no route between the places.
type Directions struct {
	Found               bool            `json:"found"`
	Message             string          `json:"message,omitempty"`
	Mode                string          `json:"mode"`
	Summary             string          `json:"summary,omitempty"`
	Distance            string          `json:"distance,omitempty"`
	Duration            string          `json:"duration,omitempty"`
	DistanceValue       int             `json:"distance_value"`
	DurationValue       int             `json:"duration_value"`
	StartAddress        string          `json:"start_address,omitempty"`
	EndAddress          string          `json:"end_address,omitempty"`
	Steps               []DirectionStep `json:"steps"`
	OverviewPolyline    string          `json:"overview_polyline,omitempty"`
	Warnings            []string        `json:"warnings"`
	WaypointOrder       []int           `json:"waypoint_order"`
	ShareableLink       string          `json:"shareable_link"`
	CalendarSummary     string          `json:"calendar_summary,omitempty"`
	CalendarDescription string          `json:"calendar_description,omitempty"`
}

// GeocodeQuery asks for the coordinates of a free-text address.
type GeocodeQuery struct {
	Address string `json:"address" validate:"required,not_blank"`
}

// ReverseGeocodeQuery asks for the address at a coordinate.
type ReverseGeocodeQuery struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// GeocodeResult is the best match for a geocoding query.
type GeocodeResult struct {
	Found             bool                    `json:"found"`
	Message           string                  `json:"message,omitempty"`
	Latitude          float64                 `json:"latitude,omitempty"`
	Longitude         float64                 `json:"longitude,omitempty"`
	FormattedAddress  string                  `json:"formatted_address,omitempty"`
	PlaceID           string                  `json:"place_id,omitempty"`
	Types             []string                `json:"types,omitempty"`
	AddressComponents []maps.AddressComponent `json:"address_components,omitempty"`
}

// DistanceMatrixQuery asks for travel metrics between every origin and
// every destination.
type DistanceMatrixQuery struct {
	Origins      []string `json:"origins" validate:"required,min=1,dive,not_blank"`
	Destinations []string `json:"destinations" validate:"required,min=1,dive,not_blank"`
	Mode         string   `json:"mode,omitempty"`
	Units        string   `json:"units,omitempty"`
}

// MatrixCell is the estimate for one origin/destination pair.
type MatrixCell struct {
	Status        string `json:"status"`
	Distance      string `json:"distance,omitempty"`
	DistanceValue int    `json:"distance_value"`
	Duration      string `json:"duration,omitempty"`
	DurationValue int    `json:"duration_value"`
}

// MatrixRow holds one cell per destination.
type MatrixRow struct {
	Elements []MatrixCell `json:"elements"`
}

// DistanceMatrixResult has one row per origin.
type DistanceMatrixResult struct {
	Mode                 string      `json:"mode"`
	Units                string      `json:"units"`
	OriginAddresses      []string    `json:"origin_addresses"`
	DestinationAddresses []string    `json:"destination_addresses"`
	Rows                 []MatrixRow `json:"rows"`
}
