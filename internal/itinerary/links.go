package itinerary

import (
	"net/url"
	"strings"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
)

const (
	directionsLinkBase   = "https://www.google.com/maps/dir/"
	directionsLinkSuffix = "/@?entry=ttu&g_ep=EgoyMDI0MTIwMy4wIKXMDSoASAFQAw%3D%3D&mode="
)

// BuildLink returns a Google Maps directions URL visiting locations in
// order. Locations are query-escaped so spaces become "+" and commas "%2C".
// Unsupported modes fall back to driving.
func BuildLink(locations []string, mode string) string {
	encoded := make([]string, len(locations))
	for i, loc := range locations {
		encoded[i] = url.QueryEscape(loc)
	}

	var b strings.Builder
	b.WriteString(directionsLinkBase)
	b.WriteString(strings.Join(encoded, "/"))
	b.WriteString(directionsLinkSuffix)
	b.WriteString(string(maps.NormalizeMode(mode)))
	return b.String()
}
