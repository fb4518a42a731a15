package itinerary

import (
	"fmt"
	"math"
)

const (
	metersPerMile = 1609.34
	// Distances from this many meters up are shown in miles.
	mileThresholdMeters = 1609
)

// FormatDistance renders meters as "N.N miles" or "N meters".
func FormatDistance(meters int) string {
	if meters >= mileThresholdMeters {
		return fmt.Sprintf("%.1f miles", float64(meters)/metersPerMile)
	}
	return fmt.Sprintf("%d meters", meters)
}

// FormatDuration renders seconds as "Hh Mm" from one hour up, otherwise "Mm".
// Partial minutes are dropped.
func FormatDuration(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// estimateLeg returns the placeholder metrics used for leg i when no
// provider data exists: 5 miles plus 2 per leg, 15 minutes plus 8 per leg.
func estimateLeg(i int) (meters, seconds int) {
	miles := 5.0 + 2.0*float64(i)
	meters = int(math.Round(miles * metersPerMile))
	seconds = (15 + 8*i) * 60
	return meters, seconds
}
