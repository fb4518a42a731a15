package itinerary

import "fmt"

// aggregate fills the totals, texts and master description of route from
// its legs and complete route link.
func aggregate(route *ItineraryRoute) {
	route.TotalDistanceMeters = 0
	route.TotalDurationSeconds = 0
	route.IsDegraded = false

	for _, leg := range route.Legs {
		route.TotalDistanceMeters += leg.DistanceMeters
		route.TotalDurationSeconds += leg.DurationSeconds
		if leg.IsEstimated {
			route.IsDegraded = true
		}
	}

	route.TotalDistanceText = FormatDistance(route.TotalDistanceMeters)
	route.TotalDurationText = FormatDuration(route.TotalDurationSeconds)
	route.ItinerarySummary = fmt.Sprintf("%d experiences planned", route.ExperienceCount)
	route.CalendarMasterDescription = fmt.Sprintf(
		"Complete Itinerary Route\n%d experiences\nTotal distance: %s\nTotal duration: %s\nView complete route: %s",
		route.ExperienceCount, route.TotalDistanceText, route.TotalDurationText, route.CompleteRouteLink)
}
