package itinerary

import (
	"fmt"
	"sync"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
)

const estimatedPrefix = "Estimated "

// assembleLegs builds one leg per stop. Leg i takes provider leg i when it
// exists and an estimate otherwise. Origins chain from start through stops.
func assembleLegs(start string, stops []stop, providerLegs []maps.Leg, mode string) []RouteLeg {
	links := buildLegLinks(start, stops, mode)

	legs := make([]RouteLeg, len(stops))
	origin := start
	for i, s := range stops {
		leg := RouteLeg{
			ExperienceName: s.Name,
			Origin:         origin,
			Destination:    s.Location,
			ShareableLink:  links[i],
		}

		if i < len(providerLegs) {
			pl := providerLegs[i]
			leg.DistanceMeters = max(pl.DistanceMeters, 0)
			leg.DurationSeconds = max(pl.DurationSeconds, 0)
			leg.DistanceText = textOr(pl.DistanceText, FormatDistance(leg.DistanceMeters))
			leg.DurationText = textOr(pl.DurationText, FormatDuration(leg.DurationSeconds))
		} else {
			leg.DistanceMeters, leg.DurationSeconds = estimateLeg(i)
			leg.DistanceText = estimatedPrefix + FormatDistance(leg.DistanceMeters)
			leg.DurationText = estimatedPrefix + FormatDuration(leg.DurationSeconds)
			leg.IsEstimated = true
		}

		leg.CalendarDescription = legDescription(leg)
		legs[i] = leg
		origin = s.Location
	}
	return legs
}

// buildLegLinks builds every per-leg link concurrently into indexed slots.
func buildLegLinks(start string, stops []stop, mode string) []string {
	links := make([]string, len(stops))

	var wg sync.WaitGroup
	origin := start
	for i, s := range stops {
		wg.Add(1)
		go func(i int, from, to string) {
			defer wg.Done()
			links[i] = BuildLink([]string{from, to}, mode)
		}(i, origin, s.Location)
		origin = s.Location
	}
	wg.Wait()

	return links
}

func legDescription(leg RouteLeg) string {
	return fmt.Sprintf("Travel to %s\nFrom: %s\nTo: %s\nDistance: %s\nDuration: %s\nDirections: %s",
		leg.ExperienceName, leg.Origin, leg.Destination, leg.DistanceText, leg.DurationText, leg.ShareableLink)
}

func textOr(text, fallback string) string {
	if text != "" {
		return text
	}
	return fallback
}
