package itinerary

import (
	"testing"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeStops() []stop {
	return []stop{
		{Name: "Golden Gate Bridge", Location: "Golden Gate Bridge, San Francisco, CA"},
		{Name: "Alcatraz", Location: "Alcatraz Island, San Francisco, CA"},
		{Name: "Pier 39", Location: "Pier 39, San Francisco, CA"},
	}
}

func TestAssembleLegs_ChainsOrigins(t *testing.T) {
	start := "Union Square, San Francisco, CA"
	legs := assembleLegs(start, threeStops(), nil, "walking")

	require.Len(t, legs, 3)
	assert.Equal(t, start, legs[0].Origin)
	for i := 1; i < len(legs); i++ {
		assert.Equal(t, legs[i-1].Destination, legs[i].Origin)
	}
	for i, leg := range legs {
		assert.NotEmpty(t, leg.Origin)
		assert.NotEmpty(t, leg.Destination)
		assert.Equal(t, BuildLink([]string{leg.Origin, leg.Destination}, "walking"), leg.ShareableLink, "leg %d", i)
	}
}

func TestAssembleLegs_Estimates(t *testing.T) {
	legs := assembleLegs("Union Square", threeStops(), nil, "driving")

	for i, leg := range legs {
		meters, seconds := estimateLeg(i)
		assert.True(t, leg.IsEstimated)
		assert.Equal(t, meters, leg.DistanceMeters)
		assert.Equal(t, seconds, leg.DurationSeconds)
	}
	assert.Equal(t, "Estimated 5.0 miles", legs[0].DistanceText)
	assert.Equal(t, "Estimated 15m", legs[0].DurationText)
	assert.Equal(t, "Estimated 7.0 miles", legs[1].DistanceText)
	assert.Equal(t, "Estimated 23m", legs[1].DurationText)
}

func TestAssembleLegs_PartialProviderData(t *testing.T) {
	providerLegs := []maps.Leg{
		{DistanceText: "1.2 km", DistanceMeters: 1200, DurationText: "6 mins", DurationSeconds: 360},
	}

	legs := assembleLegs("Union Square", threeStops(), providerLegs, "driving")

	require.Len(t, legs, 3)
	assert.False(t, legs[0].IsEstimated)
	assert.Equal(t, "1.2 km", legs[0].DistanceText)
	assert.Equal(t, 1200, legs[0].DistanceMeters)
	assert.True(t, legs[1].IsEstimated)
	assert.True(t, legs[2].IsEstimated)

	meters, _ := estimateLeg(1)
	assert.Equal(t, meters, legs[1].DistanceMeters)
}

func TestAssembleLegs_FillsMissingProviderText(t *testing.T) {
	providerLegs := []maps.Leg{{DistanceMeters: 2000, DurationSeconds: 4000}}
	legs := assembleLegs("Union Square", threeStops()[:1], providerLegs, "driving")

	assert.Equal(t, "1.2 miles", legs[0].DistanceText)
	assert.Equal(t, "1h 6m", legs[0].DurationText)
}

func TestLegDescription(t *testing.T) {
	legs := assembleLegs("Union Square", threeStops()[:1], []maps.Leg{
		{DistanceText: "3.1 mi", DistanceMeters: 5000, DurationText: "14 mins", DurationSeconds: 840},
	}, "driving")

	want := "Travel to Golden Gate Bridge\n" +
		"From: Union Square\n" +
		"To: Golden Gate Bridge, San Francisco, CA\n" +
		"Distance: 3.1 mi\n" +
		"Duration: 14 mins\n" +
		"Directions: " + legs[0].ShareableLink
	assert.Equal(t, want, legs[0].CalendarDescription)
}

func TestAggregate(t *testing.T) {
	route := &ItineraryRoute{
		ExperienceCount:   2,
		CompleteRouteLink: "https://www.google.com/maps/dir/A/B/C",
		Legs: []RouteLeg{
			{DistanceMeters: 3000, DurationSeconds: 1800},
			{DistanceMeters: 2000, DurationSeconds: 2400, IsEstimated: true},
		},
	}

	aggregate(route)

	assert.Equal(t, 5000, route.TotalDistanceMeters)
	assert.Equal(t, 4200, route.TotalDurationSeconds)
	assert.Equal(t, "3.1 miles", route.TotalDistanceText)
	assert.Equal(t, "1h 10m", route.TotalDurationText)
	assert.True(t, route.IsDegraded)
	assert.Equal(t, "2 experiences planned", route.ItinerarySummary)
	assert.Equal(t,
		"Complete Itinerary Route\n2 experiences\nTotal distance: 3.1 miles\nTotal duration: 1h 10m\n"+
			"View complete route: https://www.google.com/maps/dir/A/B/C",
		route.CalendarMasterDescription)
}

func TestReorder(t *testing.T) {
	stops := []stop{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}}

	got, ok := reorder(stops, []int{2, 0, 1})
	require.True(t, ok)
	assert.Equal(t, []string{"C", "A", "B", "D"}, names(got))

	for _, bad := range [][]int{nil, {0, 1}, {0, 0, 1}, {3, 0, 1}, {-1, 0, 1}} {
		got, ok := reorder(stops, bad)
		assert.False(t, ok, "%v", bad)
		assert.Equal(t, []string{"A", "B", "C", "D"}, names(got))
	}
}

func names(stops []stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.Name
	}
	return out
}
