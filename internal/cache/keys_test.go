package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

func TestGeocodeKey_NormalizesCaseAndWhitespace(t *testing.T) {
	a := GeocodeKey("  Boston, MA ")
	b := GeocodeKey("boston, ma")
	c := GeocodeKey("Cambridge, MA")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPlacesKey_CategoryOrderIndependent(t *testing.T) {
	center := types.Coordinate{Lat: 42.3601, Lng: -71.0589}

	a := PlacesKey(center, 30000, []string{"catering.restaurant", "leisure.park"})
	b := PlacesKey(center, 30000, []string{"leisure.park", "catering.restaurant"})

	assert.Equal(t, a, b)
}

func TestPlacesKey_RadiusChangesKey(t *testing.T) {
	center := types.Coordinate{Lat: 42.3601, Lng: -71.0589}
	cats := []string{"leisure.park"}

	assert.NotEqual(t, PlacesKey(center, 30000, cats), PlacesKey(center, 16093, cats))
}

func TestPlacesKey_NearbyCoordinatesCollide(t *testing.T) {
	cats := []string{"leisure.park"}

	// Within rounding tolerance of each other.
	a := PlacesKey(types.Coordinate{Lat: 42.3601, Lng: -71.0589}, 30000, cats)
	b := PlacesKey(types.Coordinate{Lat: 42.3644, Lng: -71.0551}, 30000, cats)
	assert.Equal(t, a, b)

	// Clearly different area.
	c := PlacesKey(types.Coordinate{Lat: 42.41, Lng: -71.0589}, 30000, cats)
	assert.NotEqual(t, a, c)
}

func TestRouteKey_WaypointOrderMatters(t *testing.T) {
	p1 := types.Coordinate{Lat: 42.3601, Lng: -71.0589}
	p2 := types.Coordinate{Lat: 42.3736, Lng: -71.1097}

	forward := RouteKey([]types.Coordinate{p1, p2}, types.ModeDrive)
	reverse := RouteKey([]types.Coordinate{p2, p1}, types.ModeDrive)

	assert.NotEqual(t, forward, reverse, "A to B and B to A are different routes")
}

func TestRouteKey_ModeChangesKey(t *testing.T) {
	waypoints := []types.Coordinate{
		{Lat: 42.3601, Lng: -71.0589},
		{Lat: 42.3736, Lng: -71.1097},
	}

	assert.NotEqual(t,
		RouteKey(waypoints, types.ModeDrive),
		RouteKey(waypoints, types.ModeWalk))
}

func TestScoringKey_OrderIndependentInputs(t *testing.T) {
	prefs := types.TripPreferences{
		Interests:  []string{"museums", "parks"},
		Budget:     types.BudgetLow,
		TravelMode: types.ModeDrive,
	}
	shuffled := prefs
	shuffled.Interests = []string{"parks", "museums"}

	a := ScoringKey(prefs, []string{"Museum of Stuff", "Sunny Park"}, "clear|10", nil)
	b := ScoringKey(shuffled, []string{"Sunny Park", "Museum of Stuff"}, "clear|10", nil)

	assert.Equal(t, a, b)
}

func TestScoringKey_WeatherAndWindowChangeKey(t *testing.T) {
	prefs := types.TripPreferences{
		Interests:  []string{"parks"},
		Budget:     types.BudgetLow,
		TravelMode: types.ModeDrive,
	}
	names := []string{"Sunny Park"}

	base := ScoringKey(prefs, names, "clear|10", nil)
	rainy := ScoringKey(prefs, names, "rainy|80", nil)
	assert.NotEqual(t, base, rainy)

	window := &types.TimeWindow{
		Start: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	}
	windowed := ScoringKey(prefs, names, "clear|10", window)
	assert.NotEqual(t, base, windowed)
}
