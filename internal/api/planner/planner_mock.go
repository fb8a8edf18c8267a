package planner

import "github.com/MattZaluski/SWETripPlanner/internal/types"

// Fixed dataset served in mock mode so the pipeline runs without provider
// credentials. Mirrors the original development fixtures.
var mockTravelTimes = map[string]float64{"p1": 10, "p2": 15, "p3": 20}

func mockActivities() []types.Activity {
	return []types.Activity{
		{
			ID:            "p1",
			Name:          "Museum of Stuff",
			Coordinate:    types.Coordinate{Lat: 42.36, Lng: -71.06},
			CategoryLabel: "museum",
			Cost:          "low",
			Hours:         "10-17",
		},
		{
			ID:            "p2",
			Name:          "Sunny Park",
			Coordinate:    types.Coordinate{Lat: 42.37, Lng: -71.05},
			CategoryLabel: "park",
			Cost:          "free",
			Hours:         "6-20",
		},
		{
			ID:            "p3",
			Name:          "Joe's Diner",
			Coordinate:    types.Coordinate{Lat: 42.355, Lng: -71.07},
			CategoryLabel: "restaurant",
			Cost:          "low",
			Hours:         "7-21",
		},
	}
}

// mockState assembles the fixture pipeline state: Boston origin, the three
// fixed activities with flat travel times, clear weather when requested.
func mockState(prefs types.TripPreferences) *pipelineState {
	activities := mockActivities()
	for i := range activities {
		activities[i].TravelTimeMin = mockTravelTimes[activities[i].ID]
	}
	state := &pipelineState{
		origin:     types.Coordinate{Lat: 42.3601, Lng: -71.0589},
		activities: activities,
	}
	if prefs.UseWeather {
		state.weather = types.DefaultWeather()
	}
	return state
}
