package types

import "time"

// Coordinate is a WGS84 lat/lng pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is inside the WGS84 envelope.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// TravelMode selects the routing profile used for travel-time estimates.
type TravelMode string

const (
	ModeDrive TravelMode = "drive"
	ModeCycle TravelMode = "cycle"
	ModeWalk  TravelMode = "walk"
)

// BudgetTier is the user's stated spending appetite.
type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

// TripPreferences is a single planning request, transient per call.
type TripPreferences struct {
	StartingAddress string     `json:"starting_address"`
	Interests       []string   `json:"interests"`
	Budget          BudgetTier `json:"budget"`
	TravelMode      TravelMode `json:"travel_mode"`
	MaxDistanceMi   float64    `json:"max_distance"`
	UseWeather      bool       `json:"use_weather"`
}

// ApplyDefaults fills empty fields with the historical request defaults.
func (p *TripPreferences) ApplyDefaults() {
	if p.StartingAddress == "" {
		p.StartingAddress = "Boston, MA"
	}
	if p.Budget == "" {
		p.Budget = BudgetLow
	}
	if p.TravelMode == "" {
		p.TravelMode = ModeDrive
	}
	if p.MaxDistanceMi <= 0 {
		p.MaxDistanceMi = 30
	}
}

// TimeWindow bounds a scheduled ("smart") itinerary.
type TimeWindow struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// ItineraryStop is one entry of the synthesized itinerary. The base fields keep
// the wire names the model is prompted for; the enrichment fields are filled by
// the planner from the scored activity list.
type ItineraryStop struct {
	Time          string  `json:"time,omitempty"`
	Name          string  `json:"name"`
	Duration      string  `json:"duration,omitempty"`
	Cost          string  `json:"cost"`
	Reason        string  `json:"reason"`
	TravelTimeMin float64 `json:"travel_time_min"`

	// Enriched by name-matching against the scored activity list. Left at zero
	// values when the model invents a name we cannot match.
	Coordinate     *Coordinate `json:"coordinate,omitempty"`
	Address        string      `json:"address,omitempty"`
	DistanceKm     float64     `json:"distance_km,omitempty"`
	RelevanceScore int         `json:"relevance_score,omitempty"`
}

// TripTotals aggregates a smart itinerary.
type TripTotals struct {
	EstimatedCost float64 `json:"estimated_cost"`
	ActivityHours float64 `json:"activity_hours"`
	TravelMinutes float64 `json:"travel_minutes"`
}

// TripPlan is the result of a manual (unscheduled) planning request.
type TripPlan struct {
	ID             string           `json:"plan_id"`
	Itinerary      []ItineraryStop  `json:"itinerary"`
	Weather        *WeatherSnapshot `json:"weather,omitempty"`
	Places         []Activity       `json:"places"`
	StartingCoords Coordinate       `json:"starting_coords"`
}

// SmartTripPlan is the result of a time-windowed planning request.
type SmartTripPlan struct {
	ID             string           `json:"plan_id"`
	Itinerary      []ItineraryStop  `json:"itinerary"`
	AllActivities  []Activity       `json:"all_activities"`
	Weather        *WeatherSnapshot `json:"weather,omitempty"`
	Places         []Activity       `json:"places"`
	StartingCoords Coordinate       `json:"starting_coords"`
	Totals         TripTotals       `json:"totals"`
}
