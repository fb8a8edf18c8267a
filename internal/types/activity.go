package types

// Activity is one candidate stop returned by the places gateway and enriched in
// place as the pipeline runs. Never persisted.
type Activity struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Coordinate    Coordinate `json:"coordinate"`
	CategoryLabel string     `json:"type"`
	Cost          string     `json:"cost"`
	Hours         string     `json:"hours"`
	Street        string     `json:"street,omitempty"`
	City          string     `json:"city,omitempty"`
	Formatted     string     `json:"address,omitempty"`

	// Enrichment, filled by the planner and synthesizer stages.
	DistanceKm     float64 `json:"distance_km,omitempty"`
	TravelTimeMin  float64 `json:"travel_time_min,omitempty"`
	RelevanceScore int     `json:"relevance_score,omitempty"`
	MatchedReason  string  `json:"matched_reason,omitempty"`
	IsOutdoor      bool    `json:"is_outdoor,omitempty"`
	WeatherWarning string  `json:"weather_warning,omitempty"`
}

// ActivityScore is the canonical per-activity model verdict, after shape
// normalization.
type ActivityScore struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Reason  string `json:"reason"`
	Outdoor bool   `json:"outdoor"`
	Warning string `json:"warning,omitempty"`
}
