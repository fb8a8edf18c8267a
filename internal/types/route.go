package types

// RouteLeg is the distance/time between two consecutive waypoints.
type RouteLeg struct {
	DistanceKm float64 `json:"distance_km"`
	TimeMin    float64 `json:"time_min"`
}

// RouteResult describes a route through ordered waypoints. Estimated marks
// output derived from the great-circle estimator rather than the live routing
// provider; such geometry is display-only.
type RouteResult struct {
	TotalDistanceKm float64      `json:"total_distance_km"`
	TotalTimeMin    float64      `json:"total_time_min"`
	Legs            []RouteLeg   `json:"legs"`
	Geometry        []Coordinate `json:"geometry,omitempty"`
	Estimated       bool         `json:"estimated"`
}
