package routing

import (
	"fmt"
	"math"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

const (
	earthRadiusKm = 6371
	// windingFactor inflates great-circle distance to approximate road
	// winding.
	windingFactor = 1.3
	// geometryPointsPerLeg is the number of interpolated display points per
	// leg. The produced geometry is cosmetic, not a road path.
	geometryPointsPerLeg = 8
	// lateralOffsetDeg bows the display geometry slightly off the straight
	// line so it reads as a route rather than a ruler line.
	lateralOffsetDeg = 0.0005
)

// Average speeds used to convert estimated distance into time.
var avgSpeedKmh = map[types.TravelMode]float64{
	types.ModeDrive: 50,
	types.ModeCycle: 18,
	types.ModeWalk:  5,
}

// Estimator approximates routes with the haversine formula when the live
// routing provider is unavailable or answers nonsense. Every result it
// produces is tagged Estimated.
type Estimator struct {
	withGeometry bool
}

func NewEstimator(withGeometry bool) *Estimator {
	return &Estimator{withGeometry: withGeometry}
}

// Estimate computes an approximate route through the ordered waypoints.
func (e *Estimator) Estimate(waypoints []types.Coordinate, mode types.TravelMode) (*types.RouteResult, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("estimator: need at least 2 waypoints, got %d", len(waypoints))
	}

	speed, ok := avgSpeedKmh[mode]
	if !ok {
		speed = avgSpeedKmh[types.ModeDrive]
	}

	result := &types.RouteResult{Estimated: true}
	for i := 1; i < len(waypoints); i++ {
		from, to := waypoints[i-1], waypoints[i]
		distanceKm := Haversine(from, to) * windingFactor
		timeMin := distanceKm / speed * 60

		result.Legs = append(result.Legs, types.RouteLeg{DistanceKm: distanceKm, TimeMin: timeMin})
		result.TotalDistanceKm += distanceKm
		result.TotalTimeMin += timeMin

		if e.withGeometry {
			result.Geometry = append(result.Geometry, interpolateLeg(from, to)...)
		}
	}
	if e.withGeometry {
		result.Geometry = append(result.Geometry, waypoints[len(waypoints)-1])
	}
	return result, nil
}

// Haversine returns the great-circle distance between two coordinates in
// kilometers.
func Haversine(from, to types.Coordinate) float64 {
	lat1 := from.Lat * math.Pi / 180
	lon1 := from.Lng * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	lon2 := to.Lng * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// interpolateLeg produces evenly spaced display points between two waypoints
// with a small sinusoidal lateral bow.
func interpolateLeg(from, to types.Coordinate) []types.Coordinate {
	points := make([]types.Coordinate, 0, geometryPointsPerLeg)
	for step := 0; step < geometryPointsPerLeg; step++ {
		frac := float64(step) / float64(geometryPointsPerLeg)
		bow := lateralOffsetDeg * math.Sin(math.Pi*frac)
		points = append(points, types.Coordinate{
			Lat: from.Lat + (to.Lat-from.Lat)*frac + bow,
			Lng: from.Lng + (to.Lng-from.Lng)*frac - bow,
		})
	}
	return points
}
