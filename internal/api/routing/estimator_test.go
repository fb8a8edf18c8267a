package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

var (
	boston    = types.Coordinate{Lat: 42.3601, Lng: -71.0589}
	cambridge = types.Coordinate{Lat: 42.3736, Lng: -71.1097}
)

func TestEstimate_RejectsTooFewWaypoints(t *testing.T) {
	est := NewEstimator(false)

	_, err := est.Estimate([]types.Coordinate{boston}, types.ModeDrive)
	assert.Error(t, err)

	_, err = est.Estimate(nil, types.ModeDrive)
	assert.Error(t, err)
}

func TestEstimate_CoincidentWaypointsAreZero(t *testing.T) {
	est := NewEstimator(false)

	result, err := est.Estimate([]types.Coordinate{boston, boston}, types.ModeDrive)
	require.NoError(t, err)

	assert.Zero(t, result.TotalDistanceKm)
	assert.Zero(t, result.TotalTimeMin)
	assert.True(t, result.Estimated)
}

func TestEstimate_DistinctWaypointsArePositive(t *testing.T) {
	est := NewEstimator(false)

	result, err := est.Estimate([]types.Coordinate{boston, cambridge}, types.ModeDrive)
	require.NoError(t, err)

	assert.Greater(t, result.TotalDistanceKm, 0.0)
	assert.Greater(t, result.TotalTimeMin, 0.0)
	require.Len(t, result.Legs, 1)
	assert.InDelta(t, result.TotalDistanceKm, result.Legs[0].DistanceKm, 1e-9)
}

func TestEstimate_AppliesWindingFactor(t *testing.T) {
	est := NewEstimator(false)

	result, err := est.Estimate([]types.Coordinate{boston, cambridge}, types.ModeDrive)
	require.NoError(t, err)

	greatCircle := Haversine(boston, cambridge)
	assert.InDelta(t, greatCircle*windingFactor, result.TotalDistanceKm, 1e-9)
}

func TestEstimate_SlowerModesTakeLonger(t *testing.T) {
	est := NewEstimator(false)
	waypoints := []types.Coordinate{boston, cambridge}

	drive, err := est.Estimate(waypoints, types.ModeDrive)
	require.NoError(t, err)
	cycle, err := est.Estimate(waypoints, types.ModeCycle)
	require.NoError(t, err)
	walk, err := est.Estimate(waypoints, types.ModeWalk)
	require.NoError(t, err)

	assert.Less(t, drive.TotalTimeMin, cycle.TotalTimeMin)
	assert.Less(t, cycle.TotalTimeMin, walk.TotalTimeMin)
	// Distance does not depend on the mode.
	assert.InDelta(t, drive.TotalDistanceKm, walk.TotalDistanceKm, 1e-9)
}

func TestEstimate_UnknownModeFallsBackToDrive(t *testing.T) {
	est := NewEstimator(false)
	waypoints := []types.Coordinate{boston, cambridge}

	drive, err := est.Estimate(waypoints, types.ModeDrive)
	require.NoError(t, err)
	unknown, err := est.Estimate(waypoints, types.TravelMode("hovercraft"))
	require.NoError(t, err)

	assert.InDelta(t, drive.TotalTimeMin, unknown.TotalTimeMin, 1e-9)
}

func TestEstimate_MultiLegAccumulates(t *testing.T) {
	est := NewEstimator(false)
	somerville := types.Coordinate{Lat: 42.3876, Lng: -71.0995}

	result, err := est.Estimate([]types.Coordinate{boston, cambridge, somerville}, types.ModeDrive)
	require.NoError(t, err)

	require.Len(t, result.Legs, 2)
	assert.InDelta(t, result.Legs[0].DistanceKm+result.Legs[1].DistanceKm, result.TotalDistanceKm, 1e-9)
}

func TestEstimate_GeometryEndsAtDestination(t *testing.T) {
	est := NewEstimator(true)

	result, err := est.Estimate([]types.Coordinate{boston, cambridge}, types.ModeDrive)
	require.NoError(t, err)

	require.Len(t, result.Geometry, geometryPointsPerLeg+1)
	assert.Equal(t, cambridge, result.Geometry[len(result.Geometry)-1])
	assert.InDelta(t, boston.Lat, result.Geometry[0].Lat, 1e-9)
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Boston to New York City is roughly 306 km great-circle.
	nyc := types.Coordinate{Lat: 40.7128, Lng: -74.0060}

	d := Haversine(boston, nyc)
	assert.InDelta(t, 306, d, 5)
}
