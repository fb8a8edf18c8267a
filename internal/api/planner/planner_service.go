package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
	"github.com/MattZaluski/SWETripPlanner/internal/api/geo"
	"github.com/MattZaluski/SWETripPlanner/internal/api/itinerary"
	"github.com/MattZaluski/SWETripPlanner/internal/api/places"
	"github.com/MattZaluski/SWETripPlanner/internal/api/routing"
	"github.com/MattZaluski/SWETripPlanner/internal/api/weather"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service orchestrates the full planning pipeline.
type Service interface {
	PlanTrip(ctx context.Context, prefs types.TripPreferences) (*types.TripPlan, error)
	PlanTripSmart(ctx context.Context, prefs types.TripPreferences, window types.TimeWindow) (*types.SmartTripPlan, error)
}

// ServiceImpl runs geocode, places, travel times, weather, and synthesis in
// sequence, degrading everything but geocoding. In mock mode it serves a
// fixed dataset so the pipeline works without provider credentials.
type ServiceImpl struct {
	logger      *slog.Logger
	geocoder    geo.Service
	places      places.Service
	weather     weather.Service
	routing     routing.Service
	synthesizer itinerary.Service
	rec         *api.Recorder
	mock        bool
}

func NewService(geocoder geo.Service, placesSvc places.Service, weatherSvc weather.Service, routingSvc routing.Service, synthesizer itinerary.Service, mock bool, rec *api.Recorder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		geocoder:    geocoder,
		places:      placesSvc,
		weather:     weatherSvc,
		routing:     routingSvc,
		synthesizer: synthesizer,
		rec:         rec,
		mock:        mock,
	}
}

// PlanTrip produces an unscheduled, ranked itinerary.
func (s *ServiceImpl) PlanTrip(ctx context.Context, prefs types.TripPreferences) (*types.TripPlan, error) {
	start := time.Now()
	defer func() { s.rec.PlanDuration(ctx, "manual", time.Since(start)) }()

	state, err := s.assemble(ctx, prefs, nil)
	if err != nil {
		return nil, err
	}
	return &types.TripPlan{
		ID:             uuid.NewString(),
		Itinerary:      state.stops,
		Weather:        state.weather,
		Places:         state.activities,
		StartingCoords: state.origin,
	}, nil
}

// PlanTripSmart produces a time-scheduled itinerary plus aggregate totals.
func (s *ServiceImpl) PlanTripSmart(ctx context.Context, prefs types.TripPreferences, window types.TimeWindow) (*types.SmartTripPlan, error) {
	start := time.Now()
	defer func() { s.rec.PlanDuration(ctx, "smart", time.Since(start)) }()

	state, err := s.assemble(ctx, prefs, &window)
	if err != nil {
		return nil, err
	}
	return &types.SmartTripPlan{
		ID:             uuid.NewString(),
		Itinerary:      state.stops,
		AllActivities:  state.activities,
		Weather:        state.weather,
		Places:         state.activities,
		StartingCoords: state.origin,
		Totals:         computeTotals(state.stops),
	}, nil
}

// pipelineState is the accumulating output of one assemble run.
type pipelineState struct {
	origin     types.Coordinate
	activities []types.Activity
	weather    *types.WeatherSnapshot
	stops      []types.ItineraryStop
}

func (s *ServiceImpl) assemble(ctx context.Context, prefs types.TripPreferences, window *types.TimeWindow) (*pipelineState, error) {
	ctx, span := otel.Tracer("TripPlanner").Start(ctx, "assemble", trace.WithAttributes(
		attribute.String("plan.address", prefs.StartingAddress),
		attribute.Bool("plan.scheduled", window != nil),
	))
	defer span.End()

	prefs.ApplyDefaults()

	var state *pipelineState
	if s.mock {
		state = mockState(prefs)
	} else {
		// Step 1: geocoding failures are the only request-fatal ones.
		origin, err := s.geocoder.Geocode(ctx, prefs.StartingAddress)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "geocoding failed")
			return nil, fmt.Errorf("plan: %w", err)
		}
		state = &pipelineState{origin: origin}

		// Steps 2 and 4 share no state besides the cache and run concurrently.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			activities, err := s.places.FindNearby(gctx, origin, prefs.MaxDistanceMi, prefs.Interests)
			if err != nil {
				return err
			}
			state.activities = activities
			return nil
		})
		if prefs.UseWeather {
			g.Go(func() error {
				state.weather = s.weather.Snapshot(gctx, origin)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "places fetch failed")
			return nil, fmt.Errorf("plan: %w", err)
		}

		// Step 3: per-activity travel legs, each cached by start-activity pair.
		s.attachTravelTimes(ctx, origin, prefs.TravelMode, state.activities)
	}

	// Steps 5 onward: one model call covers scores and the itinerary.
	result := s.synthesizer.Synthesize(ctx, itinerary.SynthesisRequest{
		Prefs:      prefs,
		Activities: state.activities,
		Weather:    state.weather,
		Window:     window,
	})

	mergeScores(state.activities, result.Scores)
	sort.SliceStable(state.activities, func(i, j int) bool {
		return state.activities[i].RelevanceScore > state.activities[j].RelevanceScore
	})
	state.stops = enrichStops(result.Itinerary, state.activities)

	span.SetAttributes(
		attribute.Int("plan.activities", len(state.activities)),
		attribute.Int("plan.stops", len(state.stops)),
		attribute.Bool("plan.degraded_scoring", result.Degraded),
	)
	return state, nil
}

// attachTravelTimes fills DistanceKm and TravelTimeMin on each activity from
// the routing service. Routing trouble degrades to the estimator inside the
// service, so failures here are logged and skipped, never fatal.
func (s *ServiceImpl) attachTravelTimes(ctx context.Context, origin types.Coordinate, mode types.TravelMode, activities []types.Activity) {
	for i := range activities {
		route, err := s.routing.CalculateRoute(ctx, []types.Coordinate{origin, activities[i].Coordinate}, mode)
		if err != nil {
			s.logger.WarnContext(ctx, "Travel time unavailable for activity",
				slog.String("activity", activities[i].Name), slog.Any("error", err))
			continue
		}
		activities[i].DistanceKm = route.TotalDistanceKm
		activities[i].TravelTimeMin = route.TotalTimeMin
	}
}
