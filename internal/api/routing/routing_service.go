package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// Routing profile names used by the directions provider.
var profiles = map[types.TravelMode]string{
	types.ModeDrive: "driving-car",
	types.ModeCycle: "cycling-regular",
	types.ModeWalk:  "foot-walking",
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service plans routes through ordered waypoints.
type Service interface {
	CalculateRoute(ctx context.Context, waypoints []types.Coordinate, mode types.TravelMode) (*types.RouteResult, error)
}

// ServiceImpl wraps the OpenRouteService directions endpoint. When the
// provider is unavailable, unconfigured, or returns a degenerate zero-length
// route, it answers with the haversine estimator instead of failing.
type ServiceImpl struct {
	logger    *slog.Logger
	client    *http.Client
	endpoint  string
	apiKey    string
	store     *cache.Store
	ttl       time.Duration
	estimator *Estimator
	rec       *api.Recorder
}

func NewService(endpoint, apiKey string, timeout, ttl time.Duration, store *cache.Store, estimator *Estimator, rec *api.Recorder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		client:    &http.Client{Timeout: timeout},
		endpoint:  endpoint,
		apiKey:    apiKey,
		store:     store,
		ttl:       ttl,
		estimator: estimator,
		rec:       rec,
	}
}

// directionsResponse is the subset of the GeoJSON directions envelope we read.
type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"` // seconds
			} `json:"summary"`
			Segments []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"segments"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// CalculateRoute returns the cached, live, or estimated route through the
// waypoints. It fails only on malformed input; provider trouble degrades to
// the estimator.
func (s *ServiceImpl) CalculateRoute(ctx context.Context, waypoints []types.Coordinate, mode types.TravelMode) (*types.RouteResult, error) {
	ctx, span := otel.Tracer("RoutingService").Start(ctx, "CalculateRoute", trace.WithAttributes(
		attribute.Int("route.waypoints", len(waypoints)),
		attribute.String("route.mode", string(mode)),
	))
	defer span.End()

	if len(waypoints) < 2 {
		return nil, fmt.Errorf("routing: need at least 2 waypoints, got %d", len(waypoints))
	}

	key := cache.RouteKey(waypoints, mode)
	if cached, ok := cache.Get[*types.RouteResult](s.store, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.rec.Cache(ctx, "routing", true)
		return cached, nil
	}
	s.rec.Cache(ctx, "routing", false)

	if s.apiKey == "" {
		// configuration, not an outage: the estimate is the best answer we
		// will ever have, so cache it like a live one
		span.AddEvent("no routing credential, estimating")
		return s.estimate(ctx, key, waypoints, mode, true)
	}

	start := time.Now()
	result, err := s.callProvider(ctx, waypoints, mode)
	s.rec.Upstream(ctx, "openrouteservice", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Routing provider failed, estimating",
			slog.String("mode", string(mode)), slog.Any("error", err))
		return s.estimate(ctx, key, waypoints, mode, false)
	}
	if result.TotalDistanceKm == 0 && result.TotalTimeMin == 0 {
		// degenerate provider answer
		span.AddEvent("zero-length route from provider, estimating")
		return s.estimate(ctx, key, waypoints, mode, false)
	}

	span.SetAttributes(
		attribute.Float64("route.distance_km", result.TotalDistanceKm),
		attribute.Float64("route.time_min", result.TotalTimeMin),
	)
	s.store.Set(key, result, s.ttl)
	return result, nil
}

// estimate answers with the haversine fallback. Estimates reached through a
// provider failure are not cached, so the next call probes the provider again
// once it recovers.
func (s *ServiceImpl) estimate(ctx context.Context, key string, waypoints []types.Coordinate, mode types.TravelMode, cacheable bool) (*types.RouteResult, error) {
	result, err := s.estimator.Estimate(waypoints, mode)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.store.Set(key, result, s.ttl)
	}
	return result, nil
}

func (s *ServiceImpl) callProvider(ctx context.Context, waypoints []types.Coordinate, mode types.TravelMode) (*types.RouteResult, error) {
	profile, ok := profiles[mode]
	if !ok {
		profile = profiles[types.ModeDrive]
	}

	coords := make([][]float64, 0, len(waypoints))
	for _, w := range waypoints {
		coords = append(coords, []float64{w.Lng, w.Lat}) // provider wants lon,lat
	}
	body, err := json.Marshal(map[string]any{"coordinates": coords})
	if err != nil {
		return nil, fmt.Errorf("routing: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/geojson", s.endpoint, profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("routing: build request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing: %w: %v", types.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing: %w: status %d", types.ErrUpstream, resp.StatusCode)
	}

	var payload directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("routing: %w: %v", types.ErrMalformedResponse, err)
	}
	if len(payload.Features) == 0 {
		return nil, fmt.Errorf("routing: empty directions response: %w", types.ErrMalformedResponse)
	}

	feat := payload.Features[0]
	result := &types.RouteResult{
		TotalDistanceKm: feat.Properties.Summary.Distance / 1000,
		TotalTimeMin:    feat.Properties.Summary.Duration / 60,
	}
	for _, seg := range feat.Properties.Segments {
		result.Legs = append(result.Legs, types.RouteLeg{
			DistanceKm: seg.Distance / 1000,
			TimeMin:    seg.Duration / 60,
		})
	}
	for _, pair := range feat.Geometry.Coordinates {
		if len(pair) >= 2 {
			result.Geometry = append(result.Geometry, types.Coordinate{Lat: pair[1], Lng: pair[0]})
		}
	}
	return result, nil
}
