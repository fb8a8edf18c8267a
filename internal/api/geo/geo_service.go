package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service resolves free-text addresses to coordinates.
type Service interface {
	Geocode(ctx context.Context, address string) (types.Coordinate, error)
}

// ServiceImpl wraps the Geoapify forward-geocoding endpoint with caching.
type ServiceImpl struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
	apiKey   string
	store    *cache.Store
	ttl      time.Duration
	rec      *api.Recorder
}

func NewService(endpoint, apiKey string, timeout, ttl time.Duration, store *cache.Store, rec *api.Recorder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		apiKey:   apiKey,
		store:    store,
		ttl:      ttl,
		rec:      rec,
	}
}

// geocodeResponse is the subset of the Geoapify GeoJSON envelope we read.
// Coordinates normally live in properties, but older payloads only carry the
// geometry member, so both are kept.
type geocodeResponse struct {
	Features []struct {
		Properties struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves an address. A missing credential or an empty match set is
// fatal for the caller; failures are never cached.
func (s *ServiceImpl) Geocode(ctx context.Context, address string) (types.Coordinate, error) {
	ctx, span := otel.Tracer("GeoService").Start(ctx, "Geocode", trace.WithAttributes(
		attribute.String("geocode.address", address),
	))
	defer span.End()

	key := cache.GeocodeKey(address)
	if coord, ok := cache.Get[types.Coordinate](s.store, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.rec.Cache(ctx, "geocode", true)
		return coord, nil
	}
	s.rec.Cache(ctx, "geocode", false)

	if s.apiKey == "" {
		span.SetStatus(codes.Error, "missing credential")
		return types.Coordinate{}, fmt.Errorf("geocoding: %w", types.ErrMissingCredential)
	}

	q := url.Values{}
	q.Set("text", address)
	q.Set("limit", "1")
	q.Set("apiKey", s.apiKey)

	start := time.Now()
	coord, err := s.call(ctx, q)
	s.rec.Upstream(ctx, "geoapify_geocode", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode failed")
		s.logger.WarnContext(ctx, "Geocoding failed", slog.String("address", address), slog.Any("error", err))
		return types.Coordinate{}, err
	}

	span.SetAttributes(
		attribute.Float64("geocode.lat", coord.Lat),
		attribute.Float64("geocode.lng", coord.Lng),
	)
	s.store.Set(key, coord, s.ttl)
	return coord, nil
}

func (s *ServiceImpl) call(ctx context.Context, q url.Values) (types.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("geocoding: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return types.Coordinate{}, fmt.Errorf("geocoding: %w: %v", types.ErrUpstreamTimeout, err)
		}
		return types.Coordinate{}, fmt.Errorf("geocoding: %w: %v", types.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinate{}, fmt.Errorf("geocoding: %w: status %d", types.ErrUpstream, resp.StatusCode)
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.Coordinate{}, fmt.Errorf("geocoding: %w: %v", types.ErrMalformedResponse, err)
	}
	if len(payload.Features) == 0 {
		return types.Coordinate{}, fmt.Errorf("geocoding: no match for address: %w", types.ErrNotFound)
	}

	feat := payload.Features[0]
	var coord types.Coordinate
	switch {
	case feat.Properties.Lat != nil && feat.Properties.Lon != nil:
		coord = types.Coordinate{Lat: *feat.Properties.Lat, Lng: *feat.Properties.Lon}
	case len(feat.Geometry.Coordinates) >= 2:
		// GeoJSON order is lon,lat
		coord = types.Coordinate{Lat: feat.Geometry.Coordinates[1], Lng: feat.Geometry.Coordinates[0]}
	default:
		return types.Coordinate{}, fmt.Errorf("geocoding: feature without coordinates: %w", types.ErrMalformedResponse)
	}
	if !coord.Valid() {
		return types.Coordinate{}, fmt.Errorf("geocoding: coordinate out of range: %w", types.ErrMalformedResponse)
	}
	return coord, nil
}
