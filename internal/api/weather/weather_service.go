package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// forecastWindowHours is how far past the current hour the snapshot looks.
const forecastWindowHours = 12

// Classification thresholds on the peak precipitation probability.
const (
	rainyThreshold  = 60
	cloudyThreshold = 30
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service produces a weather snapshot for a coordinate. Weather is advisory:
// Snapshot never fails, it substitutes a clear-weather default instead.
type Service interface {
	Snapshot(ctx context.Context, at types.Coordinate) *types.WeatherSnapshot
}

// ServiceImpl wraps the Open-Meteo hourly forecast endpoint.
type ServiceImpl struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
	store    *cache.Store
	ttl      time.Duration
	rec      *api.Recorder
	now      func() time.Time
}

func NewService(endpoint string, timeout, ttl time.Duration, store *cache.Store, rec *api.Recorder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		store:    store,
		ttl:      ttl,
		rec:      rec,
		now:      time.Now,
	}
}

type forecastResponse struct {
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		PrecipProb  []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

// Snapshot returns the cached or freshly derived snapshot for the coordinate.
// Any failure yields the fixed clear-weather default; planning must not block
// on weather.
func (s *ServiceImpl) Snapshot(ctx context.Context, at types.Coordinate) *types.WeatherSnapshot {
	ctx, span := otel.Tracer("WeatherService").Start(ctx, "Snapshot", trace.WithAttributes(
		attribute.Float64("weather.lat", at.Lat),
		attribute.Float64("weather.lng", at.Lng),
	))
	defer span.End()

	key := cache.WeatherKey(at)
	if cached, ok := cache.Get[*types.WeatherSnapshot](s.store, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.rec.Cache(ctx, "weather", true)
		return cached
	}
	s.rec.Cache(ctx, "weather", false)

	start := time.Now()
	snapshot, err := s.fetch(ctx, at)
	s.rec.Upstream(ctx, "open_meteo", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Weather lookup failed, using clear default", slog.Any("error", err))
		return types.DefaultWeather()
	}

	span.SetAttributes(
		attribute.String("weather.summary", snapshot.Summary),
		attribute.Float64("weather.max_precip", snapshot.MaxPrecipProb),
	)
	s.store.Set(key, snapshot, s.ttl)
	return snapshot
}

func (s *ServiceImpl) fetch(ctx context.Context, at types.Coordinate) (*types.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lng, 'f', 4, 64))
	q.Set("hourly", "temperature_2m,precipitation_probability")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("forecast_days", "2")
	q.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: %w: %v", types.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: %w: status %d", types.ErrUpstream, resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weather: %w: %v", types.ErrMalformedResponse, err)
	}
	return s.derive(payload)
}

// derive condenses the hourly arrays into the snapshot: conditions at the
// current hour, plus average and peak over the following window.
func (s *ServiceImpl) derive(payload forecastResponse) (*types.WeatherSnapshot, error) {
	hourly := payload.Hourly
	n := len(hourly.Time)
	if n == 0 || len(hourly.Temperature) != n || len(hourly.PrecipProb) != n {
		return nil, fmt.Errorf("weather: ragged hourly arrays: %w", types.ErrMalformedResponse)
	}

	nowHour := s.now().UTC().Truncate(time.Hour)
	current := -1
	for i, stamp := range hourly.Time {
		t, err := time.Parse("2006-01-02T15:04", stamp)
		if err != nil {
			return nil, fmt.Errorf("weather: bad timestamp %q: %w", stamp, types.ErrMalformedResponse)
		}
		if !t.Before(nowHour) {
			current = i
			break
		}
	}
	if current == -1 {
		return nil, fmt.Errorf("weather: forecast entirely in the past: %w", types.ErrMalformedResponse)
	}

	end := current + forecastWindowHours
	if end > n {
		end = n
	}

	var sumTemp, sumPrecip, maxPrecip float64
	for i := current; i < end; i++ {
		sumTemp += hourly.Temperature[i]
		sumPrecip += hourly.PrecipProb[i]
		if hourly.PrecipProb[i] > maxPrecip {
			maxPrecip = hourly.PrecipProb[i]
		}
	}
	window := float64(end - current)

	snapshot := &types.WeatherSnapshot{
		Summary:           Classify(maxPrecip),
		TempF:             hourly.Temperature[current],
		AvgTempF:          sumTemp / window,
		PrecipProbability: hourly.PrecipProb[current],
		AvgPrecipProb:     sumPrecip / window,
		MaxPrecipProb:     maxPrecip,
		HasPoorWeather:    maxPrecip > rainyThreshold,
	}
	return snapshot, nil
}

// Classify buckets a peak precipitation probability into a summary.
func Classify(maxPrecipProb float64) string {
	switch {
	case maxPrecipProb > rainyThreshold:
		return types.WeatherRainy
	case maxPrecipProb > cloudyThreshold:
		return types.WeatherPartlyCloudy
	default:
		return types.WeatherClear
	}
}
