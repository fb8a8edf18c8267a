package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/retry"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

const (
	metersPerMile   = 1609.344
	fallbackRadiusM = 30000 // when max distance is missing or zero
	maxCategories   = 5
	totalResultCap  = 20
	minPerCategory  = 6
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service finds candidate activities around a coordinate.
type Service interface {
	FindNearby(ctx context.Context, center types.Coordinate, radiusMi float64, interests []string) ([]types.Activity, error)
}

// ServiceImpl wraps the Geoapify Places endpoint. One sub-query goes out per
// mapped category; a category that exhausts its retries is skipped rather
// than failing the call.
type ServiceImpl struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
	apiKey   string
	mapper   *CategoryMapper
	store    *cache.Store
	ttl      time.Duration
	policy   retry.Policy
	rec      *api.Recorder
}

func NewService(endpoint, apiKey string, timeout, ttl time.Duration, mapper *CategoryMapper, store *cache.Store, policy retry.Policy, rec *api.Recorder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		apiKey:   apiKey,
		mapper:   mapper,
		store:    store,
		ttl:      ttl,
		policy:   policy,
		rec:      rec,
	}
}

// placesResponse is the subset of the Geoapify Places GeoJSON envelope we
// read. Category entries may be plain strings or objects depending on payload
// vintage, hence json.RawMessage.
type placesResponse struct {
	Features []struct {
		Properties struct {
			PlaceID      string            `json:"place_id"`
			Name         string            `json:"name"`
			Formatted    string            `json:"formatted"`
			Street       string            `json:"street"`
			City         string            `json:"city"`
			Lat          float64           `json:"lat"`
			Lon          float64           `json:"lon"`
			Categories   []json.RawMessage `json:"categories"`
			OpeningHours string            `json:"opening_hours"`
			Fee          string            `json:"fee"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// FindNearby maps interests to categories and fans out one capped sub-query
// per category, merging results by first-seen provider id.
func (s *ServiceImpl) FindNearby(ctx context.Context, center types.Coordinate, radiusMi float64, interests []string) ([]types.Activity, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "FindNearby", trace.WithAttributes(
		attribute.Float64("places.radius_mi", radiusMi),
		attribute.Int("places.interest_count", len(interests)),
	))
	defer span.End()

	radiusM := int(radiusMi * metersPerMile)
	if radiusM <= 0 {
		radiusM = fallbackRadiusM
	}

	categories := s.mapper.Map(interests)
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}
	span.SetAttributes(attribute.StringSlice("places.categories", categories))

	key := cache.PlacesKey(center, radiusM, categories)
	if cached, ok := cache.Get[[]types.Activity](s.store, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.rec.Cache(ctx, "places", true)
		return cached, nil
	}
	s.rec.Cache(ctx, "places", false)

	if s.apiKey == "" {
		span.SetStatus(codes.Error, "missing credential")
		return nil, fmt.Errorf("places: %w", types.ErrMissingCredential)
	}

	perCategory := totalResultCap / len(categories)
	if perCategory < minPerCategory {
		perCategory = minPerCategory
	}

	var merged []types.Activity
	seen := make(map[string]bool)
	succeeded := 0
	for _, category := range categories {
		var batch []types.Activity
		err := s.policy.Do(ctx, func() error {
			var callErr error
			start := time.Now()
			batch, callErr = s.queryCategory(ctx, center, radiusM, category, perCategory)
			s.rec.Upstream(ctx, "geoapify_places", time.Since(start), callErr)
			return callErr
		})
		if err != nil {
			// partial degradation: drop the category, keep the call alive
			s.logger.WarnContext(ctx, "Skipping category after exhausted retries",
				slog.String("category", category), slog.Any("error", err))
			span.AddEvent("category skipped", trace.WithAttributes(attribute.String("category", category)))
			continue
		}
		succeeded++
		for _, activity := range batch {
			if seen[activity.ID] {
				continue
			}
			seen[activity.ID] = true
			merged = append(merged, activity)
		}
	}

	span.SetAttributes(attribute.Int("places.count", len(merged)))
	if succeeded == 0 {
		// total outage: an empty answer here is provider trouble, not an
		// empty area, so it must not be pinned in the cache
		span.AddEvent("all categories failed, result not cached")
		s.logger.WarnContext(ctx, "All place categories failed, returning empty result uncached")
		return merged, nil
	}
	s.store.Set(key, merged, s.ttl)
	return merged, nil
}

func (s *ServiceImpl) queryCategory(ctx context.Context, center types.Coordinate, radiusM int, category string, limit int) ([]types.Activity, error) {
	q := url.Values{}
	q.Set("categories", category)
	q.Set("filter", fmt.Sprintf("circle:%g,%g,%d", center.Lng, center.Lat, radiusM))
	q.Set("bias", fmt.Sprintf("proximity:%g,%g", center.Lng, center.Lat))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("apiKey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("places: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("places: %w: %v", types.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("places: %w: %v", types.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places: %w: status %d", types.ErrUpstream, resp.StatusCode)
	}

	var payload placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("places: %w: %v", types.ErrMalformedResponse, err)
	}

	activities := make([]types.Activity, 0, len(payload.Features))
	for _, feat := range payload.Features {
		p := feat.Properties
		coord := types.Coordinate{Lat: p.Lat, Lng: p.Lon}
		if coord.Lat == 0 && coord.Lng == 0 && len(feat.Geometry.Coordinates) >= 2 {
			coord = types.Coordinate{Lat: feat.Geometry.Coordinates[1], Lng: feat.Geometry.Coordinates[0]}
		}

		id := p.PlaceID
		if id == "" {
			id = fmt.Sprintf("%g_%g", coord.Lat, coord.Lng)
		}
		name := p.Name
		if name == "" {
			name = p.Formatted
		}
		if name == "" {
			name = "Unknown"
		}
		hours := p.OpeningHours
		if hours == "" {
			hours = "N/A"
		}
		cost := p.Fee
		if cost == "" {
			cost = "Unknown"
		}
		label := categoryLabel(p.Categories)
		if label == "" {
			label = category
		}

		activities = append(activities, types.Activity{
			ID:            id,
			Name:          name,
			Coordinate:    coord,
			CategoryLabel: label,
			Cost:          cost,
			Hours:         hours,
			Street:        p.Street,
			City:          p.City,
			Formatted:     p.Formatted,
		})
	}
	return activities, nil
}

// categoryLabel flattens the provider's category list, which mixes plain
// strings with {name, name_en, key} objects.
func categoryLabel(raw []json.RawMessage) string {
	var names []string
	for _, entry := range raw {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			names = append(names, s)
			continue
		}
		var obj struct {
			Name   string `json:"name"`
			NameEn string `json:"name_en"`
			Key    string `json:"key"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil {
			switch {
			case obj.Name != "":
				names = append(names, obj.Name)
			case obj.NameEn != "":
				names = append(names, obj.NameEn)
			case obj.Key != "":
				names = append(names, obj.Key)
			}
		}
	}
	return strings.Join(names, ", ")
}
