package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/retry"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

var boston = types.Coordinate{Lat: 42.3601, Lng: -71.0589}

func newTestService(endpoint, apiKey string) *ServiceImpl {
	store := cache.New(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := retry.NewPolicy(2, time.Millisecond, 2)
	return NewService(endpoint, apiKey, 2*time.Second, time.Hour, NewCategoryMapper(), store, policy, nil, logger)
}

func placeFeature(id, name string, lat, lng float64) string {
	return fmt.Sprintf(`{"properties":{"place_id":%q,"name":%q,"formatted":"%s, Boston","street":"Main St","city":"Boston","lat":%f,"lon":%f,"categories":["leisure.park"]},"geometry":{"coordinates":[%f,%f]}}`,
		id, name, name, lat, lng, lng, lat)
}

func TestFindNearby_MapsFeaturesToActivities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "leisure.park", r.URL.Query().Get("categories"))
		assert.Contains(t, r.URL.Query().Get("filter"), "circle:")
		assert.Equal(t, "key", r.URL.Query().Get("apiKey"))
		fmt.Fprintf(w, `{"features":[%s]}`, placeFeature("p1", "Sunny Park", 42.37, -71.05))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")
	activities, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	require.NoError(t, err)

	require.Len(t, activities, 1)
	a := activities[0]
	assert.Equal(t, "p1", a.ID)
	assert.Equal(t, "Sunny Park", a.Name)
	assert.Equal(t, "leisure.park", a.CategoryLabel)
	assert.Equal(t, "Boston", a.City)
	assert.InDelta(t, 42.37, a.Coordinate.Lat, 1e-9)
}

func TestFindNearby_FillsMissingFeatureFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"features":[{"properties":{"lat":42.37,"lon":-71.05},"geometry":{"coordinates":[-71.05,42.37]}}]}`)
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")
	activities, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	require.NoError(t, err)

	require.Len(t, activities, 1)
	a := activities[0]
	assert.Equal(t, "42.37_-71.05", a.ID)
	assert.Equal(t, "Unknown", a.Name)
	assert.Equal(t, "N/A", a.Hours)
	assert.Equal(t, "Unknown", a.Cost)
	assert.Equal(t, "leisure.park", a.CategoryLabel, "label falls back to the queried category")
}

func TestFindNearby_DeduplicatesAcrossCategories(t *testing.T) {
	// "nature" maps to two categories; the same place comes back from both.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"features":[%s]}`, placeFeature("dup", "Forest Park", 42.37, -71.05))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")
	activities, err := svc.FindNearby(context.Background(), boston, 5, []string{"nature"})
	require.NoError(t, err)

	assert.Len(t, activities, 1, "duplicate provider ids must merge to one activity")
}

func TestFindNearby_FailedCategoryIsSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("categories") == "natural.forest" {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `{"features":[%s]}`, placeFeature("p1", "Sunny Park", 42.37, -71.05))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")
	activities, err := svc.FindNearby(context.Background(), boston, 5, []string{"nature"})
	require.NoError(t, err, "one broken category must not fail the whole search")

	require.Len(t, activities, 1)
	assert.Equal(t, "Sunny Park", activities[0].Name)
}

func TestFindNearby_TotalOutageIsNotCached(t *testing.T) {
	var healthy atomic.Bool
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !healthy.Load() {
			http.Error(w, "outage", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"features":[%s]}`, placeFeature("p1", "Sunny Park", 42.37, -71.05))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")

	activities, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	require.NoError(t, err, "a full outage degrades to an empty result, not an error")
	assert.Empty(t, activities)

	// provider recovers; the empty outage answer must not have been cached
	healthy.Store(true)
	outageCalls := calls.Load()

	activities, err = svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Sunny Park", activities[0].Name)
	assert.Greater(t, calls.Load(), outageCalls, "second call must reach the provider again")
}

func TestFindNearby_EmptyAreaIsCached(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `{"features":[]}`)
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")

	for i := 0; i < 2; i++ {
		activities, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
		require.NoError(t, err)
		assert.Empty(t, activities)
	}
	assert.Equal(t, int64(1), calls.Load(), "a genuinely empty area is a real, cacheable answer")
}

func TestFindNearby_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "hiccup", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"features":[%s]}`, placeFeature("p1", "Sunny Park", 42.37, -71.05))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")
	activities, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	require.NoError(t, err)

	assert.Len(t, activities, 1)
	assert.Equal(t, int64(2), calls.Load())
}

func TestFindNearby_MissingCredential(t *testing.T) {
	svc := newTestService("http://unused", "")

	_, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	assert.ErrorIs(t, err, types.ErrMissingCredential)
}

func TestFindNearby_SecondCallServedFromCache(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"features":[%s]}`, placeFeature("p1", "Sunny Park", 42.37, -71.05))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")

	first, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	require.NoError(t, err)
	second, err := svc.FindNearby(context.Background(), boston, 5, []string{"park"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestFindNearby_ZeroRadiusUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("filter"), fmt.Sprintf("%d", fallbackRadiusM))
		io.WriteString(w, `{"features":[]}`)
	}))
	defer server.Close()

	svc := newTestService(server.URL, "key")
	_, err := svc.FindNearby(context.Background(), boston, 0, []string{"park"})
	require.NoError(t, err)
}

func TestCategoryLabel_MixedEntryShapes(t *testing.T) {
	label := categoryLabel([]json.RawMessage{
		json.RawMessage(`"leisure.park"`),
		json.RawMessage(`{"name":"Stadtpark","name_en":"City Park","key":"leisure.park"}`),
		json.RawMessage(`{"name_en":"Garden"}`),
	})
	assert.Equal(t, "leisure.park, Stadtpark, Garden", label)
}
