package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

func TestStore_SetAndGet(t *testing.T) {
	store := New(time.Minute)

	store.Set("k", "v", time.Minute)

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestStore_GetMissingKey(t *testing.T) {
	store := New(time.Minute)

	_, ok := store.Get("absent")
	assert.False(t, ok)
}

func TestStore_ZeroTTLEntryIsNotReturned(t *testing.T) {
	store := New(time.Hour) // janitor will not run during the test

	store.Set("k", "v", 0)

	_, ok := store.Get("k")
	assert.False(t, ok, "entry stored with zero TTL must never be returned")

	stats := store.Stats()
	assert.Equal(t, 1, stats.Total, "expired entry still counts until purged")
	assert.Equal(t, 0, stats.Active)
	assert.Equal(t, 1, stats.Expired)
}

func TestStore_NegativeTTLEntryIsNotReturned(t *testing.T) {
	store := New(time.Hour)

	store.Set("k", "v", -time.Minute)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestStore_ExpiredEntryIsNotReturned(t *testing.T) {
	store := New(time.Hour)

	store.Set("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestStore_StatsIdentity(t *testing.T) {
	store := New(time.Hour)

	store.Set("live-1", 1, time.Minute)
	store.Set("live-2", 2, time.Minute)
	store.Set("dead", 3, 0)

	stats := store.Stats()
	assert.Equal(t, stats.Total, stats.Active+stats.Expired)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Expired)
}

func TestStore_Clear(t *testing.T) {
	store := New(time.Hour)

	store.Set("a", 1, time.Minute)
	store.Set("b", 2, 0)
	store.Clear()

	stats := store.Stats()
	assert.Equal(t, Stats{}, stats)

	_, ok := store.Get("a")
	assert.False(t, ok)
}

func TestStore_OverwriteResetsValue(t *testing.T) {
	store := New(time.Hour)

	store.Set("k", "old", time.Minute)
	store.Set("k", "new", time.Minute)

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)

	assert.Equal(t, 1, store.Stats().Total)
}

func TestGet_TypedHitAndMiss(t *testing.T) {
	store := New(time.Hour)

	store.Set("coord", types.Coordinate{Lat: 42.36, Lng: -71.06}, time.Minute)

	coord, ok := Get[types.Coordinate](store, "coord")
	require.True(t, ok)
	assert.InDelta(t, 42.36, coord.Lat, 1e-9)

	// Same key read as the wrong type is a miss, not a panic.
	_, ok = Get[string](store, "coord")
	assert.False(t, ok)

	_, ok = Get[types.Coordinate](store, "absent")
	assert.False(t, ok)
}
