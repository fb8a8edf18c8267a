package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the process-wide TTL cache shared by every gateway. It wraps
// go-cache, which handles expiry and lazy purging; there is no size-based
// eviction because payloads are small JSON-like values. Safe for concurrent
// use.
type Store struct {
	inner *gocache.Cache
}

// Stats is a point-in-time census of the cache. Expired counts entries past
// their TTL that the janitor has not yet purged; Get never returns them.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// New creates a store whose janitor purges expired entries every cleanup
// interval.
func New(cleanup time.Duration) *Store {
	// Default expiration is irrelevant: every Set carries an explicit TTL.
	return &Store{inner: gocache.New(gocache.NoExpiration, cleanup)}
}

// Set stores value under key for ttl. A non-positive ttl stores an entry that
// is already expired, so a later Get misses but Stats still counts it.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		s.inner.Set(key, value, time.Nanosecond)
		return
	}
	s.inner.Set(key, value, ttl)
}

// Get returns the live value under key. Entries past their TTL are never
// returned, purged or not.
func (s *Store) Get(key string) (any, bool) {
	return s.inner.Get(key)
}

// Clear drops every entry, expired or not.
func (s *Store) Clear() {
	s.inner.Flush()
}

// Stats reports total/active/expired entry counts. go-cache's ItemCount
// includes expired-but-unpurged entries while Items filters them, so the
// difference is the expired backlog.
func (s *Store) Stats() Stats {
	total := s.inner.ItemCount()
	active := len(s.inner.Items())
	if active > total {
		// janitor ran between the two reads
		total = active
	}
	return Stats{Total: total, Active: active, Expired: total - active}
}

// Get returns the value under key in c as a T. A value of another type counts
// as a miss rather than a panic, shielding callers from key collisions.
func Get[T any](c *Store, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
