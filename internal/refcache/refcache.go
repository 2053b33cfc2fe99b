// Package refcache holds the time-boxed in-process cache for the
// three reference collections: action types, time rules and users.
// Each collection has its own fixed, statically-typed slot; there is
// no string-keyed dispatch.  Reads and writes are lock-free: a slot
// is a single atomic pointer swap, so an Invalidate racing a
// Populate costs at most one extra fetch and can never leave a
// permanently stale value behind.
package refcache

import (
	"sync/atomic"
	"time"

	"github.com/openclock/attendance-service/internal/model"
)

// DefaultTTL bounds how long a populated slot is served without a
// fresh fetch when no explicit TTL is configured.
const DefaultTTL = 5 * time.Minute

// entry is one cached snapshot of a collection.
type entry[T any] struct {
	data      []T
	fetchedAt time.Time
}

// Slot caches one collection.  The zero value is unusable; slots are
// created by New.
type Slot[T any] struct {
	p   atomic.Pointer[entry[T]]
	ttl time.Duration
	now func() time.Time
}

// Get returns the cached collection when it is still fresh.  The
// second return value is false on a miss (never populated, expired,
// or invalidated); the caller is expected to fetch from storage and
// call Populate with the result.
func (s *Slot[T]) Get() ([]T, bool) {
	e := s.p.Load()
	if e == nil {
		return nil, false
	}
	if s.now().Sub(e.fetchedAt) >= s.ttl {
		return nil, false
	}
	return e.data, true
}

// Populate stores a freshly fetched collection, stamping it with the
// current time.
func (s *Slot[T]) Populate(data []T) {
	s.p.Store(&entry[T]{data: data, fetchedAt: s.now()})
}

// Invalidate unconditionally clears the slot so the next Get misses.
func (s *Slot[T]) Invalidate() {
	s.p.Store(nil)
}

// Cache bundles the three reference collection slots.  Admin
// mutations must call the matching Invalidate before returning so a
// read that follows a write is never served the pre-write snapshot.
type Cache struct {
	ActionTypes *Slot[model.ActionType]
	TimeRules   *Slot[model.TimeRule]
	Users       *Slot[model.User]
}

// New builds a cache whose slots expire ttl after each Populate.  A
// non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	return newWithClock(ttl, time.Now)
}

// newWithClock lets tests drive expiry with a fake clock.
func newWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ActionTypes: &Slot[model.ActionType]{ttl: ttl, now: now},
		TimeRules:   &Slot[model.TimeRule]{ttl: ttl, now: now},
		Users:       &Slot[model.User]{ttl: ttl, now: now},
	}
}
