// Package cache provides the in-process, TTL-expiring cache that sits in
// front of the per-post view count aggregation. It is a pure performance
// layer: entries are created on first read, never invalidated by writes, and
// only expire by TTL, so counts may lag reality by up to one TTL.
package cache

import (
	"sync"
	"time"
)

// Counts is a keyed TTL cache of aggregated view counts per post.
//
// Entries expire a fixed TTL after population. Callers pass "now" explicitly
// so freshness is decided by the caller's clock, which keeps expiry testable
// without sleeping. Safe for concurrent use.
type Counts struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uint]countEntry
}

type countEntry struct {
	value     int64
	expiresAt time.Time
}

// NewCounts returns an empty cache whose entries live for ttl after Put.
// A non-positive ttl disables caching: Get never hits.
func NewCounts(ttl time.Duration) *Counts {
	return &Counts{
		ttl:     ttl,
		entries: make(map[uint]countEntry),
	}
}

// Get returns the cached count for postID if an entry exists and has not
// expired by now. An entry is considered expired at exactly its deadline.
func (c *Counts) Get(postID uint, now time.Time) (int64, bool) {
	c.mu.RLock()
	e, ok := c.entries[postID]
	c.mu.RUnlock()
	if !ok || !now.Before(e.expiresAt) {
		return 0, false
	}
	return e.value, true
}

// Put stores value for postID with a fresh deadline of now+TTL, replacing
// any previous entry. With a non-positive TTL the value is dropped.
func (c *Counts) Put(postID uint, value int64, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[postID] = countEntry{value: value, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the entry for postID, if any. The engine never calls
// this on writes (staleness up to TTL is the contract); it exists for
// operational use and tests.
func (c *Counts) Invalidate(postID uint) {
	c.mu.Lock()
	delete(c.entries, postID)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Counts) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
