package ingest

import (
	"sync"
	"time"
)

// Dedup is a bounded, TTL-based deduplication table keyed by
// (eventType, accountID). Aggregator webhooks redeliver aggressively;
// duplicate events inside the TTL window are dropped before they trigger
// another regeneration. Regeneration is idempotent, so the table does not
// need to survive a restart.
type Dedup struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	seen     map[dedupKey]time.Time
	now      func() time.Time
}

type dedupKey struct {
	eventType string
	accountID string
}

// NewDedup creates a dedup table. A non-positive capacity falls back to 1024
// entries; a non-positive ttl falls back to five minutes.
func NewDedup(ttl time.Duration, capacity int) *Dedup {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 1024
	}
	return &Dedup{
		ttl:      ttl,
		capacity: capacity,
		seen:     make(map[dedupKey]time.Time),
		now:      time.Now,
	}
}

// Seen records the event and reports whether an identical event was already
// recorded inside the TTL window.
func (d *Dedup) Seen(eventType, accountID string) bool {
	key := dedupKey{eventType: eventType, accountID: accountID}
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiry, ok := d.seen[key]; ok && now.Before(expiry) {
		return true
	}

	if len(d.seen) >= d.capacity {
		d.evict(now)
	}

	d.seen[key] = now.Add(d.ttl)
	return false
}

// evict drops expired entries; if everything is still live, the entry
// closest to expiry goes so the table stays bounded.
func (d *Dedup) evict(now time.Time) {
	var oldestKey dedupKey
	var oldestExpiry time.Time
	first := true

	for k, expiry := range d.seen {
		if !now.Before(expiry) {
			delete(d.seen, k)
			continue
		}
		if first || expiry.Before(oldestExpiry) {
			oldestKey, oldestExpiry, first = k, expiry, false
		}
	}

	if len(d.seen) >= d.capacity && !first {
		delete(d.seen, oldestKey)
	}
}

// Len returns the number of tracked entries (tests).
func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
