package ingest

import (
	"testing"
	"time"
)

func TestDedupSeen(t *testing.T) {
	now := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)
	d := NewDedup(5*time.Minute, 16)
	d.now = func() time.Time { return now }

	if d.Seen("SYNC_UPDATES_AVAILABLE", "acc-1") {
		t.Error("first sighting must not be a duplicate")
	}
	if !d.Seen("SYNC_UPDATES_AVAILABLE", "acc-1") {
		t.Error("repeat inside the TTL window is a duplicate")
	}

	// Same account, different event type: distinct key.
	if d.Seen("DEFAULT_UPDATE", "acc-1") {
		t.Error("different event type must not collide")
	}
	// Same event type, different account: distinct key.
	if d.Seen("SYNC_UPDATES_AVAILABLE", "acc-2") {
		t.Error("different account must not collide")
	}
}

func TestDedupTTLExpiry(t *testing.T) {
	now := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)
	d := NewDedup(5*time.Minute, 16)
	d.now = func() time.Time { return now }

	d.Seen("SYNC_UPDATES_AVAILABLE", "acc-1")

	now = now.Add(4 * time.Minute)
	if !d.Seen("SYNC_UPDATES_AVAILABLE", "acc-1") {
		t.Error("still inside the TTL window")
	}

	now = now.Add(2 * time.Minute)
	if d.Seen("SYNC_UPDATES_AVAILABLE", "acc-1") {
		t.Error("expired entry must be treated as new")
	}
}

func TestDedupCapacityBound(t *testing.T) {
	now := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)
	d := NewDedup(time.Hour, 3)
	d.now = func() time.Time { return now }

	// All entries stay live; the table must still stay bounded.
	d.Seen("SYNC", "acc-1")
	now = now.Add(time.Second)
	d.Seen("SYNC", "acc-2")
	now = now.Add(time.Second)
	d.Seen("SYNC", "acc-3")
	now = now.Add(time.Second)
	d.Seen("SYNC", "acc-4")

	if got := d.Len(); got > 3 {
		t.Errorf("table size = %d, want at most the capacity of 3", got)
	}

	// acc-1 was closest to expiry and should have been evicted.
	if d.Seen("SYNC", "acc-1") {
		t.Error("evicted entry must be treated as new")
	}
	if !d.Seen("SYNC", "acc-4") {
		t.Error("most recent entry should still be tracked")
	}
}

func TestDedupEvictsExpiredFirst(t *testing.T) {
	now := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)
	d := NewDedup(time.Minute, 2)
	d.now = func() time.Time { return now }

	d.Seen("SYNC", "acc-1")
	d.Seen("SYNC", "acc-2")

	// Both expire; the next insert sweeps them instead of evicting live rows.
	now = now.Add(2 * time.Minute)
	d.Seen("SYNC", "acc-3")

	if got := d.Len(); got != 1 {
		t.Errorf("table size = %d, want 1 after the expired sweep", got)
	}
}

func TestNewDedupDefaults(t *testing.T) {
	d := NewDedup(0, -1)
	if d.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want the 5m default", d.ttl)
	}
	if d.capacity != 1024 {
		t.Errorf("capacity = %d, want the 1024 default", d.capacity)
	}
}
