package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lectio-ai/lectio/pkg/models"
)

type memoryEntry struct {
	plan      []models.ReadingEntry
	expiresAt time.Time
}

// Memory is a mutex-guarded in-process Store. Expired entries are dropped when read.
type Memory struct {
	mu      sync.RWMutex
	entries map[models.ReadingRequest]memoryEntry
	clock   clockwork.Clock
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewMemory creates an empty Memory store. A nil clock uses wall time.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{
		entries: make(map[models.ReadingRequest]memoryEntry),
		clock:   clock,
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key models.ReadingRequest) ([]models.ReadingEntry, bool) {
	now := m.clock.Now()

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.misses.Add(1)
		return nil, false
	}
	if !now.Before(entry.expiresAt) {
		m.mu.Lock()
		// Another writer may have refreshed the entry meanwhile.
		if cur, ok := m.entries[key]; ok && !now.Before(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		m.misses.Add(1)
		return nil, false
	}

	m.hits.Add(1)
	return models.ClonePlan(entry.plan), true
}

// Set implements Store. Every write also drops all expired entries, so keys
// that are never read again do not accumulate.
func (m *Memory) Set(_ context.Context, key models.ReadingRequest, plan []models.ReadingEntry, ttl time.Duration) error {
	now := m.clock.Now()
	entry := memoryEntry{
		plan:      models.ClonePlan(plan),
		expiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	m.evictExpired(now)
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Stats implements Store. Entries counts live entries only.
func (m *Memory) Stats(_ context.Context) (models.CacheStats, error) {
	now := m.clock.Now()

	m.mu.RLock()
	var n int64
	for _, e := range m.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	m.mu.RUnlock()

	return models.CacheStats{
		Entries: n,
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}, nil
}

// evictExpired must be called with mu held for writing.
func (m *Memory) evictExpired(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

