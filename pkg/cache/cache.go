// Package cache stores generated reading plans per audience with time-based expiry.
package cache

import (
	"context"
	"time"

	"github.com/lectio-ai/lectio/pkg/models"
)

// DefaultTTL is how long a generated plan stays fresh.
const DefaultTTL = 24 * time.Hour

//go:generate mockgen -source=cache.go -destination=mocks/mock_store.go -package=mocks

// Store is a concurrency-safe plan cache. Keys match only when both the age
// group and the gender are byte-for-byte equal. Concurrent Set calls on the
// same key resolve last-writer-wins.
type Store interface {
	// Get returns a copy of the cached plan, or false when absent or expired.
	Get(ctx context.Context, key models.ReadingRequest) ([]models.ReadingEntry, bool)
	// Set stores a copy of plan under key until ttl elapses.
	Set(ctx context.Context, key models.ReadingRequest, plan []models.ReadingEntry, ttl time.Duration) error
	// Stats reports entry and hit/miss counts.
	Stats(ctx context.Context) (models.CacheStats, error)
}
