// Package sqlite implements cache.Store on SQLite. The default DSN is a
// shared in-memory database that lives as long as the process.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/lectio-ai/lectio/pkg/models"
)

// DefaultDSN is a named shared in-memory database.
const DefaultDSN = "file:lectio?mode=memory&cache=shared"

// Cache is a plan cache backed by SQLite.
type Cache struct {
	db     *sql.DB
	clock  clockwork.Clock
	hits   atomic.Int64
	misses atomic.Int64
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS plan_cache (
	age_group TEXT NOT NULL,
	gender TEXT NOT NULL,
	plan BLOB NOT NULL,
	expires_at INTEGER NOT NULL,
	PRIMARY KEY (age_group, gender)
);
`

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used for expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// New opens the database at dsn and creates the cache table. An empty dsn uses DefaultDSN.
func New(dsn string, opts ...Option) (*Cache, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// One connection keeps the in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	c := &Cache{db: db, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the cached plan for key. Missing, expired, and unreadable rows are misses.
func (c *Cache) Get(ctx context.Context, key models.ReadingRequest) ([]models.ReadingEntry, bool) {
	var data []byte
	var expiresAt int64

	err := c.db.QueryRowContext(ctx,
		`SELECT plan, expires_at FROM plan_cache WHERE age_group = ? AND gender = ?`,
		key.AgeGroup, key.Gender,
	).Scan(&data, &expiresAt)
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}

	if c.clock.Now().UnixNano() >= expiresAt {
		c.misses.Add(1)
		return nil, false
	}

	var plan []models.ReadingEntry
	if err := json.Unmarshal(data, &plan); err != nil {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return plan, true
}

// Set stores plan under key, replacing any previous entry. Expired rows are
// deleted first.
func (c *Cache) Set(ctx context.Context, key models.ReadingRequest, plan []models.ReadingEntry, ttl time.Duration) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	now := c.clock.Now()
	if _, err := c.db.ExecContext(ctx, `DELETE FROM plan_cache WHERE expires_at <= ?`, now.UnixNano()); err != nil {
		return fmt.Errorf("cache evict: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO plan_cache (age_group, gender, plan, expires_at) VALUES (?, ?, ?, ?)`,
		key.AgeGroup, key.Gender, data, now.Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Stats returns cache performance metrics. Entries counts unexpired rows.
func (c *Cache) Stats(ctx context.Context) (models.CacheStats, error) {
	var count int64
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plan_cache WHERE expires_at > ?`, c.clock.Now().UnixNano(),
	).Scan(&count)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{
		Entries: count,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}, nil
}

// Clear removes cache entries. If expiredOnly is true, only expired entries are removed.
func (c *Cache) Clear(ctx context.Context, expiredOnly bool) (int64, error) {
	var res sql.Result
	var err error
	if expiredOnly {
		res, err = c.db.ExecContext(ctx, `DELETE FROM plan_cache WHERE expires_at <= ?`, c.clock.Now().UnixNano())
	} else {
		res, err = c.db.ExecContext(ctx, `DELETE FROM plan_cache`)
	}
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return n, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
