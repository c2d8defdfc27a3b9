package cache

import (
	"context"
	"errors"
	"time"

	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/internal/storage"
)

// SQLiteLogCache keeps season logs in the local storage database.
type SQLiteLogCache struct {
	db  *storage.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteLogCache wraps db. A zero ttl never expires entries.
func NewSQLiteLogCache(db *storage.DB, ttl time.Duration) *SQLiteLogCache {
	return &SQLiteLogCache{db: db, ttl: ttl, now: time.Now}
}

// Get implements LogCache.
func (c *SQLiteLogCache) Get(ctx context.Context, playerID int, season string) (model.SeasonLog, error) {
	log, fetched, err := c.db.LoadSeasonLog(ctx, playerID, season)
	if errors.Is(err, storage.ErrNotFound) {
		return model.SeasonLog{}, ErrMiss
	}
	if err != nil {
		return model.SeasonLog{}, err
	}
	if c.ttl > 0 && c.now().Sub(fetched) > c.ttl {
		return model.SeasonLog{}, ErrMiss
	}
	return log, nil
}

// Put implements LogCache.
func (c *SQLiteLogCache) Put(ctx context.Context, log model.SeasonLog) error {
	return c.db.SaveSeasonLog(ctx, log)
}

// Invalidate implements LogCache.
func (c *SQLiteLogCache) Invalidate(ctx context.Context, playerID int, season string) (bool, error) {
	return c.db.InvalidateSeasonLog(ctx, playerID, season)
}
