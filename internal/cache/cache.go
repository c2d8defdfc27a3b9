// Package cache stores fetched season logs so repeated diagnoses do not hit
// Baseball Savant. Entries live until their TTL runs out or they are
// invalidated explicitly.
package cache

import (
	"context"
	"errors"

	"github.com/pable/go-season-diag/internal/model"
)

// ErrMiss is returned by Get when no usable entry exists.
var ErrMiss = errors.New("cache miss")

// LogCache is a season-log cache keyed by player and season.
type LogCache interface {
	Get(ctx context.Context, playerID int, season string) (model.SeasonLog, error)
	Put(ctx context.Context, log model.SeasonLog) error
	// Invalidate drops an entry and reports whether one existed.
	Invalidate(ctx context.Context, playerID int, season string) (bool, error)
}
