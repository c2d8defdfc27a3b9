// Package season loads season logs from the cache or Baseball Savant and
// runs diagnoses over them. It is the only place where I/O meets the engine.
package season

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pable/go-season-diag/internal/cache"
	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/internal/statcast"
	"github.com/pable/go-season-diag/pkg/logger"
	"github.com/pable/go-season-diag/pkg/metrics"
)

// Fetcher downloads a batter's pitches for a date range.
type Fetcher interface {
	FetchBatter(ctx context.Context, playerID int, start, end time.Time) ([]statcast.Row, error)
}

// Request identifies the season to load. Zero Start/End use the full season
// range. Refresh skips the cache lookup but still stores the fresh log.
type Request struct {
	PlayerID   int
	PlayerName string
	Season     string
	Start      time.Time
	End        time.Time
	Refresh    bool
}

// Loader resolves a Request to a SeasonLog.
type Loader struct {
	cache   cache.LogCache
	fetcher Fetcher
	metrics *metrics.Manager
	log     logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache sets the cache consulted before fetching.
func WithCache(c cache.LogCache) Option {
	return func(l *Loader) { l.cache = c }
}

// WithMetrics sets the metrics manager. Defaults to the process-wide one.
func WithMetrics(m *metrics.Manager) Option {
	return func(l *Loader) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.log = lg
		}
	}
}

// NewLoader builds a Loader around a fetcher.
func NewLoader(f Fetcher, opts ...Option) *Loader {
	l := &Loader{fetcher: f, metrics: metrics.Default(), log: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ErrRangeOutsideSeason means a custom start or end date falls outside the
// requested season year.
var ErrRangeOutsideSeason = errors.New("date range outside the season year")

// ResolveRange returns the dates to fetch for req. ranged reports whether
// they differ from the full season range; ranged logs are partial and never
// read from or written to the cache.
func ResolveRange(req Request) (start, end time.Time, ranged bool, err error) {
	s, e, err := statcast.SeasonRange(req.Season)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	start, end = s, e
	if !req.Start.IsZero() {
		start = req.Start
	}
	if !req.End.IsZero() {
		end = req.End
	}
	if start.Year() != s.Year() || end.Year() != s.Year() {
		return time.Time{}, time.Time{}, false, fmt.Errorf("%w: %s to %s is not within %s",
			ErrRangeOutsideSeason, start.Format("2006-01-02"), end.Format("2006-01-02"), req.Season)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("end date %s is before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return start, end, !start.Equal(s) || !end.Equal(e), nil
}

// Load returns the season log for req, from the cache when possible.
func (l *Loader) Load(ctx context.Context, req Request) (model.SeasonLog, error) {
	start, end, ranged, err := ResolveRange(req)
	if err != nil {
		return model.SeasonLog{}, err
	}
	useCache := l.cache != nil && !ranged

	if useCache && !req.Refresh {
		log, err := l.cache.Get(ctx, req.PlayerID, req.Season)
		switch {
		case err == nil:
			l.log.Debug(ctx, "season log served from cache",
				logger.Int("player_id", req.PlayerID), logger.String("season", req.Season))
			l.metrics.RecordSeasonLoad(metrics.SourceCache)
			return withName(log, req.PlayerName), nil
		case !errors.Is(err, cache.ErrMiss):
			l.log.Warn(ctx, "cache lookup failed, fetching", logger.Error(err))
		}
	}

	if l.fetcher == nil {
		return model.SeasonLog{}, fmt.Errorf("season %s for player %d is not cached and no fetcher is configured", req.Season, req.PlayerID)
	}

	began := time.Now()
	rows, err := l.fetcher.FetchBatter(ctx, req.PlayerID, start, end)
	if err != nil {
		return model.SeasonLog{}, fmt.Errorf("fetch player %d season %s: %w", req.PlayerID, req.Season, err)
	}
	l.metrics.RecordFetchDuration(time.Since(began))
	l.metrics.RecordSeasonLoad(metrics.SourceFetch)

	log, err := statcast.BuildSeasonLog(req.PlayerID, req.Season, rows)
	if err != nil {
		return model.SeasonLog{}, fmt.Errorf("player %d season %s: %w", req.PlayerID, req.Season, err)
	}
	log = withName(log, req.PlayerName)
	l.log.Info(ctx, "season log fetched",
		logger.Int("player_id", req.PlayerID),
		logger.String("season", req.Season),
		logger.Int("pitches", len(rows)),
		logger.Int("games", len(log.Games)))

	if ranged {
		l.log.Debug(ctx, "partial season log not cached",
			logger.String("start", start.Format("2006-01-02")),
			logger.String("end", end.Format("2006-01-02")))
	} else if useCache {
		if err := l.cache.Put(ctx, log); err != nil {
			l.log.Warn(ctx, "failed to cache season log", logger.Error(err))
		}
	}
	return log, nil
}

// Invalidate drops a cached season log.
func (l *Loader) Invalidate(ctx context.Context, playerID int, season string) (bool, error) {
	if l.cache == nil {
		return false, nil
	}
	return l.cache.Invalidate(ctx, playerID, season)
}

// FromCSV builds a season log from a Savant CSV export instead of
// downloading it.
func FromCSV(r io.Reader, playerID int, season string) (model.SeasonLog, error) {
	rows, err := statcast.ParseCSV(r)
	if err != nil {
		return model.SeasonLog{}, err
	}
	metrics.RecordSeasonLoad(metrics.SourceFile)
	return statcast.BuildSeasonLog(playerID, season, rows)
}

func withName(log model.SeasonLog, name string) model.SeasonLog {
	if name != "" {
		log.PlayerName = name
	}
	return log
}
