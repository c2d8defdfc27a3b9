package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pable/go-season-diag/internal/cache"
	"github.com/pable/go-season-diag/internal/config"
	"github.com/pable/go-season-diag/internal/diagnosis"
	"github.com/pable/go-season-diag/internal/season"
	"github.com/pable/go-season-diag/internal/statcast"
	"github.com/pable/go-season-diag/internal/storage"
	"github.com/pable/go-season-diag/pkg/logger"
	"github.com/pable/go-season-diag/pkg/metrics"
)

// app bundles the collaborators shared by commands.
type app struct {
	db      *storage.DB
	redis   *redis.Client
	savant  *statcast.Client
	loader  *season.Loader
	service *season.Service
}

func openStore() (*storage.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// openApp wires storage, the configured cache backend, the Savant client and
// the engine.
func openApp(ctx context.Context) (*app, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	engine, err := diagnosis.New(
		diagnosis.WithPolicy(cfg.Policy()),
		diagnosis.WithCatalog(cat),
		diagnosis.WithLogger(logger.Named("diagnosis")),
	)
	if err != nil {
		return nil, err
	}

	db, err := openStore()
	if err != nil {
		return nil, err
	}
	a := &app{db: db}

	var logCache cache.LogCache
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := cache.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.redis = client
		logCache = cache.NewRedisLogCache(client, cfg.CacheTTL)
	default:
		logCache = cache.NewSQLiteLogCache(db, cfg.CacheTTL)
	}

	a.savant = statcast.NewClient(cfg.SavantBaseURL, cfg.HTTPTimeout)
	a.loader = season.NewLoader(
		a.savant,
		season.WithCache(logCache),
		season.WithMetrics(metrics.Default()),
		season.WithLogger(logger.Named("season")),
	)
	a.service = season.NewService(a.loader, engine, metrics.Default())
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
}

func parsePlayerID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid player id %q: want the numeric MLBAM id", s)
	}
	return id, nil
}

// checkPlayerArgs requires exactly one of a player id argument and a
// --player name.
func checkPlayerArgs(args []string, query string) error {
	switch {
	case len(args) == 1 && query != "":
		return errors.New("give either a player id or --player, not both")
	case len(args) == 0 && strings.TrimSpace(query) == "":
		return errors.New(`a player id or --player "Last, First" is required`)
	}
	return nil
}

// resolvePlayer returns the id argument, or looks up the --player name on
// Baseball Savant. A looked-up name is used for display unless name is set.
func resolvePlayer(ctx context.Context, a *app, args []string, query, name string) (int, string, error) {
	if err := checkPlayerArgs(args, query); err != nil {
		return 0, "", err
	}
	if len(args) == 1 {
		id, err := parsePlayerID(args[0])
		return id, name, err
	}
	last, first := statcast.ParsePlayerName(query)
	p, err := a.savant.LookupPlayer(ctx, last, first)
	if err != nil {
		return 0, "", err
	}
	if name == "" {
		name = p.Name
	}
	fmt.Fprintf(os.Stderr, "Resolved %s to player %d.\n", p.Name, p.ID)
	return p.ID, name, nil
}

// seasonRequest builds a loader request from command flags. start and end
// are optional YYYY-MM-DD dates and must fall within the season year.
func seasonRequest(playerID int, seasonYear, name, start, end string, refresh bool) (season.Request, error) {
	req := season.Request{PlayerID: playerID, PlayerName: name, Season: seasonYear, Refresh: refresh}
	var err error
	if start != "" {
		if req.Start, err = time.Parse("2006-01-02", start); err != nil {
			return req, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if end != "" {
		if req.End, err = time.Parse("2006-01-02", end); err != nil {
			return req, fmt.Errorf("invalid --end: %w", err)
		}
	}
	if _, _, _, err := season.ResolveRange(req); err != nil {
		return req, err
	}
	return req, nil
}

// userMessage renders err for a terminal user, with one message per engine
// failure kind.
func userMessage(err error) string {
	var (
		insufficient *diagnosis.InsufficientSampleError
		unordered    *diagnosis.UnorderedLogError
		incomplete   *diagnosis.IncompleteResultError
		policy       *diagnosis.PolicyError
	)
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("not enough games for a season diagnosis: %d played, at least %d needed",
			insufficient.Games, insufficient.Threshold)
	case errors.As(err, &unordered):
		return fmt.Sprintf("the stored season log is out of order at game %d (index %d after %d); re-fetch it with --refresh",
			unordered.Position+1, unordered.Current, unordered.Previous)
	case errors.As(err, &incomplete):
		return fmt.Sprintf("internal error: the diagnosis came out incomplete (%s); please report this", incomplete.Error())
	case errors.As(err, &policy):
		return fmt.Sprintf("invalid diagnosis settings: %s; check min_games, window_size and metric thresholds", policy.Reason)
	case errors.Is(err, statcast.ErrNoRegularSeason):
		return "no regular-season Statcast data for that player and season"
	case errors.Is(err, statcast.ErrPlayerNotFound), errors.Is(err, statcast.ErrAmbiguousPlayer):
		return err.Error() + "; pass the numeric MLBAM id instead"
	case errors.Is(err, statcast.ErrNoData):
		return "Baseball Savant returned no data; check the player id and season"
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrLoadConfig):
		return "configuration: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return err.Error()
	}
}
