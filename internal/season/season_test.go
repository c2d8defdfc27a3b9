package season

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-season-diag/internal/cache"
	"github.com/pable/go-season-diag/internal/diagnosis"
	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/internal/statcast"
	"github.com/pable/go-season-diag/pkg/metrics"
)

func fp(v float64) *float64 { return &v }

type fakeFetcher struct {
	games int
	err   error
	calls int

	gotStart, gotEnd time.Time
}

func (f *fakeFetcher) FetchBatter(_ context.Context, playerID int, start, end time.Time) ([]statcast.Row, error) {
	f.calls++
	f.gotStart, f.gotEnd = start, end
	if f.err != nil {
		return nil, f.err
	}
	var rows []statcast.Row
	day := time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC)
	for i := 0; i < f.games; i++ {
		date := day.AddDate(0, 0, i)
		speed := 88.0
		if i >= f.games-10 {
			speed = 96.0
		}
		rows = append(rows,
			statcast.Row{GamePK: 745000 + i, GameDate: date, GameType: "R", PlayerName: "Ohtani, Shohei",
				AtBatNumber: 1, PitchNumber: 1, Description: "swinging_strike", Events: "strikeout", SpinRate: fp(2300)},
			statcast.Row{GamePK: 745000 + i, GameDate: date, GameType: "R", PlayerName: "Ohtani, Shohei",
				AtBatNumber: 2, PitchNumber: 1, Description: "hit_into_play", Events: "single",
				LaunchSpeed: fp(speed), LaunchAngle: fp(12), HitDistance: fp(240), SpinRate: fp(2300)},
		)
	}
	// one spring-training game that must be dropped
	rows = append(rows, statcast.Row{GamePK: 1, GameDate: day.AddDate(0, 0, -10), GameType: "S", Events: "home_run"})
	return rows, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]model.SeasonLog
	puts    int
	getErr  error
}

func newMemCache() *memCache { return &memCache{entries: map[string]model.SeasonLog{}} }

func (c *memCache) key(id int, season string) string { return fmt.Sprintf("%d/%s", id, season) }

func (c *memCache) Get(_ context.Context, id int, season string) (model.SeasonLog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return model.SeasonLog{}, c.getErr
	}
	l, ok := c.entries[c.key(id, season)]
	if !ok {
		return model.SeasonLog{}, cache.ErrMiss
	}
	return l, nil
}

func (c *memCache) Put(_ context.Context, l model.SeasonLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[c.key(l.PlayerID, l.Season)] = l
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id int, season string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.key(id, season)
	_, ok := c.entries[k]
	delete(c.entries, k)
	return ok, nil
}

func testMetrics() *metrics.Manager {
	return metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
}

func TestLoader_FetchThenCache(t *testing.T) {
	f := &fakeFetcher{games: 32}
	c := newMemCache()
	l := NewLoader(f, WithCache(c), WithMetrics(testMetrics()))
	ctx := context.Background()

	log, err := l.Load(ctx, Request{PlayerID: 660271, Season: "2024"})
	require.NoError(t, err)
	assert.Len(t, log.Games, 32)
	assert.Equal(t, "Ohtani, Shohei", log.PlayerName)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1, c.puts)
	assert.Equal(t, "2024-03-01", f.gotStart.Format("2006-01-02"))
	assert.Equal(t, "2024-11-30", f.gotEnd.Format("2006-01-02"))

	again, err := l.Load(ctx, Request{PlayerID: 660271, Season: "2024"})
	require.NoError(t, err)
	assert.Len(t, again.Games, 32)
	assert.Equal(t, 1, f.calls, "second load should be served from cache")

	_, err = l.Load(ctx, Request{PlayerID: 660271, Season: "2024", Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls, "refresh should bypass the cache")
	assert.Equal(t, 2, c.puts)
}

func TestLoader_NameOverrideAndRange(t *testing.T) {
	f := &fakeFetcher{games: 30}
	l := NewLoader(f, WithMetrics(testMetrics()))

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	log, err := l.Load(context.Background(), Request{PlayerID: 660271, Season: "2024", PlayerName: "Shohei Ohtani", Start: start})
	require.NoError(t, err)
	assert.Equal(t, "Shohei Ohtani", log.PlayerName)
	assert.Equal(t, start, f.gotStart)
	assert.Equal(t, "2024-11-30", f.gotEnd.Format("2006-01-02"))
}

func TestLoader_RangedLoadBypassesCache(t *testing.T) {
	f := &fakeFetcher{games: 12}
	c := newMemCache()
	ctx := context.Background()

	ranged := Request{
		PlayerID: 660271,
		Season:   "2024",
		Start:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		Refresh:  true,
	}
	log, err := NewLoader(f, WithCache(c), WithMetrics(testMetrics())).Load(ctx, ranged)
	require.NoError(t, err)
	assert.Len(t, log.Games, 12)
	assert.Equal(t, 0, c.puts, "a partial season must not be cached")

	f.games = 40
	full, err := NewLoader(f, WithCache(c), WithMetrics(testMetrics())).
		Load(ctx, Request{PlayerID: 660271, Season: "2024"})
	require.NoError(t, err)
	assert.Len(t, full.Games, 40)
	assert.Equal(t, 2, f.calls)
	assert.Equal(t, 1, c.puts)

	ranged.Refresh = false
	_, err = NewLoader(f, WithCache(c), WithMetrics(testMetrics())).Load(ctx, ranged)
	require.NoError(t, err)
	assert.Equal(t, 3, f.calls, "a ranged request is never served from the full-season entry")
}

func TestLoader_RejectsRangeOutsideSeason(t *testing.T) {
	f := &fakeFetcher{games: 12}
	c := newMemCache()
	l := NewLoader(f, WithCache(c), WithMetrics(testMetrics()))

	_, err := l.Load(context.Background(), Request{
		PlayerID: 660271,
		Season:   "2024",
		Start:    time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Refresh:  true,
	})
	assert.ErrorIs(t, err, ErrRangeOutsideSeason)
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, 0, c.puts)
}

func TestResolveRange(t *testing.T) {
	start, end, ranged, err := ResolveRange(Request{Season: "2024"})
	require.NoError(t, err)
	assert.False(t, ranged)
	assert.Equal(t, "2024-03-01", start.Format("2006-01-02"))
	assert.Equal(t, "2024-11-30", end.Format("2006-01-02"))

	_, end, ranged, err = ResolveRange(Request{Season: "2024", End: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.True(t, ranged)
	assert.Equal(t, "2024-07-01", end.Format("2006-01-02"))

	_, _, _, err = ResolveRange(Request{Season: "2024", End: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)})
	assert.ErrorIs(t, err, ErrRangeOutsideSeason)

	_, _, _, err = ResolveRange(Request{Season: "2024",
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})
	assert.ErrorContains(t, err, "before start date")
}

func TestLoader_CacheErrorFallsBackToFetch(t *testing.T) {
	f := &fakeFetcher{games: 30}
	c := newMemCache()
	c.getErr = errors.New("connection refused")
	l := NewLoader(f, WithCache(c), WithMetrics(testMetrics()))

	_, err := l.Load(context.Background(), Request{PlayerID: 1, Season: "2024"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewLoader(&fakeFetcher{err: errors.New("timeout")}, WithMetrics(testMetrics())).
		Load(ctx, Request{PlayerID: 1, Season: "2024"})
	assert.ErrorContains(t, err, "timeout")

	_, err = NewLoader(&fakeFetcher{}, WithMetrics(testMetrics())).
		Load(ctx, Request{PlayerID: 1, Season: "2024"})
	assert.True(t, errors.Is(err, statcast.ErrNoRegularSeason), "only a spring game: %v", err)

	_, err = NewLoader(&fakeFetcher{games: 30}, WithMetrics(testMetrics())).
		Load(ctx, Request{PlayerID: 1, Season: "1999"})
	assert.Error(t, err)

	_, err = NewLoader(nil, WithCache(newMemCache())).Load(ctx, Request{PlayerID: 1, Season: "2024"})
	assert.ErrorContains(t, err, "not cached")
}

func TestLoader_Invalidate(t *testing.T) {
	c := newMemCache()
	l := NewLoader(&fakeFetcher{games: 30}, WithCache(c), WithMetrics(testMetrics()))
	ctx := context.Background()

	_, err := l.Load(ctx, Request{PlayerID: 5, Season: "2024"})
	require.NoError(t, err)

	removed, err := l.Invalidate(ctx, 5, "2024")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = NewLoader(nil).Invalidate(ctx, 5, "2024")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFromCSV(t *testing.T) {
	csv := "game_pk,game_date,game_type,player_name,description,events,launch_speed\n" +
		"10,2024-04-01,R,\"Betts, Mookie\",hit_into_play,double,99.5\n" +
		"11,2024-04-02,R,\"Betts, Mookie\",called_strike,strikeout,\n"
	log, err := FromCSV(strings.NewReader(csv), 605141, "2024")
	require.NoError(t, err)
	assert.Equal(t, "Betts, Mookie", log.PlayerName)
	assert.Len(t, log.Games, 2)
}

func TestService_Diagnose(t *testing.T) {
	engine, err := diagnosis.New()
	require.NoError(t, err)
	svc := NewService(NewLoader(&fakeFetcher{games: 30}, WithMetrics(testMetrics())), engine, testMetrics())

	res, err := svc.Diagnose(context.Background(), Request{PlayerID: 660271, Season: "2024"})
	require.NoError(t, err)
	assert.Equal(t, 30, res.TotalGames)

	ev, ok := res.Trend(metric.AvgLaunchSpeed)
	require.True(t, ok)
	assert.Equal(t, 88.0, ev.Early)
	assert.Equal(t, 96.0, ev.Late)
	assert.Equal(t, model.DirectionImproved, ev.Direction)
	assert.Equal(t, model.MagnitudeMajor, ev.Magnitude)
}

func TestService_DiagnoseShortSeason(t *testing.T) {
	engine, err := diagnosis.New()
	require.NoError(t, err)
	svc := NewService(NewLoader(&fakeFetcher{games: 12}, WithMetrics(testMetrics())), engine, testMetrics())

	_, err = svc.Diagnose(context.Background(), Request{PlayerID: 660271, Season: "2024"})
	assert.Equal(t, diagnosis.KindInsufficientSample, diagnosis.KindOf(err))
}
