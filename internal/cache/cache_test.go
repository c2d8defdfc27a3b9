package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/internal/storage"
)

func fp(v float64) *float64 { return &v }

func sampleLog(playerID int, season string) model.SeasonLog {
	return model.SeasonLog{
		PlayerID:   playerID,
		PlayerName: "Soto, Juan",
		Season:     season,
		Games: []model.GameRecord{
			{Index: 1, GamePK: 747001, Date: time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC), Pitches: []model.PitchEvent{
				{Description: "hit_into_play", Event: "home_run", LaunchSpeed: fp(110.2), LaunchAngle: fp(27), HitDistance: fp(421), SpinRate: fp(2288)},
				{Description: "ball"},
			}},
		},
	}
}

// exerciseCache runs the LogCache contract against any backend.
func exerciseCache(t *testing.T, c LogCache) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, 665742, "2024")
	require.True(t, errors.Is(err, ErrMiss), "empty cache should miss, got %v", err)

	require.NoError(t, c.Put(ctx, sampleLog(665742, "2024")))

	got, err := c.Get(ctx, 665742, "2024")
	require.NoError(t, err)
	assert.Equal(t, "Soto, Juan", got.PlayerName)
	require.Len(t, got.Games, 1)
	require.Len(t, got.Games[0].Pitches, 2)
	assert.Equal(t, 110.2, *got.Games[0].Pitches[0].LaunchSpeed)
	assert.Nil(t, got.Games[0].Pitches[1].LaunchSpeed)
	assert.True(t, got.Games[0].Date.Equal(time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC)))

	_, err = c.Get(ctx, 665742, "2023")
	assert.True(t, errors.Is(err, ErrMiss), "other season should miss")

	removed, err := c.Invalidate(ctx, 665742, "2024")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = c.Get(ctx, 665742, "2024")
	assert.True(t, errors.Is(err, ErrMiss), "invalidated entry should miss")

	removed, err = c.Invalidate(ctx, 665742, "2024")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSQLiteLogCache(t *testing.T) {
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exerciseCache(t, NewSQLiteLogCache(db, 0))
}

func TestSQLiteLogCache_TTL(t *testing.T) {
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := NewSQLiteLogCache(db, time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, sampleLog(1, "2024")))

	_, err = c.Get(ctx, 1, "2024")
	require.NoError(t, err, "fresh entry should hit")

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = c.Get(ctx, 1, "2024")
	assert.True(t, errors.Is(err, ErrMiss), "expired entry should miss")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "seasondiag:log:660271:2024", Key(660271, "2024"))
}

func TestRedisLogCache(t *testing.T) {
	url := os.Getenv("SEASONDIAG_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SEASONDIAG_TEST_REDIS_URL not set; skipping redis integration test")
	}
	ctx := context.Background()
	client, err := DialRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	_ = client.Del(ctx, Key(665742, "2024"), Key(665742, "2023")).Err()

	exerciseCache(t, NewRedisLogCache(client, time.Minute))
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not-a-url")
	assert.Error(t, err)
}
