package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-season-diag/internal/config"
	"github.com/pable/go-season-diag/internal/diagnosis"
	"github.com/pable/go-season-diag/internal/season"
	"github.com/pable/go-season-diag/internal/statcast"
)

func TestParsePlayerID(t *testing.T) {
	id, err := parsePlayerID("592450")
	require.NoError(t, err)
	assert.Equal(t, 592450, id)

	for _, bad := range []string{"", "abc", "0", "-5", "59.2"} {
		_, err := parsePlayerID(bad)
		assert.Error(t, err, bad)
	}
}

func TestSeasonRequest(t *testing.T) {
	req, err := seasonRequest(1, "2024", "Judge", "2024-04-01", "2024-06-30", true)
	require.NoError(t, err)
	assert.Equal(t, "2024", req.Season)
	assert.Equal(t, "Judge", req.PlayerName)
	assert.True(t, req.Refresh)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), req.Start)
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), req.End)

	req, err = seasonRequest(1, "2024", "", "", "", false)
	require.NoError(t, err)
	assert.True(t, req.Start.IsZero())
	assert.True(t, req.End.IsZero())

	_, err = seasonRequest(1, "1990", "", "", "", false)
	assert.Error(t, err)
	_, err = seasonRequest(1, "2024", "", "04/01/2024", "", false)
	assert.Error(t, err)
	_, err = seasonRequest(1, "2024", "", "2024-06-01", "2024-05-01", false)
	assert.Error(t, err)
	_, err = seasonRequest(1, "2024", "", "2023-04-01", "", false)
	assert.ErrorIs(t, err, season.ErrRangeOutsideSeason)
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&diagnosis.InsufficientSampleError{Games: 12, Threshold: 30}, "not enough games for a season diagnosis: 12 played, at least 30 needed"},
		{fmt.Errorf("diagnose: %w", &diagnosis.UnorderedLogError{Position: 4, Previous: 9, Current: 7}), "out of order at game 5 (index 7 after 9)"},
		{&diagnosis.IncompleteResultError{Windows: 2, Trends: 10}, "internal error"},
		{&diagnosis.PolicyError{Reason: "window size must be positive"}, "invalid diagnosis settings: window size must be positive"},
		{fmt.Errorf("player 1: %w", statcast.ErrNoRegularSeason), "no regular-season Statcast data"},
		{statcast.ErrNoData, "returned no data"},
		{fmt.Errorf("%w: bad backend", config.ErrInvalidConfig), "configuration: "},
		{context.Canceled, "interrupted"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		assert.Contains(t, userMessage(tc.err), tc.want)
	}
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "seasondiag.db", expandHome("seasondiag.db"))
	assert.Equal(t, "/tmp/x.db", expandHome("/tmp/x.db"))
	assert.NotContains(t, expandHome("~/x.db"), "~")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"fetch", "diagnose", "list", "history", "invalidate", "sql", "drop", "serve", "shell"} {
		assert.True(t, names[want], want)
	}
}

func TestCheckPlayerArgs(t *testing.T) {
	assert.NoError(t, checkPlayerArgs([]string{"660271"}, ""))
	assert.NoError(t, checkPlayerArgs(nil, "Ohtani, Shohei"))
	assert.Error(t, checkPlayerArgs(nil, ""))
	assert.Error(t, checkPlayerArgs(nil, "  "))
	assert.Error(t, checkPlayerArgs([]string{"660271"}, "Ohtani, Shohei"))
}

func TestResolvePlayer(t *testing.T) {
	var searched string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searched = r.URL.Query().Get("search")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"660271","name":"Ohtani, Shohei","pos":"DH"}]`))
	}))
	defer srv.Close()
	a := &app{savant: statcast.NewClient(srv.URL, 5*time.Second)}
	ctx := context.Background()

	id, name, err := resolvePlayer(ctx, a, nil, "Shohei Ohtani", "")
	require.NoError(t, err)
	assert.Equal(t, 660271, id)
	assert.Equal(t, "Ohtani, Shohei", name)
	assert.Equal(t, "Ohtani", searched)

	_, name, err = resolvePlayer(ctx, a, nil, "Ohtani, Shohei", "Sho")
	require.NoError(t, err)
	assert.Equal(t, "Sho", name, "--name wins over the looked-up name")

	id, _, err = resolvePlayer(ctx, a, []string{"592450"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 592450, id)

	_, _, err = resolvePlayer(ctx, a, nil, "Judge, Aaron", "")
	assert.ErrorIs(t, err, statcast.ErrPlayerNotFound)
	assert.Contains(t, userMessage(err), "pass the numeric MLBAM id")
}
