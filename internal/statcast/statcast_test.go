package statcast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "\ufeff" + `pitch_type,game_date,release_speed,player_name,batter,events,description,game_type,launch_speed,launch_angle,hit_distance_sc,release_spin_rate,game_pk,at_bat_number,pitch_number
FF,2024-04-02,95.1,"Ohtani, Shohei",660271,single,hit_into_play,R,101.2,14,250,2301,745002,30,2
SL,2024-04-02,86.0,"Ohtani, Shohei",660271,,swinging_strike,R,,,,2550,745002,30,1
FF,2024-03-28,94.0,"Ohtani, Shohei",660271,strikeout,swinging_strike,R,,,,2400,745001,12,3
CH,2024-03-28,85.5,"Ohtani, Shohei",660271,,ball,R,,,,NA,745001,12,2
FF,2024-03-20,93.8,"Ohtani, Shohei",660271,home_run,hit_into_play,S,108.0,28,420,2280,744000,5,1
FF,2024-04-02,96.0,"Ohtani, Shohei",660271,walk,ball,R,,,,2290,745003,3,4
`

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 6)

	r := rows[0]
	assert.Equal(t, 745002, r.GamePK)
	assert.Equal(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), r.GameDate)
	assert.Equal(t, "R", r.GameType)
	assert.Equal(t, "Ohtani, Shohei", r.PlayerName)
	assert.Equal(t, "single", r.Events)
	assert.Equal(t, "hit_into_play", r.Description)
	require.NotNil(t, r.LaunchSpeed)
	assert.Equal(t, 101.2, *r.LaunchSpeed)
	require.NotNil(t, r.HitDistance)
	assert.Equal(t, 250.0, *r.HitDistance)
	assert.Equal(t, 30, r.AtBatNumber)
	assert.Equal(t, 2, r.PitchNumber)

	assert.Nil(t, rows[1].LaunchSpeed, "blank cell is a missing reading")
	assert.Equal(t, "", rows[1].Events)
	assert.Nil(t, rows[3].SpinRate, "NA is a missing reading")
}

func TestParseCSV_EmptyBody(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("game_pk,game_date,events\n1,2024-04-01,single\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestParseCSV_BadDate(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("game_pk,game_date,description,events\n1,04/01/2024,ball,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestBuildSeasonLog(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	log, err := BuildSeasonLog(660271, "2024", rows)
	require.NoError(t, err)

	assert.Equal(t, 660271, log.PlayerID)
	assert.Equal(t, "Ohtani, Shohei", log.PlayerName)
	assert.Equal(t, "2024", log.Season)
	// spring-training game 744000 dropped
	require.Len(t, log.Games, 3)

	assert.Equal(t, 745001, log.Games[0].GamePK)
	assert.Equal(t, 745002, log.Games[1].GamePK)
	assert.Equal(t, 745003, log.Games[2].GamePK, "same date sorts by game_pk")
	for i, g := range log.Games {
		assert.Equal(t, i+1, g.Index)
	}

	// pitches in at-bat/pitch order
	g := log.Games[1]
	require.Len(t, g.Pitches, 2)
	assert.Equal(t, "swinging_strike", g.Pitches[0].Description)
	assert.Equal(t, "single", g.Pitches[1].Event)
	assert.Equal(t, 1, g.PlateAppearances())
}

func TestBuildSeasonLog_Errors(t *testing.T) {
	_, err := BuildSeasonLog(1, "2024", nil)
	assert.True(t, errors.Is(err, ErrNoData))

	spring := []Row{{GamePK: 1, GameType: "S", GameDate: time.Now()}, {GamePK: 2, GameType: "F", GameDate: time.Now()}}
	_, err = BuildSeasonLog(1, "2024", spring)
	assert.True(t, errors.Is(err, ErrNoRegularSeason))
}

func TestSeasonRange(t *testing.T) {
	start, end, err := SeasonRange("2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", start.Format(dateLayout))
	assert.Equal(t, "2024-11-30", end.Format(dateLayout))

	for _, bad := range []string{"", "twenty", "2014"} {
		_, _, err := SeasonRange(bad)
		assert.Error(t, err, "season %q", bad)
	}
}

func TestClient_FetchBatter(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	start, end, err := SeasonRange("2024")
	require.NoError(t, err)

	rows, err := c.FetchBatter(context.Background(), 660271, start, end)
	require.NoError(t, err)
	assert.Len(t, rows, 6)

	assert.Equal(t, []string{"660271"}, gotQuery["batters_lookup[]"])
	assert.Equal(t, []string{"2024-03-01"}, gotQuery["game_date_gt"])
	assert.Equal(t, []string{"2024-11-30"}, gotQuery["game_date_lt"])
	assert.Equal(t, []string{"batter"}, gotQuery["player_type"])
	assert.Equal(t, []string{"details"}, gotQuery["type"])
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.FetchBatter(context.Background(), 1, time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.FetchBatter(ctx, 1, time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_RejectsInvertedRange(t *testing.T) {
	c := NewClient("", 0)
	_, err := c.FetchBatter(context.Background(), 1, time.Now(), time.Now().AddDate(0, 0, -1))
	assert.Error(t, err)
}

const searchJSON = `[
  {"id":"660271","name":"Ohtani, Shohei","pos":"DH","mlb":1},
  {"id":"608070","name":"Ramirez, Jose","pos":"3B","mlb":1},
  {"id":"542432","name":"Ramirez, Jose","pos":"P","mlb":1},
  {"id":"665742","name":"Juan Soto","pos":"RF","mlb":1}
]`

func newSearchServer(t *testing.T, gotPath, gotSearch *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotPath = r.URL.Path
		*gotSearch = r.URL.Query().Get("search")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LookupPlayer(t *testing.T) {
	var path, search string
	srv := newSearchServer(t, &path, &search)
	c := NewClient(srv.URL+"/statcast_search/csv", 5*time.Second)

	p, err := c.LookupPlayer(context.Background(), "ohtani", "Shohei")
	require.NoError(t, err)
	assert.Equal(t, 660271, p.ID)
	assert.Equal(t, "Ohtani, Shohei", p.Name)
	assert.Equal(t, "DH", p.Position)
	assert.Equal(t, "/player/search-all", path)
	assert.Equal(t, "ohtani", search)

	p, err = c.LookupPlayer(context.Background(), "Soto", "")
	require.NoError(t, err)
	assert.Equal(t, 665742, p.ID, "\"First Last\" result names are understood")
}

func TestClient_LookupPlayerErrors(t *testing.T) {
	var path, search string
	srv := newSearchServer(t, &path, &search)
	c := NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	_, err := c.LookupPlayer(ctx, "Judge", "Aaron")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = c.LookupPlayer(ctx, "Ohtani", "Yuki")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = c.LookupPlayer(ctx, "Ramirez", "Jose")
	assert.ErrorIs(t, err, ErrAmbiguousPlayer)
	assert.ErrorContains(t, err, "542432")
	assert.ErrorContains(t, err, "608070")

	_, err = c.LookupPlayer(ctx, " ", "")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestParsePlayerName(t *testing.T) {
	cases := []struct{ in, last, first string }{
		{"Ohtani, Shohei", "Ohtani", "Shohei"},
		{"Shohei Ohtani", "Ohtani", "Shohei"},
		{"Vladimir Guerrero", "Guerrero", "Vladimir"},
		{"Judge", "Judge", ""},
		{"  ", "", ""},
	}
	for _, tc := range cases {
		last, first := ParsePlayerName(tc.in)
		assert.Equal(t, tc.last, last, tc.in)
		assert.Equal(t, tc.first, first, tc.in)
	}
}
