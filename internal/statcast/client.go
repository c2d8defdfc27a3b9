// Package statcast downloads a batter's pitch-level Statcast data from
// Baseball Savant and turns it into a SeasonLog.
package statcast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the Baseball Savant CSV search endpoint.
const DefaultBaseURL = "https://baseballsavant.mlb.com/statcast_search/csv"

// DefaultPlayerSearchURL is the Baseball Savant player name search.
const DefaultPlayerSearchURL = "https://baseballsavant.mlb.com/player/search-all"

const dateLayout = "2006-01-02"

// Client is a minimal Baseball Savant search client.
type Client struct {
	baseURL   string
	searchURL string
	http      *http.Client
}

// NewClient returns a client for the given search endpoint. An empty baseURL
// uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		searchURL: playerSearchURL(baseURL),
		http:      &http.Client{Timeout: timeout},
	}
}

// SeasonRange returns the date range searched for a season: March 1 through
// November 30. Spring training and postseason rows are dropped later by the
// game_type filter.
func SeasonRange(season string) (start, end time.Time, err error) {
	year, err := strconv.Atoi(season)
	if err != nil || year < 2015 || year > 2100 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid season %q: Statcast covers 2015 onwards", season)
	}
	start = time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.November, 30, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

// FetchBatter downloads every pitch seen by the batter between start and end
// (inclusive) and parses the CSV.
func (c *Client) FetchBatter(ctx context.Context, playerID int, start, end time.Time) ([]Row, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	q := url.Values{}
	q.Set("all", "true")
	q.Set("type", "details")
	q.Set("player_type", "batter")
	q.Set("batters_lookup[]", strconv.Itoa(playerID))
	q.Set("game_date_gt", start.Format(dateLayout))
	q.Set("game_date_lt", end.Format(dateLayout))
	q.Set("hfGT", "R|")
	q.Set("min_pitches", "0")
	q.Set("min_results", "0")
	q.Set("group_by", "name")
	q.Set("sort_col", "pitches")
	q.Set("sort_order", "desc")

	body, err := c.get(ctx, c.baseURL, q, "text/csv")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rows, err := ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parse savant csv for batter %d: %w", playerID, err)
	}
	return rows, nil
}

// get performs a GET against endpoint and returns the open body.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values, accept string) (io.ReadCloser, error) {
	u := endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d", endpoint, resp.StatusCode)
	}
	return resp.Body, nil
}

// playerSearchURL derives the player search endpoint from the CSV search
// endpoint; both live on the same host.
func playerSearchURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return DefaultPlayerSearchURL
	}
	u.Path = "/player/search-all"
	u.RawQuery = ""
	return u.String()
}
