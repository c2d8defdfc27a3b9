package statcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrPlayerNotFound means no player matched the name.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrAmbiguousPlayer means more than one player matched the name.
	ErrAmbiguousPlayer = errors.New("player name is ambiguous")
)

// Player is one result of a player name search.
type Player struct {
	ID       int
	Name     string // "Last, First"
	Position string
}

type searchResult struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
	Pos  string      `json:"pos"`
}

// ParsePlayerName splits "Last, First" or "First Last" into last and first
// name. A single word is a last name.
func ParsePlayerName(s string) (last, first string) {
	s = strings.TrimSpace(s)
	if l, f, ok := strings.Cut(s, ","); ok {
		return strings.TrimSpace(l), strings.TrimSpace(f)
	}
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[len(fields)-1], strings.Join(fields[:len(fields)-1], " ")
	}
}

// LookupPlayer resolves a player's MLBAM id from a last and optional first
// name. Matching is case-insensitive on whole names. More than one match
// returns ErrAmbiguousPlayer listing the candidates.
func (c *Client) LookupPlayer(ctx context.Context, last, first string) (Player, error) {
	last, first = strings.TrimSpace(last), strings.TrimSpace(first)
	if last == "" {
		return Player{}, fmt.Errorf("%w: empty last name", ErrPlayerNotFound)
	}

	q := url.Values{}
	q.Set("search", last)
	body, err := c.get(ctx, c.searchURL, q, "application/json")
	if err != nil {
		return Player{}, err
	}
	defer body.Close()

	var results []searchResult
	if err := json.NewDecoder(body).Decode(&results); err != nil {
		return Player{}, fmt.Errorf("decode player search: %w", err)
	}

	var matches []Player
	for _, r := range results {
		rl, rf := ParsePlayerName(r.Name)
		if !strings.EqualFold(rl, last) || (first != "" && !strings.EqualFold(rf, first)) {
			continue
		}
		id, err := strconv.Atoi(r.ID.String())
		if err != nil || id <= 0 {
			continue
		}
		matches = append(matches, Player{ID: id, Name: rl + ", " + rf, Position: r.Pos})
	}

	switch len(matches) {
	case 0:
		return Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, displayName(last, first))
	case 1:
		return matches[0], nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = fmt.Sprintf("%s (%d)", m.Name, m.ID)
	}
	return Player{}, fmt.Errorf("%w: %s matches %s", ErrAmbiguousPlayer, displayName(last, first), strings.Join(names, "; "))
}

func displayName(last, first string) string {
	if first == "" {
		return last
	}
	return last + ", " + first
}
