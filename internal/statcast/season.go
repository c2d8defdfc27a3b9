package statcast

import (
	"errors"
	"sort"

	"github.com/pable/go-season-diag/internal/model"
)

var (
	// ErrNoData means the search returned no pitches at all.
	ErrNoData = errors.New("no statcast data for the requested range")
	// ErrNoRegularSeason means pitches were found but none from regular-season games.
	ErrNoRegularSeason = errors.New("no regular-season statcast data for the requested range")
)

// BuildSeasonLog keeps regular-season rows, groups pitches into games by
// game_pk and indexes the games 1..n in (date, game_pk) order. Rows with no
// game_type are kept.
func BuildSeasonLog(playerID int, season string, rows []Row) (model.SeasonLog, error) {
	log := model.SeasonLog{PlayerID: playerID, Season: season}
	if len(rows) == 0 {
		return log, ErrNoData
	}

	byGame := make(map[int][]Row)
	for _, r := range rows {
		if r.GameType != "" && r.GameType != "R" {
			continue
		}
		byGame[r.GamePK] = append(byGame[r.GamePK], r)
		if log.PlayerName == "" {
			log.PlayerName = r.PlayerName
		}
	}
	if len(byGame) == 0 {
		return log, ErrNoRegularSeason
	}

	games := make([]model.GameRecord, 0, len(byGame))
	for pk, pitches := range byGame {
		// Savant lists the latest pitch first.
		sort.SliceStable(pitches, func(i, j int) bool {
			if pitches[i].AtBatNumber != pitches[j].AtBatNumber {
				return pitches[i].AtBatNumber < pitches[j].AtBatNumber
			}
			return pitches[i].PitchNumber < pitches[j].PitchNumber
		})
		g := model.GameRecord{GamePK: pk, Date: pitches[0].GameDate, Pitches: make([]model.PitchEvent, len(pitches))}
		for i, p := range pitches {
			g.Pitches[i] = model.PitchEvent{
				Description: p.Description,
				Event:       p.Events,
				LaunchSpeed: p.LaunchSpeed,
				LaunchAngle: p.LaunchAngle,
				HitDistance: p.HitDistance,
				SpinRate:    p.SpinRate,
			}
		}
		games = append(games, g)
	}

	sort.Slice(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		return games[i].GamePK < games[j].GamePK
	})
	for i := range games {
		games[i].Index = i + 1
	}
	log.Games = games
	return log, nil
}
