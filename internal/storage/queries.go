package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/pable/go-season-diag/internal/model"
)

const (
	dateLayout      = "2006-01-02"
	// fixed width so timestamps sort lexically
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// SeasonLogInfo describes a stored season log without its games.
type SeasonLogInfo struct {
	PlayerID   int
	PlayerName string
	Season     string
	Games      int
	FetchedAt  time.Time
}

// SaveSeasonLog stores a season log, replacing any previous copy of the same
// player and season.
func (db *DB) SaveSeasonLog(ctx context.Context, log model.SeasonLog) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteSeasonLog(ctx, tx, log.PlayerID, log.Season); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO season_logs(player_id, season, player_name, games, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		log.PlayerID, log.Season, log.PlayerName, len(log.Games),
		db.now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert season_logs: %w", err)
	}

	gameStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games(player_id, season, game_index, game_pk, game_date)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer gameStmt.Close()

	pitchStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pitches(
			player_id, season, game_index, seq, description, event,
			launch_speed, launch_angle, hit_distance, spin_rate
		) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer pitchStmt.Close()

	for _, g := range log.Games {
		if _, err := gameStmt.ExecContext(ctx, log.PlayerID, log.Season, g.Index, g.GamePK, g.Date.Format(dateLayout)); err != nil {
			return fmt.Errorf("insert game %d: %w", g.Index, err)
		}
		for seq, p := range g.Pitches {
			_, err := pitchStmt.ExecContext(ctx,
				log.PlayerID, log.Season, g.Index, seq, p.Description, p.Event,
				p.LaunchSpeed, p.LaunchAngle, p.HitDistance, p.SpinRate,
			)
			if err != nil {
				return fmt.Errorf("insert pitch %d of game %d: %w", seq, g.Index, err)
			}
		}
	}
	return tx.Commit()
}

// LoadSeasonLog reads a stored season log and the time it was fetched.
// Games come back in index order, pitches in their stored order.
func (db *DB) LoadSeasonLog(ctx context.Context, playerID int, season string) (model.SeasonLog, time.Time, error) {
	log := model.SeasonLog{PlayerID: playerID, Season: season}

	var fetchedAt string
	err := db.conn.QueryRowContext(ctx,
		`SELECT player_name, fetched_at FROM season_logs WHERE player_id = ? AND season = ?`,
		playerID, season).Scan(&log.PlayerName, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return log, time.Time{}, ErrNotFound
	}
	if err != nil {
		return log, time.Time{}, err
	}
	fetched, err := time.Parse(timestampLayout, fetchedAt)
	if err != nil {
		return log, time.Time{}, fmt.Errorf("parse fetched_at: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT game_index, game_pk, game_date FROM games
		WHERE player_id = ? AND season = ?
		ORDER BY game_index`, playerID, season)
	if err != nil {
		return log, time.Time{}, err
	}
	byIndex := make(map[int]int)
	for rows.Next() {
		var g model.GameRecord
		var date string
		if err := rows.Scan(&g.Index, &g.GamePK, &date); err != nil {
			rows.Close()
			return log, time.Time{}, err
		}
		if g.Date, err = time.Parse(dateLayout, date); err != nil {
			rows.Close()
			return log, time.Time{}, fmt.Errorf("parse game_date: %w", err)
		}
		byIndex[g.Index] = len(log.Games)
		log.Games = append(log.Games, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return log, time.Time{}, err
	}

	prows, err := db.conn.QueryContext(ctx, `
		SELECT game_index, description, event, launch_speed, launch_angle, hit_distance, spin_rate
		FROM pitches WHERE player_id = ? AND season = ?
		ORDER BY game_index, seq`, playerID, season)
	if err != nil {
		return log, time.Time{}, err
	}
	defer prows.Close()
	for prows.Next() {
		var (
			idx                      int
			p                        model.PitchEvent
			speed, angle, dist, spin sql.NullFloat64
		)
		if err := prows.Scan(&idx, &p.Description, &p.Event, &speed, &angle, &dist, &spin); err != nil {
			return log, time.Time{}, err
		}
		p.LaunchSpeed, p.LaunchAngle = nullFloat(speed), nullFloat(angle)
		p.HitDistance, p.SpinRate = nullFloat(dist), nullFloat(spin)
		gi, ok := byIndex[idx]
		if !ok {
			return log, time.Time{}, fmt.Errorf("pitch references unknown game %d", idx)
		}
		log.Games[gi].Pitches = append(log.Games[gi].Pitches, p)
	}
	return log, fetched, prows.Err()
}

// InvalidateSeasonLog removes a stored season log. It reports whether
// anything was removed.
func (db *DB) InvalidateSeasonLog(ctx context.Context, playerID int, season string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM season_logs WHERE player_id = ? AND season = ?`,
		playerID, season).Scan(&n); err != nil {
		return false, err
	}
	if err := deleteSeasonLog(ctx, tx, playerID, season); err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// deleteSeasonLog removes children first so it works without foreign-key cascades.
func deleteSeasonLog(ctx context.Context, tx *sql.Tx, playerID int, season string) error {
	for _, table := range []string{"pitches", "games", "season_logs"} {
		q, args, err := sqlBuilder.Delete(table).
			Where(squirrel.Eq{"player_id": playerID, "season": season}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

// ListSeasonLogs lists stored season logs, newest fetch first. A zero
// playerID lists every player.
func (db *DB) ListSeasonLogs(ctx context.Context, playerID int) ([]SeasonLogInfo, error) {
	query := sqlBuilder.Select("player_id", "player_name", "season", "games", "fetched_at").
		From("season_logs").
		OrderBy("fetched_at DESC", "player_id", "season")
	if playerID != 0 {
		query = query.Where(squirrel.Eq{"player_id": playerID})
	}
	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeasonLogInfo
	for rows.Next() {
		var s SeasonLogInfo
		var fetched string
		if err := rows.Scan(&s.PlayerID, &s.PlayerName, &s.Season, &s.Games, &fetched); err != nil {
			return nil, err
		}
		if s.FetchedAt, err = time.Parse(timestampLayout, fetched); err != nil {
			return nil, fmt.Errorf("parse fetched_at: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
