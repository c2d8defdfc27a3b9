package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pable/go-season-diag/internal/model"
)

// DiagnosisRecord is a saved diagnostic result plus its run metadata.
type DiagnosisRecord struct {
	ID           string
	CreatedAt    time.Time
	Improved     int
	Declined     int
	Insufficient int
	Result       model.DiagnosticResult
}

// DiagnosisFilter narrows ListDiagnoses. Zero fields match everything.
type DiagnosisFilter struct {
	PlayerID int
	Season   string
	Limit    int
}

// SaveDiagnosis stores a result under a new run ID and returns the ID.
func (db *DB) SaveDiagnosis(ctx context.Context, res model.DiagnosticResult) (string, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("encode diagnosis: %w", err)
	}

	var improved, declined, insufficient int
	for _, t := range res.Trends {
		switch t.Direction {
		case model.DirectionImproved:
			improved++
		case model.DirectionDeclined:
			declined++
		case model.DirectionInsufficient:
			insufficient++
		}
	}

	id := uuid.NewString()
	q, args, err := sqlBuilder.Insert("diagnoses").
		Columns("id", "player_id", "season", "player_name", "total_games",
			"improved", "declined", "insufficient", "created_at", "payload").
		Values(id, res.PlayerID, res.Season, res.PlayerName, res.TotalGames,
			improved, declined, insufficient, db.now().UTC().Format(timestampLayout), string(payload)).
		ToSql()
	if err != nil {
		return "", err
	}
	if _, err := db.conn.ExecContext(ctx, q, args...); err != nil {
		return "", fmt.Errorf("insert diagnosis: %w", err)
	}
	return id, nil
}

// ListDiagnoses returns saved diagnoses, newest first.
func (db *DB) ListDiagnoses(ctx context.Context, filter DiagnosisFilter) ([]DiagnosisRecord, error) {
	query := sqlBuilder.Select("id", "created_at", "improved", "declined", "insufficient", "payload").
		From("diagnoses").
		OrderBy("created_at DESC", "id")
	if filter.PlayerID != 0 {
		query = query.Where(squirrel.Eq{"player_id": filter.PlayerID})
	}
	if filter.Season != "" {
		query = query.Where(squirrel.Eq{"season": filter.Season})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
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

	var out []DiagnosisRecord
	for rows.Next() {
		rec, err := scanDiagnosis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetDiagnosis finds the newest saved diagnosis whose ID starts with prefix.
// A prefix that cannot start a run ID (anything but hex digits and '-')
// matches nothing.
func (db *DB) GetDiagnosis(ctx context.Context, prefix string) (DiagnosisRecord, error) {
	prefix = strings.ToLower(prefix)
	if !validIDPrefix(prefix) {
		return DiagnosisRecord{}, ErrNotFound
	}
	q, args, err := sqlBuilder.Select("id", "created_at", "improved", "declined", "insufficient", "payload").
		From("diagnoses").
		Where(squirrel.Like{"id": prefix + "%"}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return DiagnosisRecord{}, err
	}
	rec, err := scanDiagnosis(db.conn.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return DiagnosisRecord{}, ErrNotFound
	}
	return rec, err
}

func validIDPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, r := range prefix {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && r != '-' {
			return false
		}
	}
	return true
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDiagnosis(s scanner) (DiagnosisRecord, error) {
	var (
		rec     DiagnosisRecord
		created string
		payload string
	)
	if err := s.Scan(&rec.ID, &created, &rec.Improved, &rec.Declined, &rec.Insufficient, &payload); err != nil {
		return rec, err
	}
	var err error
	if rec.CreatedAt, err = time.Parse(timestampLayout, created); err != nil {
		return rec, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rec.Result); err != nil {
		return rec, fmt.Errorf("decode diagnosis %s: %w", rec.ID, err)
	}
	return rec, nil
}
