package statcast

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one pitch from a Savant "details" CSV, reduced to the columns the
// engine reads. Nil measurement fields were blank in the CSV.
type Row struct {
	GamePK      int
	GameDate    time.Time
	GameType    string
	PlayerName  string
	AtBatNumber int
	PitchNumber int
	Description string
	Events      string
	LaunchSpeed *float64
	LaunchAngle *float64
	HitDistance *float64
	SpinRate    *float64
}

var requiredColumns = []string{"game_pk", "game_date", "description", "events"}

// ParseCSV reads a Savant CSV. Column order is taken from the header; unknown
// columns are ignored and optional ones may be absent.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		pk, err := strconv.Atoi(field(rec, "game_pk"))
		if err != nil {
			return nil, fmt.Errorf("line %d: game_pk: %w", line, err)
		}
		date, err := time.Parse(dateLayout, field(rec, "game_date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: game_date: %w", line, err)
		}

		rows = append(rows, Row{
			GamePK:      pk,
			GameDate:    date,
			GameType:    field(rec, "game_type"),
			PlayerName:  field(rec, "player_name"),
			AtBatNumber: atoiOrZero(field(rec, "at_bat_number")),
			PitchNumber: atoiOrZero(field(rec, "pitch_number")),
			Description: field(rec, "description"),
			Events:      field(rec, "events"),
			LaunchSpeed: optionalFloat(field(rec, "launch_speed")),
			LaunchAngle: optionalFloat(field(rec, "launch_angle")),
			HitDistance: optionalFloat(field(rec, "hit_distance_sc")),
			SpinRate:    optionalFloat(field(rec, "release_spin_rate")),
		})
	}
	return rows, nil
}

// optionalFloat parses a measurement cell. Blank, NA/null, non-finite and
// unparsable cells are missing readings.
func optionalFloat(s string) *float64 {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
