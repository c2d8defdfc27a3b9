package diagnosis

import (
	"fmt"

	"github.com/pable/go-season-diag/internal/model"
)

// Policy holds the sampling rules: how many games a season needs and how
// many games each window spans.
type Policy struct {
	MinGames   int `koanf:"min_games"`
	WindowSize int `koanf:"window_size"`
}

// DefaultPolicy is 30 games minimum with 10-game windows.
func DefaultPolicy() Policy {
	return Policy{MinGames: 30, WindowSize: 10}
}

// Validate checks that three disjoint windows always fit a season that
// passes the minimum-sample check.
func (p Policy) Validate() error {
	if p.WindowSize <= 0 {
		return &PolicyError{Reason: fmt.Sprintf("window size must be positive, got %d", p.WindowSize)}
	}
	if p.MinGames < 3*p.WindowSize {
		return &PolicyError{Reason: fmt.Sprintf("min games %d is less than three windows of %d", p.MinGames, p.WindowSize)}
	}
	return nil
}

// ValidateSample is the minimum-sample gate. It has no side effects.
func ValidateSample(log model.SeasonLog, p Policy) error {
	if n := len(log.Games); n < p.MinGames {
		return &InsufficientSampleError{Games: n, Threshold: p.MinGames}
	}
	return nil
}
