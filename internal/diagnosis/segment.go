package diagnosis

import (
	"github.com/pable/go-season-diag/internal/model"
)

// Segment partitions a season into Early, Mid and Late windows.
//
// Early is the first WindowSize games and Late the last WindowSize games.
// Mid is a WindowSize slice centred on the games between them, rounding
// toward the earlier game. With exactly 3*WindowSize games the windows tile
// the season. Games outside all three windows are left out of the windows
// but still count toward the season length.
//
// The log is never re-sorted: indices that are not strictly increasing
// produce an *UnorderedLogError.
func Segment(log model.SeasonLog, p Policy) ([3]model.Window, error) {
	var out [3]model.Window
	games := log.Games

	for i := 1; i < len(games); i++ {
		if games[i].Index <= games[i-1].Index {
			return out, &UnorderedLogError{
				Position: i,
				Previous: games[i-1].Index,
				Current:  games[i].Index,
			}
		}
	}

	w, n := p.WindowSize, len(games)
	if w <= 0 {
		return out, &PolicyError{Reason: "window size must be positive"}
	}
	if n < 3*w {
		return out, &InsufficientSampleError{Games: n, Threshold: 3 * w}
	}

	between := n - 2*w
	midStart := w + (between-w)/2

	out[model.WindowEarly] = model.Window{Kind: model.WindowEarly, Games: games[:w:w]}
	out[model.WindowMid] = model.Window{Kind: model.WindowMid, Games: games[midStart : midStart+w : midStart+w]}
	out[model.WindowLate] = model.Window{Kind: model.WindowLate, Games: games[n-w : n : n]}
	return out, nil
}
