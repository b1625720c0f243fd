// Package score computes the productivity and focus scores.
package score

import (
	"math"

	"github.com/johns/focusweek/internal/loops"
	"github.com/johns/focusweek/internal/timeline"
)

// Default scoring parameters.
const (
	DefaultPenaltyPerSwitch  = 2.0
	DefaultProductivityShare = 0.5
	DefaultFocusShare        = 0.5
)

// Options tunes the scoring formulas.
type Options struct {
	PenaltyPerSwitch  float64 // focus points lost per non-exempt loop switch
	ProductivityShare float64 // combined-score weight of productivity
	FocusShare        float64 // combined-score weight of focus
}

// DefaultOptions returns the built-in scoring parameters.
func DefaultOptions() Options {
	return Options{
		PenaltyPerSwitch:  DefaultPenaltyPerSwitch,
		ProductivityShare: DefaultProductivityShare,
		FocusShare:        DefaultFocusShare,
	}
}

// Result holds the three output scores, all in [0, 100].
type Result struct {
	Productivity float64 `json:"productivity_score"`
	Focus        float64 `json:"focus_score"`
	Combined     int     `json:"combined_score"`
}

// Compute derives scores from the segment timeline and detected loops.
// Productivity is a duration-weighted average of positive category weights:
// negative-weight time dilutes the score by proportion but never subtracts.
// Focus starts at 100 and loses PenaltyPerSwitch per death-loop switch,
// except switches in ai_assisted loops. Empty input yields all zeros.
func Compute(segments []timeline.Segment, deathLoops []loops.DeathLoop, opts Options) Result {
	if opts.PenaltyPerSwitch <= 0 {
		opts.PenaltyPerSwitch = DefaultPenaltyPerSwitch
	}
	if opts.ProductivityShare+opts.FocusShare <= 0 {
		opts.ProductivityShare = DefaultProductivityShare
		opts.FocusShare = DefaultFocusShare
	}

	total := timeline.TotalDuration(segments)
	if total <= 0 {
		return Result{}
	}

	var weighted float64
	for _, s := range segments {
		weighted += s.Duration().Seconds() * clamp01(s.Weight)
	}
	productivity := clamp(100*weighted/total.Seconds(), 0, 100)

	var penalty float64
	for _, dl := range deathLoops {
		if dl.Verdict == loops.VerdictAIAssisted {
			continue
		}
		penalty += float64(dl.Count) * opts.PenaltyPerSwitch
	}
	focus := clamp(100-penalty, 0, 100)

	shares := opts.ProductivityShare + opts.FocusShare
	combined := (productivity*opts.ProductivityShare + focus*opts.FocusShare) / shares

	return Result{
		Productivity: productivity,
		Focus:        focus,
		Combined:     int(math.Round(clamp(combined, 0, 100))),
	}
}

// Interpret maps a combined score to the report band label.
func Interpret(combined int) string {
	switch {
	case combined >= 80:
		return "Excellent"
	case combined >= 60:
		return "Good"
	case combined >= 40:
		return "Moderate"
	default:
		return "Needs improvement"
	}
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
