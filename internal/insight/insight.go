// Package insight turns analysis results into actionable recommendations.
package insight

import (
	"fmt"
	"sort"
	"time"

	"github.com/johns/focusweek/internal/loops"
	"github.com/johns/focusweek/internal/score"
	"github.com/johns/focusweek/internal/timeline"
)

// Thresholds for driver/drain listing.
const (
	driverWeight  = 0.7
	driverMinTime = time.Hour
	drainMinTime  = 30 * time.Minute
)

// CategoryImpact is one category's contribution to the week.
type CategoryImpact struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
	Impact   string  `json:"impact"` // "positive" or "negative"
}

// Insights holds the generated recommendation set.
type Insights struct {
	TopInsight   string           `json:"top_insight"`
	Drivers      []CategoryImpact `json:"productivity_drivers,omitempty"`
	Drains       []CategoryImpact `json:"productivity_drains,omitempty"`
	ScheduleRecs []string         `json:"schedule_recommendations,omitempty"`
	OneChange    string           `json:"one_change"`
}

// Generate builds insights from the segment timeline, detected loops, and
// scores. Candidate rules for the "one change" recommendation are evaluated
// in declaration order; ties go to the earlier rule.
func Generate(segments []timeline.Segment, deathLoops []loops.DeathLoop, scores score.Result) Insights {
	if len(segments) == 0 {
		return Insights{
			TopInsight: "insufficient data: no usable activity was tracked this period",
			OneChange:  "Export a longer tracking period and re-run the analysis",
		}
	}

	ins := Insights{}

	catTime, catWeight := categoryTotals(segments)
	ins.Drivers = impacts(catTime, catWeight, func(w float64, d time.Duration) bool {
		return w >= driverWeight && d > driverMinTime
	}, "positive")
	ins.Drains = impacts(catTime, catWeight, func(w float64, d time.Duration) bool {
		return w < 0 && d > drainMinTime
	}, "negative")

	ins.ScheduleRecs = scheduleRecs(segments)
	ins.TopInsight = topInsight(scores)
	ins.OneChange = oneChange(segments, deathLoops, catTime, catWeight)

	return ins
}

func topInsight(s score.Result) string {
	switch {
	case s.Focus < 50:
		return "High context switching is fragmenting your attention"
	case s.Productivity < 50:
		return "Distraction time is eating into productive hours"
	case s.Productivity >= 70 && s.Focus >= 70:
		return "Strong productivity patterns: focus on maintaining consistency"
	default:
		return "Mixed patterns: small improvements in focus will compound"
	}
}

// oneChange picks the single highest-value intervention.
func oneChange(segments []timeline.Segment, deathLoops []loops.DeathLoop,
	catTime map[string]time.Duration, catWeight map[string]float64) string {

	// Rule 1: worst non-exempt death loop. Detect returns loops sorted by
	// count, so the first non-AI loop is the worst.
	for _, dl := range deathLoops {
		if dl.Verdict == loops.VerdictAIAssisted {
			continue
		}
		switch dl.Verdict {
		case loops.VerdictDistracting:
			return fmt.Sprintf("Block %s during focus hours (switched with %s %d times)",
				negativeMember(dl, segments), otherMember(dl, segments), dl.Count)
		case loops.VerdictProductive:
			return fmt.Sprintf("Use split screen for %s and %s instead of switching (%d times)",
				dl.AppA, dl.AppB, dl.Count)
		default:
			return fmt.Sprintf("Batch %s and %s work into dedicated blocks (%d switches)",
				dl.AppA, dl.AppB, dl.Count)
		}
	}

	// Rule 2: largest negative-weight category over the drain threshold.
	if cat, dur := largestDrain(catTime, catWeight); cat != "" {
		return fmt.Sprintf("Cut %s time (%.1fh this period)", cat, dur.Hours())
	}

	// Rule 3: busiest switching hour.
	if hour, count := busiestSwitchHour(segments); count > 0 {
		return fmt.Sprintf("Protect your %02d:00 hour: it has the most context switching", hour)
	}

	return "Protect your peak productive hours by blocking notifications"
}

// negativeMember returns the loop member with negative category weight,
// falling back to AppA.
func negativeMember(dl loops.DeathLoop, segments []timeline.Segment) string {
	if appWeight(dl.AppB, segments) < appWeight(dl.AppA, segments) {
		return dl.AppB
	}
	return dl.AppA
}

func otherMember(dl loops.DeathLoop, segments []timeline.Segment) string {
	if negativeMember(dl, segments) == dl.AppA {
		return dl.AppB
	}
	return dl.AppA
}

func appWeight(app string, segments []timeline.Segment) float64 {
	for _, s := range segments {
		if s.App == app {
			return s.Weight
		}
	}
	return 0
}

func categoryTotals(segments []timeline.Segment) (map[string]time.Duration, map[string]float64) {
	catTime := make(map[string]time.Duration)
	catWeight := make(map[string]float64)
	for _, s := range segments {
		catTime[s.Category] += s.Duration()
		catWeight[s.Category] = s.Weight
	}
	return catTime, catWeight
}

func impacts(catTime map[string]time.Duration, catWeight map[string]float64,
	keep func(float64, time.Duration) bool, impact string) []CategoryImpact {

	var out []CategoryImpact
	for cat, dur := range catTime {
		if keep(catWeight[cat], dur) {
			out = append(out, CategoryImpact{
				Category: cat,
				Hours:    roundHours(dur),
				Impact:   impact,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func largestDrain(catTime map[string]time.Duration, catWeight map[string]float64) (string, time.Duration) {
	var worst string
	var worstDur time.Duration
	for cat, dur := range catTime {
		if catWeight[cat] >= 0 || dur < drainMinTime {
			continue
		}
		if dur > worstDur || (dur == worstDur && cat < worst) {
			worst, worstDur = cat, dur
		}
	}
	return worst, worstDur
}

func busiestSwitchHour(segments []timeline.Segment) (int, int) {
	counts := make(map[int]int)
	for i := 1; i < len(segments); i++ {
		if segments[i].App != segments[i-1].App {
			counts[segments[i].Start.Hour()]++
		}
	}
	bestHour, bestCount := 0, 0
	for h := 0; h < 24; h++ {
		if counts[h] > bestCount {
			bestHour, bestCount = h, counts[h]
		}
	}
	return bestHour, bestCount
}

// scheduleRecs suggests schedule changes from peak and danger hours.
func scheduleRecs(segments []timeline.Segment) []string {
	type hourAgg struct {
		total      time.Duration
		productive time.Duration
	}
	hours := make(map[int]*hourAgg)
	for _, s := range segments {
		h := s.Start.Hour()
		agg, ok := hours[h]
		if !ok {
			agg = &hourAgg{}
			hours[h] = agg
		}
		agg.total += s.Duration()
		if s.Weight >= driverWeight {
			agg.productive += s.Duration()
		}
	}

	var recs []string

	// Peak productive hour: highest productive fraction among hours with at
	// least 5 minutes of activity.
	peakHour, peakPct := -1, 0.0
	for h := 0; h < 24; h++ {
		agg, ok := hours[h]
		if !ok || agg.total < 5*time.Minute {
			continue
		}
		pct := float64(agg.productive) / float64(agg.total)
		if pct > peakPct {
			peakHour, peakPct = h, pct
		}
	}
	if peakHour >= 0 && peakPct > 0 {
		recs = append(recs, fmt.Sprintf(
			"Schedule deep work around %d:00-%d:00 (your peak productive time)",
			peakHour, (peakHour+2)%24))
	}

	// Late-night switching warning.
	if hour, count := busiestSwitchHour(segments); count > 0 && (hour < 6 || hour >= 23) {
		recs = append(recs, fmt.Sprintf(
			"Late night work (%d:00) shows high context switching: consider ending earlier", hour))
	}

	return recs
}

func roundHours(d time.Duration) float64 {
	return float64(int(d.Hours()*10+0.5)) / 10
}
