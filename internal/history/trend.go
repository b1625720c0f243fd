package history

import (
	"fmt"
	"math"
	"strings"
)

// MetricTrend compares the latest run's value for one metric against the
// average of the preceding runs.
type MetricTrend struct {
	Name      string
	Latest    float64
	PrevAvg   float64
	Direction string  // "improving", "worsening", "stable"
	DeltaPct  float64 // percent change vs previous average
}

// stableBand is the delta below which a change counts as stable.
const stableBand = 10.0

// compareWindow is how many previous runs feed the baseline average.
const compareWindow = 4

// Trend computes per-metric direction from runs ordered newest first.
func Trend(runs []Run) []MetricTrend {
	metrics := []struct {
		name string
		get  func(Run) float64
	}{
		{"combined score", func(r Run) float64 { return float64(r.Combined) }},
		{"productivity", func(r Run) float64 { return r.Productivity }},
		{"focus", func(r Run) float64 { return r.Focus }},
		{"active hours", func(r Run) float64 { return r.TotalHours }},
	}

	out := make([]MetricTrend, 0, len(metrics))
	for _, m := range metrics {
		t := MetricTrend{Name: m.name}
		if len(runs) > 0 {
			t.Latest = m.get(runs[0])
		}
		t.Direction, t.DeltaPct, t.PrevAvg = direction(runs, m.get)
		out = append(out, t)
	}
	return out
}

// direction compares the latest value against the average of up to
// compareWindow previous runs. Higher is better for every history metric.
func direction(runs []Run, get func(Run) float64) (string, float64, float64) {
	if len(runs) < 2 {
		return "stable", 0, 0
	}

	prev := runs[1:]
	if len(prev) > compareWindow {
		prev = prev[:compareWindow]
	}
	var sum float64
	for _, r := range prev {
		sum += get(r)
	}
	avg := sum / float64(len(prev))
	if avg == 0 {
		return "stable", 0, avg
	}

	delta := (get(runs[0]) - avg) / avg * 100
	if math.Abs(delta) < stableBand {
		return "stable", delta, avg
	}
	if delta > 0 {
		return "improving", delta, avg
	}
	return "worsening", delta, avg
}

// FormatTrends renders runs and their metric trends as aligned terminal
// output, newest run first.
func FormatTrends(runs []Run, trends []MetricTrend) string {
	if len(runs) == 0 {
		return "fw trends\n\n  No runs recorded yet. Run `fw analyze` first.\n"
	}

	var b strings.Builder
	b.WriteString("fw trends\n")

	b.WriteString("\nRecent Runs\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "  %-12s %3d/100   %5.1f prod   %5.1f focus   %5.1fh\n",
			r.PeriodEnd, r.Combined, r.Productivity, r.Focus, r.TotalHours)
	}

	if len(runs) >= 2 {
		b.WriteString("\nDirection\n")
		for _, t := range trends {
			arrow := "→"
			switch t.Direction {
			case "improving":
				arrow = "↑"
			case "worsening":
				arrow = "↓"
			}
			fmt.Fprintf(&b, "  %-20s %s %-10s %+.1f%% vs prior avg\n",
				t.Name, arrow, t.Direction, t.DeltaPct)
		}
	}

	return b.String()
}
