package report

import (
	"fmt"
	"strings"
)

// FormatText renders a Report as aligned terminal output.
func FormatText(r Report) string {
	if r.Period.TotalEvents == 0 && r.Period.TotalHours == 0 {
		return "fw analyze\n\n  No usable activity found in the export.\n"
	}

	var b strings.Builder
	b.WriteString("fw analyze\n")

	// Period
	b.WriteString("\nPeriod\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "date range", r.Period.DateRange)
	fmt.Fprintf(&b, "  %-20s %d\n", "days tracked", r.Period.DaysTracked)
	fmt.Fprintf(&b, "  %-20s %d", "events", r.Period.TotalEvents)
	if r.Period.SkippedRows > 0 {
		fmt.Fprintf(&b, " (%d rows skipped)", r.Period.SkippedRows)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "active time", formatHours(r.Period.TotalHours))
	fmt.Fprintf(&b, "  %-20s %s\n", "per day", formatHours(r.Period.HoursPerDay))

	// Scores
	b.WriteString("\nScores\n")
	fmt.Fprintf(&b, "  %-20s %d/100 (%s)\n", "combined", r.Scores.Combined, r.Scores.Interpretation)
	fmt.Fprintf(&b, "  %-20s %.1f/100\n", "productivity", r.Scores.Productivity)
	fmt.Fprintf(&b, "  %-20s %.1f/100\n", "focus", r.Scores.Focus)

	// Categories
	if len(r.Categories) > 0 {
		b.WriteString("\nCategories\n")
		for _, c := range r.Categories {
			fmt.Fprintf(&b, "  %-24s %7s   %5.1f%%\n", c.Category, formatHours(c.Hours), c.Percent)
		}
	}

	// Top Apps
	if len(r.TopApps) > 0 {
		b.WriteString("\nTop Apps\n")
		limit := 10
		if len(r.TopApps) < limit {
			limit = len(r.TopApps)
		}
		for _, a := range r.TopApps[:limit] {
			fmt.Fprintf(&b, "  %-24s %7s   %-16s %5.1f%%\n", a.Name, formatHours(a.Hours), a.Category, a.Percent)
		}
		if len(r.TopApps) > limit {
			fmt.Fprintf(&b, "  ... and %d more\n", len(r.TopApps)-limit)
		}
	}

	// Death Loops
	if len(r.Loops) > 0 {
		b.WriteString("\nDeath Loops\n")
		for _, l := range r.Loops {
			label := string(l.Verdict)
			if l.AISwitches > 0 && l.Verdict != "ai_assisted" {
				label = fmt.Sprintf("%s, %d AI", label, l.AISwitches)
			}
			fmt.Fprintf(&b, "  %-32s %3dx   %-24s %s\n", l.Description(), l.Count, "("+label+")", l.Suggestion)
		}
	}

	// AI Sessions
	if len(r.Agents) > 0 {
		b.WriteString("\nAI Sessions\n")
		for _, a := range r.Agents {
			fmt.Fprintf(&b, "  %-24s %7s   %d switches\n", a.Agent, formatHours(a.Hours), a.Switches)
		}
	}

	// Context Switching
	b.WriteString("\nContext Switching\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "total switches", r.Switching.Total)
	fmt.Fprintf(&b, "  %-20s %.1f\n", "per day", r.Switching.PerDay)
	fmt.Fprintf(&b, "  %-20s %.1f\n", "per active hour", r.Switching.PerActiveHour)

	// Peak Hours
	if len(r.Peak) > 0 {
		b.WriteString("\nPeak Hours\n")
		for _, h := range r.Peak {
			fmt.Fprintf(&b, "  %02d:00-%02d:00   %5.1f%% productive   %s active\n",
				h.Hour, (h.Hour+1)%24, h.ProductivePct, formatHours(h.TotalHours))
		}
	}

	// Daily Trend
	if len(r.Daily) > 0 {
		b.WriteString("\nDaily Trend\n")
		for _, d := range r.Daily {
			fmt.Fprintf(&b, "  %-12s %7s   %5.1f%% productive\n", d.Date, formatHours(d.TotalHours), d.ProductivePct)
		}
	}

	// Insights
	b.WriteString("\nInsights\n")
	fmt.Fprintf(&b, "  %s\n", r.Insights.TopInsight)
	for _, rec := range r.Insights.ScheduleRecs {
		fmt.Fprintf(&b, "  %s\n", rec)
	}
	if r.Insights.OneChange != "" {
		fmt.Fprintf(&b, "\n  One change: %s\n", r.Insights.OneChange)
	}

	return b.String()
}

// formatHours formats fractional hours as "Xh Ym".
func formatHours(hours float64) string {
	minutes := int(hours*60 + 0.5)
	if minutes <= 0 {
		return "0m"
	}
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
