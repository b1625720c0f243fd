package report

import (
	"fmt"
	"strings"
)

// Markdown renders a Report as a weekly markdown document suitable for
// saving alongside the export or pasting into a notes app.
func Markdown(r Report) string {
	var b strings.Builder

	b.WriteString("# Weekly Productivity Report\n\n")
	fmt.Fprintf(&b, "**Period:** %s (%d days tracked)\n\n", r.Period.DateRange, r.Period.DaysTracked)

	// Scores
	b.WriteString("## Scores\n\n")
	b.WriteString("| Score | Value |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| Combined | **%d/100** (%s) |\n", r.Scores.Combined, r.Scores.Interpretation)
	fmt.Fprintf(&b, "| Productivity | %.1f/100 |\n", r.Scores.Productivity)
	fmt.Fprintf(&b, "| Focus | %.1f/100 |\n", r.Scores.Focus)
	b.WriteString("\n")

	// Time overview
	b.WriteString("## Time Overview\n\n")
	fmt.Fprintf(&b, "- Total active time: %s\n", formatHours(r.Period.TotalHours))
	fmt.Fprintf(&b, "- Average per day: %s\n", formatHours(r.Period.HoursPerDay))
	fmt.Fprintf(&b, "- Events analyzed: %d", r.Period.TotalEvents)
	if r.Period.SkippedRows > 0 {
		fmt.Fprintf(&b, " (%d rows skipped)", r.Period.SkippedRows)
	}
	b.WriteString("\n\n")

	// Categories
	if len(r.Categories) > 0 {
		b.WriteString("## Category Breakdown\n\n")
		b.WriteString("| Category | Time | Share |\n")
		b.WriteString("|---|---|---|\n")
		for _, c := range r.Categories {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n", c.Category, formatHours(c.Hours), c.Percent)
		}
		b.WriteString("\n")
	}

	// Top Apps
	if len(r.TopApps) > 0 {
		b.WriteString("## Top Apps\n\n")
		b.WriteString("| App | Time | Category | Share |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, a := range r.TopApps {
			fmt.Fprintf(&b, "| %s | %s | %s | %.1f%% |\n", a.Name, formatHours(a.Hours), a.Category, a.Percent)
		}
		b.WriteString("\n")
	}

	// Browser breakdown
	if len(r.Browser) > 0 {
		b.WriteString("## Browser Activity\n\n")
		b.WriteString("| Page | Time | Category |\n")
		b.WriteString("|---|---|---|\n")
		for _, br := range r.Browser {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapePipes(br.Title), formatHours(br.Hours), br.Category)
		}
		b.WriteString("\n")
	}

	// Death loops
	if len(r.Loops) > 0 {
		b.WriteString("## Death Loops\n\n")
		b.WriteString("| Apps | Switches | Verdict | Suggestion |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, l := range r.Loops {
			verdict := string(l.Verdict)
			if l.AISwitches > 0 && l.Verdict != "ai_assisted" {
				verdict = fmt.Sprintf("%s (%d AI)", verdict, l.AISwitches)
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %s |\n", l.Description(), l.Count, verdict, l.Suggestion)
		}
		b.WriteString("\n")
	}

	// AI sessions
	if len(r.Agents) > 0 {
		b.WriteString("## AI Sessions\n\n")
		b.WriteString("| Agent | Time | Switches |\n")
		b.WriteString("|---|---|---|\n")
		for _, a := range r.Agents {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", a.Agent, formatHours(a.Hours), a.Switches)
		}
		b.WriteString("\n")
	}

	// Context switching
	b.WriteString("## Context Switching\n\n")
	fmt.Fprintf(&b, "- Total switches: %d\n", r.Switching.Total)
	fmt.Fprintf(&b, "- Average per day: %.1f\n", r.Switching.PerDay)
	fmt.Fprintf(&b, "- Per active hour: %.1f\n\n", r.Switching.PerActiveHour)

	// Hourly
	if len(r.Peak) > 0 {
		b.WriteString("## Peak Hours\n\n")
		for _, h := range r.Peak {
			fmt.Fprintf(&b, "- %02d:00-%02d:00: %.1f%% productive (%s active)\n",
				h.Hour, (h.Hour+1)%24, h.ProductivePct, formatHours(h.TotalHours))
		}
		b.WriteString("\n")
	}
	if len(r.Danger) > 0 {
		b.WriteString("## Danger Zones\n\n")
		for _, h := range r.Danger {
			fmt.Fprintf(&b, "- %02d:00-%02d:00: %d switches\n", h.Hour, (h.Hour+1)%24, h.Switches)
		}
		b.WriteString("\n")
	}

	// Daily trend
	if len(r.Daily) > 0 {
		b.WriteString("## Daily Trend\n\n")
		b.WriteString("| Date | Time | Productive |\n")
		b.WriteString("|---|---|---|\n")
		for _, d := range r.Daily {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n", d.Date, formatHours(d.TotalHours), d.ProductivePct)
		}
		b.WriteString("\n")
	}

	// Insights
	b.WriteString("## Insights\n\n")
	fmt.Fprintf(&b, "%s\n\n", r.Insights.TopInsight)
	if len(r.Insights.Drivers) > 0 {
		b.WriteString("**Productivity drivers:**\n\n")
		for _, d := range r.Insights.Drivers {
			fmt.Fprintf(&b, "- %s (%.1fh)\n", d.Category, d.Hours)
		}
		b.WriteString("\n")
	}
	if len(r.Insights.Drains) > 0 {
		b.WriteString("**Productivity drains:**\n\n")
		for _, d := range r.Insights.Drains {
			fmt.Fprintf(&b, "- %s (%.1fh)\n", d.Category, d.Hours)
		}
		b.WriteString("\n")
	}
	for _, rec := range r.Insights.ScheduleRecs {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	if len(r.Insights.ScheduleRecs) > 0 {
		b.WriteString("\n")
	}
	if r.Insights.OneChange != "" {
		fmt.Fprintf(&b, "**One change to make:** %s\n", r.Insights.OneChange)
	}

	return b.String()
}

// escapePipes keeps arbitrary window titles from breaking table rows.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
