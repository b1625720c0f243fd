// Package report assembles the analysis result and renders it. Computation
// and rendering are separate: Build produces the structured Report, and the
// Format/Markdown renderers (and encoding/json) consume it read-only.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/johns/focusweek/internal/export"
	"github.com/johns/focusweek/internal/insight"
	"github.com/johns/focusweek/internal/loops"
	"github.com/johns/focusweek/internal/score"
	"github.com/johns/focusweek/internal/timeline"
)

// Display limits, matching the weekly report layout.
const (
	maxTopApps      = 20
	maxBrowserRows  = 30
	maxLoopRows     = 10
	maxTitleLen     = 60
	activeHourFloor = 5 * time.Minute
)

// Report is the full structured analysis result.
type Report struct {
	Period     Period             `json:"period"`
	Scores     Scores             `json:"scores"`
	Categories []CategoryBreak    `json:"category_breakdown"`
	TopApps    []AppBreak         `json:"top_apps,omitempty"`
	Browser    []BrowserBreak     `json:"browser_breakdown,omitempty"`
	Hourly     []HourBreak        `json:"hourly_breakdown,omitempty"`
	Peak       []HourBreak        `json:"peak_hours,omitempty"`
	Danger     []HourBreak        `json:"danger_zones,omitempty"`
	Daily      []DayBreak         `json:"daily_trend,omitempty"`
	Loops      []LoopBreak        `json:"death_loops,omitempty"`
	Agents     []AgentBreak       `json:"ai_sessions,omitempty"`
	Switching  Switching          `json:"context_switching"`
	Insights   insight.Insights   `json:"insights"`
}

// Period summarizes the analyzed time range.
type Period struct {
	DaysTracked  int     `json:"days_tracked"`
	TotalEvents  int     `json:"total_events"`
	SkippedRows  int     `json:"skipped_rows"`
	DateRange    string  `json:"date_range"`
	TotalHours   float64 `json:"total_active_hours"`
	HoursPerDay  float64 `json:"average_hours_per_day"`
}

// Scores carries the three scores plus the interpretation band.
type Scores struct {
	Combined       int     `json:"combined_score"`
	Productivity   float64 `json:"productivity_score"`
	Focus          float64 `json:"focus_score"`
	Interpretation string  `json:"interpretation"`
}

// CategoryBreak is one row of the category time breakdown.
type CategoryBreak struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
	Percent  float64 `json:"percentage"`
	Weight   float64 `json:"weight"`
}

// AppBreak is one row of the per-app breakdown.
type AppBreak struct {
	Name     string  `json:"name"`
	Hours    float64 `json:"hours"`
	Percent  float64 `json:"percentage"`
	Category string  `json:"category"`
}

// BrowserBreak is one row of the browser title breakdown.
type BrowserBreak struct {
	Title    string  `json:"title"`
	Hours    float64 `json:"hours"`
	Category string  `json:"category"`
}

// HourBreak is one hour-of-day row.
type HourBreak struct {
	Hour          int     `json:"hour"`
	TotalHours    float64 `json:"total_hours"`
	ProductiveHrs float64 `json:"productive_hours"`
	ProductivePct float64 `json:"productive_pct"`
	Switches      int     `json:"switches"`
}

// DayBreak is one day of the daily trend.
type DayBreak struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	TotalHours    float64 `json:"total_hours"`
	ProductiveHrs float64 `json:"productive_hours"`
	ProductivePct float64 `json:"productive_pct"`
}

// LoopBreak is one detected death loop with its suggestion.
type LoopBreak struct {
	Apps       [2]string     `json:"apps"`
	Count      int           `json:"count"`
	AISwitches int           `json:"ai_switches,omitempty"`
	TotalHours float64       `json:"total_hours"`
	Verdict    loops.Verdict `json:"verdict"`
	Suggestion string        `json:"suggestion"`
}

// Description renders the loop pair as "A ↔ B".
func (l LoopBreak) Description() string {
	return l.Apps[0] + " ↔ " + l.Apps[1]
}

// AgentBreak summarizes one AI agent's assisted time.
type AgentBreak struct {
	Agent    string  `json:"agent"`
	Hours    float64 `json:"hours"`
	Switches int     `json:"switches"`
}

// Switching totals context-switch activity for the period.
type Switching struct {
	Total         int     `json:"total_switches"`
	PerDay        float64 `json:"average_per_day"`
	PerActiveHour float64 `json:"switches_per_active_hour"`
}

// Options controls breakdown assembly.
type Options struct {
	BrowserApps []string
}

// Build assembles the structured report from pipeline outputs. It never
// mutates its inputs.
func Build(events *export.Result, segments []timeline.Segment,
	deathLoops []loops.DeathLoop, scores score.Result, ins insight.Insights,
	opts Options) Report {

	r := Report{
		Scores: Scores{
			Combined:       scores.Combined,
			Productivity:   scores.Productivity,
			Focus:          scores.Focus,
			Interpretation: score.Interpret(scores.Combined),
		},
		Insights: ins,
	}

	if events != nil {
		r.Period.TotalEvents = events.Total
		r.Period.SkippedRows = len(events.Warnings)
	}

	total := timeline.TotalDuration(segments)
	r.Period.TotalHours = roundHours(total)

	days := dayRange(segments)
	r.Period.DaysTracked = len(days)
	if len(days) > 0 {
		r.Period.DateRange = days[0] + " to " + days[len(days)-1]
		r.Period.HoursPerDay = roundHours(total / time.Duration(len(days)))
	} else {
		r.Period.DateRange = "N/A"
	}

	r.Categories = categoryBreakdown(segments, total)
	r.TopApps = topApps(segments, total)
	r.Browser = browserBreakdown(segments, opts.BrowserApps)
	r.Hourly = hourlyBreakdown(segments)
	r.Peak = topByProductivePct(r.Hourly)
	r.Danger = topBySwitches(r.Hourly)
	r.Daily = dailyTrend(segments)
	r.Loops = loopBreakdown(segments, deathLoops)
	r.Agents = agentBreakdown(segments)
	r.Switching = switching(segments, len(days), r.Hourly)

	return r
}

func dayRange(segments []timeline.Segment) []string {
	seen := make(map[string]bool)
	for _, s := range segments {
		seen[s.Start.Format("2006-01-02")] = true
	}
	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

func categoryBreakdown(segments []timeline.Segment, total time.Duration) []CategoryBreak {
	catTime := make(map[string]time.Duration)
	catWeight := make(map[string]float64)
	for _, s := range segments {
		catTime[s.Category] += s.Duration()
		catWeight[s.Category] = s.Weight
	}

	out := make([]CategoryBreak, 0, len(catTime))
	for cat, dur := range catTime {
		out = append(out, CategoryBreak{
			Category: cat,
			Hours:    roundHours(dur),
			Percent:  percent(dur, total),
			Weight:   catWeight[cat],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func topApps(segments []timeline.Segment, total time.Duration) []AppBreak {
	appTime := make(map[string]time.Duration)
	appCat := make(map[string]string)
	for _, s := range segments {
		appTime[s.App] += s.Duration()
		appCat[s.App] = s.Category
	}

	out := make([]AppBreak, 0, len(appTime))
	for app, dur := range appTime {
		out = append(out, AppBreak{
			Name:     app,
			Hours:    roundHours(dur),
			Percent:  percent(dur, total),
			Category: appCat[app],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > maxTopApps {
		out = out[:maxTopApps]
	}
	return out
}

func browserBreakdown(segments []timeline.Segment, browserApps []string) []BrowserBreak {
	browsers := make(map[string]bool, len(browserApps))
	for _, a := range browserApps {
		browsers[a] = true
	}

	titleTime := make(map[string]time.Duration)
	titleCat := make(map[string]string)
	for _, s := range segments {
		if !browsers[s.App] {
			continue
		}
		title := cleanTitle(s.Title)
		if title == "" {
			continue
		}
		titleTime[title] += s.Duration()
		titleCat[title] = s.Category
	}

	out := make([]BrowserBreak, 0, len(titleTime))
	for title, dur := range titleTime {
		out = append(out, BrowserBreak{
			Title:    title,
			Hours:    roundHours(dur),
			Category: titleCat[title],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > maxBrowserRows {
		out = out[:maxBrowserRows]
	}
	return out
}

// cleanTitle trims and truncates a browser title; idle tabs are dropped.
// Truncation counts runes so multi-byte titles stay valid UTF-8.
func cleanTitle(title string) string {
	t := strings.TrimSpace(title)
	if r := []rune(t); len(r) > maxTitleLen {
		t = string(r[:maxTitleLen])
	}
	if t == "" || t == "New Tab" || t == "Untitled" {
		return ""
	}
	return t
}

func hourlyBreakdown(segments []timeline.Segment) []HourBreak {
	type agg struct {
		total, productive time.Duration
		switches          int
	}
	hours := make(map[int]*agg)
	get := func(h int) *agg {
		a, ok := hours[h]
		if !ok {
			a = &agg{}
			hours[h] = a
		}
		return a
	}

	for i, s := range segments {
		a := get(s.Start.Hour())
		a.total += s.Duration()
		if s.Weight >= 0.7 {
			a.productive += s.Duration()
		}
		if i > 0 && segments[i-1].App != s.App {
			a.switches++
		}
	}

	var out []HourBreak
	for h := 0; h < 24; h++ {
		a, ok := hours[h]
		if !ok || a.total < activeHourFloor {
			continue
		}
		pct := 0.0
		if a.total > 0 {
			pct = round1(float64(a.productive) / float64(a.total) * 100)
		}
		out = append(out, HourBreak{
			Hour:          h,
			TotalHours:    roundHours(a.total),
			ProductiveHrs: roundHours(a.productive),
			ProductivePct: pct,
			Switches:      a.switches,
		})
	}
	return out
}

func topByProductivePct(hourly []HourBreak) []HourBreak {
	out := append([]HourBreak{}, hourly...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductivePct != out[j].ProductivePct {
			return out[i].ProductivePct > out[j].ProductivePct
		}
		return out[i].Hour < out[j].Hour
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func topBySwitches(hourly []HourBreak) []HourBreak {
	out := append([]HourBreak{}, hourly...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Switches != out[j].Switches {
			return out[i].Switches > out[j].Switches
		}
		return out[i].Hour < out[j].Hour
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func dailyTrend(segments []timeline.Segment) []DayBreak {
	type agg struct {
		total, productive time.Duration
	}
	days := make(map[string]*agg)
	for _, s := range segments {
		d := s.Start.Format("2006-01-02")
		a, ok := days[d]
		if !ok {
			a = &agg{}
			days[d] = a
		}
		a.total += s.Duration()
		if s.Weight >= 0.7 {
			a.productive += s.Duration()
		}
	}

	out := make([]DayBreak, 0, len(days))
	for d, a := range days {
		pct := 0.0
		if a.total > 0 {
			pct = round1(float64(a.productive) / float64(a.total) * 100)
		}
		out = append(out, DayBreak{
			Date:          d,
			TotalHours:    roundHours(a.total),
			ProductiveHrs: roundHours(a.productive),
			ProductivePct: pct,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func loopBreakdown(segments []timeline.Segment, deathLoops []loops.DeathLoop) []LoopBreak {
	out := make([]LoopBreak, 0, len(deathLoops))
	for _, dl := range deathLoops {
		out = append(out, LoopBreak{
			Apps:       [2]string{dl.AppA, dl.AppB},
			Count:      dl.Count,
			AISwitches: dl.AISwitches,
			TotalHours: roundHours(dl.Total),
			Verdict:    dl.Verdict,
			Suggestion: loopSuggestion(dl, segments),
		})
	}
	if len(out) > maxLoopRows {
		out = out[:maxLoopRows]
	}
	return out
}

func loopSuggestion(dl loops.DeathLoop, segments []timeline.Segment) string {
	switch dl.Verdict {
	case loops.VerdictAIAssisted:
		return "Agent-assisted workflow, no action needed"
	case loops.VerdictProductive:
		return "Normal dev workflow, consider split screen"
	case loops.VerdictDistracting:
		app := dl.AppA
		if weightOf(dl.AppB, segments) < weightOf(dl.AppA, segments) {
			app = dl.AppB
		}
		return fmt.Sprintf("Block %s during focus hours", app)
	default:
		return "Consider batching these activities"
	}
}

func weightOf(app string, segments []timeline.Segment) float64 {
	for _, s := range segments {
		if s.App == app {
			return s.Weight
		}
	}
	return 0
}

func agentBreakdown(segments []timeline.Segment) []AgentBreak {
	agentTime := make(map[string]time.Duration)
	agentSwitches := make(map[string]int)
	for i, s := range segments {
		if !s.AIAssisted || s.Agent == "" {
			continue
		}
		agentTime[s.Agent] += s.Duration()
		if i > 0 && segments[i-1].App != s.App {
			agentSwitches[s.Agent]++
		}
		if i+1 < len(segments) && segments[i+1].App != s.App {
			agentSwitches[s.Agent]++
		}
	}

	out := make([]AgentBreak, 0, len(agentTime))
	for agent, dur := range agentTime {
		out = append(out, AgentBreak{
			Agent:    agent,
			Hours:    roundHours(dur),
			Switches: agentSwitches[agent],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Agent < out[j].Agent
	})
	return out
}

func switching(segments []timeline.Segment, daysTracked int, hourly []HourBreak) Switching {
	total := 0
	for i := 1; i < len(segments); i++ {
		if segments[i].App != segments[i-1].App {
			total++
		}
	}

	sw := Switching{Total: total}
	if daysTracked > 0 {
		sw.PerDay = round1(float64(total) / float64(daysTracked))
	}
	if len(hourly) > 0 {
		sw.PerActiveHour = round1(float64(total) / float64(len(hourly)))
	}
	return sw
}

func percent(part, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func roundHours(d time.Duration) float64 {
	return float64(int(d.Hours()*100+0.5)) / 100
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
