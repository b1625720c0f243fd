// Package loops detects repetitive app-switching patterns.
package loops

import (
	"sort"
	"time"

	"github.com/johns/focusweek/internal/category"
	"github.com/johns/focusweek/internal/timeline"
)

// Verdict classifies a death loop by its productivity character.
type Verdict string

const (
	VerdictAIAssisted  Verdict = "ai_assisted"
	VerdictProductive  Verdict = "productive"
	VerdictMixed       Verdict = "mixed"
	VerdictDistracting Verdict = "distracting"
)

// deepWorkWeight is the threshold above which both apps of a pair count as
// deep work.
const deepWorkWeight = 0.7

// Default detection thresholds.
const (
	DefaultMinCount = 4
	DefaultWindow   = 5 * time.Minute
)

// Switch is one app transition between consecutive segments.
type Switch struct {
	From, To int // segment indexes
	At       time.Time
}

// DeathLoop is a qualifying back-and-forth pattern between two apps.
// AppA < AppB lexicographically; the pair is unordered.
type DeathLoop struct {
	AppA, AppB string
	Count      int
	AISwitches int           // switches touching an AI-assisted segment
	Total      time.Duration // time spent in either app's segments
	AvgGap     time.Duration // average time between switches
	Verdict    Verdict
}

// Options tunes detection thresholds and the app sets used for the
// ai_assisted verdict.
type Options struct {
	MinCount     int
	Window       time.Duration
	TerminalApps []string
	BrowserApps  []string
}

// DefaultOptions returns detection options with built-in thresholds and
// app sets.
func DefaultOptions() Options {
	return Options{
		MinCount:     DefaultMinCount,
		Window:       DefaultWindow,
		TerminalApps: category.DefaultTerminalApps(),
		BrowserApps:  category.DefaultBrowserApps(),
	}
}

// Switches extracts one Switch per app transition between consecutive
// segments.
func Switches(segments []timeline.Segment) []Switch {
	var out []Switch
	for i := 1; i < len(segments); i++ {
		if segments[i].App == segments[i-1].App {
			continue
		}
		out = append(out, Switch{From: i - 1, To: i, At: segments[i].Start})
	}
	return out
}

// pairStats accumulates per-pair switch data during the scan.
type pairStats struct {
	appA, appB string
	count      int
	aiCount    int
	first      time.Time
	last       time.Time
}

// Detect finds app pairs switching above the frequency threshold within the
// rolling window and classifies each by verdict. One verdict per pair; the
// AISwitches count preserves the per-occurrence split for renderers.
func Detect(segments []timeline.Segment, rules category.Ruleset, opts Options) []DeathLoop {
	if opts.MinCount <= 0 {
		opts.MinCount = DefaultMinCount
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}

	switches := Switches(segments)
	stats := make(map[[2]string]*pairStats)
	for _, sw := range switches {
		a, b := segments[sw.From].App, segments[sw.To].App
		if b < a {
			a, b = b, a
		}
		key := [2]string{a, b}
		ps, ok := stats[key]
		if !ok {
			ps = &pairStats{appA: a, appB: b, first: sw.At}
			stats[key] = ps
		}
		ps.count++
		ps.last = sw.At
		if segments[sw.From].AIAssisted || segments[sw.To].AIAssisted {
			ps.aiCount++
		}
	}

	appTime := make(map[string]time.Duration)
	for _, s := range segments {
		appTime[s.App] += s.Duration()
	}

	terms := stringSet(opts.TerminalApps)
	browsers := stringSet(opts.BrowserApps)

	var loops []DeathLoop
	for _, ps := range stats {
		if ps.count < opts.MinCount {
			continue
		}
		avgGap := time.Duration(0)
		if ps.count > 1 {
			avgGap = ps.last.Sub(ps.first) / time.Duration(ps.count-1)
		}
		if avgGap >= opts.Window {
			continue
		}

		loop := DeathLoop{
			AppA:       ps.appA,
			AppB:       ps.appB,
			Count:      ps.count,
			AISwitches: ps.aiCount,
			Total:      appTime[ps.appA] + appTime[ps.appB],
			AvgGap:     avgGap,
		}
		loop.Verdict = verdict(ps, rules, terms, browsers)
		loops = append(loops, loop)
	}

	sort.Slice(loops, func(i, j int) bool {
		if loops[i].Count != loops[j].Count {
			return loops[i].Count > loops[j].Count
		}
		if loops[i].AppA != loops[j].AppA {
			return loops[i].AppA < loops[j].AppA
		}
		return loops[i].AppB < loops[j].AppB
	})

	return loops
}

// verdict assigns the pair verdict in priority order. ai_assisted is checked
// first: a terminal↔browser pair whose switches are majority AI-driven stays
// exempt even when the browser side carries a negative category weight.
// Negative weight in any other pair wins over everything below it.
func verdict(ps *pairStats, rules category.Ruleset, terms, browsers map[string]bool) Verdict {
	_, weightA := rules.Classify(ps.appA, "")
	_, weightB := rules.Classify(ps.appB, "")

	terminalBrowser := (terms[ps.appA] && browsers[ps.appB]) ||
		(terms[ps.appB] && browsers[ps.appA])
	if terminalBrowser && ps.aiCount*2 > ps.count {
		return VerdictAIAssisted
	}

	if weightA < 0 || weightB < 0 {
		return VerdictDistracting
	}

	if weightA >= deepWorkWeight && weightB >= deepWorkWeight {
		return VerdictProductive
	}

	return VerdictMixed
}

func stringSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}
