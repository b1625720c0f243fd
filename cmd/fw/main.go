package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/johns/focusweek/internal/check"
	"github.com/johns/focusweek/internal/config"
	"github.com/johns/focusweek/internal/export"
	"github.com/johns/focusweek/internal/history"
	"github.com/johns/focusweek/internal/insight"
	"github.com/johns/focusweek/internal/loops"
	"github.com/johns/focusweek/internal/report"
	"github.com/johns/focusweek/internal/score"
	"github.com/johns/focusweek/internal/timeline"
	"github.com/johns/focusweek/internal/watch"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	args := os.Args[2:]
	cfg, err := config.Load(flagValue(args, "--config"))
	if err != nil {
		fatal("load config: %v", err)
	}

	switch os.Args[1] {
	case "analyze":
		out, err := runAnalyze(cfg, args)
		if err != nil {
			fatal("analyze: %v", err)
		}
		fmt.Print(out)

	case "trends":
		out, err := runTrends(cfg, args)
		if err != nil {
			fatal("trends: %v", err)
		}
		fmt.Print(out)

	case "watch":
		if err := runWatch(cfg, args); err != nil {
			fatal("watch: %v", err)
		}

	case "check":
		rep := check.Run(cfg)
		fmt.Print(rep.Format())
		if rep.HasFailures() {
			os.Exit(1)
		}

	case "init-config":
		path, err := config.WriteDefault()
		if err != nil {
			fatal("init-config: %v", err)
		}
		fmt.Printf("wrote %s\n", config.CompressHome(path))

	case "version":
		fmt.Printf("fw v%s (focusweek)\n", version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

// runAnalyze runs the full pipeline over the export file and renders the
// report in the requested format.
func runAnalyze(cfg config.Config, args []string) (string, error) {
	path := positional(args)
	if path == "" {
		path = cfg.ExportPath
	}

	events, err := export.ReadFile(path)
	if err != nil {
		return "", err
	}
	for _, w := range events.Warnings {
		fmt.Fprintf(os.Stderr, "fw: row %d skipped: %s\n", w.Row, w.Reason)
	}

	if v := flagValue(args, "--days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return "", fmt.Errorf("invalid --days value %q", v)
		}
		events.Events = lastDays(events.Events, days)
	}

	rules := cfg.Ruleset()
	segments := timeline.Build(events.Events, rules)
	timeline.TagAgents(segments, cfg.Detector.TerminalApps)

	loopOpts := loops.Options{
		MinCount:     cfg.Loops.MinCount,
		Window:       time.Duration(cfg.Loops.WindowMinutes) * time.Minute,
		TerminalApps: cfg.Detector.TerminalApps,
		BrowserApps:  cfg.Detector.BrowserApps,
	}
	deathLoops := loops.Detect(segments, rules, loopOpts)

	scoreOpts := score.Options{
		PenaltyPerSwitch:  cfg.Loops.PenaltyPerSwitch,
		ProductivityShare: cfg.Scores.ProductivityShare,
		FocusShare:        cfg.Scores.FocusShare,
	}
	scores := score.Compute(segments, deathLoops, scoreOpts)
	ins := insight.Generate(segments, deathLoops, scores)

	rep := report.Build(events, segments, deathLoops, scores, ins,
		report.Options{BrowserApps: cfg.Detector.BrowserApps})

	if cfg.History.Enabled && !hasFlag(args, "--no-history") && len(segments) > 0 {
		if err := recordRun(cfg, path, rep); err != nil {
			fmt.Fprintf(os.Stderr, "fw: record history: %v\n", err)
		}
	}

	switch {
	case hasFlag(args, "--json"):
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode report: %w", err)
		}
		return string(data) + "\n", nil
	case hasFlag(args, "--markdown"):
		return report.Markdown(rep), nil
	default:
		return report.FormatText(rep), nil
	}
}

func recordRun(cfg config.Config, source string, rep report.Report) error {
	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.Run{
		RunAt:        time.Now(),
		Source:       source,
		DaysTracked:  rep.Period.DaysTracked,
		Productivity: rep.Scores.Productivity,
		Focus:        rep.Scores.Focus,
		Combined:     rep.Scores.Combined,
		TotalHours:   rep.Period.TotalHours,
		Switches:     rep.Switching.Total,
		Loops:        len(rep.Loops),
	}
	if len(rep.Daily) > 0 {
		run.PeriodStart = rep.Daily[0].Date
		run.PeriodEnd = rep.Daily[len(rep.Daily)-1].Date
	}

	_, err = store.Record(context.Background(), run)
	return err
}

func runTrends(cfg config.Config, args []string) (string, error) {
	limit := 12
	if v := flagValue(args, "--limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid --limit value %q", v)
		}
		limit = n
	}

	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return "", err
	}
	return history.FormatTrends(runs, history.Trend(runs)), nil
}

// runWatch re-runs the analysis every time the export file changes.
func runWatch(cfg config.Config, args []string) error {
	path := positional(args)
	if path == "" {
		path = cfg.ExportPath
	}

	w, err := watch.New(path)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "fw: watch: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "fw: watching %s\n", config.CompressHome(path))

	// First pass immediately, then one per settled change.
	refresh := func() {
		out, err := runAnalyze(cfg, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fw: analyze: %v\n", err)
			return
		}
		fmt.Print(out)
	}
	refresh()

	for {
		select {
		case <-w.Changes:
			fmt.Fprintln(os.Stderr, "fw: export changed, re-analyzing")
			refresh()
		case err := <-w.Errors:
			fmt.Fprintf(os.Stderr, "fw: watch: %v\n", err)
		}
	}
}

// lastDays keeps events within the trailing n-day window ending at the
// latest event.
func lastDays(events []export.Event, n int) []export.Event {
	var latest time.Time
	for _, e := range events {
		if end := e.End(); end.After(latest) {
			latest = end
		}
	}
	if latest.IsZero() {
		return events
	}
	cutoff := latest.AddDate(0, 0, -n)

	var out []export.Event
	for _, e := range events {
		if !e.End().Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// positional returns the first non-flag argument, skipping flag values.
func positional(args []string) string {
	valueFlags := map[string]bool{"--config": true, "--days": true, "--limit": true}
	skip := false
	for _, a := range args {
		if skip {
			skip = false
			continue
		}
		if valueFlags[a] {
			skip = true
			continue
		}
		if len(a) > 0 && a[0] == '-' {
			continue
		}
		return a
	}
	return ""
}

func usage() {
	fmt.Fprintf(os.Stderr, `fw v%s — weekly productivity analysis for desktop activity exports

Usage:
  fw analyze [export.csv] [--json|--markdown] [--days N] [--no-history]
                              Analyze an activity export (.csv or .csv.zst)
  fw trends [--limit N]       Show recorded runs and week-over-week direction
  fw watch [export.csv]       Re-analyze whenever the export file changes
  fw check                    Verify config, rules, export, and history DB
  fw init-config              Write the default config.toml
  fw version                  Print version
  fw help                     Show this help

Global flags:
  --config <path>             Use an explicit config file

Configuration: ~/.config/focusweek/config.toml
`, version)
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "fw: "+format+"\n", args...)
	os.Exit(1)
}
