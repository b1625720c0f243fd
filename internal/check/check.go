// Package check implements the environment diagnostics behind `fw check`.
package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/johns/focusweek/internal/config"
	"github.com/johns/focusweek/internal/history"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "fw check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("fw check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// Run executes all checks against the loaded config.
func Run(cfg config.Config) Report {
	var r Report
	r.Results = append(r.Results, CheckConfigPath())
	r.Results = append(r.Results, CheckRules(cfg))
	r.Results = append(r.Results, CheckDetector(cfg.Detector))
	r.Results = append(r.Results, CheckExport(cfg.ExportPath))
	r.Results = append(r.Results, CheckHistory(cfg.History))
	return r
}

// CheckConfigPath reports which config file would be used. Broken TOML is
// caught by config.Load before any check runs.
func CheckConfigPath() Result {
	path := filepath.Join(config.ConfigDir(), "config.toml")
	if _, err := os.Stat(path); err != nil {
		return Result{Name: "config", Status: Warn, Detail: config.CompressHome(path) + " not found (using defaults)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(path)}
}

// CheckRules validates the category taxonomy and reports its size.
func CheckRules(cfg config.Config) Result {
	if err := cfg.Ruleset().Validate(); err != nil {
		return Result{Name: "rules", Status: Fail, Detail: err.Error()}
	}
	apps := 0
	for _, rule := range cfg.Rules {
		apps += len(rule.Apps)
	}
	return Result{Name: "rules", Status: Pass, Detail: fmt.Sprintf("%d categories, %d app mappings", len(cfg.Rules), apps)}
}

// CheckDetector checks the AI-detector app lists.
func CheckDetector(d config.DetectorConfig) Result {
	if len(d.TerminalApps) == 0 || len(d.BrowserApps) == 0 {
		return Result{Name: "detector", Status: Fail, Detail: "terminal_apps and browser_apps must not be empty"}
	}
	return Result{Name: "detector", Status: Pass,
		Detail: fmt.Sprintf("%d terminal apps, %d browsers", len(d.TerminalApps), len(d.BrowserApps))}
}

// CheckExport checks whether the configured export file exists and is readable.
func CheckExport(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: "export", Status: Warn, Detail: config.CompressHome(path) + " not found (pass a path to fw analyze)"}
	}
	if info.IsDir() {
		return Result{Name: "export", Status: Fail, Detail: path + " is a directory"}
	}
	return Result{Name: "export", Status: Pass,
		Detail: fmt.Sprintf("%s (%.1f KB)", config.CompressHome(path), float64(info.Size())/1024)}
}

// CheckHistory checks that the history database opens.
func CheckHistory(h config.HistoryConfig) Result {
	if !h.Enabled {
		return Result{Name: "history", Status: Pass, Detail: "disabled"}
	}
	store, err := history.Open(h.DBPath)
	if err != nil {
		return Result{Name: "history", Status: Fail, Detail: err.Error()}
	}
	defer store.Close()
	return Result{Name: "history", Status: Pass, Detail: config.CompressHome(h.DBPath)}
}
