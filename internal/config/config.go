// Package config loads and validates focusweek configuration from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/johns/focusweek/internal/category"
)

// Config holds all focusweek configuration.
type Config struct {
	ExportPath string `toml:"export_path"`

	Rules    []category.Rule `toml:"rules"`
	Detector DetectorConfig  `toml:"detector"`
	Loops    LoopsConfig     `toml:"loops"`
	Scores   ScoresConfig    `toml:"scores"`
	History  HistoryConfig   `toml:"history"`
}

type DetectorConfig struct {
	TerminalApps []string `toml:"terminal_apps"`
	BrowserApps  []string `toml:"browser_apps"`
}

type LoopsConfig struct {
	MinCount         int     `toml:"min_count"`
	WindowMinutes    int     `toml:"window_minutes"`
	PenaltyPerSwitch float64 `toml:"penalty_per_switch"`
}

type ScoresConfig struct {
	ProductivityShare float64 `toml:"productivity_share"`
	FocusShare        float64 `toml:"focus_share"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// DefaultConfig returns config with the built-in category taxonomy and
// detector defaults.
func DefaultConfig() Config {
	return Config{
		ExportPath: "~/Downloads/aw-export.csv",
		Rules:      category.Default().Rules,
		Detector: DetectorConfig{
			TerminalApps: category.DefaultTerminalApps(),
			BrowserApps:  category.DefaultBrowserApps(),
		},
		Loops: LoopsConfig{
			MinCount:         4,
			WindowMinutes:    5,
			PenaltyPerSwitch: 2.0,
		},
		Scores: ScoresConfig{
			ProductivityShare: 0.5,
			FocusShare:        0.5,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "~/.local/share/focusweek/history.db",
		},
	}
}

// Load reads config from path when given, otherwise from the standard
// locations, falling back to defaults. A missing explicit path is an error;
// a missing standard path is not.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		return finish(cfg)
	}

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	return finish(cfg)
}

func finish(cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.ExportPath = expandHome(cfg.ExportPath)
	cfg.History.DBPath = expandHome(cfg.History.DBPath)
	return cfg, nil
}

// Validate checks the category rules and numeric settings.
func (c Config) Validate() error {
	if err := c.Ruleset().Validate(); err != nil {
		return err
	}
	if c.Loops.MinCount < 2 {
		return fmt.Errorf("loops.min_count must be at least 2, got %d", c.Loops.MinCount)
	}
	if c.Loops.WindowMinutes <= 0 {
		return fmt.Errorf("loops.window_minutes must be positive, got %d", c.Loops.WindowMinutes)
	}
	if c.Loops.PenaltyPerSwitch < 0 {
		return fmt.Errorf("loops.penalty_per_switch must not be negative, got %v", c.Loops.PenaltyPerSwitch)
	}
	if c.Scores.ProductivityShare < 0 || c.Scores.FocusShare < 0 {
		return fmt.Errorf("score shares must not be negative")
	}
	if c.Scores.ProductivityShare+c.Scores.FocusShare == 0 {
		return fmt.Errorf("score shares must not both be zero")
	}
	if len(c.Detector.TerminalApps) == 0 {
		return fmt.Errorf("detector.terminal_apps must not be empty")
	}
	if len(c.Detector.BrowserApps) == 0 {
		return fmt.Errorf("detector.browser_apps must not be empty")
	}
	return nil
}

// Ruleset wraps the configured rules for classification.
func (c Config) Ruleset() category.Ruleset {
	return category.Ruleset{Rules: c.Rules}
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "focusweek", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "focusweek", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
