package category

import (
	"fmt"
	"strings"
)

// Weight bounds for category rules.
const (
	MinWeight = -0.5
	MaxWeight = 1.0
)

// Fallback is the category returned when no rule matches.
const Fallback = "uncategorized"

// Rule maps apps and window titles to a weighted category.
type Rule struct {
	Name        string   `toml:"name"`
	Weight      float64  `toml:"weight"`
	Apps        []string `toml:"apps"`
	Titles      []string `toml:"titles"`
	Description string   `toml:"description,omitempty"`
}

// Ruleset is an ordered list of rules. Declaration order is priority order:
// when several rules match the same activity, the first one listed wins.
type Ruleset struct {
	Rules []Rule
}

// Validate checks every rule for out-of-range weights and duplicate names.
// Called once at config load; Classify assumes a valid ruleset.
func (rs Ruleset) Validate() error {
	seen := make(map[string]bool, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.Name == "" {
			return fmt.Errorf("category rule with empty name")
		}
		if r.Weight < MinWeight || r.Weight > MaxWeight {
			return fmt.Errorf("category %q: weight %.2f outside [%.1f, %.1f]",
				r.Name, r.Weight, MinWeight, MaxWeight)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate category name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Classify returns the category name and weight for an activity.
// App names match exactly; titles match as case-insensitive substrings.
// App matches take precedence over title matches across the whole ruleset.
func (rs Ruleset) Classify(app, title string) (string, float64) {
	for _, r := range rs.Rules {
		for _, a := range r.Apps {
			if a == app {
				return r.Name, r.Weight
			}
		}
	}

	titleLower := strings.ToLower(title)
	if titleLower != "" {
		for _, r := range rs.Rules {
			for _, t := range r.Titles {
				if strings.Contains(titleLower, strings.ToLower(t)) {
					return r.Name, r.Weight
				}
			}
		}
	}

	return Fallback, 0.0
}

// Weight returns the weight of a named category, or 0 if unknown.
func (rs Ruleset) Weight(name string) float64 {
	for _, r := range rs.Rules {
		if r.Name == name {
			return r.Weight
		}
	}
	return 0.0
}
