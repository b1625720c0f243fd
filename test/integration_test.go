package test

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fwBinary is the path to the compiled fw binary, set by TestMain.
var fwBinary string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	tmpDir, err := os.MkdirTemp("", "fw-integration-build-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	fwBinary = filepath.Join(tmpDir, "fw")
	cmd := exec.Command("go", "build", "-o", fwBinary, "./cmd/fw")
	// Test working dir is test/, so go up one level to project root
	cmd.Dir = filepath.Join("..")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build fw binary: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// --- Fixtures ---

// fixtureWeek: two days of activity. Monday is a focused coding day with an
// agent session in the terminal; Tuesday alternates fast between the editor
// and Netflix, forming a distracting death loop.
const fixtureWeek = `timestamp,duration,app,title
2026-01-05T09:00:00Z,3600,Code,main.go
2026-01-05T10:00:00Z,1800,Terminal,✳ claude
2026-01-05T10:30:00Z,600,Safari,Go slices blog post
2026-01-05T10:40:00Z,1200,Terminal,✳ claude
2026-01-05T11:00:00Z,3600,Code,timeline.go
2026-01-06T09:00:00Z,60,Code,main.go
2026-01-06T09:01:00Z,60,Netflix,Comfort show
2026-01-06T09:02:00Z,60,Code,main.go
2026-01-06T09:03:00Z,60,Netflix,Comfort show
2026-01-06T09:04:00Z,60,Code,main.go
2026-01-06T09:05:00Z,60,Netflix,Comfort show
2026-01-06T09:06:00Z,60,Code,main.go
2026-01-06T09:07:00Z,60,Netflix,Comfort show
2026-01-06T09:08:00Z,3600,Code,main.go
`

// fixtureBroken has a malformed row that must be skipped, not fatal.
const fixtureBroken = `timestamp,duration,app,title
2026-01-05T09:00:00Z,3600,Code,main.go
not-a-timestamp,60,Code,main.go
2026-01-05T10:00:00Z,1800,Safari,docs
`

func runFW(t *testing.T, env []string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(fwBinary, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func isolatedEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return []string{
		"HOME=" + home,
		"XDG_CONFIG_HOME=" + filepath.Join(home, ".config"),
	}
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	t.Run("analyze text output", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, fixtureWeek)

		out, stderr, err := runFW(t, env, "analyze", path)
		if err != nil {
			t.Fatalf("analyze failed: %v\n%s", err, stderr)
		}
		for _, want := range []string{
			"fw analyze",
			"Scores",
			"deep_work",
			"Death Loops",
			"Code ↔ Netflix",
			"AI Sessions",
			"claude",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
	})

	t.Run("analyze json output", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, fixtureWeek)

		out, stderr, err := runFW(t, env, "analyze", path, "--json")
		if err != nil {
			t.Fatalf("analyze --json failed: %v\n%s", err, stderr)
		}

		var rep struct {
			Period struct {
				DaysTracked int `json:"days_tracked"`
			} `json:"period"`
			Scores struct {
				Combined       int    `json:"combined_score"`
				Interpretation string `json:"interpretation"`
			} `json:"scores"`
			Loops []struct {
				Verdict string `json:"verdict"`
			} `json:"death_loops"`
		}
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if rep.Period.DaysTracked != 2 {
			t.Errorf("days_tracked = %d, want 2", rep.Period.DaysTracked)
		}
		if rep.Scores.Combined < 0 || rep.Scores.Combined > 100 {
			t.Errorf("combined_score = %d out of range", rep.Scores.Combined)
		}
		if len(rep.Loops) == 0 {
			t.Fatal("expected at least one death loop")
		}
		if rep.Loops[0].Verdict != "distracting" {
			t.Errorf("loop verdict = %q, want distracting", rep.Loops[0].Verdict)
		}
	})

	t.Run("analyze markdown output", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, fixtureWeek)

		out, stderr, err := runFW(t, env, "analyze", path, "--markdown")
		if err != nil {
			t.Fatalf("analyze --markdown failed: %v\n%s", err, stderr)
		}
		if !strings.HasPrefix(out, "# Weekly Productivity Report") {
			t.Errorf("markdown header missing:\n%.200s", out)
		}
		if !strings.Contains(out, "| Combined |") {
			t.Errorf("scores table missing:\n%s", out)
		}
	})

	t.Run("analyze skips malformed rows", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, fixtureBroken)

		out, stderr, err := runFW(t, env, "analyze", path)
		if err != nil {
			t.Fatalf("analyze failed: %v\n%s", err, stderr)
		}
		if !strings.Contains(out, "1 rows skipped") {
			t.Errorf("skipped row count missing:\n%s", out)
		}
	})

	t.Run("analyze empty export fails", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, "timestamp,duration,app,title\n")

		_, stderr, err := runFW(t, env, "analyze", path)
		if err == nil {
			t.Fatal("expected failure for export with no usable rows")
		}
		if !strings.Contains(stderr, "no usable data") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("trends after repeated runs", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, fixtureWeek)

		for i := 0; i < 2; i++ {
			if _, stderr, err := runFW(t, env, "analyze", path); err != nil {
				t.Fatalf("analyze run %d failed: %v\n%s", i, err, stderr)
			}
		}

		out, stderr, err := runFW(t, env, "trends")
		if err != nil {
			t.Fatalf("trends failed: %v\n%s", err, stderr)
		}
		if !strings.Contains(out, "Recent Runs") {
			t.Errorf("trends output missing runs:\n%s", out)
		}
		if !strings.Contains(out, "Direction") {
			t.Errorf("trends output missing direction:\n%s", out)
		}
	})

	t.Run("no-history flag skips recording", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, fixtureWeek)

		if _, stderr, err := runFW(t, env, "analyze", path, "--no-history"); err != nil {
			t.Fatalf("analyze failed: %v\n%s", err, stderr)
		}

		out, stderr, err := runFW(t, env, "trends")
		if err != nil {
			t.Fatalf("trends failed: %v\n%s", err, stderr)
		}
		if !strings.Contains(out, "No runs recorded") {
			t.Errorf("expected empty history:\n%s\n%s", out, stderr)
		}
	})

	t.Run("init-config then check", func(t *testing.T) {
		env := isolatedEnv(t)

		out, stderr, err := runFW(t, env, "init-config")
		if err != nil {
			t.Fatalf("init-config failed: %v\n%s", err, stderr)
		}
		if !strings.Contains(out, "config.toml") {
			t.Errorf("init-config output = %q", out)
		}

		out, stderr, err = runFW(t, env, "check")
		if err != nil {
			t.Fatalf("check failed: %v\nstdout:\n%s\nstderr:\n%s", err, out, stderr)
		}
		for _, want := range []string{"fw check", "config", "rules", "detector", "history"} {
			if !strings.Contains(out, want) {
				t.Errorf("check output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("custom config changes classification", func(t *testing.T) {
		env := isolatedEnv(t)
		path := writeFixture(t, fixtureWeek)

		cfgPath := filepath.Join(t.TempDir(), "config.toml")
		cfg := `
[detector]
terminal_apps = ["Terminal"]
browser_apps = ["Safari"]

[[rules]]
name = "editing"
weight = 1.0
apps = ["Code"]

[[rules]]
name = "shell"
weight = 0.9
apps = ["Terminal"]

[[rules]]
name = "chat"
weight = -0.3
apps = ["Telegram"]
`
		if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
			t.Fatal(err)
		}

		out, stderr, err := runFW(t, env, "analyze", path, "--config", cfgPath)
		if err != nil {
			t.Fatalf("analyze failed: %v\n%s", err, stderr)
		}
		if !strings.Contains(out, "editing") {
			t.Errorf("custom category missing:\n%s", out)
		}
	})

	t.Run("version", func(t *testing.T) {
		out, _, err := runFW(t, nil, "version")
		if err != nil {
			t.Fatalf("version failed: %v", err)
		}
		if !strings.Contains(out, "focusweek") {
			t.Errorf("version output = %q", out)
		}
	})

	t.Run("unknown command fails", func(t *testing.T) {
		_, _, err := runFW(t, nil, "frobnicate")
		if err == nil {
			t.Fatal("expected non-zero exit for unknown command")
		}
	})
}
