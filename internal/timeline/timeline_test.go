package timeline

import (
	"testing"
	"time"

	"github.com/johns/focusweek/internal/category"
	"github.com/johns/focusweek/internal/export"
)

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func ev(app, title string, offset, dur time.Duration) export.Event {
	return export.Event{App: app, Title: title, Start: t0.Add(offset), Duration: dur}
}

func TestBuild_SortsAndClassifies(t *testing.T) {
	events := []export.Event{
		ev("Terminal", "npm test", 30*time.Minute, 5*time.Minute),
		ev("Code", "main.go", 0, 30*time.Minute),
	}
	segs := Build(events, category.Default())
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].App != "Code" || segs[1].App != "Terminal" {
		t.Errorf("wrong order: %s, %s", segs[0].App, segs[1].App)
	}
	if segs[0].Category != "deep_work" || segs[0].Weight != 1.0 {
		t.Errorf("segment 0 = (%s, %v)", segs[0].Category, segs[0].Weight)
	}
}

func TestBuild_DropsZeroDuration(t *testing.T) {
	events := []export.Event{
		ev("Code", "a", 0, 10*time.Minute),
		ev("Finder", "", 10*time.Minute, 0),
		ev("Terminal", "b", 11*time.Minute, time.Minute),
	}
	segs := Build(events, category.Default())
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	for _, s := range segs {
		if s.App == "Finder" {
			t.Error("zero-duration event survived")
		}
	}
}

func TestBuild_MergesAdjacentSameAppCategory(t *testing.T) {
	// Two Code events separated by sub-second jitter merge into one segment.
	events := []export.Event{
		ev("Code", "main.go", 0, 10*time.Minute),
		{App: "Code", Title: "main.go", Start: t0.Add(10*time.Minute + 500*time.Millisecond), Duration: 5 * time.Minute},
	}
	segs := Build(events, category.Default())
	if len(segs) != 1 {
		t.Fatalf("expected 1 merged segment, got %d", len(segs))
	}
	// The 500ms jitter gap is not tracked time: the merged segment covers
	// exactly the two event durations.
	wantEnd := t0.Add(15 * time.Minute)
	if !segs[0].End.Equal(wantEnd) {
		t.Errorf("merged end = %v, want %v", segs[0].End, wantEnd)
	}
}

func TestBuild_MergeDoesNotAbsorbGap(t *testing.T) {
	events := []export.Event{
		ev("Code", "main.go", 0, 10*time.Minute),
		{App: "Code", Title: "main.go", Start: t0.Add(10*time.Minute + 500*time.Millisecond), Duration: 5 * time.Minute},
	}
	var raw time.Duration
	for _, e := range events {
		raw += e.Duration
	}
	segs := Build(events, category.Default())
	if got := TotalDuration(segs); got != raw {
		t.Errorf("merged total = %v, want exactly %v", got, raw)
	}
}

func TestBuild_ChainedJitterMergeConserves(t *testing.T) {
	// Three events in the same app, each separated by sub-second jitter.
	events := []export.Event{
		ev("Code", "a.go", 0, time.Minute),
		{App: "Code", Title: "b.go", Start: t0.Add(time.Minute + 300*time.Millisecond), Duration: time.Minute},
		{App: "Code", Title: "c.go", Start: t0.Add(2*time.Minute + 700*time.Millisecond), Duration: time.Minute},
	}
	segs := Build(events, category.Default())
	if len(segs) != 1 {
		t.Fatalf("expected full merge, got %d segments", len(segs))
	}
	if got := TotalDuration(segs); got != 3*time.Minute {
		t.Errorf("merged total = %v, want 3m", got)
	}
}

func TestBuild_NoMergeAcrossLargeGap(t *testing.T) {
	events := []export.Event{
		ev("Code", "main.go", 0, 10*time.Minute),
		ev("Code", "main.go", 20*time.Minute, 5*time.Minute),
	}
	segs := Build(events, category.Default())
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments across a 10m gap, got %d", len(segs))
	}
}

func TestBuild_NoConsecutiveSameAppCategoryWithinTolerance(t *testing.T) {
	events := []export.Event{
		ev("Code", "a.go", 0, time.Minute),
		ev("Code", "b.go", time.Minute, time.Minute),
		ev("Code", "c.go", 2*time.Minute, time.Minute),
	}
	segs := Build(events, category.Default())
	if len(segs) != 1 {
		t.Fatalf("expected full merge, got %d segments", len(segs))
	}
}

func TestBuild_OverlapKeepsLongerEvent(t *testing.T) {
	// Duplicate tracker rows for the same instant: longer one wins.
	events := []export.Event{
		ev("Code", "real", 0, 10*time.Minute),
		ev("Safari", "dupe", 0, time.Minute),
	}
	segs := Build(events, category.Default())
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].App != "Code" {
		t.Errorf("kept %s, want the longer Code event", segs[0].App)
	}
}

func TestBuild_OverlapLaterLongerReplaces(t *testing.T) {
	events := []export.Event{
		ev("Safari", "dupe", 0, time.Minute),
		ev("Code", "real", 0, 10*time.Minute),
	}
	segs := Build(events, category.Default())
	if len(segs) != 1 || segs[0].App != "Code" {
		t.Fatalf("expected single Code segment, got %+v", segs)
	}
}

func TestBuild_ConservesDuration(t *testing.T) {
	events := []export.Event{
		ev("Code", "a", 0, 10*time.Minute),
		ev("Code", "a", 5*time.Minute, 2*time.Minute), // overlap, discarded
		ev("Terminal", "b", 30*time.Minute, 5*time.Minute),
		ev("Safari", "c", 40*time.Minute, 0), // dropped
	}
	var raw time.Duration
	for _, e := range events {
		raw += e.Duration
	}
	segs := Build(events, category.Default())
	if got := TotalDuration(segs); got > raw {
		t.Errorf("normalization created time: %v > %v", got, raw)
	}
}

func TestBuild_StableSortPreservesTieOrder(t *testing.T) {
	// Same start, same duration: input order decides which is "prev" in the
	// overlap pass, and the first stays since neither is strictly longer.
	events := []export.Event{
		ev("Code", "first", 0, time.Minute),
		ev("Safari", "second", 0, time.Minute),
	}
	segs := Build(events, category.Default())
	if len(segs) != 1 || segs[0].App != "Code" {
		t.Fatalf("expected first-declared event to survive, got %+v", segs)
	}
}

func TestBuild_Empty(t *testing.T) {
	segs := Build(nil, category.Default())
	if len(segs) != 0 {
		t.Errorf("expected no segments, got %d", len(segs))
	}
	if TotalDuration(segs) != 0 {
		t.Error("nonzero duration for empty timeline")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	events := []export.Event{
		ev("Code", "main.go", 0, 30*time.Minute),
		ev("Terminal", "npm test", 30*time.Minute, 5*time.Minute),
		ev("Safari", "GitHub", 35*time.Minute, 2*time.Minute),
	}
	a := Build(events, category.Default())
	b := Build(events, category.Default())
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("segment %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
