package loops

import (
	"testing"
	"time"

	"github.com/johns/focusweek/internal/category"
	"github.com/johns/focusweek/internal/timeline"
)

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// alternate builds a segment sequence flipping between two apps, one segment
// every `step`, `pairs` times each.
func alternate(appA, appB string, rules category.Ruleset, pairs int, step time.Duration) []timeline.Segment {
	var segs []timeline.Segment
	cur := t0
	for i := 0; i < pairs; i++ {
		for _, app := range []string{appA, appB} {
			name, w := rules.Classify(app, "")
			segs = append(segs, timeline.Segment{
				App: app, Category: name, Weight: w,
				Start: cur, End: cur.Add(step),
			})
			cur = cur.Add(step)
		}
	}
	return segs
}

func TestSwitches_CountsTransitions(t *testing.T) {
	rules := category.Default()
	segs := alternate("Code", "Terminal", rules, 3, time.Minute)
	sw := Switches(segs)
	if len(sw) != 5 {
		t.Fatalf("expected 5 switches for 6 alternating segments, got %d", len(sw))
	}
	if sw[0].From != 0 || sw[0].To != 1 {
		t.Errorf("first switch = %+v", sw[0])
	}
}

func TestSwitches_NoSwitchWithinSameApp(t *testing.T) {
	segs := []timeline.Segment{
		{App: "Code", Start: t0, End: t0.Add(time.Minute)},
		{App: "Code", Category: "x", Start: t0.Add(time.Minute), End: t0.Add(2 * time.Minute)},
	}
	if sw := Switches(segs); len(sw) != 0 {
		t.Errorf("expected no switches, got %d", len(sw))
	}
}

func TestDetect_ThresholdBoundary(t *testing.T) {
	rules := category.Default()
	opts := DefaultOptions()
	opts.MinCount = 4

	// 2 pairs of A/B segments -> 3 switches: below threshold.
	segs := alternate("Code", "Safari", rules, 2, time.Minute)
	if loops := Detect(segs, rules, opts); len(loops) != 0 {
		t.Errorf("minCount-1 switches must not qualify, got %d loops", len(loops))
	}

	// 5 switches: qualifies.
	segs = alternate("Code", "Safari", rules, 3, time.Minute)
	loops := Detect(segs, rules, opts)
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if loops[0].Count != 5 {
		t.Errorf("count = %d, want 5", loops[0].Count)
	}
}

func TestDetect_ExactMinCountQualifies(t *testing.T) {
	rules := category.Default()
	opts := DefaultOptions()
	opts.MinCount = 5

	segs := alternate("Code", "Safari", rules, 3, time.Minute) // 5 switches
	loops := Detect(segs, rules, opts)
	if len(loops) != 1 || loops[0].Count != 5 {
		t.Fatalf("exactly minCount switches must qualify, got %+v", loops)
	}
}

func TestDetect_SlowFlappingExcluded(t *testing.T) {
	rules := category.Default()
	opts := DefaultOptions()
	opts.Window = 5 * time.Minute

	// Alternating once an hour: legitimate back-and-forth, not a loop.
	segs := alternate("Code", "Safari", rules, 4, time.Hour)
	if loops := Detect(segs, rules, opts); len(loops) != 0 {
		t.Errorf("hourly switching qualified as a death loop: %+v", loops)
	}
}

func TestDetect_ProductiveVerdict(t *testing.T) {
	rules := category.Default()
	segs := alternate("Code", "Cursor", rules, 3, time.Minute)
	loops := Detect(segs, rules, DefaultOptions())
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if loops[0].Verdict != VerdictProductive {
		t.Errorf("verdict = %s, want productive", loops[0].Verdict)
	}
}

func TestDetect_DistractingVerdict(t *testing.T) {
	rules := category.Default()
	segs := alternate("Code", "Telegram", rules, 3, time.Minute)
	loops := Detect(segs, rules, DefaultOptions())
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	// Telegram is communication_personal (0.1): positive, so mixed.
	if loops[0].Verdict != VerdictMixed {
		t.Errorf("verdict = %s, want mixed", loops[0].Verdict)
	}

	segs = alternate("Code", "Netflix", rules, 3, time.Minute)
	loops = Detect(segs, rules, DefaultOptions())
	if len(loops) != 1 || loops[0].Verdict != VerdictDistracting {
		t.Fatalf("Netflix pair: got %+v, want distracting", loops)
	}
}

func TestDetect_AIAssistedVerdict(t *testing.T) {
	rules := category.Default()
	segs := alternate("Terminal", "Google Chrome", rules, 3, time.Minute)
	for i := range segs {
		if segs[i].App == "Terminal" {
			segs[i].AIAssisted = true
			segs[i].Agent = "claude"
		}
	}
	loops := Detect(segs, rules, DefaultOptions())
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if loops[0].Verdict != VerdictAIAssisted {
		t.Errorf("verdict = %s, want ai_assisted", loops[0].Verdict)
	}
	if loops[0].AISwitches != loops[0].Count {
		t.Errorf("AISwitches = %d, want %d", loops[0].AISwitches, loops[0].Count)
	}
}

func TestDetect_AIExemptionRequiresTerminalBrowserPair(t *testing.T) {
	rules := category.Default()
	// AI-tagged terminal flapping against an IDE is not the exempted shape.
	segs := alternate("Terminal", "Code", rules, 3, time.Minute)
	for i := range segs {
		if segs[i].App == "Terminal" {
			segs[i].AIAssisted = true
		}
	}
	loops := Detect(segs, rules, DefaultOptions())
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if loops[0].Verdict != VerdictProductive {
		t.Errorf("verdict = %s, want productive (both deep_work)", loops[0].Verdict)
	}
}

func TestDetect_AIMinorityFallsThrough(t *testing.T) {
	rules := category.Default()
	segs := alternate("Terminal", "Google Chrome", rules, 3, time.Minute)
	// Tag only the first terminal segment: 1 of 5 switches touches it.
	segs[0].AIAssisted = true
	loops := Detect(segs, rules, DefaultOptions())
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if loops[0].Verdict == VerdictAIAssisted {
		t.Error("minority AI switches must not earn the exemption")
	}
	if loops[0].AISwitches != 1 {
		t.Errorf("AISwitches = %d, want 1", loops[0].AISwitches)
	}
}

func TestDetect_NegativeAppOutsideAIPairIsDistracting(t *testing.T) {
	rules := category.Default()
	// Netflix↔Terminal with AI-tagged terminal: no browser member, so the
	// exemption does not apply and the negative weight wins.
	segs := alternate("Terminal", "Netflix", rules, 3, time.Minute)
	for i := range segs {
		if segs[i].App == "Terminal" {
			segs[i].AIAssisted = true
		}
	}
	loops := Detect(segs, rules, DefaultOptions())
	if len(loops) != 1 || loops[0].Verdict != VerdictDistracting {
		t.Fatalf("got %+v, want distracting", loops)
	}
}

func TestDetect_SortedByCountDesc(t *testing.T) {
	rules := category.Default()
	segs := alternate("Code", "Safari", rules, 5, time.Minute)
	more := alternate("Slack", "Mail", rules, 3, time.Minute)
	// Shift the second block after the first to keep ordering valid.
	offset := segs[len(segs)-1].End.Sub(t0)
	for i := range more {
		more[i].Start = more[i].Start.Add(offset)
		more[i].End = more[i].End.Add(offset)
	}
	loops := Detect(append(segs, more...), rules, DefaultOptions())
	if len(loops) < 2 {
		t.Fatalf("expected 2 loops, got %d", len(loops))
	}
	if loops[0].Count < loops[1].Count {
		t.Errorf("loops not sorted by count: %d before %d", loops[0].Count, loops[1].Count)
	}
}

func TestDetect_Empty(t *testing.T) {
	if loops := Detect(nil, category.Default(), DefaultOptions()); len(loops) != 0 {
		t.Errorf("expected no loops for empty timeline, got %d", len(loops))
	}
}
