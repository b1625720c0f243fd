// Package timeline reconstructs an ordered segment sequence from raw
// tracker events.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/johns/focusweek/internal/category"
	"github.com/johns/focusweek/internal/export"
)

// mergeTolerance treats sub-second tracker jitter between adjacent events
// as continuous work.
const mergeTolerance = time.Second

// Segment is a contiguous block of time attributed to one (app, category).
type Segment struct {
	Category   string
	Weight     float64
	App        string
	Title      string
	Start      time.Time
	End        time.Time
	AIAssisted bool
	Agent      string
}

// Duration returns the segment's length.
func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Build converts raw events into an ordered, non-overlapping segment
// sequence. Zero-duration events are dropped. Overlapping events (duplicate
// tracker rows for the same instant) are resolved by keeping the
// longer-duration event and discarding the shorter; this is a deliberate
// policy, not interpolation. Adjacent events merge into one segment when
// app and category match and the gap is within mergeTolerance; the merged
// segment grows by the event's duration only, so jitter gaps are never
// counted as tracked time.
//
// The result is guaranteed strictly ordered by start time. No two
// consecutive segments share both app and category.
func Build(events []export.Event, rules category.Ruleset) []Segment {
	kept := make([]export.Event, 0, len(events))
	for _, e := range events {
		if e.Duration <= 0 {
			continue
		}
		kept = append(kept, e)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start.Before(kept[j].Start)
	})

	// Overlap resolution: longer duration wins, shorter is a duplicate.
	deduped := kept[:0]
	for _, e := range kept {
		if len(deduped) > 0 {
			prev := deduped[len(deduped)-1]
			if e.Start.Before(prev.End()) {
				if e.Duration > prev.Duration {
					deduped[len(deduped)-1] = e
				}
				continue
			}
		}
		deduped = append(deduped, e)
	}

	var segments []Segment
	var lastEnd time.Time // wall-clock end of the previous kept event
	for _, e := range deduped {
		name, weight := rules.Classify(e.App, e.Title)

		if len(segments) > 0 {
			last := &segments[len(segments)-1]
			gap := e.Start.Sub(lastEnd)
			if last.App == e.App && last.Category == name && gap <= mergeTolerance {
				last.End = last.End.Add(e.Duration)
				lastEnd = e.End()
				continue
			}
		}

		lastEnd = e.End()
		segments = append(segments, Segment{
			Category: name,
			Weight:   weight,
			App:      e.App,
			Title:    e.Title,
			Start:    e.Start,
			End:      e.End(),
		})
	}

	verifyOrdered(segments)
	return segments
}

// TotalDuration sums segment durations.
func TotalDuration(segments []Segment) time.Duration {
	var total time.Duration
	for _, s := range segments {
		total += s.Duration()
	}
	return total
}

// verifyOrdered panics if the segment sequence violates ordering. A broken
// sequence would silently corrupt every downstream score.
func verifyOrdered(segments []Segment) {
	for i := 1; i < len(segments); i++ {
		if segments[i].Start.Before(segments[i-1].End) {
			panic(fmt.Sprintf("timeline: segments out of order at %d (%s < %s)",
				i, segments[i].Start, segments[i-1].End))
		}
	}
}
