// Package export reads desktop activity-tracker CSV exports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Event is one focus-change record from the tracker export.
type Event struct {
	App      string
	Title    string
	Start    time.Time
	Duration time.Duration
}

// End returns the event's end time.
func (e Event) End() time.Time {
	return e.Start.Add(e.Duration)
}

// Warning records a skipped input row.
type Warning struct {
	Row    int    // 1-based data row index (header excluded)
	Reason string
}

// Result holds parsed events plus any per-row warnings.
type Result struct {
	Events   []Event
	Warnings []Warning
	Total    int // rows seen, valid or not
}

// ReadFile reads a CSV export. Files ending in .zst are decompressed
// transparently (trackers archive old exports with zstd).
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		return Read(dec)
	}

	return Read(f)
}

// Read parses CSV event records from a reader. The first row is a header
// naming at least "app" and "timestamp" columns; "title" and "duration" are
// optional. Malformed rows are skipped and accumulated as warnings. Zero
// valid rows is an error.
func Read(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, validated per row below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := columnIndex(header)
	if cols.app < 0 || cols.timestamp < 0 {
		return nil, fmt.Errorf("header missing required columns (have %q, need app and timestamp)",
			strings.Join(header, ","))
	}

	res := &Result{}
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Row: row, Reason: err.Error()})
			res.Total++
			continue
		}
		res.Total++

		ev, reason := parseRow(record, cols)
		if reason != "" {
			res.Warnings = append(res.Warnings, Warning{Row: row, Reason: reason})
			continue
		}
		res.Events = append(res.Events, ev)
	}

	if len(res.Events) == 0 {
		return nil, fmt.Errorf("no usable data: %d rows, %d skipped", res.Total, len(res.Warnings))
	}

	return res, nil
}

type columns struct {
	timestamp, duration, app, title int
}

func columnIndex(header []string) columns {
	c := columns{timestamp: -1, duration: -1, app: -1, title: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "start":
			c.timestamp = i
		case "duration":
			c.duration = i
		case "app", "application", "executable":
			c.app = i
		case "title", "window_title":
			c.title = i
		}
	}
	return c
}

// parseRow converts one CSV record to an Event. Returns a non-empty reason
// when the row must be skipped.
func parseRow(record []string, cols columns) (Event, string) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	app := field(cols.app)
	if app == "" {
		return Event{}, "missing app"
	}

	tsRaw := field(cols.timestamp)
	if tsRaw == "" {
		return Event{}, "missing timestamp"
	}
	ts, err := parseTimestamp(tsRaw)
	if err != nil {
		return Event{}, fmt.Sprintf("bad timestamp %q", tsRaw)
	}

	var dur time.Duration
	if raw := field(cols.duration); raw != "" {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil || secs < 0 {
			return Event{}, fmt.Sprintf("bad duration %q", raw)
		}
		dur = time.Duration(secs * float64(time.Second))
	}

	return Event{
		App:      app,
		Title:    field(cols.title),
		Start:    ts,
		Duration: dur,
	}, ""
}

// parseTimestamp accepts RFC3339 variants the trackers emit, including a
// trailing Z and fractional seconds.
func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
