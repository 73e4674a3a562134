package forecast

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Stream names one of the two financial inputs.
type Stream string

const (
	StreamRevenue Stream = "revenue"
	StreamExpense Stream = "expense"
)

// RawRecord is a record as delivered by ingestion. A nil Value marks a value
// that could not be read.
type RawRecord struct {
	Value     *float64 `json:"value"`
	Timestamp string   `json:"timestamp"`
}

// TimeSeriesPoint is a single parsed observation.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Date returns the calendar date of the point.
func (p TimeSeriesPoint) Date() time.Time { return civilDate(p.Timestamp) }

// RawSeries is an ascending, possibly duplicate-keyed sequence of points.
type RawSeries struct {
	Stream Stream            `json:"stream"`
	Points []TimeSeriesPoint `json:"points"`
}

// Len returns the number of points.
func (s RawSeries) Len() int { return len(s.Points) }

// Clone returns a deep copy of the series.
func (s RawSeries) Clone() RawSeries {
	out := RawSeries{Stream: s.Stream, Points: make([]TimeSeriesPoint, len(s.Points))}
	copy(out.Points, s.Points)
	return out
}

// NormalizeReport counts what Normalize kept and dropped.
type NormalizeReport struct {
	Input   int `json:"input"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

// minEpochMillisDigits rejects short digit strings that would otherwise land
// in early 1970 as epoch milliseconds.
const minEpochMillisDigits = 12

// ParseTimestamp accepts the ISO-8601 shapes the upstream APIs emit, plus
// epoch milliseconds as a digit string of at least minEpochMillisDigits.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if len(raw) >= minEpochMillisDigits && isDigits(raw) {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Normalize parses records into a RawSeries sorted by timestamp. Records with an
// unreadable timestamp or value are dropped and counted; the batch never fails.
func Normalize(stream Stream, records []RawRecord) (RawSeries, NormalizeReport) {
	report := NormalizeReport{Input: len(records)}
	points := make([]TimeSeriesPoint, 0, len(records))

	for _, rec := range records {
		if rec.Value == nil || math.IsNaN(*rec.Value) || math.IsInf(*rec.Value, 0) {
			report.Dropped++
			continue
		}
		ts, ok := ParseTimestamp(rec.Timestamp)
		if !ok {
			report.Dropped++
			continue
		}
		points = append(points, TimeSeriesPoint{Timestamp: ts, Value: *rec.Value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	report.Kept = len(points)

	return RawSeries{Stream: stream, Points: points}, report
}

// civilDate truncates t to midnight UTC of its calendar date in t's own location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
