package forecast

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period is the calendar width of an aggregation bucket.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod accepts daily/weekly/monthly and the short forms D/W/M. An empty
// string means Daily.
func ParsePeriod(raw string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "d", "day", "daily":
		return Daily, nil
	case "w", "week", "weekly":
		return Weekly, nil
	case "m", "month", "monthly":
		return Monthly, nil
	}
	return "", fmt.Errorf("%q: %w", raw, ErrUnknownPeriod)
}

// BucketStart returns the start of the bucket containing t.
func (p Period) BucketStart(t time.Time) time.Time {
	d := civilDate(t)
	switch p {
	case Weekly:
		// ISO weeks start on Monday.
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

// Step advances t by n bucket widths.
func (p Period) Step(t time.Time, n int) time.Time {
	switch p {
	case Weekly:
		return t.AddDate(0, 0, 7*n)
	case Monthly:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// LabelLayout is the time layout used for chart labels at this granularity.
func (p Period) LabelLayout() string {
	if p == Monthly {
		return "2006-01"
	}
	return "2006-01-02"
}

// Bucket is one aggregated period. Count is the number of source points.
type Bucket struct {
	Start time.Time `json:"start"`
	Total float64   `json:"total"`
	Count int       `json:"count"`
}

// Date returns the bucket start.
func (b Bucket) Date() time.Time { return b.Start }

// AggregatedSeries holds strictly ascending, non-empty buckets. Periods with no
// source points are absent rather than zero.
type AggregatedSeries struct {
	Stream  Stream   `json:"stream"`
	Period  Period   `json:"period"`
	Buckets []Bucket `json:"buckets"`
}

// Len returns the number of buckets.
func (s AggregatedSeries) Len() int { return len(s.Buckets) }

// Totals returns bucket totals in order.
func (s AggregatedSeries) Totals() []float64 {
	out := make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Total
	}
	return out
}

// Last returns the final bucket, if any.
func (s AggregatedSeries) Last() (Bucket, bool) {
	if len(s.Buckets) == 0 {
		return Bucket{}, false
	}
	return s.Buckets[len(s.Buckets)-1], true
}

// Aggregate sums a RawSeries into calendar buckets.
func Aggregate(s RawSeries, period Period) AggregatedSeries {
	type acc struct {
		sum   decimal.Decimal
		count int
	}
	byStart := make(map[time.Time]*acc)
	for _, p := range s.Points {
		key := period.BucketStart(p.Timestamp)
		a, ok := byStart[key]
		if !ok {
			a = &acc{sum: decimal.Zero}
			byStart[key] = a
		}
		a.sum = a.sum.Add(decimal.NewFromFloat(p.Value))
		a.count++
	}

	buckets := make([]Bucket, 0, len(byStart))
	for start, a := range byStart {
		buckets = append(buckets, Bucket{Start: start, Total: a.sum.InexactFloat64(), Count: a.count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })

	return AggregatedSeries{Stream: s.Stream, Period: period, Buckets: buckets}
}
