package forecast

import (
	"fmt"
	"strings"
	"time"
)

// Dated is anything that sits on a calendar date: raw points and buckets.
type Dated interface {
	Date() time.Time
}

// DateRange is an inclusive calendar window. A range with either bound missing
// does not filter.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// IsSet reports whether both bounds are present.
func (r DateRange) IsSet() bool { return r.Start != nil && r.End != nil }

// Contains reports whether the calendar date of t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.IsSet() {
		return true
	}
	d := civilDate(t)
	return !d.Before(civilDate(*r.Start)) && !d.After(civilDate(*r.End))
}

// ParseDateRange builds a DateRange from optional YYYY-MM-DD strings. Blank
// strings leave the bound unset.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return DateRange{}, fmt.Errorf("start_date %q: %w", start, ErrInvalidDate)
		}
		r.Start = &t
	}
	if e := strings.TrimSpace(end); e != "" {
		t, err := time.Parse("2006-01-02", e)
		if err != nil {
			return DateRange{}, fmt.Errorf("end_date %q: %w", end, ErrInvalidDate)
		}
		r.End = &t
	}
	return r, nil
}

// FilterRange keeps the items whose calendar date falls inside r. The result is
// always a fresh slice.
func FilterRange[T Dated](items []T, r DateRange) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if r.Contains(it.Date()) {
			out = append(out, it)
		}
	}
	return out
}

// FilterRaw applies FilterRange to a RawSeries.
func FilterRaw(s RawSeries, r DateRange) RawSeries {
	return RawSeries{Stream: s.Stream, Points: FilterRange(s.Points, r)}
}

// FilterAggregated applies FilterRange to an AggregatedSeries.
func FilterAggregated(s AggregatedSeries, r DateRange) AggregatedSeries {
	return AggregatedSeries{Stream: s.Stream, Period: s.Period, Buckets: FilterRange(s.Buckets, r)}
}
