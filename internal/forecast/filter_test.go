package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func pointsAt(times ...time.Time) []TimeSeriesPoint {
	out := make([]TimeSeriesPoint, len(times))
	for i, t := range times {
		out[i] = TimeSeriesPoint{Timestamp: t, Value: float64(i + 1)}
	}
	return out
}

func TestFilterRange_InclusiveDateOnly(t *testing.T) {
	pts := pointsAt(
		time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 6, 0, 0, 1, 0, time.UTC),
	)
	start, end := day(2024, 1, 2), day(2024, 1, 5)

	got := FilterRange(pts, DateRange{Start: &start, End: &end})

	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Value)
	assert.Equal(t, 3.0, got[1].Value)
}

func TestFilterRange_MissingBoundDoesNotFilter(t *testing.T) {
	pts := pointsAt(day(2023, 1, 1), day(2024, 6, 1))
	start := day(2024, 1, 1)

	assert.Len(t, FilterRange(pts, DateRange{Start: &start}), 2)
	assert.Len(t, FilterRange(pts, DateRange{End: &start}), 2)
	assert.Len(t, FilterRange(pts, DateRange{}), 2)
}

func TestFilterRange_EmptyAndInverted(t *testing.T) {
	start, end := day(2024, 2, 1), day(2024, 1, 1)
	assert.Empty(t, FilterRange([]TimeSeriesPoint{}, DateRange{Start: &start, End: &end}))

	pts := pointsAt(day(2024, 1, 15))
	got := FilterRange(pts, DateRange{Start: &start, End: &end})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterRange_FullRangeIsIdentity(t *testing.T) {
	series, _ := Normalize(StreamRevenue, []RawRecord{
		{Value: f64(12.5), Timestamp: "2024-01-03T10:00:00Z"},
		{Value: f64(3), Timestamp: "2024-01-09T23:00:00Z"},
		{Value: f64(8), Timestamp: "2024-02-14T01:00:00Z"},
		{Value: f64(1.25), Timestamp: "2024-03-31T12:00:00Z"},
	})
	first, last := series.Points[0].Date(), series.Points[len(series.Points)-1].Date()

	for _, period := range []Period{Daily, Weekly, Monthly} {
		filtered := FilterRaw(series, DateRange{Start: &first, End: &last})
		assert.Equal(t, Aggregate(series, period), Aggregate(filtered, period), "period %s", period)
	}
}

func TestFilterAggregated(t *testing.T) {
	agg := AggregatedSeries{Stream: StreamExpense, Period: Monthly, Buckets: []Bucket{
		{Start: day(2024, 1, 1), Total: 1},
		{Start: day(2024, 2, 1), Total: 2},
		{Start: day(2024, 3, 1), Total: 3},
	}}
	start, end := day(2024, 2, 1), day(2024, 2, 29)

	got := FilterAggregated(agg, DateRange{Start: &start, End: &end})

	assert.Equal(t, Monthly, got.Period)
	require.Len(t, got.Buckets, 1)
	assert.Equal(t, 2.0, got.Buckets[0].Total)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.True(t, r.IsSet())
	assert.Equal(t, day(2024, 1, 31), *r.End)

	r, err = ParseDateRange("", "2024-01-31")
	require.NoError(t, err)
	assert.False(t, r.IsSet())

	_, err = ParseDateRange("01/02/2024", "")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}
