package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_DuplicateDaySummed(t *testing.T) {
	series, _ := Normalize(StreamRevenue, []RawRecord{
		{Value: f64(5), Timestamp: "2024-01-01T08:00:00Z"},
		{Value: f64(7), Timestamp: "2024-01-01T19:00:00Z"},
	})

	agg := Aggregate(series, Daily)

	require.Len(t, agg.Buckets, 1)
	assert.Equal(t, day(2024, 1, 1), agg.Buckets[0].Start)
	assert.Equal(t, 12.0, agg.Buckets[0].Total)
	assert.Equal(t, 2, agg.Buckets[0].Count)
}

func TestAggregate_NoZeroFill(t *testing.T) {
	series, _ := Normalize(StreamExpense, []RawRecord{
		{Value: f64(1), Timestamp: "2024-01-01"},
		{Value: f64(2), Timestamp: "2024-01-04"},
	})

	agg := Aggregate(series, Daily)

	require.Len(t, agg.Buckets, 2)
	assert.Equal(t, day(2024, 1, 1), agg.Buckets[0].Start)
	assert.Equal(t, day(2024, 1, 4), agg.Buckets[1].Start)
}

func TestAggregate_WeeklyStartsMonday(t *testing.T) {
	series, _ := Normalize(StreamRevenue, []RawRecord{
		{Value: f64(1), Timestamp: "2024-01-01"}, // Monday
		{Value: f64(2), Timestamp: "2024-01-07"}, // Sunday, same ISO week
		{Value: f64(4), Timestamp: "2024-01-08"}, // next Monday
		{Value: f64(8), Timestamp: "2023-12-31"}, // Sunday of the previous week
	})

	agg := Aggregate(series, Weekly)

	require.Len(t, agg.Buckets, 3)
	assert.Equal(t, day(2023, 12, 25), agg.Buckets[0].Start)
	assert.Equal(t, 8.0, agg.Buckets[0].Total)
	assert.Equal(t, day(2024, 1, 1), agg.Buckets[1].Start)
	assert.Equal(t, 3.0, agg.Buckets[1].Total)
	assert.Equal(t, day(2024, 1, 8), agg.Buckets[2].Start)
	assert.Equal(t, 4.0, agg.Buckets[2].Total)
}

func TestAggregate_Monthly(t *testing.T) {
	series, _ := Normalize(StreamRevenue, []RawRecord{
		{Value: f64(10), Timestamp: "2024-02-29T23:00:00Z"},
		{Value: f64(20), Timestamp: "2024-02-01T00:00:00Z"},
		{Value: f64(5), Timestamp: "2024-04-15"},
	})

	agg := Aggregate(series, Monthly)

	require.Len(t, agg.Buckets, 2)
	assert.Equal(t, day(2024, 2, 1), agg.Buckets[0].Start)
	assert.Equal(t, 30.0, agg.Buckets[0].Total)
	assert.Equal(t, day(2024, 4, 1), agg.Buckets[1].Start)
}

func TestAggregate_ConservesTotal(t *testing.T) {
	var records []RawRecord
	var want float64
	base := time.Date(2023, 11, 20, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		v := float64((i*37)%101) + 0.1*float64(i%7)
		want += v
		ts := base.Add(time.Duration(i*17) * time.Hour)
		records = append(records, RawRecord{Value: f64(v), Timestamp: ts.Format(time.RFC3339)})
	}
	series, _ := Normalize(StreamRevenue, records)

	for _, period := range []Period{Daily, Weekly, Monthly} {
		agg := Aggregate(series, period)
		var got float64
		for i, b := range agg.Buckets {
			got += b.Total
			if i > 0 {
				assert.True(t, agg.Buckets[i-1].Start.Before(b.Start), "buckets must be strictly ascending")
			}
		}
		assert.InDelta(t, want, got, 1e-6, "period %s", period)
	}
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(RawSeries{Stream: StreamRevenue}, Monthly)
	assert.Equal(t, 0, agg.Len())
	assert.NotNil(t, agg.Buckets)
	_, ok := agg.Last()
	assert.False(t, ok)
}

func TestParsePeriod(t *testing.T) {
	for raw, want := range map[string]Period{
		"": Daily, "daily": Daily, "D": Daily,
		"weekly": Weekly, "W": Weekly,
		"Monthly": Monthly, "m": Monthly,
	} {
		got, err := ParsePeriod(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParsePeriod("hourly")
	assert.True(t, errors.Is(err, ErrUnknownPeriod))
}

func TestPeriodStep(t *testing.T) {
	start := day(2024, 1, 2)
	assert.Equal(t, day(2024, 1, 5), Daily.Step(start, 3))
	assert.Equal(t, day(2024, 1, 23), Weekly.Step(start, 3))
	assert.Equal(t, day(2024, 4, 2), Monthly.Step(start, 3))
}
