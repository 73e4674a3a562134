package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-01-05T10:30:00Z", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-05T10:30:00.123Z", time.Date(2024, 1, 5, 10, 30, 0, 123000000, time.UTC), true},
		{"2024-01-05T10:30:00", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-05 10:30:00", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"1704067200000", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"2024-13-45", time.Time{}, false},
		{"20240101", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"20241399", time.Time{}, false},
		{"101", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			}
		})
	}
}

func TestNormalize_DropsMalformedAndSorts(t *testing.T) {
	records := []RawRecord{
		{Value: f64(30), Timestamp: "2024-01-03T09:00:00Z"},
		{Value: f64(10), Timestamp: "2024-01-01T09:00:00Z"},
		{Value: nil, Timestamp: "2024-01-02T09:00:00Z"},
		{Value: f64(20), Timestamp: "not a date"},
		{Value: f64(math.NaN()), Timestamp: "2024-01-02T09:00:00Z"},
		{Value: f64(math.Inf(1)), Timestamp: "2024-01-02T09:00:00Z"},
		{Value: f64(15), Timestamp: "2024-01-02"},
	}

	series, report := Normalize(StreamRevenue, records)

	assert.Equal(t, StreamRevenue, series.Stream)
	assert.Equal(t, NormalizeReport{Input: 7, Kept: 3, Dropped: 4}, report)
	require.Len(t, series.Points, 3)
	assert.Equal(t, 10.0, series.Points[0].Value)
	assert.Equal(t, 15.0, series.Points[1].Value)
	assert.Equal(t, 30.0, series.Points[2].Value)
}

func TestNormalize_Empty(t *testing.T) {
	series, report := Normalize(StreamExpense, nil)
	assert.Equal(t, 0, series.Len())
	assert.NotNil(t, series.Points)
	assert.Equal(t, NormalizeReport{}, report)
}

func TestNormalize_KeepsDuplicateTimestamps(t *testing.T) {
	series, _ := Normalize(StreamRevenue, []RawRecord{
		{Value: f64(5), Timestamp: "2024-01-01T12:00:00Z"},
		{Value: f64(7), Timestamp: "2024-01-01T12:00:00Z"},
	})
	require.Len(t, series.Points, 2)
	assert.Equal(t, 5.0, series.Points[0].Value)
	assert.Equal(t, 7.0, series.Points[1].Value)
}

func TestRawSeriesClone(t *testing.T) {
	orig := RawSeries{Stream: StreamRevenue, Points: []TimeSeriesPoint{{Value: 1}}}
	cp := orig.Clone()
	cp.Points[0].Value = 99
	assert.Equal(t, 1.0, orig.Points[0].Value)
}

func TestPointDateUsesOwnLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	p := TimeSeriesPoint{Timestamp: time.Date(2024, 3, 1, 22, 0, 0, 0, loc)}
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.Date())
}
