package forecast

import "time"

// SeriesSummary is the at-a-glance view of a raw series used for debugging
// a snapshot: how many points, over which dates, in which value range.
type SeriesSummary struct {
	Stream    Stream     `json:"stream"`
	Count     int        `json:"count"`
	FirstDate *time.Time `json:"first_date,omitempty"`
	LastDate  *time.Time `json:"last_date,omitempty"`
	MinValue  float64    `json:"min_value"`
	MaxValue  float64    `json:"max_value"`
	Total     float64    `json:"total"`
}

// Summarize computes a SeriesSummary. Points must be ascending, as produced by
// Normalize.
func Summarize(s RawSeries) SeriesSummary {
	sum := SeriesSummary{Stream: s.Stream, Count: len(s.Points)}
	if len(s.Points) == 0 {
		return sum
	}
	first := s.Points[0].Date()
	last := s.Points[len(s.Points)-1].Date()
	sum.FirstDate, sum.LastDate = &first, &last

	sum.MinValue, sum.MaxValue = s.Points[0].Value, s.Points[0].Value
	for _, p := range s.Points {
		if p.Value < sum.MinValue {
			sum.MinValue = p.Value
		}
		if p.Value > sum.MaxValue {
			sum.MaxValue = p.Value
		}
		sum.Total += p.Value
	}
	return sum
}
