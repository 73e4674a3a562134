// Package snapshot keeps versioned, immutable copies of the fetched ledger
// records and refreshes them from an ingest.Source.
package snapshot

import (
	"time"

	"github.com/ignite/cashflow-forecast/internal/forecast"
)

// Dropped counts records discarded during normalization, per stream.
type Dropped struct {
	Revenue int `json:"revenue"`
	Expense int `json:"expense"`
}

// Snapshot is one fetch of both streams. Stores hand out copies, so
// callers may not observe another caller's mutations.
type Snapshot struct {
	ID        string             `json:"id"`
	Version   int64              `json:"version"`
	FetchedAt time.Time          `json:"fetched_at"`
	Source    string             `json:"source"`
	Revenue   forecast.RawSeries `json:"revenue"`
	Expense   forecast.RawSeries `json:"expense"`
	Dropped   Dropped            `json:"dropped"`
}

// Meta is the snapshot without its points.
type Meta struct {
	ID           string    `json:"id"`
	Version      int64     `json:"version"`
	FetchedAt    time.Time `json:"fetched_at"`
	Source       string    `json:"source"`
	RevenueCount int       `json:"revenue_count"`
	ExpenseCount int       `json:"expense_count"`
	Dropped      Dropped   `json:"dropped"`
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Revenue = s.Revenue.Clone()
	c.Expense = s.Expense.Clone()
	return &c
}

// Meta summarizes the snapshot.
func (s *Snapshot) Meta() Meta {
	return Meta{
		ID:           s.ID,
		Version:      s.Version,
		FetchedAt:    s.FetchedAt,
		Source:       s.Source,
		RevenueCount: s.Revenue.Len(),
		ExpenseCount: s.Expense.Len(),
		Dropped:      s.Dropped,
	}
}
