package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/cashflow-forecast/internal/forecast"
)

// Source supplies raw records for both streams.
type Source interface {
	// Name identifies the source in snapshots and logs.
	Name() string
	FetchRevenue(ctx context.Context) ([]forecast.RawRecord, error)
	FetchExpenses(ctx context.Context) ([]forecast.RawRecord, error)
}

// Records is one fetch of both streams.
type Records struct {
	Revenue []forecast.RawRecord
	Expense []forecast.RawRecord
}

// FetchAll queries both streams concurrently. Either failure fails the whole
// fetch so a snapshot never mixes fresh and missing data.
func FetchAll(ctx context.Context, src Source) (*Records, error) {
	var out Records
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := src.FetchRevenue(gctx)
		if err != nil {
			return fmt.Errorf("fetch revenue from %s: %w", src.Name(), err)
		}
		out.Revenue = recs
		return nil
	})
	g.Go(func() error {
		recs, err := src.FetchExpenses(gctx)
		if err != nil {
			return fmt.Errorf("fetch expenses from %s: %w", src.Name(), err)
		}
		out.Expense = recs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
