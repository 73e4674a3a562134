package financial

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Cashflow nets revenue against expense for every bucket in which either
// stream has data.
func (s *Service) Cashflow(ctx context.Context, q ChartQuery) (*CashflowReport, error) {
	snap, err := s.resolve(ctx, q.Version)
	if err != nil {
		return nil, err
	}
	revenue, expense := s.aggregate(snap, q)

	type pair struct{ rev, exp decimal.Decimal }
	byStart := make(map[time.Time]*pair)
	get := func(t time.Time) *pair {
		p, ok := byStart[t]
		if !ok {
			p = &pair{}
			byStart[t] = p
		}
		return p
	}
	for _, b := range revenue.Buckets {
		p := get(b.Start)
		p.rev = p.rev.Add(decimal.NewFromFloat(b.Total))
	}
	for _, b := range expense.Buckets {
		p := get(b.Start)
		p.exp = p.exp.Add(decimal.NewFromFloat(b.Total))
	}

	starts := make([]time.Time, 0, len(byStart))
	for t := range byStart {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	report := &CashflowReport{
		Snapshot: snap.Meta(),
		Period:   revenue.Period,
		Buckets:  make([]CashflowBucket, 0, len(starts)),
	}
	var totalRev, totalExp decimal.Decimal
	layout := revenue.Period.LabelLayout()
	for _, t := range starts {
		p := byStart[t]
		net := p.rev.Sub(p.exp)
		report.Buckets = append(report.Buckets, CashflowBucket{
			Label:   t.Format(layout),
			Revenue: p.rev.InexactFloat64(),
			Expense: p.exp.InexactFloat64(),
			Net:     net.InexactFloat64(),
			Margin:  margin(net, p.rev),
		})
		totalRev = totalRev.Add(p.rev)
		totalExp = totalExp.Add(p.exp)
	}

	totalNet := totalRev.Sub(totalExp)
	report.TotalRevenue = totalRev.InexactFloat64()
	report.TotalExpense = totalExp.InexactFloat64()
	report.TotalNet = totalNet.InexactFloat64()
	report.NetMargin = margin(totalNet, totalRev)
	return report, nil
}

func margin(net, revenue decimal.Decimal) float64 {
	if !revenue.IsPositive() {
		return 0
	}
	return net.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
