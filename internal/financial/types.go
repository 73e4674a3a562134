package financial

import (
	"time"

	"github.com/ignite/cashflow-forecast/internal/forecast"
	"github.com/ignite/cashflow-forecast/internal/snapshot"
)

// ChartQuery selects the snapshot, bucket size and date window for a chart.
type ChartQuery struct {
	Period forecast.Period
	Range  forecast.DateRange
	// Version pins a snapshot; zero means latest.
	Version int64
}

// PredictionQuery extends ChartQuery with the model and horizon.
type PredictionQuery struct {
	ChartQuery
	Model   forecast.ModelSpec
	Horizon int
}

// ChartResult is the chart payload plus the snapshot it was built from.
type ChartResult struct {
	Snapshot snapshot.Meta         `json:"snapshot"`
	Payload  forecast.ChartPayload `json:"payload"`
}

// PredictionResult is the forecast payload plus the per-stream results.
type PredictionResult struct {
	Snapshot snapshot.Meta            `json:"snapshot"`
	Payload  forecast.ForecastPayload `json:"payload"`
	Revenue  forecast.ForecastResult  `json:"-"`
	Expense  forecast.ForecastResult  `json:"-"`
}

// SummaryReport is the debug view of a snapshot.
type SummaryReport struct {
	Snapshot    snapshot.Meta          `json:"snapshot"`
	Revenue     forecast.SeriesSummary `json:"revenue"`
	Expense     forecast.SeriesSummary `json:"expense"`
	LastRefresh *time.Time             `json:"last_refresh,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
}

// CashflowBucket is one period of the net cashflow report.
type CashflowBucket struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
	// Margin is Net as a percentage of Revenue, zero when there was no revenue.
	Margin float64 `json:"margin"`
}

// CashflowReport nets the two streams per bucket.
type CashflowReport struct {
	Snapshot     snapshot.Meta    `json:"snapshot"`
	Period       forecast.Period  `json:"period"`
	Buckets      []CashflowBucket `json:"buckets"`
	TotalRevenue float64          `json:"total_revenue"`
	TotalExpense float64          `json:"total_expense"`
	TotalNet     float64          `json:"total_net"`
	NetMargin    float64          `json:"net_margin"`
}
