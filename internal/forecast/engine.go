package forecast

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ForecastResult is the projection for one stream.
type ForecastResult struct {
	Stream    Stream           `json:"stream"`
	Model     string           `json:"model"`
	Real      AggregatedSeries `json:"real"`
	Predicted AggregatedSeries `json:"predicted"`
	Metrics   *FitMetrics      `json:"metrics"`
	Outcome   Outcome          `json:"outcome"`
	Reason    string           `json:"reason,omitempty"`
}

// Engine fits models to aggregated series. The zero value is ready to use.
type Engine struct {
	// MovingAverageWindow overrides the window of MovingAverage specs that do
	// not carry one. Zero means DefaultMovingAverageWindow.
	MovingAverageWindow int
}

// NewEngine returns an Engine with the given default moving-average window.
func NewEngine(movingAverageWindow int) *Engine {
	return &Engine{MovingAverageWindow: movingAverageWindow}
}

// Forecast fits spec to series and projects horizon buckets past the last one.
// It never panics and never returns an error; degenerate inputs are reported
// through the Outcome of the result.
func (e *Engine) Forecast(series AggregatedSeries, spec ModelSpec, horizon int) ForecastResult {
	if spec == nil {
		spec = Unknown{}
	}
	res := ForecastResult{
		Stream:    series.Stream,
		Model:     spec.Name(),
		Real:      series,
		Predicted: AggregatedSeries{Stream: series.Stream, Period: series.Period, Buckets: []Bucket{}},
		Outcome:   OutcomeOK,
	}
	if res.Real.Buckets == nil {
		res.Real.Buckets = []Bucket{}
	}

	n := series.Len()
	if n == 0 {
		res.Outcome = OutcomeEmpty
		res.Reason = "no aggregated data"
		return res
	}
	if horizon < 0 {
		horizon = 0
	}

	y := series.Totals()
	var values []float64

	switch m := spec.(type) {
	case Linear:
		values = e.fitLinear(&res, y, horizon)
	case Polynomial:
		values = e.fitPolynomial(&res, y, m.Degree, horizon)
	case MovingAverage:
		values = e.movingAverage(y, m.Window, horizon)
	default:
		res.Outcome = OutcomeUnknownModel
		res.Reason = fmt.Sprintf("unknown model type %q, forecasting zeros", spec.Name())
		values = make([]float64, horizon)
	}

	last, _ := series.Last()
	res.Predicted.Buckets = projectBuckets(series.Period, last.Start, values)
	return res
}

func (e *Engine) fitLinear(res *ForecastResult, y []float64, horizon int) []float64 {
	n := len(y)
	if n < 2 {
		// One point: flat line through it.
		fit := polyFit{coef: []float64{y[0], 0}}
		res.Outcome = OutcomeDegraded
		res.Reason = "linear fit needs at least 2 buckets, using a flat line through the only value"
		m := Evaluate(y, fit.fitted(n))
		res.Metrics = &m
		return fit.project(n, horizon)
	}
	fit, err := leastSquares(y, 1)
	if err != nil {
		return e.flatFallback(res, y, horizon, fmt.Sprintf("linear fit failed: %v", err))
	}
	m := Evaluate(y, fit.fitted(n))
	res.Metrics = &m
	return fit.project(n, horizon)
}

func (e *Engine) fitPolynomial(res *ForecastResult, y []float64, degree, horizon int) []float64 {
	n := len(y)
	if degree < 1 {
		v := e.fitLinear(res, y, horizon)
		res.Outcome = OutcomeDegraded
		res.Reason = fmt.Sprintf("polynomial degree %d is not supported, used linear", degree)
		return v
	}
	if n < degree+1 {
		v := e.fitLinear(res, y, horizon)
		res.Outcome = OutcomeDegraded
		res.Reason = fmt.Sprintf("polynomial degree %d needs at least %d buckets, got %d, used linear", degree, degree+1, n)
		return v
	}
	fit, err := leastSquares(y, degree)
	if err != nil {
		v := e.fitLinear(res, y, horizon)
		res.Outcome = OutcomeDegraded
		res.Reason = fmt.Sprintf("polynomial degree %d fit failed (%v), used linear", degree, err)
		return v
	}
	m := Evaluate(y, fit.fitted(n))
	res.Metrics = &m
	return fit.project(n, horizon)
}

// flatFallback forecasts the series mean when even a straight line could not
// be fitted.
func (e *Engine) flatFallback(res *ForecastResult, y []float64, horizon int, reason string) []float64 {
	mean := stat.Mean(y, nil)
	fitted := make([]float64, len(y))
	for i := range fitted {
		fitted[i] = mean
	}
	m := Evaluate(y, fitted)
	res.Metrics = &m
	res.Outcome = OutcomeDegraded
	res.Reason = reason
	return repeat(mean, horizon)
}

func (e *Engine) movingAverage(y []float64, window, horizon int) []float64 {
	if window <= 0 {
		window = e.MovingAverageWindow
	}
	if window <= 0 {
		window = DefaultMovingAverageWindow
	}
	if window > len(y) {
		window = len(y)
	}
	return repeat(stat.Mean(y[len(y)-window:], nil), horizon)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// projectBuckets dates forecast values: the first lands the day after the last
// real bucket start, each following one a full period later.
func projectBuckets(period Period, lastStart time.Time, values []float64) []Bucket {
	out := make([]Bucket, len(values))
	first := lastStart.AddDate(0, 0, 1)
	for i, v := range values {
		out[i] = Bucket{Start: period.Step(first, i), Total: v}
	}
	return out
}
