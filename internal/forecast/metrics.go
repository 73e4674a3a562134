package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// FitMetrics reports in-sample goodness of fit.
type FitMetrics struct {
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
}

func (m FitMetrics) String() string {
	return fmt.Sprintf("R²: %.3f, MAE: %.2f", m.R2, m.MAE)
}

// Evaluate compares fitted values against the actual values used for the fit.
// For a constant target R² is 1 when every residual is zero and 0 otherwise,
// so the result is always finite.
func Evaluate(actual, fitted []float64) FitMetrics {
	n := len(actual)
	if n == 0 || len(fitted) != n {
		return FitMetrics{}
	}

	var absSum, sse float64
	for i := range actual {
		r := actual[i] - fitted[i]
		absSum += math.Abs(r)
		sse += r * r
	}
	mae := absSum / float64(n)

	mean := stat.Mean(actual, nil)
	var sst float64
	for _, v := range actual {
		sst += (v - mean) * (v - mean)
	}

	var r2 float64
	switch {
	case sst == 0 && sse == 0:
		r2 = 1
	case sst == 0:
		r2 = 0
	default:
		r2 = stat.RSquaredFrom(fitted, actual, nil)
	}
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return FitMetrics{R2: r2, MAE: mae}
}
