package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errNonFiniteFit = errors.New("fit produced non-finite coefficients")

// leastSquares is the solver used by Engine. Tests replace it to exercise the
// fallback chain.
var leastSquares = fitPolynomial

// polyFit holds OLS coefficients for [x^0 .. x^d], lowest order first.
type polyFit struct {
	coef []float64
}

// at evaluates the fitted polynomial at position x.
func (f polyFit) at(x float64) float64 {
	// Horner, highest order first.
	y := 0.0
	for i := len(f.coef) - 1; i >= 0; i-- {
		y = y*x + f.coef[i]
	}
	return y
}

// fitPolynomial solves the least squares problem for y against the Vandermonde
// expansion of positions 0..n-1. When n is smaller than degree+1 the minimum
// norm solution is returned; Engine never asks for one. Any solver complaint, including an ill-conditioned
// design matrix, is returned as an error so the caller can fall back.
func fitPolynomial(y []float64, degree int) (fit polyFit, err error) {
	n := len(y)
	cols := degree + 1
	if n == 0 || degree < 0 {
		return polyFit{}, errors.New("nothing to fit")
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.New("least squares solver panicked")
		}
	}()

	design := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		v := 1.0
		for j := 0; j < cols; j++ {
			design.Set(i, j, v)
			v *= float64(i)
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var beta mat.VecDense
	if err := beta.SolveVec(design, target); err != nil {
		return polyFit{}, err
	}

	coef := make([]float64, cols)
	for j := 0; j < cols; j++ {
		c := beta.AtVec(j)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return polyFit{}, errNonFiniteFit
		}
		coef[j] = c
	}
	return polyFit{coef: coef}, nil
}

// fitted evaluates the fit at positions 0..n-1.
func (f polyFit) fitted(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f.at(float64(i))
	}
	return out
}

// project evaluates the fit at positions n..n+horizon-1.
func (f polyFit) project(n, horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = f.at(float64(n + i))
	}
	return out
}
