package quant

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Moments are the per-period mean returns and sample covariance of a ReturnMatrix
type Moments struct {
	Tickers      []string
	Mean         []float64
	Cov          *mat.SymDense
	Observations int
}

// Size returns the number of assets
func (m *Moments) Size() int {
	return len(m.Mean)
}

// EstimateMoments computes the column means and the unbiased (T-1) sample
// covariance of the aligned returns. Zero-variance columns are valid.
func EstimateMoments(rm *ReturnMatrix) (*Moments, error) {
	if rm == nil || rm.Data == nil {
		return nil, fmt.Errorf("%w: no return matrix", ErrInsufficientObservations)
	}
	t, k := rm.Data.Dims()
	if t < 2 {
		return nil, fmt.Errorf("%w: have %d, need at least 2", ErrInsufficientObservations, t)
	}
	if k != len(rm.Tickers) {
		return nil, fmt.Errorf("%w: %d columns for %d tickers", ErrDimensionMismatch, k, len(rm.Tickers))
	}

	mean := make([]float64, k)
	col := make([]float64, t)
	for j := 0; j < k; j++ {
		mat.Col(col, j, rm.Data)
		mean[j] = stat.Mean(col, nil)
	}

	cov := mat.NewSymDense(k, nil)
	stat.CovarianceMatrix(cov, rm.Data, nil)

	// Extreme but finite returns can still overflow the sums
	for i := 0; i < k; i++ {
		if !isFinite(mean[i]) {
			return nil, fmt.Errorf("%w: mean return of %s is not finite", ErrInvalidPrice, rm.Tickers[i])
		}
		for j := 0; j <= i; j++ {
			if !isFinite(cov.At(i, j)) {
				return nil, fmt.Errorf("%w: covariance of %s and %s is not finite", ErrInvalidPrice, rm.Tickers[i], rm.Tickers[j])
			}
		}
	}

	// Variances are non-negative; only rounding can push them below zero
	for i := 0; i < k; i++ {
		if cov.At(i, i) < 0 {
			cov.SetSym(i, i, 0)
		}
	}

	tickers := make([]string, k)
	copy(tickers, rm.Tickers)
	return &Moments{
		Tickers:      tickers,
		Mean:         mean,
		Cov:          cov,
		Observations: t,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
