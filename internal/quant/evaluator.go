package quant

import (
	"fmt"
	"math"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Evaluate returns the expected return w·μ and the expected risk sqrt(wᵀΣw)
// of a weight vector.
func Evaluate(w, mu []float64, sigma mat.Symmetric) (models.Performance, error) {
	if len(w) != len(mu) {
		return models.Performance{}, fmt.Errorf("%w: %d weights for %d means", ErrDimensionMismatch, len(w), len(mu))
	}
	if sigma == nil {
		return models.Performance{}, fmt.Errorf("%w: nil covariance", ErrDimensionMismatch)
	}
	if r, c := sigma.Dims(); r != len(w) || c != len(w) {
		return models.Performance{}, fmt.Errorf("%w: covariance is %dx%d, want %dx%d", ErrDimensionMismatch, r, c, len(w), len(w))
	}
	if len(w) == 0 {
		return models.Performance{}, nil
	}

	return models.Performance{
		ExpectedReturn: floats.Dot(w, mu),
		ExpectedRisk:   portfolioRisk(w, sigma),
	}, nil
}

// portfolioRisk assumes the dimensions were already checked
func portfolioRisk(w []float64, sigma mat.Symmetric) float64 {
	v := mat.NewVecDense(len(w), w)
	return math.Sqrt(math.Max(0, mat.Inner(v, sigma, v)))
}

// sharpe is the per-period excess return per unit of risk, 0 for a riskless portfolio
func sharpe(p models.Performance, riskFree float64) float64 {
	if p.ExpectedRisk <= 0 {
		return 0
	}
	return (p.ExpectedReturn - riskFree) / p.ExpectedRisk
}
