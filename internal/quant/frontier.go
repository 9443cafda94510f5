package quant

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// maxConditionNumber bounds the 2-norm condition number of Σ accepted by
	// the frontier strategy.
	maxConditionNumber = 1e10

	// ridgeFactor scales the ‖w‖² term that selects the most diversified
	// weights among numerically equivalent optima.
	ridgeFactor = 1e-9

	bisectionSteps      = 64
	maxBracketDoublings = 200
)

// frontier solves long-only, fully invested mean-variance problems over fixed moments
type frontier struct {
	mu  []float64
	cov *mat.SymDense
	q   *mat.SymDense // 2(Σ + εI)
	n   int
}

func newFrontier(m *Moments) (*frontier, error) {
	n := m.Size()
	if n == 0 {
		return nil, fmt.Errorf("%w: no assets", ErrDegenerateCovariance)
	}
	if r, c := m.Cov.Dims(); r != n || c != n {
		return nil, fmt.Errorf("%w: covariance is %dx%d for %d assets", ErrDimensionMismatch, r, c, n)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(m.Mean[i]) || math.IsInf(m.Mean[i], 0) {
			return nil, fmt.Errorf("%w: non-finite mean for %s", ErrDegenerateCovariance, m.Tickers[i])
		}
		for j := 0; j < n; j++ {
			v := m.Cov.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite covariance entry", ErrDegenerateCovariance)
			}
		}
	}
	if cond := mat.Cond(m.Cov, 2); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > maxConditionNumber {
		return nil, fmt.Errorf("%w: condition number %.3g exceeds %.0e", ErrDegenerateCovariance, cond, maxConditionNumber)
	}

	eps := ridgeFactor * mat.Trace(m.Cov) / float64(n)
	q := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 2 * m.Cov.At(i, j)
			if i == j {
				v += 2 * eps
			}
			q.SetSym(i, j, v)
		}
	}

	mu := make([]float64, n)
	copy(mu, m.Mean)
	return &frontier{mu: mu, cov: m.Cov, q: q, n: n}, nil
}

func (f *frontier) risk(w []float64) float64 {
	return portfolioRisk(w, f.cov)
}

// maxFeasibleRisk is the largest risk any long-only, fully invested
// portfolio can reach. Risk is convex in w, so the maximum over the simplex
// sits at a vertex: the riskiest single asset.
func (f *frontier) maxFeasibleRisk() float64 {
	var best float64
	for i := 0; i < f.n; i++ {
		best = math.Max(best, math.Sqrt(math.Max(0, f.cov.At(i, i))))
	}
	return best
}

// tradeoff solves min wᵀΣw - λμᵀw over the simplex. λ = 0 is the minimum
// variance portfolio; risk is non-decreasing in λ.
func (f *frontier) tradeoff(lambda float64) ([]float64, error) {
	c := make([]float64, f.n)
	floats.ScaleTo(c, -lambda, f.mu)
	ones := make([]float64, f.n)
	floats.AddConst(1, ones)
	x0 := make([]float64, f.n)
	floats.AddConst(1/float64(f.n), x0)
	return qpProblem{Q: f.q, c: c, a: ones}.solve(x0)
}

// tangency returns the maximum Sharpe ratio portfolio using the convex
// reformulation min yᵀΣy s.t. (μ - rf)ᵀy = 1, y ≥ 0, w = y / Σy.
func (f *frontier) tangency(riskFree float64) ([]float64, error) {
	excess := make([]float64, f.n)
	copy(excess, f.mu)
	floats.AddConst(-riskFree, excess)
	best := floats.MaxIdx(excess)
	if excess[best] <= 0 {
		return nil, fmt.Errorf("%w: best excess return %.6g at risk-free %.6g", ErrNoExcessReturn, excess[best], riskFree)
	}

	x0 := make([]float64, f.n)
	x0[best] = 1 / excess[best]
	y, err := qpProblem{Q: f.q, c: make([]float64, f.n), a: excess}.solve(x0)
	if err != nil {
		return nil, err
	}
	total := floats.Sum(y)
	if !(total > 0) {
		return nil, fmt.Errorf("%w: tangency weights sum to %v", ErrDegenerateCovariance, total)
	}
	floats.Scale(1/total, y)
	return y, nil
}

// frontierChoice is the outcome of a ceiling-constrained frontier search
type frontierChoice struct {
	weights     []float64
	ceiling     float64
	unreachable bool
}

// choose returns the maximum Sharpe portfolio when it respects the risk
// ceiling riskTolerance·maxFeasibleRisk. Otherwise it returns the highest
// return frontier portfolio whose risk stays under the ceiling, which is also
// the best Sharpe ratio available under it. If even the minimum variance
// portfolio is above the ceiling, that portfolio is returned and marked
// unreachable.
func (f *frontier) choose(riskTolerance, riskFree float64) (*frontierChoice, error) {
	ceiling := riskTolerance * f.maxFeasibleRisk()
	slack := 1e-12 + 1e-9*ceiling

	tan, err := f.tangency(riskFree)
	if err != nil {
		return nil, err
	}
	if f.risk(tan) <= ceiling+slack {
		return &frontierChoice{weights: tan, ceiling: ceiling}, nil
	}

	lo, err := f.tradeoff(0)
	if err != nil {
		return nil, err
	}
	if f.risk(lo) > ceiling+slack {
		return &frontierChoice{weights: lo, ceiling: ceiling, unreachable: true}, nil
	}

	// Bracket: grow λ until the tradeoff portfolio crosses the ceiling
	muScale := math.Max(floats.Norm(f.mu, math.Inf(1)), 1e-12)
	lambdaLo, lambdaHi := 0.0, f.maxFeasibleRisk()*f.maxFeasibleRisk()/muScale
	for i := 0; ; i++ {
		w, err := f.tradeoff(lambdaHi)
		if err != nil {
			return nil, err
		}
		if f.risk(w) > ceiling+slack {
			break
		}
		lo, lambdaLo = w, lambdaHi
		if i == maxBracketDoublings {
			return &frontierChoice{weights: lo, ceiling: ceiling}, nil
		}
		lambdaHi *= 2
	}

	for i := 0; i < bisectionSteps && lambdaHi-lambdaLo > 1e-12*lambdaHi; i++ {
		mid := (lambdaLo + lambdaHi) / 2
		w, err := f.tradeoff(mid)
		if err != nil {
			return nil, err
		}
		if f.risk(w) <= ceiling+slack {
			lo, lambdaLo = w, mid
		} else {
			lambdaHi = mid
		}
	}
	return &frontierChoice{weights: lo, ceiling: ceiling}, nil
}
