package quant

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/epeers/portfolio-optimizer/internal/models"
)

const (
	DefaultSamples        = 1000
	DefaultRiskFreeRate   = 0.02
	DefaultPeriodsPerYear = 252

	// MaxSamples bounds the sampling strategy; every sample holds a weight vector
	MaxSamples = 100000
)

// Options tunes a single Optimize call
type Options struct {
	Strategy models.Strategy

	// Samples is the number of candidates drawn by the sampling strategy
	Samples int

	// Seed makes the sampling strategy reproducible. When nil a random seed
	// is drawn and reported in the result. Ignored when Rand is set.
	Seed *uint64

	// Rand, when set, is the random source used by the sampling strategy
	Rand *rand.Rand

	// RiskFreeRate is annual; it is divided by PeriodsPerYear to match
	// the per-period returns.
	RiskFreeRate   float64
	PeriodsPerYear float64

	// Workers bounds the goroutines evaluating samples
	Workers int
}

// DefaultOptions returns the sampling strategy with 1000 samples and a 2% annual risk-free rate
func DefaultOptions() Options {
	return Options{
		Strategy:       models.StrategySampling,
		Samples:        DefaultSamples,
		RiskFreeRate:   DefaultRiskFreeRate,
		PeriodsPerYear: DefaultPeriodsPerYear,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// Validate reports ErrInvalidOptions for an unknown strategy or out of range settings
func (o Options) Validate() error {
	switch o.Strategy {
	case models.StrategySampling:
		if o.Samples < 1 || o.Samples > MaxSamples {
			return fmt.Errorf("%w: samples must be between 1 and %d, got %d", ErrInvalidOptions, MaxSamples, o.Samples)
		}
	case models.StrategyFrontier:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, o.Strategy)
	}
	if !(o.PeriodsPerYear > 0) || math.IsInf(o.PeriodsPerYear, 0) {
		return fmt.Errorf("%w: periods per year must be positive, got %v", ErrInvalidOptions, o.PeriodsPerYear)
	}
	if math.IsNaN(o.RiskFreeRate) || math.IsInf(o.RiskFreeRate, 0) {
		return fmt.Errorf("%w: risk-free rate must be finite", ErrInvalidOptions)
	}
	return nil
}

// OptimizationResult is the selected portfolio. Returns and risks are per
// period (daily for daily prices).
type OptimizationResult struct {
	Strategy models.Strategy
	Weights  map[string]float64
	models.Performance
	SharpeRatio float64

	// Baseline is the caller's own weights, rescaled over the retained tickers
	Baseline       *models.Performance
	BaselineScaled bool
	Tickers        []string
	Observations   int
	Dropped        []models.DroppedTicker

	// Sampling only
	Samples int
	Seed    *uint64

	// Frontier only
	RiskCeiling        *float64
	CeilingUnreachable bool
}

// Optimize selects long-only, fully invested weights for holdings against
// riskTolerance in [0, 1], using the closing prices in series (keyed by
// normalized ticker).
//
// The two strategies read riskTolerance differently, and callers should say so:
//   - sampling: the target risk is riskTolerance times the largest risk among
//     the drawn samples, and the sample closest to it wins. 0 picks the least
//     risky sample, 1 the riskiest.
//   - frontier: riskTolerance times the riskiest single asset is a ceiling.
//     The maximum Sharpe portfolio is returned if it fits under it, otherwise
//     the highest return efficient portfolio that does.
//
// Holdings with no series are reported in Dropped, as are tickers without
// overlapping dates. A series that is present but unusable (too short,
// non-positive prices) fails the whole call.
func Optimize(holdings []models.Holding, series map[string]*models.PriceSeries, riskTolerance float64, opts Options) (*OptimizationResult, error) {
	if len(holdings) == 0 {
		return nil, ErrEmptyPortfolio
	}
	if math.IsNaN(riskTolerance) || riskTolerance < 0 || riskTolerance > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRiskTolerance, riskTolerance)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	normalized, err := NormalizeHoldings(holdings)
	if err != nil {
		return nil, err
	}

	var dropped []models.DroppedTicker
	var returns []*ReturnSeries
	for _, h := range normalized {
		s := series[h.Ticker]
		if s.Len() == 0 {
			dropped = append(dropped, models.DroppedTicker{Ticker: h.Ticker, Reason: models.DropReasonNoPriceData})
			continue
		}
		rs, err := BuildReturns(s)
		if err != nil {
			return nil, err
		}
		returns = append(returns, rs)
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: all %d tickers lack price data", ErrNoUsableData, len(normalized))
	}

	matrix, err := AlignReturns(returns)
	if err != nil {
		return nil, err
	}
	for _, t := range matrix.Excluded {
		dropped = append(dropped, models.DroppedTicker{Ticker: t, Reason: models.DropReasonNoOverlap})
	}

	moments, err := EstimateMoments(matrix)
	if err != nil {
		return nil, err
	}

	result := &OptimizationResult{
		Strategy:     opts.Strategy,
		Tickers:      moments.Tickers,
		Observations: moments.Observations,
		Dropped:      dropped,
	}
	result.Baseline, result.BaselineScaled, err = baseline(normalized, moments)
	if err != nil {
		return nil, err
	}

	riskFree := opts.RiskFreeRate / opts.PeriodsPerYear
	var weights []float64
	switch opts.Strategy {
	case models.StrategySampling:
		rng, seed := opts.rng()
		best, err := optimizeBySampling(moments, riskTolerance, rng, opts.Samples, opts.Workers)
		if err != nil {
			return nil, err
		}
		weights = best.weights
		result.Performance = best.perf
		result.Samples = opts.Samples
		result.Seed = seed

	case models.StrategyFrontier:
		f, err := newFrontier(moments)
		if err != nil {
			return nil, err
		}
		choice, err := f.choose(riskTolerance, riskFree)
		if err != nil {
			return nil, err
		}
		weights = choice.weights
		if result.Performance, err = Evaluate(weights, moments.Mean, moments.Cov); err != nil {
			return nil, err
		}
		ceiling := choice.ceiling
		result.RiskCeiling = &ceiling
		result.CeilingUnreachable = choice.unreachable
	}

	result.SharpeRatio = sharpe(result.Performance, riskFree)
	result.Weights = make(map[string]float64, len(weights))
	for i, t := range moments.Tickers {
		result.Weights[t] = weights[i]
	}
	return result, nil
}

// rng returns the random source for the sampling strategy and the seed it
// was built from, if known.
func (o Options) rng() (*rand.Rand, *uint64) {
	if o.Rand != nil {
		return o.Rand, nil
	}
	var seed uint64
	if o.Seed != nil {
		seed = *o.Seed
	} else {
		seed = rand.Uint64()
	}
	return NewRand(seed), &seed
}

// NewRand returns a PCG-backed generator fully determined by seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// baseline evaluates the caller's weights over the retained tickers. The
// weights are rescaled proportionally when some tickers were dropped; it
// returns nil when the retained tickers carry no weight at all.
func baseline(holdings []models.Holding, m *Moments) (*models.Performance, bool, error) {
	byTicker := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		byTicker[h.Ticker] = h.Weight
	}
	w := make([]float64, m.Size())
	var total float64
	for i, t := range m.Tickers {
		w[i] = byTicker[t]
		total += w[i]
	}
	if total <= 0 {
		return nil, false, nil
	}
	scaled := math.Abs(total-1) > fractionTolerance
	for i := range w {
		w[i] /= total
	}
	perf, err := Evaluate(w, m.Mean, m.Cov)
	if err != nil {
		return nil, false, err
	}
	return &perf, scaled, nil
}
