package quant

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// candidate is one sampled portfolio
type candidate struct {
	weights []float64
	perf    models.Performance
}

// drawWeights draws samples weight vectors of length n from rng. Each vector
// is n independent uniform(0,1) values normalized to sum to one. Draws happen
// in sample order so a seeded rng always yields the same candidates.
func drawWeights(rng *rand.Rand, samples, n int) [][]float64 {
	u := distuv.Uniform{Min: 0, Max: 1, Src: rng}
	out := make([][]float64, samples)
	for s := range out {
		w := make([]float64, n)
		for {
			for i := range w {
				w[i] = u.Rand()
			}
			if total := floats.Sum(w); total > 0 {
				floats.Scale(1/total, w)
				break
			}
		}
		out[s] = w
	}
	return out
}

// evaluateCandidates scores every weight vector. Work is split into
// contiguous chunks across workers and each result lands in its own slot,
// so the output order never depends on scheduling.
func evaluateCandidates(weights [][]float64, mu []float64, cov mat.Symmetric, workers int) ([]candidate, error) {
	out := make([]candidate, len(weights))
	if len(weights) == 0 {
		return out, nil
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (len(weights) + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(weights); start += chunk {
		end := min(start+chunk, len(weights))
		g.Go(func() error {
			for i := start; i < end; i++ {
				perf, err := Evaluate(weights[i], mu, cov)
				if err != nil {
					return err
				}
				out[i] = candidate{weights: weights[i], perf: perf}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// selectByRiskTolerance picks the candidate whose risk is closest to
// riskTolerance times the largest sampled risk. Ties go to the earliest sample.
// The index is -1 when no candidate has a finite risk.
func selectByRiskTolerance(cands []candidate, riskTolerance float64) (int, float64) {
	maxRisk := math.Inf(-1)
	for _, c := range cands {
		if isFinite(c.perf.ExpectedRisk) {
			maxRisk = math.Max(maxRisk, c.perf.ExpectedRisk)
		}
	}
	target := riskTolerance * maxRisk

	best, bestDist := -1, math.Inf(1)
	for i, c := range cands {
		if d := math.Abs(c.perf.ExpectedRisk - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, target
}

// optimizeBySampling runs the random search over the simplex
func optimizeBySampling(m *Moments, riskTolerance float64, rng *rand.Rand, samples, workers int) (candidate, error) {
	weights := drawWeights(rng, samples, m.Size())
	cands, err := evaluateCandidates(weights, m.Mean, m.Cov, workers)
	if err != nil {
		return candidate{}, err
	}
	idx, _ := selectByRiskTolerance(cands, riskTolerance)
	if idx < 0 {
		return candidate{}, fmt.Errorf("%w: no sampled portfolio has a finite risk", ErrDegenerateCovariance)
	}
	return cands[idx], nil
}
