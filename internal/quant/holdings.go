package quant

import (
	"fmt"
	"math"
	"strings"

	"github.com/epeers/portfolio-optimizer/internal/models"
)

const (
	fractionTolerance   = 1e-6
	percentageTolerance = 1e-4
)

// NormalizeTicker trims and upper-cases a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// NormalizeHoldings validates holdings and returns a copy with normalized
// tickers and weights expressed as fractions. Weights must all be fractions
// summing to 1 or all percentages summing to 100; nothing else is accepted.
func NormalizeHoldings(holdings []models.Holding) ([]models.Holding, error) {
	if len(holdings) == 0 {
		return nil, ErrEmptyPortfolio
	}

	seen := make(map[string]struct{}, len(holdings))
	out := make([]models.Holding, len(holdings))
	var total float64
	for i, h := range holdings {
		ticker := NormalizeTicker(h.Ticker)
		if ticker == "" {
			return nil, fmt.Errorf("%w: holding %d has an empty ticker", ErrInvalidHoldings, i)
		}
		if _, dup := seen[ticker]; dup {
			return nil, fmt.Errorf("%w: duplicate ticker %s", ErrInvalidHoldings, ticker)
		}
		seen[ticker] = struct{}{}

		if math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0) || h.Weight < 0 {
			return nil, fmt.Errorf("%w: %s has weight %v", ErrInvalidHoldings, ticker, h.Weight)
		}
		total += h.Weight
		out[i] = models.Holding{Ticker: ticker, Weight: h.Weight}
	}

	switch {
	case math.Abs(total-1) <= fractionTolerance:
	case math.Abs(total-100) <= percentageTolerance:
	default:
		return nil, fmt.Errorf("%w: weights sum to %v, expected 1 (fractions) or 100 (percentages)", ErrInvalidHoldings, total)
	}
	for i := range out {
		out[i].Weight /= total
	}
	return out, nil
}
