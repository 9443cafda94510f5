package quant

import (
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
)

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// syntheticSeries builds n daily closes starting at 100 with a deterministic
// random walk of the given drift and volatility.
func syntheticSeries(ticker string, n int, drift, vol float64, seed uint64) *models.PriceSeries {
	rng := NewRand(seed)
	s := &models.PriceSeries{Ticker: ticker}
	price := 100.0
	for i := 0; i < n; i++ {
		if i > 0 {
			price *= 1 + drift + vol*rng.NormFloat64()
		}
		s.Points = append(s.Points, models.PricePoint{Date: testStart.AddDate(0, 0, i), Close: price})
	}
	return s
}

// seriesFromCloses builds a daily series from explicit closes
func seriesFromCloses(ticker string, closes ...float64) *models.PriceSeries {
	s := &models.PriceSeries{Ticker: ticker}
	for i, c := range closes {
		s.Points = append(s.Points, models.PricePoint{Date: testStart.AddDate(0, 0, i), Close: c})
	}
	return s
}

// threeAssetUniverse is a well-conditioned universe of three positively
// drifting assets with distinct volatilities.
func threeAssetUniverse() ([]models.Holding, map[string]*models.PriceSeries) {
	holdings := []models.Holding{
		{Ticker: "AAA", Weight: 40},
		{Ticker: "BBB", Weight: 30},
		{Ticker: "CCC", Weight: 30},
	}
	series := map[string]*models.PriceSeries{
		"AAA": syntheticSeries("AAA", 250, 0.0010, 0.010, 1),
		"BBB": syntheticSeries("BBB", 250, 0.0020, 0.022, 2),
		"CCC": syntheticSeries("CCC", 250, 0.0014, 0.015, 3),
	}
	return holdings, series
}

func uint64Ptr(v uint64) *uint64 { return &v }

func frontierOptions() Options {
	opts := DefaultOptions()
	opts.Strategy = models.StrategyFrontier
	return opts
}
