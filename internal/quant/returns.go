package quant

import (
	"fmt"
	"math"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
)

// ReturnSeries holds the simple period returns of one ticker.
// Dates[i] is the date of the later price of the pair that produced Returns[i].
type ReturnSeries struct {
	Ticker  string
	Dates   []time.Time
	Returns []float64
}

// Len returns the number of returns in the series
func (r *ReturnSeries) Len() int {
	return len(r.Returns)
}

// BuildReturns converts a price history into simple period returns,
// r_t = price_t / price_{t-1} - 1. The result has one fewer entry than the input.
func BuildReturns(series *models.PriceSeries) (*ReturnSeries, error) {
	if series == nil || len(series.Points) < 2 {
		ticker := ""
		if series != nil {
			ticker = series.Ticker
		}
		return nil, fmt.Errorf("%w: %s has %d observations, need at least 2", ErrInsufficientHistory, ticker, series.Len())
	}

	points := series.Points
	for i, p := range points {
		if !(p.Close > 0) || math.IsInf(p.Close, 0) {
			return nil, fmt.Errorf("%w: %s close %v on %s", ErrInvalidPrice, series.Ticker, p.Close, p.Date.Format("2006-01-02"))
		}
		if i > 0 && !p.Date.After(points[i-1].Date) {
			return nil, fmt.Errorf("%w: %s at %s", ErrInvalidPriceSeries, series.Ticker, p.Date.Format("2006-01-02"))
		}
	}

	rs := &ReturnSeries{
		Ticker:  series.Ticker,
		Dates:   make([]time.Time, len(points)-1),
		Returns: make([]float64, len(points)-1),
	}
	for t := 1; t < len(points); t++ {
		rs.Dates[t-1] = points[t].Date
		r := points[t].Close/points[t-1].Close - 1
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return nil, fmt.Errorf("%w: %s return from %v to %v on %s is not finite",
				ErrInvalidPrice, series.Ticker, points[t-1].Close, points[t].Close, points[t].Date.Format("2006-01-02"))
		}
		rs.Returns[t-1] = r
	}
	return rs, nil
}
