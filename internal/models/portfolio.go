package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Strategy selects the weight search used by the optimizer
type Strategy string

const (
	StrategySampling Strategy = "sampling"
	StrategyFrontier Strategy = "frontier"
)

// Holding is a single (ticker, weight) entry of a portfolio.
// Weight may be a percentage (0-100) or a fraction (0-1); all holdings of one
// portfolio must use the same form.
type Holding struct {
	Ticker string  `json:"ticker" yaml:"ticker" binding:"required"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// PricePoint is one closing price observation
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is the chronologically ordered closing price history of a ticker
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations in the series
func (p *PriceSeries) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Points)
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	type plain struct {
		Date  string          `json:"date"`
		Close json.RawMessage `json:"close"`
	}
	return json.Marshal(plain{
		Date:  p.Date.Format(DateLayout),
		Close: json.RawMessage(fmt.Sprintf("%.6f", p.Close)),
	})
}

// Performance is the expected return and risk of a weight vector
type Performance struct {
	ExpectedReturn float64 `json:"expected_return"`
	ExpectedRisk   float64 `json:"expected_risk"`
}

// DroppedTicker records a holding that was excluded from the optimization
type DroppedTicker struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Reasons a ticker can be dropped
const (
	DropReasonFetchFailed = "fetch_failed"
	DropReasonNoPriceData = "no_price_data"
	DropReasonNoOverlap   = "no_overlap"
)
