package models

import (
	"time"
)

// PriceData represents one day of historical price data for a ticker
type PriceData struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceRange represents the cached date range for a ticker's prices.
// NextUpdate is when the provider is expected to publish the next close.
type PriceRange struct {
	Ticker     string
	StartDate  time.Time
	EndDate    time.Time
	NextUpdate time.Time
}

// ToPriceSeries converts stored rows into a PriceSeries, keeping the given order
func ToPriceSeries(ticker string, rows []PriceData) *PriceSeries {
	series := &PriceSeries{
		Ticker: ticker,
		Points: make([]PricePoint, 0, len(rows)),
	}
	for _, r := range rows {
		series.Points = append(series.Points, PricePoint{Date: r.Date, Close: r.Close})
	}
	return series
}
