package alphavantage

import "time"

// TimeSeriesDailyResponse represents the AlphaVantage TIME_SERIES_DAILY response
type TimeSeriesDailyResponse struct {
	MetaData   map[string]string     `json:"Meta Data"`
	TimeSeries map[string]DailyOHLCV `json:"Time Series (Daily)"`
}

// DailyOHLCV is one day of the time series; AlphaVantage sends numbers as strings
type DailyOHLCV struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// apiMessage captures the keys AlphaVantage uses to report failures with a 200 status
type apiMessage struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// ParsedPriceData represents parsed price data ready for use
type ParsedPriceData struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}
