package models

// OptimizeRequest represents the request body for optimizing a portfolio
type OptimizeRequest struct {
	Portfolio     []Holding `json:"portfolio" binding:"required,dive"`
	RiskTolerance *float64  `json:"risk_tolerance"`
	Strategy      Strategy  `json:"strategy"`
	Seed          *uint64   `json:"seed"`
	Samples       int       `json:"samples"`
	RiskFreeRate  *float64  `json:"risk_free_rate"`
	Period        string    `json:"period"`

	// AsOf ends the price window at a fixed date instead of today
	AsOf *FlexibleDate `json:"as_of"`
}

// OptimizeResponse represents the optimized portfolio
type OptimizeResponse struct {
	Strategy         Strategy           `json:"strategy"`
	OptimizedWeights map[string]float64 `json:"optimized_weights"`
	ExpectedReturn   float64            `json:"expected_return"`
	ExpectedRisk     float64            `json:"expected_risk"`
	SharpeRatio      float64            `json:"sharpe_ratio"`
	Baseline         *Performance       `json:"baseline,omitempty"`
	RiskCeiling      *float64           `json:"risk_ceiling,omitempty"`
	Samples          int                `json:"samples,omitempty"`
	Seed             *uint64            `json:"seed,omitempty"`
	Observations     int                `json:"observations"`
	Period           string             `json:"period"`
	Dropped          []DroppedTicker    `json:"dropped,omitempty"`
	Warnings         []Warning          `json:"warnings,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GetPricesRequest represents the query parameters for fetching a price series
type GetPricesRequest struct {
	Ticker string `form:"ticker" binding:"required"`
	Period string `form:"period"`
	AsOf   string `form:"as_of"`
}

// GetPricesResponse represents the response for a price series
type GetPricesResponse struct {
	Ticker     string       `json:"ticker"`
	Period     string       `json:"period"`
	DataPoints int          `json:"data_points"`
	Prices     []PricePoint `json:"prices"`
}
