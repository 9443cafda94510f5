package quant

import "errors"

// Kind names the category of a failure so callers can map it without string matching
type Kind string

const (
	KindInsufficientHistory      Kind = "insufficient_history"
	KindInvalidPrice             Kind = "invalid_price"
	KindInvalidPriceSeries       Kind = "invalid_price_series"
	KindInsufficientObservations Kind = "insufficient_observations"
	KindDimensionMismatch        Kind = "dimension_mismatch"
	KindEmptyPortfolio           Kind = "empty_portfolio"
	KindInvalidHoldings          Kind = "invalid_holdings"
	KindInvalidRiskTolerance     Kind = "invalid_risk_tolerance"
	KindInvalidOptions           Kind = "invalid_options"
	KindDegenerateCovariance     Kind = "degenerate_covariance"
	KindNoExcessReturn           Kind = "no_excess_return"
	KindNoUsableData             Kind = "no_usable_data"
	KindUnknown                  Kind = "unknown"
)

var (
	ErrInsufficientHistory      = errors.New("insufficient history")
	ErrInvalidPrice             = errors.New("invalid price")
	ErrInvalidPriceSeries       = errors.New("price series dates must be strictly increasing")
	ErrInsufficientObservations = errors.New("insufficient observations for covariance")
	ErrDimensionMismatch        = errors.New("dimension mismatch")
	ErrEmptyPortfolio           = errors.New("empty portfolio")
	ErrInvalidHoldings          = errors.New("invalid holdings")
	ErrInvalidRiskTolerance     = errors.New("risk tolerance must be within [0, 1]")
	ErrInvalidOptions           = errors.New("invalid optimizer options")
	ErrDegenerateCovariance     = errors.New("degenerate covariance, cannot optimize")
	ErrNoExcessReturn           = errors.New("no asset has an expected return above the risk-free rate")
	ErrNoUsableData             = errors.New("no ticker has usable price data")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInsufficientHistory, KindInsufficientHistory},
	{ErrInvalidPrice, KindInvalidPrice},
	{ErrInvalidPriceSeries, KindInvalidPriceSeries},
	{ErrInsufficientObservations, KindInsufficientObservations},
	{ErrDimensionMismatch, KindDimensionMismatch},
	{ErrEmptyPortfolio, KindEmptyPortfolio},
	{ErrInvalidHoldings, KindInvalidHoldings},
	{ErrInvalidRiskTolerance, KindInvalidRiskTolerance},
	{ErrInvalidOptions, KindInvalidOptions},
	{ErrDegenerateCovariance, KindDegenerateCovariance},
	{ErrNoExcessReturn, KindNoExcessReturn},
	{ErrNoUsableData, KindNoUsableData},
}

// KindOf classifies err by the sentinel it wraps. Errors that wrap none of
// the package sentinels are KindUnknown.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// IsInputError reports whether err was caused by the caller's request rather
// than by the price data.
func IsInputError(err error) bool {
	switch KindOf(err) {
	case KindEmptyPortfolio, KindInvalidHoldings, KindInvalidRiskTolerance, KindInvalidOptions, KindDimensionMismatch:
		return true
	}
	return false
}
