package models

// WarningCode categorizes warnings by subsystem.
// W2xxx = pricing/data, W3xxx = optimization.
type WarningCode string

const (
	WarnPartialDataDropped     WarningCode = "W2001" // one or more tickers excluded, result covers the rest
	WarnPeriodTruncated        WarningCode = "W2002" // provider returned less history than the requested period
	WarnWeightsRescaled        WarningCode = "W3001" // baseline weights rescaled over the retained tickers
	WarnRiskCeilingUnreachable WarningCode = "W3002" // minimum-variance portfolio already exceeds the risk ceiling
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
