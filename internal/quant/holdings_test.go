package quant

import (
	"math"
	"testing"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHoldings_Percentages(t *testing.T) {
	out, err := NormalizeHoldings([]models.Holding{
		{Ticker: " aapl ", Weight: 60},
		{Ticker: "msft", Weight: 40},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "AAPL", out[0].Ticker)
	assert.Equal(t, "MSFT", out[1].Ticker)
	assert.InDelta(t, 0.6, out[0].Weight, 1e-12)
	assert.InDelta(t, 0.4, out[1].Weight, 1e-12)
}

func TestNormalizeHoldings_Fractions(t *testing.T) {
	in := []models.Holding{{Ticker: "A", Weight: 0.25}, {Ticker: "B", Weight: 0.75}}
	out, err := NormalizeHoldings(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out[0].Weight, 1e-12)

	// input is not modified
	assert.Equal(t, 0.25, in[0].Weight)
}

func TestNormalizeHoldings_Rejects(t *testing.T) {
	cases := []struct {
		name     string
		holdings []models.Holding
		want     error
	}{
		{"empty", nil, ErrEmptyPortfolio},
		{"blank ticker", []models.Holding{{Ticker: "  ", Weight: 1}}, ErrInvalidHoldings},
		{"duplicate after normalizing", []models.Holding{{Ticker: "spy", Weight: 50}, {Ticker: "SPY", Weight: 50}}, ErrInvalidHoldings},
		{"negative weight", []models.Holding{{Ticker: "A", Weight: 1.5}, {Ticker: "B", Weight: -0.5}}, ErrInvalidHoldings},
		{"NaN weight", []models.Holding{{Ticker: "A", Weight: math.NaN()}}, ErrInvalidHoldings},
		{"sum neither 1 nor 100", []models.Holding{{Ticker: "A", Weight: 30}, {Ticker: "B", Weight: 30}}, ErrInvalidHoldings},
		{"all zero", []models.Holding{{Ticker: "A", Weight: 0}}, ErrInvalidHoldings},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeHoldings(tc.holdings)
			require.ErrorIs(t, err, tc.want)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestKindOf(t *testing.T) {
	_, err := BuildReturns(nil)
	assert.Equal(t, KindInsufficientHistory, KindOf(err))
	assert.False(t, IsInputError(err))

	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
