package quant

import (
	"math"
	"testing"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReturns_LengthAndRoundTrip(t *testing.T) {
	series := syntheticSeries("AAPL", 60, 0.001, 0.02, 11)

	rs, err := BuildReturns(series)
	require.NoError(t, err)
	require.Equal(t, len(series.Points)-1, rs.Len())
	require.Len(t, rs.Dates, rs.Len())

	for i, r := range rs.Returns {
		prev := series.Points[i].Close
		next := series.Points[i+1].Close
		assert.InDelta(t, next, prev*(1+r), 1e-9*next)
		assert.Equal(t, series.Points[i+1].Date, rs.Dates[i])
	}
}

func TestBuildReturns_KnownValues(t *testing.T) {
	rs, err := BuildReturns(seriesFromCloses("X", 100, 110, 99))
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rs.Returns[0], 1e-12)
	assert.InDelta(t, -0.10, rs.Returns[1], 1e-12)
}

func TestBuildReturns_InsufficientHistory(t *testing.T) {
	cases := map[string]*models.PriceSeries{
		"nil":    nil,
		"empty":  {Ticker: "X"},
		"single": seriesFromCloses("X", 100),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := BuildReturns(s)
			require.ErrorIs(t, err, ErrInsufficientHistory)
			assert.Equal(t, KindInsufficientHistory, KindOf(err))
		})
	}
}

func TestBuildReturns_InvalidPrice(t *testing.T) {
	for _, bad := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := BuildReturns(seriesFromCloses("X", 100, bad, 101))
		require.ErrorIs(t, err, ErrInvalidPrice, "price %v", bad)
	}
}

func TestBuildReturns_RejectsNonFiniteReturn(t *testing.T) {
	_, err := BuildReturns(seriesFromCloses("X", 1e-300, 1e300))
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestBuildReturns_RejectsUnorderedDates(t *testing.T) {
	s := seriesFromCloses("X", 100, 101, 102)
	s.Points[2].Date = s.Points[1].Date

	_, err := BuildReturns(s)
	require.ErrorIs(t, err, ErrInvalidPriceSeries)
}
