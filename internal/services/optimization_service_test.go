package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/quant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves fixed series and errors by ticker and records the
// period and as-of date it was asked for
type fakeFetcher struct {
	series map[string]*models.PriceSeries
	errs   map[string]error

	mu      sync.Mutex
	periods []string
	asOfs   []time.Time
}

func (f *fakeFetcher) FetchPriceSeries(ctx context.Context, ticker, period string, asOf time.Time) (*models.PriceSeries, error) {
	f.mu.Lock()
	f.periods = append(f.periods, period)
	f.asOfs = append(f.asOfs, asOf)
	f.mu.Unlock()

	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	if s, ok := f.series[ticker]; ok {
		return s, nil
	}
	return nil, ErrNoPriceData
}

func walk(ticker string, n int, drift, vol float64, seed uint64) *models.PriceSeries {
	rng := quant.NewRand(seed)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := &models.PriceSeries{Ticker: ticker}
	price := 100.0
	for i := 0; i < n; i++ {
		if i > 0 {
			price *= 1 + drift + vol*rng.NormFloat64()
		}
		s.Points = append(s.Points, models.PricePoint{Date: start.AddDate(0, 0, i), Close: price})
	}
	return s
}

func newTestOptimizationService(f *fakeFetcher) *OptimizationService {
	opts := quant.DefaultOptions()
	opts.Samples = 200
	opts.Workers = 2
	return NewOptimizationService(f, OptimizerDefaults{Options: opts, Period: "1y"})
}

func universe() map[string]*models.PriceSeries {
	return map[string]*models.PriceSeries{
		"AAA": walk("AAA", 120, 0.0010, 0.010, 1),
		"BBB": walk("BBB", 120, 0.0020, 0.022, 2),
		"CCC": walk("CCC", 120, 0.0014, 0.015, 3),
	}
}

func float64Ptr(v float64) *float64 { return &v }
func uint64Ptr(v uint64) *uint64    { return &v }

func TestOptimize_SamplingDefaults(t *testing.T) {
	f := &fakeFetcher{series: universe()}
	svc := newTestOptimizationService(f)
	ctx, wc := NewWarningContext(context.Background())

	resp, err := svc.Optimize(ctx, &models.OptimizeRequest{
		Portfolio: []models.Holding{{Ticker: "aaa", Weight: 50}, {Ticker: "BBB", Weight: 30}, {Ticker: "CCC", Weight: 20}},
		Seed:      uint64Ptr(7),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StrategySampling, resp.Strategy)
	assert.Equal(t, "1y", resp.Period)
	assert.Equal(t, 200, resp.Samples)
	require.NotNil(t, resp.Seed)
	assert.Equal(t, uint64(7), *resp.Seed)
	assert.Equal(t, 119, resp.Observations)
	require.NotNil(t, resp.Baseline)

	sum := 0.0
	for _, w := range resp.OptimizedWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, resp.OptimizedWeights, 3)
	assert.Empty(t, wc.GetWarnings())

	for _, p := range f.periods {
		assert.Equal(t, "1y", p)
	}
	for _, a := range f.asOfs {
		assert.True(t, a.IsZero())
	}
}

func TestOptimize_RequestOverrides(t *testing.T) {
	f := &fakeFetcher{series: universe()}
	svc := newTestOptimizationService(f)
	asOf := models.FlexibleDate{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

	req := &models.OptimizeRequest{
		Portfolio:     []models.Holding{{Ticker: "AAA", Weight: 60}, {Ticker: "BBB", Weight: 40}},
		RiskTolerance: float64Ptr(1),
		Samples:       50,
		Seed:          uint64Ptr(3),
		Period:        "6MO",
		AsOf:          &asOf,
	}
	resp, err := svc.Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "6mo", resp.Period)
	assert.Equal(t, 50, resp.Samples)
	for _, a := range f.asOfs {
		assert.True(t, a.Equal(asOf.Time))
	}

	// same request, same answer
	again, err := svc.Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, resp.OptimizedWeights, again.OptimizedWeights)
}

func TestOptimize_DropsFailedFetches(t *testing.T) {
	f := &fakeFetcher{
		series: universe(),
		errs: map[string]error{
			"DDD": errors.New("connection reset"),
		},
	}
	svc := newTestOptimizationService(f)
	ctx, wc := NewWarningContext(context.Background())

	resp, err := svc.Optimize(ctx, &models.OptimizeRequest{
		Portfolio: []models.Holding{
			{Ticker: "AAA", Weight: 25}, {Ticker: "BBB", Weight: 25},
			{Ticker: "DDD", Weight: 25}, {Ticker: "EEE", Weight: 25},
		},
		Seed: uint64Ptr(1),
	})
	require.NoError(t, err)

	reasons := map[string]string{}
	for _, d := range resp.Dropped {
		reasons[d.Ticker] = d.Reason
	}
	assert.Equal(t, map[string]string{
		"DDD": models.DropReasonFetchFailed,
		"EEE": models.DropReasonNoPriceData,
	}, reasons)
	assert.NotContains(t, resp.OptimizedWeights, "DDD")

	warnings := wc.GetWarnings()
	assert.True(t, hasWarning(warnings, models.WarnPartialDataDropped))
	assert.True(t, hasWarning(warnings, models.WarnWeightsRescaled))
}

func TestOptimize_NothingFetched(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"AAA": errors.New("timeout")}}
	svc := newTestOptimizationService(f)

	_, err := svc.Optimize(context.Background(), &models.OptimizeRequest{
		Portfolio: []models.Holding{{Ticker: "AAA", Weight: 50}, {Ticker: "BBB", Weight: 50}},
	})
	require.ErrorIs(t, err, quant.ErrNoUsableData)
	assert.Contains(t, err.Error(), "AAA (fetch_failed)")
	assert.Contains(t, err.Error(), "BBB (no_price_data)")
}

func TestOptimize_InvalidRequests(t *testing.T) {
	svc := newTestOptimizationService(&fakeFetcher{series: universe()})
	portfolio := []models.Holding{{Ticker: "AAA", Weight: 1}}

	cases := []struct {
		name string
		req  models.OptimizeRequest
		want error
	}{
		{"tolerance above one", models.OptimizeRequest{Portfolio: portfolio, RiskTolerance: float64Ptr(1.5)}, quant.ErrInvalidRiskTolerance},
		{"negative tolerance", models.OptimizeRequest{Portfolio: portfolio, RiskTolerance: float64Ptr(-0.1)}, quant.ErrInvalidRiskTolerance},
		{"NaN tolerance", models.OptimizeRequest{Portfolio: portfolio, RiskTolerance: float64Ptr(math.NaN())}, quant.ErrInvalidRiskTolerance},
		{"unknown period", models.OptimizeRequest{Portfolio: portfolio, Period: "3w"}, ErrInvalidPeriod},
		{"unknown strategy", models.OptimizeRequest{Portfolio: portfolio, Strategy: "genetic"}, quant.ErrInvalidOptions},
		{"too many samples", models.OptimizeRequest{Portfolio: portfolio, Samples: quant.MaxSamples + 1}, quant.ErrInvalidOptions},
		{"negative samples", models.OptimizeRequest{Portfolio: portfolio, Samples: -1}, quant.ErrInvalidOptions},
		{"empty portfolio", models.OptimizeRequest{}, quant.ErrEmptyPortfolio},
		{"duplicate ticker", models.OptimizeRequest{Portfolio: []models.Holding{{Ticker: "AAA", Weight: 1}, {Ticker: "aaa", Weight: 1}}}, quant.ErrInvalidHoldings},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Optimize(context.Background(), &tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOptimize_OversizedSamplesFetchNothing(t *testing.T) {
	f := &fakeFetcher{series: universe()}
	svc := newTestOptimizationService(f)

	_, err := svc.Optimize(context.Background(), &models.OptimizeRequest{
		Portfolio: []models.Holding{{Ticker: "AAA", Weight: 1}},
		Samples:   1000000000,
	})
	require.ErrorIs(t, err, quant.ErrInvalidOptions)
	assert.Empty(t, f.periods)
}

func TestOptimize_FrontierCeilingUnreachable(t *testing.T) {
	svc := newTestOptimizationService(&fakeFetcher{series: universe()})
	ctx, wc := NewWarningContext(context.Background())

	resp, err := svc.Optimize(ctx, &models.OptimizeRequest{
		Portfolio:     []models.Holding{{Ticker: "AAA", Weight: 40}, {Ticker: "BBB", Weight: 30}, {Ticker: "CCC", Weight: 30}},
		Strategy:      "Frontier",
		RiskTolerance: float64Ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StrategyFrontier, resp.Strategy)
	require.NotNil(t, resp.RiskCeiling)
	assert.Equal(t, 0.0, *resp.RiskCeiling)
	assert.Nil(t, resp.Seed)
	assert.True(t, hasWarning(wc.GetWarnings(), models.WarnRiskCeilingUnreachable))
}

func TestOptimize_CancelledContext(t *testing.T) {
	svc := newTestOptimizationService(&fakeFetcher{series: universe()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Optimize(ctx, &models.OptimizeRequest{
		Portfolio: []models.Holding{{Ticker: "AAA", Weight: 1}},
	})
	require.ErrorIs(t, err, context.Canceled)
}
