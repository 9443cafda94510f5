package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/alphavantage"
	"github.com/epeers/portfolio-optimizer/internal/metrics"
	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/quant"
	"github.com/epeers/portfolio-optimizer/internal/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultRiskTolerance is used when a request leaves risk_tolerance out
const DefaultRiskTolerance = 0.5

// maxConcurrentFetches bounds simultaneous price lookups per request
const maxConcurrentFetches = 4

// SeriesFetcher resolves the closing prices of one ticker
type SeriesFetcher interface {
	FetchPriceSeries(ctx context.Context, ticker, period string, asOf time.Time) (*models.PriceSeries, error)
}

// OptimizerDefaults are the server-wide settings a request may override
type OptimizerDefaults struct {
	Options quant.Options
	Period  string
}

// OptimizationService fetches prices for a portfolio and runs the optimizer
type OptimizationService struct {
	prices   SeriesFetcher
	defaults OptimizerDefaults
}

// NewOptimizationService creates a new OptimizationService
func NewOptimizationService(prices SeriesFetcher, defaults OptimizerDefaults) *OptimizationService {
	return &OptimizationService{prices: prices, defaults: defaults}
}

// Optimize resolves request defaults, fetches every ticker concurrently and
// returns the optimized weights. Tickers whose prices cannot be fetched are
// dropped with a warning instead of failing the request.
func (s *OptimizationService) Optimize(ctx context.Context, req *models.OptimizeRequest) (*models.OptimizeResponse, error) {
	defer TrackTime("Optimize", time.Now())

	opts, tolerance, period, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	holdings, err := quant.NormalizeHoldings(req.Portfolio)
	if err != nil {
		return nil, err
	}
	var asOf time.Time
	if req.AsOf != nil {
		asOf = req.AsOf.Time
	}

	series, fetchFailures, err := s.fetchAll(ctx, holdings, period, asOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := quant.Optimize(holdings, series, tolerance, opts)
	metrics.OptimizationDuration.WithLabelValues(string(opts.Strategy)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Optimizations.WithLabelValues(string(opts.Strategy), string(quant.KindOf(err))).Inc()
		if errors.Is(err, quant.ErrNoUsableData) && len(fetchFailures) > 0 {
			return nil, fmt.Errorf("%w: %s", err, describeFailures(fetchFailures))
		}
		return nil, err
	}
	metrics.Optimizations.WithLabelValues(string(opts.Strategy), "ok").Inc()

	// The core only sees missing series; put back why each fetch failed
	for i, d := range result.Dropped {
		if reason, ok := fetchFailures[d.Ticker]; ok {
			result.Dropped[i].Reason = reason
		}
	}
	s.collectWarnings(ctx, result)

	resp := &models.OptimizeResponse{
		Strategy:         result.Strategy,
		OptimizedWeights: result.Weights,
		ExpectedReturn:   result.ExpectedReturn,
		ExpectedRisk:     result.ExpectedRisk,
		SharpeRatio:      result.SharpeRatio,
		Baseline:         result.Baseline,
		RiskCeiling:      result.RiskCeiling,
		Samples:          result.Samples,
		Seed:             result.Seed,
		Observations:     result.Observations,
		Period:           period,
		Dropped:          result.Dropped,
	}
	return resp, nil
}

// resolve merges the request with the server defaults
func (s *OptimizationService) resolve(req *models.OptimizeRequest) (quant.Options, float64, string, error) {
	opts := s.defaults.Options
	if req.Strategy != "" {
		opts.Strategy = models.Strategy(strings.ToLower(string(req.Strategy)))
	}
	if req.Samples != 0 {
		opts.Samples = req.Samples
	}
	if req.Seed != nil {
		seed := *req.Seed
		opts.Seed = &seed
	}
	if req.RiskFreeRate != nil {
		opts.RiskFreeRate = *req.RiskFreeRate
	}

	tolerance := DefaultRiskTolerance
	if req.RiskTolerance != nil {
		tolerance = *req.RiskTolerance
	}
	if math.IsNaN(tolerance) || tolerance < 0 || tolerance > 1 {
		return opts, 0, "", fmt.Errorf("%w: got %v", quant.ErrInvalidRiskTolerance, tolerance)
	}

	// Rejected before any price is fetched
	if err := opts.Validate(); err != nil {
		return opts, 0, "", err
	}

	period := s.defaults.Period
	if req.Period != "" {
		period = strings.ToLower(req.Period)
	}
	if _, err := util.PeriodStart(period, time.Now()); err != nil {
		return opts, 0, "", err
	}
	return opts, tolerance, period, nil
}

// fetchAll looks up every holding with bounded concurrency. Per-ticker
// failures are returned by ticker with their drop reason; only a cancelled
// context fails the call.
func (s *OptimizationService) fetchAll(ctx context.Context, holdings []models.Holding, period string, asOf time.Time) (map[string]*models.PriceSeries, map[string]string, error) {
	results := make([]*models.PriceSeries, len(holdings))
	errs := make([]error, len(holdings))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, h := range holdings {
		g.Go(func() error {
			results[i], errs[i] = s.prices.FetchPriceSeries(ctx, h.Ticker, period, asOf)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	series := make(map[string]*models.PriceSeries, len(holdings))
	failures := make(map[string]string)
	for i, h := range holdings {
		if errs[i] == nil {
			series[h.Ticker] = results[i]
			continue
		}
		reason := models.DropReasonFetchFailed
		if errors.Is(errs[i], ErrNoPriceData) || errors.Is(errs[i], alphavantage.ErrSymbolNotFound) {
			reason = models.DropReasonNoPriceData
		}
		failures[h.Ticker] = reason
		log.Warnf("Dropping %s from optimization (%s): %v", h.Ticker, reason, errs[i])
	}
	return series, failures, nil
}

func (s *OptimizationService) collectWarnings(ctx context.Context, result *quant.OptimizationResult) {
	if len(result.Dropped) > 0 {
		names := make([]string, len(result.Dropped))
		for i, d := range result.Dropped {
			names[i] = fmt.Sprintf("%s (%s)", d.Ticker, d.Reason)
			metrics.DroppedTickers.WithLabelValues(d.Reason).Inc()
		}
		AddWarningf(ctx, models.WarnPartialDataDropped, "excluded from the optimization: %s", strings.Join(names, ", "))
	}
	if result.BaselineScaled {
		AddWarningf(ctx, models.WarnWeightsRescaled, "baseline performance uses the submitted weights rescaled over the retained tickers")
	}
	if result.CeilingUnreachable {
		AddWarningf(ctx, models.WarnRiskCeilingUnreachable,
			"the minimum-variance portfolio (risk %.6f) exceeds the risk ceiling %.6f; returning it anyway",
			result.ExpectedRisk, *result.RiskCeiling)
	}
}

func describeFailures(failures map[string]string) string {
	parts := make([]string, 0, len(failures))
	for ticker, reason := range failures {
		parts = append(parts, ticker+" ("+reason+")")
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
