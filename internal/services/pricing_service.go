package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/alphavantage"
	"github.com/epeers/portfolio-optimizer/internal/cache"
	"github.com/epeers/portfolio-optimizer/internal/metrics"
	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/quant"
	"github.com/epeers/portfolio-optimizer/internal/repository"
	"github.com/epeers/portfolio-optimizer/internal/util"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrInvalidPeriod is returned for a lookback period outside 1mo..5y, max
	ErrInvalidPeriod = util.ErrInvalidPeriod
	// ErrNoPriceData is returned when no closes exist for the requested window
	ErrNoPriceData = errors.New("no price data")
)

// truncationSlack is how far after the period start the first close may land
// before the series is reported as shorter than requested. Covers weekends
// and market holidays.
const truncationSlack = 7 * 24 * time.Hour

// PricingService resolves closing price series through the memory cache, the
// persistent price store and finally AlphaVantage
type PricingService struct {
	memCache *cache.MemoryCache
	store    repository.PriceStore
	avClient *alphavantage.Client
	now      func() time.Time
}

// NewPricingService creates a new PricingService
func NewPricingService(
	memCache *cache.MemoryCache,
	store repository.PriceStore,
	avClient *alphavantage.Client,
) *PricingService {
	return &PricingService{
		memCache: memCache,
		store:    store,
		avClient: avClient,
		now:      time.Now,
	}
}

// FetchPriceSeries returns the daily closes of ticker over period, ending at
// asOf (today when zero), oldest first.
func (s *PricingService) FetchPriceSeries(ctx context.Context, ticker, period string, asOf time.Time) (*models.PriceSeries, error) {
	defer TrackTime("FetchPriceSeries", time.Now())

	ticker = quant.NormalizeTicker(ticker)
	currentDT := s.now()
	if asOf.IsZero() {
		asOf = currentDT
	}
	endDate := util.TruncateToDate(asOf)
	startDate, err := util.PeriodStart(period, endDate)
	if err != nil {
		return nil, err
	}

	if series, ok := s.memCache.GetSeries(ticker, period, endDate); ok {
		metrics.PriceLookups.WithLabelValues(metrics.SourceMemory).Inc()
		warnIfTruncated(ctx, series, period, startDate)
		return series, nil
	}

	priceRange, err := s.store.GetPriceRange(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to get price range: %w", err)
	}

	needsFetch, fetchStyle := DetermineFetch(priceRange, currentDT, startDate)
	source := metrics.SourceStore
	if needsFetch {
		if err := s.refresh(ctx, ticker, fetchStyle, currentDT); err != nil {
			if priceRange == nil {
				return nil, fmt.Errorf("failed to fetch prices from AlphaVantage: %w", err)
			}
			// Serve what is already stored rather than fail on a refresh
			log.Warnf("Refreshing %s failed, serving cached prices: %v", ticker, err)
		} else {
			source = metrics.SourceAlphaVantage
		}
	}

	prices, err := s.store.GetDailyPrices(ctx, ticker, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get prices from store: %w", err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w for %s over %s", ErrNoPriceData, ticker, period)
	}
	metrics.PriceLookups.WithLabelValues(source).Inc()

	series := models.ToPriceSeries(ticker, prices)
	s.memCache.SetSeries(ticker, period, endDate, series)
	warnIfTruncated(ctx, series, period, startDate)
	return series, nil
}

// warnIfTruncated adds W2002 when the series starts well after the period does
func warnIfTruncated(ctx context.Context, series *models.PriceSeries, period string, startDate time.Time) {
	if startDate.IsZero() || series.Len() == 0 {
		return
	}
	first := series.Points[0].Date
	if first.Sub(startDate) <= truncationSlack {
		return
	}
	AddWarningf(ctx, models.WarnPeriodTruncated, "%s has prices from %s only; requested %s starts %s",
		series.Ticker, first.Format(models.DateLayout), period, startDate.Format(models.DateLayout))
}

// refresh pulls ticker from AlphaVantage into the store. Store failures are
// logged; only a failed download is an error.
func (s *PricingService) refresh(ctx context.Context, ticker, fetchStyle string, currentDT time.Time) error {
	avPrices, err := s.avClient.GetDailyPrices(ctx, ticker, fetchStyle)
	if err != nil {
		return err
	}
	if len(avPrices) == 0 {
		return nil
	}

	allPrices := make([]models.PriceData, 0, len(avPrices))
	minDate, maxDate := avPrices[0].Date, avPrices[0].Date
	for _, p := range avPrices {
		allPrices = append(allPrices, models.PriceData{
			Ticker: ticker,
			Date:   p.Date,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		})
		if p.Date.Before(minDate) {
			minDate = p.Date
		}
		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	// A full download is all the history AlphaVantage has, so every earlier
	// start date counts as covered from now on.
	if fetchStyle == alphavantage.OutputFull {
		minDate = time.Time{}
	}

	if err := s.store.StoreDailyPrices(ctx, allPrices); err != nil {
		log.Errorf("failed to store prices for %s: %v", ticker, err)
		return nil
	}
	if err := s.store.UpsertPriceRange(ctx, ticker, minDate, maxDate, util.NextMarketDate(currentDT)); err != nil {
		log.Errorf("failed to update price range for %s: %v", ticker, err)
	}
	return nil
}

// DetermineFetch decides whether the stored range can serve a request that
// starts at effectiveStart, and which AlphaVantage output size to use if not.
func DetermineFetch(priceRange *models.PriceRange, currentDT time.Time, effectiveStart time.Time) (bool, string) {
	if priceRange == nil {
		// No cached data at all - need full fetch
		return true, alphavantage.OutputFull
	}

	if effectiveStart.Before(priceRange.StartDate) {
		// History we've never fetched; compact only reaches back 100 sessions
		return true, alphavantage.OutputFull
	}

	// Start is covered. Use NextUpdate for refresh timing.
	if priceRange.NextUpdate.After(currentDT) {
		return false, ""
	}

	// NextUpdate has passed: a compact pull fills the gap if it is short
	if currentDT.Sub(priceRange.EndDate).Hours()/24.0 < 100.0 {
		return true, alphavantage.OutputCompact
	}
	return true, alphavantage.OutputFull
}
