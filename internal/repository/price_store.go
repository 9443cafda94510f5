package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
)

// PriceStore is the persistent (L2) price cache behind the in-memory cache.
// Dates are calendar dates; ranges are inclusive on both ends.
type PriceStore interface {
	GetDailyPrices(ctx context.Context, ticker string, startDate, endDate time.Time) ([]models.PriceData, error)
	StoreDailyPrices(ctx context.Context, prices []models.PriceData) error
	GetPriceRange(ctx context.Context, ticker string) (*models.PriceRange, error)
	UpsertPriceRange(ctx context.Context, ticker string, startDate, endDate, nextUpdate time.Time) error
}

// MemoryPriceStore keeps prices in process memory. It backs PRICE_STORE=memory
// and tests; nothing survives a restart.
type MemoryPriceStore struct {
	mu     sync.RWMutex
	prices map[string]map[time.Time]models.PriceData
	ranges map[string]models.PriceRange
}

// NewMemoryPriceStore creates an empty MemoryPriceStore
func NewMemoryPriceStore() *MemoryPriceStore {
	return &MemoryPriceStore{
		prices: make(map[string]map[time.Time]models.PriceData),
		ranges: make(map[string]models.PriceRange),
	}
}

// GetDailyPrices returns the stored prices of ticker within [startDate, endDate], oldest first
func (s *MemoryPriceStore) GetDailyPrices(ctx context.Context, ticker string, startDate, endDate time.Time) ([]models.PriceData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PriceData
	for date, p := range s.prices[ticker] {
		if date.Before(startDate) || date.After(endDate) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// StoreDailyPrices inserts or replaces prices by (ticker, date)
func (s *MemoryPriceStore) StoreDailyPrices(ctx context.Context, prices []models.PriceData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range prices {
		byDate, ok := s.prices[p.Ticker]
		if !ok {
			byDate = make(map[time.Time]models.PriceData)
			s.prices[p.Ticker] = byDate
		}
		byDate[p.Date.UTC()] = p
	}
	return nil
}

// GetPriceRange returns nil when nothing was ever fetched for ticker
func (s *MemoryPriceStore) GetPriceRange(ctx context.Context, ticker string) (*models.PriceRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pr, ok := s.ranges[ticker]
	if !ok {
		return nil, nil
	}
	return &pr, nil
}

// UpsertPriceRange widens the stored range and replaces NextUpdate
func (s *MemoryPriceStore) UpsertPriceRange(ctx context.Context, ticker string, startDate, endDate, nextUpdate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.ranges[ticker]
	if !ok {
		s.ranges[ticker] = models.PriceRange{Ticker: ticker, StartDate: startDate, EndDate: endDate, NextUpdate: nextUpdate}
		return nil
	}
	if startDate.Before(pr.StartDate) {
		pr.StartDate = startDate
	}
	if endDate.After(pr.EndDate) {
		pr.EndDate = endDate
	}
	pr.NextUpdate = nextUpdate
	s.ranges[ticker] = pr
	return nil
}
