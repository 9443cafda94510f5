package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPriceStore handles database operations for price caching in Postgres
type PostgresPriceStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPriceStore creates a new PostgresPriceStore
func NewPostgresPriceStore(pool *pgxpool.Pool) *PostgresPriceStore {
	return &PostgresPriceStore{pool: pool}
}

// GetDailyPrices retrieves cached daily prices for a ticker within a date range
func (r *PostgresPriceStore) GetDailyPrices(ctx context.Context, ticker string, startDate, endDate time.Time) ([]models.PriceData, error) {
	query := `
		SELECT ticker, date, open, high, low, close, volume
		FROM fact_price
		WHERE ticker = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := r.pool.Query(ctx, query, ticker, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query price cache: %w", err)
	}
	defer rows.Close()

	var prices []models.PriceData
	for rows.Next() {
		var p models.PriceData
		if err := rows.Scan(&p.Ticker, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// StoreDailyPrices stores daily prices in postgres
func (r *PostgresPriceStore) StoreDailyPrices(ctx context.Context, prices []models.PriceData) error {
	if len(prices) == 0 {
		return nil
	}

	query := `
		INSERT INTO fact_price (ticker, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, date) DO UPDATE
		SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
		    close = EXCLUDED.close, volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, p.Ticker, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range prices {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to cache price: %w", err)
		}
	}
	return nil
}

// GetPriceRange retrieves the cached date range for a ticker
func (r *PostgresPriceStore) GetPriceRange(ctx context.Context, ticker string) (*models.PriceRange, error) {
	query := `
		SELECT ticker, start_date, end_date, next_update
		FROM fact_price_range
		WHERE ticker = $1
	`
	pr := &models.PriceRange{}
	err := r.pool.QueryRow(ctx, query, ticker).Scan(
		&pr.Ticker, &pr.StartDate, &pr.EndDate, &pr.NextUpdate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price range: %w", err)
	}
	return pr, nil
}

// UpsertPriceRange inserts or updates the cached date range for a ticker
// It expands the range using LEAST/GREATEST to merge with existing data
func (r *PostgresPriceStore) UpsertPriceRange(ctx context.Context, ticker string, startDate, endDate, nextUpdate time.Time) error {
	query := `
		INSERT INTO fact_price_range (ticker, start_date, end_date, next_update)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO UPDATE
		SET start_date = LEAST(fact_price_range.start_date, EXCLUDED.start_date),
		    end_date = GREATEST(fact_price_range.end_date, EXCLUDED.end_date),
		    next_update = EXCLUDED.next_update
	`
	_, err := r.pool.Exec(ctx, query, ticker, startDate, endDate, nextUpdate)
	if err != nil {
		return fmt.Errorf("failed to upsert price range: %w", err)
	}
	return nil
}
