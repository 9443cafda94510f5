package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS fact_price (
	ticker TEXT NOT NULL,
	date   TEXT NOT NULL,
	open   REAL NOT NULL,
	high   REAL NOT NULL,
	low    REAL NOT NULL,
	close  REAL NOT NULL,
	volume INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS fact_price_range (
	ticker      TEXT PRIMARY KEY,
	start_date  TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	next_update TEXT NOT NULL
);
`

// SQLitePriceStore is a single-file price cache for deployments without Postgres.
// Dates are stored as YYYY-MM-DD text so range scans compare lexically.
type SQLitePriceStore struct {
	db *sql.DB
}

// OpenSQLitePriceStore opens (or creates) the database at path and applies the schema
func OpenSQLitePriceStore(path string) (*SQLitePriceStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer at a time; WAL keeps readers unblocked
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	log.Infof("Opened price store %s", path)
	return &SQLitePriceStore{db: db}, nil
}

// Close closes the database
func (r *SQLitePriceStore) Close() error {
	return r.db.Close()
}

// GetDailyPrices retrieves cached daily prices for a ticker within a date range
func (r *SQLitePriceStore) GetDailyPrices(ctx context.Context, ticker string, startDate, endDate time.Time) ([]models.PriceData, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, date, open, high, low, close, volume
		FROM fact_price
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		ticker, startDate.Format(models.DateLayout), endDate.Format(models.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price cache: %w", err)
	}
	defer rows.Close()

	var prices []models.PriceData
	for rows.Next() {
		var p models.PriceData
		var date string
		if err := rows.Scan(&p.Ticker, &date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		if p.Date, err = time.Parse(models.DateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// StoreDailyPrices upserts prices in a single transaction
func (r *SQLitePriceStore) StoreDailyPrices(ctx context.Context, prices []models.PriceData) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fact_price (ticker, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, date) DO UPDATE
		SET open = excluded.open, high = excluded.high, low = excluded.low,
		    close = excluded.close, volume = excluded.volume`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.ExecContext(ctx, p.Ticker, p.Date.Format(models.DateLayout), p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			return fmt.Errorf("failed to cache price: %w", err)
		}
	}
	return tx.Commit()
}

// GetPriceRange retrieves the cached date range for a ticker
func (r *SQLitePriceStore) GetPriceRange(ctx context.Context, ticker string) (*models.PriceRange, error) {
	var start, end, next string
	err := r.db.QueryRowContext(ctx,
		"SELECT start_date, end_date, next_update FROM fact_price_range WHERE ticker = ?",
		ticker,
	).Scan(&start, &end, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price range: %w", err)
	}

	pr := &models.PriceRange{Ticker: ticker}
	if pr.StartDate, err = time.Parse(models.DateLayout, start); err != nil {
		return nil, fmt.Errorf("failed to parse range start %q: %w", start, err)
	}
	if pr.EndDate, err = time.Parse(models.DateLayout, end); err != nil {
		return nil, fmt.Errorf("failed to parse range end %q: %w", end, err)
	}
	if pr.NextUpdate, err = time.Parse(time.RFC3339, next); err != nil {
		return nil, fmt.Errorf("failed to parse next update %q: %w", next, err)
	}
	return pr, nil
}

// UpsertPriceRange inserts or widens the cached date range for a ticker
func (r *SQLitePriceStore) UpsertPriceRange(ctx context.Context, ticker string, startDate, endDate, nextUpdate time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fact_price_range (ticker, start_date, end_date, next_update)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ticker) DO UPDATE
		SET start_date = MIN(fact_price_range.start_date, excluded.start_date),
		    end_date = MAX(fact_price_range.end_date, excluded.end_date),
		    next_update = excluded.next_update`,
		ticker, startDate.Format(models.DateLayout), endDate.Format(models.DateLayout), nextUpdate.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price range: %w", err)
	}
	return nil
}
