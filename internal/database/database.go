package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// schema creates the price cache tables. fact_price_range records which
// dates have been fetched per ticker and when the provider updates next.
const schema = `
CREATE TABLE IF NOT EXISTS fact_price (
	ticker TEXT NOT NULL,
	date   DATE NOT NULL,
	open   DOUBLE PRECISION NOT NULL,
	high   DOUBLE PRECISION NOT NULL,
	low    DOUBLE PRECISION NOT NULL,
	close  DOUBLE PRECISION NOT NULL,
	volume BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS fact_price_range (
	ticker      TEXT PRIMARY KEY,
	start_date  DATE NOT NULL,
	end_date    DATE NOT NULL,
	next_update TIMESTAMPTZ NOT NULL
);
`

// DB wraps the Postgres connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// New connects to Postgres, verifies the connection and applies the schema
func New(ctx context.Context, pgURL string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Infof("Connected to Postgres (%d max conns)", pool.Config().MaxConns)
	return &DB{Pool: pool}, nil
}

// Close releases every pooled connection
func (d *DB) Close() {
	d.Pool.Close()
}
