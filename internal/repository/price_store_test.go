package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/database"
	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// exercisePriceStore runs the behavior every PriceStore must share
func exercisePriceStore(t *testing.T, store PriceStore, ticker string) {
	ctx := context.Background()

	pr, err := store.GetPriceRange(ctx, ticker)
	require.NoError(t, err)
	assert.Nil(t, pr, "range of an unknown ticker")

	prices := []models.PriceData{
		{Ticker: ticker, Date: day(2024, 1, 4), Open: 101, High: 103, Low: 100, Close: 102, Volume: 1200},
		{Ticker: ticker, Date: day(2024, 1, 2), Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
		{Ticker: ticker, Date: day(2024, 1, 3), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1100},
	}
	require.NoError(t, store.StoreDailyPrices(ctx, prices))

	got, err := store.GetDailyPrices(ctx, ticker, day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Date.Equal(day(2024, 1, 2)), "oldest first")
	assert.Equal(t, 102.0, got[2].Close)
	assert.Equal(t, int64(1200), got[2].Volume)

	// bounds are inclusive
	got, err = store.GetDailyPrices(ctx, ticker, day(2024, 1, 3), day(2024, 1, 3))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 101.0, got[0].Close)

	// upsert replaces by (ticker, date)
	require.NoError(t, store.StoreDailyPrices(ctx, []models.PriceData{
		{Ticker: ticker, Date: day(2024, 1, 3), Open: 100, High: 102, Low: 99, Close: 101.5, Volume: 1150},
	}))
	got, err = store.GetDailyPrices(ctx, ticker, time.Time{}, day(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 101.5, got[1].Close)

	next := time.Date(2024, 1, 5, 21, 30, 0, 0, time.UTC)
	require.NoError(t, store.UpsertPriceRange(ctx, ticker, day(2024, 1, 2), day(2024, 1, 4), next))
	pr, err = store.GetPriceRange(ctx, ticker)
	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.True(t, pr.StartDate.Equal(day(2024, 1, 2)))
	assert.True(t, pr.EndDate.Equal(day(2024, 1, 4)))
	assert.True(t, pr.NextUpdate.Equal(next))

	// the range only widens; NextUpdate always moves to the latest value
	later := next.Add(24 * time.Hour)
	require.NoError(t, store.UpsertPriceRange(ctx, ticker, day(2024, 1, 3), day(2024, 1, 10), later))
	pr, err = store.GetPriceRange(ctx, ticker)
	require.NoError(t, err)
	assert.True(t, pr.StartDate.Equal(day(2024, 1, 2)))
	assert.True(t, pr.EndDate.Equal(day(2024, 1, 10)))
	assert.True(t, pr.NextUpdate.Equal(later))
}

func TestMemoryPriceStore(t *testing.T) {
	exercisePriceStore(t, NewMemoryPriceStore(), "MEM")
}

func TestSQLitePriceStore(t *testing.T) {
	store, err := OpenSQLitePriceStore(filepath.Join(t.TempDir(), "prices.db"))
	require.NoError(t, err)
	defer store.Close()

	exercisePriceStore(t, store, "LITE")
}

func TestSQLitePriceStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.db")
	store, err := OpenSQLitePriceStore(path)
	require.NoError(t, err)
	require.NoError(t, store.StoreDailyPrices(context.Background(), []models.PriceData{
		{Ticker: "KEEP", Date: day(2024, 2, 1), Close: 10},
	}))
	require.NoError(t, store.Close())

	store, err = OpenSQLitePriceStore(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetDailyPrices(context.Background(), "KEEP", time.Time{}, day(2030, 1, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0].Close)
}

func TestPostgresPriceStore(t *testing.T) {
	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		t.Skip("PG_URL environment variable not set, skipping Postgres store test")
	}
	ctx := context.Background()
	db, err := database.New(ctx, pgURL)
	require.NoError(t, err)
	defer db.Close()

	ticker := "ZZTEST" + time.Now().Format("150405")
	t.Cleanup(func() {
		db.Pool.Exec(ctx, "DELETE FROM fact_price WHERE ticker = $1", ticker)
		db.Pool.Exec(ctx, "DELETE FROM fact_price_range WHERE ticker = $1", ticker)
	})
	exercisePriceStore(t, NewPostgresPriceStore(db.Pool), ticker)
}
