package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/epeers/portfolio-optimizer/internal/quant"
	"github.com/joho/godotenv"
)

// Price store backends
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL      string
	AVKey      string
	AVBaseURL  string
	Port       string
	PriceStore string
	SQLitePath string
	LogLevel   string
	LogFormat  string

	// Optimizer defaults, overridable per request
	OptimizerSamples int
	RiskFreeRate     float64
	PeriodsPerYear   float64
	DefaultPeriod    string

	AVRequestsPerMinute int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is read first; values already set in the shell win.
func Load() (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	avKey := os.Getenv("AV_KEY")
	if avKey == "" {
		return nil, fmt.Errorf("AV_KEY environment variable is required")
	}

	store := getEnv("PRICE_STORE", StorePostgres)
	pgURL := os.Getenv("PG_URL")
	switch store {
	case StorePostgres:
		if pgURL == "" {
			return nil, fmt.Errorf("PG_URL environment variable is required when PRICE_STORE=%s", StorePostgres)
		}
	case StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("PRICE_STORE must be one of %s, %s, %s; got %q", StorePostgres, StoreSQLite, StoreMemory, store)
	}

	samples, err := getEnvInt("OPTIMIZER_SAMPLES", 1000)
	if err != nil {
		return nil, err
	}
	if samples < 1 || samples > quant.MaxSamples {
		return nil, fmt.Errorf("OPTIMIZER_SAMPLES must be between 1 and %d, got %d", quant.MaxSamples, samples)
	}
	riskFree, err := getEnvFloat("RISK_FREE_RATE", 0.02)
	if err != nil {
		return nil, err
	}
	periods, err := getEnvFloat("PERIODS_PER_YEAR", 252)
	if err != nil {
		return nil, err
	}
	if periods <= 0 {
		return nil, fmt.Errorf("PERIODS_PER_YEAR must be positive, got %v", periods)
	}
	avRPM, err := getEnvInt("AV_REQUESTS_PER_MINUTE", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		PGURL:               pgURL,
		AVKey:               avKey,
		AVBaseURL:           os.Getenv("AV_BASE_URL"),
		Port:                getEnv("PORT", "8080"),
		PriceStore:          store,
		SQLitePath:          getEnv("SQLITE_PATH", "prices.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		OptimizerSamples:    samples,
		RiskFreeRate:        riskFree,
		PeriodsPerYear:      periods,
		DefaultPeriod:       getEnv("DEFAULT_PERIOD", "1y"),
		AVRequestsPerMinute: avRPM,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
