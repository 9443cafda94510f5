package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Price sources, from cheapest to most expensive
const (
	SourceMemory       = "memory"
	SourceStore        = "store"
	SourceAlphaVantage = "alphavantage"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimizer_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	}, []string{"route"})

	Optimizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_optimizations_total",
		Help: "Optimization runs by strategy and outcome (ok or an error kind)",
	}, []string{"strategy", "outcome"})

	OptimizationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimizer_optimization_duration_seconds",
		Help:    "Time spent in the optimizer core, excluding price fetches",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"strategy"})

	PriceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_price_lookups_total",
		Help: "Price series lookups by the source that served them",
	}, []string{"source"})

	DroppedTickers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_dropped_tickers_total",
		Help: "Tickers excluded from an optimization, by reason",
	}, []string{"reason"})
)
