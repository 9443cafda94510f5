package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/services"
	"github.com/gin-gonic/gin"
)

// PriceHandler serves the closing price series the optimizer works from
type PriceHandler struct {
	prices        services.SeriesFetcher
	defaultPeriod string
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(prices services.SeriesFetcher, defaultPeriod string) *PriceHandler {
	return &PriceHandler{
		prices:        prices,
		defaultPeriod: defaultPeriod,
	}
}

// GetPrices handles GET /prices
// @Summary Get daily closing prices
// @Description Returns the closes for a ticker over a lookback period, oldest first
// @Tags prices
// @Produce json
// @Param ticker query string true "Ticker symbol"
// @Param period query string false "Lookback period (1mo, 3mo, 6mo, 1y, 2y, 5y, max)"
// @Param as_of query string false "Last date of the window (YYYY-MM-DD), defaults to today"
// @Success 200 {object} models.GetPricesResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /prices [get]
func (h *PriceHandler) GetPrices(c *gin.Context) {
	var req models.GetPricesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	period := h.defaultPeriod
	if req.Period != "" {
		period = strings.ToLower(req.Period)
	}

	var asOf time.Time
	if req.AsOf != "" {
		parsed, err := models.ParseFlexibleDate(req.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: "invalid as_of: " + err.Error(),
			})
			return
		}
		asOf = parsed
	}

	series, err := h.prices.FetchPriceSeries(c.Request.Context(), req.Ticker, period, asOf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GetPricesResponse{
		Ticker:     series.Ticker,
		Period:     period,
		DataPoints: series.Len(),
		Prices:     series.Points,
	})
}
