package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/epeers/portfolio-optimizer/internal/alphavantage"
	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/quant"
	"github.com/epeers/portfolio-optimizer/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps a service error onto a status code and ErrorResponse.
// Request problems are 400, price data the optimizer cannot work with is 422.
func respondError(c *gin.Context, err error) {
	switch {
	case quant.IsInputError(err), errors.Is(err, services.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrNoPriceData), errors.Is(err, alphavantage.ErrSymbolNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case quant.KindOf(err) != quant.KindUnknown:
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   string(quant.KindOf(err)),
			Message: err.Error(),
		})
	case errors.Is(err, alphavantage.ErrRateLimited):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "rate_limited",
			Message: err.Error(),
		})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Error:   "timeout",
			Message: err.Error(),
		})
	default:
		log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
