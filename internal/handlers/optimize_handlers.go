package handlers

import (
	"net/http"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/services"
	"github.com/gin-gonic/gin"
)

// OptimizeHandler handles portfolio optimization endpoints
type OptimizeHandler struct {
	optimizationSvc *services.OptimizationService
}

// NewOptimizeHandler creates a new OptimizeHandler
func NewOptimizeHandler(optimizationSvc *services.OptimizationService) *OptimizeHandler {
	return &OptimizeHandler{
		optimizationSvc: optimizationSvc,
	}
}

// Optimize handles POST /portfolios/optimize
// @Summary Optimize portfolio weights for a risk tolerance
// @Description Reweights the submitted holdings using historical closing prices.
// @Description sampling: risk_tolerance scales the largest sampled risk and the closest sample wins.
// @Description frontier: risk_tolerance times the riskiest single asset caps the risk; the best Sharpe ratio under the cap wins.
// @Tags portfolios
// @Accept json
// @Produce json
// @Param request body models.OptimizeRequest true "Holdings and optimizer settings"
// @Success 200 {object} models.OptimizeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/optimize [post]
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req models.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	resp, err := h.optimizationSvc.Optimize(ctx, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, resp)
}
