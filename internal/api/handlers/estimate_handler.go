package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridefare/internal/domain/entities"
	"ridefare/internal/services"
	"ridefare/pkg/utils"
)

type EstimateHandler struct {
	estimator *services.FareEstimator
}

func NewEstimateHandler(estimator *services.FareEstimator) *EstimateHandler {
	return &EstimateHandler{estimator: estimator}
}

type EstimateRequest struct {
	DistanceMeters  *float64 `json:"distance_m" binding:"required"`
	DurationSeconds *float64 `json:"duration_s" binding:"required"`
}

type EstimateResponse struct {
	Distance string               `json:"distance"`
	Duration string               `json:"duration"`
	Quotes   []entities.FareQuote `json:"quotes"`
}

// Estimate handles POST /estimate for callers that already know the route
// size. Negative values are treated as zero.
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quotes := h.estimator.Estimate(*req.DistanceMeters, *req.DurationSeconds)
	c.JSON(http.StatusOK, EstimateResponse{
		Distance: utils.FormatDistance(max(*req.DistanceMeters, 0)),
		Duration: utils.FormatDuration(max(*req.DurationSeconds, 0)),
		Quotes:   quotes,
	})
}
