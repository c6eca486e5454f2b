package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridefare/internal/services"
)

type PlaceHandler struct {
	tripService *services.TripService
}

func NewPlaceHandler(tripService *services.TripService) *PlaceHandler {
	return &PlaceHandler{tripService: tripService}
}

// Search handles GET /places/search?q=
//
// It always answers 200: a short query or an upstream failure simply
// yields no places.
func (h *PlaceHandler) Search(c *gin.Context) {
	places := h.tripService.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"places": places})
}

// Current handles POST /places/current
func (h *PlaceHandler) Current(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	place, err := h.tripService.ResolvePlace(c.Request.Context(), req.provider())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, place)
}
