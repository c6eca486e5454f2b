package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridefare/internal/api/middleware"
	"ridefare/internal/domain/entities"
	"ridefare/internal/geocoding"
	"ridefare/internal/services"
)

type TripHandler struct {
	tripService *services.TripService
}

func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// PlaceRequest is a place picked from the suggestion list. Coordinates are
// pointers so that 0 is accepted while a missing value is not.
type PlaceRequest struct {
	Lat         *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lon         *float64 `json:"lon" binding:"required,gte=-180,lte=180"`
	DisplayName string   `json:"display_name" binding:"required"`
	Name        string   `json:"name"`
}

func (r PlaceRequest) toPlace() *entities.Place {
	return &entities.Place{
		Point:       entities.NewGeoPoint(*r.Lat, *r.Lon),
		DisplayName: r.DisplayName,
		Name:        r.Name,
	}
}

// PositionRequest is a device fix the browser obtained itself.
type PositionRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

func (r PositionRequest) provider() geocoding.PositionProvider {
	return geocoding.StaticPosition{Latitude: *r.Lat, Longitude: *r.Lon}
}

// Create handles POST /trips
func (h *TripHandler) Create(c *gin.Context) {
	view, err := h.tripService.CreateTrip(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get handles GET /trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	view, err := h.tripService.GetTrip(c.Request.Context(), middleware.GetTripID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	if err := h.tripService.DeleteTrip(c.Request.Context(), middleware.GetTripID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetEndpoint returns the handler for PUT /trips/:id/{origin,destination}
func (h *TripHandler) SetEndpoint(endpoint services.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		view, err := h.tripService.SetEndpoint(c.Request.Context(), middleware.GetTripID(c), endpoint, req.toPlace())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// ClearEndpoint returns the handler for DELETE /trips/:id/{origin,destination}
func (h *TripHandler) ClearEndpoint(endpoint services.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := h.tripService.SetEndpoint(c.Request.Context(), middleware.GetTripID(c), endpoint, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// UseCurrentLocation handles POST /trips/:id/origin/current
func (h *TripHandler) UseCurrentLocation(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.tripService.UseCurrentLocation(c.Request.Context(), middleware.GetTripID(c), req.provider())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Swap handles POST /trips/:id/swap
func (h *TripHandler) Swap(c *gin.Context) {
	view, err := h.tripService.Swap(c.Request.Context(), middleware.GetTripID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
