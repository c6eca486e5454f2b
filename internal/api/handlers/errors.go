package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridefare/internal/domain"
)

// respondError maps domain errors to a status and a short JSON message.
// Unknown errors become a 500 without leaking their text.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrTripNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
	case errors.Is(err, domain.ErrProviderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
	case errors.Is(err, domain.ErrNotBookable):
		c.JSON(http.StatusConflict, gin.H{"error": "provider has no booking link"})
	case errors.Is(err, domain.ErrPositionUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "current location unavailable"})
	case errors.Is(err, domain.ErrInvalidPlace), errors.Is(err, domain.ErrUnknownEndpoint):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
