package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridefare/internal/domain"
	"ridefare/internal/domain/entities"
)

type ProviderHandler struct {
	catalog entities.Catalog
}

func NewProviderHandler(catalog entities.Catalog) *ProviderHandler {
	return &ProviderHandler{catalog: catalog}
}

// List handles GET /providers
func (h *ProviderHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.catalog})
}

// Book handles GET /providers/:id/book by redirecting to the provider's
// booking page. Providers without a live link answer 409 instead.
func (h *ProviderHandler) Book(c *gin.Context) {
	id := c.Param("id")
	provider, ok := h.catalog.Find(id)
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id))
		return
	}
	if !provider.Bookable() {
		respondError(c, fmt.Errorf("%w: %s", domain.ErrNotBookable, id))
		return
	}
	c.Redirect(http.StatusFound, provider.BookingURL)
}
