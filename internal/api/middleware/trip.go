// Package middleware provides HTTP middleware for the Gin router.
//
// Go Learning Note — Middleware Pattern (Gin):
// In Gin, middleware is any function with the signature `gin.HandlerFunc`, which
// is `func(*gin.Context)`. Middleware functions form a chain: each one runs,
// optionally calls c.Next() to pass control to the next handler, and can call
// c.Abort() to stop the chain.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridefare/pkg/utils"
)

// Context keys for request-scoped values set with c.Set and read with c.Get.
const (
	TripIDKey    = "trip_id"
	RequestIDKey = "request_id"
)

// RequireTripID checks that the :id path parameter looks like a trip ID and
// stores it under TripIDKey. Anything else is answered with 404 before a
// handler runs, since such a trip cannot exist.
//
// Go Learning Note — c.Abort():
// c.Abort() prevents subsequent handlers in the chain from running. Without it,
// even after writing an error response, the next handler would still execute.
func RequireTripID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !utils.IsValidID(id) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			c.Abort()
			return
		}
		c.Set(TripIDKey, id)
		c.Next()
	}
}

// GetTripID returns the ID stored by RequireTripID.
//
// Go Learning Note — Type Assertion:
// c.Get() returns (any, bool). The two-value form `id, _ := v.(string)`
// yields "" instead of panicking when the middleware did not run.
func GetTripID(c *gin.Context) string {
	v, _ := c.Get(TripIDKey)
	id, _ := v.(string)
	return id
}
