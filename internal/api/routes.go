package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"ridefare/internal/api/handlers"
	"ridefare/internal/api/middleware"
	"ridefare/internal/logger"
	"ridefare/internal/services"
)

type Router struct {
	tripHandler     *handlers.TripHandler
	placeHandler    *handlers.PlaceHandler
	estimateHandler *handlers.EstimateHandler
	providerHandler *handlers.ProviderHandler
	streamHandler   *handlers.StreamHandler
	metricsHandler  http.Handler
	log             *zap.Logger
}

func NewRouter(
	tripHandler *handlers.TripHandler,
	placeHandler *handlers.PlaceHandler,
	estimateHandler *handlers.EstimateHandler,
	providerHandler *handlers.ProviderHandler,
	streamHandler *handlers.StreamHandler,
	metricsHandler http.Handler,
	log *zap.Logger,
) *Router {
	return &Router{
		tripHandler:     tripHandler,
		placeHandler:    placeHandler,
		estimateHandler: estimateHandler,
		providerHandler: providerHandler,
		streamHandler:   streamHandler,
		metricsHandler:  metricsHandler,
		log:             logger.OrNop(log),
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	// Request ID must come first so every log line carries it.
	engine.Use(middleware.RequestID(), middleware.Logger(r.log), middleware.Recovery(r.log))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if r.metricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	engine.GET("/providers", r.providerHandler.List)
	engine.GET("/providers/:id/book", r.providerHandler.Book)

	places := engine.Group("/places")
	{
		places.GET("/search", r.placeHandler.Search)
		places.POST("/current", r.placeHandler.Current)
	}

	engine.POST("/estimate", r.estimateHandler.Estimate)

	engine.POST("/trips", r.tripHandler.Create)
	trip := engine.Group("/trips/:id")
	trip.Use(middleware.RequireTripID())
	{
		trip.GET("", r.tripHandler.Get)
		trip.DELETE("", r.tripHandler.Delete)

		trip.PUT("/origin", r.tripHandler.SetEndpoint(services.EndpointOrigin))
		trip.DELETE("/origin", r.tripHandler.ClearEndpoint(services.EndpointOrigin))
		trip.POST("/origin/current", r.tripHandler.UseCurrentLocation)

		trip.PUT("/destination", r.tripHandler.SetEndpoint(services.EndpointDestination))
		trip.DELETE("/destination", r.tripHandler.ClearEndpoint(services.EndpointDestination))

		trip.POST("/swap", r.tripHandler.Swap)
		trip.GET("/ws", r.streamHandler.Serve)
	}
}

// WithCORS wraps the engine so a browser client served from another origin
// can call the API.
func WithCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
