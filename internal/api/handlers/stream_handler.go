package handlers

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ridefare/internal/api/middleware"
	"ridefare/internal/logger"
	"ridefare/internal/services"
	"ridefare/internal/stream"
)

// inboundMessage is what a browser tab sends over the trip socket.
type inboundMessage struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Query string `json:"query"`
}

const inboundSearch = "search"

type StreamHandler struct {
	tripService *services.TripService
	hub         *stream.Hub
	upgrader    *websocket.Upgrader
	log         *zap.Logger
}

func NewStreamHandler(tripService *services.TripService, hub *stream.Hub, log *zap.Logger) *StreamHandler {
	return &StreamHandler{
		tripService: tripService,
		hub:         hub,
		upgrader:    stream.Upgrader(nil),
		log:         logger.OrNop(log),
	}
}

// Serve handles GET /trips/:id/ws. The first frame is the current trip
// state; later frames are state changes and search suggestions.
func (h *StreamHandler) Serve(c *gin.Context) {
	tripID := middleware.GetTripID(c)
	view, err := h.tripService.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	initial, err := json.Marshal(services.StateMessage{Type: services.MessageState, Trip: view})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, h.upgrader, tripID, initial, h.onMessage); err != nil {
		h.log.Debug("websocket upgrade failed", zap.String("trip_id", tripID), zap.Error(err))
	}
}

func (h *StreamHandler) onMessage(ctx context.Context, client *stream.Client, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.reply(client, "malformed message")
		return
	}
	if msg.Type != inboundSearch {
		h.reply(client, "unsupported message type")
		return
	}

	field, err := services.ParseEndpoint(msg.Field)
	if err != nil {
		h.reply(client, err.Error())
		return
	}
	if err := h.tripService.QueueSearch(ctx, client.TripID, field, msg.Query); err != nil {
		h.reply(client, err.Error())
	}
}

// reply writes an error frame to this client only.
func (h *StreamHandler) reply(client *stream.Client, text string) {
	payload, err := json.Marshal(gin.H{"type": "error", "error": text})
	if err != nil {
		h.log.Error("encode error frame", zap.Error(err))
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}
