package services

import (
	"encoding/json"

	"go.uber.org/zap"

	"ridefare/internal/domain/entities"
	"ridefare/internal/logger"
)

// Broadcaster delivers a payload to everyone following a trip.
type Broadcaster interface {
	Broadcast(tripID string, payload []byte)
}

// Outbound message types written to trip subscribers.
const (
	MessageState       = "state"
	MessageSuggestions = "suggestions"
)

// StateMessage carries a trip snapshot.
type StateMessage struct {
	Type string   `json:"type"`
	Trip TripView `json:"trip"`
}

// SuggestionsMessage carries debounced search results for one field.
type SuggestionsMessage struct {
	Type   string           `json:"type"`
	Field  Endpoint         `json:"field"`
	Query  string           `json:"query"`
	Places []entities.Place `json:"places"`
}

// NotificationService pushes trip updates to subscribers. With a nil
// broadcaster it only logs, which is what tests and one-shot tools use.
type NotificationService struct {
	broadcaster Broadcaster
	log         *zap.Logger
}

func NewNotificationService(b Broadcaster, log *zap.Logger) *NotificationService {
	return &NotificationService{broadcaster: b, log: logger.OrNop(log)}
}

// NotifyTripState sends the latest snapshot of a trip.
func (s *NotificationService) NotifyTripState(view TripView) {
	s.log.Debug("trip state changed",
		zap.String("trip_id", view.ID),
		zap.Uint64("revision", view.Revision),
		zap.Bool("loading", view.Loading),
		zap.Int("quotes", len(view.Quotes)),
		zap.String("error_kind", string(view.ErrorKind)),
	)
	s.send(view.ID, StateMessage{Type: MessageState, Trip: view})
}

// NotifySuggestions sends place suggestions for a search field.
func (s *NotificationService) NotifySuggestions(tripID string, field Endpoint, query string, places []entities.Place) {
	s.log.Debug("suggestions ready",
		zap.String("trip_id", tripID),
		zap.String("field", string(field)),
		zap.Int("count", len(places)),
	)
	s.send(tripID, SuggestionsMessage{Type: MessageSuggestions, Field: field, Query: query, Places: places})
}

func (s *NotificationService) send(tripID string, msg any) {
	if s.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("encode trip message", zap.String("trip_id", tripID), zap.Error(err))
		return
	}
	s.broadcaster.Broadcast(tripID, payload)
}
