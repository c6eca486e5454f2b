package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ridefare/internal/config"
	"ridefare/internal/domain"
	"ridefare/internal/domain/entities"
	"ridefare/internal/geocoding"
	"ridefare/internal/logger"
	"ridefare/internal/metrics"
	"ridefare/internal/repository"
	"ridefare/pkg/utils"
)

// Endpoint names one side of a trip.
type Endpoint string

const (
	EndpointOrigin      Endpoint = "origin"
	EndpointDestination Endpoint = "destination"
)

// ParseEndpoint validates a field name coming from a client.
func ParseEndpoint(s string) (Endpoint, error) {
	switch e := Endpoint(s); e {
	case EndpointOrigin, EndpointDestination:
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownEndpoint, s)
}

// PlaceFinder is the geocoding side of a trip.
type PlaceFinder interface {
	Search(ctx context.Context, text string) []entities.Place
	ResolveCurrentLocation(ctx context.Context, provider geocoding.PositionProvider) (entities.Place, error)
	MinQueryLength() int
}

// TripView is a trip snapshot as clients see it: the state plus display
// strings for the route size.
type TripView struct {
	ID string `json:"id"`
	entities.TripState
	Distance string `json:"distance,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// NewTripView wraps a snapshot of trip id.
func NewTripView(id string, state entities.TripState) TripView {
	v := TripView{ID: id, TripState: state}
	if state.Route != nil {
		v.Distance = utils.FormatDistance(state.Route.DistanceMeters)
		v.Duration = utils.FormatDuration(state.Route.DurationSeconds)
	}
	return v
}

// TripSession is one browser tab's comparison: a controller plus a
// debounced search per input field.
type TripSession struct {
	ID        string
	CreatedAt time.Time

	controller *TripController
	searches   map[Endpoint]*Debouncer
}

// SessionID implements repository.Session.
func (s *TripSession) SessionID() string { return s.ID }

// Close stops pending searches and any in-flight route evaluation.
func (s *TripSession) Close() {
	for _, d := range s.searches {
		d.Stop()
	}
	s.controller.Close()
}

// View returns the current snapshot.
func (s *TripSession) View() TripView {
	return NewTripView(s.ID, s.controller.State())
}

// TripService manages trip sessions and routes user intents to their
// controllers.
type TripService struct {
	sessions  repository.SessionRepository[*TripSession]
	places    PlaceFinder
	router    RouteFinder
	estimator QuoteEstimator
	notifier  *NotificationService
	config    *config.Config
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewTripService(
	sessions repository.SessionRepository[*TripSession],
	places PlaceFinder,
	router RouteFinder,
	estimator QuoteEstimator,
	notifier *NotificationService,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
) *TripService {
	if notifier == nil {
		notifier = NewNotificationService(nil, log)
	}
	return &TripService{
		sessions:  sessions,
		places:    places,
		router:    router,
		estimator: estimator,
		notifier:  notifier,
		config:    cfg,
		log:       logger.OrNop(log),
		metrics:   m,
	}
}

// CreateTrip starts an empty trip session.
func (s *TripService) CreateTrip(ctx context.Context) (TripView, error) {
	id := utils.GenerateID()
	session := &TripSession{
		ID:        id,
		CreatedAt: time.Now(),
		searches: map[Endpoint]*Debouncer{
			EndpointOrigin:      NewDebouncer(s.config.Geocoding.DebounceDelay),
			EndpointDestination: NewDebouncer(s.config.Geocoding.DebounceDelay),
		},
	}
	session.controller = NewTripController(s.router, s.estimator, s.config.Routing.Timeout,
		WithOnChange(func(state entities.TripState) {
			s.notifier.NotifyTripState(NewTripView(id, state))
		}),
		WithControllerLogger(s.log.With(zap.String("trip_id", id))),
		WithControllerMetrics(s.metrics),
	)

	if err := s.sessions.Create(ctx, session); err != nil {
		return TripView{}, err
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	s.log.Info("trip created", zap.String("trip_id", id))
	return session.View(), nil
}

// GetTrip returns the current snapshot of a trip.
func (s *TripService) GetTrip(ctx context.Context, id string) (TripView, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return TripView{}, err
	}
	return session.View(), nil
}

// DeleteTrip ends a session and cancels its background work.
func (s *TripService) DeleteTrip(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	s.log.Info("trip deleted", zap.String("trip_id", id))
	return nil
}

// SetEndpoint selects (or, with a nil place, clears) one side of the trip
// and returns the snapshot after re-evaluation.
func (s *TripService) SetEndpoint(ctx context.Context, id string, endpoint Endpoint, place *entities.Place) (TripView, error) {
	if place != nil {
		if err := place.Point.Validate(); err != nil {
			return TripView{}, fmt.Errorf("%w: %v", domain.ErrInvalidPlace, err)
		}
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return TripView{}, err
	}

	// A selection supersedes any search still pending for that field.
	if d, ok := session.searches[endpoint]; ok {
		d.Cancel()
	}

	var state entities.TripState
	switch endpoint {
	case EndpointOrigin:
		state = session.controller.SetOrigin(ctx, place)
	case EndpointDestination:
		state = session.controller.SetDestination(ctx, place)
	default:
		return TripView{}, fmt.Errorf("%w: %q", domain.ErrUnknownEndpoint, endpoint)
	}
	return NewTripView(id, state), nil
}

// UseCurrentLocation resolves the device position and makes it the origin.
func (s *TripService) UseCurrentLocation(ctx context.Context, id string, provider geocoding.PositionProvider) (TripView, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return TripView{}, err
	}
	place, err := s.places.ResolveCurrentLocation(ctx, provider)
	if err != nil {
		return TripView{}, err
	}
	return s.SetEndpoint(ctx, id, EndpointOrigin, &place)
}

// Swap exchanges origin and destination.
func (s *TripService) Swap(ctx context.Context, id string) (TripView, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return TripView{}, err
	}
	return NewTripView(id, session.controller.Swap(ctx)), nil
}

// Search looks places up immediately, without debouncing.
func (s *TripService) Search(ctx context.Context, query string) []entities.Place {
	return s.places.Search(ctx, query)
}

// ResolvePlace turns a device position into a place without touching any
// trip.
func (s *TripService) ResolvePlace(ctx context.Context, provider geocoding.PositionProvider) (entities.Place, error) {
	return s.places.ResolveCurrentLocation(ctx, provider)
}

// QueueSearch schedules a debounced search for one input field of a trip.
// Results are pushed to the trip's subscribers. A query below the minimum
// length cancels pending work and clears the suggestions right away.
func (s *TripService) QueueSearch(ctx context.Context, id string, endpoint Endpoint, query string) error {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	d, ok := session.searches[endpoint]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEndpoint, endpoint)
	}

	if utf8.RuneCountInString(strings.TrimSpace(query)) < s.places.MinQueryLength() {
		d.Cancel()
		s.notifier.NotifySuggestions(id, endpoint, query, []entities.Place{})
		return nil
	}

	d.Trigger(func(ctx context.Context) {
		places := s.places.Search(ctx, query)
		if ctx.Err() != nil {
			return
		}
		s.notifier.NotifySuggestions(id, endpoint, query, places)
	})
	return nil
}

// ActiveTrips reports the number of live sessions.
func (s *TripService) ActiveTrips() int {
	return s.sessions.Count()
}
