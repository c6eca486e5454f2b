package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"ridefare/internal/domain"
	"ridefare/internal/domain/entities"
	"ridefare/internal/logger"
	"ridefare/internal/metrics"
)

// RouteFinder fetches a route between two points. It returns (nil, nil) when
// the service found no path, and an error wrapping domain.ErrNetworkFailure
// when it could not be asked.
type RouteFinder interface {
	GetRoute(ctx context.Context, origin, destination entities.GeoPoint) (*entities.RoutePath, error)
}

// QuoteEstimator turns a route's size into provider quotes.
type QuoteEstimator interface {
	Estimate(distanceMeters, durationSeconds float64) []entities.FareQuote
}

// Evaluation results reported to metrics.
const (
	evalRoute   = "route"
	evalNoRoute = "no_route"
	evalNetwork = "network"
	evalStale   = "stale"
	evalSkipped = "skipped"
)

// TripController owns one TripState and keeps its route and quotes in step
// with the chosen endpoints.
//
// Every intent (SetOrigin, SetDestination, Swap) bumps a generation counter
// and cancels the evaluation started by the previous intent. When a route
// request returns, its result is applied only if no newer intent has arrived
// in the meantime, so a slow answer for an old pair of endpoints can never
// overwrite the answer for the current one.
//
// Go Learning Note — Generation Counters:
// Cancelling the old context is not enough on its own: the old request may
// already have returned and be waiting for the mutex. Comparing the
// generation captured at the start with the current one under the lock is
// what actually makes the discard race-free.
type TripController struct {
	router       RouteFinder
	estimator    QuoteEstimator
	routeTimeout time.Duration
	onChange     func(entities.TripState)
	log          *zap.Logger
	metrics      *metrics.Metrics

	mu         sync.Mutex
	state      entities.TripState
	generation uint64
	cancelEval context.CancelFunc
	closed     bool

	notifyMu     sync.Mutex
	lastNotified uint64
}

// ControllerOption customizes a TripController.
type ControllerOption func(*TripController)

// WithOnChange registers a callback that receives every new snapshot. It
// runs outside the state lock, and snapshots arrive in revision order.
func WithOnChange(fn func(entities.TripState)) ControllerOption {
	return func(c *TripController) { c.onChange = fn }
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(c *TripController) { c.log = logger.OrNop(l) }
}

// WithControllerMetrics records evaluation results on m.
func WithControllerMetrics(m *metrics.Metrics) ControllerOption {
	return func(c *TripController) { c.metrics = m }
}

// NewTripController returns a controller with an empty trip. routeTimeout
// bounds each route request.
func NewTripController(router RouteFinder, estimator QuoteEstimator, routeTimeout time.Duration, opts ...ControllerOption) *TripController {
	c := &TripController{
		router:       router,
		estimator:    estimator,
		routeTimeout: routeTimeout,
		log:          zap.NewNop(),
		state:        entities.TripState{Quotes: []entities.FareQuote{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current trip.
func (c *TripController) State() entities.TripState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetOrigin replaces the origin (nil clears it) and re-evaluates the trip.
// It returns once this intent's evaluation has finished or been superseded.
func (c *TripController) SetOrigin(ctx context.Context, place *entities.Place) entities.TripState {
	p := copyPlace(place)
	return c.apply(ctx, func(s *entities.TripState) { s.Origin = p })
}

// SetDestination replaces the destination (nil clears it) and re-evaluates.
func (c *TripController) SetDestination(ctx context.Context, place *entities.Place) entities.TripState {
	p := copyPlace(place)
	return c.apply(ctx, func(s *entities.TripState) { s.Destination = p })
}

// Swap exchanges origin and destination and re-evaluates exactly once.
func (c *TripController) Swap(ctx context.Context) entities.TripState {
	return c.apply(ctx, func(s *entities.TripState) {
		s.Origin, s.Destination = s.Destination, s.Origin
	})
}

// Close cancels an in-flight evaluation. Later intents still update the
// state but no longer notify.
func (c *TripController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	if c.cancelEval != nil {
		c.cancelEval()
		c.cancelEval = nil
	}
}

func (c *TripController) apply(ctx context.Context, mutate func(*entities.TripState)) entities.TripState {
	c.mu.Lock()
	mutate(&c.state)
	c.generation++
	gen := c.generation
	if c.cancelEval != nil {
		c.cancelEval()
		c.cancelEval = nil
	}

	origin, destination := c.state.Origin, c.state.Destination
	if origin == nil || destination == nil {
		c.state.Route = nil
		c.state.Quotes = []entities.FareQuote{}
		c.state.Loading = false
		c.setErrorLocked(entities.TripErrorNone)
		snap := c.commitLocked()
		c.mu.Unlock()

		c.metrics.ObserveEvaluation(evalSkipped)
		c.notify(snap)
		return snap
	}

	c.state.Loading = true
	c.setErrorLocked(entities.TripErrorNone)
	// The evaluation belongs to the trip, not to the request that started
	// it: only a newer intent or the timeout may cut it short.
	evalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.routeTimeout)
	c.cancelEval = cancel
	loading := c.commitLocked()
	c.mu.Unlock()

	c.notify(loading)

	route, err := c.router.GetRoute(evalCtx, origin.Point, destination.Point)
	var quotes []entities.FareQuote
	if err == nil && route != nil {
		quotes = c.estimator.Estimate(route.DistanceMeters, route.DurationSeconds)
	}
	cancel()

	c.mu.Lock()
	if gen != c.generation {
		snap := c.state.Clone()
		c.mu.Unlock()
		c.metrics.ObserveEvaluation(evalStale)
		c.log.Debug("discarded stale route result", zap.Uint64("generation", gen))
		return snap
	}
	c.cancelEval = nil
	c.state.Loading = false

	result := evalRoute
	switch {
	case err != nil:
		result = evalNetwork
		c.state.Route = nil
		c.state.Quotes = []entities.FareQuote{}
		c.setErrorLocked(entities.TripErrorNetwork)
		if !errors.Is(err, domain.ErrNetworkFailure) {
			c.log.Warn("route lookup failed with unexpected error", zap.Error(err))
		}
	case route == nil:
		result = evalNoRoute
		c.state.Route = nil
		c.state.Quotes = []entities.FareQuote{}
		c.setErrorLocked(entities.TripErrorNoRoute)
	default:
		c.state.Route = route
		c.state.Quotes = quotes
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	c.metrics.ObserveEvaluation(result)
	c.notify(snap)
	return snap
}

func (c *TripController) setErrorLocked(kind entities.TripErrorKind) {
	c.state.ErrorKind = kind
	switch kind {
	case entities.TripErrorNoRoute:
		c.state.Error = entities.MsgNoRoute
	case entities.TripErrorNetwork:
		c.state.Error = entities.MsgRouteFailure
	default:
		c.state.Error = ""
	}
}

func (c *TripController) commitLocked() entities.TripState {
	c.state.Revision++
	return c.state.Clone()
}

// notify delivers snap unless a newer revision was already delivered. Two
// intents racing out of the lock may reach here in either order.
func (c *TripController) notify(snap entities.TripState) {
	if c.onChange == nil {
		return
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.Revision <= c.lastNotified {
		return
	}
	c.lastNotified = snap.Revision
	c.onChange(snap)
}

func copyPlace(p *entities.Place) *entities.Place {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
