package geocoding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ridefare/internal/domain"
	"ridefare/internal/domain/entities"
)

// PositionProvider yields the device's current coordinates. Implementations
// return an error when the position is denied or unsupported.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (entities.GeoPoint, error)
}

// PositionFunc adapts a plain function to PositionProvider.
//
// Go Learning Note — Function Types as Interfaces:
// This is the same trick net/http uses with HandlerFunc: a named func type
// with a method lets callers pass a closure wherever the interface is wanted.
type PositionFunc func(ctx context.Context) (entities.GeoPoint, error)

// CurrentPosition calls f.
func (f PositionFunc) CurrentPosition(ctx context.Context) (entities.GeoPoint, error) {
	return f(ctx)
}

// StaticPosition is a fix the browser already acquired and sent along with
// the request.
type StaticPosition entities.GeoPoint

// CurrentPosition returns the stored fix.
func (s StaticPosition) CurrentPosition(context.Context) (entities.GeoPoint, error) {
	return entities.GeoPoint(s), nil
}

type positionResult struct {
	point entities.GeoPoint
	err   error
}

// ResolveCurrentLocation acquires the device position and turns it into a
// Place named "Current Location".
//
// Acquisition is bounded by the location timeout; denial, timeout or an
// out-of-range fix return domain.ErrPositionUnavailable. A failed reverse
// lookup is not an error: the display name falls back to the coordinates
// formatted with four decimals.
func (c *Client) ResolveCurrentLocation(ctx context.Context, provider PositionProvider) (entities.Place, error) {
	if provider == nil {
		return entities.Place{}, fmt.Errorf("%w: geolocation is not supported", domain.ErrPositionUnavailable)
	}

	point, err := c.acquire(ctx, provider)
	if err != nil {
		return entities.Place{}, err
	}

	displayName, err := c.Reverse(ctx, point)
	if err != nil {
		c.log.Info("reverse geocode failed, using coordinates", zap.Stringer("point", point), zap.Error(err))
		displayName = point.String()
	}

	return entities.Place{
		Point:       point,
		DisplayName: displayName,
		Name:        entities.CurrentLocationName,
	}, nil
}

// acquire runs the provider in its own goroutine so a provider that ignores
// ctx still cannot hold the caller past the timeout. The channel is buffered
// so the goroutine never blocks after we stop listening.
func (c *Client) acquire(ctx context.Context, provider PositionProvider) (entities.GeoPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, c.locationTimeout)
	defer cancel()

	done := make(chan positionResult, 1)
	go func() {
		p, err := provider.CurrentPosition(ctx)
		done <- positionResult{point: p, err: err}
	}()

	select {
	case <-ctx.Done():
		return entities.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrPositionUnavailable, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return entities.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrPositionUnavailable, res.err)
		}
		if err := res.point.Validate(); err != nil {
			return entities.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrPositionUnavailable, err)
		}
		return res.point, nil
	}
}
