// Package domain holds the error taxonomy shared by the clients, the services
// and the HTTP layer. Clients wrap these sentinels with fmt.Errorf("%w: ...")
// so callers can branch with errors.Is without caring about transport details.
package domain

import "errors"

var (
	// ErrNetworkFailure covers transport and parse errors talking to the
	// geocoding or routing services. The user may retry by changing input.
	ErrNetworkFailure = errors.New("network failure")

	// ErrNoRouteFound means the routing service answered but found no path.
	ErrNoRouteFound = errors.New("no route found")

	// ErrPositionUnavailable means the device location was denied, timed out
	// or is not supported. The user falls back to manual entry.
	ErrPositionUnavailable = errors.New("position unavailable")

	// ErrReverseGeocodeFailure is never surfaced to the user; the place
	// degrades to a coordinate string instead.
	ErrReverseGeocodeFailure = errors.New("reverse geocode failed")

	// ErrInvalidPlace rejects a place whose coordinates are out of range.
	ErrInvalidPlace = errors.New("invalid place")

	ErrTripNotFound     = errors.New("trip not found")
	ErrUnknownEndpoint  = errors.New("unknown trip endpoint")
	ErrProviderNotFound = errors.New("provider not found")
	ErrNotBookable      = errors.New("provider has no live booking target")
)
