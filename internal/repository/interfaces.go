// Package repository declares the storage contracts used by the services.
package repository

import (
	"context"
)

// Session is anything held by a SessionRepository. Close releases the
// session's background work; the repository calls it when the session is
// deleted or expires.
type Session interface {
	SessionID() string
	Close()
}

// SessionRepository stores live sessions keyed by ID. Get counts as
// activity and postpones expiry.
//
// Go Learning Note — Generic Interfaces:
// The type parameter lets callers get their concrete session type back from
// Get without a type assertion, while the repository itself only relies on
// the Session methods.
type SessionRepository[S Session] interface {
	Create(ctx context.Context, session S) error
	Get(ctx context.Context, id string) (S, error)
	Delete(ctx context.Context, id string) error
	Count() int
}
