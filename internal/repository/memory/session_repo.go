package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"ridefare/internal/domain"
	"ridefare/internal/repository"
)

// ErrSessionExists is returned when Create is given an ID already in use.
var ErrSessionExists = errors.New("session already exists")

type sessionEntry[S repository.Session] struct {
	session  S
	lastSeen time.Time
}

// EvictFunc is told which sessions a sweep removed and how many remain.
type EvictFunc[S repository.Session] func(evicted []S, remaining int)

// SessionRepository keeps sessions in memory and drops the ones that have
// been idle longer than the TTL.
//
// A background goroutine sweeps on a ticker, the same way a TTL lock table
// expires entries. Evicted sessions are closed outside the lock so a slow
// Close never blocks lookups.
type SessionRepository[S repository.Session] struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry[S]
	idleTTL  time.Duration
	onEvict  EvictFunc[S]
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionRepository creates the repository and starts its sweeper. A
// non-positive sweepInterval disables the sweeper; Sweep can still be
// called directly.
func NewSessionRepository[S repository.Session](idleTTL, sweepInterval time.Duration, onEvict EvictFunc[S]) *SessionRepository[S] {
	r := &SessionRepository[S]{
		sessions: make(map[string]*sessionEntry[S]),
		idleTTL:  idleTTL,
		onEvict:  onEvict,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go r.sweepLoop(sweepInterval)
	}
	return r
}

func (r *SessionRepository[S]) Create(ctx context.Context, session S) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := session.SessionID()
	if _, exists := r.sessions[id]; exists {
		return ErrSessionExists
	}
	r.sessions[id] = &sessionEntry[S]{session: session, lastSeen: r.now()}
	return nil
}

// Get returns the session and marks it as active. It takes the write lock
// because touching lastSeen is a mutation.
func (r *SessionRepository[S]) Get(ctx context.Context, id string) (S, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.sessions[id]
	if !exists {
		var zero S
		return zero, domain.ErrTripNotFound
	}
	entry.lastSeen = r.now()
	return entry.session, nil
}

// Delete removes and closes the session.
func (r *SessionRepository[S]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	entry, exists := r.sessions[id]
	if exists {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !exists {
		return domain.ErrTripNotFound
	}
	entry.session.Close()
	return nil
}

func (r *SessionRepository[S]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes and removes every session idle for longer than the TTL and
// returns them.
func (r *SessionRepository[S]) Sweep() []S {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTTL)
	var evicted []S
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			evicted = append(evicted, entry.session)
			delete(r.sessions, id)
		}
	}
	remaining := len(r.sessions)
	r.mu.Unlock()

	for _, s := range evicted {
		s.Close()
	}
	if len(evicted) > 0 && r.onEvict != nil {
		r.onEvict(evicted, remaining)
	}
	return evicted
}

func (r *SessionRepository[S]) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stop:
			return
		}
	}
}

// Stop ends the sweeper. Sessions stay in place; it is safe to call twice.
func (r *SessionRepository[S]) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// CloseAll removes and closes every session. Used on shutdown.
func (r *SessionRepository[S]) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*sessionEntry[S])
	r.mu.Unlock()

	for _, entry := range all {
		entry.session.Close()
	}
}
