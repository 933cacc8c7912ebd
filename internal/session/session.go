// Package session provides server-side sessions with typed, session-scoped
// service instances. Each session carries a bag of lazily constructed
// services keyed by their Go type, so two requests in the same session see
// the same instance and two sessions never share state.
package session

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Session is one client's server-side state. The manager middleware holds
// the session lock for the duration of each request, so handlers access
// session state without further synchronization.
type Session struct {
	ID        string
	CreatedAt time.Time

	// lastSeen is unix nanoseconds, atomic so the expiry sweeper never
	// waits on a session whose lock is held by a slow request.
	lastSeen atomic.Int64

	mu       sync.Mutex
	services map[reflect.Type]any
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		services:  make(map[reflect.Type]any),
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Get returns the session's instance of T, constructing a zero value on
// first use. Subsequent calls in the same session return the same pointer.
// Callers must be running under the manager middleware, which serializes
// requests per session.
func Get[T any](s *Session) *T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := s.services[t]; ok {
		return v.(*T)
	}
	v := new(T)
	s.services[t] = v
	return v
}

// Reset discards all session-scoped services. The next Get constructs
// fresh instances. Used on logout to drop per-user state.
func (s *Session) Reset() {
	s.services = make(map[reflect.Type]any)
}
