package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CookieName is the session cookie set on every response that creates a
// session.
const CookieName = "gridline_session"

type ctxKey struct{}

type managerKey struct{}

// Manager tracks live sessions and issues signed session cookies. Session
// IDs travel in a JWT so a tampered cookie fails verification instead of
// probing the session table.
type Manager struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a Manager and starts its expiry sweeper. Close stops
// the sweeper.
func NewManager(secret string, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m := &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Close stops the expiry sweeper.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Middleware resolves the request's session (creating one if needed),
// holds its lock for the duration of the handler, and exposes it via the
// request context. Holding the lock serializes requests per session, so
// handlers and session-scoped services need no locking of their own.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.resolve(w, r)
		s.touch(time.Now())

		s.mu.Lock()
		defer s.mu.Unlock()

		next.ServeHTTP(w, r.WithContext(m.sessionContext(r.Context(), s)))
	})
}

// StreamingMiddleware resolves the session like Middleware but does not
// hold its lock, so a long-lived handler (a websocket) never blocks the
// session's other requests or the expiry sweeper. Handlers on this path
// must not touch session-scoped services.
func (m *Manager) StreamingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.resolve(w, r)
		s.touch(time.Now())

		next.ServeHTTP(w, r.WithContext(m.sessionContext(r.Context(), s)))
	})
}

func (m *Manager) sessionContext(ctx context.Context, s *Session) context.Context {
	ctx = context.WithValue(ctx, ctxKey{}, s)
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the request's session. It panics if the request did
// not pass through the middleware; that is a wiring bug, not a runtime
// condition.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok {
		panic("session: FromContext called outside session middleware")
	}
	return s
}

// Destroy removes the request's session via the manager that resolved it,
// so logout handlers need no manager reference of their own.
func Destroy(w http.ResponseWriter, r *http.Request) {
	m, ok := r.Context().Value(managerKey{}).(*Manager)
	if !ok {
		panic("session: Destroy called outside session middleware")
	}
	m.Destroy(w, FromContext(r.Context()))
}

// Destroy removes a session and clears its cookie. The current request
// finishes against the removed session; the next request gets a fresh one.
func (m *Manager) Destroy(w http.ResponseWriter, s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// resolve returns the session for the request's cookie, or creates a new
// session and sets the cookie when the token is absent, invalid, or stale.
func (m *Manager) resolve(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := m.verifyToken(c.Value); err == nil {
			m.mu.RLock()
			s, ok := m.sessions[id]
			m.mu.RUnlock()
			if ok {
				return s
			}
		} else {
			m.logger.Debug("rejecting session cookie", zap.Error(err))
		}
	}

	s := newSession(uuid.NewString(), time.Now())
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	token, err := m.signToken(s.ID)
	if err != nil {
		// HMAC signing over in-memory keys does not fail in practice.
		m.logger.Error("sign session token", zap.Error(err))
		return s
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func (m *Manager) signToken(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) verifyToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("missing session id claim")
	}
	return claims.Subject, nil
}

// sweep periodically evicts sessions idle past the TTL.
func (m *Manager) sweep() {
	ticker := time.NewTicker(m.ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictExpired(time.Now())
		}
	}
}

func (m *Manager) evictExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if s.idle(now) > m.ttl {
			delete(m.sessions, id)
			m.logger.Debug("session expired", zap.String("id", id))
		}
	}
}
