// internal/session/session.go
//
// Cookie-keyed store of per-visitor state.
//
// Context
//   Each browser gets a "volunteer_session" cookie carrying a random UUID.
//   The UUID selects a Holder (the form state) in a bounded LRU.  Lookup
//   only reads, so page views and crawlers never take a slot.  Acquire is
//   for requests that change state: new visitors, unknown IDs, and IDs
//   whose entry was evicted all receive a fresh Holder there.  Eviction
//   calls Dispose so in-flight work for that visitor can no longer write
//   state.
//
//   Nothing survives a restart, which is intended: partial input is never
//   persisted across sessions.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/volunteer/internal/cache"
	"github.com/yanizio/volunteer/internal/metrics"
)

// CookieName is the session cookie key.
const CookieName = "volunteer_session"

const cookieTTL = 24 * time.Hour

// Holder is the per-visitor value kept by the store.
type Holder interface {
	Dispose()
}

// Store maps session IDs to holders.  Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	lru    *cache.LRU[string, Holder]
	create func() Holder
}

// NewStore keeps at most maxEntries holders.  create builds a fresh holder.
func NewStore(maxEntries int, create func() Holder) *Store {
	return &Store{
		lru: cache.New[string, Holder](maxEntries, func(id string, h Holder) {
			h.Dispose()
			metrics.SessionsActive.Dec()
			zap.S().Debugw("session evicted", "session", id)
		}),
		create: create,
	}
}

// sessionID returns the request's well-formed session ID, or "".
func sessionID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// Lookup returns the visitor's live holder without creating one.
func (s *Store) Lookup(r *http.Request) (Holder, bool) {
	id := sessionID(r)
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Get(id)
}

// Acquire returns the visitor's holder, creating one (and setting the
// cookie) when the request carries no live session.
func (s *Store) Acquire(w http.ResponseWriter, r *http.Request) Holder {
	id := sessionID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if h, ok := s.lru.Get(id); ok {
			return h
		}
	} else {
		id = uuid.NewString()
	}

	h := s.create()
	s.lru.Add(id, h)
	metrics.SessionsActive.Inc()
	zap.S().Debugw("session started", "session", id, "active", s.lru.Len())

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(cookieTTL),
	})
	return h
}

// End disposes the visitor's holder and clears the cookie.
func (s *Store) End(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		s.mu.Lock()
		s.lru.Remove(c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// size reports the number of live holders.
func (s *Store) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}
