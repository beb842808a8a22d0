package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/KaramelBytes/hostboard/internal/analysis"
	"github.com/KaramelBytes/hostboard/internal/listings"
	"github.com/google/uuid"
)

const (
	sessionCookie = "hostboard_session"

	// DefaultMaxSessions bounds the number of live session copies.
	DefaultMaxSessions = 1000
)

// session holds one visitor's private copy of the cleaned table. Requests of
// a session are served one at a time.
type session struct {
	mu       sync.Mutex
	table    *listings.Table
	defaults analysis.Params
	bounds   analysis.Range
	lastSeen time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	src      *listings.Table
	ttl      time.Duration
	max      int
	sessions map[string]*session
	now      func() time.Time

	srcDefaults analysis.Params
	srcBounds   analysis.Range
}

func newSessionStore(src *listings.Table, ttl time.Duration, maxSessions int) *sessionStore {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &sessionStore{
		src:         src,
		ttl:         ttl,
		max:         maxSessions,
		sessions:    make(map[string]*session),
		now:         time.Now,
		srcDefaults: analysis.DefaultParams(src),
		srcBounds:   analysis.Bounds(src),
	}
}

// get returns the caller's session. Without a live session cookie it creates
// one (and sets the cookie) when create is set; otherwise it returns a
// transient, unstored view over the shared source table, which is never
// mutated.
func (s *sessionStore) get(w http.ResponseWriter, r *http.Request, create bool) *session {
	now := s.now()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			s.mu.Lock()
			sess, ok := s.sessions[c.Value]
			if ok && s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl {
				delete(s.sessions, c.Value)
				ok = false
			}
			if ok {
				sess.lastSeen = now
			}
			s.mu.Unlock()
			if ok {
				return sess
			}
		}
	}

	if !create {
		return &session{table: s.src, defaults: s.srcDefaults, bounds: s.srcBounds, lastSeen: now}
	}

	t := s.src.Clone()
	sess := &session{
		table:    t,
		defaults: s.srcDefaults,
		bounds:   s.srcBounds,
		lastSeen: now,
	}
	id := uuid.NewString()
	s.mu.Lock()
	if len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}
	s.sessions[id] = sess
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// evictOldestLocked drops the least recently seen session. s.mu must be held.
func (s *sessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}

// sweep drops idle sessions and returns how many were removed.
func (s *sessionStore) sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
