// internal/api/session/store.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/finboard/internal/core"
)

// CookieName carries the session id.
const CookieName = "finboard_session"

// Page is the server-side state of one dashboard page. Close releases its charts.
type Page interface {
	Close()
}

// Gauge reports the number of live sessions.
type Gauge interface {
	SetSessions(n int)
}

// Session holds the pages one visitor has opened.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	pages    map[string]Page
}

// Open installs p under name, closing the page it replaces.
func (s *Session) Open(name string, p Page) {
	s.mu.Lock()
	prev, ok := s.pages[name]
	s.pages[name] = p
	s.mu.Unlock()

	if ok && prev != p {
		prev.Close()
	}
}

// Lookup returns the named page if it was opened.
func (s *Session) Lookup(name string) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[name]
	return p, ok
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) close() {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[string]Page)
	s.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
}

// Store manages visitor sessions.
type Store struct {
	sessions map[string]*Session
	order    []string // Track insertion order for eviction
	maxSize  int
	ttl      time.Duration
	gauge    Gauge
	now      func() time.Time
	mu       sync.RWMutex
}

// NewStore creates a new session store. A zero ttl never expires sessions.
func NewStore(maxSize int, ttl time.Duration, gauge Gauge) *Store {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Store{
		sessions: make(map[string]*Session),
		order:    make([]string, 0, maxSize),
		maxSize:  maxSize,
		ttl:      ttl,
		gauge:    gauge,
		now:      time.Now,
	}
}

// Create starts a new session and returns it.
func (s *Store) Create() *Session {
	s.mu.Lock()
	var evicted []*Session

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		pages:     make(map[string]Page),
	}

	// Evict oldest if at capacity
	for len(s.sessions) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		if old, ok := s.sessions[oldest]; ok {
			delete(s.sessions, oldest)
			evicted = append(evicted, old)
		}
	}

	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)
	s.report()
	s.mu.Unlock()

	closeAll(evicted)
	return sess
}

// Get retrieves a live session by ID and marks it used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, core.WrapError(core.ErrNotFound, nil)
	}
	now := s.now()
	if s.expired(sess, now) {
		s.Delete(id)
		return nil, core.WrapError(core.ErrNotFound, nil)
	}

	sess.touch(now)
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown or expired.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess, false
		}
	}
	return s.Create(), true
}

// Delete ends a session and releases its pages.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		s.removeOrder(id)
		s.report()
	}
	s.mu.Unlock()

	if ok {
		sess.close()
	}
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			s.removeOrder(id)
			expired = append(expired, sess)
		}
	}
	if len(expired) > 0 {
		s.report()
	}
	s.mu.Unlock()

	closeAll(expired)
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close ends every session.
func (s *Store) Close() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.sessions = make(map[string]*Session)
	s.order = s.order[:0]
	s.report()
	s.mu.Unlock()

	closeAll(all)
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastSeen()) > s.ttl
}

func (s *Store) removeOrder(id string) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// report must be called with mu held.
func (s *Store) report() {
	if s.gauge != nil {
		s.gauge.SetSessions(len(s.sessions))
	}
}

func closeAll(sessions []*Session) {
	for _, sess := range sessions {
		sess.close()
	}
}
