package web

import (
	"sync"
	"time"

	"github.com/erazemk/prenos/internal/composer"
	"github.com/erazemk/prenos/internal/notify"
)

// sessionIdleTimeout evicts composers of users who stopped interacting.
const sessionIdleTimeout = 30 * time.Minute

// session is the per-login state of the console: the notification sink and
// the open transfer composer, if any.
type session struct {
	sink     *notify.Sink
	composer *composer.Composer
	lastSeen time.Time

	// closing is set after a successful submit until the composer's close
	// callback fires.
	closing bool
}

// composerFactory builds a composer for a session token. onClose is wired
// to the composer's post-submit close callback.
type composerFactory func(token string, sink *notify.Sink, onClose func()) (*composer.Composer, error)

// Sessions maps token IDs to console sessions.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*session
	factory composerFactory
	idle    time.Duration
	now     func() time.Time
}

// NewSessions returns an empty registry.
func NewSessions(factory composerFactory) *Sessions {
	return &Sessions{
		entries: make(map[string]*session),
		factory: factory,
		idle:    sessionIdleTimeout,
		now:     time.Now,
	}
}

// get returns the session for jti, creating it when missing.
func (s *Sessions) get(jti string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if id != jti && now.Sub(e.lastSeen) > s.idle {
			delete(s.entries, id)
		}
	}

	e, ok := s.entries[jti]
	if !ok {
		e = &session{sink: notify.NewSink()}
		s.entries[jti] = e
	}
	e.lastSeen = now
	return e
}

// Sink returns the notification sink of a session.
func (s *Sessions) Sink(jti string) *notify.Sink {
	return s.get(jti).sink
}

// Composer returns the session's open composer, creating one if needed.
func (s *Sessions) Composer(jti, token string) (*composer.Composer, error) {
	e := s.get(jti)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e.composer != nil {
		return e.composer, nil
	}
	c, err := s.factory(token, e.sink, func() { s.release(jti) })
	if err != nil {
		return nil, err
	}
	e.composer = c
	e.closing = false
	return c, nil
}

// Closing reports whether the session's composer is about to be closed.
func (s *Sessions) Closing(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jti]
	return ok && e.closing
}

func (s *Sessions) markClosing(jti string) {
	s.mu.Lock()
	if e, ok := s.entries[jti]; ok {
		e.closing = true
	}
	s.mu.Unlock()
}

// release discards the composer but keeps the sink so the last notification
// survives the redirect.
func (s *Sessions) release(jti string) {
	s.mu.Lock()
	if e, ok := s.entries[jti]; ok {
		e.composer = nil
		e.closing = false
	}
	s.mu.Unlock()
}

// Drop forgets a session entirely.
func (s *Sessions) Drop(jti string) {
	s.mu.Lock()
	delete(s.entries, jti)
	s.mu.Unlock()
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
