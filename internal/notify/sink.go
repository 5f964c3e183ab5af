// Package notify holds the single transient status message shown to a user.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
)

// DefaultTimeout is how long a notification stays visible.
const DefaultTimeout = 5 * time.Second

// Notification is one status message.
type Notification struct {
	Kind      Kind
	Title     string
	Message   string
	ShownAt   time.Time
	ExpiresAt time.Time
}

// Sink keeps at most one visible notification. A new one replaces the
// current one instead of queuing. It is safe for concurrent use.
type Sink struct {
	mu      sync.Mutex
	current *Notification
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) { s.timeout = d }
}

// WithLogger logs every shown notification.
func WithLogger(log *zap.Logger) Option {
	return func(s *Sink) { s.log = log }
}

// NewSink returns an empty sink.
func NewSink(opts ...Option) *Sink {
	s := &Sink{
		timeout: DefaultTimeout,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Show replaces the visible notification.
func (s *Sink) Show(kind Kind, title, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.current = &Notification{
		Kind:      kind,
		Title:     title,
		Message:   message,
		ShownAt:   now,
		ExpiresAt: now.Add(s.timeout),
	}

	fields := []zap.Field{zap.String("kind", string(kind)), zap.String("title", title), zap.String("message", message)}
	if kind == Error {
		s.log.Warn("notification", fields...)
		return
	}
	s.log.Debug("notification", fields...)
}

// Current returns the visible notification, if any. Expired notifications
// are dropped here.
func (s *Sink) Current() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Notification{}, false
	}
	if !s.now().Before(s.current.ExpiresAt) {
		s.current = nil
		return Notification{}, false
	}
	return *s.current, true
}

// Dismiss hides the visible notification.
func (s *Sink) Dismiss() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
