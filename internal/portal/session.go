package portal

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/decline/internal/recipient"
	"github.com/JaimeStill/decline/internal/rejection"
)

// Session holds one recipient's rejection workflow between page loads.
// It is the Notifier, Navigator, and embedded Callback of its Controller.
type Session struct {
	ID         string
	Token      string
	Envelope   *recipient.Envelope
	Embedded   bool
	Controller *rejection.Controller

	mu       sync.Mutex
	flashes  []rejection.Notification
	redirect string
	reason   string
	rejected bool
	lastSeen time.Time
}

var (
	_ rejection.Notifier  = (*Session)(nil)
	_ rejection.Navigator = (*Session)(nil)
)

// Notify queues a notification for the next rendered page.
func (s *Session) Notify(kind rejection.Kind, title, message string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, rejection.Notification{
		Kind:     kind,
		Title:    title,
		Message:  message,
		Duration: duration,
	})
}

// Navigate records destination; the submit handler answers with a redirect to it.
func (s *Session) Navigate(_ context.Context, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirect = destination
	s.rejected = true
	return nil
}

func (s *Session) complete(_ context.Context, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reason = reason
	s.rejected = true
	return nil
}

// TakeNotifications returns and clears the queued notifications.
func (s *Session) TakeNotifications() []rejection.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	flashes := s.flashes
	s.flashes = nil
	return flashes
}

// TakeRedirect returns and clears the pending navigation destination.
func (s *Session) TakeRedirect() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	dest := s.redirect
	s.redirect = ""
	return dest
}

// Rejected reports whether the workflow finished, and with which reason when embedded.
func (s *Session) Rejected() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejected, s.reason
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// Store keeps sessions in memory and expires them after ttl of inactivity.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	gauge    prometheus.Gauge
	now      func() time.Time
}

// NewStore creates a Store. gauge tracks the live session count.
func NewStore(ttl time.Duration, gauge prometheus.Gauge) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		gauge:    gauge,
		now:      time.Now,
	}
}

// Get returns the live session for id and refreshes its expiry.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	now := s.now()
	if sess.idleSince(now.Add(-s.ttl)) {
		delete(s.sessions, id)
		s.gauge.Set(float64(len(s.sessions)))
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Add stores sess, replacing any session with the same ID.
func (s *Store) Add(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.touch(s.now())
	s.sessions[sess.ID] = sess
	s.gauge.Set(float64(len(s.sessions)))
}

// Delete removes the session for id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	s.gauge.Set(float64(len(s.sessions)))
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.gauge.Set(float64(len(s.sessions)))
	return removed
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
