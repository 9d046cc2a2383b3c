package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/palmguru/palmguru/internal/analysis"
	"github.com/palmguru/palmguru/internal/app"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/clipboard"
	"github.com/palmguru/palmguru/internal/logging"
)

const (
	// CookieName carries the session id.
	CookieName = "palmguru_session"

	// DefaultTTL is how long an unused session survives.
	DefaultTTL = 30 * time.Minute
)

// Deps are shared by every session the registry creates.
type Deps struct {
	Analyzer       analysis.Analyzer
	Clipboard      clipboard.Clipboard
	Camera         capture.Camera
	AppOptions     []app.Option
	CaptureOptions []capture.Option
}

// Registry maps session ids to sessions.
type Registry struct {
	deps Deps
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. A non-positive ttl means DefaultTTL.
func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		deps:     deps,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating a new one when id is empty or
// unknown. created reports whether a new session was made, in which case its
// id differs from the one passed in. A new session does not touch the camera
// until MountCamera is called.
func (r *Registry) Get(id string) (s *Session, created bool) {
	now := r.now()

	if id != "" {
		r.mu.RLock()
		s, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok {
			s.Touch(now)
			return s, false
		}
	}

	s = newSession(uuid.NewString(), r.deps, now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	s.log.WithField("sessions", n).Info("session: created")
	return s, true
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete closes and forgets the session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the ttl at now and returns how
// many were removed.
func (r *Registry) Sweep(now time.Time) int {
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > r.ttl {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		logging.WithField("expired", len(expired)).Info("session: swept idle sessions")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
