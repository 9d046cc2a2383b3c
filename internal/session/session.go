// Package session keeps one application controller and one capture
// controller per browser, identified by a cookie, and releases their camera
// when the browser goes away.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palmguru/palmguru/internal/app"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/dataurl"
	"github.com/palmguru/palmguru/internal/logging"
)

// Session is one browser's page state.
type Session struct {
	ID      string
	App     *app.Controller
	Capture *capture.Controller

	log *logrus.Entry

	mu        sync.Mutex
	lastSeen  time.Time
	listeners map[int]func()
	nextID    int
	mounted   bool
	closed    bool
}

func newSession(id string, d Deps, now time.Time) *Session {
	s := &Session{
		ID:        id,
		log:       logging.WithSession(id),
		lastSeen:  now,
		listeners: make(map[int]func()),
	}

	s.App = app.New(d.Analyzer, d.Clipboard, append([]app.Option{app.WithLogger(s.log)}, d.AppOptions...)...)

	captureOpts := append([]capture.Option{
		capture.WithLogger(s.log),
		capture.WithOnChange(func(capture.Snapshot) { s.notify() }),
	}, d.CaptureOptions...)
	s.Capture = capture.NewController(d.Camera, func(img dataurl.DataURL) {
		s.App.ImageReady(img.String())
	}, captureOpts...)

	s.App.Subscribe(func(app.State) { s.notify() })
	return s
}

// Touch marks the session as used at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// OnChange registers fn to run after any change to either controller. fn
// must not block. The returned function unregisters it.
func (s *Session) OnChange(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// MountCamera starts the camera the first time the page is shown. Later
// calls are no-ops unless the last attempt left the camera in error, in
// which case it is tried again.
func (s *Session) MountCamera(ctx context.Context) error {
	failed := s.Capture.Snapshot().State == capture.StateCameraError

	s.mu.Lock()
	if s.closed || (s.mounted && !failed) {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	s.mu.Unlock()

	if err := s.Capture.Mount(ctx); err != nil {
		s.log.WithError(err).Info("session: starting in upload-only mode")
		return err
	}
	return nil
}

// StartOver clears the page and, if the page had the camera, goes back to it.
func (s *Session) StartOver(ctx context.Context) {
	s.App.StartOver()
	s.Capture.Reset()

	s.mu.Lock()
	remount := s.mounted && !s.closed
	s.mu.Unlock()
	if !remount {
		return
	}
	if err := s.Capture.Mount(ctx); err != nil {
		s.log.WithError(err).Debug("session: camera unavailable after start over")
	}
}

// close releases the camera and abandons pending work. Safe to call twice.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.listeners = map[int]func(){}
	s.mu.Unlock()

	s.Capture.Unmount()
	s.App.Close()
	s.log.Info("session: closed")
}
