// Package web serves the PalmGuru page, its JSON API and the websocket that
// pushes state changes to the browser.
package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/palmguru/palmguru/internal/app"
	"github.com/palmguru/palmguru/internal/apperr"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/markdown"
	"github.com/palmguru/palmguru/internal/session"
)

// Options configures a Handler.
type Options struct {
	// MaxUploadBytes limits the multipart body of an upload.
	MaxUploadBytes int64
	// RequestTimeout bounds page and API requests.
	RequestTimeout time.Duration
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

// Handler serves one registry of sessions.
type Handler struct {
	sessions *session.Registry
	opts     Options
}

// New creates a Handler.
func New(sessions *session.Registry, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = capture.DefaultMaxFileBytes
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	return &Handler{sessions: sessions, opts: opts}
}

// Register mounts the page, the API and the state stream onto r. The
// stream is long-lived and sits outside the request timeout.
func (h *Handler) Register(r chi.Router) {
	r.Get("/ws/state", h.handleStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.opts.RequestTimeout))

		r.Get("/", h.handleIndex)
		r.Route("/api", func(r chi.Router) {
			r.Get("/state", h.handleState)
			r.Post("/upload", h.handleUpload)
			r.Post("/capture", h.handleCapture)
			r.Post("/retake", h.handleRetake)
			r.Get("/camera/frame", h.handleFrame)
			r.Post("/analyze", h.handleAnalyze)
			r.Post("/reset", h.handleReset)
			r.Post("/copy", h.handleCopy)
		})
	})
}

// session returns the caller's session, creating one when the cookie is
// missing or stale. cookie is non-nil when a new one must be sent. Only the
// page route mounts the camera of a session.
func (h *Handler) session(r *http.Request) (*session.Session, *http.Cookie) {
	var id string
	if c, err := r.Cookie(session.CookieName); err == nil {
		id = c.Value
	}

	sess, created := h.sessions.Get(id)
	if !created {
		return sess, nil
	}
	return sess, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	sess, cookie := h.session(r)
	if cookie != nil {
		http.SetCookie(w, cookie)
	}
	return sess
}

// stateResponse is the page state as sent to the browser.
type stateResponse struct {
	App     app.State        `json:"app"`
	Capture capture.Snapshot `json:"capture"`
	HTML    template.HTML    `json:"html"`
}

func snapshot(sess *session.Session) stateResponse {
	st := sess.App.State()
	return stateResponse{
		App:     st,
		Capture: sess.Capture.Snapshot(),
		HTML:    markdown.RenderHTML(st.Result),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends {"error": ..., "type": ...} with the status of err's type.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.StatusCode(err), map[string]string{
		"error": apperr.Message(err),
		"type":  string(apperr.TypeOf(err)),
	})
}
