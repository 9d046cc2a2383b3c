package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palmguru/palmguru/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream pushes the full state after every change of the session's
// controllers. Changes that arrive while a push is in flight are coalesced.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, cookie := h.session(r)
	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		logging.WithError(err).Warn("web: websocket upgrade")
		return
	}
	defer conn.Close()

	log := logging.WithSession(sess.ID)

	changes := make(chan struct{}, 1)
	unsubscribe := sess.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	// The browser sends nothing; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.WithError(err).Debug("web: websocket read")
				}
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	push := func() bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snapshot(sess)); err != nil {
			log.WithError(err).Debug("web: websocket write")
			return false
		}
		return true
	}

	if !push() {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-changes:
			if !push() {
				return
			}
		case now := <-ping.C:
			// An open page keeps its session alive.
			sess.Touch(now)
			conn.SetWriteDeadline(now.Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
