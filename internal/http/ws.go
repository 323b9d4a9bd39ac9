package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// SessionStream pushes every session transition and facade state change
// over a websocket until the client goes away.
//
// GET /api/session/ws
func (h *Handler) SessionStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err, "request_id", c.GetString(ctxKeyRequestID))
		return
	}
	defer conn.Close()

	snaps, stopSnaps := h.b.Session().Subscribe()
	defer stopSnaps()
	states, stopStates := h.b.Expenses().Subscribe()
	defer stopStates()

	gone := make(chan struct{})
	go readUntilClosed(conn, gone)

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case snap, ok := <-snaps:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			res := toSessionRes(snap)
			if err := writeFrame(conn, wsMessage{Type: wsTypeSession, Session: &res}); err != nil {
				return
			}
		case st, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			if err := writeFrame(conn, wsMessage{Type: wsTypeState, State: &st}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, msg wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(msg)
}

// readUntilClosed drains client frames so pongs and close frames are
// processed.
func readUntilClosed(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
