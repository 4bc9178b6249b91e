package handlers

import (
	"net/http"
	"strconv"
	"time"

	"chickencoop_bridge/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 5 * time.Second
	maxInterval      = 60 * time.Second
	maxIntervalMilli = 60_000
)

// Envelope types on the stream.
const (
	envSnapshot = "snapshot"
	envChange   = "change"
	envFault    = "fault"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict to the dashboard origin once it is configurable
}

// wsConnect streams the coop state: a snapshot on connect, one envelope per
// change, a full snapshot every interval and a fault envelope whenever the
// history store records a new failure.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	// Subscribe before the first snapshot so no change falls between them.
	sub := h.services.Subscribe()
	defer sub.Close()

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	fault, _ := h.latestFault()
	lastFault := fault.At

	if err := h.send(conn, wsEnvelope{Type: envSnapshot, Data: h.services.Snapshot()}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case ch, ok := <-sub.C:
			if !ok {
				return
			}
			if err := h.send(conn, wsEnvelope{Type: envChange, Data: ch}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.resync(conn, &lastFault); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// resync writes a fault envelope when a newer storage failure exists, then a
// full snapshot.
func (h *Handler) resync(conn *websocket.Conn, lastFault *time.Time) error {
	if fault, ok := h.latestFault(); ok && fault.At.After(*lastFault) {
		*lastFault = fault.At
		if err := h.send(conn, faultEnvelope(fault)); err != nil {
			return err
		}
	}
	return h.send(conn, wsEnvelope{Type: envSnapshot, Data: h.services.Snapshot()})
}

func (h *Handler) latestFault() (service.StorageFault, bool) {
	if h.services.Health == nil {
		return service.StorageFault{}, false
	}
	return h.services.StorageFault()
}

func faultEnvelope(f service.StorageFault) wsEnvelope {
	return wsEnvelope{Type: envFault, Data: f, Error: f.Err}
}

// Helper: parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
