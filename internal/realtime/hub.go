// Package realtime pushes performance alerts to connected dashboards over
// websockets.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/madrasa-panel/madrasa/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendQueueSize  = 16
	broadcastQueue = 64
)

// Frame is the JSON envelope written to clients.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks websocket clients and fans alerts out to them. Run must be
// running for clients to register and receive frames.
type Hub struct {
	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	broadcast  chan model.Alert
	done       chan struct{}
	clients    atomic.Int32
}

// NewHub creates a hub. When allowedOrigins is empty only same-host
// upgrades are accepted.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan model.Alert, broadcastQueue),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin)
		}
	}
	return h
}

// Clients returns the number of registered clients.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// Broadcast queues an alert for every client. It never blocks: when the
// queue is full the alert is dropped.
func (h *Hub) Broadcast(a model.Alert) {
	select {
	case h.broadcast <- a:
	default:
		slog.Warn("alert dropped: broadcast queue full", "student_id", a.StudentID)
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]struct{})
	drop := func(c *client) {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
			h.clients.Store(int32(len(clients)))
		}
	}

	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				drop(c)
			}
			close(h.done)
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.clients.Store(int32(len(clients)))
			slog.Debug("websocket client registered", "remote", c.conn.RemoteAddr(), "clients", len(clients))
		case c := <-h.unregister:
			drop(c)
		case a := <-h.broadcast:
			msg, err := json.Marshal(Frame{Event: "alert", Data: a})
			if err != nil {
				slog.Error("marshal alert", "error", err)
				continue
			}
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					slog.Warn("dropping slow websocket client", "remote", c.conn.RemoteAddr())
					drop(c)
				}
			}
		}
	}
}

// ServeWS upgrades the request and streams alerts until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump(h)
}

// readPump discards client frames; it only notices close and keeps the
// pong deadline moving.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
