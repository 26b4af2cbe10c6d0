// Package live pushes entity change events to browser clients over
// WebSocket.
package live

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

type Event struct {
	Type      EventType `json:"type"`
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Hub struct {
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub builds a hub accepting upgrades from the given origins. No origins
// means any origin is accepted.
func NewHub(logger logrus.FieldLogger, allowedOrigins []string) *Hub {
	h := &Hub{
		log:        logger.WithField("component", "live"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.clientsMu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.clientsMu.Unlock()
			h.log.WithFields(logrus.Fields{"client": c.ID, "total": n}).Debug("client connected")
		case c := <-h.unregister:
			h.remove(c)
		case ev := <-h.broadcast:
			h.fanOut(ev)
		}
	}
}

// Publish queues an event for every subscribed client. A full queue drops it.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.WithFields(logrus.Fields{"entity": ev.Entity, "id": ev.ID}).Warn("live queue full, dropping event")
	}
}

func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := newClient(uuid.NewString(), conn, h)
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump(h.done)
	go c.readPump()
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.WithFields(logrus.Fields{"client": c.ID, "total": len(h.clients)}).Debug("client disconnected")
	}
}

func (h *Hub) fanOut(ev Event) {
	h.clientsMu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.wants(ev.Entity) {
			targets = append(targets, c)
		}
	}
	h.clientsMu.RUnlock()

	for _, c := range targets {
		if !c.trySend(ev) {
			h.log.WithField("client", c.ID).Warn("client too slow, disconnecting")
			h.remove(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
