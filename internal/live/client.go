package live

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// Client is one WebSocket connection. Its send channel is closed by the hub
// only.
type Client struct {
	ID   string
	conn *websocket.Conn
	hub  *Hub
	send chan Event

	// only is the subscribed set; nil means every entity except muted ones.
	filterMu sync.RWMutex
	only     map[string]bool
	muted    map[string]bool
}

type clientMessage struct {
	Type     string   `json:"type"`
	Entities []string `json:"entities"`
}

func newClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{ID: id, conn: conn, hub: hub, send: make(chan Event, sendBufferSize)}
}

func (c *Client) wants(entity string) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()

	if c.only != nil {
		return c.only[entity]
	}
	return !c.muted[entity]
}

// applyFilter handles the control messages. "subscribe" narrows the feed to
// the listed entities and "unsubscribe" drops them. "reset", like an empty
// subscribe, restores the full feed.
func (c *Client) applyFilter(msg clientMessage) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()

	switch {
	case msg.Type == "reset", msg.Type == "subscribe" && len(msg.Entities) == 0:
		c.only, c.muted = nil, nil
	case msg.Type == "subscribe":
		c.only, c.muted = map[string]bool{}, nil
		for _, e := range msg.Entities {
			c.only[e] = true
		}
	case msg.Type == "unsubscribe":
		for _, e := range msg.Entities {
			if c.only != nil {
				delete(c.only, e)
				continue
			}
			if c.muted == nil {
				c.muted = map[string]bool{}
			}
			c.muted[e] = true
		}
	default:
		c.hub.log.WithField("client", c.ID).WithField("type", msg.Type).Debug("unknown message")
	}
}

func (c *Client) trySend(ev Event) bool {
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithError(err).WithField("client", c.ID).Debug("unexpected close")
			}
			return
		}
		c.applyFilter(msg)
	}
}

func (c *Client) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
