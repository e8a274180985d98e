package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Niklauzi/lyte/internal/logging"
)

// Event is one live feed message. Every event carries a "type" key
// (post_created, post_updated, post_deleted, comment_created,
// post_reaction) plus type-specific payload fields.
type Event map[string]any

const (
	writeWait  = 10 * time.Second
	pingPeriod = 25 * time.Second

	// A slow reader that falls this far behind is dropped instead of
	// blocking the hub.
	clientBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed mirrors public read endpoints, so any origin may listen.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans every event out to all connected feed listeners. The feed is
// broadcast-only: clients never send anything meaningful upstream.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan Event
	register   chan *client
	unregister chan *client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan Event, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run owns the client set; all membership changes and fan-out go through
// this loop.
func (hub *Hub) Run() {
	for {
		select {
		case c := <-hub.register:
			hub.clients[c] = struct{}{}

		case c := <-hub.unregister:
			if _, ok := hub.clients[c]; ok {
				delete(hub.clients, c)
				close(c.send)
			}

		case event := <-hub.broadcast:
			for c := range hub.clients {
				select {
				case c.send <- event:
				default:
					delete(hub.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues an event for every connected client. Never blocks the
// calling handler; if the hub itself is saturated the event is dropped.
func (hub *Hub) Broadcast(event Event) {
	select {
	case hub.broadcast <- event:
	default:
	}
}

// ServeWS upgrades the connection and attaches it to the live feed.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan Event, clientBuffer)}
	h.hub.register <- c

	go c.writeLoop()
	go c.readLoop(h.hub)
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards anything the client sends; it exists to notice
// disconnects and answer control frames.
func (c *client) readLoop(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger := logging.With("ws")
				logger.Debug().Err(err).Msg("client read error")
			}
			return
		}
	}
}
