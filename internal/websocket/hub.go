// Package websocket pushes reservation changes to the signed-in browsers of a tenant.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"stayhub/internal/metrics"
	"stayhub/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer and the token check
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client is one browser connection bound to a tenant session.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	TenantID uuid.UUID
	UserID   uuid.UUID
}

type tenantMessage struct {
	tenantID uuid.UUID
	data     []byte
}

// Hub owns the connected clients, indexed by tenant.
type Hub struct {
	mu         sync.RWMutex
	tenants    map[uuid.UUID]map[*Client]struct{}
	broadcast  chan tenantMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		tenants:    make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:  make(chan tenantMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run dispatches registrations and broadcasts until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	set, ok := h.tenants[c.TenantID]
	if !ok {
		set = make(map[*Client]struct{})
		h.tenants[c.TenantID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	metrics.WebsocketClients.Inc()
	h.log.Debug().Str("tenant_id", c.TenantID.String()).Str("user_id", c.UserID.String()).Msg("websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked closes the client's queue once; h.mu must be held for writing.
func (h *Hub) dropLocked(c *Client) {
	set := h.tenants[c.TenantID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.tenants, c.TenantID)
	}
	close(c.send)
	metrics.WebsocketClients.Dec()
}

// deliver fans a message out to one tenant. Clients whose queue is full are dropped.
func (h *Hub) deliver(msg tenantMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.tenants[msg.tenantID] {
		select {
		case c.send <- msg.data:
		default:
			h.log.Debug().Str("user_id", c.UserID.String()).Msg("websocket client too slow, disconnecting")
			h.dropLocked(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.tenants {
		for c := range set {
			h.dropLocked(c)
		}
	}
}

// BroadcastToTenant queues data for every client of the tenant. It never blocks the caller;
// when the queue is full the message is dropped.
func (h *Hub) BroadcastToTenant(tenantID uuid.UUID, data []byte) {
	select {
	case h.broadcast <- tenantMessage{tenantID: tenantID, data: data}:
	default:
		h.log.Warn().Str("tenant_id", tenantID.String()).Msg("websocket broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients of a tenant.
func (h *Hub) ClientCount(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tenants[tenantID])
}

// writePump sends queued messages one frame each and pings to keep the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// readPump discards inbound frames; it only exists to notice pongs and disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// TokenParser turns an access token into a session.
type TokenParser func(token string) (*session.Session, error)

// ServeWs authenticates the token query parameter and upgrades the connection.
func ServeWs(hub *Hub, c *gin.Context, parse TokenParser) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	sess, err := parse(token)
	if err != nil {
		hub.log.Debug().Err(err).Msg("websocket connection rejected")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer), TenantID: sess.TenantID, UserID: sess.UserID}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
