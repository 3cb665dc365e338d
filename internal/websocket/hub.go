package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"donation-api/internal/logger"
	"donation-api/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	EventCampaignSubmitted         = "campaign.submitted"
	EventCampaignReviewed          = "campaign.reviewed"
	EventCommunityRequestSubmitted = "community_request.submitted"
	EventCommunityRequestReviewed  = "community_request.reviewed"
	EventDonationCreated           = "donation.created"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Event is the JSON frame pushed to connected admins.
type Event struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
	At    time.Time              `json:"at"`
}

// Publisher is what services depend on; the hub implements it.
type Publisher interface {
	Publish(event string, data map[string]interface{})
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	adminID string
}

// Hub fans events out to every connected admin client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
	log        logger.ILogger
	upgrader   websocket.Upgrader
}

func NewHub(log logger.ILogger, allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// Run is the dispatch loop; it returns after Close.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("websocket", "admin connected", map[string]interface{}{"admin_id": client.adminID})
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Publish queues an event without blocking the caller. Events are dropped when the queue is full.
func (h *Hub) Publish(event string, data map[string]interface{}) {
	payload, err := json.Marshal(Event{Event: event, Data: data, At: time.Now().UTC()})
	if err != nil {
		h.log.Warn("websocket", "event encode failed", map[string]interface{}{"event": event, "error": err})
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("websocket", "event dropped, broadcast queue full", map[string]interface{}{"event": event})
	}
}

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

// readPump only drains control frames; admins never send data.
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
				c.hub.log.Warn("websocket", "unexpected close", map[string]interface{}{"error": err})
			}
			return
		}
	}
}

// ActiveAdminChecker confirms the admin behind a token still exists and is active.
type ActiveAdminChecker interface {
	IsActiveAdmin(ctx context.Context, id string) bool
}

// ServeWs upgrades the request after verifying an admin token passed as ?token=.
func ServeWs(hub *Hub, codec *token.Codec, admins ActiveAdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims, err := codec.Verify(token.KindAdmin, raw)
		if err != nil {
			hub.log.Info("websocket", "connection rejected", map[string]interface{}{"error": err})
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		if !admins.IsActiveAdmin(c.Request.Context(), claims.Subject) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("websocket", "upgrade failed", map[string]interface{}{"error": err})
			return
		}
		client := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer), adminID: claims.Subject}
		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(string, map[string]interface{}) {}
