// handlers/socket.go - Live auction channel over WebSocket
package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"codebid/middleware"
	"codebid/services"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// WebSocket timeouts
	writeWait  = 10 * time.Second // Time allowed to write a message
	pingPeriod = 15 * time.Second // Send pings at this interval

	// Send channel buffer size
	sendBufferSize = 64
)

// Message is the JSON envelope for every frame on the live channel.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// BidAck acknowledges a PLACE_BID to the submitting client only.
type BidAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Client is one authenticated live connection. The team identity is resolved
// once at connect time and attached for the connection's lifetime;
// reconnection requires re-authentication.
type Client struct {
	ID       string
	TeamID   uint
	TeamName string
	IsAdmin  bool
	Conn     *websocket.Conn
	send     chan Message
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.RWMutex
	joined bool // subscribed to the auction channel
}

// Hub tracks all connected clients and fans auction events out to them. It
// implements services.Broadcaster; delivery is fire-and-forget per client and
// never blocks the bid-commit path.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	auction *services.AuctionService
}

func NewHub(auction *services.AuctionService) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		auction: auction,
	}
}

// Broadcast queues a message for every client subscribed to the auction
// channel. A full buffer drops the message for that client only.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.mu.RLock()
		joined := client.joined
		client.mu.RUnlock()

		if joined {
			client.sendMessage(msgType, payload)
		}
	}
}

// WebSocketHandler upgrades and serves one live connection. Authentication
// failure terminates the attempt before the upgrade; there is no anonymous
// access to the auction channel.
func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := authenticateRequest(r)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checking handled by the deployment proxy
	})
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := &Client{
		ID:       uuid.NewString(),
		TeamID:   claims.TeamID,
		TeamName: claims.TeamName,
		IsAdmin:  claims.IsAdmin,
		Conn:     conn,
		send:     make(chan Message, sendBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	h.register(client)
	log.Printf("✅ Socket connected: %s (team %d)", client.TeamName, client.TeamID)

	client.sendMessage("connected", map[string]interface{}{
		"team_id":   client.TeamID,
		"team_name": client.TeamName,
	})

	// Write pump in a separate goroutine; read pump blocks until disconnect.
	go client.writePump()
	client.readPump(h)

	h.unregister(client)
	close(client.send)
	log.Printf("❌ Socket disconnected: %s (team %d)", client.TeamName, client.TeamID)
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client.ID)
}

func (h *Hub) handleMessage(client *Client, msg Message) {
	switch msg.Type {
	case "JOIN_AUCTION":
		client.mu.Lock()
		client.joined = true
		client.mu.Unlock()
		log.Printf("👤 %s joined auction channel", client.TeamName)

	case "PLACE_BID":
		h.handlePlaceBid(client, msg.Payload)

	case "REFRESH_STATE":
		// Reconnecting clients rehydrate explicitly; there is no buffered
		// broadcast history.
		snapshot, err := h.auction.CurrentState()
		if err != nil {
			client.sendMessage("error", map[string]interface{}{"error": "No active event found"})
			return
		}
		client.sendMessage(services.MsgStateChanged, snapshot)

	case "ping":
		client.sendMessage("pong", map[string]interface{}{})
	}
}

// handlePlaceBid validates and commits a bid, acknowledging the submitter
// with BID_ACK. The accepted-bid broadcast to the auction channel happens
// inside the auction service.
func (h *Hub) handlePlaceBid(client *Client, payload interface{}) {
	data := parsePayload(payload)
	amount := getInt(data, "amount", 0)

	if amount <= 0 {
		client.sendMessage("BID_ACK", BidAck{OK: false, Error: "Invalid bid amount"})
		return
	}

	if _, err := h.auction.PlaceBid(client.TeamID, amount); err != nil {
		client.sendMessage("BID_ACK", BidAck{OK: false, Error: rejectionMessage(err)})
		return
	}

	client.sendMessage("BID_ACK", BidAck{OK: true})
}

// rejectionMessage maps domain errors to the messages clients display.
// Storage failures surface as a generic error.
func rejectionMessage(err error) string {
	switch err {
	case services.ErrNoActiveAuction:
		return "No active auction"
	case services.ErrBidTooLow:
		return "Bid must be higher than current highest bid"
	case services.ErrInsufficientFunds:
		return "Insufficient coins"
	case services.ErrTeamNotFound:
		return "Team not found"
	default:
		log.Printf("❌ Place bid error: %v", err)
		return "Internal server error"
	}
}

// authenticateRequest resolves the team identity from the token in the query
// string, Authorization header, or cookie.
func authenticateRequest(r *http.Request) (*middleware.TeamClaims, error) {
	tokenString := r.URL.Query().Get("token")

	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		if cookie, err := r.Cookie("token"); err == nil {
			tokenString = cookie.Value
		}
	}

	return middleware.ParseTeamToken(tokenString)
}

// sendMessage queues a message for the client (non-blocking with bounded queue)
func (c *Client) sendMessage(msgType string, payload interface{}) {
	msg := Message{Type: msgType, Payload: payload}

	select {
	case c.send <- msg:
		// Message queued successfully
	default:
		// Send buffer full - drop message and log warning
		log.Printf("⚠️ Send buffer full for %s, dropping message type: %s", c.TeamName, msgType)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		c.cancel()
		c.Conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var msg Message
		err := wsjson.Read(c.ctx, c.Conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				log.Printf("WebSocket read error for %s: %v", c.TeamName, err)
			}
			break
		}

		h.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := wsjson.Write(writeCtx, c.Conn, msg)
			cancel()

			if err != nil {
				log.Printf("❌ Error writing to WebSocket: %v", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.Conn.Ping(pingCtx)
			cancel()

			if err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func parsePayload(payload interface{}) map[string]interface{} {
	if payload == nil {
		return make(map[string]interface{})
	}
	if data, ok := payload.(map[string]interface{}); ok {
		return data
	}
	return make(map[string]interface{})
}

func getInt(data map[string]interface{}, key string, defaultVal int) int {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return defaultVal
}
