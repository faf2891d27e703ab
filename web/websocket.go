package web

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"livescore-service/models"
)

// Client is one connected WebSocket consumer.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	matchIDs map[string]bool // match filter; empty = everything
}

// Hub broadcasts reconciled match updates to connected clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan models.MatchUpdate
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.MatchUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set; call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client registered. Total clients: %d", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Client unregistered. Total clients: %d", len(h.clients))

		case update := <-h.broadcast:
			data, err := json.Marshal(update)
			if err != nil {
				log.Printf("Failed to marshal update: %v", err)
				continue
			}

			h.mu.RLock()
			var stale []*Client
			for client := range h.clients {
				if !client.shouldReceive(update) {
					continue
				}
				select {
				case client.send <- data:
				default:
					stale = append(stale, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stale {
				h.mu.Lock()
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					close(client.send)
				}
				h.mu.Unlock()
			}
		}
	}
}

// Broadcast queues one update for fanout (services.Broadcaster).
func (h *Hub) Broadcast(update models.MatchUpdate) {
	select {
	case h.broadcast <- update:
	default:
		log.Println("Broadcast queue full, dropping update")
	}
}

func (c *Client) shouldReceive(update models.MatchUpdate) bool {
	if len(c.matchIDs) == 0 {
		return true
	}
	return c.matchIDs[update.MatchID]
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// handleMessage processes a client control frame: subscribe to a set
// of match IDs, or unsubscribe back to the firehose.
func (c *Client) handleMessage(message []byte) {
	var msg struct {
		Type     string   `json:"type"`
		MatchIDs []string `json:"match_ids"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Failed to unmarshal client message: %v", err)
		return
	}

	switch msg.Type {
	case "subscribe":
		c.matchIDs = make(map[string]bool, len(msg.MatchIDs))
		for _, id := range msg.MatchIDs {
			c.matchIDs[id] = true
		}
		log.Printf("Client subscribed to %d matches", len(c.matchIDs))

	case "unsubscribe":
		c.matchIDs = make(map[string]bool)
		log.Println("Client unsubscribed")
	}
}
