package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Update types sent to watchers.
const (
	UpdateMove             = "move"
	UpdatePromotionPending = "promotion_pending"
	UpdateUndo             = "undo"
	UpdateRedo             = "redo"
	UpdateReset            = "reset"
	UpdateAnnotation       = "annotation"
	UpdateHeaders          = "headers"
	UpdateGameEnd          = "game_end"
	UpdateDeleted          = "deleted"
	UpdateWatchers         = "watchers"
)

// Hub fans game updates out to the WebSocket clients watching each game.
type Hub struct {
	// Registered clients by game ID
	gameClients map[string]map[*Client]bool

	broadcast  chan GameUpdate
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// Client is one WebSocket connection watching a game.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	remote string
}

type GameUpdate struct {
	GameID string      `json:"gameId"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		gameClients: make(map[string]map[*Client]bool),
		broadcast:   make(chan GameUpdate, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is done, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for gameID, clients := range h.gameClients {
				for client := range clients {
					close(client.send)
				}
				delete(h.gameClients, gameID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.gameClients[client.gameID] == nil {
				h.gameClients[client.gameID] = make(map[*Client]bool)
			}
			h.gameClients[client.gameID][client] = true
			count := len(h.gameClients[client.gameID])
			h.mu.Unlock()

			log.Info().
				Str("gameID", client.gameID).
				Str("remote", client.remote).
				Int("watchers", count).
				Msg("Client connected to game")
			h.deliver(GameUpdate{GameID: client.gameID, Type: UpdateWatchers, Data: map[string]int{"count": count}})

		case client := <-h.unregister:
			h.mu.Lock()
			count := 0
			if clients, ok := h.gameClients[client.gameID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
				}
				count = len(clients)
				if count == 0 {
					delete(h.gameClients, client.gameID)
				}
			}
			h.mu.Unlock()

			log.Info().
				Str("gameID", client.gameID).
				Str("remote", client.remote).
				Msg("Client disconnected from game")
			if count > 0 {
				h.deliver(GameUpdate{GameID: client.gameID, Type: UpdateWatchers, Data: map[string]int{"count": count}})
			}

		case update := <-h.broadcast:
			h.deliver(update)
		}
	}
}

func (h *Hub) deliver(update GameUpdate) {
	message, err := json.Marshal(update)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal game update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.gameClients[update.GameID]
	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Slow client; drop it.
			close(client.send)
			delete(clients, client)
		}
	}
}

// Broadcast queues update for everyone watching update.GameID. It never
// blocks; when the queue is full the update is dropped.
func (h *Hub) Broadcast(update GameUpdate) {
	select {
	case h.broadcast <- update:
	default:
		log.Warn().Str("gameID", update.GameID).Str("type", update.Type).Msg("Broadcast channel full, dropping update")
	}
}

// Watchers is the number of clients connected to gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameClients[gameID])
}

// WebSocketHandler upgrades GET /ws?gameId=... for an existing game.
func (s *Service) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "Missing gameId parameter", http.StatusBadRequest)
		return
	}
	id, err := s.parseID(gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.sessions.Get(id); err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		gameID: id.String(),
		remote: r.RemoteAddr,
	}
	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only keeps the connection alive; watchers do not send commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("gameID", c.gameID).Msg("WebSocket error")
			}
			break
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err == nil && msg.Type == "ping" {
			c.trySend([]byte(`{"type":"pong"}`))
		}
	}
}

// trySend queues data unless the hub already closed the channel.
func (c *Client) trySend(data []byte) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.gameClients[c.gameID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
