package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is the minimal connection surface the hub needs; *websocket.Conn
// satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one WebSocket connection. A user may hold several concurrently
// (multiple tabs); each is tracked separately.
type Client struct {
	UserID uuid.UUID
	conn   Conn

	mu    sync.Mutex
	rooms map[string]struct{}
}

// Send writes an event to this client's connection. Writes are serialized
// because gorilla connections allow one concurrent writer.
func (c *Client) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

// Hub is the in-process registry of connections and room memberships.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[uuid.UUID]map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[uuid.UUID]map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection and joins it to the user's personal room.
func (h *Hub) Register(userID uuid.UUID, conn Conn) *Client {
	c := &Client{
		UserID: userID,
		conn:   conn,
		rooms:  make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[*Client]struct{})
	}
	h.byUser[userID][c] = struct{}{}
	h.mu.Unlock()

	h.Join(c, UserRoom(userID))
	return c
}

// Unregister removes the connection from every room and the registry.
func (h *Hub) Unregister(c *Client) {
	c.mu.Lock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.mu.Unlock()

	for _, room := range rooms {
		h.Leave(c, room)
	}

	h.mu.Lock()
	delete(h.clients, c)
	if set, ok := h.byUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	h.mu.Unlock()

	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	if set, ok := h.rooms[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
}

// Broadcast delivers an event to every local client in the room. Events carry
// the originating user id; clients filter their own echo.
func (h *Hub) Broadcast(room string, event Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		// Best effort; a dead connection is cleaned up by its read loop.
		go func(c *Client) {
			if err := c.Send(event); err != nil {
				log.Printf("error writing event to websocket: %v", err)
			}
		}(c)
	}
}

// IsOnline reports whether the user has at least one local connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

// InRoom reports whether any of the user's connections joined the room.
func (h *Hub) InRoom(userID uuid.UUID, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c.UserID == userID {
			return true
		}
	}
	return false
}
