package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"digitcam/internal/logger"
	"digitcam/internal/model"

	"github.com/gorilla/websocket"
)

const (
	// broadcastBuffer is how many messages may wait for the hub loop.
	broadcastBuffer = 16
	writeWait       = 5 * time.Second
)

// Client is the part of a websocket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// HubService fans result entries out to connected viewers.
type HubService struct {
	clients    map[Client]bool
	broadcast  chan []byte
	register   chan Client
	unregister chan Client
	mutex      sync.RWMutex
	logger     *logger.Logger
}

// NewHubService creates an idle hub; call Run to start delivering.
func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan Client),
		unregister: make(chan Client),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx ends, then closes all clients.
func (h *HubService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a viewer.
func (h *HubService) Register(client Client) {
	h.register <- client
}

// Unregister removes and closes a viewer.
func (h *HubService) Unregister(client Client) {
	h.unregister <- client
}

// Broadcast queues message for every viewer. It never blocks; when the hub is
// behind the message is dropped and false returned.
func (h *HubService) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		return false
	}
}

// Record publishes entry as JSON to connected viewers.
func (h *HubService) Record(entry model.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if !h.Broadcast(payload) {
		return fmt.Errorf("websocket hub busy, result %q not delivered", entry.Result)
	}
	return nil
}

// GetClientCount returns the number of connected viewers.
func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// NewConnClient wraps a gorilla connection with a write deadline.
func NewConnClient(conn *websocket.Conn) Client {
	return &connClient{conn: conn}
}

type connClient struct {
	conn *websocket.Conn
}

func (c *connClient) WriteMessage(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

func (c *connClient) Close() error {
	return c.conn.Close()
}
