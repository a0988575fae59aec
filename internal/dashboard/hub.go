package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// Hub manages Server-Sent Events connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

// Client represents a single SSE connection. Writes to one client are
// serialised.
type Client struct {
	mu      sync.Mutex
	writer  http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to all connected clients.
func (h *Hub) Broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case <-client.done:
		default:
			client.send(data)
		}
	}
}

// NewClient prepares w for streaming and wraps it as a client.
func NewClient(w http.ResponseWriter) (*Client, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &Client{
		writer:  w,
		flusher: flusher,
		done:    make(chan struct{}),
	}, nil
}

func (c *Client) send(data []byte) {
	c.write(fmt.Sprintf("data: %s\n\n", data))
}

// close marks the client done. It waits for a write in progress, so nothing
// touches the writer once it returns.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	close(c.done)
}

func (c *Client) write(frame string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return
	default:
	}
	fmt.Fprint(c.writer, frame)
	c.flusher.Flush()
}

// KeepAlive sends a comment line every interval until the client is
// unregistered.
func (c *Client) KeepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.ping()
		}
	}
}

func (c *Client) ping() {
	c.write(": ping\n\n")
}
