// Package stream pushes the meshes of running frames to WebSocket viewers.
// Every message is one JSON Batch; viewers only read.
package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chazu/pipes/pkg/kernel"
)

const (
	// sendBuffer is how many batches a viewer may fall behind before it is
	// dropped.
	sendBuffer = 64
	writeWait  = 5 * time.Second
)

// Batch is the geometry drawn by one scheduler tick.
type Batch struct {
	RunID   string `json:"runId"`
	Frame   int    `json:"frame"`
	Started bool   `json:"started,omitempty"`
	Done    bool   `json:"done,omitempty"`
	// Meshes holds the new pieces of each pipe, one mesh per pipe, in world
	// space.
	Meshes []*kernel.Mesh `json:"meshes"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans batches out to every connected viewer.
type Hub struct {
	upgrader websocket.Upgrader
	runID    uuid.UUID

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub returns a hub stamping batches with a fresh run id.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		runID:   uuid.New(),
		clients: map[*client]struct{}{},
	}
}

// RunID identifies this run in every batch.
func (h *Hub) RunID() uuid.UUID {
	return h.runID
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams batches to it until the viewer
// goes away or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.write(c)

	// Viewers send nothing; reading notices when they leave.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("stream: write: %v", err)
			h.remove(c)
			return
		}
	}
	if err := sayGoodbye(c.conn); err != nil {
		log.Printf("stream: close: %v", err)
	}
}

// sayGoodbye sends a normal close frame.
func sayGoodbye(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Broadcast stamps b with the run id and queues it for every viewer. Viewers
// that have fallen too far behind are dropped.
func (h *Hub) Broadcast(b Batch) error {
	b.RunID = h.runID.String()
	if b.Meshes == nil {
		b.Meshes = []*kernel.Mesh{}
	}
	msg, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("stream: encode frame %d: %w", b.Frame, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("stream: dropping slow viewer %s", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.close()
		}
	}
	return nil
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
