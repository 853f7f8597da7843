// Package statusfeed pushes run events to live consumers: a websocket hub
// for external dashboards and a console reporter for CLI runs.
package statusfeed

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"auditflow/internal/events"
)

// Hub broadcasts every bus event to connected websocket clients as a JSON
// envelope {sender, eventType, payload, timestamp}. Clients that fail a
// write are dropped; the bus is never blocked by a slow consumer.
type Hub struct {
	upgrader websocket.Upgrader
	bus      *events.Bus

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a hub attached to the given bus.
func NewHub(bus *events.Bus) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bus:     bus,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start consumes the bus stream until the context is cancelled or the bus
// closes. Call in a goroutine before the run begins so no events are missed.
func (h *Hub) Start(ctx context.Context) {
	stream := h.bus.Stream(512)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev, ok := <-stream:
			if !ok {
				h.closeAll()
				return
			}
			h.broadcast(ev)
		}
	}
}

// ServeHTTP upgrades the request and registers the connection. New clients
// receive the full event history first so late joiners see prior progress.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	for _, ev := range h.bus.History("", "") {
		if err := c.WriteJSON(ev); err != nil {
			c.Close()
			return
		}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("status feed client connected: %s", r.RemoteAddr)

	go h.readLoop(c)
}

// readLoop drains client messages so close frames are processed; the feed
// is one-way.
func (h *Hub) readLoop(c *websocket.Conn) {
	defer h.drop(c)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) broadcast(ev events.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(ev); err != nil {
			log.Printf("status feed write failed, dropping client: %v", err)
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		c.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
}
