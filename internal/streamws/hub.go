package streamws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	ws "nhooyr.io/websocket"
)

// Hub fans focus events out to subscriber connections. Publish never
// blocks the caller; events queue on a small buffer and slow consumers are
// dropped rather than stalling arbitration.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*ws.Conn

	events chan any
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]*ws.Conn),
		events: make(chan any, 64),
	}
}

// Replace sets the connection for a client and closes the previous one if
// present.
func (h *Hub) Replace(clientID string, c *ws.Conn) (prevClosed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.conns[clientID]; ok && old != nil {
		_ = old.Close(ws.StatusNormalClosure, "replaced")
		prevClosed = true
	}
	h.conns[clientID] = c
	return
}

func (h *Hub) Remove(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, clientID)
}

// Publish enqueues an event for broadcast. Dropped when the buffer is full.
func (h *Hub) Publish(v any) {
	select {
	case h.events <- v:
	default:
		log.Printf("[streamws] event buffer full, dropping")
	}
}

// Run pumps queued events to every subscriber until ctx ends. Connections
// that fail to accept a write are closed and forgotten.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-h.events:
			h.broadcast(ctx, v)
		}
	}
}

func (h *Hub) broadcast(ctx context.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[streamws] marshal: %v", err)
		return
	}

	h.mu.Lock()
	targets := make(map[string]*ws.Conn, len(h.conns))
	for id, c := range h.conns {
		targets[id] = c
	}
	h.mu.Unlock()

	for id, c := range targets {
		wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Write(wctx, ws.MessageText, b)
		cancel()
		if err != nil {
			_ = c.Close(ws.StatusPolicyViolation, "write failed")
			h.Remove(id)
		}
	}
}
