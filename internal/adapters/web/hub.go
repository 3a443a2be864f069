package web

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/andrescamacho/neonrails-go/internal/application/game"
)

// Message types sent to WebSocket clients
const (
	MessageSnapshot = "snapshot"
	MessageState    = "state"
	MessageEvent    = "event"
)

const broadcastBuffer = 64

// Message is the JSON envelope of every WebSocket frame
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub keeps the set of connected clients and fans session changes out to them.
// Only Run touches the client set.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
	logger     *zap.Logger
}

// NewHub creates a hub; it delivers nothing until Run is called
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		logger:     logger.Named("hub"),
	}
}

// Run delivers broadcasts until ctx is cancelled, then disconnects every client
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return nil

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Add(1)
			h.logger.Debug("client connected", zap.String("remote", client.remote))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("client disconnected", zap.String("remote", client.remote))
			}

		case frame := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					// Slow consumer
					h.drop(client)
					h.logger.Warn("client send buffer full, disconnecting", zap.String("remote", client.remote))
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Add(-1)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Observe broadcasts the state of every change, and the event when one was applied.
// It never blocks the session: frames are dropped while the broadcast queue is full.
func (h *Hub) Observe(change game.Change) {
	h.Broadcast(Message{Type: MessageState, Payload: change.State})
	if change.Event != nil {
		h.Broadcast(Message{Type: MessageEvent, Payload: change.Event})
	}
}

// Broadcast queues a message for every client
func (h *Hub) Broadcast(msg Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- frame:
	default:
		h.logger.Warn("broadcast queue full, frame dropped", zap.String("type", msg.Type))
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
