// Package chat is the websocket group chat the bot lives in.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/chorebot/internal/model"
)

const (
	TypeMessage = "message"
	TypeChat    = "chat"
)

// Message is a frame broadcast to every connected client. Bot output has
// type "message"; relayed member messages have type "chat" and an author.
type Message struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// inbound is a frame read from a client.
type inbound struct {
	Text string `json:"text"`
}

// Hub maintains the set of active clients, fans bot messages out to them
// and funnels member messages to a single consumer.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	incoming chan model.Message
	logger   *slog.Logger
}

// NewHub creates a new Hub. buffer is the capacity of the incoming queue.
func NewHub(logger *slog.Logger, buffer int) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		incoming: make(chan model.Message, buffer),
		logger:   logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("chat client connected", "user", c.user.ID, "name", c.user.Name)
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Messages returns the queue of member messages in arrival order.
func (h *Hub) Messages() <-chan model.Message {
	return h.incoming
}

// Deliver queues a member message for the bot and relays it to the other
// clients. It blocks while the queue is full unless ctx ends first.
func (h *Hub) Deliver(ctx context.Context, from *Client, msg model.Message) error {
	select {
	case h.incoming <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}
	h.broadcast(Message{Type: TypeChat, Text: msg.Text, Author: msg.Author.Name}, from)
	return nil
}

// Send broadcasts bot output to all connected clients.
func (h *Hub) Send(text string) error {
	return h.broadcast(Message{Type: TypeMessage, Text: text}, nil)
}

func (h *Hub) broadcast(msg Message, skip *Client) error {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c == skip {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full; drop rather than block the bot.
			h.logger.Warn("chat client buffer full", "user", c.user.ID)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
