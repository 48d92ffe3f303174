package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/chorebot/internal/model"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	maxFrameBytes  = 4096
)

// Client is one member's websocket connection.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	user model.User
	send chan []byte
}

// NewClient creates a Client for user tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn, user model.User) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		user: user,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.conn.SetReadLimit(maxFrameBytes)
	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump hands each text frame to the hub. Frames that are not valid
// JSON or carry no text are ignored.
func (c *Client) readPump(ctx context.Context) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != ws.MessageText {
			continue
		}

		msg, ok := c.decode(data)
		if !ok {
			continue
		}
		if err := c.hub.Deliver(ctx, c, msg); err != nil {
			return
		}
	}
}

func (c *Client) decode(data []byte) (model.Message, bool) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		c.hub.logger.Debug("chat: invalid frame", "user", c.user.ID, "error", err)
		return model.Message{}, false
	}
	if strings.TrimSpace(in.Text) == "" {
		return model.Message{}, false
	}
	return model.Message{Text: in.Text, Author: c.user, SentAt: time.Now()}, true
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
