package chat

import (
	"log/slog"
	"net/http"
	"strings"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/dukerupert/chorebot/internal/model"
)

// UserFromRequest reads the member identity from the id and name query
// parameters. A missing id gets a random one; a missing name falls back to
// the id.
func UserFromRequest(r *http.Request) model.User {
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	if id == "" {
		id = uuid.NewString()
	}
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		name = id
	}
	return model.User{ID: id, Name: name}
}

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as Hub clients.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromRequest(r)

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // household LAN, any origin
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, user)
		client.Run(r.Context())
	}
}
