package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorebot/internal/chat"
	"github.com/dukerupert/chorebot/internal/database"
	"github.com/dukerupert/chorebot/internal/handler"
	"github.com/dukerupert/chorebot/internal/middleware"
	"github.com/dukerupert/chorebot/internal/store"
)

const (
	wsConnectLimit  = 10
	wsConnectWindow = time.Minute
)

type Server struct {
	db          *sql.DB
	hub         *chat.Hub
	choreH      *handler.ChoreHandler
	userH       *handler.UserHandler
	tokenHash   string
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires the HTTP surface. tokenHash guards /api when non-empty; now
// supplies the clock for due-date computation.
func New(db *sql.DB, st *store.Store, hub *chat.Hub, tokenHash string, now func() time.Time, logger *slog.Logger) *Server {
	return &Server{
		db:          db,
		hub:         hub,
		choreH:      handler.NewChoreHandler(st, now, logger.With("component", "chore")),
		userH:       handler.NewUserHandler(st, logger.With("component", "user")),
		tokenHash:   tokenHash,
		rateLimiter: middleware.NewRateLimiter(wsConnectLimit, wsConnectWindow),
		logger:      logger,
	}
}

// RateLimiter exposes the connection limiter so its cleanup loop can run.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /ws", middleware.RateLimit(s.rateLimiter)(
		chat.HandleWebSocket(s.hub, s.logger.With("component", "chat")),
	))

	api := http.NewServeMux()
	api.HandleFunc("GET /api/chores", s.choreH.List)
	api.HandleFunc("GET /api/chores/{name}", s.choreH.Get)
	api.HandleFunc("GET /api/chores/{name}/completions", s.choreH.Completions)
	api.HandleFunc("GET /api/users", s.userH.List)
	mux.Handle("/api/", middleware.RequireToken(s.tokenHash)(api))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	schema, err := database.Version(r.Context(), s.db)
	if err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
		"schema":  schema,
	})
}
