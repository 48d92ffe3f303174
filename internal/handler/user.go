package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorebot/internal/model"
)

type UserLister interface {
	Users() ([]model.User, error)
}

type UserHandler struct {
	store  UserLister
	logger *slog.Logger
}

func NewUserHandler(st UserLister, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: st, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}
