package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/chorebot/internal/chore"
	"github.com/dukerupert/chorebot/internal/model"
)

// ChoreReader is the read access the chore endpoints need.
type ChoreReader interface {
	Chores() ([]model.Chore, error)
	GetChore(name string) (*model.Chore, error)
	Completions(choreName string) ([]model.ChoreCompletion, error)
	LastCompletion(choreName string) (*time.Time, error)
}

type ChoreHandler struct {
	store  ChoreReader
	now    func() time.Time
	logger *slog.Logger
}

func NewChoreHandler(st ChoreReader, now func() time.Time, logger *slog.Logger) *ChoreHandler {
	if now == nil {
		now = time.Now
	}
	return &ChoreHandler{store: st, now: now, logger: logger}
}

type choreView struct {
	Name          string       `json:"name"`
	Recurrence    string       `json:"recurrence"`
	Frequency     string       `json:"frequency"`
	Status        chore.Status `json:"status"`
	DueAt         *time.Time   `json:"due_at"`
	Overdue       bool         `json:"overdue"`
	AssignedTo    *model.User  `json:"assigned_to"`
	SkippedBy     []model.User `json:"skipped_by"`
	LastCompleted *time.Time   `json:"last_completed"`
}

func (h *ChoreHandler) view(c model.Chore, now time.Time) (choreView, error) {
	last, err := h.store.LastCompletion(c.Name)
	if err != nil {
		return choreView{}, err
	}
	status, due := chore.ComputeStatus(c, last, now)
	skipped := c.SkippedBy
	if skipped == nil {
		skipped = []model.User{}
	}
	return choreView{
		Name:          c.Name,
		Recurrence:    c.Recurrence.String(),
		Frequency:     c.Recurrence.Describe(),
		Status:        status,
		DueAt:         due,
		Overdue:       chore.IsOverdue(c, last, now),
		AssignedTo:    c.Assigned,
		SkippedBy:     skipped,
		LastCompleted: last,
	}, nil
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.store.Chores()
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}

	now := h.now()
	views := make([]choreView, 0, len(chores))
	for _, c := range chores {
		v, err := h.view(c, now)
		if err != nil {
			h.logger.Error("last completion", "chore", c.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list chores")
			return
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.find(w, r)
	if !ok {
		return
	}
	v, err := h.view(*c, h.now())
	if err != nil {
		h.logger.Error("last completion", "chore", c.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ChoreHandler) Completions(w http.ResponseWriter, r *http.Request) {
	c, ok := h.find(w, r)
	if !ok {
		return
	}
	completions, err := h.store.Completions(c.Name)
	if err != nil {
		h.logger.Error("list completions", "chore", c.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if completions == nil {
		completions = []model.ChoreCompletion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

// find resolves the {name} path value, writing the error response itself
// when it fails.
func (h *ChoreHandler) find(w http.ResponseWriter, r *http.Request) (*model.Chore, bool) {
	name := strings.ToLower(strings.TrimSpace(r.PathValue("name")))
	if name == "" {
		writeError(w, http.StatusBadRequest, "chore name is required")
		return nil, false
	}
	c, err := h.store.GetChore(name)
	if err != nil {
		h.logger.Error("get chore", "chore", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return nil, false
	}
	return c, true
}
