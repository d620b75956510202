package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/store"
	"github.com/georgec/tidybloom/internal/websocket"
)

type AssignmentHandler struct {
	assignments *store.AssignmentStore
	users       *store.UserStore
	tasks       *store.TaskStore
	goals       *store.GoalStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewAssignmentHandler(as *store.AssignmentStore, us *store.UserStore, ts *store.TaskStore, gs *store.GoalStore, hub *websocket.Hub, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: as, users: us, tasks: ts, goals: gs, hub: hub, logger: logger}
}

type assignmentRequest struct {
	UserID int64 `json:"user_id"`
	TaskID int64 `json:"task_id"`
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.users.GetByID(req.UserID)
	if err != nil {
		h.logger.Error("check user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}
	if user == nil {
		writeError(w, http.StatusBadRequest, "user not found")
		return
	}
	task, err := h.tasks.GetByID(req.TaskID)
	if err != nil {
		h.logger.Error("check task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}
	if task == nil {
		writeError(w, http.StatusBadRequest, "task not found")
		return
	}

	a, err := h.assignments.Create(req.UserID, req.TaskID)
	if err != nil {
		h.logger.Error("create assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}

	broadcast(h.hub, websocket.NewMessage("assignment", "created", a.ID, a.UserID))
	writeJSON(w, http.StatusCreated, a)
}

func (h *AssignmentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	assignments, err := h.assignments.ListByUser(userID, status)
	if err != nil {
		h.logger.Error("list assignments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Complete marks a pending assignment done and awards XP. Completing also
// re-evaluates the user's category goals so a qualifying completion grants
// the bonus in the same request.
func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	a, err := h.assignments.Complete(id, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyCompleted):
			writeError(w, http.StatusConflict, "assignment already completed")
		case errors.Is(err, store.ErrExpired):
			writeError(w, http.StatusConflict, "assignment has expired")
		default:
			h.logger.Error("complete assignment", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to complete assignment")
		}
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}

	// The completion is already committed at this point; a failed goal check
	// must not turn a successful completion into an error response. The next
	// check (or the explicit goals/check endpoint) will catch up the bonus.
	completedGoals, err := h.goals.CheckProgress(a.UserID, time.Now())
	if err != nil {
		h.logger.Error("check goals after completion", "error", err)
		completedGoals = nil
	}

	broadcast(h.hub, websocket.NewMessage("assignment", "completed", a.ID, a.UserID))
	for _, g := range completedGoals {
		broadcast(h.hub, websocket.NewMessage("goal", "completed", g.ID, a.UserID))
	}

	writeJSON(w, http.StatusOK, a)
}

// Uncomplete reverts a completed assignment back to pending, appending a
// compensating ledger entry so the award history stays intact.
func (h *AssignmentHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	a, err := h.assignments.Uncomplete(id, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotCompleted) {
			writeError(w, http.StatusConflict, "assignment is not completed")
			return
		}
		h.logger.Error("uncomplete assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to uncomplete assignment")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}

	broadcast(h.hub, websocket.NewMessage("assignment", "uncompleted", a.ID, a.UserID))
	writeJSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) DeleteAllForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete assignments")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	deleted, err := h.assignments.DeleteAllForUser(userID)
	if err != nil {
		h.logger.Error("delete assignments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete assignments")
		return
	}

	broadcast(h.hub, websocket.NewMessage("assignment", "reset", 0, userID))
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
