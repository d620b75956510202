package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/store"
	"github.com/georgec/tidybloom/internal/websocket"
)

type GoalHandler struct {
	goals  *store.GoalStore
	users  *store.UserStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewGoalHandler(gs *store.GoalStore, us *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: gs, users: us, hub: hub, logger: logger}
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.List()
	if err != nil {
		h.logger.Error("list goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	if goals == nil {
		goals = []model.CategoryGoal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	goal, err := h.goals.GetByID(id)
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get goal")
		return
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

type goalRequest struct {
	Room          string `json:"room"`
	Subcategory   string `json:"subcategory"`
	RequiredTasks int    `json:"required_tasks"`
	Frequency     string `json:"frequency"`
	IsActive      *bool  `json:"is_active"`
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.goals.GetByID(id)
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !model.ValidRoom(req.Room) {
		writeError(w, http.StatusBadRequest, "invalid room")
		return
	}
	if !model.ValidSubcategory(req.Subcategory) {
		writeError(w, http.StatusBadRequest, "invalid subcategory")
		return
	}
	if !model.ValidFrequency(req.Frequency) {
		writeError(w, http.StatusBadRequest, "invalid frequency")
		return
	}
	if req.RequiredTasks < 1 {
		writeError(w, http.StatusBadRequest, "required_tasks must be at least 1")
		return
	}
	active := existing.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}

	goal, err := h.goals.Update(id, model.Room(req.Room), model.Subcategory(req.Subcategory), req.RequiredTasks, model.Frequency(req.Frequency), active)
	if err != nil {
		h.logger.Error("update goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	broadcast(h.hub, websocket.NewMessage("goal", "updated", id, 0))
	writeJSON(w, http.StatusOK, goal)
}

// CheckProgress re-evaluates all active goals for a user against the current
// window, granting any pending bonuses.
func (h *GoalHandler) CheckProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check goals")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	completed, err := h.goals.CheckProgress(userID, time.Now())
	if err != nil {
		h.logger.Error("check goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check goals")
		return
	}
	if completed == nil {
		completed = []model.CategoryGoal{}
	}

	for _, g := range completed {
		broadcast(h.hub, websocket.NewMessage("goal", "completed", g.ID, userID))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         fmt.Sprintf("Progress checked for %s", user.Username),
		"completed_goals": completed,
	})
}
