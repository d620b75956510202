package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/store"
	"github.com/georgec/tidybloom/internal/websocket"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, hub: hub, logger: logger}
}

type taskRequest struct {
	Name        string `json:"name"`
	Room        string `json:"room"`
	Subcategory string `json:"subcategory"`
	Frequency   string `json:"frequency"`
	BaseXP      *int   `json:"base_xp"`
	IsActive    *bool  `json:"is_active"`
}

// validate normalizes the request and reports the first problem, if any.
func (req *taskRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if !model.ValidRoom(req.Room) {
		return "invalid room"
	}
	if !model.ValidSubcategory(req.Subcategory) {
		return "invalid subcategory"
	}
	if !model.ValidFrequency(req.Frequency) {
		return "invalid frequency"
	}
	if req.BaseXP != nil && *req.BaseXP < 0 {
		return "base_xp must not be negative"
	}
	return ""
}

// defaultBaseXP mirrors the seed catalog: daily 5, weekly 10, monthly 15.
func defaultBaseXP(freq model.Frequency) int {
	switch freq {
	case model.FrequencyWeekly:
		return 10
	case model.FrequencyMonthly:
		return 15
	default:
		return 5
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	baseXP := defaultBaseXP(model.Frequency(req.Frequency))
	if req.BaseXP != nil {
		baseXP = *req.BaseXP
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	task, err := h.tasks.Create(req.Name, model.Room(req.Room), model.Subcategory(req.Subcategory), model.Frequency(req.Frequency), baseXP, active)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	broadcast(h.hub, websocket.NewMessage("task", "created", task.ID, 0))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List()
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	if !model.ValidRoom(room) {
		writeError(w, http.StatusBadRequest, "invalid room")
		return
	}

	tasks, err := h.tasks.ListByRoom(model.Room(room))
	if err != nil {
		h.logger.Error("list tasks by room", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	baseXP := existing.BaseXP
	if req.BaseXP != nil {
		baseXP = *req.BaseXP
	}
	active := existing.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}

	task, err := h.tasks.Update(id, req.Name, model.Room(req.Room), model.Subcategory(req.Subcategory), model.Frequency(req.Frequency), baseXP, active)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	broadcast(h.hub, websocket.NewMessage("task", "updated", id, 0))
	writeJSON(w, http.StatusOK, task)
}
