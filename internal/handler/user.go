package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/store"
	"github.com/georgec/tidybloom/internal/websocket"
)

type UserHandler struct {
	users       *store.UserStore
	plants      *store.PlantStore
	assignments *store.AssignmentStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewUserHandler(us *store.UserStore, ps *store.PlantStore, as *store.AssignmentStore, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: us, plants: ps, assignments: as, hub: hub, logger: logger}
}

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("check username", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}

	user, err := h.users.Create(req.Username, req.Email, req.Password)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	// New accounts start with the default plant so the first completion has
	// something to grow.
	if _, err := h.plants.GetOrCreateDefault(user.ID); err != nil {
		h.logger.Error("create default plant", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	broadcast(h.hub, websocket.NewMessage("user", "created", user.ID, user.ID))
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
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

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	plants, err := h.plants.ListByOwner(id)
	if err != nil {
		h.logger.Error("list user plants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	assignments, err := h.assignments.ListByUser(id, "")
	if err != nil {
		h.logger.Error("list user assignments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if plants == nil {
		plants = []model.Plant{}
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"plants":      plants,
		"assignments": assignments,
	})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.users.Delete(id); err != nil {
		h.logger.Error("delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	broadcast(h.hub, websocket.NewMessage("user", "deleted", id, id))
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func broadcast(hub *websocket.Hub, msg websocket.Message) {
	if hub != nil {
		hub.Broadcast(msg)
	}
}
