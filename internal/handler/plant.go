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

type PlantHandler struct {
	plants *store.PlantStore
	users  *store.UserStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPlantHandler(ps *store.PlantStore, us *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *PlantHandler {
	return &PlantHandler{plants: ps, users: us, hub: hub, logger: logger}
}

type plantRequest struct {
	OwnerID  int64  `json:"owner_id"`
	Nickname string `json:"nickname"`
	Health   *int   `json:"health"`
}

func (h *PlantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req plantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}

	owner, err := h.users.GetByID(req.OwnerID)
	if err != nil {
		h.logger.Error("check owner", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create plant")
		return
	}
	if owner == nil {
		writeError(w, http.StatusBadRequest, "owner not found")
		return
	}

	plant, err := h.plants.Create(req.OwnerID, req.Nickname)
	if err != nil {
		h.logger.Error("create plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create plant")
		return
	}

	broadcast(h.hub, websocket.NewMessage("plant", "created", plant.ID, plant.OwnerID))
	writeJSON(w, http.StatusCreated, plant)
}

func (h *PlantHandler) List(w http.ResponseWriter, r *http.Request) {
	plants, err := h.plants.List()
	if err != nil {
		h.logger.Error("list plants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list plants")
		return
	}
	if plants == nil {
		plants = []model.Plant{}
	}
	writeJSON(w, http.StatusOK, plants)
}

func (h *PlantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	plant, err := h.plants.GetByID(id)
	if err != nil {
		h.logger.Error("get plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get plant")
		return
	}
	if plant == nil {
		writeError(w, http.StatusNotFound, "plant not found")
		return
	}
	writeJSON(w, http.StatusOK, plant)
}

// GetForUser returns the user's plant, creating the starter plant if the
// user somehow has none.
func (h *PlantHandler) GetForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get plant")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	plant, err := h.plants.GetOrCreateDefault(userID)
	if err != nil {
		h.logger.Error("get or create plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get plant")
		return
	}
	writeJSON(w, http.StatusOK, plant)
}

func (h *PlantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.plants.GetByID(id)
	if err != nil {
		h.logger.Error("get plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update plant")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "plant not found")
		return
	}

	var req plantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = existing.Nickname
	}
	health := existing.Health
	if req.Health != nil {
		health = *req.Health
	}
	if health < 0 || health > 100 {
		writeError(w, http.StatusBadRequest, "health must be between 0 and 100")
		return
	}

	plant, err := h.plants.Update(id, nickname, health)
	if err != nil {
		h.logger.Error("update plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update plant")
		return
	}

	broadcast(h.hub, websocket.NewMessage("plant", "updated", id, plant.OwnerID))
	writeJSON(w, http.StatusOK, plant)
}

func (h *PlantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.plants.GetByID(id)
	if err != nil {
		h.logger.Error("get plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete plant")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "plant not found")
		return
	}

	if err := h.plants.Delete(id); err != nil {
		h.logger.Error("delete plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete plant")
		return
	}

	broadcast(h.hub, websocket.NewMessage("plant", "deleted", id, existing.OwnerID))
	w.WriteHeader(http.StatusNoContent)
}
