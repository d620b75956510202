package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/progression"
	"github.com/georgec/tidybloom/internal/store"
)

type XPHandler struct {
	xp     *store.XPStore
	users  *store.UserStore
	stages *store.StageStore
	logger *slog.Logger
}

func NewXPHandler(xs *store.XPStore, us *store.UserStore, ss *store.StageStore, logger *slog.Logger) *XPHandler {
	return &XPHandler{xp: xs, users: us, stages: ss, logger: logger}
}

func (h *XPHandler) userExists(w http.ResponseWriter, userID int64) bool {
	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return false
	}
	return true
}

func (h *XPHandler) TotalXP(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.userExists(w, userID) {
		return
	}

	total, err := h.xp.TotalXP(userID)
	if err != nil {
		h.logger.Error("total xp", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get xp")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_xp": total})
}

// Progress reports where the user sits between growth stages.
func (h *XPHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.userExists(w, userID) {
		return
	}

	total, err := h.xp.TotalXP(userID)
	if err != nil {
		h.logger.Error("total xp", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get progress")
		return
	}
	thresholds, err := h.stages.ListThresholds()
	if err != nil {
		h.logger.Error("load thresholds", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get progress")
		return
	}
	prog, err := progression.Compute(total, thresholds)
	if err != nil {
		h.logger.Error("compute progress", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get progress")
		return
	}

	resp := map[string]any{
		"total_xp":         total,
		"current_stage":    prog.Current.Stage,
		"next_stage":       nil,
		"progress_to_next": prog.PercentToNext,
	}
	if prog.Next != nil {
		resp["next_stage"] = prog.Next.Stage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *XPHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.userExists(w, userID) {
		return
	}

	q := r.URL.Query()
	source := q.Get("source")

	var start, end *time.Time
	if s := q.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start time")
			return
		}
		start = &t
	}
	if s := q.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end time")
			return
		}
		end = &t
	}

	events, err := h.xp.ListByUser(userID, source, start, end)
	if err != nil {
		h.logger.Error("list xp events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list xp events")
		return
	}
	if events == nil {
		events = []model.XPEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *XPHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	stages, err := h.stages.List()
	if err != nil {
		h.logger.Error("list stages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list stages")
		return
	}
	if stages == nil {
		stages = []model.GrowthStage{}
	}
	writeJSON(w, http.StatusOK, stages)
}
