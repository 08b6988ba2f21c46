package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"employee-portal/internal/middleware"
	"employee-portal/internal/model"
	"employee-portal/internal/service"
	"employee-portal/pkg/apierror"
)

type PresenceHandler struct {
	service *service.PresenceService
}

func NewPresenceHandler(service *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{service: service}
}

// Heartbeat records a liveness ping. It never fails the caller: a storage
// hiccup on a heartbeat is not the client's problem.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var req model.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	h.service.Heartbeat(r.Context(), claims.UserID, req.Page, userAgent)

	writeSuccess(w, http.StatusAccepted, map[string]string{"status": "accepted"}, nil)
}

// Recent lists heartbeats seen inside the lookback window. Admin only;
// the router enforces the role.
func (h *PresenceHandler) Recent(w http.ResponseWriter, r *http.Request) {
	window := 5 * time.Minute
	if raw := r.URL.Query().Get("window_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 1 || minutes > 1440 {
			writeError(w, apierror.BadRequest("window_minutes must be between 1 and 1440", "window_minutes"))
			return
		}
		window = time.Duration(minutes) * time.Minute
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, apierror.BadRequest("limit must be a positive integer", "limit"))
			return
		}
		limit = n
	}

	logs, err := h.service.Recent(r.Context(), window, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, logs, &model.Meta{Total: len(logs)})
}
