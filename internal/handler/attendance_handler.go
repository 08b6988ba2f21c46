package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"employee-portal/internal/middleware"
	"employee-portal/internal/model"
	"employee-portal/internal/service"
	"employee-portal/pkg/apierror"
)

type AttendanceHandler struct {
	service *service.AttendanceService
}

func NewAttendanceHandler(service *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	rec, err := h.service.CheckIn(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, rec, nil)
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	rec, err := h.service.CheckOut(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rec, nil)
}

func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	rec, err := h.service.Today(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rec, nil)
}

// Month serves /attendance?month=YYYY-MM, defaulting to the current month.
func (h *AttendanceHandler) Month(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	year, month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, apierror.BadRequest("invalid month, want YYYY-MM", "month"))
		return
	}

	result, err := h.service.Month(r.Context(), claims.UserID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

// Correct is the admin override; policy windows are bypassed and total
// hours are recomputed by the service.
func (h *AttendanceHandler) Correct(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	recordID := chi.URLParam(r, "record_id")
	if strings.TrimSpace(recordID) == "" {
		writeError(w, apierror.BadRequest("record_id is required", "record_id"))
		return
	}

	var patch model.AttendanceCorrection
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	rec, err := h.service.Correct(r.Context(), claims.UserID, recordID, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rec, nil)
}

func parseMonth(raw string) (int, time.Month, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}

	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return 0, 0, apierror.BadRequest("invalid month", raw)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, apierror.BadRequest("invalid year", raw)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, apierror.BadRequest("invalid month", raw)
	}

	return year, time.Month(m), nil
}
