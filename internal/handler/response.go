package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"employee-portal/internal/model"
	"employee-portal/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrInvalidCredentials):
		// One message for wrong password, unknown identifier and inactive
		// account: no account enumeration through error text.
		status = http.StatusUnauthorized
		body.Code = "INVALID_CREDENTIALS"
		body.Message = "Invalid credentials"
	case errors.Is(err, model.ErrSessionExpired), errors.Is(err, model.ErrSessionInvalid):
		// Expired and malformed sessions get identical responses.
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid or expired session"
	case errors.Is(err, model.ErrOutsideCheckInWindow):
		status = http.StatusUnprocessableEntity
		body.Code = "OUTSIDE_CHECKIN_WINDOW"
		body.Message = "Check-in is not allowed at this time"
	case errors.Is(err, model.ErrOutsideCheckOutWindow):
		status = http.StatusUnprocessableEntity
		body.Code = "OUTSIDE_CHECKOUT_WINDOW"
		body.Message = "Check-out is not allowed at this time"
	case errors.Is(err, model.ErrAlreadyCheckedIn):
		status = http.StatusConflict
		body.Code = "ALREADY_CHECKED_IN"
		body.Message = "Already checked in today"
	case errors.Is(err, model.ErrAlreadyCheckedOut):
		status = http.StatusConflict
		body.Code = "ALREADY_CHECKED_OUT"
		body.Message = "Already checked out today"
	case errors.Is(err, model.ErrNotCheckedIn):
		status = http.StatusConflict
		body.Code = "NOT_CHECKED_IN"
		body.Message = "No open check-in for today"
	case errors.Is(err, model.ErrRecordNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Attendance record not found"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "User already exists"
	case errors.Is(err, model.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
		body.Code = "STORAGE_UNAVAILABLE"
		body.Message = "Storage is temporarily unavailable"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	default:
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
