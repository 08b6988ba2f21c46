package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employee-portal/internal/model"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"expired session", model.ErrSessionExpired, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"malformed session", model.ErrSessionInvalid, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"outside check-in window", model.ErrOutsideCheckInWindow, http.StatusUnprocessableEntity, "OUTSIDE_CHECKIN_WINDOW"},
		{"outside check-out window", model.ErrOutsideCheckOutWindow, http.StatusUnprocessableEntity, "OUTSIDE_CHECKOUT_WINDOW"},
		{"already checked in", model.ErrAlreadyCheckedIn, http.StatusConflict, "ALREADY_CHECKED_IN"},
		{"already checked out", model.ErrAlreadyCheckedOut, http.StatusConflict, "ALREADY_CHECKED_OUT"},
		{"not checked in", model.ErrNotCheckedIn, http.StatusConflict, "NOT_CHECKED_IN"},
		{"record not found", model.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"storage down", model.ErrStorageUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
		{"wrapped sentinel", fmt.Errorf("check-in: %w", model.ErrAlreadyCheckedIn), http.StatusConflict, "ALREADY_CHECKED_IN"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body model.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

// Expired and malformed sessions must be byte-identical on the wire apart
// from transport noise; nothing in the body reveals which case it was.
func TestWriteErrorSessionResponsesIndistinguishable(t *testing.T) {
	expired := httptest.NewRecorder()
	writeError(expired, model.ErrSessionExpired)

	malformed := httptest.NewRecorder()
	writeError(malformed, model.ErrSessionInvalid)

	assert.Equal(t, expired.Code, malformed.Code)
	assert.Equal(t, expired.Body.String(), malformed.Body.String())
}
