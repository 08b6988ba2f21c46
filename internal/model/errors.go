package model

import "errors"

var (
	// Credential / session errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountMisconfigured means the stored secret is absent. It is logged
	// for operators but must surface to the end user as ErrInvalidCredentials.
	ErrAccountMisconfigured = errors.New("account misconfigured")
	ErrSessionExpired       = errors.New("session expired")
	ErrSessionInvalid       = errors.New("session invalid")

	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Refresh token errors
	ErrTokenNotFound = errors.New("token not found")

	// Attendance state machine errors
	ErrOutsideCheckInWindow  = errors.New("outside check-in window")
	ErrOutsideCheckOutWindow = errors.New("outside check-out window")
	ErrAlreadyCheckedIn      = errors.New("already checked in")
	ErrAlreadyCheckedOut     = errors.New("already checked out")
	ErrNotCheckedIn          = errors.New("not checked in")
	ErrRecordNotFound        = errors.New("attendance record not found")

	// Collaborator errors
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
