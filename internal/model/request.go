package model

import "time"

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type HeartbeatRequest struct {
	Page      string `json:"page"`
	UserAgent string `json:"user_agent,omitempty"`
}

type CreateUserRequest struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	EmpID      string  `json:"emp_id"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
	Password   string  `json:"password"`
}

type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// AttendanceCorrection is the admin patch applied outside the policy windows.
// Nil fields are left unchanged.
type AttendanceCorrection struct {
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Status       *string    `json:"status,omitempty"`
}
