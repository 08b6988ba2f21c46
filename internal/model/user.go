package model

import "time"

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is the credential-store row. PasswordHash and MFASecret never leave
// the auth service; they are excluded from every JSON surface.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	EmpID        string    `json:"emp_id"`
	Role         string    `json:"role"`
	Department   *string   `json:"department"`
	PasswordHash string    `json:"-"`
	MFAEnabled   bool      `json:"mfa_enabled"`
	MFASecret    string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthUser is the public projection of a User returned from auth endpoints.
type AuthUser struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	EmpID      string  `json:"emp_id"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
}

func (u User) Public() AuthUser {
	return AuthUser{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		EmpID:      u.EmpID,
		Role:       u.Role,
		Department: u.Department,
	}
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

type AuthClaims struct {
	UserID  string `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Type    string `json:"typ"`
	TokenID string `json:"jti"`
}

type TokenPair struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         AuthUser `json:"user"`
}
