package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"employee-portal/internal/model"
	"employee-portal/pkg/apierror"
)

const bcryptCost = 12

type userDirectory interface {
	List(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, id string, role string, isActive bool) error
}

type sessionRevoker interface {
	RevokeAllSessions(ctx context.Context, userID string) error
}

// AdminHandler covers the user-management surface. Attendance corrections
// live on AttendanceHandler; this one owns accounts.
type AdminHandler struct {
	users    userDirectory
	sessions sessionRevoker
}

func NewAdminHandler(users userDirectory, sessions sessionRevoker) *AdminHandler {
	return &AdminHandler{users: users, sessions: sessions}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users, &model.Meta{Total: len(users)})
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.EmpID = strings.TrimSpace(req.EmpID)

	switch {
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		writeError(w, apierror.BadRequest("a valid email is required", "email"))
		return
	case req.Name == "":
		writeError(w, apierror.BadRequest("name is required", "name"))
		return
	case req.EmpID == "":
		writeError(w, apierror.BadRequest("emp_id is required", "emp_id"))
		return
	case !model.ValidRole(req.Role):
		writeError(w, apierror.BadRequest("role must be admin or employee", "role"))
		return
	case len(req.Password) < 8:
		writeError(w, apierror.BadRequest("password must be at least 8 characters", "password"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		writeError(w, err)
		return
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		EmpID:        req.EmpID,
		Role:         req.Role,
		Department:   req.Department,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user.Public(), nil)
}

// UpdateUser patches role and active flag. Deactivating an account also
// revokes its refresh tokens so existing sessions die with the next
// access-token expiry.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id := chi.URLParam(r, "user_id")
	if strings.TrimSpace(id) == "" {
		writeError(w, apierror.BadRequest("user_id is required", "user_id"))
		return
	}

	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	if req.Role == nil && req.IsActive == nil {
		writeError(w, apierror.BadRequest("nothing to update", ""))
		return
	}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		writeError(w, apierror.BadRequest("role must be admin or employee", "role"))
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	role := user.Role
	if req.Role != nil {
		role = *req.Role
	}
	isActive := user.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if err := h.users.Update(r.Context(), id, role, isActive); err != nil {
		writeError(w, err)
		return
	}

	if user.IsActive && !isActive {
		if err := h.sessions.RevokeAllSessions(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}

	user.Role = role
	user.IsActive = isActive

	writeSuccess(w, http.StatusOK, user.Public(), nil)
}
