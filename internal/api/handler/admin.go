package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/proid/proid/internal/api/middleware"
	"github.com/proid/proid/internal/api/response"
	"github.com/proid/proid/internal/api/validation"
	"github.com/proid/proid/internal/user"
)

type adminUpdateUserRequest struct {
	Name    *string `json:"name"`
	IsAdmin *bool   `json:"is_admin"`
}

// AdminUserHandler handles the admin-only user management endpoints. Routes
// using it are guarded by the RequireAdmin middleware.
type AdminUserHandler struct {
	userRepo user.Repository
	dev      bool
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(userRepo user.Repository, dev bool) *AdminUserHandler {
	return &AdminUserHandler{userRepo: userRepo, dev: dev}
}

// List handles GET /api/admin/users.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		response.ErrInternal(w, "Error fetching users", err, h.dev)
		return
	}

	items := make([]userResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	response.JSON(w, http.StatusOK, items)
}

// GetByID handles GET /api/admin/users/{id}.
func (h *AdminUserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	u, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to get user", "error", err, "id", id)
		response.ErrInternal(w, "Error fetching user", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(u))
}

// Update handles PATCH /api/admin/users/{id}.
func (h *AdminUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req adminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	if req.Name == nil && req.IsAdmin == nil {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed",
			[]validation.FieldError{{Field: "name", Message: "at least one of name or is_admin is required"}})
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed",
			[]validation.FieldError{{Field: "name", Message: "name must not be empty"}})
		return
	}

	upd := user.AdminUpdate{IsAdmin: req.IsAdmin}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		upd.Name = &trimmed
	}

	u, err := h.userRepo.UpdateByAdmin(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to update user", "error", err, "id", id)
		response.ErrInternal(w, "Error updating user", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(u))
}

// Delete handles DELETE /api/admin/users/{id}. Admins cannot delete their own
// account through this endpoint.
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	if identity != nil && identity.UserID == id {
		response.Err(w, http.StatusForbidden, "Cannot delete your own account")
		return
	}

	if err := h.userRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to delete user", "error", err, "id", id)
		response.ErrInternal(w, "Error deleting user", err, h.dev)
		return
	}

	response.NoContent(w)
}
