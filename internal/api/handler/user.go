package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/proid/proid/internal/api/middleware"
	"github.com/proid/proid/internal/api/response"
	"github.com/proid/proid/internal/api/validation"
	"github.com/proid/proid/internal/auth"
	"github.com/proid/proid/internal/user"
)

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserHandler handles the authenticated user's self-service endpoints.
type UserHandler struct {
	authService *auth.Service
	userRepo    user.Repository
	dev         bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *auth.Service, userRepo user.Repository, dev bool) *UserHandler {
	return &UserHandler{
		authService: authService,
		userRepo:    userRepo,
		dev:         dev,
	}
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	var fieldErrors []validation.FieldError
	if strings.TrimSpace(req.Name) == "" {
		fieldErrors = append(fieldErrors, validation.FieldError{Field: "name", Message: "name is required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		fieldErrors = append(fieldErrors, validation.FieldError{Field: "email", Message: "email must be a valid address"})
	}
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	u, err := h.userRepo.UpdateProfile(r.Context(), identity.UserID, user.ProfileUpdate{
		Name:  strings.TrimSpace(req.Name),
		Email: email,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "Email already in use")
			return
		}
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to update profile", "error", err)
		response.ErrInternal(w, "Error updating profile", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(u))
}

// UpdatePassword handles PUT /api/users/password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	fieldErrors := validation.ValidatePasswordChangeRequest(validation.PasswordChangeRequest{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	err := h.authService.ChangePassword(r.Context(), identity.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to update password", "error", err)
		response.ErrInternal(w, "Error updating password", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
