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

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// userResponse is the API representation of a user, shared by the auth,
// profile, and admin endpoints. The password hash never leaves the server.
type userResponse struct {
	ID        string  `json:"id"`
	Username  *string `json:"username,omitempty"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	IsAdmin   bool    `json:"is_admin"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: u.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// AuthHandler handles registration, login, and token validation endpoints.
type AuthHandler struct {
	authService *auth.Service
	userRepo    user.Repository
	dev         bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, userRepo user.Repository, dev bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userRepo:    userRepo,
		dev:         dev,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	params := auth.RegisterParams{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	}
	if username := strings.TrimSpace(req.Username); username != "" {
		params.Username = &username
	}

	u, token, err := h.authService.Register(r.Context(), params)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) || errors.Is(err, user.ErrDuplicateUsername) {
			response.Err(w, http.StatusConflict, "User already exists")
			return
		}
		slog.Error("failed to register user", "error", err)
		response.ErrInternal(w, "Error creating user", err, h.dev)
		return
	}

	response.JSON(w, http.StatusCreated, tokenResponse{Token: token, User: toUserResponse(u)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	u, token, err := h.authService.Login(r.Context(), email, username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("failed to log in user", "error", err)
		response.ErrInternal(w, "Error logging in", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, tokenResponse{Token: token, User: toUserResponse(u)})
}

// Validate handles GET /api/auth/validate. The auth middleware has already
// resolved the token; this endpoint just echoes the current user back.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "Authentication token required")
		return
	}

	u, err := h.userRepo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusUnauthorized, "User not found")
			return
		}
		slog.Error("failed to load current user", "error", err)
		response.ErrInternal(w, "Error validating token", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, map[string]userResponse{"user": toUserResponse(u)})
}
