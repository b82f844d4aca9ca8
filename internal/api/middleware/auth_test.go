package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proid/proid/internal/api/middleware"
	"github.com/proid/proid/internal/auth"
	"github.com/proid/proid/internal/user"
)

var testSecret = []byte("middleware-test-secret")

// mockUserRepo implements user.Repository with a fixed set of users.
type mockUserRepo struct {
	users map[uuid.UUID]*user.User
}

func newMockUserRepo(users ...*user.User) *mockUserRepo {
	m := &mockUserRepo{users: map[uuid.UUID]*user.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]user.User, error) {
	out := []user.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u.Name = upd.Name
	u.Email = upd.Email
	return u, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) UpdateByAdmin(ctx context.Context, id uuid.UUID, upd user.AdminUpdate) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.IsAdmin != nil {
		u.IsAdmin = *upd.IsAdmin
	}
	return u, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func sampleUser(isAdmin bool) *user.User {
	now := time.Now().UTC()
	return &user.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$04$fakehash",
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func errMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestAuth_MissingHeader(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	handler := middleware.Auth(issuer, newMockUserRepo())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication token required", errMessage(t, w))
}

func TestAuth_EmptyBearerToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	handler := middleware.Auth(issuer, newMockUserRepo())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NonBearerScheme(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	handler := middleware.Auth(issuer, newMockUserRepo())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	handler := middleware.Auth(issuer, newMockUserRepo())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid token", errMessage(t, w))
}

func TestAuth_ExpiredToken(t *testing.T) {
	expired := auth.NewTokenIssuer(testSecret, -time.Minute)
	u := sampleUser(false)
	token, err := expired.Issue(u.ID, u.Email)
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	handler := middleware.Auth(issuer, newMockUserRepo(u))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_ValidTokenDeletedUser(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(uuid.New(), "gone@x.com")
	require.NoError(t, err)

	handler := middleware.Auth(issuer, newMockUserRepo())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not found", errMessage(t, w))
}

func TestAuth_ValidToken_IdentityInContext(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	u := sampleUser(true)
	token, err := issuer.Issue(u.ID, u.Email)
	require.NoError(t, err)

	var captured *auth.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Auth(issuer, newMockUserRepo(u))(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, u.ID, captured.UserID)
	assert.True(t, captured.IsAdmin)
}

func TestGetIdentity_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, middleware.GetIdentity(req.Context()))
}
