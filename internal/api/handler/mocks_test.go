package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/proid/proid/internal/api/middleware"
	"github.com/proid/proid/internal/attribute"
	"github.com/proid/proid/internal/auth"
	"github.com/proid/proid/internal/dataconsumer"
	"github.com/proid/proid/internal/user"
)

// --- Mock repositories with overridable function fields ---

type mockUserRepo struct {
	createFn        func(ctx context.Context, u *user.User) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*user.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*user.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*user.User, error)
	listFn          func(ctx context.Context) ([]user.User, error)
	updateProfileFn func(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error)
	updatePassFn    func(ctx context.Context, id uuid.UUID, hash string) error
	updateByAdminFn func(ctx context.Context, id uuid.UUID, upd user.AdminUpdate) (*user.User, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]user.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []user.User{}, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, upd)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	if m.updatePassFn != nil {
		return m.updatePassFn(ctx, id, hash)
	}
	return nil
}

func (m *mockUserRepo) UpdateByAdmin(ctx context.Context, id uuid.UUID, upd user.AdminUpdate) (*user.User, error) {
	if m.updateByAdminFn != nil {
		return m.updateByAdminFn(ctx, id, upd)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockAttrRepo struct {
	createFn      func(ctx context.Context, a *attribute.Attribute) error
	listByUserFn  func(ctx context.Context, userID uuid.UUID) ([]attribute.Attribute, error)
	getOwnedFn    func(ctx context.Context, id, userID uuid.UUID) (*attribute.Attribute, error)
	updateOwnedFn func(ctx context.Context, id, userID uuid.UUID, upd attribute.Update) (*attribute.Attribute, error)
	deleteOwnedFn func(ctx context.Context, id, userID uuid.UUID) error
}

func (m *mockAttrRepo) Create(ctx context.Context, a *attribute.Attribute) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	return nil
}

func (m *mockAttrRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]attribute.Attribute, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []attribute.Attribute{}, nil
}

func (m *mockAttrRepo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*attribute.Attribute, error) {
	if m.getOwnedFn != nil {
		return m.getOwnedFn(ctx, id, userID)
	}
	return nil, attribute.ErrAttributeNotFound
}

func (m *mockAttrRepo) UpdateOwned(ctx context.Context, id, userID uuid.UUID, upd attribute.Update) (*attribute.Attribute, error) {
	if m.updateOwnedFn != nil {
		return m.updateOwnedFn(ctx, id, userID, upd)
	}
	return nil, attribute.ErrAttributeNotFound
}

func (m *mockAttrRepo) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	if m.deleteOwnedFn != nil {
		return m.deleteOwnedFn(ctx, id, userID)
	}
	return attribute.ErrAttributeNotFound
}

type mockConsumerRepo struct {
	createFn        func(ctx context.Context, d *dataconsumer.DataConsumer) error
	listVisibleFn   func(ctx context.Context, userID uuid.UUID, search string) ([]dataconsumer.DataConsumer, error)
	getVisibleFn    func(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*dataconsumer.DataConsumer, error)
	updateMutableFn func(ctx context.Context, id, userID uuid.UUID, isAdmin bool, upd dataconsumer.Update) (*dataconsumer.DataConsumer, error)
	deleteMutableFn func(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error
}

func (m *mockConsumerRepo) Create(ctx context.Context, d *dataconsumer.DataConsumer) error {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	return nil
}

func (m *mockConsumerRepo) ListVisible(ctx context.Context, userID uuid.UUID, search string) ([]dataconsumer.DataConsumer, error) {
	if m.listVisibleFn != nil {
		return m.listVisibleFn(ctx, userID, search)
	}
	return []dataconsumer.DataConsumer{}, nil
}

func (m *mockConsumerRepo) GetVisible(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*dataconsumer.DataConsumer, error) {
	if m.getVisibleFn != nil {
		return m.getVisibleFn(ctx, id, userID, isAdmin)
	}
	return nil, dataconsumer.ErrConsumerNotFound
}

func (m *mockConsumerRepo) UpdateMutable(ctx context.Context, id, userID uuid.UUID, isAdmin bool, upd dataconsumer.Update) (*dataconsumer.DataConsumer, error) {
	if m.updateMutableFn != nil {
		return m.updateMutableFn(ctx, id, userID, isAdmin, upd)
	}
	return nil, dataconsumer.ErrConsumerNotFound
}

func (m *mockConsumerRepo) DeleteMutable(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error {
	if m.deleteMutableFn != nil {
		return m.deleteMutableFn(ctx, id, userID, isAdmin)
	}
	return dataconsumer.ErrConsumerNotFound
}

// --- Request helpers ---

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authed attaches an Identity to the request context, standing in for the
// auth middleware.
func authed(req *http.Request, identity *auth.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

// multipartRequest builds a multipart form request with the given fields and
// an optional file part.
func multipartRequest(t *testing.T, target string, fields map[string][]string, fileName string, fileContent []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func bodyMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decodeBody(t, w, &body)
	msg, _ := body["message"].(string)
	return msg
}
