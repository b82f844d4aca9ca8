package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/proid/proid/internal/api/middleware"
	"github.com/proid/proid/internal/api/response"
	"github.com/proid/proid/internal/api/validation"
	"github.com/proid/proid/internal/attribute"
	"github.com/proid/proid/internal/upload"
)

// attributeResponse is the API representation of an attribute row. File
// fields are flattened to match the persisted columns.
type attributeResponse struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Key       string   `json:"key"`
	Value     string   `json:"value"`
	WhereUsed []string `json:"where_used"`
	FilePath  *string  `json:"file_path,omitempty"`
	FileName  *string  `json:"file_name,omitempty"`
	FileType  *string  `json:"file_type,omitempty"`
	FileSize  *int64   `json:"file_size,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toAttributeResponse(a *attribute.Attribute) attributeResponse {
	resp := attributeResponse{
		ID:        a.ID.String(),
		UserID:    a.UserID.String(),
		Key:       a.Key,
		Value:     a.Value,
		WhereUsed: a.WhereUsed,
		CreatedAt: a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: a.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if a.File != nil {
		resp.FilePath = &a.File.Path
		resp.FileName = &a.File.Name
		resp.FileType = &a.File.Type
		resp.FileSize = &a.File.Size
	}
	return resp
}

// attributeInput is the decoded body of a create/update request, accepted as
// JSON or as a multipart form carrying an optional "file" field.
type attributeInput struct {
	Key        string
	Value      string
	WhereUsed  []string
	FileHeader *multipart.FileHeader
}

// AttributeHandler handles attribute CRUD endpoints.
type AttributeHandler struct {
	repo    attribute.Repository
	uploads *upload.Store
	dev     bool
}

// NewAttributeHandler creates a new AttributeHandler.
func NewAttributeHandler(repo attribute.Repository, uploads *upload.Store, dev bool) *AttributeHandler {
	return &AttributeHandler{
		repo:    repo,
		uploads: uploads,
		dev:     dev,
	}
}

// decodeInput reads an attribute write request. It returns false after
// writing an error response when the body cannot be decoded.
func (h *AttributeHandler) decodeInput(w http.ResponseWriter, r *http.Request) (*attributeInput, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		// Allow headroom over the file limit for the other form fields.
		r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+1<<20)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			response.Err(w, http.StatusBadRequest, "Uploaded file exceeds the maximum size or the form is malformed")
			return nil, false
		}

		in := &attributeInput{
			Key:       r.FormValue("key"),
			Value:     r.FormValue("value"),
			WhereUsed: attribute.NormalizeStrings(r.MultipartForm.Value["where_used"]),
		}

		if _, fh, err := r.FormFile("file"); err == nil {
			in.FileHeader = fh
		} else if !errors.Is(err, http.ErrMissingFile) {
			response.Err(w, http.StatusBadRequest, "Invalid file field")
			return nil, false
		}

		return in, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Key       string          `json:"key"`
		Value     string          `json:"value"`
		WhereUsed json.RawMessage `json:"where_used"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return nil, false
	}

	in := &attributeInput{Key: req.Key, Value: req.Value}
	if len(req.WhereUsed) > 0 {
		var raw any
		if err := json.Unmarshal(req.WhereUsed, &raw); err != nil {
			response.Err(w, http.StatusBadRequest, "where_used must be valid JSON")
			return nil, false
		}
		in.WhereUsed = attribute.Normalize(raw)
	}

	return in, true
}

// List handles GET /api/attributes.
func (h *AttributeHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	attrs, err := h.repo.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to list attributes", "error", err)
		response.ErrInternal(w, "Error fetching attributes", err, h.dev)
		return
	}

	items := make([]attributeResponse, 0, len(attrs))
	for i := range attrs {
		items = append(items, toAttributeResponse(&attrs[i]))
	}

	response.JSON(w, http.StatusOK, items)
}

// Create handles POST /api/attributes.
func (h *AttributeHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	fieldErrors := validation.ValidateAttributeRequest(validation.AttributeRequest{
		Key:   in.Key,
		Value: in.Value,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	var stored *upload.StoredFile
	if in.FileHeader != nil {
		var err error
		stored, err = h.uploads.Save(in.FileHeader)
		if err != nil {
			if errors.Is(err, upload.ErrFileTooLarge) {
				response.Err(w, http.StatusBadRequest, "Uploaded file exceeds the maximum size")
				return
			}
			slog.Error("failed to store uploaded file", "error", err)
			response.ErrInternal(w, "Error creating attribute", err, h.dev)
			return
		}
	}

	a := &attribute.Attribute{
		UserID:    identity.UserID,
		Key:       strings.TrimSpace(in.Key),
		Value:     in.Value,
		WhereUsed: in.WhereUsed,
		File:      toFileRef(stored),
	}

	if err := h.repo.Create(r.Context(), a); err != nil {
		if stored != nil {
			h.removeStored(stored.Path)
		}
		slog.Error("failed to create attribute", "error", err)
		response.ErrInternal(w, "Error creating attribute", err, h.dev)
		return
	}

	response.JSON(w, http.StatusCreated, toAttributeResponse(a))
}

// Update handles PUT/PATCH /api/attributes/{id}. The existing row is fetched
// first so a replaced attachment can be cleaned up afterwards; the update
// itself stays conditional on ownership.
func (h *AttributeHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	fieldErrors := validation.ValidateAttributeRequest(validation.AttributeRequest{
		Key:   in.Key,
		Value: in.Value,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	existing, err := h.repo.GetOwned(r.Context(), id, identity.UserID)
	if err != nil {
		if errors.Is(err, attribute.ErrAttributeNotFound) {
			response.Err(w, http.StatusNotFound, "Attribute not found")
			return
		}
		slog.Error("failed to fetch attribute", "error", err, "id", id)
		response.ErrInternal(w, "Error updating attribute", err, h.dev)
		return
	}

	var stored *upload.StoredFile
	if in.FileHeader != nil {
		stored, err = h.uploads.Save(in.FileHeader)
		if err != nil {
			if errors.Is(err, upload.ErrFileTooLarge) {
				response.Err(w, http.StatusBadRequest, "Uploaded file exceeds the maximum size")
				return
			}
			slog.Error("failed to store uploaded file", "error", err)
			response.ErrInternal(w, "Error updating attribute", err, h.dev)
			return
		}
	}

	updated, err := h.repo.UpdateOwned(r.Context(), id, identity.UserID, attribute.Update{
		Key:       strings.TrimSpace(in.Key),
		Value:     in.Value,
		WhereUsed: in.WhereUsed,
		File:      toFileRef(stored),
	})
	if err != nil {
		if stored != nil {
			h.removeStored(stored.Path)
		}
		if errors.Is(err, attribute.ErrAttributeNotFound) {
			response.Err(w, http.StatusNotFound, "Attribute not found")
			return
		}
		slog.Error("failed to update attribute", "error", err, "id", id)
		response.ErrInternal(w, "Error updating attribute", err, h.dev)
		return
	}

	// Replacement uploaded: drop the previous attachment, best effort.
	if stored != nil && existing.File != nil {
		h.removeStored(existing.File.Path)
	}

	response.JSON(w, http.StatusOK, toAttributeResponse(updated))
}

// Delete handles DELETE /api/attributes/{id}.
func (h *AttributeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	existing, err := h.repo.GetOwned(r.Context(), id, identity.UserID)
	if err != nil {
		if errors.Is(err, attribute.ErrAttributeNotFound) {
			response.Err(w, http.StatusNotFound, "Attribute not found")
			return
		}
		slog.Error("failed to fetch attribute", "error", err, "id", id)
		response.ErrInternal(w, "Error deleting attribute", err, h.dev)
		return
	}

	if err := h.repo.DeleteOwned(r.Context(), id, identity.UserID); err != nil {
		if errors.Is(err, attribute.ErrAttributeNotFound) {
			response.Err(w, http.StatusNotFound, "Attribute not found")
			return
		}
		slog.Error("failed to delete attribute", "error", err, "id", id)
		response.ErrInternal(w, "Error deleting attribute", err, h.dev)
		return
	}

	if existing.File != nil {
		h.removeStored(existing.File.Path)
	}

	response.NoContent(w)
}

// removeStored deletes a stored file, logging instead of failing the request.
func (h *AttributeHandler) removeStored(path string) {
	if err := h.uploads.Remove(path); err != nil {
		slog.Warn("failed to remove stored file", "error", err, "path", path)
	}
}

func toFileRef(f *upload.StoredFile) *attribute.FileRef {
	if f == nil {
		return nil
	}
	return &attribute.FileRef{
		Path: f.Path,
		Name: f.Name,
		Type: f.Category,
		Size: f.Size,
	}
}
