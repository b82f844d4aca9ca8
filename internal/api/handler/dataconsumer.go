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
	"github.com/proid/proid/internal/dataconsumer"
)

type dataConsumerRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	IsPrivate      bool    `json:"is_private"`
	IsAdminDefined *bool   `json:"is_admin_defined"`
}

type dataConsumerResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	CreatedBy      string  `json:"created_by"`
	IsAdminDefined bool    `json:"is_admin_defined"`
	IsPrivate      bool    `json:"is_private"`
	Source         string  `json:"source"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toDataConsumerResponse(d *dataconsumer.DataConsumer) dataConsumerResponse {
	return dataConsumerResponse{
		ID:             d.ID.String(),
		Name:           d.Name,
		Description:    d.Description,
		CreatedBy:      d.CreatedBy.String(),
		IsAdminDefined: d.IsAdminDefined,
		IsPrivate:      d.IsPrivate,
		Source:         d.Source(),
		CreatedAt:      d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      d.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// DataConsumerHandler handles data-consumer CRUD endpoints.
type DataConsumerHandler struct {
	repo dataconsumer.Repository
	dev  bool
}

// NewDataConsumerHandler creates a new DataConsumerHandler.
func NewDataConsumerHandler(repo dataconsumer.Repository, dev bool) *DataConsumerHandler {
	return &DataConsumerHandler{repo: repo, dev: dev}
}

// List handles GET /api/data-consumers, optionally filtered by ?search=.
func (h *DataConsumerHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	search := strings.TrimSpace(r.URL.Query().Get("search"))

	consumers, err := h.repo.ListVisible(r.Context(), identity.UserID, search)
	if err != nil {
		slog.Error("failed to list data consumers", "error", err)
		response.ErrInternal(w, "Error fetching data consumers", err, h.dev)
		return
	}

	items := make([]dataConsumerResponse, 0, len(consumers))
	for i := range consumers {
		items = append(items, toDataConsumerResponse(&consumers[i]))
	}

	response.JSON(w, http.StatusOK, items)
}

// GetByID handles GET /api/data-consumers/{id}.
func (h *DataConsumerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	d, err := h.repo.GetVisible(r.Context(), id, identity.UserID, identity.IsAdmin)
	if err != nil {
		if errors.Is(err, dataconsumer.ErrConsumerNotFound) {
			response.Err(w, http.StatusNotFound, "Data consumer not found")
			return
		}
		slog.Error("failed to fetch data consumer", "error", err, "id", id)
		response.ErrInternal(w, "Error fetching data consumer", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, toDataConsumerResponse(d))
}

// Create handles POST /api/data-consumers. Records created by admins are
// marked admin-defined and become visible to everyone.
func (h *DataConsumerHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req dataConsumerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	fieldErrors := validation.ValidateDataConsumerRequest(validation.DataConsumerRequest{Name: req.Name})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	d := &dataconsumer.DataConsumer{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		CreatedBy:      identity.UserID,
		IsAdminDefined: identity.IsAdmin,
		IsPrivate:      req.IsPrivate,
	}

	if err := h.repo.Create(r.Context(), d); err != nil {
		if errors.Is(err, dataconsumer.ErrDuplicateName) {
			response.Err(w, http.StatusConflict, "Data consumer with this name already exists")
			return
		}
		slog.Error("failed to create data consumer", "error", err)
		response.ErrInternal(w, "Error creating data consumer", err, h.dev)
		return
	}

	response.JSON(w, http.StatusCreated, toDataConsumerResponse(d))
}

// Update handles PUT /api/data-consumers/{id}. Only the creator or an admin
// may mutate a record; only admins may change the admin-defined flag.
func (h *DataConsumerHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req dataConsumerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	fieldErrors := validation.ValidateDataConsumerRequest(validation.DataConsumerRequest{Name: req.Name})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "Input validation failed", fieldErrors)
		return
	}

	upd := dataconsumer.Update{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	}
	if identity.IsAdmin {
		upd.IsAdminDefined = req.IsAdminDefined
	}

	d, err := h.repo.UpdateMutable(r.Context(), id, identity.UserID, identity.IsAdmin, upd)
	if err != nil {
		if errors.Is(err, dataconsumer.ErrConsumerNotFound) {
			response.Err(w, http.StatusNotFound, "Data consumer not found")
			return
		}
		if errors.Is(err, dataconsumer.ErrDuplicateName) {
			response.Err(w, http.StatusConflict, "Data consumer with this name already exists")
			return
		}
		slog.Error("failed to update data consumer", "error", err, "id", id)
		response.ErrInternal(w, "Error updating data consumer", err, h.dev)
		return
	}

	response.JSON(w, http.StatusOK, toDataConsumerResponse(d))
}

// Delete handles DELETE /api/data-consumers/{id}.
func (h *DataConsumerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	if err := h.repo.DeleteMutable(r.Context(), id, identity.UserID, identity.IsAdmin); err != nil {
		if errors.Is(err, dataconsumer.ErrConsumerNotFound) {
			response.Err(w, http.StatusNotFound, "Data consumer not found")
			return
		}
		slog.Error("failed to delete data consumer", "error", err, "id", id)
		response.ErrInternal(w, "Error deleting data consumer", err, h.dev)
		return
	}

	response.NoContent(w)
}
