package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/api"
	"github.com/flightdeck-ai/flightdeck/internal/api/middleware"
	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/service"
	"github.com/go-chi/chi/v5"
)

// multipartMemoryLimit is how much of an upload is buffered in memory
// before spilling to disk.
const multipartMemoryLimit = 32 << 20

type DocumentService interface {
	List(ctx context.Context, filter service.DocumentFilter) ([]*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type IngestService interface {
	Upload(ctx context.Context, input service.UploadInput) (*domain.Document, error)
}

type DocumentHandler struct {
	svc    DocumentService
	ingest IngestService
}

func NewDocumentHandler(svc DocumentService, ingest IngestService) *DocumentHandler {
	return &DocumentHandler{svc: svc, ingest: ingest}
}

type DocumentResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	AircraftType string `json:"aircraftType,omitempty"`
	Version      string `json:"version,omitempty"`
	Notes        string `json:"notes,omitempty"`
	PageCount    int    `json:"pageCount"`
	Status       string `json:"status"`
	QueryCount   int64  `json:"queryCount"`
	UploadedBy   string `json:"uploadedBy,omitempty"`
	UploadDate   string `json:"uploadDate"`
	DeletedAt    string `json:"deletedAt,omitempty"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	resp := &DocumentResponse{
		ID:           d.ID,
		Name:         d.Name,
		Type:         string(d.Type),
		AircraftType: d.AircraftType,
		Version:      d.Version,
		Notes:        d.Notes,
		PageCount:    d.PageCount,
		Status:       string(d.Status),
		QueryCount:   d.QueryCount,
		UploadedBy:   d.UploadedBy,
		UploadDate:   d.UploadDate.Format(time.RFC3339),
	}
	if d.DeletedAt != nil {
		resp.DeletedAt = d.DeletedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.DocumentFilter{
		Type:     q.Get("type"),
		Aircraft: q.Get("aircraft"),
		Search:   q.Get("search"),
		Sort:     service.DocumentSort(q.Get("sort")),
	}

	docs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, documentToResponse(d))
	}
	api.JSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, documentToResponse(doc))
}

// Upload ingests a PDF posted as multipart form data. Metadata rides in
// the form fields next to the file part.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.HandleError(w, domain.ErrMissingFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	docType := domain.DocumentType(r.FormValue("type"))
	if docType == "" {
		docType = domain.DocumentTypeOther
	}

	doc, err := h.ingest.Upload(r.Context(), service.UploadInput{
		Name:         name,
		Type:         docType,
		AircraftType: r.FormValue("aircraftType"),
		Version:      r.FormValue("version"),
		Notes:        r.FormValue("notes"),
		FileName:     header.Filename,
		Data:         data,
		UploadedBy:   middleware.GetUserID(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, documentToResponse(doc))
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

func (h *DocumentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Restore(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"message": "document restored"})
}
