package documents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/sahilkapur/ledgerdesk/internal/rbac"
	"github.com/sahilkapur/ledgerdesk/pkg/handlers"
	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
	"github.com/sahilkapur/ledgerdesk/pkg/routes"
	"github.com/sahilkapur/ledgerdesk/pkg/storage"
)

// Handler provides HTTP endpoints for document capture and queries.
type Handler struct {
	sys           System
	blobs         storage.System
	registry      *rbac.Registry
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, blob storage,
// permission registry, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	blobs storage.System,
	registry *rbac.Registry,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		blobs:         blobs,
		registry:      registry,
		logger:        logger.With("handler", "documents"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/file", Handler: h.Download},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/{id}/extraction", Handler: h.AttachExtraction},
			{Method: "POST", Pattern: "/{id}/notes", Handler: h.SetNotes},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.PrincipalFromContext(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single document by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.PrincipalFromContext(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Download streams the document's stored bytes by its opaque storage key.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.PrincipalFromContext(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.blobs.Download(r.Context(), doc.StorageKey)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(doc.StorageKey)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}

// Upload processes a multipart form upload containing a file and its tag.
// Page count is extracted automatically for PDF files using pdfcpu.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	if err := h.registry.AuthorizeAny(p.Role, rbac.PermUploadDocuments, rbac.PermUploadAuditDocs); err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	tag := Tag(r.FormValue("tag"))

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)
	pageCount := extractPDFPageCount(h.logger, data, contentType)

	cmd := CreateCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		Tag:         tag,
		UploadedBy:  p.Identity,
		PageCount:   pageCount,
	}

	doc, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// AttachExtraction accepts a complete extracted-fields record from the
// extraction producer and replaces the document's record wholesale.
func (h *Handler) AttachExtraction(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	if err := h.registry.AuthorizeAny(
		p.Role,
		rbac.PermVerifyFiling,
		rbac.PermUploadDocuments,
		rbac.PermUploadAuditDocs,
	); err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	var fields ExtractedFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	doc, err := h.sys.AttachExtraction(r.Context(), id, fields)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// SetNotes records a free-text audit annotation on a non-approved document.
func (h *Handler) SetNotes(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	if err := h.registry.Authorize(p.Role, rbac.PermVerifyFiling); err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	doc, err := h.sys.SetAuditNotes(r.Context(), id, body.Notes)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
