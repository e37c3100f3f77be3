package workflow

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
	"github.com/sahilkapur/ledgerdesk/pkg/handlers"
	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
	"github.com/sahilkapur/ledgerdesk/pkg/routes"
)

// Handler provides HTTP endpoints for the verification and approval stages.
type Handler struct {
	engine     *Engine
	docs       documents.System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler over the given engine and document system.
func NewHandler(
	engine *Engine,
	docs documents.System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		engine:     engine,
		docs:       docs,
		logger:     logger.With("handler", "workflow"),
		pagination: pagination,
	}
}

// Routes returns the audit and approval route groups.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix: "/audit",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/queue", Handler: h.AuditQueue},
				{Method: "POST", Pattern: "/{id}/verify", Handler: h.event(EventVerify)},
				{Method: "POST", Pattern: "/{id}/flag", Handler: h.event(EventFlag)},
			},
		},
		{
			Prefix: "/approvals",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/pending", Handler: h.ApprovalQueue},
				{Method: "POST", Pattern: "/{id}/approve", Handler: h.event(EventApprove)},
				{Method: "POST", Pattern: "/{id}/send-back", Handler: h.event(EventSendBack)},
				{Method: "POST", Pattern: "/{id}/resubmit", Handler: h.event(EventResubmit)},
			},
		},
	}
}

// AuditQueue lists pending documents awaiting verification.
func (h *Handler) AuditQueue(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r, documents.Filters{Status: statusPtr(documents.StatusPending)})
}

// ApprovalQueue lists verified documents awaiting approval: pending
// documents with an extraction record attached.
func (h *Handler) ApprovalQueue(w http.ResponseWriter, r *http.Request) {
	verified := true
	h.queue(w, r, documents.Filters{
		Status:        statusPtr(documents.StatusPending),
		HasExtraction: &verified,
	})
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request, filters documents.Filters) {
	if _, err := rbac.PrincipalFromContext(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.docs.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// event returns a handler that applies the given workflow event to the
// document named by the id path parameter.
func (h *Handler) event(event Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := rbac.PrincipalFromContext(r.Context())
		if err != nil {
			handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrValidation)
			return
		}

		var cmd Command
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
				handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrValidation)
				return
			}
		}

		doc, err := h.engine.Apply(r.Context(), p, id, event, cmd)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}

		handlers.RespondJSON(w, http.StatusOK, doc)
	}
}

func statusPtr(s documents.Status) *documents.Status {
	return &s
}
