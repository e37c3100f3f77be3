package investments

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sahilkapur/ledgerdesk/internal/rbac"
	"github.com/sahilkapur/ledgerdesk/pkg/handlers"
	"github.com/sahilkapur/ledgerdesk/pkg/routes"
)

// Handler provides HTTP endpoints for the investment ledger.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler over the ledger system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "investments"),
	}
}

// Routes returns the ledger route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/investments",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Append},
		},
	}
}

// List returns a ledger's records. The investor_id query parameter defaults
// to the caller's own identity.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	investorID := r.URL.Query().Get("investor_id")
	if investorID == "" {
		investorID = p.Identity
	}

	records, err := h.sys.ListFor(r.Context(), p, investorID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, records)
}

// Append adds a record to a ledger. An empty investor_id in the body targets
// the caller's own ledger.
func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	var cmd AppendCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, validationError("malformed request body"))
		return
	}
	if cmd.InvestorID == "" {
		cmd.InvestorID = p.Identity
	}

	record, err := h.sys.Append(r.Context(), p, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, record)
}
