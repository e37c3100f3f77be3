package analytics

import (
	"log/slog"
	"net/http"

	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
	"github.com/sahilkapur/ledgerdesk/pkg/handlers"
	"github.com/sahilkapur/ledgerdesk/pkg/routes"
)

// Handler provides HTTP endpoints for analytics.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler over the analytics system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "analytics"),
	}
}

// Routes returns the analytics route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analytics",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/overview", Handler: h.Overview},
		},
	}
}

// Overview returns the practice-wide financial figures.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, rbac.MapHTTPStatus(err), err)
		return
	}

	overview, err := h.sys.Overview(r.Context(), p)
	if err != nil {
		handlers.RespondError(w, h.logger, mapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, overview)
}

func mapHTTPStatus(err error) int {
	if status := rbac.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return documents.MapHTTPStatus(err)
}
