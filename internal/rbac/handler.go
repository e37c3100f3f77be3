package rbac

import (
	"log/slog"
	"net/http"

	"github.com/sahilkapur/ledgerdesk/pkg/handlers"
	"github.com/sahilkapur/ledgerdesk/pkg/routes"
)

// Handler exposes authorization queries for UI-level feature gating.
// The presentation layer uses these to decide what controls to render;
// every mutating endpoint re-validates regardless of what was shown.
type Handler struct {
	registry *Registry
	logger   *slog.Logger
}

// NewHandler creates a Handler over the given registry.
func NewHandler(registry *Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger.With("handler", "rbac"),
	}
}

// Routes returns the route group definition for authorization endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/rbac",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/permissions", Handler: h.Permissions},
			{Method: "GET", Pattern: "/authorize", Handler: h.Authorize},
		},
	}
}

// Permissions returns the capability tokens granted to the caller's role.
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	perms, err := h.registry.Permissions(p.Role)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"role":        p.Role,
		"permissions": perms,
	})
}

// Authorize answers a single yes/no capability query for the caller's role.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	action := Permission(r.URL.Query().Get("action"))
	if action == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errMissingAction)
		return
	}

	err = h.registry.Authorize(p.Role, action)
	if err != nil && !IsUnknownRole(err) {
		handlers.RespondJSON(w, http.StatusOK, map[string]any{
			"role":       p.Role,
			"action":     action,
			"authorized": false,
		})
		return
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"role":       p.Role,
		"action":     action,
		"authorized": true,
	})
}
