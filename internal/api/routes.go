package api

import (
	"net/http"

	"github.com/sahilkapur/ledgerdesk/internal/analytics"
	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/investments"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
	"github.com/sahilkapur/ledgerdesk/internal/workflow"
	"github.com/sahilkapur/ledgerdesk/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	docs := documents.NewHandler(
		domain.Documents,
		runtime.Storage,
		domain.Registry,
		runtime.Logger,
		runtime.Pagination,
		runtime.MaxUploadSize,
	)

	flow := workflow.NewHandler(
		domain.Workflow,
		domain.Documents,
		runtime.Logger,
		runtime.Pagination,
	)

	groups := []routes.Group{
		docs.Routes(),
		investments.NewHandler(domain.Investments, runtime.Logger).Routes(),
		analytics.NewHandler(domain.Analytics, runtime.Logger).Routes(),
		rbac.NewHandler(domain.Registry, runtime.Logger).Routes(),
	}
	groups = append(groups, flow.Routes()...)

	routes.Register(mux, groups...)
}
