package api

import (
	"github.com/sahilkapur/ledgerdesk/internal/analytics"
	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/investments"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
	"github.com/sahilkapur/ledgerdesk/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Registry    *rbac.Registry
	Documents   documents.System
	Workflow    *workflow.Engine
	Investments investments.System
	Analytics   analytics.System
}

// NewDomain creates all domain systems from the API runtime. Store backends
// are selected by the database config: Postgres when enabled, otherwise the
// in-memory stores that serialize mutations per entity.
func NewDomain(runtime *Runtime) *Domain {
	registry := rbac.NewRegistry()

	var docStore documents.Store
	var recordStore investments.Store
	if runtime.Database != nil {
		docStore = documents.NewPostgresStore(runtime.Database.Connection())
		recordStore = investments.NewPostgresStore(runtime.Database.Connection())
	} else {
		docStore = documents.NewMemoryStore()
		recordStore = investments.NewMemoryStore()
	}

	docs := documents.New(
		docStore,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	engine := workflow.NewEngine(registry, docs, runtime.Logger)

	ledger := investments.New(recordStore, registry, runtime.Logger)

	overview := analytics.New(registry, docs, runtime.Logger, runtime.Pagination)

	return &Domain{
		Registry:    registry,
		Documents:   docs,
		Workflow:    engine,
		Investments: ledger,
		Analytics:   overview,
	}
}
