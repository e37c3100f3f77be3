// Package api assembles the API with all domain systems, route registration,
// and the request middleware stack.
package api

import (
	"net/http"

	"github.com/sahilkapur/ledgerdesk/internal/config"
	"github.com/sahilkapur/ledgerdesk/internal/infrastructure"
	"github.com/sahilkapur/ledgerdesk/pkg/middleware"
)

// New creates the API handler with all domain routes mounted and the
// middleware stack applied. Every API request passes through logging, CORS,
// and caller principal extraction.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) http.Handler {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	stack := middleware.NewStack()
	stack.Use(middleware.Logger(runtime.Logger))
	stack.Use(middleware.CORS(&cfg.API.CORS))
	stack.Use(runtime.Authenticator.Middleware())

	return stack.Apply(mux)
}
