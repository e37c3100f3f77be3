package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sahilkapur/ledgerdesk/internal/api"
	"github.com/sahilkapur/ledgerdesk/internal/config"
	"github.com/sahilkapur/ledgerdesk/internal/infrastructure"
)

type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	infra, err := infrastructure.New(initCtx, cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mountAPI(mux, cfg.API.BasePath, api.New(cfg, infra))
	registerNative(mux, infra)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
	)

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, mux, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}

// mountAPI mounts the API handler under basePath, stripping the prefix so
// domain route patterns stay path-rooted.
func mountAPI(mux *http.ServeMux, basePath string, handler http.Handler) {
	base := strings.TrimSuffix(basePath, "/")
	mux.Handle(base+"/", http.StripPrefix(base, handler))
}

// registerNative adds health endpoints outside the API middleware stack.
func registerNative(mux *http.ServeMux, infra *infrastructure.Infrastructure) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
}
