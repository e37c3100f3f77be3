// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, authentication)
// that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sahilkapur/ledgerdesk/internal/config"
	"github.com/sahilkapur/ledgerdesk/pkg/database"
	"github.com/sahilkapur/ledgerdesk/pkg/lifecycle"
	"github.com/sahilkapur/ledgerdesk/pkg/middleware"
	"github.com/sahilkapur/ledgerdesk/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when the service runs on in-memory stores.
type Infrastructure struct {
	Lifecycle     *lifecycle.Coordinator
	Logger        *slog.Logger
	Database      database.System
	Storage       storage.System
	Authenticator *middleware.Authenticator
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// The context bounds OIDC issuer discovery when auth is enabled.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var db database.System
	if cfg.Database.Enabled {
		d, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		db = d
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	auth, err := middleware.NewAuthenticator(ctx, &cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("authenticator init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle:     lc,
		Logger:        logger,
		Database:      db,
		Storage:       store,
		Authenticator: auth,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
