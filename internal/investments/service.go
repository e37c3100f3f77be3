package investments

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

type service struct {
	store    Store
	registry *rbac.Registry
	logger   *slog.Logger
}

// New creates the ledger system over the given store and capability registry.
func New(store Store, registry *rbac.Registry, logger *slog.Logger) System {
	return &service{
		store:    store,
		registry: registry,
		logger:   logger.With("system", "investments"),
	}
}

func (s *service) Append(ctx context.Context, p rbac.Principal, cmd AppendCommand) (*Record, error) {
	if err := s.registry.Authorize(p.Role, rbac.PermAddInvestment); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !p.IsOwner() && cmd.InvestorID != p.Identity {
		return nil, rbac.ErrUnauthorized
	}

	record := &Record{
		ID:              newID(),
		InvestorID:      cmd.InvestorID,
		Date:            cmd.Date,
		Type:            cmd.Type,
		Amount:          cmd.Amount,
		Description:     cmd.Description,
		BrokerStatement: cmd.BrokerStatement,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("record appended",
		"record", record.ID,
		"investor", record.InvestorID,
		"type", record.Type,
	)
	return record, nil
}

func (s *service) ListFor(ctx context.Context, p rbac.Principal, investorID string) ([]Record, error) {
	if investorID == "" {
		return nil, validationError("investor_id is required")
	}
	if err := s.authorizeRead(p, investorID); err != nil {
		return nil, err
	}
	return s.store.ListFor(ctx, investorID)
}

// authorizeRead grants Owner everything, view_investment_summary holders any
// ledger, and view_portfolio holders their own ledger only.
func (s *service) authorizeRead(p rbac.Principal, investorID string) error {
	if err := s.registry.Authorize(p.Role, rbac.PermViewInvestmentSummary); err == nil {
		return nil
	} else if rbac.IsUnknownRole(err) {
		return err
	}

	if err := s.registry.Authorize(p.Role, rbac.PermViewPortfolio); err != nil {
		return err
	}
	if investorID != p.Identity {
		return rbac.ErrUnauthorized
	}
	return nil
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
