// Package analytics computes the practice-wide financial overview from the
// approved document set and the approval queue.
package analytics

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
)

// gstRate is the standard GST rate applied to tax-inclusive document amounts.
const gstRate = 0.18

// Overview aggregates approved documents into the dashboard figures.
// Amounts are treated as GST-inclusive: the collected and paid figures are
// the tax component of approved sales and purchase-side totals, counted only
// for documents whose extraction carries a GST number.
type Overview struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalExpenses    float64 `json:"total_expenses"`
	GSTCollected     float64 `json:"gst_collected"`
	GSTPaid          float64 `json:"gst_paid"`
	NetProfit        float64 `json:"net_profit"`
	PendingApprovals int     `json:"pending_approvals"`
}

// System computes analytics overviews.
type System interface {
	// Overview returns the current figures. Requires view_analytics or
	// view_investment_summary.
	Overview(ctx context.Context, p rbac.Principal) (*Overview, error)
}

type service struct {
	registry   *rbac.Registry
	docs       documents.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the analytics system over the document system.
func New(
	registry *rbac.Registry,
	docs documents.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &service{
		registry:   registry,
		docs:       docs,
		logger:     logger.With("system", "analytics"),
		pagination: pagination,
	}
}

func (s *service) Overview(ctx context.Context, p rbac.Principal) (*Overview, error) {
	if err := s.registry.AuthorizeAny(p.Role,
		rbac.PermViewAnalytics,
		rbac.PermViewInvestmentSummary,
	); err != nil {
		return nil, err
	}

	var (
		approved []documents.Document
		pending  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.collect(gctx, documents.Filters{
			Status: statusPtr(documents.StatusApproved),
		})
		if err != nil {
			return err
		}
		approved = docs
		return nil
	})
	g.Go(func() error {
		verified := true
		result, err := s.docs.List(gctx,
			pagination.PageRequest{Page: 1, PageSize: 1},
			documents.Filters{
				Status:        statusPtr(documents.StatusPending),
				HasExtraction: &verified,
			},
		)
		if err != nil {
			return err
		}
		pending = result.Total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := tally(approved)
	overview.PendingApprovals = pending
	return overview, nil
}

// collect walks every page of documents matching filters.
func (s *service) collect(ctx context.Context, filters documents.Filters) ([]documents.Document, error) {
	var all []documents.Document

	page := pagination.PageRequest{Page: 1, PageSize: s.pagination.MaxPageSize}
	page.Normalize(s.pagination)

	for {
		result, err := s.docs.List(ctx, page, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Data...)
		if page.Page >= result.TotalPages || len(result.Data) == 0 {
			return all, nil
		}
		page.Page++
	}
}

func tally(approved []documents.Document) *Overview {
	var o Overview

	for _, d := range approved {
		if d.Extracted == nil {
			continue
		}
		amount := d.Extracted.Amount
		taxed := d.Extracted.TaxID != ""

		switch d.Tag {
		case documents.TagSales:
			o.TotalRevenue += amount
			if taxed {
				o.GSTCollected += taxComponent(amount)
			}
		case documents.TagPurchase, documents.TagExpense, documents.TagImport:
			o.TotalExpenses += amount
			if taxed {
				o.GSTPaid += taxComponent(amount)
			}
		}
	}

	o.NetProfit = o.TotalRevenue - o.TotalExpenses
	return &o
}

// taxComponent extracts the GST portion of a tax-inclusive amount.
func taxComponent(amount float64) float64 {
	return amount * gstRate / (1 + gstRate)
}

func statusPtr(s documents.Status) *documents.Status {
	return &s
}
