package investments

import (
	"context"

	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

// System defines the public contract for ledger operations. Both operations
// are permission-gated in the system itself, not only at the HTTP boundary.
type System interface {
	// Append adds a record to an investor's ledger. Requires the
	// add_investment capability; a non-Owner may only append to their own
	// ledger.
	Append(ctx context.Context, p rbac.Principal, cmd AppendCommand) (*Record, error)

	// ListFor returns an investor's records in insertion order,
	// most-recent-first. A non-Owner needs view_portfolio for their own
	// ledger or view_investment_summary for any ledger.
	ListFor(ctx context.Context, p rbac.Principal, investorID string) ([]Record, error)
}

// Store is the persistence backend for ledger records. Append-only:
// implementations expose no update or delete.
type Store interface {
	Insert(ctx context.Context, record *Record) error
	ListFor(ctx context.Context, investorID string) ([]Record, error)
}
