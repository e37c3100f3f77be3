package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)

	// AttachExtraction replaces the document's extracted fields wholesale.
	// Legal only while the document is pending or flagged.
	AttachExtraction(ctx context.Context, id uuid.UUID, fields ExtractedFields) (*Document, error)

	// SetAuditNotes records a free-text annotation. Legal in any
	// non-approved state.
	SetAuditNotes(ctx context.Context, id uuid.UUID, notes string) (*Document, error)

	// Apply runs fn against the document inside its per-document critical
	// section: fn observes current state, may reject, and its mutations
	// commit atomically. The workflow engine performs its check-then-apply
	// through this.
	Apply(ctx context.Context, id uuid.UUID, fn MutateFunc) (*Document, error)
}

// MutateFunc inspects and mutates a document in place. Returning an error
// aborts the mutation, leaving the document unchanged.
type MutateFunc func(*Document) error

// Store is the persistence backend for documents. Implementations must
// serialize mutations per document identity: two concurrent Update calls
// against the same id never interleave, and the loser observes the winner's
// committed state.
type Store interface {
	Insert(ctx context.Context, doc *Document) error
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)
	Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (*Document, error)
}
