// Package documents implements the document domain for LedgerDesk.
// It owns the canonical state of every financial document moving through
// the capture, verification, and approval stages, and enforces the
// field-level invariants that must hold across every mutation.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Tag classifies a document at creation time and is immutable thereafter.
type Tag string

// Document tags.
const (
	TagPurchase Tag = "purchase"
	TagSales    Tag = "sales"
	TagExpense  Tag = "expense"
	TagImport   Tag = "import"
)

// Tags lists every valid document tag.
var Tags = []Tag{TagPurchase, TagSales, TagExpense, TagImport}

// Valid reports whether t is a known document tag.
func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

// Status is a document's position in the workflow state machine.
type Status string

// Workflow states. Approved is terminal: no outgoing transitions exist.
const (
	StatusPending  Status = "pending"
	StatusFlagged  Status = "flagged"
	StatusApproved Status = "approved"
)

// Valid reports whether s is a known workflow status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusFlagged || s == StatusApproved
}

// Document is a financial document moving through the workflow.
// ApprovedBy and ApprovedAt are present if and only if Status is approved.
// Extracted, once set, is never deleted; it may only be replaced wholesale
// while the document is not approved.
type Document struct {
	ID         uuid.UUID        `json:"id"`
	Filename   string           `json:"filename"`
	StorageKey string           `json:"storage_key"`
	Tag        Tag              `json:"tag"`
	Status     Status           `json:"status"`
	PageCount  *int             `json:"page_count"`
	UploadedBy string           `json:"uploaded_by"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Extracted  *ExtractedFields `json:"extracted,omitempty"`
	AuditNotes string           `json:"audit_notes,omitempty"`
	ApprovedBy *string          `json:"approved_by,omitempty"`
	ApprovedAt *time.Time       `json:"approved_at,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Clone returns a deep copy of the document. Stores hand out clones so no
// mutable alias of canonical state ever escapes.
func (d *Document) Clone() *Document {
	c := *d

	if d.Extracted != nil {
		c.Extracted = d.Extracted.Clone()
	}
	if d.ApprovedBy != nil {
		v := *d.ApprovedBy
		c.ApprovedBy = &v
	}
	if d.ApprovedAt != nil {
		v := *d.ApprovedAt
		c.ApprovedAt = &v
	}
	if d.PageCount != nil {
		v := *d.PageCount
		c.PageCount = &v
	}

	return &c
}

// ExtractedFields is the structured record an external extraction producer
// derives from a document's contents. The core accepts only complete
// replacement records and treats Amount as authoritative input data.
type ExtractedFields struct {
	VendorName string     `json:"vendor_name"`
	TaxID      string     `json:"tax_id"`
	Amount     float64    `json:"amount"`
	Date       string     `json:"date"`
	InvoiceNo  string     `json:"invoice_no"`
	LineItems  []LineItem `json:"line_items"`
}

// Clone returns a deep copy of the extracted fields.
func (f *ExtractedFields) Clone() *ExtractedFields {
	c := *f
	c.LineItems = make([]LineItem, len(f.LineItems))
	copy(c.LineItems, f.LineItems)
	return &c
}

// Validate checks the record for malformed input. Line-item amounts are
// computed by the extraction producer and are not recomputed here.
func (f *ExtractedFields) Validate() error {
	if f.VendorName == "" {
		return validationError("vendor_name is required")
	}
	if f.InvoiceNo == "" {
		return validationError("invoice_no is required")
	}
	if f.Amount < 0 {
		return validationError("amount must be non-negative")
	}
	for i, item := range f.LineItems {
		if item.Description == "" {
			return validationError("line_items[%d]: description is required", i)
		}
		if item.Quantity < 0 || item.Rate < 0 || item.Amount < 0 {
			return validationError("line_items[%d]: negative values not allowed", i)
		}
	}
	return nil
}

// LineItem is one row of an invoice as extracted. Amount is quantity times
// rate, computed upstream.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// CreateCommand carries the data needed to register a new document.
// Data holds the raw file bytes handed to blob storage; the store itself
// keeps only the resulting opaque key.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Tag         Tag
	UploadedBy  string
	PageCount   *int
}

// newID allocates a time-ordered, collision-resistant identifier.
func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
