package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

// Command carries the optional data payload of a transition request.
// Fields is the complete replacement extraction record for verify and
// resubmit; Notes is the audit annotation for verify, flag, and send_back.
type Command struct {
	Fields *documents.ExtractedFields `json:"fields,omitempty"`
	Notes  string                     `json:"notes,omitempty"`
}

// Engine validates and applies workflow transitions. It is a pure function
// of (document snapshot, event, principal): the permission gate runs first,
// then the status gate and mutation execute inside the store's per-document
// critical section, so a rejection at any step leaves the document unchanged.
type Engine struct {
	registry *rbac.Registry
	docs     documents.System
	logger   *slog.Logger
}

// NewEngine creates a workflow engine over the given registry and document system.
func NewEngine(registry *rbac.Registry, docs documents.System, logger *slog.Logger) *Engine {
	return &Engine{
		registry: registry,
		docs:     docs,
		logger:   logger.With("system", "workflow"),
	}
}

// Apply executes event against the document as the given principal.
// Owner bypasses the permission gate by wildcard, never the status gate:
// an approved document rejects every event for every role.
func (e *Engine) Apply(
	ctx context.Context,
	p rbac.Principal,
	id uuid.UUID,
	event Event,
	cmd Command,
) (*documents.Document, error) {
	t, err := Lookup(event)
	if err != nil {
		return nil, err
	}

	if err := e.registry.Authorize(p.Role, t.Capability); err != nil {
		return nil, err
	}

	if cmd.Fields != nil {
		if err := cmd.Fields.Validate(); err != nil {
			return nil, err
		}
	}
	if requiresFields(event) && cmd.Fields == nil {
		return nil, fmt.Errorf("%w: %s requires a complete extraction record",
			documents.ErrValidation, event)
	}

	doc, err := e.docs.Apply(ctx, id, func(d *documents.Document) error {
		if d.Status != t.From {
			return fmt.Errorf("%w: %s not legal from status %q",
				documents.ErrInvalidState, event, d.Status)
		}
		if t.RequiresExtraction && d.Extracted == nil {
			return fmt.Errorf("%w: %s requires an attached extraction record",
				documents.ErrInvalidState, event)
		}

		e.mutate(d, t, p, event, cmd)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("transition applied",
		"event", event,
		"document", id,
		"status", doc.Status,
		"role", p.Role,
		"identity", p.Identity,
	)
	return doc, nil
}

func (e *Engine) mutate(
	d *documents.Document,
	t Transition,
	p rbac.Principal,
	event Event,
	cmd Command,
) {
	now := time.Now().UTC()
	d.Status = t.To
	d.UpdatedAt = now

	switch event {
	case EventVerify:
		d.Extracted = cmd.Fields.Clone()
		d.AuditNotes = cmd.Notes
	case EventFlag:
		d.AuditNotes = cmd.Notes
	case EventApprove:
		identity := p.Identity
		d.ApprovedBy = &identity
		d.ApprovedAt = &now
	case EventSendBack:
		if cmd.Notes != "" {
			d.AuditNotes = cmd.Notes
		}
	case EventResubmit:
		if cmd.Fields != nil {
			d.Extracted = cmd.Fields.Clone()
		}
	}
}

// requiresFields reports whether event carries a mandatory extraction payload.
func requiresFields(event Event) bool {
	return event == EventVerify
}
