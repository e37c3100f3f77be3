// Package workflow implements the document workflow state machine for
// LedgerDesk. Every transition is a named, role-gated, atomic
// check-then-apply against the document entity store; the engine itself
// holds no state of its own.
package workflow

import (
	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

// Event names a workflow transition.
type Event string

// Workflow events.
const (
	// EventVerify finalizes the extracted record during the verification
	// stage. A data transition: the document stays pending, with its
	// extracted fields replaced and audit notes set.
	EventVerify Event = "verify"
	// EventFlag marks a mismatch found during verification and removes the
	// document from the active approval queue.
	EventFlag Event = "flag"
	// EventApprove approves a verified filing. Terminal: the record freezes.
	EventApprove Event = "approve"
	// EventSendBack resets a verified document for re-verification.
	EventSendBack Event = "send_back"
	// EventResubmit returns a flagged document to the pending queue,
	// optionally with corrected extraction data.
	EventResubmit Event = "resubmit"
)

// Transition describes one legal edge of the state machine.
type Transition struct {
	From       documents.Status
	To         documents.Status
	Capability rbac.Permission

	// RequiresExtraction restricts the transition to documents whose
	// extracted record has been attached (the "verified" precondition of
	// the approval stage).
	RequiresExtraction bool
}

// transitions is the complete edge set. Approved appears in no From value:
// it is terminal, and every event against an approved document fails the
// status gate regardless of role.
var transitions = map[Event]Transition{
	EventVerify: {
		From:       documents.StatusPending,
		To:         documents.StatusPending,
		Capability: rbac.PermVerifyFiling,
	},
	EventFlag: {
		From:       documents.StatusPending,
		To:         documents.StatusFlagged,
		Capability: rbac.PermVerifyFiling,
	},
	EventApprove: {
		From:               documents.StatusPending,
		To:                 documents.StatusApproved,
		Capability:         rbac.PermApproveFiling,
		RequiresExtraction: true,
	},
	EventSendBack: {
		From:               documents.StatusPending,
		To:                 documents.StatusFlagged,
		Capability:         rbac.PermApproveFiling,
		RequiresExtraction: true,
	},
	EventResubmit: {
		From:       documents.StatusFlagged,
		To:         documents.StatusPending,
		Capability: rbac.PermResubmitDocuments,
	},
}

// Lookup returns the transition for event, or ErrUnknownEvent.
func Lookup(event Event) (Transition, error) {
	t, ok := transitions[event]
	if !ok {
		return Transition{}, unknownEvent(event)
	}
	return t, nil
}
