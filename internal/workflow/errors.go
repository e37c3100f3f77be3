package workflow

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

// ErrUnknownEvent indicates a requested event outside the transition table.
var ErrUnknownEvent = errors.New("unknown workflow event")

func unknownEvent(event Event) error {
	return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
}

// MapHTTPStatus maps workflow errors, including wrapped authorization and
// document domain errors, to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownEvent) {
		return http.StatusBadRequest
	}
	if errors.Is(err, rbac.ErrUnknownRole) || errors.Is(err, rbac.ErrUnauthorized) {
		return rbac.MapHTTPStatus(err)
	}
	return documents.MapHTTPStatus(err)
}
