package investments

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

// Domain errors for ledger operations.
var (
	ErrNotFound   = errors.New("investment record not found")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("record already exists")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MapHTTPStatus maps ledger errors, including wrapped authorization errors,
// to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, rbac.ErrUnknownRole) || errors.Is(err, rbac.ErrUnauthorized) {
		return rbac.MapHTTPStatus(err)
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
