package rbac

import (
	"errors"
	"net/http"
)

// Authorization errors. A denial is never a silent false: callers can always
// distinguish a role outside the closed set from a role lacking a capability.
var (
	ErrUnknownRole  = errors.New("unknown role")
	ErrUnauthorized = errors.New("unauthorized")
)

var errMissingAction = errors.New("action query parameter is required")

// IsUnknownRole reports whether err denotes a role outside the closed set.
func IsUnknownRole(err error) bool {
	return errors.Is(err, ErrUnknownRole)
}

// MapHTTPStatus maps authorization errors to HTTP status codes.
// An unknown role is malformed input, not a permission denial.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownRole) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
