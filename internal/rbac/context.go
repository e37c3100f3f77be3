package rbac

import (
	"context"
	"fmt"

	"github.com/sahilkapur/ledgerdesk/pkg/middleware"
)

// PrincipalFromContext resolves the authenticated caller placed on the
// request context by the auth middleware into a Principal. Fails with
// ErrUnknownRole when the presented role is outside the closed set.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	caller, ok := middleware.CallerFrom(ctx)
	if !ok {
		return Principal{}, fmt.Errorf("%w: no authenticated caller", ErrUnauthorized)
	}

	role := Role(caller.Role)
	if !role.Valid() {
		return Principal{}, fmt.Errorf("%w: %q", ErrUnknownRole, caller.Role)
	}

	return Principal{Identity: caller.Identity, Role: role}, nil
}
