package rbac

import "fmt"

// Registry holds the role-to-capability grant table. The table is fixed at
// construction; reads are safe for concurrent use.
type Registry struct {
	grants map[Role][]Permission
}

// defaultGrants is the production grant table. Owner holds the wildcard and
// nothing else: every Owner authorization passes through PermAll.
var defaultGrants = map[Role][]Permission{
	RoleOwner: {PermAll},
	RolePracticeHead: {
		PermViewAllClients,
		PermApproveFiling,
		PermViewInvestmentSummary,
	},
	RoleSeniorCA: {
		PermViewAssignedClients,
		PermApproveFiling,
	},
	RoleArticle: {
		PermUploadDocuments,
		PermResubmitDocuments,
	},
	RoleAudit: {
		PermUploadAuditDocs,
		PermVerifyFiling,
		PermResubmitDocuments,
	},
	RoleInvestor: {
		PermViewPortfolio,
		PermAddInvestment,
		PermUpdatePortfolio,
		PermViewAnalytics,
		PermUploadBrokerStatement,
	},
}

// NewRegistry creates a registry with the production grant table.
func NewRegistry() *Registry {
	return &Registry{grants: defaultGrants}
}

// Authorize reports whether role may perform action. It returns nil when
// allowed, ErrUnauthorized when the role lacks the capability, and
// ErrUnknownRole when the role is outside the closed set. The Owner wildcard
// is checked first and short-circuits.
func (r *Registry) Authorize(role Role, action Permission) error {
	granted, ok := r.grants[role]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	for _, p := range granted {
		if p == PermAll {
			return nil
		}
		if p == action {
			return nil
		}
	}

	return fmt.Errorf("%w: %s may not %s", ErrUnauthorized, role, action)
}

// AuthorizeAny reports whether role holds at least one of the given
// capabilities. An unknown role fails immediately.
func (r *Registry) AuthorizeAny(role Role, actions ...Permission) error {
	var err error
	for _, action := range actions {
		err = r.Authorize(role, action)
		if err == nil {
			return nil
		}
		if IsUnknownRole(err) {
			return err
		}
	}
	return err
}

// Permissions returns the capability tokens granted to role.
func (r *Registry) Permissions(role Role) ([]Permission, error) {
	granted, ok := r.grants[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	result := make([]Permission, len(granted))
	copy(result, granted)
	return result, nil
}
