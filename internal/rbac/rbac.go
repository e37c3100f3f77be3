// Package rbac implements role-based access control over a closed role set
// and atomic capability tokens. Authorization is an error-returning decision:
// a denial always says whether the role lacked the capability or was outside
// the closed set.
package rbac

// Role identifies a member of the closed role set.
type Role string

const (
	RoleOwner        Role = "owner"
	RolePracticeHead Role = "practice_head"
	RoleSeniorCA     Role = "senior_ca"
	RoleArticle      Role = "article"
	RoleAudit        Role = "audit"
	RoleInvestor     Role = "investor"
)

// Roles lists every member of the closed role set.
var Roles = []Role{
	RoleOwner,
	RolePracticeHead,
	RoleSeniorCA,
	RoleArticle,
	RoleAudit,
	RoleInvestor,
}

// Valid reports whether the role is in the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RolePracticeHead, RoleSeniorCA, RoleArticle, RoleAudit, RoleInvestor:
		return true
	}
	return false
}

// Permission is an atomic capability token. Tokens are opaque: no prefix
// matching, no hierarchy. The single wildcard PermAll is held by Owner alone.
type Permission string

const (
	PermAll Permission = "*"

	PermUploadDocuments       Permission = "upload_documents"
	PermUploadAuditDocs       Permission = "upload_audit_docs"
	PermVerifyFiling          Permission = "verify_filing"
	PermApproveFiling         Permission = "approve_filing"
	PermResubmitDocuments     Permission = "resubmit_documents"
	PermViewAllClients        Permission = "view_all_clients"
	PermViewAssignedClients   Permission = "view_assigned_clients"
	PermViewInvestmentSummary Permission = "view_investment_summary"
	PermViewPortfolio         Permission = "view_portfolio"
	PermAddInvestment         Permission = "add_investment"
	PermUpdatePortfolio       Permission = "update_portfolio"
	PermViewAnalytics         Permission = "view_analytics"
	PermUploadBrokerStatement Permission = "upload_broker_statement"
)

// Principal is an authenticated caller: an opaque identity paired with a
// role from the closed set. Authentication itself happens upstream.
type Principal struct {
	Identity string `json:"identity"`
	Role     Role   `json:"role"`
}

// IsOwner reports whether the principal holds the wildcard role.
func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}
