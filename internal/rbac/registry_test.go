package rbac_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

var allPermissions = []rbac.Permission{
	rbac.PermUploadDocuments,
	rbac.PermUploadAuditDocs,
	rbac.PermVerifyFiling,
	rbac.PermApproveFiling,
	rbac.PermResubmitDocuments,
	rbac.PermViewAllClients,
	rbac.PermViewAssignedClients,
	rbac.PermViewInvestmentSummary,
	rbac.PermViewPortfolio,
	rbac.PermAddInvestment,
	rbac.PermUpdatePortfolio,
	rbac.PermViewAnalytics,
	rbac.PermUploadBrokerStatement,
}

func TestOwnerWildcard(t *testing.T) {
	registry := rbac.NewRegistry()

	for _, action := range allPermissions {
		if err := registry.Authorize(rbac.RoleOwner, action); err != nil {
			t.Errorf("owner denied %s: %v", action, err)
		}
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    rbac.Role
		action  rbac.Permission
		wantErr error
	}{
		{"article uploads", rbac.RoleArticle, rbac.PermUploadDocuments, nil},
		{"article resubmits", rbac.RoleArticle, rbac.PermResubmitDocuments, nil},
		{"article cannot verify", rbac.RoleArticle, rbac.PermVerifyFiling, rbac.ErrUnauthorized},
		{"article cannot approve", rbac.RoleArticle, rbac.PermApproveFiling, rbac.ErrUnauthorized},
		{"audit verifies", rbac.RoleAudit, rbac.PermVerifyFiling, nil},
		{"audit uploads audit docs", rbac.RoleAudit, rbac.PermUploadAuditDocs, nil},
		{"audit cannot approve", rbac.RoleAudit, rbac.PermApproveFiling, rbac.ErrUnauthorized},
		{"senior ca approves", rbac.RoleSeniorCA, rbac.PermApproveFiling, nil},
		{"senior ca cannot verify", rbac.RoleSeniorCA, rbac.PermVerifyFiling, rbac.ErrUnauthorized},
		{"practice head approves", rbac.RolePracticeHead, rbac.PermApproveFiling, nil},
		{"practice head views summary", rbac.RolePracticeHead, rbac.PermViewInvestmentSummary, nil},
		{"investor adds investment", rbac.RoleInvestor, rbac.PermAddInvestment, nil},
		{"investor views analytics", rbac.RoleInvestor, rbac.PermViewAnalytics, nil},
		{"investor cannot upload documents", rbac.RoleInvestor, rbac.PermUploadDocuments, rbac.ErrUnauthorized},
		{"unknown role", rbac.Role("superadmin"), rbac.PermUploadDocuments, rbac.ErrUnknownRole},
		{"empty role", rbac.Role(""), rbac.PermUploadDocuments, rbac.ErrUnknownRole},
	}

	registry := rbac.NewRegistry()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Authorize(tt.role, tt.action)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Authorize(%s, %s) = %v, want nil", tt.role, tt.action, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize(%s, %s) = %v, want %v", tt.role, tt.action, err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeAny(t *testing.T) {
	registry := rbac.NewRegistry()

	if err := registry.AuthorizeAny(rbac.RoleArticle, rbac.PermVerifyFiling, rbac.PermUploadDocuments); err != nil {
		t.Errorf("expected one matching capability to suffice: %v", err)
	}

	err := registry.AuthorizeAny(rbac.RoleArticle, rbac.PermVerifyFiling, rbac.PermApproveFiling)
	if !errors.Is(err, rbac.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	err = registry.AuthorizeAny(rbac.Role("ghost"), rbac.PermVerifyFiling, rbac.PermUploadDocuments)
	if !errors.Is(err, rbac.ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestPermissions(t *testing.T) {
	registry := rbac.NewRegistry()

	perms, err := registry.Permissions(rbac.RoleAudit)
	if err != nil {
		t.Fatalf("Permissions failed: %v", err)
	}

	want := []rbac.Permission{
		rbac.PermUploadAuditDocs,
		rbac.PermVerifyFiling,
		rbac.PermResubmitDocuments,
	}
	for _, p := range want {
		if !slices.Contains(perms, p) {
			t.Errorf("audit grants missing %s", p)
		}
	}
	if len(perms) != len(want) {
		t.Errorf("audit grants = %v, want %v", perms, want)
	}

	if _, err := registry.Permissions(rbac.Role("ghost")); !errors.Is(err, rbac.ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range rbac.Roles {
		if !role.Valid() {
			t.Errorf("%s should be valid", role)
		}
	}
	if rbac.Role("admin").Valid() {
		t.Error("admin should not be a valid role")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	if got := rbac.MapHTTPStatus(rbac.ErrUnknownRole); got != 400 {
		t.Errorf("unknown role status = %d, want 400", got)
	}
	if got := rbac.MapHTTPStatus(rbac.ErrUnauthorized); got != 403 {
		t.Errorf("unauthorized status = %d, want 403", got)
	}
}
