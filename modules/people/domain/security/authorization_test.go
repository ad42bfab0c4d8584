package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	orgID  = "11111111-1111-4111-8111-111111111111"
	userID = "22222222-2222-4222-8222-222222222222"
)

func validAuthorization() Authorization {
	return NewAuthorization(orgID, userID, "orgAdmin", ResidencyUKOnly, ClassificationOfficial, "test", "55555555-5555-4555-8555-555555555555")
}

func TestAuthorizationValidate(t *testing.T) {
	require.NoError(t, validAuthorization().Validate())
}

func TestAuthorizationValidate_Rejects(t *testing.T) {
	cases := map[string]func(a *Authorization){
		"non uuid org":      func(a *Authorization) { a.OrgID = "org-1"; a.TenantScope.OrgID = "org-1" },
		"missing user":      func(a *Authorization) { a.UserID = "" },
		"unknown residency": func(a *Authorization) { a.DataResidency = "MOON" },
		"unknown class":     func(a *Authorization) { a.DataClassification = "PUBLIC" },
		"missing source":    func(a *Authorization) { a.AuditSource = "" },
		"bad correlation":   func(a *Authorization) { a.CorrelationID = "nope" },
		"scope source":      func(a *Authorization) { a.TenantScope.AuditSource = "" },
		"missing role":      func(a *Authorization) { a.RoleKey = "" },
		"foreign tenant scope": func(a *Authorization) {
			a.TenantScope.OrgID = "33333333-3333-4333-8333-333333333333"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := validAuthorization()
			mutate(&a)
			require.Error(t, a.Validate())
		})
	}
}

func TestValidationFieldErrors(t *testing.T) {
	a := validAuthorization()
	a.DataResidency = "MOON"
	details := ValidationFieldErrors(a.Validate())
	require.Equal(t, "oneof", details["Authorization.DataResidency"])

	require.Empty(t, ValidationFieldErrors(nil))
	require.Empty(t, ValidationFieldErrors(&ScopeMismatchError{Field: "x"}))
}

func TestWithAuditSourceDoesNotMutateOriginal(t *testing.T) {
	a := validAuthorization()
	b := a.WithAuditSource("service:hr:people.terminate")

	require.Equal(t, "test", a.AuditSource)
	require.Equal(t, "service:hr:people.terminate", b.AuditSource)
	require.Equal(t, "service:hr:people.terminate", b.TenantScope.AuditSource)
}

func TestHasPermission(t *testing.T) {
	a := validAuthorization()
	a.Permissions = map[string][]string{"employeeProfile": {"read"}, "leave": {"*"}}
	require.True(t, a.HasPermission("employeeProfile", "read"))
	require.False(t, a.HasPermission("employeeProfile", "update"))
	require.True(t, a.HasPermission("leave", "cancel"))
}
