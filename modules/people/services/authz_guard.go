package services

import (
	"context"
	"errors"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/authz"
)

const (
	ResourcePeople          = "hr.people"
	ResourceEmployeeProfile = "hr.employee_profile"
	ResourceContract        = "hr.employment_contract"
	ResourceLeave           = "hr.leave"
	ResourceAbsence         = "hr.absence"
	ResourceCompliance      = "hr.compliance"
	ResourceOnboarding      = "hr.onboarding"

	ActionAutomationApply = "hr.onboarding.automation.apply"
)

// Authorizer is satisfied by *authz.Service.
type Authorizer interface {
	Authorize(ctx context.Context, req authz.Request) error
}

// CasbinAccessGuard evaluates the caller's role against the casbin policy of
// the authorization org, passing tenant tags as ABAC attributes.
type CasbinAccessGuard struct {
	authorizer Authorizer
}

func NewCasbinAccessGuard(authorizer Authorizer) *CasbinAccessGuard {
	return &CasbinAccessGuard{authorizer: authorizer}
}

func (g *CasbinAccessGuard) EnsureOrgAccess(ctx context.Context, auth security.Authorization, req AccessRequest) error {
	attrs := authz.Attributes{
		"orgId":              auth.OrgID,
		"userId":             auth.UserID,
		"dataResidency":      string(auth.DataResidency),
		"dataClassification": string(auth.DataClassification),
		"auditSource":        auth.AuditSource,
	}
	if auth.CorrelationID != "" {
		attrs["correlationId"] = auth.CorrelationID
	}
	for k, v := range req.ResourceAttributes {
		attrs[k] = v
	}

	// Explicit grants on the context short-circuit the policy lookup.
	if auth.HasPermission(req.ResourceType, req.Action) {
		return nil
	}

	authzReq := authz.NewRequest(
		authz.SubjectForRole(auth.RoleKey),
		authz.DomainFromOrg(auth.OrgID),
		req.ResourceType,
		authz.NormalizeAction(req.Action),
		authz.WithAttributes(attrs),
	)
	if err := g.authorizer.Authorize(ctx, authzReq); err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			return authorizationError(err)
		}
		return err
	}
	return nil
}

var authorizePeopleFn = defaultAuthorizePeople

func authorizePeople(ctx context.Context, guard AccessGuard, auth security.Authorization, req AccessRequest) error {
	return authorizePeopleFn(ctx, guard, auth, req)
}

func defaultAuthorizePeople(ctx context.Context, guard AccessGuard, auth security.Authorization, req AccessRequest) error {
	if guard == nil {
		return authorizationError(errors.New("access guard not configured"))
	}
	err := guard.EnsureOrgAccess(ctx, auth, req)
	if err == nil {
		return nil
	}
	if IsAuthorization(err) {
		return err
	}
	if errors.Is(err, authz.ErrForbidden) {
		return authorizationError(err)
	}
	return err
}
