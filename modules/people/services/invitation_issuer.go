package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/membership"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const DefaultInvitationTTL = 14 * 24 * time.Hour

// RepositoryInvitationIssuer stores pending onboarding invitations.
type RepositoryInvitationIssuer struct {
	invitations   invitation.Repository
	organizations membership.OrganizationRepository
	ttl           time.Duration
	now           Clock
}

func NewInvitationIssuer(invitations invitation.Repository, organizations membership.OrganizationRepository, ttl time.Duration, now Clock) *RepositoryInvitationIssuer {
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	if now == nil {
		now = time.Now
	}
	return &RepositoryInvitationIssuer{invitations: invitations, organizations: organizations, ttl: ttl, now: now}
}

func (i *RepositoryInvitationIssuer) IssueInvitation(ctx context.Context, auth security.Authorization, req InvitationRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return "", validationError("PEOPLE_INVALID_INPUT", "Invitation email is required.", nil)
	}

	data := make(invitation.OnboardingData, len(req.OnboardingData)+2)
	for k, v := range req.OnboardingData {
		data[k] = v
	}
	data["email"] = email
	if req.EmployeeNumber != "" {
		data["employeeNumber"] = req.EmployeeNumber
	}

	var orgName string
	if i.organizations != nil {
		org, err := i.organizations.GetByID(ctx, auth.OrgID)
		if err != nil && !errors.Is(err, membership.ErrOrganizationNotFound) {
			return "", errors.Wrap(err, "get organization")
		}
		if org != nil {
			orgName = org.Name
		}
	}

	now := i.now()
	created, err := i.invitations.Create(ctx, invitation.Invitation{
		Token:            uuid.NewString(),
		OrgID:            auth.OrgID,
		OrganizationName: orgName,
		TargetEmail:      email,
		InvitedByUserID:  auth.UserID,
		Status:           invitation.StatusPending,
		OnboardingData:   data,
		CreatedAt:        now,
		ExpiresAt:        now.Add(i.ttl),
	})
	if err != nil {
		return "", errors.Wrap(mapPgErrorToServiceError(err), "create invitation")
	}
	return created.Token, nil
}
