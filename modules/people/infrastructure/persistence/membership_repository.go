package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/membership"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/composables"
)

const (
	selectMembership = `SELECT org_id, user_id, roles, status, invited_by_user_id, created_at
		FROM org_memberships WHERE org_id = $1 AND user_id = $2`

	insertMembership = `INSERT INTO org_memberships (org_id, user_id, roles, status, invited_by_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING org_id, user_id, roles, status, invited_by_user_id, created_at`

	deleteMembership = `DELETE FROM org_memberships WHERE org_id = $1 AND user_id = $2`

	selectOrganization = `SELECT id, name, data_residency, data_classification FROM organizations WHERE id = $1`
)

type MembershipRepository struct {
	profiles employee.ProfileRepository
}

func NewMembershipRepository(profiles employee.ProfileRepository) membership.Repository {
	return &MembershipRepository{profiles: profiles}
}

func (r *MembershipRepository) Find(ctx context.Context, orgID, userID string) (*membership.Membership, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	m, err := scanMembership(tx.QueryRow(ctx, selectMembership, orgID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, membership.ErrNotFound
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query membership")
	}
	return m, nil
}

// CreateWithProfile runs inside the caller's transaction when one is bound,
// or opens its own.
func (r *MembershipRepository) CreateWithProfile(ctx context.Context, nm membership.NewMember) (*membership.Membership, error) {
	m := nm.Membership
	if m.Status == "" {
		m.Status = membership.StatusActive
	}
	if len(m.Roles) == 0 {
		m.Roles = []string{membership.DefaultRole}
	}
	return composables.InTenantTxResult(composables.WithOrgID(ctx, m.OrgID), func(txCtx context.Context) (*membership.Membership, error) {
		tx, err := querier(txCtx)
		if err != nil {
			return nil, err
		}
		created, err := scanMembership(tx.QueryRow(txCtx, insertMembership,
			m.OrgID, m.UserID, m.Roles, string(m.Status), nullIfEmpty(m.InvitedByUserID),
		))
		if err != nil {
			return nil, gerrors.Wrap(err, "create membership")
		}
		if nm.Profile.EmployeeNumber != "" {
			if _, err := r.profiles.Create(txCtx, nm.Profile); err != nil {
				return nil, gerrors.Wrap(err, "seed membership profile")
			}
		}
		return created, nil
	})
}

func (r *MembershipRepository) Delete(ctx context.Context, orgID, userID string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteMembership, orgID, userID)
	if err != nil {
		return gerrors.Wrap(err, "delete membership")
	}
	if tag.RowsAffected() == 0 {
		return membership.ErrNotFound
	}
	return nil
}

func scanMembership(row pgx.Row) (*membership.Membership, error) {
	var (
		m         membership.Membership
		status    string
		invitedBy *string
	)
	if err := row.Scan(&m.OrgID, &m.UserID, &m.Roles, &status, &invitedBy, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Status = membership.Status(status)
	m.InvitedByUserID = deref(invitedBy)
	return &m, nil
}

type OrganizationRepository struct{}

func NewOrganizationRepository() membership.OrganizationRepository {
	return &OrganizationRepository{}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, orgID string) (*membership.Organization, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	var (
		org                       membership.Organization
		residency, classification string
	)
	err = tx.QueryRow(ctx, selectOrganization, orgID).Scan(&org.ID, &org.Name, &residency, &classification)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, membership.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query organization")
	}
	org.DataResidency = security.DataResidency(residency)
	org.DataClassification = security.DataClassification(classification)
	return &org, nil
}
