package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
)

const invitationColumns = `token, org_id, organization_name, target_email, invited_by_user_id, status,
	onboarding_data, created_at, expires_at, accepted_at, accepted_by_user_id`

const (
	selectInvitation = `SELECT ` + invitationColumns + ` FROM onboarding_invitations WHERE token = $1`

	insertInvitation = `INSERT INTO onboarding_invitations (
		token, org_id, organization_name, target_email, invited_by_user_id, status, onboarding_data, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + invitationColumns

	// Conditional on pending so two concurrent accepts cannot both win.
	acceptInvitation = `UPDATE onboarding_invitations
		SET status = 'accepted', accepted_at = $4, accepted_by_user_id = $3
	WHERE org_id = $1 AND token = $2 AND status = 'pending'
	RETURNING ` + invitationColumns

	reopenInvitation = `UPDATE onboarding_invitations
		SET status = 'pending', accepted_at = NULL, accepted_by_user_id = NULL
	WHERE org_id = $1 AND token = $2 AND status = 'accepted'`
)

type InvitationRepository struct{}

func NewInvitationRepository() invitation.Repository {
	return &InvitationRepository{}
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*invitation.Invitation, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := scanInvitation(tx.QueryRow(ctx, selectInvitation, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, invitation.ErrNotFound
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query invitation")
	}
	return inv, nil
}

func (r *InvitationRepository) Create(ctx context.Context, inv invitation.Invitation) (*invitation.Invitation, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	status := inv.Status
	if status == "" {
		status = invitation.StatusPending
	}
	data := map[string]any(inv.OnboardingData)
	if data == nil {
		data = map[string]any{}
	}
	var expiresAt *time.Time
	if !inv.ExpiresAt.IsZero() {
		expiresAt = &inv.ExpiresAt
	}
	created, err := scanInvitation(tx.QueryRow(ctx, insertInvitation,
		inv.Token, inv.OrgID, inv.OrganizationName, inv.TargetEmail, inv.InvitedByUserID,
		string(status), data, expiresAt,
	))
	if err != nil {
		return nil, gerrors.Wrap(err, "create invitation")
	}
	return created, nil
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, orgID, token, userID string, at time.Time) (*invitation.Invitation, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := scanInvitation(tx.QueryRow(ctx, acceptInvitation, orgID, token, userID, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, invitation.ErrNotPending
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "accept invitation")
	}
	return inv, nil
}

func (r *InvitationRepository) Reopen(ctx context.Context, orgID, token string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, reopenInvitation, orgID, token); err != nil {
		return gerrors.Wrap(err, "reopen invitation")
	}
	return nil
}

func scanInvitation(row pgx.Row) (*invitation.Invitation, error) {
	var (
		inv        invitation.Invitation
		status     string
		data       map[string]any
		expiresAt  *time.Time
		acceptedBy *string
	)
	err := row.Scan(
		&inv.Token, &inv.OrgID, &inv.OrganizationName, &inv.TargetEmail, &inv.InvitedByUserID, &status,
		&data, &inv.CreatedAt, &expiresAt, &inv.AcceptedAt, &acceptedBy,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = invitation.Status(status)
	inv.OnboardingData = invitation.OnboardingData(data)
	if expiresAt != nil {
		inv.ExpiresAt = *expiresAt
	}
	inv.AcceptedByUserID = deref(acceptedBy)
	return &inv, nil
}
