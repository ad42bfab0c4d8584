package invitation

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

// OnboardingData is the payload captured when the invitation was issued.
type OnboardingData map[string]any

// Invitation is created by an inviter and accepted at most once.
type Invitation struct {
	Token            string
	OrgID            string
	OrganizationName string
	TargetEmail      string
	InvitedByUserID  string
	Status           Status
	OnboardingData   OnboardingData
	CreatedAt        time.Time
	ExpiresAt        time.Time
	AcceptedAt       *time.Time
	AcceptedByUserID string
}

// NormalizeToken trims surrounding whitespace from a user supplied token.
func NormalizeToken(token string) string {
	return strings.TrimSpace(token)
}

func (i *Invitation) IsPending() bool {
	return i.Status == StatusPending
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// IssuedTo compares the target email case-insensitively.
func (i *Invitation) IssuedTo(email string) bool {
	return strings.EqualFold(strings.TrimSpace(i.TargetEmail), strings.TrimSpace(email))
}
