package membership

import (
	"context"
	"errors"
	"time"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

var (
	ErrNotFound             = errors.New("membership not found")
	ErrOrganizationNotFound = errors.New("organization not found")
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

const DefaultRole = "member"

type Membership struct {
	OrgID           string
	UserID          string
	Roles           []string
	Status          Status
	InvitedByUserID string
	CreatedAt       time.Time
}

type Organization struct {
	ID                 string
	Name               string
	DataResidency      security.DataResidency
	DataClassification security.DataClassification
}

// NewMember carries a membership together with the profile created alongside it.
type NewMember struct {
	Membership Membership
	Profile    employee.Profile
}

type Repository interface {
	Find(ctx context.Context, orgID, userID string) (*Membership, error)
	// CreateWithProfile writes the membership and the profile atomically. An
	// existing profile with the same employee number is reused.
	CreateWithProfile(ctx context.Context, m NewMember) (*Membership, error)
	Delete(ctx context.Context, orgID, userID string) error
}

type OrganizationRepository interface {
	GetByID(ctx context.Context, orgID string) (*Organization, error)
}
