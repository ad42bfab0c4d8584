package services

import (
	"context"
	"time"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/absence"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/compliance"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/leave"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/cache"
)

// SyncedUser is the identity copied from the authentication provider.
type SyncedUser struct {
	UserID      string
	Email       string
	DisplayName string
}

// UserSyncer upserts the authenticating identity keyed by user id.
type UserSyncer interface {
	UpsertUser(ctx context.Context, user SyncedUser) error
}

// LeaveService is keyed by employee number. EnsureEmployeeBalances must be
// idempotent for the same employee, year and leave types.
type LeaveService interface {
	EnsureEmployeeBalances(ctx context.Context, auth security.Authorization, employeeNumber string, year int, leaveTypes []string) (leave.EnsureBalancesResult, error)
	GetLeaveBalances(ctx context.Context, auth security.Authorization, employeeNumber string, year int) ([]leave.Balance, error)
	ListLeaveRequests(ctx context.Context, auth security.Authorization, filter leave.RequestFilter) ([]leave.Request, error)
	CancelLeaveRequest(ctx context.Context, auth security.Authorization, requestID, cancelledBy, reason string) error
}

type AbsenceService interface {
	ListAbsences(ctx context.Context, auth security.Authorization, filter absence.Filter) ([]absence.Absence, error)
	CancelAbsence(ctx context.Context, auth security.Authorization, absenceID, reason string) error
}

// ComplianceStatusReader returns nil without error when the user has no
// compliance record.
type ComplianceStatusReader interface {
	GetStatusForUser(ctx context.Context, auth security.Authorization, userID string) (*compliance.Status, error)
}

type ComplianceAssigner interface {
	AssignCompliancePack(ctx context.Context, auth security.Authorization, assignment compliance.PackAssignment) error
}

// BillingService reconciles paid seats after membership changes.
type BillingService interface {
	SyncSeats(ctx context.Context, orgID string) error
}

// AccessRequest describes one guarded action.
type AccessRequest struct {
	Action             string
	ResourceType       string
	ResourceAttributes map[string]any
}

// AccessGuard fails when auth may not perform the request. It never mutates
// state.
type AccessGuard interface {
	EnsureOrgAccess(ctx context.Context, auth security.Authorization, req AccessRequest) error
}

type CacheCoordinator interface {
	Register(ctx context.Context, keys ...cache.Key) error
	Invalidate(ctx context.Context, keys ...cache.Key) error
	Load(ctx context.Context, keys []cache.Key, entry cache.Entry, dest any) (bool, error)
	Save(ctx context.Context, keys []cache.Key, entry cache.Entry, value any) error
}

type AuditRecorder interface {
	RecordAuditEvent(ctx context.Context, event AuditEvent) error
}

// InvitationRequest asks for an onboarding invitation for a new employee.
type InvitationRequest struct {
	Email          string
	EmployeeNumber string
	OnboardingData map[string]any
}

type InvitationIssuer interface {
	IssueInvitation(ctx context.Context, auth security.Authorization, req InvitationRequest) (string, error)
}

// TransactionRunner runs fn in one transaction scoped to orgID.
type TransactionRunner interface {
	RunInTx(ctx context.Context, orgID string, fn func(ctx context.Context) error) error
}

type Clock func() time.Time

type directRunner struct{}

func (directRunner) RunInTx(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
