package persistence

import (
	"context"
	"io/fs"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/membership"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/leave"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/composables"
)

const (
	orgID  = "11111111-1111-4111-8111-111111111111"
	userID = "33333333-3333-4333-8333-333333333333"
)

var created = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// txContext binds a mocked transaction the way InTenantTx does.
func txContext(t *testing.T) (context.Context, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	return composables.WithTx(context.Background(), tx), mock
}

var profileColumnNames = []string{
	"id", "org_id", "user_id", "employee_number", "email", "personal_email", "display_name",
	"first_name", "last_name", "job_title", "department_id", "employment_type", "employment_status",
	"start_date", "end_date", "annual_salary", "hourly_rate", "salary_currency", "salary_basis",
	"pay_schedule", "eligible_leave_types", "metadata", "data_residency", "data_classification",
	"created_at", "updated_at",
}

func profileRows(user *string) *pgxmock.Rows {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(profileColumnNames).AddRow(
		"profile-1", orgID, user, "E100", "jane@co.com", "", "Jane Doe",
		"Jane", "Doe", "Engineer", "", "FULL_TIME", "ACTIVE",
		&start, nil, strPtr("52000.00"), nil, "GBP", "ANNUAL",
		"MONTHLY", []string{"ANNUAL"}, map[string]any{"source": "onboarding-invitation"}, "UK_ONLY", "OFFICIAL",
		created, created,
	)
}

// profileUpsertArgs matches the upsert bind list with the identity columns pinned.
func profileUpsertArgs(user *string, employeeNumber string) []any {
	args := make([]any, 24)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[1] = orgID
	args[2] = user
	args[3] = employeeNumber
	return args
}

func TestProfileRepository_GetByID(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM employee_profiles WHERE org_id = $1 AND id = $2")).
		WithArgs(orgID, "profile-1").
		WillReturnRows(profileRows(strPtr(userID)))

	p, err := NewProfileRepository().GetByID(ctx, orgID, "profile-1")
	require.NoError(t, err)
	require.Equal(t, "E100", p.EmployeeNumber)
	require.Equal(t, userID, p.UserID)
	require.Equal(t, employee.StatusActive, p.EmploymentStatus)
	require.True(t, decimal.RequireFromString("52000").Equal(*p.AnnualSalary))
	require.Nil(t, p.HourlyRate)
	require.Equal(t, security.ResidencyUKOnly, p.DataResidency)
	require.Equal(t, []string{"ANNUAL"}, p.EligibleLeaveTypes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetByIDMissing(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM employee_profiles")).
		WithArgs(orgID, "nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewProfileRepository().GetByID(ctx, orgID, "nope")
	require.ErrorIs(t, err, employee.ErrProfileNotFound)
}

func TestProfileRepository_CreateUpsertsOwnRow(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employee_profiles")).
		WithArgs(profileUpsertArgs(strPtr(userID), "E100")...).
		WillReturnRows(profileRows(strPtr(userID)))

	p, err := NewProfileRepository().Create(ctx, employee.Profile{
		OrgID:              orgID,
		UserID:             userID,
		EmployeeNumber:     "E100",
		EmploymentType:     employee.EmploymentFullTime,
		EmploymentStatus:   employee.StatusActive,
		DataResidency:      security.ResidencyUKOnly,
		DataClassification: security.ClassificationOfficial,
	})
	require.NoError(t, err)
	require.Equal(t, "profile-1", p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_CreateConflictWithOtherUser(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employee_profiles")).
		WithArgs(profileUpsertArgs(strPtr(userID), "E100")...).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewProfileRepository().Create(ctx, employee.Profile{OrgID: orgID, UserID: userID, EmployeeNumber: "E100"})
	require.ErrorIs(t, err, employee.ErrEmployeeNumberTaken)
}

func TestProfileRepository_LinkToUserEmptyUnlinks(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE employee_profiles SET user_id = $3")).
		WithArgs(orgID, "E100", (*string)(nil)).
		WillReturnRows(profileRows(nil))

	p, err := NewProfileRepository().LinkToUser(ctx, orgID, "E100", "")
	require.NoError(t, err)
	require.Empty(t, p.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_DeleteMissing(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employee_profiles")).
		WithArgs(orgID, "profile-9").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.ErrorIs(t, NewProfileRepository().Delete(ctx, orgID, "profile-9"), employee.ErrProfileNotFound)
}

func TestContractRepository_LatestMissing(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM employment_contracts")).
		WithArgs(orgID, userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewContractRepository().GetLatestForUser(ctx, orgID, userID)
	require.ErrorIs(t, err, employee.ErrContractNotFound)
}

var invitationColumnNames = []string{
	"token", "org_id", "organization_name", "target_email", "invited_by_user_id", "status",
	"onboarding_data", "created_at", "expires_at", "accepted_at", "accepted_by_user_id",
}

func TestInvitationRepository_MarkAccepted(t *testing.T) {
	ctx, mock := txContext(t)
	expires := created.Add(14 * 24 * time.Hour)
	accepted := created.Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE onboarding_invitations")).
		WithArgs(orgID, "tok-1", userID, accepted).
		WillReturnRows(pgxmock.NewRows(invitationColumnNames).AddRow(
			"tok-1", orgID, "Acme", "jane@co.com", "inviter", "accepted",
			map[string]any{"employeeNumber": "E100"}, created, &expires, &accepted, strPtr(userID),
		))

	inv, err := NewInvitationRepository().MarkAccepted(ctx, orgID, "tok-1", userID, accepted)
	require.NoError(t, err)
	require.Equal(t, invitation.StatusAccepted, inv.Status)
	require.Equal(t, userID, inv.AcceptedByUserID)
	require.Equal(t, "E100", inv.OnboardingData["employeeNumber"])
	require.Equal(t, expires, inv.ExpiresAt)
}

func TestInvitationRepository_MarkAcceptedNotPending(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE onboarding_invitations")).
		WithArgs(orgID, "tok-1", userID, created).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewInvitationRepository().MarkAccepted(ctx, orgID, "tok-1", userID, created)
	require.ErrorIs(t, err, invitation.ErrNotPending)
}

func TestInvitationRepository_Reopen(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'pending'")).
		WithArgs(orgID, "tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewInvitationRepository().Reopen(ctx, orgID, "tok-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_CreateWithProfile(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO org_memberships")).
		WithArgs(orgID, userID, []string{membership.DefaultRole}, string(membership.StatusActive), strPtr("inviter")).
		WillReturnRows(pgxmock.NewRows([]string{"org_id", "user_id", "roles", "status", "invited_by_user_id", "created_at"}).
			AddRow(orgID, userID, []string{"member"}, "ACTIVE", strPtr("inviter"), created))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employee_profiles")).
		WithArgs(profileUpsertArgs(strPtr(userID), "E100")...).
		WillReturnRows(profileRows(strPtr(userID)))

	repo := NewMembershipRepository(NewProfileRepository())
	m, err := repo.CreateWithProfile(ctx, membership.NewMember{
		Membership: membership.Membership{OrgID: orgID, UserID: userID, InvitedByUserID: "inviter"},
		Profile:    employee.Profile{OrgID: orgID, UserID: userID, EmployeeNumber: "E100"},
	})
	require.NoError(t, err)
	require.Equal(t, membership.StatusActive, m.Status)
	require.Equal(t, "inviter", m.InvitedByUserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepository_Missing(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM organizations")).
		WithArgs(orgID).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewOrganizationRepository().GetByID(ctx, orgID)
	require.ErrorIs(t, err, membership.ErrOrganizationNotFound)
}

func TestMetricRepository_CreateReturnsExistingID(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO metric_definitions")).
		WithArgs(pgxmock.AnyArg(), orgID, "onboarding.invite.accepted", "Onboarding invitations accepted",
			string(security.ResidencyUKOnly), string(security.ClassificationOfficial), "test", (*string)(nil), userID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("metric-existing"))

	def, err := NewMetricRepository().Create(ctx, automation.MetricDefinition{
		OrgID: orgID,
		Key:   "onboarding.invite.accepted",
		Label: "Onboarding invitations accepted",
		Tags:  automation.Tags{DataResidency: security.ResidencyUKOnly, DataClassification: security.ClassificationOfficial, AuditSource: "test", CreatedBy: userID},
	})
	require.NoError(t, err)
	require.Equal(t, "metric-existing", def.ID)
}

func TestWorkflowRepository_UnknownTemplateIsNil(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM workflow_templates")).
		WithArgs(orgID, "wf-1").
		WillReturnError(pgx.ErrNoRows)

	tmpl, err := NewWorkflowRepository().GetTemplate(ctx, orgID, "wf-1")
	require.NoError(t, err)
	require.Nil(t, tmpl)
}

func TestLeaveStore_CancelNotCancellable(t *testing.T) {
	ctx, mock := txContext(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_requests SET status = 'cancelled'")).
		WithArgs(orgID, "r1", userID, "terminated").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	auth := security.Authorization{OrgID: orgID}
	err := NewLeaveStore().CancelLeaveRequest(ctx, auth, "r1", userID, "terminated")
	require.ErrorIs(t, err, ErrLeaveRequestNotCancellable)
}

func TestLeaveStore_EnsureEmployeeBalances(t *testing.T) {
	ctx, mock := txContext(t)
	auth := security.Authorization{OrgID: orgID, AuditSource: "service:hr:people.onboard_employee"}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leave_balances")).
		WithArgs(orgID, "E100", "ANNUAL", 2026, "28", auth.AuditSource).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leave_balances")).
		WithArgs(orgID, "E100", "STUDY", 2026, "0", auth.AuditSource).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM leave_balances")).
		WithArgs(orgID, "E100", 2026).
		WillReturnRows(pgxmock.NewRows([]string{"employee_number", "leave_type", "year", "entitlement", "used"}).
			AddRow("E100", "ANNUAL", 2026, "28.00", "3.00").
			AddRow("E100", "SICK", 2026, "10.00", "0.00").
			AddRow("E100", "STUDY", 2026, "0.00", "0.00"))

	res, err := NewLeaveStore().EnsureEmployeeBalances(ctx, auth, "E100", 2026, []string{"ANNUAL", "STUDY"})
	require.NoError(t, err)
	require.Len(t, res.EnsuredBalances, 2)
	require.Equal(t, "ANNUAL", res.EnsuredBalances[0].LeaveType)
	require.True(t, decimal.NewFromInt(25).Equal(res.EnsuredBalances[0].Remaining))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveStore_ListRequestsFiltersStatus(t *testing.T) {
	ctx, mock := txContext(t)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM leave_requests")).
		WithArgs(orgID, "E100", []string{"submitted"}, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "org_id", "employee_number", "leave_type", "status", "start_date", "end_date", "days"}).
			AddRow("r1", orgID, "E100", "ANNUAL", "submitted", start, start.AddDate(0, 0, 2), "3"))

	reqs, err := NewLeaveStore().ListLeaveRequests(ctx, security.Authorization{OrgID: orgID}, leave.RequestFilter{
		EmployeeNumber: "E100",
		Statuses:       []leave.RequestStatus{leave.RequestSubmitted},
	})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	require.Equal(t, leave.RequestSubmitted, reqs[0].Status)
}

func TestSchemaMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(Schema, SchemaDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		body, err := fs.ReadFile(Schema, SchemaDir+"/"+e.Name())
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(string(body), "-- +goose Up"), e.Name())
		require.Contains(t, string(body), "-- +goose Down", e.Name())
	}
	core, err := fs.ReadFile(Schema, SchemaDir+"/00001_people_core.sql")
	require.NoError(t, err)
	require.Contains(t, string(core), "employee_profiles_org_id_employee_number_key")
	require.Contains(t, string(core), "people_outbox")
}
