package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/absence"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/compliance"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/leave"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/cache"
)

type peopleWorld struct {
	profiles    *fakeProfiles
	contracts   *fakeContracts
	leave       *fakeLeave
	absences    *fakeAbsences
	compliance  *fakeCompliance
	invitations *fakeInvitations
	guard       *recordingGuard
	cache       *recordingCache
	audit       *recordingAudit
}

func newPeopleWorld(profiles ...employee.Profile) *peopleWorld {
	return &peopleWorld{
		profiles:    newFakeProfiles(profiles...),
		contracts:   newFakeContracts(),
		leave:       &fakeLeave{},
		absences:    &fakeAbsences{},
		compliance:  &fakeCompliance{},
		invitations: newFakeInvitations(),
		guard:       &recordingGuard{},
		cache:       &recordingCache{},
		audit:       &recordingAudit{},
	}
}

func (w *peopleWorld) service() *PeopleService {
	return NewPeopleService(PeopleDependencies{
		Profiles:         w.profiles,
		Contracts:        w.contracts,
		Leave:            w.leave,
		Absences:         w.absences,
		ComplianceStatus: w.compliance,
		Compliance:       w.compliance,
		Invitations:      NewInvitationIssuer(w.invitations, nil, 0, fixedClock),
		Guard:            w.guard,
		Cache:            w.cache,
		Audit:            w.audit,
		Now:              fixedClock,
	})
}

func linkedProfile() employee.Profile {
	return employee.Profile{
		ID:               testProfileID,
		OrgID:            testOrgID,
		UserID:           testTargetUserID,
		EmployeeNumber:   "E100",
		EmploymentStatus: employee.StatusActive,
	}
}

func TestOnboardEmployee_EnsuresBalancesOnce(t *testing.T) {
	w := newPeopleWorld()
	types := []string{"annual", "sick", "parental"}

	res, err := w.service().OnboardEmployee(context.Background(), testAuth(), OnboardEmployeeInput{
		Profile: employee.Profile{
			UserID:         testTargetUserID,
			EmployeeNumber: "E200",
			JobTitle:       "Analyst",
		},
		Contract:           &employee.Contract{ContractType: employee.ContractPermanent, JobTitle: "Analyst", StartDate: testNow},
		EligibleLeaveTypes: types,
		Invite:             &InviteInput{Email: "new.hire@co.com"},
	})
	require.NoError(t, err)
	require.Equal(t, "profile-1", res.ProfileID)
	require.Equal(t, "contract-1", res.ContractID)
	require.NotEmpty(t, res.InvitationToken)
	require.Len(t, res.EnsuredBalances, 3)

	require.Len(t, w.leave.ensures, 1)
	require.Equal(t, ensureCall{
		EmployeeNumber: "E200",
		Year:           2026,
		LeaveTypes:     types,
		AuditSource:    "service:hr:people.onboard_employee",
	}, w.leave.ensures[0])

	require.Len(t, w.cache.invalidated, 1)
	require.ElementsMatch(t, []cache.Scope{
		ScopeProfiles, ScopeContracts, ScopeLeaveRequests, ScopeLeaveBalances, ScopeAbsences,
	}, w.cache.invalidated[0])

	require.Len(t, w.invitations.created, 1)
	inv := w.invitations.created[0]
	require.Equal(t, "new.hire@co.com", inv.TargetEmail)
	require.Equal(t, invitation.StatusPending, inv.Status)
	require.Equal(t, "E200", inv.OnboardingData["employeeNumber"])
	require.Equal(t, testNow.Add(DefaultInvitationTTL), inv.ExpiresAt)

	require.Len(t, w.audit.events, 1)
	require.Equal(t, "employee.onboarded", w.audit.events[0].EventType)
}

func TestOnboardEmployee_SkipsBalancesWithoutLeaveTypes(t *testing.T) {
	w := newPeopleWorld()

	_, err := w.service().OnboardEmployee(context.Background(), testAuth(), OnboardEmployeeInput{
		Profile: employee.Profile{UserID: testTargetUserID, EmployeeNumber: "E201"},
	})
	require.NoError(t, err)
	require.Empty(t, w.leave.ensures)
	require.Empty(t, w.contracts.created)
}

func TestOnboardEmployee_RequiresEmployeeNumber(t *testing.T) {
	w := newPeopleWorld()

	_, err := w.service().OnboardEmployee(context.Background(), testAuth(), OnboardEmployeeInput{
		Profile: employee.Profile{UserID: testTargetUserID},
	})
	require.True(t, IsValidation(err))
	require.Empty(t, w.profiles.created)
}

func TestOnboardEmployee_InvalidAuthorization(t *testing.T) {
	w := newPeopleWorld()
	auth := testAuth()
	auth.OrgID = "not-a-uuid"

	_, err := w.service().OnboardEmployee(context.Background(), auth, OnboardEmployeeInput{
		Profile: employee.Profile{UserID: testTargetUserID, EmployeeNumber: "E1"},
	})
	require.True(t, IsValidation(err))
	require.Empty(t, w.guard.requests, "guard must not run for an invalid authorization")
}

func TestOnboardEmployee_AuthorizeDenied(t *testing.T) {
	t.Cleanup(func() { authorizePeopleFn = defaultAuthorizePeople })

	w := newPeopleWorld()
	authorizePeopleFn = func(ctx context.Context, guard AccessGuard, auth security.Authorization, req AccessRequest) error {
		require.Equal(t, ResourcePeople, req.ResourceType)
		require.Equal(t, "create", req.Action)
		return authorizationError(errors.New("forbidden"))
	}

	_, err := w.service().OnboardEmployee(context.Background(), testAuth(), OnboardEmployeeInput{
		Profile:            employee.Profile{UserID: testTargetUserID, EmployeeNumber: "E1"},
		EligibleLeaveTypes: []string{"annual"},
	})
	require.True(t, IsAuthorization(err))
	require.Empty(t, w.profiles.created, "repository should not be called when authorization fails")
	require.Empty(t, w.leave.ensures)
}

func TestGetEmployeeSummary_EmptyWhenNoProfile(t *testing.T) {
	w := newPeopleWorld()

	summary, err := w.service().GetEmployeeSummary(context.Background(), testAuth(), SummaryInput{UserID: testTargetUserID})
	require.NoError(t, err)
	require.Nil(t, summary.Profile)
	require.Nil(t, summary.Contract)
	require.NotNil(t, summary.LeaveBalances)
	require.Empty(t, summary.LeaveBalances)
	require.NotNil(t, summary.LeaveRequestsOpen)
	require.Empty(t, summary.LeaveRequestsOpen)
	require.NotNil(t, summary.AbsencesOpen)
	require.Empty(t, summary.AbsencesOpen)
	require.Nil(t, summary.ComplianceStatus)
	require.Zero(t, w.leave.listCalls)
}

func TestGetEmployeeSummary_CollectsSubsystems(t *testing.T) {
	w := newPeopleWorld(linkedProfile())
	w.contracts = newFakeContracts(employee.Contract{ID: "contract-9", OrgID: testOrgID, UserID: testTargetUserID})
	w.leave.balances = []leave.Balance{
		{EmployeeNumber: "E100", LeaveType: "annual", Year: 2025},
		{EmployeeNumber: "E100", LeaveType: "annual", Year: 2026},
	}
	w.leave.requests = []leave.Request{
		{ID: "r1", EmployeeNumber: "E100", Status: leave.RequestSubmitted},
		{ID: "r2", EmployeeNumber: "E100", Status: leave.RequestApproved},
	}
	w.absences.items = []absence.Absence{
		{ID: "a1", UserID: testTargetUserID, Status: absence.StatusReported},
		{ID: "a2", UserID: testTargetUserID, Status: absence.StatusClosed},
	}
	w.compliance.status = &compliance.Status{UserID: testTargetUserID}

	summary, err := w.service().GetEmployeeSummary(context.Background(), testAuth(), SummaryInput{ProfileID: testProfileID})
	require.NoError(t, err)
	require.Equal(t, testProfileID, summary.Profile.ID)
	require.Equal(t, "contract-9", summary.Contract.ID)
	require.Len(t, summary.LeaveBalances, 1)
	require.Equal(t, 2026, summary.LeaveBalances[0].Year)
	require.Len(t, summary.LeaveRequestsOpen, 1)
	require.Equal(t, "r1", summary.LeaveRequestsOpen[0].ID)
	require.Len(t, summary.AbsencesOpen, 1)
	require.Equal(t, "a1", summary.AbsencesOpen[0].ID)
	require.NotNil(t, summary.ComplianceStatus)
	require.Contains(t, w.cache.registered, ScopeLeaveBalances)
	require.Equal(t, []cache.Entry{{Name: summaryCacheEntry, ID: testProfileID + ":2026"}}, w.cache.saved)
}

func TestGetEmployeeSummary_RejectsOutOfRangeYear(t *testing.T) {
	w := newPeopleWorld(linkedProfile())

	_, err := w.service().GetEmployeeSummary(context.Background(), testAuth(), SummaryInput{ProfileID: testProfileID, Year: 1999})
	require.True(t, IsValidation(err))
}

func TestUpdateEligibility_RepeatsIdenticalCalls(t *testing.T) {
	w := newPeopleWorld(linkedProfile())
	svc := w.service()
	in := UpdateEligibilityInput{ProfileID: testProfileID, EligibleLeaveTypes: []string{"annual", "study"}, Year: 2027}

	_, err := svc.UpdateEligibility(context.Background(), testAuth(), in)
	require.NoError(t, err)
	res, err := svc.UpdateEligibility(context.Background(), testAuth(), in)
	require.NoError(t, err)

	require.Equal(t, []string{"annual", "study"}, res.Profile.EligibleLeaveTypes)
	require.Len(t, w.leave.ensures, 2)
	require.Equal(t, w.leave.ensures[0], w.leave.ensures[1])
	require.Equal(t, 2027, w.leave.ensures[0].Year)
	require.Len(t, w.cache.invalidated, 2)
	require.Equal(t, w.cache.invalidated[0], w.cache.invalidated[1])
	require.Equal(t, []cache.Scope{ScopeProfiles, ScopeLeaveBalances, ScopeLeaveRequests}, w.cache.invalidated[0])
}

func TestUpdateEligibility_ConfiguredScopes(t *testing.T) {
	w := newPeopleWorld(linkedProfile())
	svc := NewPeopleService(PeopleDependencies{
		Profiles:                      w.profiles,
		Leave:                         w.leave,
		Guard:                         w.guard,
		Cache:                         w.cache,
		Now:                           fixedClock,
		EligibilityInvalidationScopes: []cache.Scope{ScopeLeaveBalances},
	})

	_, err := svc.UpdateEligibility(context.Background(), testAuth(), UpdateEligibilityInput{
		ProfileID:          testProfileID,
		EligibleLeaveTypes: []string{"annual"},
	})
	require.NoError(t, err)
	require.Equal(t, []cache.Scope{ScopeProfiles, ScopeLeaveBalances}, w.cache.invalidated[0])
	require.Equal(t, 2026, w.leave.ensures[0].Year)
}

func TestUpdateEligibility_UnknownProfile(t *testing.T) {
	w := newPeopleWorld()

	_, err := w.service().UpdateEligibility(context.Background(), testAuth(), UpdateEligibilityInput{
		ProfileID:          testProfileID,
		EligibleLeaveTypes: []string{"annual"},
	})
	require.True(t, IsValidation(err))
	require.Empty(t, w.profiles.updates)
	require.Empty(t, w.leave.ensures)
}

func TestTerminateEmployee_CancelsEverySubmittedRequest(t *testing.T) {
	w := newPeopleWorld(linkedProfile())
	w.contracts = newFakeContracts(employee.Contract{ID: "contract-9", OrgID: testOrgID, UserID: testTargetUserID})
	w.leave.requests = []leave.Request{
		{ID: "r1", EmployeeNumber: "E100", Status: leave.RequestSubmitted},
		{ID: "r2", EmployeeNumber: "E100", Status: leave.RequestSubmitted},
		{ID: "r3", EmployeeNumber: "E100", Status: leave.RequestSubmitted},
		{ID: "r4", EmployeeNumber: "E100", Status: leave.RequestApproved},
		{ID: "r5", EmployeeNumber: "E999", Status: leave.RequestSubmitted},
	}
	w.absences.items = []absence.Absence{
		{ID: "a1", UserID: testTargetUserID, Status: absence.StatusReported},
		{ID: "a2", UserID: testTargetUserID, Status: absence.StatusApproved},
		{ID: "a3", UserID: testTargetUserID, Status: absence.StatusCancelled},
	}
	date := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	res, err := w.service().TerminateEmployee(context.Background(), testAuth(), TerminateEmployeeInput{
		ProfileID:          testProfileID,
		ContractID:         "contract-9",
		Termination:        Termination{Reason: "resignation", Date: date},
		CancelPendingLeave: true,
	})
	require.NoError(t, err)

	require.Equal(t, employee.StatusTerminated, res.Profile.EmploymentStatus)
	require.Equal(t, date, *res.Profile.EndDate)
	require.Equal(t, "resignation", res.Contract.TerminationReason)

	require.Equal(t, []string{"r1", "r2", "r3"}, w.leave.cancelledIDs())
	for _, c := range w.leave.cancels {
		require.Equal(t, testUserID, c.CancelledBy)
		require.Equal(t, "resignation", c.Reason)
	}
	require.ElementsMatch(t, []string{"a1", "a2"}, w.absences.cancelled)
	require.False(t, w.absences.filters[0].IncludeClosed)

	require.Contains(t, w.cache.allInvalidated(), ScopeIdentity)
	require.Len(t, w.audit.events, 1)
}

func TestTerminateEmployee_KeepsAbsencesWhenDisabled(t *testing.T) {
	w := newPeopleWorld(linkedProfile())
	w.absences.items = []absence.Absence{{ID: "a1", UserID: testTargetUserID, Status: absence.StatusReported}}
	keep := false

	_, err := w.service().TerminateEmployee(context.Background(), testAuth(), TerminateEmployeeInput{
		ProfileID:     testProfileID,
		Termination:   Termination{Reason: "dismissal", Date: testNow},
		CloseAbsences: &keep,
	})
	require.NoError(t, err)
	require.Empty(t, w.absences.cancelled)
	require.Zero(t, w.leave.listCalls)
}

func TestTerminateEmployee_CancellationFailureFailsAggregate(t *testing.T) {
	w := newPeopleWorld(linkedProfile())
	w.leave.requests = []leave.Request{
		{ID: "r1", EmployeeNumber: "E100", Status: leave.RequestSubmitted},
		{ID: "r2", EmployeeNumber: "E100", Status: leave.RequestSubmitted},
	}
	w.leave.cancelErr = map[string]error{"r2": errors.New("locked")}

	_, err := w.service().TerminateEmployee(context.Background(), testAuth(), TerminateEmployeeInput{
		ProfileID:          testProfileID,
		Termination:        Termination{Reason: "redundancy", Date: testNow},
		CancelPendingLeave: true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "r2")
}

func TestTerminateEmployee_WithoutEmployeeNumberFailsBeforeWrite(t *testing.T) {
	profile := linkedProfile()
	profile.EmployeeNumber = ""
	w := newPeopleWorld(profile)

	_, err := w.service().TerminateEmployee(context.Background(), testAuth(), TerminateEmployeeInput{
		ProfileID:          testProfileID,
		Termination:        Termination{Reason: "resignation", Date: testNow},
		CancelPendingLeave: true,
	})
	require.True(t, IsValidation(err))
	require.Empty(t, w.profiles.updates)
	require.Empty(t, w.contracts.updates)
	require.Empty(t, w.leave.cancels)
	require.Empty(t, w.cache.invalidated)
}

func TestAssignCompliancePack(t *testing.T) {
	w := newPeopleWorld()

	err := w.service().AssignCompliancePack(context.Background(), testAuth(), AssignCompliancePackInput{
		UserIDs:         []string{testTargetUserID},
		TemplateID:      "pack-1",
		TemplateItemIDs: []string{"item-1", "item-2"},
	})
	require.NoError(t, err)
	require.Len(t, w.compliance.assignments, 1)
	require.Equal(t, "pack-1", w.compliance.assignments[0].TemplateID)
	require.Equal(t, []cache.Scope{ScopeProfiles, ScopeCompliance}, w.cache.invalidated[0])
}

func TestAssignCompliancePack_RequiresUsersAndItems(t *testing.T) {
	w := newPeopleWorld()

	err := w.service().AssignCompliancePack(context.Background(), testAuth(), AssignCompliancePackInput{
		TemplateID:      "pack-1",
		TemplateItemIDs: []string{},
	})
	require.True(t, IsValidation(err))

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	require.Contains(t, svcErr.Details, "AssignCompliancePackInput.UserIDs")
	require.Empty(t, w.compliance.assignments)
}
