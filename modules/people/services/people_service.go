package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/absence"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/checklist"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/compliance"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/leave"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/cache"
)

type PeopleDependencies struct {
	Profiles           employee.ProfileRepository
	Contracts          employee.ContractRepository
	Leave              LeaveService
	Absences           AbsenceService
	ComplianceStatus   ComplianceStatusReader
	Compliance         ComplianceAssigner
	ChecklistTemplates checklist.TemplateRepository
	ChecklistInstances checklist.InstanceRepository
	Invitations        InvitationIssuer
	Transactions       TransactionRunner
	Guard              AccessGuard
	Cache              CacheCoordinator
	Audit              AuditRecorder
	Now                Clock
	// EligibilityInvalidationScopes defaults to DefaultEligibilityScopes.
	EligibilityInvalidationScopes []cache.Scope
}

// PeopleService coordinates employee lifecycle operations across the
// profile, contract, leave, absence and compliance subsystems.
type PeopleService struct {
	deps    PeopleDependencies
	creator *profileCreator
}

func NewPeopleService(deps PeopleDependencies) *PeopleService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if len(deps.EligibilityInvalidationScopes) == 0 {
		deps.EligibilityInvalidationScopes = DefaultEligibilityScopes
	}
	return &PeopleService{
		deps: deps,
		creator: &profileCreator{
			profiles:  deps.Profiles,
			contracts: deps.Contracts,
			templates: deps.ChecklistTemplates,
			instances: deps.ChecklistInstances,
			tx:        deps.Transactions,
			guard:     deps.Guard,
			cache:     deps.Cache,
			now:       deps.Now,
		},
	}
}

// begin validates auth and input, then runs the access guard. The returned
// authorization carries the operation audit source.
func (s *PeopleService) begin(ctx context.Context, auth security.Authorization, operation string, input any, req AccessRequest) (security.Authorization, error) {
	if err := auth.Validate(); err != nil {
		return auth, invalidAuthorization(err)
	}
	if input != nil {
		if err := security.Validator().Struct(input); err != nil {
			return auth, invalidInput(err)
		}
	}
	scoped := auth.WithAuditSource("service:hr:people." + operation)
	if err := authorizePeople(ctx, s.deps.Guard, scoped, req); err != nil {
		return scoped, err
	}
	return scoped, nil
}

type InviteInput struct {
	Email string `validate:"required,email"`
}

type OnboardEmployeeInput struct {
	Profile              employee.Profile   `validate:"-"`
	Contract             *employee.Contract `validate:"-"`
	EligibleLeaveTypes   []string
	OnboardingTemplateID string
	Invite               *InviteInput `validate:"omitempty"`
}

type OnboardEmployeeResult struct {
	ProfileID           string
	ContractID          string
	ChecklistInstanceID string
	InvitationToken     string
	EnsuredBalances     []leave.Balance
}

func (s *PeopleService) OnboardEmployee(ctx context.Context, auth security.Authorization, in OnboardEmployeeInput) (result OnboardEmployeeResult, err error) {
	auth, err = s.begin(ctx, auth, "onboard_employee", in, AccessRequest{
		Action:       "create",
		ResourceType: ResourcePeople,
		ResourceAttributes: map[string]any{
			"employeeNumber": in.Profile.EmployeeNumber,
			"userId":         in.Profile.UserID,
		},
	})
	if err != nil {
		return OnboardEmployeeResult{}, err
	}
	if in.Profile.UserID == "" || in.Profile.EmployeeNumber == "" {
		return OnboardEmployeeResult{}, validationError("PEOPLE_INVALID_PROFILE", "Profile requires userId and employeeNumber.", map[string]any{
			"userId":         in.Profile.UserID,
			"employeeNumber": in.Profile.EmployeeNumber,
		})
	}
	ctx, finish := startOperation(ctx, "onboard_employee", auth)
	defer finish(&err)

	profile := in.Profile
	if len(in.EligibleLeaveTypes) > 0 {
		profile.EligibleLeaveTypes = in.EligibleLeaveTypes
	}
	var contract *employee.Contract
	if in.Contract != nil {
		draft := *in.Contract
		if draft.UserID == "" {
			draft.UserID = profile.UserID
		}
		contract = &draft
	}
	var checklistCfg *checklistConfig
	if in.OnboardingTemplateID != "" {
		checklistCfg = &checklistConfig{TemplateID: in.OnboardingTemplateID}
	}

	created, err := s.creator.create(ctx, profileCreationInput{
		Auth:      auth,
		Profile:   profile,
		Contract:  contract,
		Checklist: checklistCfg,
	})
	if err != nil {
		return OnboardEmployeeResult{}, err
	}
	result.ProfileID = created.Profile.ID
	result.ChecklistInstanceID = created.ChecklistInstanceID
	if created.Contract != nil {
		result.ContractID = created.Contract.ID
	}

	if len(in.EligibleLeaveTypes) > 0 {
		ensured, err := s.deps.Leave.EnsureEmployeeBalances(ctx, auth, created.Profile.EmployeeNumber, s.deps.Now().Year(), in.EligibleLeaveTypes)
		if err != nil {
			return result, errors.Wrap(err, "ensure leave balances")
		}
		result.EnsuredBalances = ensured.EnsuredBalances
	}

	if in.Invite != nil {
		if s.deps.Invitations == nil {
			return result, errors.New("invitation issuer is required when an invite is requested")
		}
		token, err := s.deps.Invitations.IssueInvitation(ctx, auth, InvitationRequest{
			Email:          in.Invite.Email,
			EmployeeNumber: created.Profile.EmployeeNumber,
			OnboardingData: onboardingDataFor(*created.Profile, in),
		})
		if err != nil {
			return result, errors.Wrap(err, "issue invitation")
		}
		result.InvitationToken = token
	}

	if err := invalidateAfterMutation(ctx, s.deps.Cache, auth,
		ScopeProfiles, ScopeContracts, ScopeLeaveRequests, ScopeLeaveBalances, ScopeAbsences,
	); err != nil {
		return result, err
	}

	emitAudit(ctx, s.deps.Audit, AuditEvent{
		OrgID:      auth.OrgID,
		UserID:     auth.UserID,
		EventType:  "employee.onboarded",
		Action:     "create",
		Resource:   ResourceEmployeeProfile,
		ResourceID: result.ProfileID,
		Payload: map[string]any{
			"employeeNumber":     created.Profile.EmployeeNumber,
			"contractCreated":    created.ContractCreated(),
			"eligibleLeaveTypes": in.EligibleLeaveTypes,
			"invited":            result.InvitationToken != "",
		},
		ResidencyZone:  string(auth.DataResidency),
		Classification: string(auth.DataClassification),
		AuditSource:    auth.AuditSource,
		CorrelationID:  auth.CorrelationID,
	})
	return result, nil
}

func onboardingDataFor(p employee.Profile, in OnboardEmployeeInput) map[string]any {
	data := map[string]any{
		"employeeNumber": p.EmployeeNumber,
		"jobTitle":       p.JobTitle,
		"employmentType": string(p.EmploymentType),
		"displayName":    p.DisplayName,
	}
	if in.OnboardingTemplateID != "" {
		data["onboardingTemplateId"] = in.OnboardingTemplateID
	}
	if len(in.EligibleLeaveTypes) > 0 {
		data["eligibleLeaveTypes"] = in.EligibleLeaveTypes
	}
	return data
}

type SummaryInput struct {
	UserID    string `validate:"omitempty,uuid"`
	ProfileID string
	Year      int `validate:"omitempty,min=2000,max=2100"`
}

type EmployeeSummary struct {
	Profile           *employee.Profile
	Contract          *employee.Contract
	LeaveBalances     []leave.Balance
	LeaveRequestsOpen []leave.Request
	AbsencesOpen      []absence.Absence
	ComplianceStatus  *compliance.Status
}

func emptySummary() EmployeeSummary {
	return EmployeeSummary{
		LeaveBalances:     []leave.Balance{},
		LeaveRequestsOpen: []leave.Request{},
		AbsencesOpen:      []absence.Absence{},
	}
}

func (s *PeopleService) GetEmployeeSummary(ctx context.Context, auth security.Authorization, in SummaryInput) (summary EmployeeSummary, err error) {
	auth, err = s.begin(ctx, auth, "get_employee_summary", in, AccessRequest{
		Action:       "read",
		ResourceType: ResourcePeople,
		ResourceAttributes: map[string]any{
			"userId":    in.UserID,
			"profileId": in.ProfileID,
		},
	})
	if err != nil {
		return EmployeeSummary{}, err
	}
	if in.UserID == "" && in.ProfileID == "" {
		return EmployeeSummary{}, validationError("PEOPLE_INVALID_INPUT", "Either userId or profileId is required.", nil)
	}
	ctx, finish := startOperation(ctx, "get_employee_summary", auth)
	defer finish(&err)

	year := in.Year
	if year == 0 {
		year = s.deps.Now().Year()
	}

	profile, err := s.findProfile(ctx, auth, in.ProfileID, in.UserID)
	if err != nil {
		return EmployeeSummary{}, err
	}
	if profile == nil {
		return emptySummary(), nil
	}

	scopes := []cache.Scope{ScopeProfiles, ScopeContracts, ScopeLeaveBalances, ScopeLeaveRequests, ScopeAbsences, ScopeCompliance}
	keys := cacheKeys(auth, scopes...)
	entry := cache.Entry{Name: summaryCacheEntry, ID: fmt.Sprintf("%s:%d", profile.ID, year)}
	cacheable := s.deps.Cache != nil && auth.DataClassification == security.ClassificationOfficial
	if cacheable {
		var cached EmployeeSummary
		hit, err := s.deps.Cache.Load(ctx, keys, entry, &cached)
		if err != nil {
			logWithFields(ctx, logrus.WarnLevel, "people: summary cache lookup failed", mergeFields(
				operationFields(auth, "get_employee_summary"),
				logrus.Fields{"error": err.Error()},
			))
		}
		if hit {
			return cached, nil
		}
	}

	summary = emptySummary()
	summary.Profile = profile
	g, gctx := errgroup.WithContext(ctx)
	if profile.UserID != "" && s.deps.Contracts != nil {
		g.Go(func() error {
			c, err := s.deps.Contracts.GetLatestForUser(gctx, auth.OrgID, profile.UserID)
			if errors.Is(err, employee.ErrContractNotFound) {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "get contract")
			}
			summary.Contract = c
			return nil
		})
	}
	if profile.EmployeeNumber != "" && s.deps.Leave != nil {
		g.Go(func() error {
			balances, err := s.deps.Leave.GetLeaveBalances(gctx, auth, profile.EmployeeNumber, year)
			if err != nil {
				return errors.Wrap(err, "get leave balances")
			}
			if balances != nil {
				summary.LeaveBalances = balances
			}
			return nil
		})
		g.Go(func() error {
			requests, err := s.deps.Leave.ListLeaveRequests(gctx, auth, leave.RequestFilter{
				EmployeeNumber: profile.EmployeeNumber,
				Statuses:       []leave.RequestStatus{leave.RequestSubmitted},
				Year:           year,
			})
			if err != nil {
				return errors.Wrap(err, "list leave requests")
			}
			if requests != nil {
				summary.LeaveRequestsOpen = requests
			}
			return nil
		})
	}
	if profile.UserID != "" && s.deps.Absences != nil {
		g.Go(func() error {
			items, err := s.deps.Absences.ListAbsences(gctx, auth, absence.Filter{UserID: profile.UserID})
			if err != nil {
				return errors.Wrap(err, "list absences")
			}
			for _, a := range items {
				if a.IsOpen() {
					summary.AbsencesOpen = append(summary.AbsencesOpen, a)
				}
			}
			return nil
		})
	}
	if profile.UserID != "" && s.deps.ComplianceStatus != nil {
		g.Go(func() error {
			status, err := s.deps.ComplianceStatus.GetStatusForUser(gctx, auth, profile.UserID)
			if err != nil {
				return errors.Wrap(err, "get compliance status")
			}
			summary.ComplianceStatus = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EmployeeSummary{}, err
	}

	registerCacheScopes(ctx, s.deps.Cache, auth, scopes...)
	if cacheable {
		if err := s.deps.Cache.Save(ctx, keys, entry, summary); err != nil {
			logWithFields(ctx, logrus.WarnLevel, "people: summary cache store failed", mergeFields(
				operationFields(auth, "get_employee_summary"),
				logrus.Fields{"error": err.Error()},
			))
		}
	}
	return summary, nil
}

// findProfile prefers the profile id. A missing profile yields nil.
func (s *PeopleService) findProfile(ctx context.Context, auth security.Authorization, profileID, userID string) (*employee.Profile, error) {
	var (
		profile *employee.Profile
		err     error
	)
	if profileID != "" {
		profile, err = s.deps.Profiles.GetByID(ctx, auth.OrgID, profileID)
	} else {
		profile, err = s.deps.Profiles.GetByUserID(ctx, auth.OrgID, userID)
	}
	if errors.Is(err, employee.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get employee profile")
	}
	return profile, nil
}

// resolveIdentity loads the profile and its identity. Profiles without an
// employee number are rejected.
func (s *PeopleService) resolveIdentity(ctx context.Context, auth security.Authorization, profileID string) (*employee.Profile, employee.Identity, error) {
	profile, err := s.findProfile(ctx, auth, profileID, "")
	if err != nil {
		return nil, employee.Identity{}, err
	}
	identity, err := employee.IdentityFromProfile(profile)
	if err != nil {
		return nil, employee.Identity{}, validationError("PEOPLE_PROFILE_IDENTITY_MISSING", "Profile not found or missing employee number.", map[string]any{
			"profileId": profileID,
		})
	}
	return profile, identity, nil
}

type UpdateEligibilityInput struct {
	ProfileID          string   `validate:"required"`
	EligibleLeaveTypes []string `validate:"required"`
	Year               int      `validate:"omitempty,min=2000,max=2100"`
}

type UpdateEligibilityResult struct {
	Profile         *employee.Profile
	EnsuredBalances []leave.Balance
}

func (s *PeopleService) UpdateEligibility(ctx context.Context, auth security.Authorization, in UpdateEligibilityInput) (result UpdateEligibilityResult, err error) {
	auth, err = s.begin(ctx, auth, "update_eligibility", in, AccessRequest{
		Action:       "update",
		ResourceType: ResourceEmployeeProfile,
		ResourceAttributes: map[string]any{
			"profileId":          in.ProfileID,
			"eligibleLeaveTypes": in.EligibleLeaveTypes,
		},
	})
	if err != nil {
		return UpdateEligibilityResult{}, err
	}
	ctx, finish := startOperation(ctx, "update_eligibility", auth)
	defer finish(&err)

	_, identity, err := s.resolveIdentity(ctx, auth, in.ProfileID)
	if err != nil {
		return UpdateEligibilityResult{}, err
	}

	types := append([]string(nil), in.EligibleLeaveTypes...)
	updated, err := s.deps.Profiles.Update(ctx, auth.OrgID, identity.ProfileID, employee.ProfileUpdate{
		EligibleLeaveTypes: &types,
	})
	if err != nil {
		return UpdateEligibilityResult{}, errors.Wrap(mapPgErrorToServiceError(err), "update eligibility")
	}
	result.Profile = updated

	year := in.Year
	if year == 0 {
		year = s.deps.Now().Year()
	}
	ensured, err := s.deps.Leave.EnsureEmployeeBalances(ctx, auth, identity.EmployeeNumber, year, types)
	if err != nil {
		return result, errors.Wrap(err, "ensure leave balances")
	}
	result.EnsuredBalances = ensured.EnsuredBalances

	scopes := append([]cache.Scope{ScopeProfiles}, s.deps.EligibilityInvalidationScopes...)
	if err := invalidateAfterMutation(ctx, s.deps.Cache, auth, scopes...); err != nil {
		return result, err
	}

	emitAudit(ctx, s.deps.Audit, AuditEvent{
		OrgID:      auth.OrgID,
		UserID:     auth.UserID,
		EventType:  "employee.eligibility.updated",
		Action:     "update",
		Resource:   ResourceEmployeeProfile,
		ResourceID: identity.ProfileID,
		Payload: map[string]any{
			"employeeNumber":     identity.EmployeeNumber,
			"eligibleLeaveTypes": types,
			"year":               year,
		},
		ResidencyZone:  string(auth.DataResidency),
		Classification: string(auth.DataClassification),
		AuditSource:    auth.AuditSource,
		CorrelationID:  auth.CorrelationID,
	})
	return result, nil
}

type Termination struct {
	Reason string    `validate:"required"`
	Date   time.Time `validate:"required"`
}

type TerminateEmployeeInput struct {
	ProfileID          string `validate:"required"`
	ContractID         string
	Termination        Termination
	CancelPendingLeave bool
	// CloseAbsences defaults to true when nil.
	CloseAbsences *bool
}

func (in TerminateEmployeeInput) closeAbsences() bool {
	return in.CloseAbsences == nil || *in.CloseAbsences
}

type TerminateEmployeeResult struct {
	Profile                *employee.Profile
	Contract               *employee.Contract
	CancelledLeaveRequests []string
	CancelledAbsences      []string
}

func (s *PeopleService) TerminateEmployee(ctx context.Context, auth security.Authorization, in TerminateEmployeeInput) (result TerminateEmployeeResult, err error) {
	auth, err = s.begin(ctx, auth, "terminate_employee", in, AccessRequest{
		Action:       "terminate",
		ResourceType: ResourcePeople,
		ResourceAttributes: map[string]any{
			"profileId":  in.ProfileID,
			"contractId": in.ContractID,
		},
	})
	if err != nil {
		return TerminateEmployeeResult{}, err
	}
	ctx, finish := startOperation(ctx, "terminate_employee", auth)
	defer finish(&err)

	_, identity, err := s.resolveIdentity(ctx, auth, in.ProfileID)
	if err != nil {
		return TerminateEmployeeResult{}, err
	}

	status := employee.StatusTerminated
	endDate := in.Termination.Date
	updated, err := s.deps.Profiles.Update(ctx, auth.OrgID, identity.ProfileID, employee.ProfileUpdate{
		EmploymentStatus: &status,
		EndDate:          &endDate,
	})
	if err != nil {
		return TerminateEmployeeResult{}, errors.Wrap(mapPgErrorToServiceError(err), "terminate profile")
	}
	result.Profile = updated

	if in.ContractID != "" {
		reason := in.Termination.Reason
		contract, err := s.deps.Contracts.Update(ctx, auth.OrgID, in.ContractID, employee.ContractUpdate{
			TerminationReason: &reason,
			EndDate:           &endDate,
		})
		if err != nil {
			return result, errors.Wrap(mapPgErrorToServiceError(err), "terminate contract")
		}
		result.Contract = contract
	}

	if in.CancelPendingLeave {
		ids, err := s.cancelPendingLeave(ctx, auth, identity, in.Termination.Reason)
		if err != nil {
			return result, err
		}
		result.CancelledLeaveRequests = ids
	}

	if in.closeAbsences() && identity.Linked() {
		ids, err := s.cancelOpenAbsences(ctx, auth, identity, in.Termination.Reason)
		if err != nil {
			return result, err
		}
		result.CancelledAbsences = ids
	}

	if err := invalidateAfterMutation(ctx, s.deps.Cache, auth,
		ScopeProfiles, ScopeContracts, ScopeLeaveRequests, ScopeLeaveBalances, ScopeAbsences, ScopeIdentity,
	); err != nil {
		return result, err
	}

	emitAudit(ctx, s.deps.Audit, AuditEvent{
		OrgID:      auth.OrgID,
		UserID:     auth.UserID,
		EventType:  "employee.terminated",
		Action:     "terminate",
		Resource:   ResourceEmployeeProfile,
		ResourceID: identity.ProfileID,
		Payload: map[string]any{
			"employeeNumber":         identity.EmployeeNumber,
			"contractId":             in.ContractID,
			"terminationDate":        endDate.Format(time.DateOnly),
			"cancelledLeaveRequests": len(result.CancelledLeaveRequests),
			"cancelledAbsences":      len(result.CancelledAbsences),
		},
		ResidencyZone:  string(auth.DataResidency),
		Classification: string(auth.DataClassification),
		AuditSource:    auth.AuditSource,
		CorrelationID:  auth.CorrelationID,
	})
	return result, nil
}

// cancelPendingLeave cancels every submitted request in parallel. Requests
// cancelled before a failure stay cancelled.
func (s *PeopleService) cancelPendingLeave(ctx context.Context, auth security.Authorization, identity employee.Identity, reason string) ([]string, error) {
	requests, err := s.deps.Leave.ListLeaveRequests(ctx, auth, leave.RequestFilter{
		EmployeeNumber: identity.EmployeeNumber,
		Statuses:       []leave.RequestStatus{leave.RequestSubmitted},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list pending leave")
	}
	ids := make([]string, 0, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range requests {
		if r.Status != leave.RequestSubmitted {
			continue
		}
		ids = append(ids, r.ID)
		g.Go(func() error {
			if err := s.deps.Leave.CancelLeaveRequest(gctx, auth, r.ID, auth.UserID, reason); err != nil {
				return errors.Wrapf(err, "cancel leave request %s", r.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *PeopleService) cancelOpenAbsences(ctx context.Context, auth security.Authorization, identity employee.Identity, reason string) ([]string, error) {
	items, err := s.deps.Absences.ListAbsences(ctx, auth, absence.Filter{UserID: identity.UserID, IncludeClosed: false})
	if err != nil {
		return nil, errors.Wrap(err, "list absences")
	}
	ids := make([]string, 0, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range items {
		if !a.IsOpen() {
			continue
		}
		ids = append(ids, a.ID)
		g.Go(func() error {
			if err := s.deps.Absences.CancelAbsence(gctx, auth, a.ID, reason); err != nil {
				return errors.Wrapf(err, "cancel absence %s", a.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

type AssignCompliancePackInput struct {
	UserIDs         []string `validate:"required,min=1,dive,required"`
	TemplateID      string   `validate:"required"`
	TemplateItemIDs []string `validate:"required,min=1,dive,required"`
}

func (s *PeopleService) AssignCompliancePack(ctx context.Context, auth security.Authorization, in AssignCompliancePackInput) (err error) {
	auth, err = s.begin(ctx, auth, "assign_compliance_pack", in, AccessRequest{
		Action:       "assign",
		ResourceType: ResourceCompliance,
		ResourceAttributes: map[string]any{
			"templateId": in.TemplateID,
			"userCount":  len(in.UserIDs),
		},
	})
	if err != nil {
		return err
	}
	ctx, finish := startOperation(ctx, "assign_compliance_pack", auth)
	defer finish(&err)

	if err := s.deps.Compliance.AssignCompliancePack(ctx, auth, compliance.PackAssignment{
		UserIDs:         in.UserIDs,
		TemplateID:      in.TemplateID,
		TemplateItemIDs: in.TemplateItemIDs,
	}); err != nil {
		return errors.Wrap(err, "assign compliance pack")
	}

	if err := invalidateAfterMutation(ctx, s.deps.Cache, auth, ScopeProfiles, ScopeCompliance); err != nil {
		return err
	}

	emitAudit(ctx, s.deps.Audit, AuditEvent{
		OrgID:     auth.OrgID,
		UserID:    auth.UserID,
		EventType: "compliance.pack.assigned",
		Action:    "assign",
		Resource:  ResourceCompliance,
		Payload: map[string]any{
			"templateId":      in.TemplateID,
			"userIds":         in.UserIDs,
			"templateItemIds": in.TemplateItemIDs,
		},
		ResidencyZone:  string(auth.DataResidency),
		Classification: string(auth.DataClassification),
		AuditSource:    auth.AuditSource,
		CorrelationID:  auth.CorrelationID,
	})
	return nil
}
