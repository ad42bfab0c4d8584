package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/membership"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/checklist"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/cache"
	"github.com/iota-uz/hr-people/pkg/composables"
)

const (
	inviteAuditSource = "hr.complete-onboarding-invite"
	inviteSagaName    = "complete_onboarding_invite"
	systemRoleKey     = "system"
)

// Saga step names, in execution order.
const (
	StepLookupInvitation   = "lookup_invitation"
	StepValidateInvitation = "validate_invitation"
	StepLoadOrganization   = "load_organization"
	StepExtractPayload     = "extract_payload"
	StepSyncIdentity       = "sync_identity"
	StepBuildDrafts        = "build_drafts"
	StepResolveProfile     = "resolve_existing_profile"
	StepEnsureMembership   = "ensure_membership"
	StepProvisionProfile   = "provision_profile"
	StepRefetchProfile     = "refetch_profile"
	StepMarkAccepted       = "mark_invitation_accepted"
	StepApplyAutomation    = "apply_automation"
	StepRecordAudit        = "record_audit"
)

type InvitationSagaDependencies struct {
	Invitations        invitation.Repository
	Organizations      membership.OrganizationRepository
	Profiles           employee.ProfileRepository
	Contracts          employee.ContractRepository
	Memberships        membership.Repository
	Billing            BillingService
	Users              UserSyncer
	ChecklistTemplates checklist.TemplateRepository
	ChecklistInstances checklist.InstanceRepository
	Transactions       TransactionRunner
	Guard              AccessGuard
	Cache              CacheCoordinator
	Audit              AuditRecorder
	Automation         *AutomationPipeline
	CompensationPolicy CompensationPolicy
	Now                Clock
	NewCorrelationID   func() string
}

type CompleteOnboardingInviteInput struct {
	Token      string `validate:"required"`
	UserID     string `validate:"required,uuid"`
	ActorEmail string `validate:"required,email"`
	Request    composables.RequestMeta
}

type CompleteOnboardingInviteResult struct {
	Success             bool
	OrganizationID      string
	OrganizationName    string
	EmployeeNumber      string
	ProfileID           string
	Roles               []string
	AlreadyMember       bool
	ContractCreated     *bool
	ChecklistInstanceID string
	Automation          AutomationResult
	Steps               StepLog
}

// InvitationSaga completes an accepted onboarding invitation: it links or
// creates the employee profile, ensures membership and runs onboarding
// automation. Acceptance is guarded only by the invitation status transition.
type InvitationSaga struct {
	deps    InvitationSagaDependencies
	creator *profileCreator
}

func NewInvitationSaga(deps InvitationSagaDependencies) *InvitationSaga {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewCorrelationID == nil {
		deps.NewCorrelationID = func() string { return uuid.NewString() }
	}
	if deps.CompensationPolicy == "" {
		deps.CompensationPolicy = CompensationNone
	}
	return &InvitationSaga{
		deps: deps,
		creator: &profileCreator{
			profiles:   deps.Profiles,
			contracts:  deps.Contracts,
			templates:  deps.ChecklistTemplates,
			instances:  deps.ChecklistInstances,
			tx:         deps.Transactions,
			guard:      deps.Guard,
			cache:      deps.Cache,
			now:        deps.Now,
			invalidate: true,
		},
	}
}

// inviteState is threaded through the saga steps.
type inviteState struct {
	invitation     *invitation.Invitation
	organization   *membership.Organization
	auth           security.Authorization
	payload        onboardingPayload
	employeeNumber string
	profileDraft   employee.Profile
	contractDraft  *employee.Contract
	checklist      *checklistConfig
	existing       *employee.Profile
	alreadyMember  bool
	created        profileCreationResult
	contract       *employee.Contract
	checklistID    string
	profile        *employee.Profile
	automation     AutomationResult
}

func (s *InvitationSaga) CompleteOnboardingInvite(ctx context.Context, in CompleteOnboardingInviteInput) (*CompleteOnboardingInviteResult, error) {
	if err := security.Validator().Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	if in.Request != (composables.RequestMeta{}) {
		ctx = composables.WithRequestMeta(ctx, in.Request)
	}

	run := newSagaRun(inviteSagaName, security.Authorization{}, s.deps.CompensationPolicy, s.deps.Now)
	st := &inviteState{}

	steps := []struct {
		name string
		fn   func(ctx context.Context) (StepOutcome, error)
	}{
		{StepLookupInvitation, func(ctx context.Context) (StepOutcome, error) { return s.lookupInvitation(ctx, st, in) }},
		{StepValidateInvitation, func(ctx context.Context) (StepOutcome, error) { return s.validateInvitation(st, in) }},
		{StepLoadOrganization, func(ctx context.Context) (StepOutcome, error) { return s.loadOrganization(ctx, run, st, in) }},
		{StepExtractPayload, func(ctx context.Context) (StepOutcome, error) { return s.extractPayload(st) }},
		{StepSyncIdentity, func(ctx context.Context) (StepOutcome, error) { return s.syncIdentity(ctx, st, in) }},
		{StepBuildDrafts, func(ctx context.Context) (StepOutcome, error) { return s.buildDrafts(st, in) }},
		{StepResolveProfile, func(ctx context.Context) (StepOutcome, error) { return s.resolveExistingProfile(ctx, run, st, in) }},
		{StepEnsureMembership, func(ctx context.Context) (StepOutcome, error) { return s.ensureMembership(ctx, run, st, in) }},
		{StepProvisionProfile, func(ctx context.Context) (StepOutcome, error) { return s.provisionProfile(ctx, run, st, in) }},
		{StepRefetchProfile, func(ctx context.Context) (StepOutcome, error) { return s.refetchProfile(ctx, st) }},
		{StepMarkAccepted, func(ctx context.Context) (StepOutcome, error) { return s.markAccepted(ctx, run, st, in) }},
		{StepApplyAutomation, func(ctx context.Context) (StepOutcome, error) { return s.applyAutomation(ctx, st) }},
		{StepRecordAudit, func(ctx context.Context) (StepOutcome, error) { return s.recordAudit(ctx, st, in) }},
	}

	var finish func(*error)
	var err error
	for _, step := range steps {
		if err = run.run(ctx, step.name, step.fn); err != nil {
			break
		}
		if step.name == StepLoadOrganization {
			ctx, finish = startOperation(ctx, "complete_onboarding_invite", st.auth)
		}
	}
	if err != nil {
		err = run.fail(ctx, err)
		if finish != nil {
			finish(&err)
		}
		return nil, err
	}
	defer finish(&err)

	var contractCreated *bool
	if st.created.ContractCreated() || st.contract != nil {
		created := true
		contractCreated = &created
	}
	return &CompleteOnboardingInviteResult{
		Success:             true,
		OrganizationID:      st.organization.ID,
		OrganizationName:    st.organization.Name,
		EmployeeNumber:      st.employeeNumber,
		ProfileID:           st.profile.ID,
		Roles:               resolveRoles(st.payload.Roles),
		AlreadyMember:       st.alreadyMember,
		ContractCreated:     contractCreated,
		ChecklistInstanceID: st.checklistID,
		Automation:          st.automation,
		Steps:               run.log,
	}, nil
}

func (s *InvitationSaga) lookupInvitation(ctx context.Context, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	token := invitation.NormalizeToken(in.Token)
	inv, err := s.deps.Invitations.GetByToken(ctx, token)
	if errors.Is(err, invitation.ErrNotFound) || (err == nil && inv == nil) {
		return "", notFound("Onboarding invitation", map[string]any{"token": token})
	}
	if err != nil {
		return "", errors.Wrap(err, "get invitation")
	}
	st.invitation = inv
	return StepCommitted, nil
}

func (s *InvitationSaga) validateInvitation(st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	inv := st.invitation
	if !inv.IssuedTo(in.ActorEmail) {
		return "", validationError("PEOPLE_INVITATION_EMAIL_MISMATCH", "Invitation was issued to a different email.", nil)
	}
	if !inv.IsPending() {
		return "", validationError("PEOPLE_INVITATION_NOT_PENDING", "Onboarding invitation is no longer pending.", map[string]any{
			"token":  inv.Token,
			"status": string(inv.Status),
		})
	}
	if inv.IsExpired(s.deps.Now()) {
		return "", validationError("PEOPLE_INVITATION_EXPIRED", "Onboarding invitation has expired.", map[string]any{
			"token": inv.Token,
		})
	}
	return StepCommitted, nil
}

func (s *InvitationSaga) loadOrganization(ctx context.Context, run *sagaRun, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	org, err := s.deps.Organizations.GetByID(ctx, st.invitation.OrgID)
	if errors.Is(err, membership.ErrOrganizationNotFound) || (err == nil && org == nil) {
		return "", notFound("Organization", map[string]any{"orgId": st.invitation.OrgID})
	}
	if err != nil {
		return "", errors.Wrap(err, "get organization")
	}
	st.organization = org

	auth := security.NewAuthorization(
		org.ID,
		in.UserID,
		systemRoleKey,
		org.DataResidency,
		org.DataClassification,
		inviteAuditSource,
		s.deps.NewCorrelationID(),
	)
	if err := auth.Validate(); err != nil {
		return "", invalidAuthorization(err)
	}
	st.auth = auth
	run.auth = auth
	return StepCommitted, nil
}

func (s *InvitationSaga) extractPayload(st *inviteState) (StepOutcome, error) {
	st.payload = extractOnboardingPayload(st.invitation.OnboardingData)
	number, err := st.payload.employeeNumber()
	if err != nil {
		return "", err
	}
	st.employeeNumber = number
	return StepCommitted, nil
}

func (s *InvitationSaga) syncIdentity(ctx context.Context, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	if s.deps.Users == nil {
		return StepSkipped, nil
	}
	displayName := st.payload.DisplayName
	if displayName == "" {
		displayName = in.ActorEmail
	}
	if err := s.deps.Users.UpsertUser(ctx, SyncedUser{
		UserID:      in.UserID,
		Email:       in.ActorEmail,
		DisplayName: displayName,
	}); err != nil {
		return "", errors.Wrap(err, "sync user")
	}
	return StepCommitted, nil
}

func (s *InvitationSaga) buildDrafts(st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	st.profileDraft = buildProfileDraft(st.payload, st.auth, in.UserID, st.employeeNumber, st.invitation)
	st.contractDraft = buildContractDraft(st.payload, st.auth, in.UserID, s.deps.Now())
	st.checklist = buildChecklistConfig(st.payload, st.invitation.Token)
	return StepCommitted, nil
}

// canLinkExistingProfile allows claiming a profile that is not linked to the
// actor when its email matches the invitation or it is marked preboarding.
func canLinkExistingProfile(profile *employee.Profile, targetEmail string) bool {
	if profile == nil {
		return false
	}
	return profile.MatchesEmail(targetEmail) || profile.IsPreboarding()
}

// linkProfileIfNeeded returns profile unchanged when it already belongs to
// userID. Otherwise the profile is linked and a copy carrying userID returned.
func linkProfileIfNeeded(ctx context.Context, profiles employee.ProfileRepository, orgID string, profile *employee.Profile, userID string) (*employee.Profile, error) {
	if profile.LinkedTo(userID) {
		return profile, nil
	}
	if _, err := profiles.LinkToUser(ctx, orgID, profile.EmployeeNumber, userID); err != nil {
		return nil, errors.Wrap(err, "link profile to user")
	}
	linked := *profile
	linked.UserID = userID
	return &linked, nil
}

func (s *InvitationSaga) resolveExistingProfile(ctx context.Context, run *sagaRun, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	existing, err := s.deps.Profiles.FindByEmployeeNumber(ctx, st.auth.OrgID, st.employeeNumber)
	if errors.Is(err, employee.ErrProfileNotFound) {
		return StepSkipped, nil
	}
	if err != nil {
		return "", errors.Wrap(err, "find profile by employee number")
	}
	if existing == nil {
		return StepSkipped, nil
	}

	if !existing.LinkedTo(in.UserID) && !canLinkExistingProfile(existing, st.invitation.TargetEmail) {
		return "", validationError("PEOPLE_EMPLOYEE_NUMBER_TAKEN", "Employee number is already assigned to another user.", map[string]any{
			"employeeNumber": st.employeeNumber,
			"orgId":          st.auth.OrgID,
		})
	}

	previousUser := existing.UserID
	linked, err := linkProfileIfNeeded(ctx, s.deps.Profiles, st.auth.OrgID, existing, in.UserID)
	if err != nil {
		return "", err
	}
	st.existing = linked
	if linked == existing {
		return StepSkipped, nil
	}
	run.compensate(StepResolveProfile, func(ctx context.Context) error {
		_, err := s.deps.Profiles.LinkToUser(ctx, st.auth.OrgID, st.employeeNumber, previousUser)
		return err
	})
	return StepCommitted, nil
}

func (s *InvitationSaga) ensureMembership(ctx context.Context, run *sagaRun, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	existing, err := s.deps.Memberships.Find(ctx, st.auth.OrgID, in.UserID)
	if err != nil && !errors.Is(err, membership.ErrNotFound) {
		return "", errors.Wrap(err, "find membership")
	}
	if existing != nil {
		st.alreadyMember = true
		return StepSkipped, nil
	}

	seed := st.profileDraft
	if st.existing != nil {
		seed = *st.existing
	}
	_, err = s.deps.Memberships.CreateWithProfile(ctx, membership.NewMember{
		Membership: membership.Membership{
			OrgID:           st.auth.OrgID,
			UserID:          in.UserID,
			Roles:           resolveRoles(st.payload.Roles),
			Status:          membership.StatusActive,
			InvitedByUserID: st.invitation.InvitedByUserID,
		},
		Profile: seed,
	})
	if err != nil {
		return "", errors.Wrap(mapPgErrorToServiceError(err), "create membership")
	}
	run.compensate(StepEnsureMembership, func(ctx context.Context) error {
		return s.deps.Memberships.Delete(ctx, st.auth.OrgID, in.UserID)
	})

	if s.deps.Billing != nil {
		if err := s.deps.Billing.SyncSeats(ctx, st.auth.OrgID); err != nil {
			logWithFields(ctx, logrus.WarnLevel, "people: billing seat sync failed", mergeFields(
				operationFields(st.auth, inviteSagaName),
				logrus.Fields{"error": err.Error()},
			))
		}
	}
	return StepCommitted, nil
}

func (s *InvitationSaga) provisionProfile(ctx context.Context, run *sagaRun, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	if st.existing != nil {
		return s.completeExistingProfile(ctx, run, st, in)
	}

	created, err := s.creator.create(ctx, profileCreationInput{
		Auth:      st.auth,
		Profile:   st.profileDraft,
		Contract:  st.contractDraft,
		Checklist: st.checklist,
	})
	if err != nil {
		return "", err
	}
	st.created = created
	st.checklistID = created.ChecklistInstanceID
	run.compensate(StepProvisionProfile, func(ctx context.Context) error {
		if created.Contract != nil {
			if err := s.deps.Contracts.Delete(ctx, st.auth.OrgID, created.Contract.ID); err != nil {
				return errors.Wrap(err, "delete contract")
			}
		}
		if created.Profile == nil {
			return nil
		}
		if err := s.deps.Profiles.Delete(ctx, st.auth.OrgID, created.Profile.ID); err != nil {
			return errors.Wrap(err, "delete profile")
		}
		return nil
	})
	return StepCommitted, nil
}

// completeExistingProfile adds the contract only when the profile belongs to
// the actor and has none yet.
func (s *InvitationSaga) completeExistingProfile(ctx context.Context, run *sagaRun, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	outcome := StepSkipped
	if st.contractDraft != nil && st.existing.LinkedTo(in.UserID) {
		if s.deps.Contracts == nil {
			return "", errors.New("employment contract repository is required when contract data is provided")
		}
		_, err := s.deps.Contracts.GetLatestForUser(ctx, st.auth.OrgID, st.existing.UserID)
		switch {
		case errors.Is(err, employee.ErrContractNotFound):
			if err := authorizePeople(ctx, s.deps.Guard, st.auth, AccessRequest{
				Action:       "create",
				ResourceType: ResourceContract,
				ResourceAttributes: map[string]any{
					"orgId":        st.auth.OrgID,
					"userId":       in.UserID,
					"contractType": string(st.contractDraft.ContractType),
				},
			}); err != nil {
				return "", err
			}
			contract, err := s.deps.Contracts.Create(ctx, *st.contractDraft)
			if err != nil {
				return "", errors.Wrap(mapPgErrorToServiceError(err), "create employment contract")
			}
			st.contract = contract
			outcome = StepCommitted
			run.compensate(StepProvisionProfile, func(ctx context.Context) error {
				return s.deps.Contracts.Delete(ctx, st.auth.OrgID, contract.ID)
			})
		case err != nil:
			return "", errors.Wrap(err, "get employment contract")
		}
	}

	if st.checklist != nil {
		id, err := s.creator.instantiateChecklist(ctx, st.auth, *st.checklist, st.employeeNumber)
		if err != nil {
			return "", err
		}
		st.checklistID = id
		if id != "" {
			outcome = StepCommitted
		}
	}

	scopes := []cache.Scope{ScopeProfiles}
	if st.contract != nil {
		scopes = append(scopes, ScopeContracts)
	}
	if err := invalidateAfterMutation(ctx, s.deps.Cache, st.auth, scopes...); err != nil {
		return "", err
	}
	return outcome, nil
}

func (s *InvitationSaga) refetchProfile(ctx context.Context, st *inviteState) (StepOutcome, error) {
	profile, err := s.deps.Profiles.FindByEmployeeNumber(ctx, st.auth.OrgID, st.employeeNumber)
	if errors.Is(err, employee.ErrProfileNotFound) || (err == nil && profile == nil) {
		return "", notFound("Employee profile", map[string]any{
			"employeeNumber": st.employeeNumber,
			"orgId":          st.auth.OrgID,
		})
	}
	if err != nil {
		return "", errors.Wrap(err, "refetch profile")
	}
	st.profile = profile
	return StepCommitted, nil
}

func (s *InvitationSaga) markAccepted(ctx context.Context, run *sagaRun, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	_, err := s.deps.Invitations.MarkAccepted(ctx, st.auth.OrgID, st.invitation.Token, in.UserID, s.deps.Now())
	if errors.Is(err, invitation.ErrNotPending) {
		return "", validationError("PEOPLE_INVITATION_NOT_PENDING", "Onboarding invitation is no longer pending.", map[string]any{
			"token": st.invitation.Token,
		})
	}
	if err != nil {
		return "", errors.Wrap(err, "mark invitation accepted")
	}
	run.compensate(StepMarkAccepted, func(ctx context.Context) error {
		return s.deps.Invitations.Reopen(ctx, st.auth.OrgID, st.invitation.Token)
	})
	return StepCommitted, nil
}

func (s *InvitationSaga) applyAutomation(ctx context.Context, st *inviteState) (StepOutcome, error) {
	if s.deps.Automation == nil {
		return StepSkipped, nil
	}
	identity, err := employee.IdentityFromProfile(st.profile)
	if err != nil {
		return "", err
	}
	result, err := s.deps.Automation.Apply(ctx, st.auth, AutomationRequest{
		Employee:        identity,
		InvitationToken: st.invitation.Token,
		TargetEmail:     st.invitation.TargetEmail,
		Directives:      automation.DirectivesFromPayload(st.payload.Automation),
	})
	st.automation = result
	if err != nil {
		return "", err
	}
	return StepCommitted, nil
}

func (s *InvitationSaga) recordAudit(ctx context.Context, st *inviteState, in CompleteOnboardingInviteInput) (StepOutcome, error) {
	emitAudit(ctx, s.deps.Audit, AuditEvent{
		OrgID:      st.auth.OrgID,
		UserID:     in.UserID,
		EventType:  "onboarding.invite.accepted",
		Action:     "accept",
		Resource:   ResourceOnboarding,
		ResourceID: st.profile.ID,
		Payload: map[string]any{
			"employeeNumber":        st.employeeNumber,
			"alreadyMember":         st.alreadyMember,
			"profileCreated":        st.created.Profile != nil,
			"contractCreated":       st.created.ContractCreated() || st.contract != nil,
			"checklistInstanceId":   st.checklistID,
			"mentorAssigned":        st.automation.MentorAssigned,
			"workflowRunId":         st.automation.WorkflowRunID,
			"provisioningTaskIds":   st.automation.ProvisioningTaskIDs,
			"documentAssignmentIds": st.automation.DocumentAssignmentIDs,
			"metricsRecorded":       st.automation.MetricsRecorded,
		},
		ResidencyZone:  string(st.auth.DataResidency),
		Classification: string(st.auth.DataClassification),
		AuditSource:    st.auth.AuditSource,
		CorrelationID:  st.auth.CorrelationID,
	})
	return StepCommitted, nil
}
