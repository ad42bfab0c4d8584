package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/checklist"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const checklistCreationSource = "create-employee-profile"

type profileCreationInput struct {
	Auth      security.Authorization
	Profile   employee.Profile
	Contract  *employee.Contract
	Checklist *checklistConfig
}

type profileCreationResult struct {
	Profile             *employee.Profile
	Contract            *employee.Contract
	ChecklistInstanceID string
}

func (r profileCreationResult) ContractCreated() bool {
	return r.Contract != nil
}

// profileCreator creates a profile, its optional contract and onboarding
// checklist.
type profileCreator struct {
	profiles   employee.ProfileRepository
	contracts  employee.ContractRepository
	templates  checklist.TemplateRepository
	instances  checklist.InstanceRepository
	tx         TransactionRunner
	guard      AccessGuard
	cache      CacheCoordinator
	now        Clock
	invalidate bool
}

func (c *profileCreator) create(ctx context.Context, in profileCreationInput) (profileCreationResult, error) {
	auth := in.Auth
	profile := in.Profile
	profile.OrgID = auth.OrgID
	if profile.EmploymentType == "" {
		profile.EmploymentType = employee.EmploymentFullTime
	}
	if profile.EmploymentStatus == "" {
		profile.EmploymentStatus = employee.StatusActive
	}
	profile.DataResidency = auth.DataResidency
	profile.DataClassification = auth.DataClassification

	if err := authorizePeople(ctx, c.guard, auth, AccessRequest{
		Action:       "create",
		ResourceType: ResourceEmployeeProfile,
		ResourceAttributes: map[string]any{
			"orgId":          auth.OrgID,
			"userId":         profile.UserID,
			"employeeNumber": profile.EmployeeNumber,
			"departmentId":   profile.DepartmentID,
			"jobTitle":       profile.JobTitle,
			"employmentType": string(profile.EmploymentType),
		},
	}); err != nil {
		return profileCreationResult{}, err
	}

	var contract *employee.Contract
	if in.Contract != nil {
		draft := *in.Contract
		draft.OrgID = auth.OrgID
		draft.DataResidency = auth.DataResidency
		draft.DataClassification = auth.DataClassification
		contract = &draft
		if err := authorizePeople(ctx, c.guard, auth, AccessRequest{
			Action:       "create",
			ResourceType: ResourceContract,
			ResourceAttributes: map[string]any{
				"orgId":        auth.OrgID,
				"userId":       draft.UserID,
				"departmentId": draft.DepartmentID,
				"contractType": string(draft.ContractType),
				"jobTitle":     draft.JobTitle,
				"startDate":    draft.StartDate.Format(time.RFC3339),
			},
		}); err != nil {
			return profileCreationResult{}, err
		}
		if c.contracts == nil {
			return profileCreationResult{}, errors.New("employment contract repository is required when contract data is provided")
		}
	}

	var out profileCreationResult
	runner := c.tx
	if runner == nil {
		runner = directRunner{}
	}
	err := runner.RunInTx(ctx, auth.OrgID, func(txCtx context.Context) error {
		created, err := c.profiles.Create(txCtx, profile)
		if err != nil {
			return errors.Wrap(mapPgErrorToServiceError(err), "create employee profile")
		}
		out.Profile = created
		if contract == nil {
			return nil
		}
		createdContract, err := c.contracts.Create(txCtx, *contract)
		if err != nil {
			return errors.Wrap(mapPgErrorToServiceError(err), "create employment contract")
		}
		out.Contract = createdContract
		return nil
	})
	if err != nil {
		return profileCreationResult{}, err
	}

	if in.Checklist != nil {
		id, err := c.instantiateChecklist(ctx, auth, *in.Checklist, profile.EmployeeNumber)
		if err != nil {
			return out, err
		}
		out.ChecklistInstanceID = id
	}

	if c.invalidate {
		if err := invalidateAfterMutation(ctx, c.cache, auth, ScopeProfiles); err != nil {
			return out, err
		}
		if out.ContractCreated() {
			if err := invalidateAfterMutation(ctx, c.cache, auth, ScopeContracts); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// instantiateChecklist reuses an active instance for the employee. An unknown
// template yields no instance.
func (c *profileCreator) instantiateChecklist(ctx context.Context, auth security.Authorization, cfg checklistConfig, employeeNumber string) (string, error) {
	if cfg.TemplateID == "" {
		return "", nil
	}
	if c.templates == nil || c.instances == nil {
		return "", errors.New("checklist repositories must be provided when an onboarding template is selected")
	}

	existing, err := c.instances.FindActive(ctx, auth.OrgID, employeeNumber)
	if err != nil {
		return "", errors.Wrap(err, "find active checklist")
	}
	if existing != nil {
		return existing.ID, nil
	}

	tmpl, err := c.templates.GetByID(ctx, auth.OrgID, cfg.TemplateID)
	if err != nil {
		return "", errors.Wrap(err, "get checklist template")
	}
	if tmpl == nil {
		return "", nil
	}

	metadata := map[string]any{
		"source":   checklistCreationSource,
		"issuedAt": c.clock()().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range cfg.Metadata {
		metadata[k] = v
	}
	created, err := c.instances.Create(ctx, checklist.NewInstance(auth.OrgID, employeeNumber, *tmpl, metadata))
	if err != nil {
		return "", errors.Wrap(err, "create checklist instance")
	}
	return created.ID, nil
}

func (c *profileCreator) clock() Clock {
	if c.now == nil {
		return time.Now
	}
	return c.now
}
