package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const provisioningInstructions = "Provision onboarding resources"

type AutomationFailurePolicy string

const (
	// AutomationFailureFatal aborts the remaining directives on the first
	// failure and returns it.
	AutomationFailureFatal AutomationFailurePolicy = "fatal"
	// AutomationFailureIsolated records a failure in the directive outcome and
	// continues with the next directive.
	AutomationFailureIsolated AutomationFailurePolicy = "isolated"
)

func ParseAutomationFailurePolicy(v string) (AutomationFailurePolicy, error) {
	switch AutomationFailurePolicy(v) {
	case "", AutomationFailureFatal:
		return AutomationFailureFatal, nil
	case AutomationFailureIsolated:
		return AutomationFailureIsolated, nil
	}
	return "", fmt.Errorf("unknown automation failure policy %q", v)
}

type AutomationDependencies struct {
	Profiles            employee.ProfileRepository
	Mentors             automation.MentorAssignmentRepository
	WorkflowTemplates   automation.WorkflowTemplateRepository
	WorkflowRuns        automation.WorkflowRunRepository
	EmailTemplates      automation.EmailSequenceTemplateRepository
	EmailEnrollments    automation.EmailSequenceEnrollmentRepository
	EmailDeliveries     automation.EmailSequenceDeliveryRepository
	ProvisioningTasks   automation.ProvisioningTaskRepository
	DocumentTemplates   automation.DocumentTemplateRepository
	DocumentAssignments automation.DocumentAssignmentRepository
	MetricDefinitions   automation.MetricDefinitionRepository
	MetricResults       automation.MetricResultRepository
	Guard               AccessGuard
	FailurePolicy       AutomationFailurePolicy
	Now                 Clock
}

type AutomationRequest struct {
	Employee        employee.Identity
	InvitationToken string
	TargetEmail     string
	Directives      []automation.Directive
}

type AutomationResult struct {
	MentorAssigned            bool
	MentorAssignmentID        string
	WorkflowRunID             string
	EmailSequenceEnrollmentID string
	EmailDeliveryIDs          []string
	ProvisioningTaskIDs       []string
	DocumentAssignmentIDs     []string
	MetricsRecorded           []string
	Outcomes                  []automation.DirectiveOutcome
}

// Failed returns the outcomes of directives that failed under the isolated
// policy.
func (r AutomationResult) Failed() []automation.DirectiveOutcome {
	var out []automation.DirectiveOutcome
	for _, o := range r.Outcomes {
		if o.Outcome == automation.OutcomeFailed {
			out = append(out, o)
		}
	}
	return out
}

// AutomationPipeline applies onboarding automation directives for a newly
// accepted employee.
type AutomationPipeline struct {
	deps AutomationDependencies
}

func NewAutomationPipeline(deps AutomationDependencies) *AutomationPipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.FailurePolicy == "" {
		deps.FailurePolicy = AutomationFailureFatal
	}
	return &AutomationPipeline{deps: deps}
}

func (p *AutomationPipeline) Apply(ctx context.Context, auth security.Authorization, req AutomationRequest) (result AutomationResult, err error) {
	ctx, finish := startOperation(ctx, "automation.apply", auth)
	defer finish(&err)

	if err := authorizePeople(ctx, p.deps.Guard, auth, AccessRequest{
		Action:       ActionAutomationApply,
		ResourceType: ResourceOnboarding,
		ResourceAttributes: map[string]any{
			"employeeId": req.Employee.ProfileID,
			"userId":     auth.UserID,
		},
	}); err != nil {
		return AutomationResult{}, err
	}

	result = AutomationResult{
		EmailDeliveryIDs:      []string{},
		ProvisioningTaskIDs:   []string{},
		DocumentAssignmentIDs: []string{},
		MetricsRecorded:       []string{},
	}
	tags := automation.TagsFrom(auth)

	for _, directive := range req.Directives {
		outcome := p.apply(ctx, auth, tags, req, directive, &result)
		result.Outcomes = append(result.Outcomes, outcome)
		recordDirective(outcome.Kind, outcome.Outcome)
		if outcome.Outcome != automation.OutcomeFailed {
			continue
		}
		if p.deps.FailurePolicy == AutomationFailureIsolated {
			logWithFields(ctx, logrus.WarnLevel, "people: automation directive failed", mergeFields(
				operationFields(auth, "automation.apply"),
				logrus.Fields{"directive": string(outcome.Kind), "error": outcome.Err.Error()},
			))
			continue
		}
		return result, errors.Wrapf(outcome.Err, "automation %s", outcome.Kind)
	}
	return result, nil
}

func (p *AutomationPipeline) apply(ctx context.Context, auth security.Authorization, tags automation.Tags, req AutomationRequest, directive automation.Directive, result *AutomationResult) automation.DirectiveOutcome {
	var (
		ids     []string
		skipped bool
		err     error
	)
	switch d := directive.(type) {
	case automation.MentorDirective:
		ids, skipped, err = p.assignMentor(ctx, auth, tags, req, d)
		if err == nil && !skipped {
			result.MentorAssigned = true
			result.MentorAssignmentID = ids[0]
		}
	case automation.WorkflowDirective:
		ids, skipped, err = p.startWorkflow(ctx, auth, tags, req, d)
		if err == nil && !skipped {
			result.WorkflowRunID = ids[0]
		}
	case automation.EmailSequenceDirective:
		var enrollmentID string
		enrollmentID, ids, skipped, err = p.enrollEmailSequence(ctx, auth, tags, req, d)
		if enrollmentID != "" {
			result.EmailSequenceEnrollmentID = enrollmentID
			result.EmailDeliveryIDs = append(result.EmailDeliveryIDs, ids...)
			ids = append([]string{enrollmentID}, ids...)
		}
	case automation.ProvisioningDirective:
		ids, err = p.createProvisioningTasks(ctx, auth, tags, req, d)
		result.ProvisioningTaskIDs = append(result.ProvisioningTaskIDs, ids...)
	case automation.DocumentDirective:
		ids, err = p.assignDocuments(ctx, auth, tags, req, d)
		result.DocumentAssignmentIDs = append(result.DocumentAssignmentIDs, ids...)
		skipped = err == nil && len(ids) == 0
	case automation.MetricDirective:
		var key string
		key, skipped, err = p.recordMetric(ctx, auth, tags, req, d)
		if err == nil && !skipped {
			result.MetricsRecorded = append(result.MetricsRecorded, key)
		}
	default:
		err = fmt.Errorf("unsupported automation directive %T", directive)
	}

	outcome := automation.DirectiveOutcome{Kind: directive.Kind(), IDs: ids}
	switch {
	case err != nil:
		outcome.Outcome = automation.OutcomeFailed
		outcome.Err = err
	case skipped:
		outcome.Outcome = automation.OutcomeSkipped
	default:
		outcome.Outcome = automation.OutcomeApplied
	}
	return outcome
}

func notConfigured(kind automation.Kind) error {
	return fmt.Errorf("%s automation repository not configured", kind)
}

func withSource() map[string]any {
	return map[string]any{"source": automation.Source}
}

// assignMentor skips silently when the mentor cannot be resolved to a user.
func (p *AutomationPipeline) assignMentor(ctx context.Context, auth security.Authorization, tags automation.Tags, req AutomationRequest, d automation.MentorDirective) ([]string, bool, error) {
	if p.deps.Profiles == nil || p.deps.Mentors == nil {
		return nil, false, notConfigured(automation.KindMentor)
	}
	mentor, err := p.deps.Profiles.FindByEmployeeNumber(ctx, auth.OrgID, d.MentorEmployeeNumber)
	if errors.Is(err, employee.ErrProfileNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "find mentor profile")
	}
	if mentor == nil || mentor.UserID == "" {
		return nil, true, nil
	}
	created, err := p.deps.Mentors.CreateAssignment(ctx, automation.MentorAssignment{
		OrgID:        auth.OrgID,
		EmployeeID:   req.Employee.ProfileID,
		MentorOrgID:  auth.OrgID,
		MentorUserID: mentor.UserID,
		Reason:       "onboarding",
		Metadata:     withSource(),
		Tags:         tags,
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "create mentor assignment")
	}
	return []string{created.ID}, false, nil
}

func (p *AutomationPipeline) startWorkflow(ctx context.Context, auth security.Authorization, tags automation.Tags, req AutomationRequest, d automation.WorkflowDirective) ([]string, bool, error) {
	if p.deps.WorkflowTemplates == nil || p.deps.WorkflowRuns == nil {
		return nil, false, notConfigured(automation.KindWorkflow)
	}
	tmpl, err := p.deps.WorkflowTemplates.GetTemplate(ctx, auth.OrgID, d.TemplateID)
	if err != nil {
		return nil, false, errors.Wrap(err, "get workflow template")
	}
	if tmpl == nil {
		return nil, true, nil
	}
	run, err := p.deps.WorkflowRuns.CreateRun(ctx, automation.WorkflowRun{
		OrgID:      auth.OrgID,
		EmployeeID: req.Employee.ProfileID,
		TemplateID: tmpl.ID,
		Metadata:   map[string]any{"source": automation.Source, "templateVersion": tmpl.Version},
		Tags:       tags,
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "create workflow run")
	}
	return []string{run.ID}, false, nil
}

func (p *AutomationPipeline) enrollEmailSequence(ctx context.Context, auth security.Authorization, tags automation.Tags, req AutomationRequest, d automation.EmailSequenceDirective) (string, []string, bool, error) {
	if p.deps.EmailTemplates == nil || p.deps.EmailEnrollments == nil || p.deps.EmailDeliveries == nil {
		return "", nil, false, notConfigured(automation.KindEmailSequence)
	}
	tmpl, err := p.deps.EmailTemplates.GetTemplate(ctx, auth.OrgID, d.TemplateID)
	if err != nil {
		return "", nil, false, errors.Wrap(err, "get email sequence template")
	}
	if tmpl == nil {
		return "", nil, true, nil
	}

	now := p.deps.Now()
	enrollment, err := p.deps.EmailEnrollments.CreateEnrollment(ctx, automation.EmailSequenceEnrollment{
		OrgID:           auth.OrgID,
		TemplateID:      tmpl.ID,
		EmployeeID:      req.Employee.ProfileID,
		InvitationToken: req.InvitationToken,
		TargetEmail:     req.TargetEmail,
		StartedAt:       now,
		Metadata:        withSource(),
		Tags:            tags,
	})
	if err != nil {
		return "", nil, false, errors.Wrap(err, "create email sequence enrollment")
	}

	deliveries := make([]string, 0, len(tmpl.Steps))
	for _, step := range automation.NormalizeSequenceSteps(tmpl.Steps, now) {
		delivery, err := p.deps.EmailDeliveries.CreateDelivery(ctx, automation.EmailSequenceDelivery{
			OrgID:        auth.OrgID,
			EnrollmentID: enrollment.ID,
			StepKey:      step.Key,
			ScheduledAt:  step.ScheduledAt,
			Metadata:     step.Metadata,
			Tags:         tags,
		})
		if err != nil {
			return enrollment.ID, deliveries, false, errors.Wrapf(err, "create email delivery %s", step.Key)
		}
		deliveries = append(deliveries, delivery.ID)
	}
	return enrollment.ID, deliveries, false, nil
}

func (p *AutomationPipeline) createProvisioningTasks(ctx context.Context, auth security.Authorization, tags automation.Tags, req AutomationRequest, d automation.ProvisioningDirective) ([]string, error) {
	if p.deps.ProvisioningTasks == nil {
		return nil, notConfigured(automation.KindProvisioning)
	}
	types := d.TaskTypes
	if len(types) == 0 {
		types = automation.DefaultProvisioningTasks
	}
	ids := make([]string, 0, len(types))
	for _, taskType := range types {
		task, err := p.deps.ProvisioningTasks.CreateTask(ctx, automation.ProvisioningTask{
			OrgID:             auth.OrgID,
			EmployeeID:        req.Employee.ProfileID,
			RequestedByUserID: auth.UserID,
			TaskType:          taskType,
			Instructions:      provisioningInstructions,
			Metadata:          withSource(),
			Tags:              tags,
		})
		if err != nil {
			return ids, errors.Wrapf(err, "create provisioning task %s", taskType)
		}
		ids = append(ids, task.ID)
	}
	return ids, nil
}

// assignDocuments skips template ids that do not resolve.
func (p *AutomationPipeline) assignDocuments(ctx context.Context, auth security.Authorization, tags automation.Tags, req AutomationRequest, d automation.DocumentDirective) ([]string, error) {
	if p.deps.DocumentTemplates == nil || p.deps.DocumentAssignments == nil {
		return nil, notConfigured(automation.KindDocument)
	}
	ids := make([]string, 0, len(d.TemplateIDs))
	for _, templateID := range d.TemplateIDs {
		tmpl, err := p.deps.DocumentTemplates.GetTemplate(ctx, auth.OrgID, templateID)
		if err != nil {
			return ids, errors.Wrap(err, "get document template")
		}
		if tmpl == nil {
			continue
		}
		assignment, err := p.deps.DocumentAssignments.CreateAssignment(ctx, automation.DocumentAssignment{
			OrgID:      auth.OrgID,
			EmployeeID: req.Employee.ProfileID,
			TemplateID: tmpl.ID,
			Status:     automation.DocumentPending,
			Metadata:   withSource(),
			Tags:       tags,
		})
		if err != nil {
			return ids, errors.Wrap(err, "create document assignment")
		}
		ids = append(ids, assignment.ID)
	}
	return ids, nil
}

func (p *AutomationPipeline) recordMetric(ctx context.Context, auth security.Authorization, tags automation.Tags, req AutomationRequest, d automation.MetricDirective) (string, bool, error) {
	if p.deps.MetricDefinitions == nil || p.deps.MetricResults == nil {
		return "", false, notConfigured(automation.KindMetric)
	}
	def, err := p.ensureMetricDefinition(ctx, auth, tags, d.Key, d.Label)
	if err != nil {
		return "", false, err
	}
	if def == nil {
		return "", true, nil
	}
	_, err = p.deps.MetricResults.CreateResult(ctx, automation.MetricResult{
		OrgID:      auth.OrgID,
		EmployeeID: req.Employee.ProfileID,
		MetricID:   def.ID,
		Value:      decimal.NewFromInt(1),
		ValueText:  "accepted",
		Source:     automation.MetricSourceSystem,
		MeasuredAt: p.deps.Now(),
		Metadata:   withSource(),
		Tags:       tags,
	})
	if err != nil {
		return "", false, errors.Wrap(err, "create metric result")
	}
	return def.Key, false, nil
}

func (p *AutomationPipeline) ensureMetricDefinition(ctx context.Context, auth security.Authorization, tags automation.Tags, key, label string) (*automation.MetricDefinition, error) {
	def, err := p.deps.MetricDefinitions.GetByKey(ctx, auth.OrgID, key)
	if err != nil {
		return nil, errors.Wrap(err, "get metric definition")
	}
	if def != nil {
		return def, nil
	}
	def, err = p.deps.MetricDefinitions.Create(ctx, automation.MetricDefinition{
		OrgID: auth.OrgID,
		Key:   key,
		Label: label,
		Tags:  tags,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create metric definition")
	}
	return def, nil
}
