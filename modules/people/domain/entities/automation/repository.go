package automation

import "context"

type MentorAssignmentRepository interface {
	CreateAssignment(ctx context.Context, a MentorAssignment) (*MentorAssignment, error)
}

// WorkflowTemplateRepository returns nil without error for an unknown
// template. The email sequence and document template lookups behave the same.
type WorkflowTemplateRepository interface {
	GetTemplate(ctx context.Context, orgID, templateID string) (*WorkflowTemplate, error)
}

type WorkflowRunRepository interface {
	CreateRun(ctx context.Context, run WorkflowRun) (*WorkflowRun, error)
}

type EmailSequenceTemplateRepository interface {
	GetTemplate(ctx context.Context, orgID, templateID string) (*EmailSequenceTemplate, error)
}

type EmailSequenceEnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, e EmailSequenceEnrollment) (*EmailSequenceEnrollment, error)
}

type EmailSequenceDeliveryRepository interface {
	CreateDelivery(ctx context.Context, d EmailSequenceDelivery) (*EmailSequenceDelivery, error)
}

type ProvisioningTaskRepository interface {
	CreateTask(ctx context.Context, task ProvisioningTask) (*ProvisioningTask, error)
}

type DocumentTemplateRepository interface {
	GetTemplate(ctx context.Context, orgID, templateID string) (*DocumentTemplate, error)
}

type DocumentAssignmentRepository interface {
	CreateAssignment(ctx context.Context, a DocumentAssignment) (*DocumentAssignment, error)
}

type MetricDefinitionRepository interface {
	GetByKey(ctx context.Context, orgID, key string) (*MetricDefinition, error)
	Create(ctx context.Context, def MetricDefinition) (*MetricDefinition, error)
}

type MetricResultRepository interface {
	CreateResult(ctx context.Context, result MetricResult) (*MetricResult, error)
}
