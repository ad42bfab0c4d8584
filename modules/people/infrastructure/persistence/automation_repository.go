package persistence

import (
	"context"
	"encoding/json"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
)

const (
	insertMentorAssignment = `INSERT INTO mentor_assignments
		(id, org_id, employee_id, mentor_org_id, mentor_user_id, reason, metadata,
		 data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING created_at`

	selectWorkflowTemplate = `SELECT id, org_id, name, version FROM workflow_templates WHERE org_id = $1 AND id = $2`

	insertWorkflowRun = `INSERT INTO workflow_runs
		(id, org_id, employee_id, template_id, metadata,
		 data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at`

	selectEmailTemplate = `SELECT id, org_id, name, steps FROM email_sequence_templates WHERE org_id = $1 AND id = $2`

	insertEnrollment = `INSERT INTO email_sequence_enrollments
		(id, org_id, template_id, employee_id, invitation_token, target_email, started_at, metadata,
		 data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	insertDelivery = `INSERT INTO email_sequence_deliveries
		(id, org_id, enrollment_id, step_key, scheduled_at, metadata,
		 data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	insertProvisioningTask = `INSERT INTO provisioning_tasks
		(id, org_id, employee_id, requested_by_user_id, task_type, instructions, metadata,
		 data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	selectDocumentTemplate = `SELECT id, org_id, name FROM document_templates WHERE org_id = $1 AND id = $2`

	insertDocumentAssignment = `INSERT INTO document_assignments
		(id, org_id, employee_id, template_id, status, metadata,
		 data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	selectMetricDefinition = `SELECT id, org_id, key, label FROM metric_definitions WHERE org_id = $1 AND key = $2`

	// Upsert so two concurrent onboardings race to a single definition.
	insertMetricDefinition = `INSERT INTO metric_definitions
		(id, org_id, key, label, data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (org_id, key) DO UPDATE SET label = metric_definitions.label
	RETURNING id`

	insertMetricResult = `INSERT INTO metric_results
		(id, org_id, employee_id, metric_id, value, value_text, source, measured_at, metadata,
		 data_residency, data_classification, audit_source, correlation_id, created_by)
	VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
)

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func execTagged(ctx context.Context, query string, tags automation.Tags, args ...any) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, query, append(args, tagArgs(tags)...)...)
	return err
}

type MentorAssignmentRepository struct{}

func NewMentorAssignmentRepository() automation.MentorAssignmentRepository {
	return &MentorAssignmentRepository{}
}

func (r *MentorAssignmentRepository) CreateAssignment(ctx context.Context, a automation.MentorAssignment) (*automation.MentorAssignment, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	a.ID = newID(a.ID)
	args := append([]any{a.ID, a.OrgID, a.EmployeeID, a.MentorOrgID, a.MentorUserID, a.Reason, jsonArg(a.Metadata)}, tagArgs(a.Tags)...)
	if err := tx.QueryRow(ctx, insertMentorAssignment, args...).Scan(&a.CreatedAt); err != nil {
		return nil, gerrors.Wrap(err, "create mentor assignment")
	}
	return &a, nil
}

// WorkflowRepository serves workflow templates and runs.
type WorkflowRepository struct{}

func NewWorkflowRepository() *WorkflowRepository {
	return &WorkflowRepository{}
}

func (r *WorkflowRepository) GetTemplate(ctx context.Context, orgID, templateID string) (*automation.WorkflowTemplate, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	var t automation.WorkflowTemplate
	err = tx.QueryRow(ctx, selectWorkflowTemplate, orgID, templateID).Scan(&t.ID, &t.OrgID, &t.Name, &t.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query workflow template")
	}
	return &t, nil
}

func (r *WorkflowRepository) CreateRun(ctx context.Context, run automation.WorkflowRun) (*automation.WorkflowRun, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	run.ID = newID(run.ID)
	args := append([]any{run.ID, run.OrgID, run.EmployeeID, run.TemplateID, jsonArg(run.Metadata)}, tagArgs(run.Tags)...)
	if err := tx.QueryRow(ctx, insertWorkflowRun, args...).Scan(&run.CreatedAt); err != nil {
		return nil, gerrors.Wrap(err, "create workflow run")
	}
	return &run, nil
}

// EmailSequenceRepository serves sequence templates, enrollments and
// scheduled deliveries.
type EmailSequenceRepository struct{}

func NewEmailSequenceRepository() *EmailSequenceRepository {
	return &EmailSequenceRepository{}
}

func (r *EmailSequenceRepository) GetTemplate(ctx context.Context, orgID, templateID string) (*automation.EmailSequenceTemplate, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	var (
		t   automation.EmailSequenceTemplate
		raw []byte
	)
	err = tx.QueryRow(ctx, selectEmailTemplate, orgID, templateID).Scan(&t.ID, &t.OrgID, &t.Name, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query email sequence template")
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &t.Steps); err != nil {
			return nil, gerrors.Wrap(err, "decode email sequence steps")
		}
	}
	return &t, nil
}

func (r *EmailSequenceRepository) CreateEnrollment(ctx context.Context, e automation.EmailSequenceEnrollment) (*automation.EmailSequenceEnrollment, error) {
	e.ID = newID(e.ID)
	err := execTagged(ctx, insertEnrollment, e.Tags,
		e.ID, e.OrgID, e.TemplateID, e.EmployeeID, e.InvitationToken, e.TargetEmail, e.StartedAt, jsonArg(e.Metadata))
	if err != nil {
		return nil, gerrors.Wrap(err, "create email sequence enrollment")
	}
	return &e, nil
}

func (r *EmailSequenceRepository) CreateDelivery(ctx context.Context, d automation.EmailSequenceDelivery) (*automation.EmailSequenceDelivery, error) {
	d.ID = newID(d.ID)
	err := execTagged(ctx, insertDelivery, d.Tags,
		d.ID, d.OrgID, d.EnrollmentID, d.StepKey, d.ScheduledAt, jsonArg(d.Metadata))
	if err != nil {
		return nil, gerrors.Wrap(err, "create email sequence delivery")
	}
	return &d, nil
}

type ProvisioningTaskRepository struct{}

func NewProvisioningTaskRepository() automation.ProvisioningTaskRepository {
	return &ProvisioningTaskRepository{}
}

func (r *ProvisioningTaskRepository) CreateTask(ctx context.Context, t automation.ProvisioningTask) (*automation.ProvisioningTask, error) {
	t.ID = newID(t.ID)
	err := execTagged(ctx, insertProvisioningTask, t.Tags,
		t.ID, t.OrgID, t.EmployeeID, t.RequestedByUserID, string(t.TaskType), t.Instructions, jsonArg(t.Metadata))
	if err != nil {
		return nil, gerrors.Wrap(err, "create provisioning task")
	}
	return &t, nil
}

// DocumentRepository serves document templates and assignments.
type DocumentRepository struct{}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{}
}

func (r *DocumentRepository) GetTemplate(ctx context.Context, orgID, templateID string) (*automation.DocumentTemplate, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	var t automation.DocumentTemplate
	err = tx.QueryRow(ctx, selectDocumentTemplate, orgID, templateID).Scan(&t.ID, &t.OrgID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query document template")
	}
	return &t, nil
}

func (r *DocumentRepository) CreateAssignment(ctx context.Context, a automation.DocumentAssignment) (*automation.DocumentAssignment, error) {
	a.ID = newID(a.ID)
	if a.Status == "" {
		a.Status = automation.DocumentPending
	}
	err := execTagged(ctx, insertDocumentAssignment, a.Tags,
		a.ID, a.OrgID, a.EmployeeID, a.TemplateID, string(a.Status), jsonArg(a.Metadata))
	if err != nil {
		return nil, gerrors.Wrap(err, "create document assignment")
	}
	return &a, nil
}

// MetricRepository serves metric definitions and append-only results.
type MetricRepository struct{}

func NewMetricRepository() *MetricRepository {
	return &MetricRepository{}
}

func (r *MetricRepository) GetByKey(ctx context.Context, orgID, key string) (*automation.MetricDefinition, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	var d automation.MetricDefinition
	err = tx.QueryRow(ctx, selectMetricDefinition, orgID, key).Scan(&d.ID, &d.OrgID, &d.Key, &d.Label)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query metric definition")
	}
	return &d, nil
}

func (r *MetricRepository) Create(ctx context.Context, def automation.MetricDefinition) (*automation.MetricDefinition, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	def.ID = newID(def.ID)
	args := append([]any{def.ID, def.OrgID, def.Key, def.Label}, tagArgs(def.Tags)...)
	if err := tx.QueryRow(ctx, insertMetricDefinition, args...).Scan(&def.ID); err != nil {
		return nil, gerrors.Wrap(err, "create metric definition")
	}
	return &def, nil
}

func (r *MetricRepository) CreateResult(ctx context.Context, m automation.MetricResult) (*automation.MetricResult, error) {
	m.ID = newID(m.ID)
	err := execTagged(ctx, insertMetricResult, m.Tags,
		m.ID, m.OrgID, m.EmployeeID, m.MetricID, m.Value.String(), m.ValueText, string(m.Source), m.MeasuredAt, jsonArg(m.Metadata))
	if err != nil {
		return nil, gerrors.Wrap(err, "create metric result")
	}
	return &m, nil
}
