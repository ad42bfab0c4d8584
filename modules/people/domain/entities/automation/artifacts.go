package automation

import (
	"time"

	"github.com/shopspring/decimal"
)

type MentorAssignment struct {
	ID           string
	OrgID        string
	EmployeeID   string
	MentorOrgID  string
	MentorUserID string
	Reason       string
	Metadata     map[string]any
	Tags         Tags
	CreatedAt    time.Time
}

type WorkflowTemplate struct {
	ID      string
	OrgID   string
	Name    string
	Version int
}

type WorkflowRun struct {
	ID         string
	OrgID      string
	EmployeeID string
	TemplateID string
	Metadata   map[string]any
	Tags       Tags
	CreatedAt  time.Time
}

type EmailSequenceTemplate struct {
	ID    string
	OrgID string
	Name  string
	// Steps is the raw step list as stored with the template.
	Steps []any
}

type EmailSequenceEnrollment struct {
	ID              string
	OrgID           string
	TemplateID      string
	EmployeeID      string
	InvitationToken string
	TargetEmail     string
	StartedAt       time.Time
	Metadata        map[string]any
	Tags            Tags
}

type EmailSequenceDelivery struct {
	ID           string
	OrgID        string
	EnrollmentID string
	StepKey      string
	ScheduledAt  time.Time
	Metadata     map[string]any
	Tags         Tags
}

type ProvisioningTaskType string

const (
	ProvisioningAccount   ProvisioningTaskType = "ACCOUNT"
	ProvisioningEquipment ProvisioningTaskType = "EQUIPMENT"
	ProvisioningAccess    ProvisioningTaskType = "ACCESS"
	ProvisioningLicense   ProvisioningTaskType = "LICENSE"
	ProvisioningOther     ProvisioningTaskType = "OTHER"
)

// DefaultProvisioningTasks is used when no task types were requested.
var DefaultProvisioningTasks = []ProvisioningTaskType{
	ProvisioningAccount,
	ProvisioningEquipment,
	ProvisioningAccess,
}

type ProvisioningTask struct {
	ID                string
	OrgID             string
	EmployeeID        string
	RequestedByUserID string
	TaskType          ProvisioningTaskType
	Instructions      string
	Metadata          map[string]any
	Tags              Tags
}

type DocumentTemplate struct {
	ID    string
	OrgID string
	Name  string
}

type DocumentAssignmentStatus string

const DocumentPending DocumentAssignmentStatus = "PENDING"

type DocumentAssignment struct {
	ID         string
	OrgID      string
	EmployeeID string
	TemplateID string
	Status     DocumentAssignmentStatus
	Metadata   map[string]any
	Tags       Tags
}

type MetricDefinition struct {
	ID    string
	OrgID string
	Key   string
	Label string
	Tags  Tags
}

type MetricSource string

const MetricSourceSystem MetricSource = "SYSTEM"

// MetricResult rows are append-only.
type MetricResult struct {
	ID         string
	OrgID      string
	EmployeeID string
	MetricID   string
	Value      decimal.Decimal
	ValueText  string
	Source     MetricSource
	MeasuredAt time.Time
	Metadata   map[string]any
	Tags       Tags
}
