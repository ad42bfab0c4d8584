package automation

import "strings"

type Kind string

const (
	KindMentor        Kind = "mentor"
	KindWorkflow      Kind = "workflow"
	KindEmailSequence Kind = "email_sequence"
	KindProvisioning  Kind = "provisioning"
	KindDocument      Kind = "document"
	KindMetric        Kind = "metric"
)

// Directive selects one automation step. The set of implementations is closed.
type Directive interface {
	Kind() Kind
	sealed()
}

type MentorDirective struct {
	MentorEmployeeNumber string
}

type WorkflowDirective struct {
	TemplateID string
}

type EmailSequenceDirective struct {
	TemplateID string
}

type ProvisioningDirective struct {
	TaskTypes []ProvisioningTaskType
}

type DocumentDirective struct {
	TemplateIDs []string
}

type MetricDirective struct {
	Key   string
	Label string
}

func (MentorDirective) Kind() Kind        { return KindMentor }
func (WorkflowDirective) Kind() Kind      { return KindWorkflow }
func (EmailSequenceDirective) Kind() Kind { return KindEmailSequence }
func (ProvisioningDirective) Kind() Kind  { return KindProvisioning }
func (DocumentDirective) Kind() Kind      { return KindDocument }
func (MetricDirective) Kind() Kind        { return KindMetric }

func (MentorDirective) sealed()        {}
func (WorkflowDirective) sealed()      {}
func (EmailSequenceDirective) sealed() {}
func (ProvisioningDirective) sealed()  {}
func (DocumentDirective) sealed()      {}
func (MetricDirective) sealed()        {}

const (
	InviteAcceptedMetricKey   = "onboarding.invite.accepted"
	InviteAcceptedMetricLabel = "Invite accepted"
)

// Payload holds the optional automation references captured on an invitation.
type Payload struct {
	MentorEmployeeNumber    string
	WorkflowTemplateID      string
	EmailSequenceTemplateID string
	ProvisioningTaskTypes   []string
	DocumentTemplateIDs     []string
}

// DirectivesFromPayload lists the directives to run, in execution order.
// Provisioning and metric directives are always present.
func DirectivesFromPayload(p Payload) []Directive {
	out := make([]Directive, 0, 6)
	if v := strings.TrimSpace(p.MentorEmployeeNumber); v != "" {
		out = append(out, MentorDirective{MentorEmployeeNumber: v})
	}
	if v := strings.TrimSpace(p.WorkflowTemplateID); v != "" {
		out = append(out, WorkflowDirective{TemplateID: v})
	}
	if v := strings.TrimSpace(p.EmailSequenceTemplateID); v != "" {
		out = append(out, EmailSequenceDirective{TemplateID: v})
	}

	types := make([]ProvisioningTaskType, 0, len(p.ProvisioningTaskTypes))
	for _, raw := range p.ProvisioningTaskTypes {
		if v := strings.TrimSpace(raw); v != "" {
			types = append(types, ProvisioningTaskType(v))
		}
	}
	if len(types) == 0 {
		types = append(types, DefaultProvisioningTasks...)
	}
	out = append(out, ProvisioningDirective{TaskTypes: types})

	docs := make([]string, 0, len(p.DocumentTemplateIDs))
	for _, raw := range p.DocumentTemplateIDs {
		if v := strings.TrimSpace(raw); v != "" {
			docs = append(docs, v)
		}
	}
	if len(docs) > 0 {
		out = append(out, DocumentDirective{TemplateIDs: docs})
	}

	out = append(out, MetricDirective{Key: InviteAcceptedMetricKey, Label: InviteAcceptedMetricLabel})
	return out
}

type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// DirectiveOutcome records what one directive produced.
type DirectiveOutcome struct {
	Kind    Kind
	Outcome Outcome
	IDs     []string
	Err     error
}
