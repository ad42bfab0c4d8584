package automation

import "github.com/iota-uz/hr-people/modules/people/domain/security"

// Source marks artifacts created while accepting an onboarding invitation.
const Source = "onboarding-invite"

// Tags are the tenant and compliance attributes every artifact carries.
type Tags struct {
	DataResidency      security.DataResidency
	DataClassification security.DataClassification
	AuditSource        string
	CorrelationID      string
	CreatedBy          string
}

func TagsFrom(auth security.Authorization) Tags {
	return Tags{
		DataResidency:      auth.DataResidency,
		DataClassification: auth.DataClassification,
		AuditSource:        auth.AuditSource,
		CorrelationID:      auth.CorrelationID,
		CreatedBy:          auth.UserID,
	}
}

func sourceMetadata() map[string]any {
	return map[string]any{"source": Source}
}
