package employee

import (
	"time"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

type ContractType string

const (
	ContractPermanent      ContractType = "PERMANENT"
	ContractFixedTerm      ContractType = "FIXED_TERM"
	ContractAgency         ContractType = "AGENCY"
	ContractConsultant     ContractType = "CONSULTANT"
	ContractInternship     ContractType = "INTERNSHIP"
	ContractApprenticeship ContractType = "APPRENTICESHIP"
)

func (t ContractType) Valid() bool {
	switch t {
	case ContractPermanent, ContractFixedTerm, ContractAgency, ContractConsultant, ContractInternship, ContractApprenticeship:
		return true
	}
	return false
}

// Contract is an employment contract belonging to one user.
type Contract struct {
	ID                 string
	OrgID              string
	UserID             string
	ContractType       ContractType
	JobTitle           string
	DepartmentID       string
	StartDate          time.Time
	EndDate            *time.Time
	TerminationReason  string
	Location           string
	WorkingPattern     map[string]any
	Benefits           map[string]any
	DataResidency      security.DataResidency
	DataClassification security.DataClassification
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type ContractUpdate struct {
	TerminationReason *string
	EndDate           *time.Time
}
