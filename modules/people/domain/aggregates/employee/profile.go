package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULL_TIME"
	EmploymentPartTime   EmploymentType = "PART_TIME"
	EmploymentContractor EmploymentType = "CONTRACTOR"
	EmploymentIntern     EmploymentType = "INTERN"
	EmploymentApprentice EmploymentType = "APPRENTICE"
	EmploymentFixedTerm  EmploymentType = "FIXED_TERM"
	EmploymentCasual     EmploymentType = "CASUAL"
)

var employmentTypes = map[EmploymentType]struct{}{
	EmploymentFullTime:   {},
	EmploymentPartTime:   {},
	EmploymentContractor: {},
	EmploymentIntern:     {},
	EmploymentApprentice: {},
	EmploymentFixedTerm:  {},
	EmploymentCasual:     {},
}

func (t EmploymentType) Valid() bool {
	_, ok := employmentTypes[t]
	return ok
}

type EmploymentStatus string

const (
	StatusActive      EmploymentStatus = "ACTIVE"
	StatusInactive    EmploymentStatus = "INACTIVE"
	StatusOnLeave     EmploymentStatus = "ON_LEAVE"
	StatusOffboarding EmploymentStatus = "OFFBOARDING"
	StatusTerminated  EmploymentStatus = "TERMINATED"
)

type PaySchedule string

const (
	PayMonthly  PaySchedule = "MONTHLY"
	PayBiWeekly PaySchedule = "BI_WEEKLY"
)

// Profile is the canonical employee record within an org.
type Profile struct {
	ID                 string
	OrgID              string
	UserID             string
	EmployeeNumber     string
	Email              string
	PersonalEmail      string
	DisplayName        string
	FirstName          string
	LastName           string
	JobTitle           string
	DepartmentID       string
	EmploymentType     EmploymentType
	EmploymentStatus   EmploymentStatus
	StartDate          *time.Time
	EndDate            *time.Time
	AnnualSalary       *decimal.Decimal
	HourlyRate         *decimal.Decimal
	SalaryCurrency     string
	SalaryBasis        string
	PaySchedule        PaySchedule
	EligibleLeaveTypes []string
	Metadata           map[string]any
	DataResidency      security.DataResidency
	DataClassification security.DataClassification
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// LinkedTo reports whether the profile already belongs to userID.
func (p *Profile) LinkedTo(userID string) bool {
	return p.UserID != "" && p.UserID == userID
}

// MatchesEmail compares the work and personal email case-insensitively.
func (p *Profile) MatchesEmail(email string) bool {
	target := normalizeEmail(email)
	if target == "" {
		return false
	}
	return normalizeEmail(p.Email) == target || normalizeEmail(p.PersonalEmail) == target
}

// IsPreboarding reports whether the profile was created ahead of the
// employee's account and may be claimed by them.
func (p *Profile) IsPreboarding() bool {
	flag, ok := p.Metadata["preboarding"].(bool)
	return ok && flag
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the fields an orchestration step may change. Nil
// fields are left untouched.
type ProfileUpdate struct {
	EmploymentStatus   *EmploymentStatus
	EndDate            *time.Time
	EligibleLeaveTypes *[]string
	Metadata           map[string]any
}
