package services

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const (
	profileMetadataSource   = "onboarding-invitation"
	checklistMetadataSource = "complete-onboarding-invite"
)

// onboardingPayload is the typed view of invitation.OnboardingData.
type onboardingPayload struct {
	Email                 string
	DisplayName           string
	FirstName             string
	LastName              string
	EmployeeID            string
	EmployeeNumber        string
	EmploymentType        string
	JobTitle              string
	DepartmentID          string
	StartDate             string
	ManagerEmployeeNumber string
	AnnualSalary          *decimal.Decimal
	HourlyRate            *decimal.Decimal
	SalaryCurrency        string
	SalaryBasis           string
	PaySchedule           string
	EligibleLeaveTypes    []string
	OnboardingTemplateID  string
	Roles                 []string
	ContractType          string
	Location              string
	WorkingPattern        map[string]any
	Benefits              map[string]any
	Automation            automation.Payload
}

func extractOnboardingPayload(data invitation.OnboardingData) onboardingPayload {
	if data == nil {
		return onboardingPayload{}
	}
	return onboardingPayload{
		Email:                 coerceString(data["email"]),
		DisplayName:           coerceString(data["displayName"]),
		FirstName:             coerceString(data["firstName"]),
		LastName:              coerceString(data["lastName"]),
		EmployeeID:            coerceString(data["employeeId"]),
		EmployeeNumber:        coerceString(data["employeeNumber"]),
		EmploymentType:        coerceString(data["employmentType"]),
		JobTitle:              firstString(data["jobTitle"], data["position"]),
		DepartmentID:          coerceString(data["departmentId"]),
		StartDate:             coerceString(data["startDate"]),
		ManagerEmployeeNumber: coerceString(data["managerEmployeeNumber"]),
		AnnualSalary:          firstDecimal(data["annualSalary"], data["salary"]),
		HourlyRate:            coerceDecimal(data["hourlyRate"]),
		SalaryCurrency:        firstString(data["salaryCurrency"], data["currency"]),
		SalaryBasis:           coerceString(data["salaryBasis"]),
		PaySchedule:           coerceString(data["paySchedule"]),
		EligibleLeaveTypes:    coerceStringArray(data["eligibleLeaveTypes"]),
		OnboardingTemplateID:  coerceString(data["onboardingTemplateId"]),
		Roles:                 coerceStringArray(data["roles"]),
		ContractType:          coerceString(data["contractType"]),
		Location:              coerceString(data["location"]),
		WorkingPattern:        coerceObject(data["workingPattern"]),
		Benefits:              coerceObject(data["benefits"]),
		Automation: automation.Payload{
			MentorEmployeeNumber:    coerceString(data["mentorEmployeeNumber"]),
			WorkflowTemplateID:      coerceString(data["workflowTemplateId"]),
			EmailSequenceTemplateID: coerceString(data["emailSequenceTemplateId"]),
			ProvisioningTaskTypes:   coerceStringArray(data["provisioningTaskTypes"]),
			DocumentTemplateIDs:     coerceStringArray(data["documentTemplateIds"]),
		},
	}
}

// employeeNumber prefers employeeId over employeeNumber.
func (p onboardingPayload) employeeNumber() (string, error) {
	if p.EmployeeID != "" {
		return p.EmployeeID, nil
	}
	if p.EmployeeNumber != "" {
		return p.EmployeeNumber, nil
	}
	return "", validationError("PEOPLE_MISSING_EMPLOYEE_IDENTIFIER", "Invitation is missing the employee identifier.", nil)
}

func coerceString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstString(values ...any) string {
	for _, v := range values {
		if s := coerceString(v); s != "" {
			return s
		}
	}
	return ""
}

// coerceStringArray accepts []any, []string or a comma separated string.
// Empty entries are dropped; an empty result is nil.
func coerceStringArray(v any) []string {
	var raw []string
	switch typed := v.(type) {
	case []string:
		raw = typed
	case []any:
		for _, entry := range typed {
			if s, ok := entry.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(typed, ",")
	default:
		return nil
	}
	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceDecimal(v any) *decimal.Decimal {
	var d decimal.Decimal
	switch typed := v.(type) {
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return nil
		}
		d = decimal.NewFromFloat(typed)
	case int:
		d = decimal.NewFromInt(int64(typed))
	case int64:
		d = decimal.NewFromInt(typed)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(typed))
		if err != nil {
			return nil
		}
		d = parsed
	default:
		return nil
	}
	return &d
}

func firstDecimal(values ...any) *decimal.Decimal {
	for _, v := range values {
		if d := coerceDecimal(v); d != nil {
			return d
		}
	}
	return nil
}

func coerceObject(v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

var codeSeparators = regexp.MustCompile(`[-\s]+`)

func normalizeCode(v string) string {
	return strings.ToUpper(codeSeparators.ReplaceAllString(strings.TrimSpace(v), "_"))
}

func resolveEmploymentType(v string) employee.EmploymentType {
	if v == "" {
		return employee.EmploymentFullTime
	}
	normalized := normalizeCode(v)
	switch normalized {
	case "CONTRACT":
		return employee.EmploymentContractor
	case "TEMPORARY":
		return employee.EmploymentFixedTerm
	}
	t := employee.EmploymentType(normalized)
	if t.Valid() {
		return t
	}
	return employee.EmploymentFullTime
}

func resolveContractType(explicit string, employmentType employee.EmploymentType) employee.ContractType {
	if explicit != "" {
		if t := employee.ContractType(normalizeCode(explicit)); t.Valid() {
			return t
		}
	}
	switch employmentType {
	case employee.EmploymentContractor:
		return employee.ContractAgency
	case employee.EmploymentIntern, employee.EmploymentApprentice:
		return employee.ContractApprenticeship
	}
	return employee.ContractPermanent
}

func resolvePaySchedule(v string) employee.PaySchedule {
	switch normalizeCode(v) {
	case "BI_WEEKLY", "BIWEEKLY":
		return employee.PayBiWeekly
	default:
		return employee.PayMonthly
	}
}

func resolveRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	if len(out) == 0 {
		return []string{"member"}
	}
	return out
}

func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// checklistConfig selects an onboarding checklist template for a new hire.
type checklistConfig struct {
	TemplateID string
	Metadata   map[string]any
}

func buildProfileMetadata(inv *invitation.Invitation, p onboardingPayload) map[string]any {
	meta := map[string]any{
		"source":           profileMetadataSource,
		"token":            inv.Token,
		"issuedAt":         inv.CreatedAt.UTC().Format(time.RFC3339Nano),
		"organizationName": inv.OrganizationName,
	}
	if p.ManagerEmployeeNumber != "" {
		meta["managerEmployeeNumber"] = p.ManagerEmployeeNumber
	}
	return meta
}

func buildProfileDraft(p onboardingPayload, auth security.Authorization, userID, employeeNumber string, inv *invitation.Invitation) employee.Profile {
	email := p.Email
	if email == "" {
		email = strings.TrimSpace(inv.TargetEmail)
	}
	displayName := p.DisplayName
	if displayName == "" {
		displayName = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	eligible := p.EligibleLeaveTypes
	if eligible == nil {
		eligible = []string{}
	}
	profile := employee.Profile{
		OrgID:              auth.OrgID,
		UserID:             userID,
		EmployeeNumber:     employeeNumber,
		Email:              email,
		DisplayName:        displayName,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		JobTitle:           p.JobTitle,
		DepartmentID:       p.DepartmentID,
		EmploymentType:     resolveEmploymentType(p.EmploymentType),
		EmploymentStatus:   employee.StatusActive,
		AnnualSalary:       p.AnnualSalary,
		HourlyRate:         p.HourlyRate,
		SalaryCurrency:     p.SalaryCurrency,
		SalaryBasis:        p.SalaryBasis,
		PaySchedule:        resolvePaySchedule(p.PaySchedule),
		EligibleLeaveTypes: eligible,
		Metadata:           buildProfileMetadata(inv, p),
		DataResidency:      auth.DataResidency,
		DataClassification: auth.DataClassification,
	}
	if start, ok := parseDate(p.StartDate); ok {
		profile.StartDate = &start
	}
	return profile
}

// buildContractDraft returns nil when the payload carries no job title.
func buildContractDraft(p onboardingPayload, auth security.Authorization, userID string, now time.Time) *employee.Contract {
	if p.JobTitle == "" {
		return nil
	}
	start, ok := parseDate(p.StartDate)
	if !ok {
		start = now.UTC()
	}
	return &employee.Contract{
		OrgID:              auth.OrgID,
		UserID:             userID,
		ContractType:       resolveContractType(p.ContractType, resolveEmploymentType(p.EmploymentType)),
		JobTitle:           p.JobTitle,
		DepartmentID:       p.DepartmentID,
		StartDate:          start,
		Location:           p.Location,
		WorkingPattern:     p.WorkingPattern,
		Benefits:           p.Benefits,
		DataResidency:      auth.DataResidency,
		DataClassification: auth.DataClassification,
	}
}

func buildChecklistConfig(p onboardingPayload, token string) *checklistConfig {
	if p.OnboardingTemplateID == "" {
		return nil
	}
	return &checklistConfig{
		TemplateID: p.OnboardingTemplateID,
		Metadata: map[string]any{
			"source":          checklistMetadataSource,
			"invitationToken": token,
		},
	}
}
