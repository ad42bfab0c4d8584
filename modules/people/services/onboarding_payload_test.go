package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
)

func TestExtractOnboardingPayload_Aliases(t *testing.T) {
	p := extractOnboardingPayload(invitation.OnboardingData{
		"employeeId":            "E1",
		"employeeNumber":        "E2",
		"position":              "  Designer ",
		"salary":                "52000.50",
		"currency":              "GBP",
		"eligibleLeaveTypes":    "annual, sick,,",
		"roles":                 []string{"member"},
		"provisioningTaskTypes": []any{"ACCOUNT", 3, "LICENSE"},
		"workingPattern":        map[string]any{"days": 5},
		"documentTemplateIds":   42,
	})

	number, err := p.employeeNumber()
	require.NoError(t, err)
	require.Equal(t, "E1", number)
	require.Equal(t, "Designer", p.JobTitle)
	require.Equal(t, "52000.5", p.AnnualSalary.String())
	require.Equal(t, "GBP", p.SalaryCurrency)
	require.Equal(t, []string{"annual", "sick"}, p.EligibleLeaveTypes)
	require.Equal(t, []string{"ACCOUNT", "LICENSE"}, p.Automation.ProvisioningTaskTypes)
	require.Equal(t, 5, p.WorkingPattern["days"])
	require.Nil(t, p.Automation.DocumentTemplateIDs)
}

func TestExtractOnboardingPayload_PrefersPrimaryKeys(t *testing.T) {
	p := extractOnboardingPayload(invitation.OnboardingData{
		"jobTitle":       "Engineer",
		"position":       "Designer",
		"annualSalary":   60000.0,
		"salary":         1,
		"salaryCurrency": "EUR",
		"currency":       "GBP",
	})
	require.Equal(t, "Engineer", p.JobTitle)
	require.Equal(t, "60000", p.AnnualSalary.String())
	require.Equal(t, "EUR", p.SalaryCurrency)
}

func TestExtractOnboardingPayload_Nil(t *testing.T) {
	p := extractOnboardingPayload(nil)
	_, err := p.employeeNumber()
	require.True(t, IsValidation(err))
}

func TestResolveEmploymentType(t *testing.T) {
	cases := map[string]employee.EmploymentType{
		"":           employee.EmploymentFullTime,
		"part-time":  employee.EmploymentPartTime,
		"contract":   employee.EmploymentContractor,
		"Temporary":  employee.EmploymentFixedTerm,
		"fixed term": employee.EmploymentFixedTerm,
		"unknown":    employee.EmploymentFullTime,
	}
	for in, want := range cases {
		require.Equal(t, want, resolveEmploymentType(in), in)
	}
}

func TestResolveContractType(t *testing.T) {
	require.Equal(t, employee.ContractFixedTerm, resolveContractType("fixed-term", employee.EmploymentFullTime))
	require.Equal(t, employee.ContractAgency, resolveContractType("", employee.EmploymentContractor))
	require.Equal(t, employee.ContractApprenticeship, resolveContractType("bogus", employee.EmploymentIntern))
	require.Equal(t, employee.ContractPermanent, resolveContractType("", employee.EmploymentFullTime))
}

func TestResolveRoles(t *testing.T) {
	require.Equal(t, []string{"member"}, resolveRoles(nil))
	require.Equal(t, []string{"member"}, resolveRoles([]string{" ", ""}))
	require.Equal(t, []string{"hradmin", "member"}, resolveRoles([]string{"HRAdmin", "member", "hradmin"}))
}

func TestBuildDrafts(t *testing.T) {
	inv := pendingInvitation(nil)
	p := extractOnboardingPayload(invitation.OnboardingData{
		"firstName":             "Jane",
		"lastName":              "Doe",
		"jobTitle":              "Engineer",
		"startDate":             "2026-04-01",
		"employmentType":        "contract",
		"managerEmployeeNumber": "M1",
		"paySchedule":           "bi-weekly",
	})

	profile := buildProfileDraft(p, testAuth(), testTargetUserID, "E100", &inv)
	require.Equal(t, "jane@co.com", profile.Email)
	require.Equal(t, "Jane Doe", profile.DisplayName)
	require.Equal(t, employee.EmploymentContractor, profile.EmploymentType)
	require.Equal(t, employee.PayBiWeekly, profile.PaySchedule)
	require.Equal(t, "2026-04-01", profile.StartDate.Format("2006-01-02"))
	require.Equal(t, []string{}, profile.EligibleLeaveTypes)
	require.Equal(t, "M1", profile.Metadata["managerEmployeeNumber"])
	require.Equal(t, "tok-1", profile.Metadata["token"])

	contract := buildContractDraft(p, testAuth(), testTargetUserID, testNow)
	require.NotNil(t, contract)
	require.Equal(t, employee.ContractAgency, contract.ContractType)
	require.Equal(t, "2026-04-01", contract.StartDate.Format("2006-01-02"))

	require.Nil(t, buildContractDraft(extractOnboardingPayload(nil), testAuth(), testTargetUserID, testNow))
	require.Nil(t, buildChecklistConfig(p, "tok-1"))
}
