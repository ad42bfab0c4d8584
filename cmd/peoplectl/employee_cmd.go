package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/hr-people/modules/people/services"
)

func newEmployeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Employee lifecycle operations",
	}
	cmd.AddCommand(
		newEmployeeOnboardCmd(),
		newEmployeeSummaryCmd(),
		newEmployeeEligibilityCmd(),
		newEmployeeTerminateCmd(),
	)
	return cmd
}

func newEmployeeOnboardCmd() *cobra.Command {
	var (
		auth authFlags
		file string
	)
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Onboard an employee from a JSON document",
		Long: "Reads an OnboardEmployeeInput document (Profile, Contract, EligibleLeaveTypes,\n" +
			"OnboardingTemplateID, Invite) and creates the profile, contract, leave balances\n" +
			"and checklist in one transaction.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in services.OnboardEmployeeInput
			if err := readJSONFile(file, &in); err != nil {
				return err
			}
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			start := time.Now()
			res, err := rt.module.People.OnboardEmployee(ctx, auth.authorization(), in)
			if err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "employee onboard",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}
	auth.register(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Path to the onboarding JSON document (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newEmployeeSummaryCmd() *cobra.Command {
	var (
		auth      authFlags
		profileID string
		userID    string
		year      int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the employee summary (profile, contract, leave, absences, compliance)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if profileID == "" && userID == "" {
				return fmt.Errorf("one of --profile or --user is required")
			}
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			start := time.Now()
			summary, err := rt.module.People.GetEmployeeSummary(ctx, auth.authorization(), services.SummaryInput{
				ProfileID: profileID,
				UserID:    userID,
				Year:      year,
			})
			if err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "employee summary",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     summary,
			})
		},
	}
	auth.register(cmd)
	cmd.Flags().StringVar(&profileID, "profile", "", "Employee profile id")
	cmd.Flags().StringVar(&userID, "user", "", "Employee user UUID")
	cmd.Flags().IntVar(&year, "year", 0, "Leave year (default: current year)")
	return cmd
}

func newEmployeeEligibilityCmd() *cobra.Command {
	var (
		auth      authFlags
		profileID string
		types     string
		year      int
	)
	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Replace the leave types an employee is eligible for",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			start := time.Now()
			res, err := rt.module.People.UpdateEligibility(ctx, auth.authorization(), services.UpdateEligibilityInput{
				ProfileID:          profileID,
				EligibleLeaveTypes: splitList(types),
				Year:               year,
			})
			if err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "employee eligibility",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}
	auth.register(cmd)
	cmd.Flags().StringVar(&profileID, "profile", "", "Employee profile id (required)")
	cmd.Flags().StringVar(&types, "types", "", "Comma separated leave types, e.g. ANNUAL,SICK")
	cmd.Flags().IntVar(&year, "year", 0, "Leave year for ensured balances")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func newEmployeeTerminateCmd() *cobra.Command {
	var (
		auth          authFlags
		profileID     string
		contractID    string
		reason        string
		date          string
		cancelLeave   bool
		closeAbsences bool
	)
	cmd := &cobra.Command{
		Use:   "terminate",
		Short: "Terminate an employee and close out their leave and absences",
		RunE: func(cmd *cobra.Command, args []string) error {
			terminationDate, err := parseDateUTC(date)
			if err != nil {
				return err
			}
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			in := services.TerminateEmployeeInput{
				ProfileID:          profileID,
				ContractID:         contractID,
				Termination:        services.Termination{Reason: reason, Date: terminationDate},
				CancelPendingLeave: cancelLeave,
			}
			if cmd.Flags().Changed("close-absences") {
				in.CloseAbsences = &closeAbsences
			}

			start := time.Now()
			res, err := rt.module.People.TerminateEmployee(ctx, auth.authorization(), in)
			if err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "employee terminate",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}
	auth.register(cmd)
	cmd.Flags().StringVar(&profileID, "profile", "", "Employee profile id (required)")
	cmd.Flags().StringVar(&contractID, "contract", "", "Contract id (default: latest contract)")
	cmd.Flags().StringVar(&reason, "reason", "", "Termination reason (required)")
	cmd.Flags().StringVar(&date, "date", "", "Termination date YYYY-MM-DD (required)")
	cmd.Flags().BoolVar(&cancelLeave, "cancel-leave", false, "Cancel pending leave requests")
	cmd.Flags().BoolVar(&closeAbsences, "close-absences", true, "Cancel open absences")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("reason")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
