package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/hr-people/modules/people/services"
	"github.com/iota-uz/hr-people/pkg/composables"
)

func newInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Issue and accept onboarding invitations",
	}
	cmd.AddCommand(newInviteIssueCmd(), newInviteAcceptCmd())
	return cmd
}

func newInviteIssueCmd() *cobra.Command {
	var (
		auth           authFlags
		email          string
		employeeNumber string
		dataFile       string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an onboarding invitation carrying an onboarding payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{}
			if dataFile != "" {
				if err := readJSONFile(dataFile, &data); err != nil {
					return err
				}
			}
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			start := time.Now()
			token, err := rt.module.Issuer.IssueInvitation(ctx, auth.authorization(), services.InvitationRequest{
				Email:          email,
				EmployeeNumber: employeeNumber,
				OnboardingData: data,
			})
			if err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "invite issue",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     map[string]string{"token": token},
			})
		},
	}
	auth.register(cmd)
	cmd.Flags().StringVar(&email, "email", "", "Invitee email (required)")
	cmd.Flags().StringVar(&employeeNumber, "employee-number", "", "Employee number to assign")
	cmd.Flags().StringVar(&dataFile, "data", "", "Path to a JSON onboarding payload")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newInviteAcceptCmd() *cobra.Command {
	var (
		token     string
		userID    string
		email     string
		ipAddress string
	)
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept an onboarding invitation as the invited user",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			start := time.Now()
			res, err := rt.module.Invitations.CompleteOnboardingInvite(ctx, services.CompleteOnboardingInviteInput{
				Token:      token,
				UserID:     userID,
				ActorEmail: email,
				Request:    composables.RequestMeta{IPAddress: ipAddress, UserAgent: "peoplectl"},
			})
			if err != nil {
				if steps, ok := services.StepsOf(err); ok {
					_ = writeJSON(commandOutput{Command: "invite accept", Result: map[string]any{"steps": steps}})
				}
				return err
			}
			return writeJSON(commandOutput{
				Command:    "invite accept",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Invitation token (required)")
	cmd.Flags().StringVar(&userID, "user", "", "Accepting user UUID (required)")
	cmd.Flags().StringVar(&email, "email", "", "Accepting user email (required)")
	cmd.Flags().StringVar(&ipAddress, "ip", "", "Client IP recorded in the audit event")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
