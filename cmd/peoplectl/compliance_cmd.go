package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/hr-people/modules/people/services"
)

func newComplianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Compliance pack operations",
	}
	cmd.AddCommand(newComplianceAssignCmd())
	return cmd
}

func newComplianceAssignCmd() *cobra.Command {
	var (
		auth       authFlags
		users      string
		templateID string
		items      string
	)
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign compliance pack items to users",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			in := services.AssignCompliancePackInput{
				UserIDs:         splitList(users),
				TemplateID:      templateID,
				TemplateItemIDs: splitList(items),
			}
			start := time.Now()
			if err := rt.module.People.AssignCompliancePack(ctx, auth.authorization(), in); err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "compliance assign",
				DurationMS: time.Since(start).Milliseconds(),
				Result: map[string]any{
					"users": len(in.UserIDs),
					"items": len(in.TemplateItemIDs),
				},
			})
		},
	}
	auth.register(cmd)
	cmd.Flags().StringVar(&users, "users", "", "Comma separated user UUIDs (required)")
	cmd.Flags().StringVar(&templateID, "template", "", "Compliance template id (required)")
	cmd.Flags().StringVar(&items, "items", "", "Comma separated template item ids (required)")
	_ = cmd.MarkFlagRequired("users")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}
