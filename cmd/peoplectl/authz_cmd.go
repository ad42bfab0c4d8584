package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/hr-people/pkg/authz"
	"github.com/iota-uz/hr-people/pkg/configuration"
)

func newAuthzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authz",
		Short: "Access policy tooling",
	}
	cmd.AddCommand(newAuthzVerifyCmd())
	return cmd
}

func newAuthzVerifyCmd() *cobra.Command {
	var fixtures string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the casbin policy against expected decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := authz.LoadFixtures(fixtures)
			if err != nil {
				return err
			}
			conf := configuration.Use()
			cfg := authz.ConfigFrom(conf)
			cfg.FlagProvider = authz.NewStaticFlagProvider(authz.ModeEnforce)
			svc, err := authz.NewService(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			mismatches := svc.VerifyFixtures(cmd.Context(), cases)
			if err := writeJSON(commandOutput{
				Command:    "authz verify",
				DurationMS: time.Since(start).Milliseconds(),
				Result: map[string]any{
					"cases":      len(cases),
					"mismatches": mismatches,
				},
			}); err != nil {
				return err
			}
			if len(mismatches) > 0 {
				return fmt.Errorf("authz verify: %d of %d cases mismatched", len(mismatches), len(cases))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fixtures, "fixtures", "config/access/fixtures.yaml", "YAML file of expected decisions")
	return cmd
}
