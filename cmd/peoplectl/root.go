package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "peoplectl",
		Short:         "Employee lifecycle operations for the people module",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newInviteCmd())
	cmd.AddCommand(newEmployeeCmd())
	cmd.AddCommand(newComplianceCmd())
	cmd.AddCommand(newOutboxCmd())
	cmd.AddCommand(newAuthzCmd())
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		writeError(err)
		os.Exit(exitCode(err))
	}
}
