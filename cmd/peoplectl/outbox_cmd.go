package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/hr-people/pkg/metrics"
	"github.com/iota-uz/hr-people/pkg/outbox"
)

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Audit outbox maintenance",
	}
	cmd.AddCommand(newOutboxRelayCmd())
	return cmd
}

func newOutboxRelayCmd() *cobra.Command {
	var (
		once         bool
		pollInterval time.Duration
		batchSize    int
		metricsAddr  string
	)
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Forward audit events from the outbox table to the broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ctx, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			relay, err := rt.module.NewOutboxRelay(rt.pool, outbox.RelayOptions{
				PollInterval: pollInterval,
				BatchSize:    batchSize,
			})
			if err != nil {
				return err
			}

			if once {
				start := time.Now()
				n, err := relay.ProcessOnce(ctx)
				if err != nil {
					return err
				}
				return writeJSON(commandOutput{
					Command:    "outbox relay",
					DurationMS: time.Since(start).Milliseconds(),
					Result:     map[string]int{"published": n},
				})
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return relay.Run(gctx) })
			if metricsAddr != "" {
				logger := rt.conf.Logger().WithField("app", "peoplectl")
				g.Go(func() error { return metrics.Serve(gctx, metricsAddr, metrics.DefaultPath, logger) })
			}
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Process a single batch and exit")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", time.Second, "Delay between batches")
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "Rows claimed per batch")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9102")
	return cmd
}
