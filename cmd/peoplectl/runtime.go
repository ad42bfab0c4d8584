package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/iota-uz/hr-people/modules/people"
	"github.com/iota-uz/hr-people/pkg/composables"
	"github.com/iota-uz/hr-people/pkg/configuration"
	"github.com/iota-uz/hr-people/pkg/tracing"
)

// runtime holds the connections one command invocation needs.
type runtime struct {
	conf     *configuration.Configuration
	pool     *pgxpool.Pool
	module   *people.Module
	shutdown func(context.Context) error
}

func connectDB(ctx context.Context, conf *configuration.Configuration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return pool, nil
}

func openRuntime(cmd *cobra.Command) (*runtime, context.Context, error) {
	conf := configuration.Use()
	ctx := cmd.Context()

	shutdown, err := tracing.Setup(ctx, conf.OpenTelemetry.Enabled, conf.OpenTelemetry.TempoURL, conf.OpenTelemetry.ServiceName)
	if err != nil {
		return nil, nil, err
	}
	pool, err := connectDB(ctx, conf)
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}
	module, err := people.NewModule(people.Options{Config: conf, Logger: conf.Logger()})
	if err != nil {
		pool.Close()
		_ = shutdown(ctx)
		return nil, nil, err
	}

	rt := &runtime{conf: conf, pool: pool, module: module, shutdown: shutdown}
	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithLogger(ctx, conf.Logger().WithField("app", "peoplectl"))
	return rt, ctx, nil
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.module.Close(); err != nil {
		r.conf.Logger().WithError(err).Warn("peoplectl: module close failed")
	}
	r.pool.Close()
	if err := r.shutdown(ctx); err != nil {
		r.conf.Logger().WithError(err).Warn("peoplectl: tracing shutdown failed")
	}
	r.conf.Unload()
}
