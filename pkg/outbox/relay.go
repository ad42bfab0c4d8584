package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// DB is the subset of *pgxpool.Pool the relay uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Relay polls an outbox table and hands unpublished rows to a Dispatcher.
// Rows are claimed with FOR UPDATE SKIP LOCKED, so several relays may share
// one table.
type Relay struct {
	db         DB
	table      pgx.Identifier
	dispatcher Dispatcher
	opts       RelayOptions

	m          *metrics
	tableLabel string
}

func NewRelay(db DB, table pgx.Identifier, dispatcher Dispatcher, opts RelayOptions) (*Relay, error) {
	if db == nil {
		return nil, invalidConfig("db is required")
	}
	if len(table) == 0 {
		return nil, invalidConfig("table is required")
	}
	if dispatcher == nil {
		return nil, invalidConfig("dispatcher is required")
	}
	opts.setDefaults()
	return &Relay{
		db:         db,
		table:      table,
		dispatcher: dispatcher,
		opts:       opts,
		m:          getMetrics(),
		tableLabel: TableLabel(table),
	}, nil
}

// Run processes batches every PollInterval until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	r.opts.Logger.WithField("table", r.tableLabel).Info("outbox: relay started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := r.observeQueueDepth(ctx); err != nil {
			r.opts.Logger.WithError(err).Debug("outbox: observe queue depth failed")
		}
		if _, err := r.ProcessOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.opts.Logger.WithError(err).Warn("outbox: process tick failed")
		}
	}
}

type claimed struct {
	Sequence int64
	OrgID    string
	Topic    string
	Payload  []byte
	EventID  uuid.UUID
	Attempts int
}

// ProcessOnce claims one batch and dispatches it, returning how many rows
// were published.
func (r *Relay) ProcessOnce(ctx context.Context) (int, error) {
	now := r.opts.Now()
	batch, err := r.claim(ctx, now, now.Add(-r.opts.LockTTL))
	if err != nil {
		return 0, err
	}

	published := 0
	for _, c := range batch {
		dispatchCtx, cancel := context.WithTimeout(ctx, r.opts.DispatchTimeout)
		start := time.Now()
		err := r.dispatcher.Dispatch(dispatchCtx, DispatchedMessage{
			Meta: Meta{
				Table:    r.table,
				OrgID:    c.OrgID,
				Topic:    c.Topic,
				EventID:  c.EventID,
				Sequence: c.Sequence,
				Attempts: c.Attempts,
			},
			Payload: c.Payload,
		})
		cancel()
		latency := time.Since(start)

		if err == nil {
			r.recordDispatch(c.Topic, "success", latency)
			if ackErr := r.exec(ctx, "ack", `SET published_at = now(), locked_at = NULL, last_error = NULL`, c.Sequence); ackErr != nil {
				r.opts.Logger.WithError(ackErr).WithFields(logFields(c, r.tableLabel)).Warn("outbox: ack failed")
				continue
			}
			published++
			continue
		}

		r.recordDispatch(c.Topic, "failure", latency)
		lastErr := truncateError(err, r.opts.LastErrorMaxLen)
		if c.Attempts >= r.opts.MaxAttempts {
			r.m.deadTotal.WithLabelValues(r.tableLabel, c.Topic).Inc()
			r.opts.Logger.WithError(err).WithFields(logFields(c, r.tableLabel)).Error("outbox: message exhausted its attempts")
			if deadErr := r.exec(ctx, "dead", `SET locked_at = NULL, last_error = $2`, c.Sequence, lastErr); deadErr != nil {
				r.opts.Logger.WithError(deadErr).WithFields(logFields(c, r.tableLabel)).Warn("outbox: dead update failed")
			}
			continue
		}

		next := r.opts.Now().Add(backoff(c.Attempts, r.opts.MaxBackoff) + jitter(r.opts.Rand, r.opts.JitterMax))
		if nackErr := r.exec(ctx, "nack", `SET locked_at = NULL, last_error = $2, available_at = $3`, c.Sequence, lastErr, next); nackErr != nil {
			r.opts.Logger.WithError(nackErr).WithFields(logFields(c, r.tableLabel)).Warn("outbox: nack failed")
		}
	}
	return published, nil
}

func (r *Relay) claim(ctx context.Context, now, lockCutoff time.Time) ([]claimed, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("outbox claim begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tableName := r.table.Sanitize()
	q := fmt.Sprintf(
		`SELECT sequence, org_id, topic, payload, event_id, attempts
		   FROM %s
		  WHERE published_at IS NULL
		    AND available_at <= $1
		    AND attempts < $2
		    AND (locked_at IS NULL OR locked_at < $3)
		  ORDER BY available_at, sequence
		  LIMIT $4
		  FOR UPDATE SKIP LOCKED`,
		tableName,
	)
	rows, err := tx.Query(ctx, q, now, r.opts.MaxAttempts, lockCutoff, r.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("outbox claim select: %w", err)
	}

	var items []claimed
	var sequences []int64
	for rows.Next() {
		var c claimed
		if err := rows.Scan(&c.Sequence, &c.OrgID, &c.Topic, &c.Payload, &c.EventID, &c.Attempts); err != nil {
			rows.Close()
			return nil, fmt.Errorf("outbox claim scan: %w", err)
		}
		c.Attempts++
		items = append(items, c)
		sequences = append(sequences, c.Sequence)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbox claim rows: %w", err)
	}
	if len(items) == 0 {
		return nil, tx.Commit(ctx)
	}

	update := fmt.Sprintf(`UPDATE %s SET locked_at = $1, attempts = attempts + 1 WHERE sequence = ANY($2)`, tableName)
	if _, err := tx.Exec(ctx, update, now, sequences); err != nil {
		return nil, fmt.Errorf("outbox claim update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("outbox claim commit: %w", err)
	}
	return items, nil
}

// exec runs "UPDATE <table> <set> WHERE sequence = $1 AND published_at IS NULL".
func (r *Relay) exec(ctx context.Context, op, set string, sequence int64, args ...any) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("outbox %s begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := fmt.Sprintf(`UPDATE %s %s WHERE sequence = $1 AND published_at IS NULL`, r.table.Sanitize(), set)
	if _, err := tx.Exec(ctx, q, append([]any{sequence}, args...)...); err != nil {
		return fmt.Errorf("outbox %s: %w", op, err)
	}
	return tx.Commit(ctx)
}

func (r *Relay) observeQueueDepth(ctx context.Context) error {
	var pending int64
	q := fmt.Sprintf(`SELECT count(*) FROM %s WHERE published_at IS NULL`, r.table.Sanitize())
	if err := r.db.QueryRow(ctx, q).Scan(&pending); err != nil {
		return fmt.Errorf("outbox pending count: %w", err)
	}
	r.m.pending.WithLabelValues(r.tableLabel).Set(float64(pending))
	return nil
}

func (r *Relay) recordDispatch(topic, result string, latency time.Duration) {
	r.m.dispatchTotal.WithLabelValues(r.tableLabel, topic, result).Inc()
	r.m.dispatchLatency.WithLabelValues(r.tableLabel, topic, result).Observe(latency.Seconds())
}

func logFields(c claimed, table string) logrus.Fields {
	return logrus.Fields{
		"table":    table,
		"topic":    c.Topic,
		"event_id": c.EventID.String(),
		"org_id":   c.OrgID,
		"sequence": c.Sequence,
		"attempts": c.Attempts,
	}
}
