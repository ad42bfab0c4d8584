package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

type StepOutcome string

const (
	StepCommitted StepOutcome = "committed"
	StepSkipped   StepOutcome = "skipped"
	StepFailed    StepOutcome = "failed"
)

// StepResult is one entry of a saga step log.
type StepResult struct {
	Name    string
	Outcome StepOutcome
	Err     error
	At      time.Time
}

// StepLog lists step results in execution order. It lives for one request.
type StepLog []StepResult

func (l StepLog) Committed() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		if r.Outcome == StepCommitted {
			out = append(out, r.Name)
		}
	}
	return out
}

// Outcome returns the outcome of the named step.
func (l StepLog) Outcome(name string) (StepOutcome, bool) {
	for _, r := range l {
		if r.Name == name {
			return r.Outcome, true
		}
	}
	return "", false
}

func (l StepLog) fields() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, r.Name+"="+string(r.Outcome))
	}
	return out
}

type CompensationPolicy string

const (
	// CompensationNone leaves committed steps in place on failure.
	CompensationNone CompensationPolicy = "none"
	// CompensationBestEffort runs registered compensations in reverse order.
	CompensationBestEffort CompensationPolicy = "best_effort"
)

func ParseCompensationPolicy(v string) (CompensationPolicy, error) {
	switch CompensationPolicy(v) {
	case "", CompensationNone:
		return CompensationNone, nil
	case CompensationBestEffort:
		return CompensationBestEffort, nil
	}
	return "", errors.New("unknown compensation policy " + v)
}

// SagaFailure carries the step log of a failed saga. Unwrap exposes the
// original error followed by any compensation errors.
type SagaFailure struct {
	Saga  string
	Steps StepLog
	Err   error
}

func (f *SagaFailure) Error() string {
	return f.Saga + ": " + f.Err.Error()
}

func (f *SagaFailure) Unwrap() error { return f.Err }

// StepsOf returns the step log attached to err, if any.
func StepsOf(err error) (StepLog, bool) {
	var failure *SagaFailure
	if errors.As(err, &failure) {
		return failure.Steps, true
	}
	return nil, false
}

type compensation struct {
	step string
	fn   func(ctx context.Context) error
}

type sagaRun struct {
	name          string
	auth          security.Authorization
	policy        CompensationPolicy
	now           Clock
	log           StepLog
	compensations []compensation
}

func newSagaRun(name string, auth security.Authorization, policy CompensationPolicy, now Clock) *sagaRun {
	if now == nil {
		now = time.Now
	}
	return &sagaRun{name: name, auth: auth, policy: policy, now: now}
}

func (s *sagaRun) record(name string, outcome StepOutcome, err error) {
	s.log = append(s.log, StepResult{Name: name, Outcome: outcome, Err: err, At: s.now()})
	recordSagaStep(name, outcome)
}

// run executes fn as the named step. fn reports whether it committed state
// or skipped.
func (s *sagaRun) run(ctx context.Context, name string, fn func(ctx context.Context) (StepOutcome, error)) error {
	outcome, err := fn(ctx)
	if err != nil {
		s.record(name, StepFailed, err)
		return err
	}
	if outcome == "" {
		outcome = StepCommitted
	}
	s.record(name, outcome, nil)
	return nil
}

// compensate registers an undo action for a committed step.
func (s *sagaRun) compensate(step string, fn func(ctx context.Context) error) {
	s.compensations = append(s.compensations, compensation{step: step, fn: fn})
}

// fail applies the compensation policy and wraps err with the step log.
func (s *sagaRun) fail(ctx context.Context, err error) error {
	errs := []error{err}
	if s.policy == CompensationBestEffort {
		undoCtx := context.WithoutCancel(ctx)
		for i := len(s.compensations) - 1; i >= 0; i-- {
			c := s.compensations[i]
			name := "compensate:" + c.step
			if cErr := c.fn(undoCtx); cErr != nil {
				s.record(name, StepFailed, cErr)
				errs = append(errs, cErr)
				continue
			}
			s.record(name, StepCommitted, nil)
		}
	}

	logWithFields(ctx, logrus.ErrorLevel, "people: saga failed", mergeFields(
		operationFields(s.auth, s.name),
		logrus.Fields{
			"steps":               s.log.fields(),
			"compensation_policy": string(s.policy),
			"error":               err.Error(),
		},
	))

	joined := err
	if len(errs) > 1 {
		joined = errors.Join(errs...)
	}
	return &SagaFailure{Saga: s.name, Steps: s.log, Err: joined}
}
