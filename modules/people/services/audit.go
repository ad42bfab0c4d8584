package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hr-people/pkg/composables"
	"github.com/iota-uz/hr-people/pkg/eventbus"
	"github.com/iota-uz/hr-people/pkg/outbox"
	"github.com/iota-uz/hr-people/pkg/safego"
)

// AuditEvent is one audit record for a mutation.
type AuditEvent struct {
	ID             uuid.UUID      `json:"id"`
	OrgID          string         `json:"orgId"`
	UserID         string         `json:"userId"`
	EventType      string         `json:"eventType"`
	Action         string         `json:"action"`
	Resource       string         `json:"resource"`
	ResourceID     string         `json:"resourceId,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
	ResidencyZone  string         `json:"residencyZone"`
	Classification string         `json:"classification"`
	AuditSource    string         `json:"auditSource"`
	CorrelationID  string         `json:"correlationId,omitempty"`
	IPAddress      string         `json:"ipAddress,omitempty"`
	UserAgent      string         `json:"userAgent,omitempty"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

// Topic is the routing key suffix used by outbox and broker sinks.
func (e AuditEvent) Topic() string {
	return "people.audit." + e.EventType
}

// AuditEmitter fans audit events out to the sinks subscribed on its bus.
type AuditEmitter struct {
	bus    eventbus.EventBus
	logger *logrus.Logger
	async  bool
	now    Clock
}

type AuditEmitterOption func(*AuditEmitter)

// WithAsyncDelivery delivers events on a background goroutine.
func WithAsyncDelivery() AuditEmitterOption {
	return func(e *AuditEmitter) { e.async = true }
}

func WithAuditClock(now Clock) AuditEmitterOption {
	return func(e *AuditEmitter) { e.now = now }
}

func NewAuditEmitter(bus eventbus.EventBus, logger *logrus.Logger, opts ...AuditEmitterOption) *AuditEmitter {
	e := &AuditEmitter{bus: bus, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddSink subscribes handler and returns a function removing it.
func (e *AuditEmitter) AddSink(handler func(ctx context.Context, event AuditEvent) error) func() {
	return e.bus.Subscribe(handler)
}

func (e *AuditEmitter) RecordAuditEvent(ctx context.Context, event AuditEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}
	if meta, ok := composables.UseRequestMeta(ctx); ok {
		if event.IPAddress == "" {
			event.IPAddress = meta.IPAddress
		}
		if event.UserAgent == "" {
			event.UserAgent = meta.UserAgent
		}
	}

	if !e.async {
		return e.publish(ctx, event)
	}

	detached := context.WithoutCancel(ctx)
	safego.Go(e.entry(), "people.audit", func() {
		if err := e.publish(detached, event); err != nil {
			e.entry().WithError(err).WithField("event_id", event.ID.String()).Error("people: audit delivery failed")
		}
	})
	return nil
}

func (e *AuditEmitter) publish(ctx context.Context, event AuditEvent) error {
	err := e.bus.PublishE(ctx, event)
	if errors.Is(err, eventbus.ErrNoSubscribers) {
		return nil
	}
	return err
}

func (e *AuditEmitter) entry() *logrus.Entry {
	if e.logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.logger.WithField("component", "people.audit")
}

// NewLogAuditSink writes every audit event as a structured log line.
func NewLogAuditSink(logger *logrus.Logger) func(ctx context.Context, event AuditEvent) error {
	return func(ctx context.Context, event AuditEvent) error {
		logger.WithContext(ctx).WithFields(logrus.Fields{
			"event_id":       event.ID.String(),
			"org_id":         event.OrgID,
			"event_type":     event.EventType,
			"action":         event.Action,
			"resource":       event.Resource,
			"resource_id":    event.ResourceID,
			"residency":      event.ResidencyZone,
			"classification": event.Classification,
			"audit_source":   event.AuditSource,
			"correlation_id": event.CorrelationID,
		}).Info("people audit event")
		recordAuditEvent("log", nil)
		return nil
	}
}

// NewOutboxAuditSink enqueues audit events into the outbox table using the
// transaction or pool bound to ctx.
func NewOutboxAuditSink(publisher outbox.Publisher, table pgx.Identifier) func(ctx context.Context, event AuditEvent) error {
	return func(ctx context.Context, event AuditEvent) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, "marshal audit event")
		}
		tx, err := composables.UseTx(ctx)
		if err != nil {
			recordAuditEvent("outbox", err)
			return errors.Wrap(err, "audit outbox")
		}
		_, err = publisher.Enqueue(ctx, tx, table, outbox.Message{
			OrgID:   event.OrgID,
			Topic:   event.Topic(),
			EventID: event.ID,
			Payload: payload,
		})
		recordAuditEvent("outbox", err)
		return err
	}
}

// AuditBroker publishes serialized audit events to a message broker.
type AuditBroker interface {
	PublishAudit(ctx context.Context, topic, messageID string, body []byte) error
}

func NewBrokerAuditSink(broker AuditBroker) func(ctx context.Context, event AuditEvent) error {
	return func(ctx context.Context, event AuditEvent) error {
		body, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, "marshal audit event")
		}
		err = broker.PublishAudit(ctx, event.Topic(), event.ID.String(), body)
		recordAuditEvent("broker", err)
		return err
	}
}

// NewBrokerDispatcher relays outbox rows written by the outbox sink to broker.
func NewBrokerDispatcher(broker AuditBroker) outbox.Dispatcher {
	return outbox.DispatcherFunc(func(ctx context.Context, msg outbox.DispatchedMessage) error {
		err := broker.PublishAudit(ctx, msg.Meta.Topic, msg.Meta.EventID.String(), msg.Payload)
		recordAuditEvent("relay", err)
		return err
	})
}

// emitAudit records event without letting a failure reach the caller.
func emitAudit(ctx context.Context, recorder AuditRecorder, event AuditEvent) {
	if recorder == nil {
		return
	}
	if err := recorder.RecordAuditEvent(ctx, event); err != nil {
		logWithFields(ctx, logrus.WarnLevel, "people: audit event not recorded", logrus.Fields{
			"org_id":     event.OrgID,
			"event_type": event.EventType,
			"error":      err.Error(),
		})
	}
}
