package amqp

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AuditPublisher sends serialized audit events to a durable topic exchange.
type AuditPublisher struct {
	conn       *amqp.Connection
	channel    Channel
	exchange   string
	routingKey string
	now        func() time.Time
}

// Dial connects to url and declares exchange.
func Dial(url, exchange, routingKey string) (*AuditPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "amqp channel")
	}
	p, err := NewAuditPublisher(ch, exchange, routingKey)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewAuditPublisher(ch Channel, exchange, routingKey string) (*AuditPublisher, error) {
	if exchange == "" {
		return nil, errors.New("amqp: exchange is required")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	return &AuditPublisher{channel: ch, exchange: exchange, routingKey: routingKey, now: time.Now}, nil
}

// PublishAudit routes by topic, falling back to the configured routing key.
func (p *AuditPublisher) PublishAudit(ctx context.Context, topic, messageID string, body []byte) error {
	key := topic
	if key == "" {
		key = p.routingKey
	}
	err := p.channel.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    p.now().UTC(),
		Type:         topic,
		Body:         body,
	})
	if err != nil {
		return errors.Wrapf(err, "publish audit %s", messageID)
	}
	return nil
}

func (p *AuditPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cErr := p.conn.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	return err
}
