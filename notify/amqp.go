package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender publishes notices as JSON to an exchange; the routing key is the
// notice code. A downstream notification service renders and delivers them.
type AMQPSender struct {
	ch       amqpPublisher
	exchange string
	now      func() time.Time
}

func NewAMQPSender(ch amqpPublisher, exchange string) *AMQPSender {
	return &AMQPSender{ch: ch, exchange: exchange, now: time.Now}
}

func (s *AMQPSender) Send(ctx context.Context, n Notice) error {
	if err := n.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	err = s.ch.PublishWithContext(ctx, s.exchange, n.Code, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    s.now(),
		Type:         n.Code,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// AMQPConnection owns the broker connection behind an AMQPSender.
type AMQPConnection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQP connects to url, declares a durable topic exchange and returns a
// sender publishing to it.
func DialAMQP(url, exchange string) (*AMQPSender, *AMQPConnection, error) {
	if exchange == "" {
		return nil, nil, errors.New("amqp exchange required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return NewAMQPSender(ch, exchange), &AMQPConnection{conn: conn, ch: ch}, nil
}

func (c *AMQPConnection) Close() error {
	if c == nil {
		return nil
	}
	return errors.Join(c.ch.Close(), c.conn.Close())
}
