package payments

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tgarrido/payments-api/common/broker"
)

// EventPublisher announces payment lifecycle changes to interested consumers
type EventPublisher interface {
	PaymentAccepted(ctx context.Context, p *Payment) error
	PaymentDeleted(ctx context.Context, id int64) error
}

// AMQPPublisher publishes payment events to RabbitMQ fanout exchanges
// declared by broker.Connect.
type AMQPPublisher struct {
	channel *amqp.Channel
}

func NewAMQPPublisher(channel *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{channel: channel}
}

func (p *AMQPPublisher) PaymentAccepted(ctx context.Context, payment *Payment) error {
	body, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}
	return p.publish(ctx, broker.PaymentAcceptedEvent, body)
}

func (p *AMQPPublisher) PaymentDeleted(ctx context.Context, id int64) error {
	body, err := json.Marshal(map[string]int64{"payment_id": id})
	if err != nil {
		return fmt.Errorf("failed to marshal payment id: %w", err)
	}
	return p.publish(ctx, broker.PaymentDeletedEvent, body)
}

func (p *AMQPPublisher) publish(ctx context.Context, exchange string, body []byte) error {
	err := p.channel.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", exchange, err)
	}
	return nil
}
