package broker

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event names. Both the publisher and any downstream consumer must agree on
// these, so they live in one place.
const (
	PaymentAcceptedEvent = "payment.accepted" // published after a successful charge
	PaymentDeletedEvent  = "payment.deleted"  // published after a payment row is removed
)

// Connect opens an AMQP connection plus channel and declares the exchanges
// this service publishes to. The returned close function releases the channel
// and then the connection; use it with defer.
func Connect(user, pass, host, port string) (*amqp.Channel, func() error, error) {
	address := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(address)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Exchanges must exist before anyone binds to them.
	if err := createExchanges(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to create exchanges: %w", err)
	}

	close := func() error {
		if err := ch.Close(); err != nil {
			return err
		}
		return conn.Close() // connection after channel
	}

	return ch, close, nil
}

func createExchanges(ch *amqp.Channel) error {
	for _, name := range []string{PaymentAcceptedEvent, PaymentDeletedEvent} {
		err := ch.ExchangeDeclare(
			name,
			"fanout",
			true,  // durable: survives broker restart
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
	}
	return nil
}
