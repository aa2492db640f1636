package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/x402labs/attestation-ledger/interfaces"
)

// AMQPSink publishes notifications to a RabbitMQ fanout exchange so any
// number of indexers can bind their own queues. Publishing is best-effort;
// there is no confirm-mode handshake.
type AMQPSink struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *slog.Logger
}

// NewAMQPSink dials the broker and declares a durable fanout exchange.
func NewAMQPSink(url, exchange string, log *slog.Logger) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial AMQP broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPSink{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

// ProofAttested implements interfaces.EventSink.
func (s *AMQPSink) ProofAttested(ctx context.Context, event interfaces.AttestationEvent) error {
	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	err = s.channel.PublishWithContext(ctx,
		s.exchange, // exchange
		"",         // routing key (fanout ignores it)
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish attestation event: %w", err)
	}

	s.log.Debug("Published attestation event",
		slog.String("exchange", s.exchange),
		slog.String("claim_id", event.ClaimID.String()))

	return nil
}

// Name returns identifier for logging.
func (s *AMQPSink) Name() string {
	return fmt.Sprintf("amqp-%s", s.exchange)
}

// Close releases the channel and connection.
func (s *AMQPSink) Close() error {
	if err := s.channel.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}
