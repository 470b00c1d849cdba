package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"career-coach/domain"
)

// RabbitMQ publishes interview summaries to a durable queue and can consume
// them for archiving.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	log     logrus.FieldLogger
}

func NewRabbitMQ(url, queueName string, logger logrus.FieldLogger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	log := logger.WithFields(logrus.Fields{"component": "rabbitmq", "queue": q.Name})
	log.Info("connected to RabbitMQ and declared queue")

	return &RabbitMQ{conn: conn, channel: ch, queue: q, log: log}, nil
}

// PublishSummary sends one summary event as a persistent JSON message.
func (r *RabbitMQ) PublishSummary(ctx context.Context, event domain.SummaryEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode summary event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.channel.PublishWithContext(
		ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.SessionID,
			Timestamp:    event.GeneratedAt,
			Body:         body,
		},
	)
}

// ConsumeSummaries hands each event to handler until ctx is done or the
// channel closes. Messages are acked after a successful handler call and
// requeued once on failure.
func (r *RabbitMQ) ConsumeSummaries(ctx context.Context, handler func(context.Context, domain.SummaryEvent) error) error {
	msgs, err := r.channel.Consume(
		r.queue.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			var event domain.SummaryEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				r.log.WithError(err).Warn("invalid summary event")
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, event); err != nil {
				r.log.WithError(err).WithField("session_id", event.SessionID).Error("summary handler failed")
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		r.conn.Close()
		return err
	}
	return r.conn.Close()
}
