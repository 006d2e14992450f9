package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes persistent JSON messages to a durable queue.
type RabbitMQ struct {
	mu        sync.Mutex
	conn      *amqp.Connection
	ch        amqpChannel
	queueName string
	logger    *log.Logger
}

// DialRabbitMQ connects to url and declares queueName.
func DialRabbitMQ(url, queueName string, logger *log.Logger) (*RabbitMQ, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	logger.Printf("events: rabbitmq queue=%s ready", queueName)
	return &RabbitMQ{conn: conn, ch: ch, queueName: queueName, logger: logger}, nil
}

func (r *RabbitMQ) OrderFinalized(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	r.mu.Lock()
	err = r.ch.PublishWithContext(pubCtx,
		"",          // default exchange
		r.queueName, // routing key
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.OrderID,
			Timestamp:    event.FinalizedAt,
			Body:         body,
		})
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	r.logger.Printf("events: published order_id=%s status=%s", event.OrderID, event.Status)
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ch.Close(); err != nil {
		return err
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
