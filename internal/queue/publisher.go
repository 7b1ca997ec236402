package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers events to RabbitMQ. A Publisher with an empty URL is a
// no-op, so event publishing can be disabled without touching call sites.
// Errors are logged and returned; a broker outage must never fail the
// request that produced the event.
type Publisher struct {
	url string
}

// NewPublisher builds a publisher for the given AMQP URL. Empty URL
// disables publishing.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Enabled reports whether events will actually be sent.
func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// Publish marshals the event and sends it to the named durable queue.
// Messages are marked persistent so they survive broker restarts. The
// function never panics; any error is logged and returned so the caller can
// choose to ignore it.
func (p *Publisher) Publish(ctx context.Context, queueName string, event any) error {
	if !p.Enabled() {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
