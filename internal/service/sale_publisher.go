// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/logger"
	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/raffle-tickets/internal/queue"
)

// SalePublisher publishes sale events to the tickets.sold queue.  Each
// publish opens its own connection, so the publisher holds no state that
// could go stale between requests.
type SalePublisher struct {
	URL string
}

// NewSalePublisher returns a publisher for the broker at url.
func NewSalePublisher(url string) *SalePublisher { return &SalePublisher{URL: url} }

// PublishTicketsSold publishes event to the "tickets.sold" queue. The
// function attempts to be robust and to never panic; any error is logged
// and returned so the caller can choose to ignore it. Messages are marked
// as persistent.
func (p *SalePublisher) PublishTicketsSold(ctx context.Context, event q.TicketsSoldEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		logger.Warningf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warningf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.TicketsSoldQueue, // name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // args
	); err != nil {
		logger.Warningf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Warningf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                 // default exchange
		q.TicketsSoldQueue, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		pub,
	); err != nil {
		logger.Warningf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
