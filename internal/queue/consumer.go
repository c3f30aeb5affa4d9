package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// SalesLogFile is the file, inside the consumer's log directory, that sale
// events are appended to.
const SalesLogFile = "sales.log"

// StartSalesConsumer connects to RabbitMQ, declares the tickets.sold queue
// (durable) and consumes it until ctx is cancelled.  Each message is
// appended to <logDir>/sales.log as one line.  Broker failures trigger a
// reconnect with exponential backoff; a message that cannot be handled is
// rejected without requeue so it cannot block the queue.
func StartSalesConsumer(ctx context.Context, url, logDir string) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warningf("sales-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logDir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warningf("sales-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warningf("sales-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(TicketsSoldQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, TicketsSoldQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleMessage(logDir, d.Body); err != nil {
			logger.Errorf("sales-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one TicketsSoldEvent and appends it to the sales
// log in logDir.
func HandleMessage(logDir string, body []byte) error {
	var ev TicketsSoldEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.RaffleID == "" || len(ev.TicketNumbers) == 0 {
		return errors.New("event without raffle or tickets")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, SalesLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatSaleLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatSaleLine renders ev as a single log line ending in a newline.
func FormatSaleLine(ev TicketsSoldEvent) string {
	return fmt.Sprintf("[%s] Tickets sold | event_id=%s | raffle_id=%s | buyer=%q | txn=%q | modified=%d | tickets=[%s]\n",
		ev.SoldAt, ev.EventID, ev.RaffleID, ev.BuyerName, ev.TransactionID, ev.ModifiedCount, strings.Join(ev.TicketNumbers, ","))
}
