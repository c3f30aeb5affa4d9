// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// TicketsSoldQueue is the durable queue sale events are published to.
const TicketsSoldQueue = "tickets.sold"

// TicketsSoldEvent is published after a sale has been committed.  It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type TicketsSoldEvent struct {
	EventID       string   `json:"event_id"`
	RaffleID      string   `json:"raffle_id"`
	TicketNumbers []string `json:"ticket_numbers"`
	BuyerName     string   `json:"buyer_name"`
	BuyerEmail    string   `json:"buyer_email,omitempty"`
	TransactionID string   `json:"transaction_id,omitempty"`
	ModifiedCount int      `json:"modified_count"`
	SoldAt        string   `json:"sold_at"`
}

// NewTicketsSoldEvent builds an event with a fresh id and the current UTC
// time.
func NewTicketsSoldEvent(raffleID string, numbers []string, buyer model.BuyerInfo, modified int) TicketsSoldEvent {
	return TicketsSoldEvent{
		EventID:       uuid.NewString(),
		RaffleID:      raffleID,
		TicketNumbers: numbers,
		BuyerName:     buyer.Name,
		BuyerEmail:    buyer.Email,
		TransactionID: buyer.TransactionID,
		ModifiedCount: modified,
		SoldAt:        time.Now().UTC().Format(time.RFC3339),
	}
}
