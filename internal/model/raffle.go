package model

// Raffle is the parent entity of a ticket set.  It is owned by the
// remote service; clients only hold a cached copy of it.
//
// Fields:
//  ID           – opaque raffle identifier.
//  Name         – display name.
//  Prize        – description of the prize.
//  TotalTickets – number of tickets, fixed at creation.
//  TicketPrice  – price of a single ticket.
//  DrawMethod   – free text describing how the winner is drawn.
//  IsActive     – whether the raffle is currently open.
type Raffle struct {
	ID           string  `json:"id"`           // raffles.id
	Name         string  `json:"name"`         // raffles.name
	Prize        string  `json:"prize"`        // raffles.prize
	TotalTickets int     `json:"totalTickets"` // raffles.total_tickets
	TicketPrice  float64 `json:"ticketPrice"`  // raffles.ticket_price
	DrawMethod   string  `json:"drawMethod"`   // raffles.draw_method
	IsActive     bool    `json:"isActive"`     // raffles.is_active
}

// Summary counts tickets per status for a raffle.
type Summary struct {
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Sold      int `json:"sold"`
}

// Total returns the number of tickets covered by the summary.
func (s Summary) Total() int { return s.Available + s.Reserved + s.Sold }

// UpdateResult is returned by bulk status and sale operations.
// ModifiedCount can be lower than the number of requested tickets when
// some of them were already in the target state.
type UpdateResult struct {
	Success       bool `json:"success"`
	ModifiedCount int  `json:"modifiedCount"`
}
