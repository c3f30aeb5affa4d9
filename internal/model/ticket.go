package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusAvailable TicketStatus = "available"
	StatusReserved  TicketStatus = "reserved"
	StatusSold      TicketStatus = "sold"
)

// Valid reports whether s is one of the three known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// ParseStatus converts a raw string (case-insensitive, surrounding spaces
// ignored) into a TicketStatus.
func ParseStatus(raw string) (TicketStatus, error) {
	s := TicketStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
	return s, nil
}

// BuyerInfo identifies the person a ticket was sold (or reserved) to.
type BuyerInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	TransactionID string `json:"transactionId"`
}

// IsZero reports whether every field is empty.
func (b BuyerInfo) IsZero() bool {
	return b.Name == "" && b.Email == "" && b.Phone == "" && b.TransactionID == ""
}

// Ticket is a single numbered ticket of a raffle.  Buyer is nil when the
// ticket carries no buyer attribution, which is always the case for
// available tickets.
type Ticket struct {
	Number string       `json:"number"`
	Status TicketStatus `json:"status"`
	Buyer  *BuyerInfo   `json:"buyer,omitempty"`
	Notes  string       `json:"notes,omitempty"`
}

// MinNumberWidth is the smallest width ticket numbers are padded to.
const MinNumberWidth = 3

// NumberWidth returns the zero-padded width used for a raffle with total
// tickets: the digit count of total, never less than MinNumberWidth.
func NumberWidth(total int) int {
	w := len(strconv.Itoa(total))
	if w < MinNumberWidth {
		return MinNumberWidth
	}
	return w
}

// FormatNumber renders ticket n of a raffle with total tickets.
func FormatNumber(n, total int) string {
	return fmt.Sprintf("%0*d", NumberWidth(total), n)
}

// Numbers returns every ticket number of a raffle in ascending order:
// exactly 1..total rendered zero-padded.
func Numbers(total int) []string {
	if total <= 0 {
		return nil
	}
	out := make([]string, total)
	for i := 1; i <= total; i++ {
		out[i-1] = FormatNumber(i, total)
	}
	return out
}

// ValidNumber reports whether s looks like a ticket number: non-empty and
// made of ASCII digits only.  Leading zeros are significant and kept.
func ValidNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
