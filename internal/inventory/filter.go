package inventory

import (
	"fmt"
	"strings"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// StatusFilter is either FilterAll or one of the ticket statuses.
type StatusFilter string

// FilterAll disables status filtering.
const FilterAll StatusFilter = "all"

// ParseStatusFilter accepts "all" (or an empty string) and the ticket
// statuses.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	if !model.TicketStatus(s).Valid() {
		return "", fmt.Errorf("unknown status filter %q", raw)
	}
	return StatusFilter(s), nil
}

func (f StatusFilter) all() bool { return f == "" || f == FilterAll }

// Filter returns the tickets matching status and query, in input order.
//
// A non-all status excludes other statuses before the text search runs.
// A non-empty query (after trimming) matches when any of these hold: the
// number equals the query, the number contains it, or the buyer name,
// email, phone or transaction id contains it case-insensitively.
// With FilterAll and an empty query the input slice itself is returned.
func Filter(tickets []model.Ticket, status StatusFilter, query string) []model.Ticket {
	q := strings.TrimSpace(query)
	if status.all() && q == "" {
		return tickets
	}
	lq := strings.ToLower(q)
	out := make([]model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if !status.all() && string(t.Status) != string(status) {
			continue
		}
		if q != "" && !matches(t, q, lq) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t model.Ticket, q, lq string) bool {
	if t.Number == q || strings.Contains(t.Number, lq) {
		return true
	}
	if t.Buyer == nil {
		return false
	}
	return containsFold(t.Buyer.Name, lq) ||
		containsFold(t.Buyer.Email, lq) ||
		containsFold(t.Buyer.Phone, lq) ||
		containsFold(t.Buyer.TransactionID, lq)
}

// containsFold reports whether lower-cased s contains lq, which must
// already be lower case.
func containsFold(s, lq string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lq)
}
