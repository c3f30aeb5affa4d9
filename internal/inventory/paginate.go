package inventory

import "github.com/iliyamo/raffle-tickets/internal/model"

// DefaultPageSize is the number of tickets shown per page unless
// configured otherwise.
const DefaultPageSize = 100

// TotalPages returns max(1, ceil(count/pageSize)).  A page size below one
// is treated as one.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	n := (count + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

// Bounds returns the half-open index range [first, last) of page.
// Pages are 1-based.
func Bounds(page, pageSize int) (first, last int) {
	return (page - 1) * pageSize, page * pageSize
}

// Page returns the slice of filtered shown on page.  The last index is
// clamped to the list length; a page past the end (or below one) yields
// an empty slice rather than an error.
func Page(filtered []model.Ticket, page, pageSize int) []model.Ticket {
	if pageSize < 1 {
		pageSize = 1
	}
	first, last := Bounds(page, pageSize)
	if page < 1 || first >= len(filtered) {
		return []model.Ticket{}
	}
	if last > len(filtered) {
		last = len(filtered)
	}
	return filtered[first:last]
}
