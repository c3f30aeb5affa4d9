package inventory

import (
	"reflect"
	"testing"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

func TestPageFiveTicketsBySize2(t *testing.T) {
	ts := fiveTickets()
	if got := TotalPages(len(ts), 2); got != 3 {
		t.Fatalf("TotalPages = %d, want 3", got)
	}
	want := [][]string{{"001", "002"}, {"003", "004"}, {"005"}}
	for i, w := range want {
		if got := numbersOf(Page(ts, i+1, 2)); !reflect.DeepEqual(got, w) {
			t.Errorf("page %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestPagesCoverFilteredList(t *testing.T) {
	for count := 0; count <= 23; count++ {
		ts := make([]model.Ticket, 0, count)
		for _, n := range model.Numbers(count) {
			ts = append(ts, model.Ticket{Number: n, Status: model.StatusAvailable})
		}
		for size := 1; size <= 7; size++ {
			var joined []string
			for p := 1; p <= TotalPages(count, size); p++ {
				page := Page(ts, p, size)
				if len(page) > size {
					t.Fatalf("count=%d size=%d page %d has %d items", count, size, p, len(page))
				}
				joined = append(joined, numbersOf(page)...)
			}
			if count == 0 && len(joined) == 0 {
				continue
			}
			if !reflect.DeepEqual(joined, numbersOf(ts)) {
				t.Fatalf("count=%d size=%d: pages joined to %v", count, size, joined)
			}
		}
	}
}

func TestTotalPagesAtLeastOne(t *testing.T) {
	if got := TotalPages(0, DefaultPageSize); got != 1 {
		t.Errorf("TotalPages(0) = %d, want 1", got)
	}
	if got := TotalPages(101, DefaultPageSize); got != 2 {
		t.Errorf("TotalPages(101) = %d, want 2", got)
	}
}

func TestPageOutOfRangeIsEmpty(t *testing.T) {
	ts := fiveTickets()
	for _, p := range []int{0, -1, 4, 100} {
		if got := Page(ts, p, 2); len(got) != 0 {
			t.Errorf("page %d returned %v", p, numbersOf(got))
		}
	}
}
