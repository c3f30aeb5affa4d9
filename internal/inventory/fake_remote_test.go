package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// fakeRemote is an in-memory Remote.  Writes are applied to its own copy
// of the tickets so reloads observe them.
type fakeRemote struct {
	mu        sync.Mutex
	raffle    model.Raffle
	tickets   []model.Ticket
	readErr   error
	writeErr  error
	failFlag  bool          // respond with success=false
	block     chan struct{} // when set, writes wait for it or ctx
	calls     int
	lastBuyer model.BuyerInfo
}

func newFakeRemote(total int) *fakeRemote {
	f := &fakeRemote{raffle: model.Raffle{ID: "r1", Name: "Spring raffle", TotalTickets: total, TicketPrice: 10, IsActive: true}}
	for _, n := range model.Numbers(total) {
		f.tickets = append(f.tickets, model.Ticket{Number: n, Status: model.StatusAvailable})
	}
	return f
}

func (f *fakeRemote) Raffle(ctx context.Context, id string) (model.Raffle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return model.Raffle{}, f.readErr
	}
	if id != f.raffle.ID {
		return model.Raffle{}, fmt.Errorf("raffle %s: %w", id, ErrNotFound)
	}
	return f.raffle, nil
}

func (f *fakeRemote) Tickets(ctx context.Context, id string) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if id != f.raffle.ID {
		return nil, fmt.Errorf("tickets of %s: %w", id, ErrNotFound)
	}
	out := make([]model.Ticket, len(f.tickets))
	copy(out, f.tickets)
	return out, nil
}

func (f *fakeRemote) Summary(ctx context.Context, id string) (model.Summary, error) {
	ts, err := f.Tickets(ctx, id)
	if err != nil {
		return model.Summary{}, err
	}
	return State{Tickets: ts}.Counts(), nil
}

func (f *fakeRemote) wait(ctx context.Context) error {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRemote) UpdateStatus(ctx context.Context, id string, numbers []string, status model.TicketStatus) (model.UpdateResult, error) {
	if err := f.wait(ctx); err != nil {
		return model.UpdateResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.writeErr != nil {
		return model.UpdateResult{}, f.writeErr
	}
	if f.failFlag {
		return model.UpdateResult{Success: false}, nil
	}
	set := NewSelection(numbers...)
	modified := 0
	for i, t := range f.tickets {
		if !set.Has(t.Number) || t.Status == status {
			continue
		}
		f.tickets[i].Status = status
		if status == model.StatusAvailable {
			f.tickets[i].Buyer = nil
		}
		modified++
	}
	return model.UpdateResult{Success: true, ModifiedCount: modified}, nil
}

func (f *fakeRemote) CompleteSale(ctx context.Context, id string, numbers []string, buyer model.BuyerInfo) (model.UpdateResult, error) {
	if err := f.wait(ctx); err != nil {
		return model.UpdateResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastBuyer = buyer
	if f.writeErr != nil {
		return model.UpdateResult{}, f.writeErr
	}
	if f.failFlag {
		return model.UpdateResult{Success: false}, nil
	}
	set := NewSelection(numbers...)
	modified := 0
	for i, t := range f.tickets {
		if set.Has(t.Number) {
			b := buyer
			f.tickets[i].Status = model.StatusSold
			f.tickets[i].Buyer = &b
			modified++
		}
	}
	return model.UpdateResult{Success: true, ModifiedCount: modified}, nil
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fiveTickets returns tickets 001..005, all available.
func fiveTickets() []model.Ticket {
	out := make([]model.Ticket, 0, 5)
	for _, n := range model.Numbers(5) {
		out = append(out, model.Ticket{Number: n, Status: model.StatusAvailable})
	}
	return out
}

func numbersOf(ts []model.Ticket) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Number
	}
	return out
}

func ticketByNumber(ts []model.Ticket, n string) (model.Ticket, bool) {
	for _, t := range ts {
		if t.Number == n {
			return t, true
		}
	}
	return model.Ticket{}, false
}
