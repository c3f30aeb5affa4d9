package inventory

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// checkTickets fails t when a ticket breaks the buyer rules: available
// tickets carry no buyer, sold tickets carry a named buyer.
func checkTickets(t *testing.T, step string, ts []model.Ticket) {
	t.Helper()
	for _, tk := range ts {
		if tk.Status == model.StatusAvailable && tk.Buyer != nil {
			t.Fatalf("%s: ticket %s is available with buyer %+v", step, tk.Number, *tk.Buyer)
		}
		if tk.Status == model.StatusSold && (tk.Buyer == nil || strings.TrimSpace(tk.Buyer.Name) == "") {
			t.Fatalf("%s: ticket %s is sold without a buyer name", step, tk.Number)
		}
	}
}

func randomNumbers(rng *rand.Rand, total int) []string {
	all := model.Numbers(total)
	var out []string
	for _, n := range all {
		if rng.Intn(3) == 0 {
			out = append(out, n)
		}
	}
	return out
}

var (
	randomStatuses = []model.TicketStatus{model.StatusAvailable, model.StatusReserved, model.StatusSold}
	randomBuyers   = []model.BuyerInfo{
		{Name: "Ana", TransactionID: "T1"},
		{Name: "Luis", Email: "luis@example.com"},
		{Name: "  ", Phone: "555-0101"},
		{},
	}
)

func (f *fakeRemote) snapshot() []model.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Ticket, len(f.tickets))
	copy(out, f.tickets)
	return out
}

// TestRandomWritesKeepBuyerInvariants drives seeded sequences of status
// changes and sales through the manager.  After every step the local
// snapshot and the remote both keep the buyer rules, and they agree.
func TestRandomWritesKeepBuyerInvariants(t *testing.T) {
	const total = 12
	for seed := int64(1); seed <= 25; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			ctx := context.Background()
			rng := rand.New(rand.NewSource(seed))
			m, remote := newLoadedManager(t, total)
			s := m.Store()

			for i := 0; i < 60; i++ {
				var step string
				var err error
				switch rng.Intn(4) {
				case 0:
					numbers := randomNumbers(rng, total)
					status := randomStatuses[rng.Intn(len(randomStatuses))]
					step = fmt.Sprintf("step %d: ApplyStatusTo(%v, %s)", i, numbers, status)
					_, err = m.ApplyStatusTo(ctx, numbers, status)
				case 1:
					for _, n := range randomNumbers(rng, total) {
						s.Toggle(n)
					}
					status := randomStatuses[rng.Intn(len(randomStatuses))]
					step = fmt.Sprintf("step %d: ApplyStatus(%v, %s)", i, s.Selected(), status)
					_, err = m.ApplyStatus(ctx, status)
				case 2:
					numbers := randomNumbers(rng, total)
					buyer := randomBuyers[rng.Intn(len(randomBuyers))]
					step = fmt.Sprintf("step %d: CompleteSale(%v, %q)", i, numbers, buyer.Name)
					_, err = m.CompleteSale(ctx, numbers, buyer)
				default:
					s.SelectAll(rng.Intn(2) == 0)
					s.Paginate(1 + rng.Intn(total/2+2))
					s.OpenSale()
					s.EditBuyer(randomBuyers[rng.Intn(len(randomBuyers))])
					step = fmt.Sprintf("step %d: FinalizeDraft(%v)", i, s.Selected())
					_, err = m.FinalizeDraft(ctx)
				}
				if err != nil && !IsValidation(err) {
					t.Fatalf("%s: %v", step, err)
				}

				local := s.State().Tickets
				checkTickets(t, step, local)
				checkTickets(t, step+" (remote)", remote.snapshot())
				if !reflect.DeepEqual(local, remote.snapshot()) {
					t.Fatalf("%s: local snapshot diverged from remote", step)
				}
			}
		})
	}
}

// TestRandomActionsKeepBuyerInvariants feeds seeded action sequences
// straight into Reduce, including writes addressed to another raffle.
func TestRandomActionsKeepBuyerInvariants(t *testing.T) {
	const total = 9
	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		st := Reduce(NewState(4), SnapshotLoaded{Raffle: model.Raffle{ID: "r1", TotalTickets: total}, Tickets: availableTickets(total)})

		for i := 0; i < 80; i++ {
			raffleID := "r1"
			if rng.Intn(5) == 0 {
				raffleID = "r2"
			}
			var a Action
			switch rng.Intn(6) {
			case 0:
				a = StatusApplied{RaffleID: raffleID, Numbers: randomNumbers(rng, total), Status: randomStatuses[rng.Intn(2)], ClearSelection: rng.Intn(2) == 0}
			case 1:
				a = SaleCompleted{RaffleID: raffleID, Numbers: randomNumbers(rng, total), Buyer: randomBuyers[rng.Intn(2)]}
			case 2:
				a = SelectionToggled{Number: model.Numbers(total)[rng.Intn(total)]}
			case 3:
				a = PageStepped{Delta: 1 - 2*rng.Intn(2)}
			case 4:
				a = PageChanged{Page: rng.Intn(6)}
			default:
				a = SelectAllChanged{Selected: rng.Intn(2) == 0}
			}
			prev := st
			st = Reduce(st, a)
			step := fmt.Sprintf("seed %d step %d: %#v", seed, i, a)
			checkTickets(t, step, st.Tickets)
			if raffleID == "r2" && !reflect.DeepEqual(st.Tickets, prev.Tickets) {
				t.Fatalf("%s: write for another raffle changed tickets", step)
			}
			if ps, ok := a.(PageStepped); ok {
				want := prev.CurrentPage
				if ps.Delta < 0 && prev.CurrentPage > 1 || ps.Delta > 0 && prev.CurrentPage < prev.TotalPages() {
					want += ps.Delta
				}
				if st.CurrentPage != want {
					t.Fatalf("%s: stepped from page %d to %d, want %d", step, prev.CurrentPage, st.CurrentPage, want)
				}
			}
		}
	}
}

// availableTickets returns n available tickets numbered for a raffle of n.
func availableTickets(n int) []model.Ticket {
	out := make([]model.Ticket, 0, n)
	for _, num := range model.Numbers(n) {
		out = append(out, model.Ticket{Number: num, Status: model.StatusAvailable})
	}
	return out
}
