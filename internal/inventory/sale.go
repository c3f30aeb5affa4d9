package inventory

import (
	"context"
	"strings"

	"github.com/google/logger"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// CompleteSale sells the listed tickets to buyer.  The ticket list must be
// non-empty and the buyer name must be set; both are checked before any
// remote call.  On success the tickets become sold with buyer as their
// attribution and the selection, buyer input and sale dialog are reset.
// On failure nothing changes and the dialog stays open.
func (m *Manager) CompleteSale(ctx context.Context, numbers []string, buyer model.BuyerInfo) (int, error) {
	numbers = dedupe(numbers)
	if len(numbers) == 0 {
		return 0, &ValidationError{Field: "ticketNumbers", Message: "select at least one ticket"}
	}
	if strings.TrimSpace(buyer.Name) == "" {
		return 0, &ValidationError{Field: "buyerInfo.name", Message: "is required"}
	}
	raffleID, err := m.loadedRaffle()
	if err != nil {
		return 0, err
	}

	ctx, cancel := m.bind(ctx)
	defer cancel()
	res, err := m.remote.CompleteSale(ctx, raffleID, numbers, buyer)
	if m.closed() {
		return 0, ErrClosed
	}
	if err == nil && !res.Success {
		err = &RemoteError{Op: "complete sale", Message: "remote reported failure"}
	}
	if err != nil {
		err = asRemote("complete sale", err)
		logger.Warningf("inventory: sell %d tickets of raffle %s: %v", len(numbers), raffleID, err)
		m.store.Dispatch(OperationFailed{Err: err})
		return 0, err
	}

	m.store.Dispatch(SaleCompleted{RaffleID: raffleID, Numbers: numbers, Buyer: buyer})
	logger.Infof("inventory: raffle %s: sold %d tickets to %q", raffleID, res.ModifiedCount, buyer.Name)
	return res.ModifiedCount, nil
}

// FinalizeDraft completes the sale held in the dialog: the current
// selection sold to the buyer input.
func (m *Manager) FinalizeDraft(ctx context.Context) (int, error) {
	st := m.store.State()
	return m.CompleteSale(ctx, st.Selection.Numbers(), st.Draft.Buyer)
}
