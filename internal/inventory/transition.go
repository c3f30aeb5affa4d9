package inventory

import (
	"context"

	"github.com/google/logger"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// ApplyStatus moves every selected ticket to status and clears the
// selection once the remote acknowledged the change.  It returns the
// number of tickets the remote reports as modified.  Only available and
// reserved are accepted; tickets become sold through CompleteSale.
func (m *Manager) ApplyStatus(ctx context.Context, status model.TicketStatus) (int, error) {
	return m.applyStatus(ctx, m.store.Selected(), status, true)
}

// ApplyStatusTo moves the listed tickets to status.  The selection is left
// as it is.
func (m *Manager) ApplyStatusTo(ctx context.Context, numbers []string, status model.TicketStatus) (int, error) {
	return m.applyStatus(ctx, numbers, status, false)
}

func (m *Manager) applyStatus(ctx context.Context, numbers []string, status model.TicketStatus, fromSelection bool) (int, error) {
	if !status.Valid() {
		return 0, &ValidationError{Field: "status", Message: "must be available, reserved or sold"}
	}
	if status == model.StatusSold {
		return 0, &ValidationError{Field: "status", Message: "sold tickets need a buyer; use CompleteSale"}
	}
	numbers = dedupe(numbers)
	if len(numbers) == 0 {
		return 0, nil
	}
	raffleID, err := m.loadedRaffle()
	if err != nil {
		return 0, err
	}

	ctx, cancel := m.bind(ctx)
	defer cancel()
	res, err := m.remote.UpdateStatus(ctx, raffleID, numbers, status)
	if m.closed() {
		return 0, ErrClosed
	}
	if err == nil && !res.Success {
		err = &RemoteError{Op: "update status", Message: "remote reported failure"}
	}
	if err != nil {
		err = asRemote("update status", err)
		logger.Warningf("inventory: set %d tickets of raffle %s to %s: %v", len(numbers), raffleID, status, err)
		m.store.Dispatch(OperationFailed{Err: err})
		return 0, err
	}

	m.store.Dispatch(StatusApplied{RaffleID: raffleID, Numbers: numbers, Status: status, ClearSelection: fromSelection})
	if res.ModifiedCount < len(numbers) {
		logger.Infof("inventory: raffle %s: %d of %d tickets changed to %s", raffleID, res.ModifiedCount, len(numbers), status)
	}
	return res.ModifiedCount, nil
}

// loadedRaffle returns the id of the raffle in the current snapshot.
func (m *Manager) loadedRaffle() (string, error) {
	if m.closed() {
		return "", ErrClosed
	}
	st := m.store.State()
	if st.Raffle == nil {
		return "", ErrNotLoaded
	}
	return st.Raffle.ID, nil
}

// dedupe drops empty and repeated numbers, keeping first occurrences in
// order.
func dedupe(numbers []string) []string {
	out := make([]string, 0, len(numbers))
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
