package inventory

import (
	"context"
	"strings"

	"github.com/google/logger"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// Load fetches the raffle and its full ticket set and replaces the cached
// snapshot wholesale.  On failure the store is left with Loading false and
// the error message recorded; nothing is retried.  When several loads
// overlap only the most recent one may update the store.
func (m *Manager) Load(ctx context.Context, raffleID string) error {
	raffleID = strings.TrimSpace(raffleID)
	if raffleID == "" {
		return &ValidationError{Field: "raffleId", Message: "is required"}
	}
	if m.closed() {
		return ErrClosed
	}
	m.mu.Lock()
	m.raffleID = raffleID
	m.mu.Unlock()

	seq := m.loadSeq.Add(1)
	m.store.Dispatch(LoadStarted{})

	ctx, cancel := m.bind(ctx)
	defer cancel()

	var (
		raffle  model.Raffle
		tickets []model.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := m.remote.Raffle(gctx, raffleID)
		if err != nil {
			return asRemote("fetch raffle", err)
		}
		raffle = r
		return nil
	})
	g.Go(func() error {
		ts, err := m.remote.Tickets(gctx, raffleID)
		if err != nil {
			return asRemote("fetch tickets", err)
		}
		tickets = ts
		return nil
	})
	err := g.Wait()

	if m.closed() {
		return ErrClosed
	}
	if seq != m.loadSeq.Load() {
		// A newer load owns the store now.
		return err
	}
	if err != nil {
		logger.Warningf("inventory: load raffle %s: %v", raffleID, err)
		m.store.Dispatch(LoadFailed{Err: err})
		return err
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	m.store.Dispatch(SnapshotLoaded{Raffle: raffle, Tickets: tickets})
	logger.Infof("inventory: loaded raffle %s with %d tickets", raffleID, len(tickets))
	return nil
}

// Refetch reloads the raffle last passed to Load.
func (m *Manager) Refetch(ctx context.Context) error {
	id := m.RaffleID()
	if id == "" {
		return ErrNotLoaded
	}
	return m.Load(ctx, id)
}

// Summary asks the remote for per-status counts of the loaded raffle.  It
// does not touch the store; State.Counts gives the local equivalent.
func (m *Manager) Summary(ctx context.Context) (model.Summary, error) {
	id := m.RaffleID()
	if id == "" {
		return model.Summary{}, ErrNotLoaded
	}
	if m.closed() {
		return model.Summary{}, ErrClosed
	}
	ctx, cancel := m.bind(ctx)
	defer cancel()
	sum, err := m.remote.Summary(ctx, id)
	if m.closed() {
		return model.Summary{}, ErrClosed
	}
	if err != nil {
		return model.Summary{}, asRemote("fetch summary", err)
	}
	return sum, nil
}
