// Package inventory holds the ticket inventory and reservation core: a
// local snapshot of a raffle's tickets with filtering, pagination,
// selection, bulk status transitions and sale finalization.  The remote
// service stays the source of truth; local state is only mutated after
// the remote call it depends on has succeeded.
package inventory

import (
	"context"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// Remote is the service the inventory reads from and writes to.  Errors
// for a missing raffle must wrap ErrNotFound; every other failure should
// be a *RemoteError (other errors are wrapped into one).
type Remote interface {
	Raffle(ctx context.Context, raffleID string) (model.Raffle, error)
	Tickets(ctx context.Context, raffleID string) ([]model.Ticket, error)
	Summary(ctx context.Context, raffleID string) (model.Summary, error)
	UpdateStatus(ctx context.Context, raffleID string, numbers []string, status model.TicketStatus) (model.UpdateResult, error)
	CompleteSale(ctx context.Context, raffleID string, numbers []string, buyer model.BuyerInfo) (model.UpdateResult, error)
}
