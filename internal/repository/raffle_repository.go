package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sql.ErrNoRows comparisons

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// RaffleRepo reads raffles.  Raffles are created and edited by the
// content admin; this service only needs them for ticket counts and to
// check existence.
type RaffleRepo struct {
	db *sql.DB
}

// NewRaffleRepo returns a RaffleRepo bound to db.
func NewRaffleRepo(db *sql.DB) *RaffleRepo { return &RaffleRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *RaffleRepo) DB() *sql.DB { return r.db }

// GetByID loads one raffle.  It returns ErrRaffleNotFound when the id is
// unknown.
func (r *RaffleRepo) GetByID(ctx context.Context, id string) (*model.Raffle, error) {
	const q = `SELECT id, name, prize, total_tickets, ticket_price, draw_method, is_active
	           FROM raffles WHERE id = ?`
	var rf model.Raffle
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rf.ID,
		&rf.Name,
		&rf.Prize,
		&rf.TotalTickets,
		&rf.TicketPrice,
		&rf.DrawMethod,
		&rf.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRaffleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rf, nil
}
