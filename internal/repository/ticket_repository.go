package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// insertChunk is the number of rows per INSERT when creating a ticket set.
const insertChunk = 1000

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// TicketRepo provides data access to the tickets table.  Ticket numbers
// are stored and compared as the zero-padded strings clients use.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to db.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying sql.DB.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// ListByRaffle returns every ticket of a raffle ordered by number.  An
// unknown raffle yields an empty slice; callers check existence through
// RaffleRepo.
func (r *TicketRepo) ListByRaffle(ctx context.Context, raffleID string) ([]model.Ticket, error) {
	const q = `SELECT number, status, buyer_name, buyer_email, buyer_phone, transaction_id, notes
	           FROM tickets WHERE raffle_id = ? ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q, raffleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := []model.Ticket{}
	for rows.Next() {
		var (
			t                         model.Ticket
			name, email, phone, txnID sql.NullString
			notes                     sql.NullString
		)
		if err := rows.Scan(&t.Number, &t.Status, &name, &email, &phone, &txnID, &notes); err != nil {
			return nil, err
		}
		t.Buyer = buyerFromColumns(name, email, phone, txnID)
		t.Notes = notes.String
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// buyerFromColumns returns nil when every buyer column is NULL.
func buyerFromColumns(name, email, phone, txnID sql.NullString) *model.BuyerInfo {
	if !name.Valid && !email.Valid && !phone.Valid && !txnID.Valid {
		return nil
	}
	return &model.BuyerInfo{
		Name:          name.String,
		Email:         email.String,
		Phone:         phone.String,
		TransactionID: txnID.String,
	}
}

// Summary counts the tickets of a raffle per status.
func (r *TicketRepo) Summary(ctx context.Context, raffleID string) (model.Summary, error) {
	const q = `SELECT status, COUNT(*) FROM tickets WHERE raffle_id = ? GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, raffleID)
	if err != nil {
		return model.Summary{}, err
	}
	defer rows.Close()
	var sum model.Summary
	for rows.Next() {
		var (
			status model.TicketStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return model.Summary{}, err
		}
		switch status {
		case model.StatusAvailable:
			sum.Available = n
		case model.StatusReserved:
			sum.Reserved = n
		case model.StatusSold:
			sum.Sold = n
		}
	}
	return sum, rows.Err()
}

// Initialize creates tickets 1..total, all available, for a raffle that
// has none yet.  It returns ErrConflict when tickets already exist.
func (r *TicketRepo) Initialize(ctx context.Context, raffleID string, total int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE raffle_id = ? FOR UPDATE`, raffleID).Scan(&existing); err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, ErrConflict
	}
	numbers := model.Numbers(total)
	if err := r.CreateBulkTx(ctx, tx, raffleID, numbers); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(numbers), nil
}

// CreateBulkTx inserts available tickets for the given numbers inside tx,
// in chunks of insertChunk rows.  A duplicate number maps to ErrConflict.
func (r *TicketRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, raffleID string, numbers []string) error {
	for start := 0; start < len(numbers); start += insertChunk {
		end := start + insertChunk
		if end > len(numbers) {
			end = len(numbers)
		}
		chunk := numbers[start:end]
		query := `INSERT INTO tickets (raffle_id, number, status) VALUES ` +
			strings.TrimSuffix(strings.Repeat("(?, ?, 'available'),", len(chunk)), ",")
		args := make([]interface{}, 0, len(chunk)*2)
		for _, n := range chunk {
			args = append(args, raffleID, n)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
				return ErrConflict
			}
			return err
		}
	}
	return nil
}

// BulkUpdateStatusTx sets status on the listed tickets inside tx and
// returns how many rows actually changed.  Moving to available also
// clears every buyer column, whatever the previous status was.  Sold is
// refused with ErrSoldNeedsBuyer; use CompleteSaleTx.
func (r *TicketRepo) BulkUpdateStatusTx(ctx context.Context, tx *sql.Tx, raffleID string, numbers []string, status model.TicketStatus) (int64, error) {
	if status == model.StatusSold {
		return 0, ErrSoldNeedsBuyer
	}
	if len(numbers) == 0 {
		return 0, nil
	}
	var (
		query string
		args  []interface{}
	)
	if status == model.StatusAvailable {
		query = `UPDATE tickets SET status = 'available', buyer_name = NULL, buyer_email = NULL,
		         buyer_phone = NULL, transaction_id = NULL
		         WHERE raffle_id = ? AND number IN (` + placeholders(len(numbers)) + `)`
		args = append(args, raffleID)
	} else {
		query = `UPDATE tickets SET status = ? WHERE raffle_id = ? AND number IN (` + placeholders(len(numbers)) + `)`
		args = append(args, string(status), raffleID)
	}
	for _, n := range numbers {
		args = append(args, n)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CompleteSaleTx marks the listed tickets sold to buyer inside tx and
// returns how many rows changed.
func (r *TicketRepo) CompleteSaleTx(ctx context.Context, tx *sql.Tx, raffleID string, numbers []string, buyer model.BuyerInfo) (int64, error) {
	if len(numbers) == 0 {
		return 0, nil
	}
	query := `UPDATE tickets SET status = 'sold', buyer_name = ?, buyer_email = ?, buyer_phone = ?, transaction_id = ?
	          WHERE raffle_id = ? AND number IN (` + placeholders(len(numbers)) + `)`
	args := make([]interface{}, 0, len(numbers)+5)
	args = append(args, buyer.Name, buyer.Email, buyer.Phone, buyer.TransactionID, raffleID)
	for _, n := range numbers {
		args = append(args, n)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateStatus runs BulkUpdateStatusTx in its own transaction.
func (r *TicketRepo) UpdateStatus(ctx context.Context, raffleID string, numbers []string, status model.TicketStatus) (int64, error) {
	var n int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		n, err = r.BulkUpdateStatusTx(ctx, tx, raffleID, numbers, status)
		return err
	})
	return n, err
}

// CompleteSale runs CompleteSaleTx in its own transaction.
func (r *TicketRepo) CompleteSale(ctx context.Context, raffleID string, numbers []string, buyer model.BuyerInfo) (int64, error) {
	var n int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		n, err = r.CompleteSaleTx(ctx, tx, raffleID, numbers, buyer)
		return err
	})
	return n, err
}

func (r *TicketRepo) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
