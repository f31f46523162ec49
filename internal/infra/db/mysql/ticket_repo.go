package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domain "github.com/bryanwahyu/ticket-triage/internal/domain/tickets"
)

type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Insert stores the tickets in one transaction and returns them with ids.
// MySQL has no RETURNING, so ids come from LAST_INSERT_ID per row.
func (r *TicketRepository) Insert(ctx context.Context, in []domain.NewTicket, at time.Time) ([]*domain.Ticket, error) {
	const q = `
INSERT INTO tickets (title, description, created_at)
VALUES (?, ?, ?);`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]*domain.Ticket, 0, len(in))
	for _, nt := range in {
		res, err := tx.ExecContext(ctx, q, nt.Title, nt.Description, at)
		if err != nil {
			return nil, fmt.Errorf("inserting ticket: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.Ticket{
			ID:          domain.TicketID(id),
			Title:       nt.Title,
			Description: nt.Description,
			CreatedAt:   at,
		})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// All fetch semua ticket, terbaru dulu
func (r *TicketRepository) All(ctx context.Context) ([]*domain.Ticket, error) {
	const q = `
SELECT id, title, description, created_at
FROM tickets
ORDER BY created_at DESC, id DESC;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ByIDs fetch subset ticket by id (IN clause dibangun dinamis)
func (r *TicketRepository) ByIDs(ctx context.Context, ids []domain.TicketID) ([]*domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = int64(id)
	}
	query := fmt.Sprintf(`
SELECT id, title, description, created_at
FROM tickets
WHERE id IN (%s)
ORDER BY created_at DESC, id DESC;`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows *sql.Rows) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
