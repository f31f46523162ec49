package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/ticket-triage/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// CreateRun inserts one analysis_runs row and returns it.
func (r *AnalysisRepository) CreateRun(ctx context.Context, summary string, at time.Time) (*domain.Run, error) {
	const q = `
INSERT INTO analysis_runs (summary, created_at)
VALUES (?, ?);`

	at = at.UTC()
	res, err := r.db.ExecContext(ctx, q, summary, at)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Run{ID: domain.RunID(id), CreatedAt: at, Summary: summary}, nil
}

// BulkInsert stores all per-ticket rows for a run in one transaction.
func (r *AnalysisRepository) BulkInsert(ctx context.Context, runID domain.RunID, in []domain.NewTicketAnalysis) ([]*domain.TicketAnalysis, error) {
	const q = `
INSERT INTO ticket_analysis (analysis_run_id, ticket_id, category, priority, notes)
VALUES (?, ?, ?, ?, ?);`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]*domain.TicketAnalysis, 0, len(in))
	for _, na := range in {
		res, err := tx.ExecContext(ctx, q, runID, na.TicketID, na.Category, na.Priority, na.Notes)
		if err != nil {
			return nil, fmt.Errorf("inserting ticket analysis: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.TicketAnalysis{
			ID:       domain.AnalysisID(id),
			RunID:    runID,
			TicketID: na.TicketID,
			Category: na.Category,
			Priority: na.Priority,
			Notes:    na.Notes,
		})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the most recent run joined with its ticket results,
// tickets newest first. Returns (nil, nil) when no run exists.
func (r *AnalysisRepository) Latest(ctx context.Context) (*domain.Latest, error) {
	const runQ = `
SELECT id, created_at, summary
FROM analysis_runs
ORDER BY created_at DESC, id DESC
LIMIT 1;`

	var run domain.Run
	err := r.db.QueryRowContext(ctx, runQ).Scan(&run.ID, &run.CreatedAt, &run.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const joinQ = `
SELECT t.id, t.title, t.description, t.created_at,
       ta.category, ta.priority, COALESCE(ta.notes, '')
FROM ticket_analysis ta
JOIN tickets t ON ta.ticket_id = t.id
WHERE ta.analysis_run_id = ?
ORDER BY t.created_at DESC, t.id DESC;`

	rows, err := r.db.QueryContext(ctx, joinQ, run.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.TicketResult, 0)
	for rows.Next() {
		var tr domain.TicketResult
		if err := rows.Scan(&tr.ID, &tr.Title, &tr.Description, &tr.CreatedAt,
			&tr.Category, &tr.Priority, &tr.Notes); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.Latest{
		RunID:     run.ID,
		CreatedAt: run.CreatedAt,
		Summary:   run.Summary,
		Tickets:   results,
	}, nil
}
