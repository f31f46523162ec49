package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/bryanwahyu/ticket-triage/internal/domain/analysis"
	"github.com/bryanwahyu/ticket-triage/internal/domain/tickets"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestTicketRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	first, err := repo.Insert(ctx, []tickets.NewTicket{
		{Title: "Older ticket", Description: "first in"},
	}, base)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	second, err := repo.Insert(ctx, []tickets.NewTicket{
		{Title: "Newer ticket", Description: "second in"},
	}, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	t.Run("InsertAssignsIDs", func(t *testing.T) {
		if first[0].ID == 0 || second[0].ID == 0 {
			t.Fatal("expected non-zero ids")
		}
		if first[0].ID == second[0].ID {
			t.Fatal("expected distinct ids")
		}
	})

	t.Run("AllNewestFirst", func(t *testing.T) {
		all, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 tickets, got %d", len(all))
		}
		if all[0].Title != "Newer ticket" {
			t.Errorf("expected newest first, got %q", all[0].Title)
		}
	})

	t.Run("ByIDsSubset", func(t *testing.T) {
		subset, err := repo.ByIDs(ctx, []tickets.TicketID{first[0].ID})
		if err != nil {
			t.Fatalf("ByIDs failed: %v", err)
		}
		if len(subset) != 1 || subset[0].ID != first[0].ID {
			t.Fatalf("expected only ticket %d, got %+v", first[0].ID, subset)
		}
	})

	t.Run("ByIDsIgnoresUnknown", func(t *testing.T) {
		subset, err := repo.ByIDs(ctx, []tickets.TicketID{first[0].ID, 9999})
		if err != nil {
			t.Fatalf("ByIDs failed: %v", err)
		}
		if len(subset) != 1 {
			t.Fatalf("expected 1 ticket, got %d", len(subset))
		}
	})

	t.Run("ByIDsEmpty", func(t *testing.T) {
		subset, err := repo.ByIDs(ctx, nil)
		if err != nil {
			t.Fatalf("ByIDs failed: %v", err)
		}
		if len(subset) != 0 {
			t.Fatalf("expected no tickets, got %d", len(subset))
		}
	})
}

func TestAnalysisRepository(t *testing.T) {
	db := setupTestDB(t)
	ticketRepo := NewTicketRepository(db)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	t.Run("LatestBeforeAnyRun", func(t *testing.T) {
		latest, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if latest != nil {
			t.Fatalf("expected nil, got %+v", latest)
		}
	})

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	older, err := ticketRepo.Insert(ctx, []tickets.NewTicket{
		{Title: "Billing problem", Description: "charged twice"},
	}, base)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	newer, err := ticketRepo.Insert(ctx, []tickets.NewTicket{
		{Title: "Crash report", Description: "crash on save"},
	}, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	run, err := repo.CreateRun(ctx, "Analyzed 2 ticket(s). Found 0 high-priority issue(s). Breakdown: 1 billing, 1 bug.", base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected non-zero run id")
	}

	rows, err := repo.BulkInsert(ctx, run.ID, []analysis.NewTicketAnalysis{
		{TicketID: int64(older[0].ID), Category: analysis.CategoryBilling, Priority: analysis.PriorityMedium, Notes: "n1"},
		{TicketID: int64(newer[0].ID), Category: analysis.CategoryBug, Priority: analysis.PriorityMedium, Notes: "n2"},
	})
	if err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	t.Run("LatestJoinsTicketsNewestFirst", func(t *testing.T) {
		latest, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if latest == nil {
			t.Fatal("expected a latest run")
		}
		if latest.RunID != run.ID {
			t.Errorf("expected run %d, got %d", run.ID, latest.RunID)
		}
		if len(latest.Tickets) != 2 {
			t.Fatalf("expected 2 results, got %d", len(latest.Tickets))
		}
		if latest.Tickets[0].ID != int64(newer[0].ID) {
			t.Errorf("expected newest ticket first, got id %d", latest.Tickets[0].ID)
		}
		if latest.Tickets[0].Category != analysis.CategoryBug || latest.Tickets[0].Priority != analysis.PriorityMedium {
			t.Errorf("unexpected classification: %+v", latest.Tickets[0])
		}
	})

	t.Run("LatestTracksNewestRun", func(t *testing.T) {
		run2, err := repo.CreateRun(ctx, "Analyzed 1 ticket(s). Found 0 high-priority issue(s). Breakdown: 1 bug.", base.Add(3*time.Minute))
		if err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
		if _, err := repo.BulkInsert(ctx, run2.ID, []analysis.NewTicketAnalysis{
			{TicketID: int64(newer[0].ID), Category: analysis.CategoryBug, Priority: analysis.PriorityLow},
		}); err != nil {
			t.Fatalf("BulkInsert failed: %v", err)
		}

		latest, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if latest.RunID != run2.ID {
			t.Errorf("expected run %d, got %d", run2.ID, latest.RunID)
		}
		if len(latest.Tickets) != 1 {
			t.Errorf("expected 1 result, got %d", len(latest.Tickets))
		}
	})

	t.Run("OrphanedRunHasNoRows", func(t *testing.T) {
		// CreateRun commits on its own; a run with a failed bulk insert
		// stays visible with zero rows.
		run3, err := repo.CreateRun(ctx, "Analyzed 0 ticket(s). Found 0 high-priority issue(s). Breakdown: .", base.Add(4*time.Minute))
		if err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}

		latest, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if latest.RunID != run3.ID {
			t.Errorf("expected run %d, got %d", run3.ID, latest.RunID)
		}
		if len(latest.Tickets) != 0 {
			t.Errorf("expected no results, got %d", len(latest.Tickets))
		}
	})
}
