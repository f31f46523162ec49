package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/ticket-triage/internal/application"
	"github.com/bryanwahyu/ticket-triage/internal/domain/analysis"
	"github.com/bryanwahyu/ticket-triage/internal/domain/classify"
	"github.com/bryanwahyu/ticket-triage/internal/domain/tickets"
)

// Service runs the triage pipeline: fetch -> classify -> persist.
// The stages execute strictly in order; the first stage error aborts the
// whole run and nothing is retried. One Service value is built at startup
// and shared by request handlers.
type Service struct {
	Tickets    tickets.Repository
	Analyses   analysis.Repository
	Classifier classify.Classifier
	Reports    analysis.ReportStore // optional; nil disables run-report archiving
	Clock      application.Clock
}

// Command untuk run pipeline
type AnalyzeCommand struct {
	// TicketIDs selects the tickets to analyze; empty means all tickets.
	TicketIDs []int64
}

type AnalyzeResult struct {
	RunID       int64  `json:"run_id"`
	Summary     string `json:"summary"`
	TicketCount int    `json:"ticket_count"`
}

// Each stage produces its own result value and never mutates its input.

type fetchResult struct {
	tickets []*tickets.Ticket
}

type classifyResult struct {
	analyses []analysis.NewTicketAnalysis
	summary  string
}

type persistResult struct {
	run  *analysis.Run
	rows []*analysis.TicketAnalysis
}

// Analyze jalankan pipeline sekali sampai selesai
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	fetched, err := s.fetch(ctx, cmd.TicketIDs)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("fetch tickets: %w", err)
	}

	classified, err := s.classify(ctx, fetched)
	if err != nil {
		return AnalyzeResult{}, err
	}

	persisted, err := s.persist(ctx, classified)
	if err != nil {
		return AnalyzeResult{}, err
	}

	s.archive(ctx, persisted)

	return AnalyzeResult{
		RunID:       int64(persisted.run.ID),
		Summary:     classified.summary,
		TicketCount: len(fetched.tickets),
	}, nil
}

// LatestAnalysis ambil run terakhir + hasil per ticket (nil kalau belum ada run)
func (s *Service) LatestAnalysis(ctx context.Context) (*analysis.Latest, error) {
	return s.Analyses.Latest(ctx)
}

// fetch loads the selected tickets, newest first.
func (s *Service) fetch(ctx context.Context, ids []int64) (fetchResult, error) {
	if len(ids) == 0 {
		all, err := s.Tickets.All(ctx)
		if err != nil {
			return fetchResult{}, err
		}
		return fetchResult{tickets: all}, nil
	}

	tids := make([]tickets.TicketID, len(ids))
	for i, id := range ids {
		tids[i] = tickets.TicketID(id)
	}
	subset, err := s.Tickets.ByIDs(ctx, tids)
	if err != nil {
		return fetchResult{}, err
	}
	return fetchResult{tickets: subset}, nil
}

// classify runs the classifier over every fetched ticket and aggregates
// category/priority counts into the run summary.
func (s *Service) classify(ctx context.Context, in fetchResult) (classifyResult, error) {
	analyses := make([]analysis.NewTicketAnalysis, 0, len(in.tickets))

	var categoryOrder []analysis.Category
	categoryCounts := make(map[analysis.Category]int)
	highPriority := 0

	for _, t := range in.tickets {
		res, err := s.Classifier.Classify(ctx, t.Title, t.Description)
		if err != nil {
			return classifyResult{}, fmt.Errorf("classify ticket %d: %w", t.ID, err)
		}

		analyses = append(analyses, analysis.NewTicketAnalysis{
			TicketID: int64(t.ID),
			Category: res.Category,
			Priority: res.Priority,
			Notes:    res.Notes,
		})

		if _, seen := categoryCounts[res.Category]; !seen {
			categoryOrder = append(categoryOrder, res.Category)
		}
		categoryCounts[res.Category]++
		if res.Priority == analysis.PriorityHigh {
			highPriority++
		}
	}

	parts := make([]string, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		parts = append(parts, fmt.Sprintf("%d %s", categoryCounts[c], c))
	}
	summary := fmt.Sprintf("Analyzed %d ticket(s). Found %d high-priority issue(s). Breakdown: %s.",
		len(in.tickets), highPriority, strings.Join(parts, ", "))

	return classifyResult{analyses: analyses, summary: summary}, nil
}

// persist creates the run row first, then bulk-inserts the per-ticket rows
// with that run's id. The two writes are separate transactions, so a failed
// bulk insert can leave a run without rows.
func (s *Service) persist(ctx context.Context, in classifyResult) (persistResult, error) {
	run, err := s.Analyses.CreateRun(ctx, in.summary, s.Clock.Now())
	if err != nil {
		return persistResult{}, fmt.Errorf("create analysis run: %w", err)
	}

	rows, err := s.Analyses.BulkInsert(ctx, run.ID, in.analyses)
	if err != nil {
		return persistResult{}, fmt.Errorf("insert ticket analyses: %w", err)
	}

	return persistResult{run: run, rows: rows}, nil
}

// runReport is the archived shape of a finished run
type runReport struct {
	RunID     int64                      `json:"run_id"`
	CreatedAt string                     `json:"created_at"`
	Summary   string                     `json:"summary"`
	Analyses  []*analysis.TicketAnalysis `json:"analyses"`
}

// archive uploads a JSON report of the finished run to object storage.
// Best effort only: the run is already persisted, so an upload failure is
// logged and never fails the request.
func (s *Service) archive(ctx context.Context, in persistResult) {
	if s.Reports == nil {
		return
	}

	report := runReport{
		RunID:     int64(in.run.ID),
		CreatedAt: in.run.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Summary:   in.run.Summary,
		Analyses:  in.rows,
	}
	body, err := json.Marshal(report)
	if err != nil {
		log.Printf("run %d: marshal report: %v", in.run.ID, err)
		return
	}

	key := fmt.Sprintf("runs/%s.json", uuid.New().String())
	url, err := s.Reports.UploadReport(ctx, key, body)
	if err != nil {
		log.Printf("run %d: archive report: %v", in.run.ID, err)
		return
	}
	log.Printf("run %d: report archived at %s", in.run.ID, url)
}
