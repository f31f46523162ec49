package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bryanwahyu/ticket-triage/internal/application"
	apppipeline "github.com/bryanwahyu/ticket-triage/internal/application/pipeline"
	apptickets "github.com/bryanwahyu/ticket-triage/internal/application/tickets"
	"github.com/bryanwahyu/ticket-triage/internal/infra/classifier/keyword"
	sqlitedb "github.com/bryanwahyu/ticket-triage/internal/infra/db/sqlite"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := application.SystemClock{}
	ticketRepo := sqlitedb.NewTicketRepository(db)
	analysisRepo := sqlitedb.NewAnalysisRepository(db)

	ticketsSvc := &apptickets.Service{Repo: ticketRepo, Clock: clock}
	pipelineSvc := &apppipeline.Service{
		Tickets:    ticketRepo,
		Analyses:   analysisRepo,
		Classifier: keyword.New(),
		Clock:      clock,
	}

	return NewRouter(ticketsSvc, pipelineSvc)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createTicket(t *testing.T, h http.Handler, title, description string) int64 {
	t.Helper()

	w := doJSON(t, h, http.MethodPost, "/api/tickets", map[string]string{
		"title":       title,
		"description": description,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create ticket: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var ticket struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ticket); err != nil {
		t.Fatalf("decode ticket: %v", err)
	}
	if ticket.ID == 0 {
		t.Fatal("expected assigned ticket id")
	}
	return ticket.ID
}

func TestRoot(t *testing.T) {
	h := setupRouter(t)

	w := doJSON(t, h, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["service"] != "ticket-triage" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestCreateAndListTickets(t *testing.T) {
	h := setupRouter(t)

	ids := make(map[int64]bool)
	for i := 0; i < 3; i++ {
		id := createTicket(t, h, fmt.Sprintf("Ticket %d", i), "some description")
		ids[id] = true
	}

	w := doJSON(t, h, http.MethodGet, "/api/tickets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) < 3 {
		t.Fatalf("expected at least 3 tickets, got %d", len(list))
	}
	found := 0
	for _, item := range list {
		if ids[item.ID] {
			found++
		}
	}
	if found != 3 {
		t.Errorf("expected all created tickets in listing, found %d", found)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	h := setupRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/tickets", map[string]string{
		"title":       "",
		"description": "no title",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLatestAnalysisNullBeforeRun(t *testing.T) {
	h := setupRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/analysis/latest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := bytes.TrimSpace(w.Body.Bytes()); !bytes.Equal(got, []byte("null")) {
		t.Errorf("expected null body, got %s", got)
	}
}

func TestAnalyzeAllAndLatest(t *testing.T) {
	h := setupRouter(t)

	createTicket(t, h, "App crash on login", "urgent, happens every time")
	createTicket(t, h, "Invoice question", "was my card charged twice?")
	createTicket(t, h, "Feedback", "everything looks fine")

	w := doJSON(t, h, http.MethodPost, "/api/analyze", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var run struct {
		RunID       int64  `json:"run_id"`
		Summary     string `json:"summary"`
		TicketCount int    `json:"ticket_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.RunID == 0 {
		t.Error("expected assigned run_id")
	}
	if run.TicketCount != 3 {
		t.Errorf("expected ticket_count 3, got %d", run.TicketCount)
	}

	w = doJSON(t, h, http.MethodGet, "/api/analysis/latest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var latest struct {
		RunID   int64  `json:"analysis_run_id"`
		Summary string `json:"summary"`
		Tickets []struct {
			ID       int64  `json:"id"`
			Category string `json:"category"`
			Priority string `json:"priority"`
		} `json:"tickets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &latest); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if latest.RunID != run.RunID {
		t.Errorf("expected latest run %d, got %d", run.RunID, latest.RunID)
	}
	if latest.Summary != run.Summary {
		t.Errorf("summary mismatch: %q vs %q", latest.Summary, run.Summary)
	}
	if len(latest.Tickets) != run.TicketCount {
		t.Errorf("reported total %d does not match %d rows", run.TicketCount, len(latest.Tickets))
	}
	for _, tr := range latest.Tickets {
		if tr.Category == "" || tr.Priority == "" {
			t.Errorf("ticket %d missing classification: %+v", tr.ID, tr)
		}
	}
}

func TestAnalyzeSubset(t *testing.T) {
	h := setupRouter(t)

	keep := createTicket(t, h, "Broken export", "export fails with an error")
	createTicket(t, h, "Other ticket", "should not be analyzed")

	w := doJSON(t, h, http.MethodPost, "/api/analyze", map[string]any{
		"ticket_ids": []int64{keep},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var run struct {
		TicketCount int `json:"ticket_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.TicketCount != 1 {
		t.Errorf("expected ticket_count 1, got %d", run.TicketCount)
	}

	w = doJSON(t, h, http.MethodGet, "/api/analysis/latest", nil)
	var latest struct {
		Tickets []struct {
			ID int64 `json:"id"`
		} `json:"tickets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &latest); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if len(latest.Tickets) != 1 || latest.Tickets[0].ID != keep {
		t.Errorf("expected only ticket %d in latest run, got %+v", keep, latest.Tickets)
	}
}

func TestAnalyzeRejectsBadIDs(t *testing.T) {
	h := setupRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/analyze", map[string]any{
		"ticket_ids": []int64{-1},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
