package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apppipeline "github.com/bryanwahyu/ticket-triage/internal/application/pipeline"
	apptickets "github.com/bryanwahyu/ticket-triage/internal/application/tickets"
	"github.com/bryanwahyu/ticket-triage/internal/domain/classify"
	"github.com/bryanwahyu/ticket-triage/internal/middleware"
)

type Router struct {
	ticketsSvc  *apptickets.Service
	pipelineSvc *apppipeline.Service
}

func NewRouter(ticketsSvc *apptickets.Service, pipelineSvc *apppipeline.Service) http.Handler {
	r := &Router{ticketsSvc: ticketsSvc, pipelineSvc: pipelineSvc}
	mux := chi.NewRouter()

	mux.Get("/", r.wrap(r.handleRoot))

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/tickets", r.wrap(r.handleCreateTicket))
		rt.Get("/tickets", r.wrap(r.handleListTickets))
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analysis/latest", r.wrap(r.handleLatestAnalysis))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, middleware.ErrValidation) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, classify.ErrQuotaExceeded) {
				http.Error(w, "classifier quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, map[string]string{
		"service": "ticket-triage",
		"status":  "ok",
	})
}

// POST /api/tickets
// Body: {"title": "...", "description": "..."}
func (r *Router) handleCreateTicket(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	body.Title = middleware.SanitizeString(body.Title)
	body.Description = middleware.SanitizeString(body.Description)
	if err := middleware.ValidateTitle(body.Title); err != nil {
		return err
	}
	if err := middleware.ValidateDescription(body.Description); err != nil {
		return err
	}

	ticket, err := r.ticketsSvc.Create(req.Context(), apptickets.CreateTicketCommand{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		return err
	}

	middleware.IncrementTicketsCreated()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(ticket)
}

// GET /api/tickets
func (r *Router) handleListTickets(w http.ResponseWriter, req *http.Request) error {
	list, err := r.ticketsSvc.List(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// POST /api/analyze
// Body: {"ticket_ids": [1,2]} — omit or empty to analyze every ticket.
// Runs the pipeline synchronously; the response carries the new run.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		TicketIDs []int64 `json:"ticket_ids"`
	}
	if req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return err
		}
	}
	if err := middleware.ValidateTicketIDs(body.TicketIDs); err != nil {
		return err
	}

	middleware.IncrementRuns()
	result, err := r.pipelineSvc.Analyze(req.Context(), apppipeline.AnalyzeCommand{
		TicketIDs: body.TicketIDs,
	})
	if err != nil {
		middleware.IncrementRunsFailed()
		return err
	}

	return writeJSON(w, result)
}

// GET /api/analysis/latest
// Returns JSON null when no run exists yet.
func (r *Router) handleLatestAnalysis(w http.ResponseWriter, req *http.Request) error {
	latest, err := r.pipelineSvc.LatestAnalysis(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, latest)
}
