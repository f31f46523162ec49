package analysis

import (
	"time"
)

// ID tipe untuk AnalysisRun
type RunID int64

// ID tipe untuk TicketAnalysis
type AnalysisID int64

// Category enum
type Category string

const (
	CategoryBilling        Category = "billing"
	CategoryBug            Category = "bug"
	CategoryFeatureRequest Category = "feature_request"
	CategoryGeneral        Category = "general"
)

// Priority enum
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBilling, CategoryBug, CategoryFeatureRequest, CategoryGeneral:
		return true
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Run is one execution of the classification pipeline over a set of tickets
type Run struct {
	ID        RunID     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Summary   string    `json:"summary"`
}

// TicketAnalysis is the per-ticket classification tied to a run. Append-only.
type TicketAnalysis struct {
	ID       AnalysisID `json:"id"`
	RunID    RunID      `json:"analysis_run_id"`
	TicketID int64      `json:"ticket_id"`
	Category Category   `json:"category"`
	Priority Priority   `json:"priority"`
	Notes    string     `json:"notes,omitempty"`
}

// NewTicketAnalysis is the pre-insert shape of a classification result;
// the run id is assigned at persist time.
type NewTicketAnalysis struct {
	TicketID int64    `json:"ticket_id"`
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
	Notes    string   `json:"notes,omitempty"`
}

// TicketResult is a ticket joined with its classification for one run
type TicketResult struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	Notes       string    `json:"notes,omitempty"`
}

// Latest is the most recent run with all of its ticket results,
// ordered by ticket recency.
type Latest struct {
	RunID     RunID          `json:"analysis_run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Summary   string         `json:"summary"`
	Tickets   []TicketResult `json:"tickets"`
}
