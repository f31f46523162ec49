package classify

import (
	"context"

	"github.com/bryanwahyu/ticket-triage/internal/domain/analysis"
)

// Result of classifying one ticket's text
type Result struct {
	Category analysis.Category
	Priority analysis.Priority
	Notes    string
}

// Classifier port: maps a ticket's text to a classification.
// Implementations must be deterministic per call and side-effect free;
// any failure is a hard failure for the ticket being classified.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (Result, error)
}
