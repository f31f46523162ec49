package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryanwahyu/ticket-triage/internal/domain/analysis"
	"github.com/bryanwahyu/ticket-triage/internal/domain/classify"
)

// Rules are checked in order; the first rule with any keyword contained in
// the ticket text wins. Tickets matching nothing fall back to the defaults
// (general / medium).

type categoryRule struct {
	category analysis.Category
	keywords []string
}

type priorityRule struct {
	priority analysis.Priority
	keywords []string
}

var categoryRules = []categoryRule{
	{analysis.CategoryBilling, []string{"billing", "payment", "card", "charge", "invoice", "refund", "subscription"}},
	{analysis.CategoryBug, []string{"bug", "crash", "error", "broken", "not working", "fails", "doesn't work"}},
	{analysis.CategoryFeatureRequest, []string{"feature", "request", "add", "want", "could you", "suggestion", "enhance"}},
}

var priorityRules = []priorityRule{
	{analysis.PriorityHigh, []string{"urgent", "asap", "critical", "immediately", "production", "down", "outage"}},
	{analysis.PriorityLow, []string{"minor", "eventually", "nice to have", "sometime", "when possible"}},
}

// Classifier is the deterministic keyword variant. It never fails and needs
// no external service, which makes it the default provider.
type Classifier struct{}

func New() *Classifier { return &Classifier{} }

func (c *Classifier) Classify(_ context.Context, title, description string) (classify.Result, error) {
	text := strings.ToLower(title + " " + description)

	category := analysis.CategoryGeneral
	for _, rule := range categoryRules {
		if containsAny(text, rule.keywords) {
			category = rule.category
			break
		}
	}

	priority := analysis.PriorityMedium
	for _, rule := range priorityRules {
		if containsAny(text, rule.keywords) {
			priority = rule.priority
			break
		}
	}

	return classify.Result{
		Category: category,
		Priority: priority,
		Notes:    fmt.Sprintf("Classified based on keywords. Category: %s, Priority: %s.", category, priority),
	}, nil
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
