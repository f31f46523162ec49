package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a support ticket triage assistant. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- category must be exactly one of: billing, bug, feature_request, general.
- priority must be exactly one of: high, medium, low.
- notes is one short sentence explaining the classification.

Schema (example with empty values):
{
  "category": "<billing|bug|feature_request|general>",
  "priority": "<high|medium|low>",
  "notes": "<string>"
}`
}

// GetUserPrompt builds a compact user message around the ticket text.
func GetUserPrompt(title, description string) string {
	return fmt.Sprintf("Classify this support ticket and respond with the JSON per schema.\nTitle: %s\nDescription: %s", title, description)
}

// Classification matches the schema used by the system prompt.
type Classification struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Notes    string `json:"notes"`
}

// Parse decodes a raw model response into a Classification. The response
// must be a bare JSON object; anything else is an error.
func Parse(raw string) (Classification, error) {
	var c Classification
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&c); err != nil {
		return Classification{}, fmt.Errorf("decode classification: %w", err)
	}
	return c, nil
}
