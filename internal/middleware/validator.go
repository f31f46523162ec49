package middleware

import (
	"errors"
	"fmt"
	"strings"
)

// Input validation and sanitization utilities

// ErrValidation marks input errors so the HTTP layer can answer 400.
var ErrValidation = errors.New("invalid input")

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxAnalyzeBatch   = 500
)

// ValidateTitle checks the ticket title field
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
	}
	return nil
}

// ValidateDescription checks the ticket description field
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description cannot be empty", ErrValidation)
	}
	if len(description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, maxDescriptionLen)
	}
	return nil
}

// ValidateTicketIDs checks the optional id list for an analyze request
func ValidateTicketIDs(ids []int64) error {
	if len(ids) > maxAnalyzeBatch {
		return fmt.Errorf("%w: at most %d ticket ids per analyze request", ErrValidation, maxAnalyzeBatch)
	}
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: ticket id must be positive, got %d", ErrValidation, id)
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
