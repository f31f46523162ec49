package tickets

import (
	"context"

	"github.com/bryanwahyu/ticket-triage/internal/application"
	domain "github.com/bryanwahyu/ticket-triage/internal/domain/tickets"
)

// Service implements use-cases untuk Ticket
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// Command untuk create ticket
type CreateTicketCommand struct {
	Title       string
	Description string
}

// Create stores one ticket and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, cmd CreateTicketCommand) (*domain.Ticket, error) {
	rows, err := s.Repo.Insert(ctx, []domain.NewTicket{{
		Title:       cmd.Title,
		Description: cmd.Description,
	}}, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// List ambil semua ticket, terbaru dulu
func (s *Service) List(ctx context.Context) ([]*domain.Ticket, error) {
	return s.Repo.All(ctx)
}
