package tickets

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Insert(ctx context.Context, in []NewTicket, at time.Time) ([]*Ticket, error)
	All(ctx context.Context) ([]*Ticket, error)
	ByIDs(ctx context.Context, ids []TicketID) ([]*Ticket, error)
}
