package tickets

import (
	"time"
)

// ID tipe untuk Ticket
type TicketID int64

// Aggregate Root: Ticket
// Rows are immutable once inserted; storage owns id and created_at.
type Ticket struct {
	ID          TicketID  `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTicket is the pre-insert shape of a ticket
type NewTicket struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
