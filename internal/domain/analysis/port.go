package analysis

import (
	"context"
	"time"
)

// Repository port for runs and per-ticket analyses
type Repository interface {
	CreateRun(ctx context.Context, summary string, at time.Time) (*Run, error)
	BulkInsert(ctx context.Context, runID RunID, rows []NewTicketAnalysis) ([]*TicketAnalysis, error)
	Latest(ctx context.Context) (*Latest, error)
}

// ReportStore port (object storage untuk run report)
type ReportStore interface {
	UploadReport(ctx context.Context, key string, body []byte) (string, error)
}
