package ports

import (
	"context"

	"github.com/aretw0/roadtest/pkg/domain"
)

// ReportStore persists terminal run reports.
type ReportStore interface {
	// Save persists the report under its ID, replacing any previous version.
	Save(ctx context.Context, report *domain.Report) error

	// Load retrieves a report by ID.
	// Returns domain.ErrReportNotFound if the report does not exist.
	Load(ctx context.Context, id string) (*domain.Report, error)

	// List returns the IDs of every stored report, in no particular order.
	List(ctx context.Context) ([]string, error)

	// Delete removes a report. Deleting a missing report is not an error.
	Delete(ctx context.Context, id string) error
}
