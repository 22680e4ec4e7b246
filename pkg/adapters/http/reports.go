package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
)

// LoadReports loads every stored report, newest first. Reports that vanish between
// listing and loading are skipped.
func LoadReports(ctx context.Context, store ports.ReportStore) ([]*domain.Report, error) {
	ids, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]*domain.Report, 0, len(ids))
	for _, id := range ids {
		rep, err := store.Load(ctx, id)
		if errors.Is(err, domain.ErrReportNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load report %s: %w", id, err)
		}
		reports = append(reports, rep)
	}
	sortNewestFirst(reports)
	return reports, nil
}
