package middleware

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
)

type retentionMiddleware struct {
	next ports.ReportStore
	keep int
}

// NewRetentionMiddleware keeps at most keep reports per scenario. After every Save
// the oldest reports of the saved scenario, by start time, are deleted. A keep of
// zero or less disables pruning.
func NewRetentionMiddleware(keep int) Middleware {
	return func(next ports.ReportStore) ports.ReportStore {
		if keep <= 0 {
			return next
		}
		return &retentionMiddleware{next: next, keep: keep}
	}
}

func (m *retentionMiddleware) Save(ctx context.Context, report *domain.Report) error {
	if err := m.next.Save(ctx, report); err != nil {
		return err
	}
	if err := m.prune(ctx, report.Scenario); err != nil {
		return fmt.Errorf("prune %q: %w", report.Scenario, err)
	}
	return nil
}

func (m *retentionMiddleware) prune(ctx context.Context, scenario string) error {
	ids, err := m.next.List(ctx)
	if err != nil {
		return err
	}
	var same []*domain.Report
	for _, id := range ids {
		r, err := m.next.Load(ctx, id)
		if errors.Is(err, domain.ErrReportNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if r.Scenario == scenario {
			same = append(same, r)
		}
	}
	if len(same) <= m.keep {
		return nil
	}
	sort.Slice(same, func(i, j int) bool {
		if !same[i].StartedAt.Equal(same[j].StartedAt) {
			return same[i].StartedAt.After(same[j].StartedAt)
		}
		return same[i].ID > same[j].ID
	})
	for _, r := range same[m.keep:] {
		if err := m.next.Delete(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

func (m *retentionMiddleware) Load(ctx context.Context, id string) (*domain.Report, error) {
	return m.next.Load(ctx, id)
}

func (m *retentionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *retentionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
