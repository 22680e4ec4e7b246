// Package memory provides in-process adapters for the roadtest ports.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
)

var _ ports.ReportStore = (*Store)(nil)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

// Save persists a copy of the report.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	copied := clone(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[report.ID] = copied
	return nil
}

// Load retrieves a copy of the report so callers cannot mutate the stored one.
func (s *Store) Load(ctx context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return clone(report), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored report IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func clone(r *domain.Report) *domain.Report {
	ret := *r
	if r.Criteria != nil {
		ret.Criteria = make([]domain.CriterionResult, len(r.Criteria))
		for i, c := range r.Criteria {
			if c.FailedAt != nil {
				at := *c.FailedAt
				c.FailedAt = &at
			}
			ret.Criteria[i] = c
		}
	}
	return &ret
}
