package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore
// implementation adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	reportID := "contract-test-report-" + time.Now().Format("20060102150405")

	newReport := func(id string) *domain.Report {
		failedAt := 2.5
		return &domain.Report{
			ID:         id,
			Scenario:   "contract",
			Status:     domain.StatusSuccess,
			Outcome:    domain.OutcomeTimedOut,
			Steps:      10,
			Ticks:      10,
			FinalFrame: 10,
			GameTime:   5.0,
			WallTime:   1500 * time.Millisecond,
			Criteria: []domain.CriterionResult{
				{Name: "SpeedLimit", Status: domain.StatusFailure, FailedAt: &failedAt},
			},
			StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			FinishedAt: time.Date(2026, 1, 2, 3, 4, 7, 0, time.UTC),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		report := newReport(reportID)
		require.NoError(t, store.Save(ctx, report), "Save should not return error")

		loaded, err := store.Load(ctx, reportID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.Outcome, loaded.Outcome)
		assert.Equal(t, report.Status, loaded.Status)
		assert.Equal(t, report.WallTime, loaded.WallTime)
		assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
		require.Len(t, loaded.Criteria, 1)
		require.NotNil(t, loaded.Criteria[0].FailedAt)
		assert.Equal(t, 2.5, *loaded.Criteria[0].FailedAt)

		// Mutating the loaded copy does not affect the stored report.
		loaded.Outcome = domain.OutcomeError
		again, err := store.Load(ctx, reportID)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeTimedOut, again.Outcome)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newReport(reportID)))

		require.NoError(t, store.Delete(ctx, reportID), "Delete should not return error")

		_, err := store.Load(ctx, reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")

		assert.NoError(t, store.Delete(ctx, reportID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := reportID + "-1"
		id2 := reportID + "-2"
		require.NoError(t, store.Save(ctx, newReport(id1)))
		require.NoError(t, store.Save(ctx, newReport(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
