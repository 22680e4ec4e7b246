package tui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/aretw0/roadtest/internal/presentation/tui"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMarkdown_Passed(t *testing.T) {
	md := tui.ReportMarkdown(&domain.Report{
		ID:       "abc",
		Scenario: "follow",
		Outcome:  domain.OutcomeSuccess,
		Status:   domain.StatusSuccess,
		GameTime: 4.25,
		WallTime: 1500 * time.Millisecond,
		Steps:    85,
		Ticks:    85,
		Criteria: []domain.CriterionResult{{Name: "max_velocity", Status: domain.StatusSuccess}},
	})

	assert.Contains(t, md, "# follow: PASSED")
	assert.Contains(t, md, "| Simulated time | 4.25s |")
	assert.Contains(t, md, "| Wall time | 1.5s |")
	assert.Contains(t, md, "| ✅ max_velocity | `SUCCESS` | - |")
	assert.NotContains(t, md, "error:")
}

func TestReportMarkdown_Failed(t *testing.T) {
	at := 2.5
	md := tui.ReportMarkdown(&domain.Report{
		Scenario: "merge",
		Outcome:  domain.OutcomeError,
		Status:   domain.StatusFailure,
		Error:    "step 3: simulation aborted",
		Criteria: []domain.CriterionResult{{Name: "gap", Status: domain.StatusFailure, FailedAt: &at}},
	})

	assert.Contains(t, md, "# merge: FAILED")
	assert.Contains(t, md, "> **error:** step 3: simulation aborted")
	assert.Contains(t, md, "| ❌ gap | `FAILURE` | 2.50s |")
}

func TestNewRenderer_Plain(t *testing.T) {
	out, err := tui.NewRenderer(false)("# title")
	require.NoError(t, err)
	assert.Equal(t, "# title", out)
}

func TestNewRenderer_Styled(t *testing.T) {
	out, err := tui.NewRenderer(true)("# roadtest\n\nhello")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
