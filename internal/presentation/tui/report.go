package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/roadtest/pkg/domain"
)

// ReportMarkdown summarizes a run report as markdown.
func ReportMarkdown(r *domain.Report) string {
	var sb strings.Builder

	verdict := "PASSED"
	if !r.Passed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&sb, "# %s: %s\n\n", r.Scenario, verdict)

	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Outcome | `%s` |\n", r.Outcome)
	fmt.Fprintf(&sb, "| Tree status | `%s` |\n", r.Status)
	if r.Repetition > 0 {
		fmt.Fprintf(&sb, "| Repetition | %d |\n", r.Repetition)
	}
	fmt.Fprintf(&sb, "| Simulated time | %.2fs |\n", r.GameTime)
	fmt.Fprintf(&sb, "| Wall time | %s |\n", r.WallTime.Round(time.Millisecond))
	fmt.Fprintf(&sb, "| Steps / ticks | %d / %d |\n", r.Steps, r.Ticks)
	fmt.Fprintf(&sb, "| Final frame | %d |\n", r.FinalFrame)
	if r.ID != "" {
		fmt.Fprintf(&sb, "| Report | `%s` |\n", r.ID)
	}

	if r.Error != "" {
		fmt.Fprintf(&sb, "\n> **error:** %s\n", r.Error)
	}

	if len(r.Criteria) > 0 {
		sb.WriteString("\n## Criteria\n\n")
		sb.WriteString("| Criterion | Status | Failed at |\n|---|---|---|\n")
		for _, c := range r.Criteria {
			failedAt := "-"
			if c.FailedAt != nil {
				failedAt = fmt.Sprintf("%.2fs", *c.FailedAt)
			}
			mark := "✅"
			if !c.Passed() {
				mark = "❌"
			}
			fmt.Fprintf(&sb, "| %s %s | `%s` | %s |\n", mark, c.Name, c.Status, failedAt)
		}
	}

	return sb.String()
}
