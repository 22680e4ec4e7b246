package domain

import "time"

// CriterionResult is the verdict of one criterion leaf at the end of a run.
type CriterionResult struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	// FailedAt is the simulated time of the first failure, if any.
	FailedAt *float64 `json:"failed_at,omitempty"`
}

// Passed reports whether the criterion never failed.
func (c CriterionResult) Passed() bool {
	return c.Status != StatusFailure && c.FailedAt == nil
}

// Report is the terminal record of one scenario run.
type Report struct {
	ID         string            `json:"id"`
	Scenario   string            `json:"scenario"`
	Repetition int               `json:"repetition"`
	Status     Status            `json:"status"`
	Outcome    Outcome           `json:"outcome"`
	Error      string            `json:"error,omitempty"`
	Steps      int               `json:"steps"`
	Ticks      int               `json:"ticks"`
	FinalFrame int64             `json:"final_frame"`
	// GameTime is the simulated time elapsed during the run, in seconds.
	GameTime   float64           `json:"game_time"`
	WallTime   time.Duration     `json:"wall_time"`
	Criteria   []CriterionResult `json:"criteria,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Passed reports whether the run succeeded and every criterion held.
func (r *Report) Passed() bool {
	if r.Outcome != OutcomeSuccess {
		return false
	}
	for _, c := range r.Criteria {
		if !c.Passed() {
			return false
		}
	}
	return true
}
