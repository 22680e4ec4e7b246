package domain

import "fmt"

// Status is the result of ticking a behavior node.
type Status int

const (
	// StatusInvalid is the status of a node that has never been ticked or was interrupted.
	StatusInvalid Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
)

var statusNames = [...]string{"INVALID", "RUNNING", "SUCCESS", "FAILURE"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Terminal reports whether the status ends an activation.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// MarshalText encodes the status by name so reports stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// Outcome classifies how a scenario run ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeError    Outcome = "error"
)
