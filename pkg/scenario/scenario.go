package scenario

import (
	"errors"
	"fmt"

	"github.com/aretw0/roadtest/pkg/atomic"
	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/domain"
)

// Default names of the fixed nodes of a scenario tree.
const (
	TimeoutNodeName  = "TimeOut"
	CriteriaNodeName = "Criteria"
)

// DefaultTimeout bounds scenarios that do not set one, in simulated seconds.
const DefaultTimeout = 30.0

// Scenario is the content of a driving scenario.
type Scenario struct {
	Name     string
	Behavior *behavior.Node
	Criteria []*behavior.Node
	// Timeout is the simulated time bound. Zero means DefaultTimeout.
	Timeout float64
}

// Tree is a built scenario with handles on its fixed nodes.
type Tree struct {
	*behavior.Tree
	Name     string
	Behavior *behavior.Node
	Guard    *behavior.Node
	Criteria *behavior.Node

	guard *TimeoutGuard
}

// Build assembles the scenario tree. The guard reads c.
func (s *Scenario) Build(c StepClock) (*Tree, error) {
	if s.Name == "" {
		return nil, errors.New("scenario has no name")
	}
	if s.Behavior == nil {
		return nil, fmt.Errorf("scenario %q has no behavior", s.Name)
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		return nil, fmt.Errorf("scenario %q has negative timeout %v", s.Name, timeout)
	}

	guard := NewTimeoutGuard(c, timeout)
	t := &Tree{
		Name:     s.Name,
		Behavior: s.Behavior,
		Guard:    behavior.Leaf(TimeoutNodeName, guard),
		guard:    guard,
	}

	root := behavior.ParallelAny(s.Name, s.Behavior, t.Guard)
	if len(s.Criteria) > 0 {
		t.Criteria = behavior.ParallelAll(CriteriaNodeName, s.Criteria...)
		root.AddChild(t.Criteria)
	}
	t.Tree = behavior.NewTree(root)
	return t, nil
}

// TimedOut reports whether the guard ended the run.
func (t *Tree) TimedOut() bool {
	return t.guard.Fired() && t.Behavior.Status() != behavior.Success
}

// Outcome classifies the terminal status of the tree. It returns "" while the
// tree is still running.
//
// A behavior that succeeds on the same tick the guard fires counts as a success.
// A behavior whose latest activation failed counts as a failure. The root ticks
// a failed behavior again, so one that recovered before the guard fired does not.
func (t *Tree) Outcome() domain.Outcome {
	switch t.Status() {
	case behavior.Failure:
		return domain.OutcomeFailure
	case behavior.Success:
	default:
		return ""
	}

	if t.Behavior.Status() == behavior.Success {
		for _, c := range t.CriteriaResults() {
			if c.Status == domain.StatusFailure {
				return domain.OutcomeFailure
			}
		}
		return domain.OutcomeSuccess
	}
	if t.Behavior.Status() == behavior.Failure {
		return domain.OutcomeFailure
	}
	if t.guard.Fired() {
		return domain.OutcomeTimedOut
	}
	return domain.OutcomeSuccess
}

// CriterionLeaves returns the leaves under the criteria node that watch a property.
func (t *Tree) CriterionLeaves() []*behavior.Node {
	if t.Criteria == nil {
		return nil
	}
	var out []*behavior.Node
	behavior.NewTree(t.Criteria).Walk(func(n *behavior.Node, _ int) bool {
		if _, ok := n.Behavior().(atomic.Criterion); ok && n.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}

// CriteriaResults reports the latest verdict of every criterion leaf.
func (t *Tree) CriteriaResults() []domain.CriterionResult {
	leaves := t.CriterionLeaves()
	out := make([]domain.CriterionResult, 0, len(leaves))
	for _, n := range leaves {
		out = append(out, domain.CriterionResult{
			Name:   n.Name(),
			Status: n.Behavior().(atomic.Criterion).Verdict(),
		})
	}
	return out
}
