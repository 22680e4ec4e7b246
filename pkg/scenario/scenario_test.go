package scenario_test

import (
	"testing"

	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/clock"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepper drives c by dt per call.
type stepper struct {
	c     *clock.Clock
	dt    float64
	frame int64
}

func (s *stepper) step() {
	s.frame++
	s.c.Advance(domain.GameTime{CurrentTime: s.c.Now() + s.dt, CurrentFrame: s.frame})
}

func run(t *testing.T, tree *scenario.Tree, s *stepper, limit int) {
	t.Helper()
	for i := 0; i < limit; i++ {
		s.step()
		if tree.Tick().Terminal() {
			return
		}
	}
	t.Fatalf("tree still running after %d steps", limit)
}

// after succeeds once the clock reaches at.
func after(c *clock.Clock, at float64) behavior.Behavior {
	return behavior.Func(func() behavior.Status {
		if c.Now() >= at {
			return behavior.Success
		}
		return behavior.Running
	})
}

func TestBuild_Shape(t *testing.T) {
	c := clock.New()
	s := &scenario.Scenario{
		Name:     "follow",
		Behavior: behavior.Leaf("drive", behavior.Func(func() behavior.Status { return behavior.Running })),
		Criteria: []*behavior.Node{behavior.Leaf("check", &alwaysOK{})},
	}
	tree, err := s.Build(c)
	require.NoError(t, err)

	root := tree.Root()
	assert.Equal(t, behavior.PolicyParallelAny, root.Policy())
	require.Len(t, root.Children(), 3)
	assert.Equal(t, "drive", root.Children()[0].Name())
	assert.Equal(t, scenario.TimeoutNodeName, root.Children()[1].Name())
	assert.Equal(t, scenario.CriteriaNodeName, root.Children()[2].Name())
	assert.Equal(t, behavior.PolicyParallelAll, tree.Criteria.Policy())

	bare, err := (&scenario.Scenario{Name: "bare", Behavior: behavior.Leaf("x", behavior.Func(nil))}).Build(c)
	require.NoError(t, err)
	assert.Len(t, bare.Root().Children(), 2, "criteria node is omitted when empty")
	assert.Nil(t, bare.Criteria)
}

func TestBuild_Errors(t *testing.T) {
	c := clock.New()
	_, err := (&scenario.Scenario{Behavior: behavior.Leaf("x", behavior.Func(nil))}).Build(c)
	assert.Error(t, err)
	_, err = (&scenario.Scenario{Name: "x"}).Build(c)
	assert.Error(t, err)
	_, err = (&scenario.Scenario{Name: "x", Behavior: behavior.Leaf("x", behavior.Func(nil)), Timeout: -1}).Build(c)
	assert.Error(t, err)
}

func TestOutcome_SuccessAtOneSecond(t *testing.T) {
	c := clock.New()
	tree, err := (&scenario.Scenario{Name: "s", Behavior: behavior.Leaf("arrive", after(c, 1.0)), Timeout: 5}).Build(c)
	require.NoError(t, err)

	s := &stepper{c: c, dt: 0.5}
	assert.Equal(t, domain.Outcome(""), tree.Outcome())
	run(t, tree, s, 100)

	assert.Equal(t, behavior.Success, tree.Status())
	assert.Equal(t, domain.OutcomeSuccess, tree.Outcome())
	assert.False(t, tree.TimedOut())
	assert.InDelta(t, 1.0, c.Now(), 1e-9)
	assert.Equal(t, 2, tree.Ticks())
	assert.Equal(t, behavior.Invalid, tree.Guard.Status(), "the guard was interrupted")
}

func TestOutcome_TimedOutAtFiveSeconds(t *testing.T) {
	c := clock.New()
	tree, err := (&scenario.Scenario{Name: "s", Behavior: behavior.Leaf("never", after(c, 100)), Timeout: 5}).Build(c)
	require.NoError(t, err)

	run(t, tree, &stepper{c: c, dt: 0.5}, 100)

	assert.Equal(t, behavior.Success, tree.Status())
	assert.Equal(t, domain.OutcomeTimedOut, tree.Outcome())
	assert.True(t, tree.TimedOut())
	assert.InDelta(t, 5.0, c.Now(), 1e-9)
	assert.Equal(t, 10, tree.Ticks())
}

func TestOutcome_SameTickSuccessWins(t *testing.T) {
	c := clock.New()
	tree, err := (&scenario.Scenario{Name: "s", Behavior: behavior.Leaf("late", after(c, 2.0)), Timeout: 2}).Build(c)
	require.NoError(t, err)

	run(t, tree, &stepper{c: c, dt: 0.5}, 100)
	assert.Equal(t, domain.OutcomeSuccess, tree.Outcome())
	assert.False(t, tree.TimedOut())
}

func TestOutcome_BehaviorFailureBeforeTimeout(t *testing.T) {
	c := clock.New()
	tree, err := (&scenario.Scenario{
		Name:     "s",
		Behavior: behavior.Leaf("crash", behavior.Func(func() behavior.Status { return behavior.Failure })),
		Timeout:  1,
	}).Build(c)
	require.NoError(t, err)

	run(t, tree, &stepper{c: c, dt: 0.5}, 100)
	assert.Equal(t, behavior.Success, tree.Status(), "the guard still resolves the root")
	assert.Equal(t, domain.OutcomeFailure, tree.Outcome())
}

func TestOutcome_ViolatedCriterionFailsASuccessfulRun(t *testing.T) {
	c := clock.New()
	check := &flipCriterion{clock: c, failAt: 0.5}
	tree, err := (&scenario.Scenario{
		Name:     "s",
		Behavior: behavior.Leaf("arrive", after(c, 1.5)),
		Criteria: []*behavior.Node{behavior.Leaf("speed", check)},
		Timeout:  10,
	}).Build(c)
	require.NoError(t, err)

	run(t, tree, &stepper{c: c, dt: 0.5}, 100)
	assert.Equal(t, domain.OutcomeFailure, tree.Outcome())

	results := tree.CriteriaResults()
	require.Len(t, results, 1)
	assert.Equal(t, "speed", results[0].Name)
	assert.Equal(t, domain.StatusFailure, results[0].Status)
}

type alwaysOK struct{ behavior.Base }

func (*alwaysOK) Update() behavior.Status { return behavior.Running }
func (*alwaysOK) Verdict() domain.Status { return domain.StatusSuccess }

// flipCriterion holds until failAt, then fails.
type flipCriterion struct {
	behavior.Base
	clock  *clock.Clock
	failAt float64
	status domain.Status
}

func (f *flipCriterion) Update() behavior.Status {
	if f.clock.Now() >= f.failAt {
		f.status = domain.StatusFailure
		return behavior.Failure
	}
	f.status = domain.StatusSuccess
	return behavior.Running
}

func (f *flipCriterion) Verdict() domain.Status { return f.status }
