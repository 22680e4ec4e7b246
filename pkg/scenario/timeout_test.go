package scenario_test

import (
	"testing"

	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/clock"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/scenario"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutGuard_Boundary(t *testing.T) {
	c := clock.New()
	g := scenario.NewTimeoutGuard(c, 10)
	n := behavior.Leaf("timeout", g)

	c.Advance(domain.GameTime{CurrentTime: 0.5, CurrentFrame: 1})
	assert.Equal(t, behavior.Running, n.Tick())

	c.Advance(domain.GameTime{CurrentTime: 9.99, CurrentFrame: 2})
	assert.Equal(t, behavior.Running, n.Tick())
	assert.False(t, g.Fired())

	c.Advance(domain.GameTime{CurrentTime: 10.0, CurrentFrame: 3})
	assert.Equal(t, behavior.Success, n.Tick(), "the bound is inclusive")
	assert.True(t, g.Fired())
	assert.InDelta(t, 10.0, g.Elapsed(), 1e-9)
}

func TestTimeoutGuard_MeasuresFromActivatingStep(t *testing.T) {
	c := clock.New()
	g := scenario.NewTimeoutGuard(c, 1)
	n := behavior.Leaf("timeout", g)

	c.Advance(domain.GameTime{CurrentTime: 4, CurrentFrame: 8})
	c.Advance(domain.GameTime{CurrentTime: 4.5, CurrentFrame: 9})
	assert.Equal(t, behavior.Running, n.Tick())

	c.Advance(domain.GameTime{CurrentTime: 5.0, CurrentFrame: 10})
	assert.Equal(t, behavior.Success, n.Tick())
}
