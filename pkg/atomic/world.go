package atomic

import (
	"fmt"

	"github.com/aretw0/roadtest/pkg/domain"
)

// Epsilon is the speed below which an actor is considered stationary (m/s).
const Epsilon = 0.001

// World is the read side of the per-run actor state.
type World interface {
	Velocity(actor string) float64
	Location(actor string) (domain.Vector, bool)
	AngularVelocity(actor string) (domain.Vector, bool)
}

// Clock is the read side of the simulated clock.
type Clock interface {
	Now() float64
}

// Comparison is a binary numeric relation selected by name in scenario documents.
type Comparison string

const (
	LessThan     Comparison = "less_than"
	LessEqual    Comparison = "less_equal"
	GreaterThan  Comparison = "greater_than"
	GreaterEqual Comparison = "greater_equal"
	EqualTo      Comparison = "equal_to"
)

// Compare applies the relation. The zero value compares with LessThan.
func (c Comparison) Compare(a, b float64) bool {
	switch c {
	case LessThan, "":
		return a < b
	case LessEqual:
		return a <= b
	case GreaterThan:
		return a > b
	case GreaterEqual:
		return a >= b
	case EqualTo:
		return a == b
	}
	return false
}

// Validate rejects unknown relation names.
func (c Comparison) Validate() error {
	switch c {
	case "", LessThan, LessEqual, GreaterThan, GreaterEqual, EqualTo:
		return nil
	}
	return fmt.Errorf("unknown comparison %q", string(c))
}
