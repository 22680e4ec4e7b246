package atomic

import (
	"fmt"

	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprEnv exposes world and clock readings to expressions:
//
//	velocity("lead") > 10 && distance("ego", "lead") < 15 && time() > 2
func exprEnv(w World, c Clock) map[string]any {
	return map[string]any{
		"velocity": func(actor string) float64 {
			return w.Velocity(actor)
		},
		"distance": func(a, b string) float64 {
			la, ok := w.Location(a)
			if !ok {
				return -1
			}
			lb, ok := w.Location(b)
			if !ok {
				return -1
			}
			return domain.Distance(la, lb)
		},
		"location": func(actor string) domain.Vector {
			loc, _ := w.Location(actor)
			return loc
		},
		"known": func(actor string) bool {
			_, ok := w.Location(actor)
			return ok
		},
		"time": func() float64 {
			return c.Now()
		},
	}
}

func compile(source string, env map[string]any) (*vm.Program, error) {
	program, err := expr.Compile(source, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", source, err)
	}
	return program, nil
}

func eval(program *vm.Program, env map[string]any) (bool, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

// ExprCondition succeeds once a boolean expression over the world holds.
// An evaluation error fails the leaf.
type ExprCondition struct {
	behavior.Base
	source  string
	program *vm.Program
	env     map[string]any
	err     error
}

// NewExprCondition compiles source against w and c.
func NewExprCondition(source string, w World, c Clock) (*ExprCondition, error) {
	env := exprEnv(w, c)
	program, err := compile(source, env)
	if err != nil {
		return nil, err
	}
	return &ExprCondition{source: source, program: program, env: env}, nil
}

func (e *ExprCondition) Update() behavior.Status {
	ok, err := eval(e.program, e.env)
	if err != nil {
		e.err = fmt.Errorf("eval %q: %w", e.source, err)
		return behavior.Failure
	}
	if ok {
		return behavior.Success
	}
	return behavior.Running
}

// Err returns the last evaluation error.
func (e *ExprCondition) Err() error { return e.err }

// ExprCriterion fails the first time a boolean expression over the world is false.
type ExprCriterion struct {
	verdict
	source  string
	program *vm.Program
	env     map[string]any
	err     error
}

// NewExprCriterion compiles source against w and c.
func NewExprCriterion(source string, w World, c Clock) (*ExprCriterion, error) {
	env := exprEnv(w, c)
	program, err := compile(source, env)
	if err != nil {
		return nil, err
	}
	return &ExprCriterion{source: source, program: program, env: env}, nil
}

func (e *ExprCriterion) Update() behavior.Status {
	ok, err := eval(e.program, e.env)
	if err != nil {
		e.err = fmt.Errorf("eval %q: %w", e.source, err)
	}
	return e.judge(ok && err == nil)
}

// Err returns the last evaluation error.
func (e *ExprCriterion) Err() error { return e.err }
