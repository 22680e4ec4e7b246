package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/roadtest/pkg/atomic"
	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Composite node types understood by every registry.
const (
	TypeSequence    = "sequence"
	TypeParallelAny = "parallel_any"
	TypeParallelAll = "parallel_all"
)

// Factory builds a leaf behavior from its decoded params.
type Factory func(env *Env, params map[string]any) (behavior.Behavior, error)

// Registry maps leaf node types to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for typ.
func (r *Registry) Register(typ string, f Factory) {
	r.factories[typ] = f
}

// Types returns the registered leaf types, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) leaf(env *Env, typ string, params map[string]any) (behavior.Behavior, error) {
	f, ok := r.factories[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, typ)
	}
	b, err := f(env, params)
	if err == nil && b == nil {
		err = fmt.Errorf("factory for %q returned no behavior", typ)
	}
	return b, err
}

// decodeParams strictly decodes params into out. Unknown keys are errors.
func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}

// leafFactory adapts a typed constructor into a Factory.
func leafFactory[P any](build func(env *Env, p P) (behavior.Behavior, error)) Factory {
	return func(env *Env, params map[string]any) (behavior.Behavior, error) {
		var p P
		if err := decodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		return build(env, p)
	}
}

type durationParams struct {
	Actor    string            `mapstructure:"actor"`
	Duration float64           `mapstructure:"duration"`
	Rule     atomic.Comparison `mapstructure:"rule"`
}

type regionParams struct {
	Actor string  `mapstructure:"actor"`
	MinX  float64 `mapstructure:"min_x"`
	MaxX  float64 `mapstructure:"max_x"`
	MinY  float64 `mapstructure:"min_y"`
	MaxY  float64 `mapstructure:"max_y"`
}

type vehicleParams struct {
	Actor      string            `mapstructure:"actor"`
	Other      string            `mapstructure:"other"`
	Distance   float64           `mapstructure:"distance"`
	Time       float64           `mapstructure:"time"`
	Comparison atomic.Comparison `mapstructure:"comparison"`
}

type locationParams struct {
	Actor    string        `mapstructure:"actor"`
	Target   domain.Vector `mapstructure:"target"`
	Distance float64       `mapstructure:"distance"`
	Time     float64       `mapstructure:"time"`
}

type limitParams struct {
	Actor  string  `mapstructure:"actor"`
	Target string  `mapstructure:"target"`
	Max    float64 `mapstructure:"max"`
}

type exprParams struct {
	Expression string `mapstructure:"expression"`
}

func requireActor(actor string) error {
	if actor == "" {
		return errors.New("actor is required")
	}
	return nil
}

// DefaultRegistry returns a registry holding every leaf of the atomic catalogue.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("idle", leafFactory(func(_ *Env, _ struct{}) (behavior.Behavior, error) {
		return atomic.Idle{}, nil
	}))
	r.Register("simulation_time", leafFactory(func(env *Env, p durationParams) (behavior.Behavior, error) {
		if err := p.Rule.Validate(); err != nil {
			return nil, err
		}
		return &atomic.SimulationTimeCondition{Clock: env.Clock, Duration: p.Duration, Rule: p.Rule}, nil
	}))
	r.Register("stand_still", leafFactory(func(env *Env, p durationParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		return &atomic.StandStill{World: env.Provider, Clock: env.Clock, Actor: p.Actor, Duration: p.Duration}, nil
	}))
	r.Register("in_trigger_region", leafFactory(func(env *Env, p regionParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		if p.MinX > p.MaxX || p.MinY > p.MaxY {
			return nil, errors.New("empty region")
		}
		return &atomic.InTriggerRegion{World: env.Provider, Actor: p.Actor, MinX: p.MinX, MaxX: p.MaxX, MinY: p.MinY, MaxY: p.MaxY}, nil
	}))
	r.Register("in_trigger_distance_to_vehicle", leafFactory(func(env *Env, p vehicleParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		if err := p.Comparison.Validate(); err != nil {
			return nil, err
		}
		return &atomic.InTriggerDistanceToVehicle{World: env.Provider, Actor: p.Actor, Other: p.Other, Distance: p.Distance, Comparison: p.Comparison}, nil
	}))
	r.Register("in_trigger_distance_to_location", leafFactory(func(env *Env, p locationParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		return &atomic.InTriggerDistanceToLocation{World: env.Provider, Actor: p.Actor, Target: p.Target, Distance: p.Distance}, nil
	}))
	r.Register("in_time_to_arrival_to_location", leafFactory(func(env *Env, p locationParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		return &atomic.InTimeToArrivalToLocation{World: env.Provider, Actor: p.Actor, Target: p.Target, Time: p.Time}, nil
	}))
	r.Register("in_time_to_arrival_to_vehicle", leafFactory(func(env *Env, p vehicleParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		if err := p.Comparison.Validate(); err != nil {
			return nil, err
		}
		return &atomic.InTimeToArrivalToVehicle{World: env.Provider, Actor: p.Actor, Other: p.Other, Time: p.Time, Comparison: p.Comparison}, nil
	}))
	r.Register("drive_distance", leafFactory(func(env *Env, p vehicleParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		return &atomic.DriveDistance{World: env.Provider, Actor: p.Actor, Distance: p.Distance}, nil
	}))
	r.Register("max_velocity", leafFactory(func(env *Env, p limitParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		return &atomic.MaxVelocityTest{World: env.Provider, Actor: p.Actor, Max: p.Max}, nil
	}))
	r.Register("max_angular_velocity", leafFactory(func(env *Env, p limitParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		return &atomic.MaxAngularVelocityTest{World: env.Provider, Actor: p.Actor, Max: p.Max}, nil
	}))
	r.Register("separation_distance", leafFactory(func(env *Env, p limitParams) (behavior.Behavior, error) {
		if err := requireActor(p.Actor); err != nil {
			return nil, err
		}
		if p.Target == "" {
			return nil, errors.New("target is required")
		}
		return &atomic.SeparationDistanceTest{World: env.Provider, Actor: p.Actor, Target: p.Target, Max: p.Max}, nil
	}))
	r.Register("expr", leafFactory(func(env *Env, p exprParams) (behavior.Behavior, error) {
		return atomic.NewExprCondition(p.Expression, env.Provider, env.Clock)
	}))
	r.Register("expr_criterion", leafFactory(func(env *Env, p exprParams) (behavior.Behavior, error) {
		return atomic.NewExprCriterion(p.Expression, env.Provider, env.Clock)
	}))

	return r
}
