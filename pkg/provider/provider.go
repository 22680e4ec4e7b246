// Package provider holds the latest actor state published by the simulator.
//
// A Provider is created per run and handed to leaf nodes by reference. It is read and
// written only by the control loop and is not safe for concurrent use.
package provider

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/domain"
)

// EgoActor is the actor name bound to the episode's ego_state, when present.
const EgoActor = "ego"

type actorState struct {
	known   bool
	state   domain.ActorState
	speed   float64
	visible bool
}

// Provider maps episode actor states onto registered actor names.
//
// An actor registered with an agent id is matched by the npcs_state entry carrying
// that id. An actor registered without one is matched by position: the n-th
// registered actor without an id reads the n-th npcs_state entry.
type Provider struct {
	logger  *slog.Logger
	order   []string
	ids     map[string]string
	actors  map[string]*actorState
	time    domain.GameTime
	updates int
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// New returns an empty provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		logger: logging.NewNop(),
		ids:    make(map[string]string),
		actors: make(map[string]*actorState),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds an actor matched by registration index.
func (p *Provider) Register(names ...string) error {
	for _, name := range names {
		if err := p.RegisterAgent(name, ""); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAgent adds an actor matched by the simulator agent id. An empty id falls
// back to registration index.
func (p *Provider) RegisterAgent(name, agentID string) error {
	if _, ok := p.actors[name]; ok {
		return fmt.Errorf("%w: %q", domain.ErrActorRegistered, name)
	}
	p.actors[name] = &actorState{}
	if agentID != "" {
		p.ids[agentID] = name
	} else if name != EgoActor {
		p.order = append(p.order, name)
	}
	return nil
}

// Actors returns the registered actor names.
func (p *Provider) Actors() []string {
	out := make([]string, 0, len(p.actors))
	for name := range p.actors {
		out = append(out, name)
	}
	return out
}

// Publish stores one step's worth of actor state. A nil episode is ignored.
func (p *Provider) Publish(ep *domain.EpisodeState) {
	if ep == nil {
		return
	}
	p.updates++
	p.time = ep.GameTime

	for _, a := range p.actors {
		a.visible = false
	}

	next := 0
	for _, npc := range ep.NPCs {
		if name, ok := p.ids[npc.AgentID]; ok && npc.AgentID != "" {
			p.set(name, npc)
			continue
		}
		if next < len(p.order) {
			p.set(p.order[next], npc)
			next++
			continue
		}
		p.logger.Debug("unmapped actor in episode", "agent_id", npc.AgentID)
	}

	if ep.Ego != nil {
		if _, ok := p.actors[EgoActor]; ok {
			p.set(EgoActor, *ep.Ego)
		}
	}
}

func (p *Provider) set(name string, st domain.ActorState) {
	a := p.actors[name]
	a.known = true
	a.visible = true
	a.state = st
	a.speed = st.Speed()
}

// Velocity returns the actor's speed in m/s, or 0 if it is unknown.
func (p *Provider) Velocity(name string) float64 {
	a, ok := p.actors[name]
	if !ok {
		p.logger.Warn("velocity of unregistered actor", "actor", name)
		return 0
	}
	return a.speed
}

// Location returns the actor's last known position.
func (p *Provider) Location(name string) (domain.Vector, bool) {
	a, ok := p.actors[name]
	if !ok || !a.known {
		return domain.Vector{}, false
	}
	return a.state.Transform.Position, true
}

// AngularVelocity returns the actor's last known angular velocity.
func (p *Provider) AngularVelocity(name string) (domain.Vector, bool) {
	a, ok := p.actors[name]
	if !ok || !a.known {
		return domain.Vector{}, false
	}
	return a.state.AngularVelocity, true
}

// State returns the actor's full last known state and whether it was present in
// the most recent episode.
func (p *Provider) State(name string) (domain.ActorState, bool) {
	a, ok := p.actors[name]
	if !ok || !a.known {
		return domain.ActorState{}, false
	}
	return a.state, a.visible
}

// GameTime returns the clock reading of the last published episode.
func (p *Provider) GameTime() domain.GameTime {
	return p.time
}

// Updates returns how many episodes were published.
func (p *Provider) Updates() int {
	return p.updates
}

// Reset forgets every registration and reading.
func (p *Provider) Reset() {
	p.order = nil
	p.ids = make(map[string]string)
	p.actors = make(map[string]*actorState)
	p.time = domain.GameTime{}
	p.updates = 0
}
