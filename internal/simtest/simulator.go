package simtest

import (
	"encoding/json"
	"sync"

	"github.com/aretw0/roadtest/pkg/domain"
)

// Command names understood by Simulator.
const (
	CommandRun          = "simulator/run"
	CommandReset        = "simulator/reset"
	CommandCurrentTime  = "simulator/current_time"
	CommandCurrentFrame = "simulator/current_frame"
)

// Actor is a simulated NPC moving at constant velocity.
type Actor struct {
	ID       string
	Position domain.Vector
	Velocity domain.Vector
}

// Simulator is a kinematic stand-in for the real simulator. Each run command
// advances time by time_limit, moves every actor, replies, then pushes an episode.
type Simulator struct {
	mu     sync.Mutex
	time   float64
	frame  int64
	actors []Actor
	// FailRunAt makes the run command that would reach this frame fail remotely.
	FailRunAt int64
	// EpisodeFirst pushes the episode before the command reply.
	EpisodeFirst bool
}

// NewSimulator returns a simulator holding the given actors.
func NewSimulator(actors ...Actor) *Simulator {
	return &Simulator{actors: actors}
}

// Handle implements Handler.
func (s *Simulator) Handle(cmd Command) []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Name {
	case CommandRun:
		var args struct {
			TimeLimit float64 `json:"time_limit"`
		}
		if err := json.Unmarshal(cmd.Arguments, &args); err != nil {
			return []any{Error(err.Error())}
		}
		if s.FailRunAt > 0 && s.frame+1 >= s.FailRunAt {
			return []any{Error("simulation aborted")}
		}
		s.time += args.TimeLimit
		s.frame++
		for i := range s.actors {
			a := &s.actors[i]
			a.Position.X += a.Velocity.X * args.TimeLimit
			a.Position.Y += a.Velocity.Y * args.TimeLimit
			a.Position.Z += a.Velocity.Z * args.TimeLimit
		}
		ep := Episode(s.episode())
		if s.EpisodeFirst {
			return []any{ep, Result(nil)}
		}
		return []any{Result(nil), ep}

	case CommandReset:
		s.time = 0
		s.frame = 0
		return []any{Result(nil)}

	case CommandCurrentTime:
		return []any{Result(s.time)}

	case CommandCurrentFrame:
		return []any{Result(s.frame)}
	}
	return []any{Error("unknown command " + cmd.Name)}
}

func (s *Simulator) episode() domain.EpisodeState {
	st := domain.EpisodeState{
		GameTime: domain.GameTime{CurrentTime: s.time, CurrentFrame: s.frame},
	}
	for _, a := range s.actors {
		st.NPCs = append(st.NPCs, domain.ActorState{
			AgentID:   a.ID,
			Transform: domain.Transform{Position: a.Position},
			Velocity:  a.Velocity,
		})
	}
	return st
}
