package provider_test

import (
	"testing"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func npc(id string, x, vx float64) domain.ActorState {
	return domain.ActorState{
		AgentID:   id,
		Transform: domain.Transform{Position: domain.Vector{X: x}},
		Velocity:  domain.Vector{X: vx},
	}
}

func TestRegister_Duplicate(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.Register("lead"))
	assert.ErrorIs(t, p.Register("lead"), domain.ErrActorRegistered)
	assert.ErrorIs(t, p.RegisterAgent("lead", "uid-1"), domain.ErrActorRegistered)
}

func TestPublish_ByIndex(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.Register("lead", "follower"))

	p.Publish(&domain.EpisodeState{
		NPCs:     []domain.ActorState{npc("", 10, 3), npc("", 0, 4)},
		GameTime: domain.GameTime{CurrentTime: 0.5, CurrentFrame: 1},
	})

	assert.Equal(t, 3.0, p.Velocity("lead"))
	assert.Equal(t, 4.0, p.Velocity("follower"))
	loc, ok := p.Location("lead")
	require.True(t, ok)
	assert.Equal(t, 10.0, loc.X)
	assert.Equal(t, int64(1), p.GameTime().CurrentFrame)
	assert.Equal(t, 1, p.Updates())
}

func TestPublish_ByAgentID(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.RegisterAgent("lead", "uid-lead"))
	require.NoError(t, p.Register("anon"))

	p.Publish(&domain.EpisodeState{
		NPCs: []domain.ActorState{npc("uid-other", 1, 1), npc("uid-lead", 5, 2)},
	})

	assert.Equal(t, 2.0, p.Velocity("lead"))
	// The unmatched entry falls to the first index-registered actor.
	assert.Equal(t, 1.0, p.Velocity("anon"))
}

func TestPublish_Ego(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.Register(provider.EgoActor, "npc"))

	ego := npc("", 7, 5)
	p.Publish(&domain.EpisodeState{Ego: &ego, NPCs: []domain.ActorState{npc("", 1, 1)}})

	assert.Equal(t, 5.0, p.Velocity(provider.EgoActor))
	assert.Equal(t, 1.0, p.Velocity("npc"))
}

func TestUnknownActors(t *testing.T) {
	p := provider.New()
	assert.Equal(t, 0.0, p.Velocity("ghost"))
	_, ok := p.Location("ghost")
	assert.False(t, ok)

	require.NoError(t, p.Register("late"))
	_, ok = p.Location("late")
	assert.False(t, ok, "registered but never published")
}

func TestPublish_KeepsLastKnownStateWhenMissing(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.Register("a"))
	p.Publish(&domain.EpisodeState{NPCs: []domain.ActorState{npc("", 3, 1)}})
	p.Publish(&domain.EpisodeState{})

	st, visible := p.State("a")
	assert.False(t, visible)
	assert.Equal(t, 3.0, st.Transform.Position.X)
	p.Publish(nil)
	assert.Equal(t, 2, p.Updates())
}

func TestReset(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.Register("a"))
	p.Reset()
	assert.Empty(t, p.Actors())
	assert.NoError(t, p.Register("a"))
}
