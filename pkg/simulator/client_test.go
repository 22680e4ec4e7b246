package simulator_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/roadtest/internal/simtest"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/simulator"
	"github.com/aretw0/roadtest/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, sim *simtest.Simulator) (*simulator.Client, *simtest.Server) {
	t.Helper()
	srv := simtest.NewServer(t, sim.Handle)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := transport.Open(ctx, srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return simulator.New(s), srv
}

func TestClient_StepAndQueries(t *testing.T) {
	client, srv := connect(t, simtest.NewSimulator(simtest.Actor{ID: "npc-1", Velocity: domain.Vector{X: 4}}))
	ctx := context.Background()

	st, err := client.Step(ctx, 0.5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.GameTime.CurrentFrame)
	assert.InDelta(t, 2.0, st.NPCs[0].Transform.Position.X, 1e-9)

	now, err := client.CurrentTime(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, now, 1e-9)

	frame, err := client.CurrentFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), frame)

	require.NoError(t, client.Reset(ctx))
	frame, err = client.CurrentFrame(ctx)
	require.NoError(t, err)
	assert.Zero(t, frame)

	cmds := srv.Commands()
	require.NotEmpty(t, cmds)
	assert.Equal(t, simulator.DefaultStepCommand, cmds[0].Name)
	assert.JSONEq(t, `{"time_limit":0.5}`, string(cmds[0].Arguments))
}

func TestClient_RejectsNonPositiveStep(t *testing.T) {
	client := simulator.New(nil)
	_, err := client.Step(context.Background(), 0)
	assert.Error(t, err)
}

func TestClient_CustomStepCommand(t *testing.T) {
	srv := simtest.NewServer(t, func(cmd simtest.Command) []any {
		if cmd.Name != "sim/tick" {
			return []any{simtest.Error("unexpected " + cmd.Name)}
		}
		return []any{simtest.Result(nil), simtest.Episode(domain.EpisodeState{GameTime: domain.GameTime{CurrentTime: 0.1, CurrentFrame: 1}})}
	})
	s, err := transport.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer func() { _ = s.Close(context.Background()) }()

	st, err := simulator.New(s, simulator.WithStepCommand("sim/tick")).Step(context.Background(), 0.1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.GameTime.CurrentFrame)
}

func TestClient_RemoteErrorsPassThrough(t *testing.T) {
	sim := simtest.NewSimulator()
	sim.FailRunAt = 1
	client, _ := connect(t, sim)

	_, err := client.Step(context.Background(), 0.5)
	var remote *transport.RemoteError
	require.ErrorAs(t, err, &remote)
}
