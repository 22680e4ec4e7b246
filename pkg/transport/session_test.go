package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/roadtest/internal/simtest"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, srv *simtest.Server, opts ...transport.Option) *transport.Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := transport.Open(ctx, srv.URL, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestOpen_ReturnsOnlyWhenUsable(t *testing.T) {
	srv := simtest.NewServer(t, nil)
	s := open(t, srv)
	assert.Equal(t, transport.StateOpen, s.State())
	assert.Equal(t, srv.URL, s.Endpoint())
}

func TestOpen_DialFailure(t *testing.T) {
	_, err := transport.Open(testCtx(t), "ws://127.0.0.1:1/nothing")
	assert.Error(t, err)
}

func TestCommand_RoundTrip(t *testing.T) {
	srv := simtest.NewServer(t, func(cmd simtest.Command) []any {
		return []any{simtest.Result(map[string]any{"echo": cmd.Name})}
	})
	s := open(t, srv)

	res, err := s.Command(testCtx(t), "simulator/version", map[string]any{"verbose": true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"echo":"simulator/version"}`, string(res))

	cmds := srv.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "simulator/version", cmds[0].Name)
	assert.JSONEq(t, `{"verbose":true}`, string(cmds[0].Arguments))
}

func TestCommand_NilArgumentsEncodeAsMapping(t *testing.T) {
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		return []any{simtest.Result(nil)}
	})
	s := open(t, srv)

	_, err := s.Command(testCtx(t), "simulator/reset", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(srv.Commands()[0].Arguments))
}

func TestCommand_SlotEmptyAfterReply(t *testing.T) {
	n := 0
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		n++
		return []any{simtest.Result(n)}
	})
	s := open(t, srv)

	for want := 1; want <= 3; want++ {
		res, err := s.Command(testCtx(t), "count", nil)
		require.NoError(t, err)
		var got int
		require.NoError(t, json.Unmarshal(res, &got))
		assert.Equal(t, want, got)
	}
}

func TestCommand_RemoteErrorVerbatim(t *testing.T) {
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		return []any{simtest.Error("x")}
	})
	s := open(t, srv)

	_, err := s.Command(testCtx(t), "anything", nil)
	var remote *transport.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "x", remote.Message)
	assert.Equal(t, "x", err.Error())

	// The session survives a remote error.
	assert.Equal(t, transport.StateOpen, s.State())
}

func TestCommand_NotConnectedAfterClose(t *testing.T) {
	srv := simtest.NewServer(t, nil)
	s := open(t, srv)
	require.NoError(t, s.Close(testCtx(t)))

	_, err := s.Command(testCtx(t), "x", nil)
	assert.ErrorIs(t, err, transport.ErrNotConnected)
	assert.Equal(t, transport.StateClosed, s.State())
}

func TestCommand_InFlight(t *testing.T) {
	release := make(chan struct{})
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		<-release
		return []any{simtest.Result("late")}
	})
	s := open(t, srv)

	first := make(chan error, 1)
	go func() {
		_, err := s.Command(testCtx(t), "slow", nil)
		first <- err
	}()

	require.Eventually(t, func() bool { return len(srv.Commands()) == 1 }, time.Second, 5*time.Millisecond)
	_, err := s.Command(testCtx(t), "second", nil)
	assert.ErrorIs(t, err, transport.ErrCommandInFlight)

	close(release)
	assert.NoError(t, <-first)
}

func TestCommand_ContextCancel(t *testing.T) {
	srv := simtest.NewServer(t, nil)
	s := open(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.Command(ctx, "never-answered", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStep_ReceivesEpisode(t *testing.T) {
	sim := simtest.NewSimulator(simtest.Actor{ID: "npc-1", Velocity: domain.Vector{X: 2}})
	srv := simtest.NewServer(t, sim.Handle)
	s := open(t, srv)

	for frame := int64(1); frame <= 3; frame++ {
		st, err := s.Step(testCtx(t), simtest.CommandRun, map[string]any{"time_limit": 0.5})
		require.NoError(t, err)
		assert.Equal(t, domain.EpisodeType, st.Type)
		assert.Equal(t, frame, st.GameTime.CurrentFrame)
		assert.InDelta(t, 0.5*float64(frame), st.GameTime.CurrentTime, 1e-9)
		require.Len(t, st.NPCs, 1)
		assert.Equal(t, "npc-1", st.NPCs[0].AgentID)
		assert.InDelta(t, 1.0*float64(frame), st.NPCs[0].Transform.Position.X, 1e-9)
	}
}

func TestStep_EpisodeBeforeReply(t *testing.T) {
	sim := simtest.NewSimulator()
	sim.EpisodeFirst = true
	srv := simtest.NewServer(t, sim.Handle)
	s := open(t, srv)

	st, err := s.Step(testCtx(t), simtest.CommandRun, map[string]any{"time_limit": 0.5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.GameTime.CurrentFrame)

	// The ordinary reply that followed the episode is not misread by the next command.
	res, err := s.Command(testCtx(t), simtest.CommandCurrentFrame, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(res))
}

func TestStep_OrdinaryCommandsNeverSeeEpisodes(t *testing.T) {
	sim := simtest.NewSimulator()
	srv := simtest.NewServer(t, sim.Handle)
	s := open(t, srv)

	_, err := s.Step(testCtx(t), simtest.CommandRun, map[string]any{"time_limit": 1.0})
	require.NoError(t, err)

	res, err := s.Command(testCtx(t), simtest.CommandCurrentTime, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(res))
}

func TestStep_RemoteErrorFailsStep(t *testing.T) {
	sim := simtest.NewSimulator()
	sim.FailRunAt = 2
	srv := simtest.NewServer(t, sim.Handle)
	s := open(t, srv)

	_, err := s.Step(testCtx(t), simtest.CommandRun, map[string]any{"time_limit": 0.5})
	require.NoError(t, err)

	_, err = s.Step(testCtx(t), simtest.CommandRun, map[string]any{"time_limit": 0.5})
	var remote *transport.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "simulation aborted", remote.Message)
}

func TestStep_ErrorAfterReplyRoutedToStep(t *testing.T) {
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		return []any{simtest.Result(nil), simtest.Error("physics exploded")}
	})
	s := open(t, srv)

	_, err := s.Step(testCtx(t), "simulator/run", nil)
	var remote *transport.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "physics exploded", remote.Message)
}

func doublePush(cmd simtest.Command) []any {
	switch cmd.Name {
	case "double":
		return []any{
			simtest.Result(nil),
			simtest.Episode(domain.EpisodeState{GameTime: domain.GameTime{CurrentTime: 0.5, CurrentFrame: 1}}),
			simtest.Episode(domain.EpisodeState{GameTime: domain.GameTime{CurrentTime: 1.0, CurrentFrame: 2}}),
		}
	case "episode-first":
		return []any{
			simtest.Episode(domain.EpisodeState{GameTime: domain.GameTime{CurrentTime: 1.5, CurrentFrame: 3}}),
			simtest.Result(nil),
		}
	}
	return []any{
		simtest.Result(nil),
		simtest.Episode(domain.EpisodeState{GameTime: domain.GameTime{CurrentTime: 1.5, CurrentFrame: 3}}),
	}
}

func TestStep_ExtraPushIsDiscardedByTheNextStep(t *testing.T) {
	srv := simtest.NewServer(t, doublePush)
	s := open(t, srv)

	st, err := s.Step(testCtx(t), "double", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.GameTime.CurrentFrame)
	require.Eventually(t, func() bool { return s.Backlog() == 1 }, time.Second, 5*time.Millisecond)

	st, err = s.Step(testCtx(t), "single", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.GameTime.CurrentFrame, "the step returns the state its own command produced")
	assert.Zero(t, s.Backlog())
}

func TestStep_QueuedPushDoesNotStallEpisodeFirstReply(t *testing.T) {
	srv := simtest.NewServer(t, doublePush)
	s := open(t, srv)

	_, err := s.Step(testCtx(t), "double", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Backlog() == 1 }, time.Second, 5*time.Millisecond)

	// No step timeout: a stalled reader would hang here until the test deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := s.Step(ctx, "episode-first", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.GameTime.CurrentFrame)
}

func TestStep_UnsolicitedPushDoesNotShiftLaterSteps(t *testing.T) {
	sim := simtest.NewSimulator()
	srv := simtest.NewServer(t, sim.Handle)
	s := open(t, srv)

	require.NoError(t, srv.Push(simtest.Episode(domain.EpisodeState{})))
	require.Eventually(t, func() bool { return s.Backlog() == 1 }, time.Second, 5*time.Millisecond)

	for frame := int64(1); frame <= 3; frame++ {
		st, err := s.Step(testCtx(t), simtest.CommandRun, map[string]any{"time_limit": 0.5})
		require.NoError(t, err)
		assert.Equal(t, frame, st.GameTime.CurrentFrame)
	}
	assert.Zero(t, s.Backlog())
}

func TestStep_Timeout(t *testing.T) {
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		return []any{simtest.Result(nil)}
	})
	s := open(t, srv, transport.WithStepTimeout(50*time.Millisecond))

	_, err := s.Step(context.Background(), "simulator/run", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMalformedFrameIsFatal(t *testing.T) {
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		return []any{[]byte("{not json")}
	})
	s := open(t, srv)

	_, err := s.Command(testCtx(t), "x", nil)
	var decodeErr *transport.ProtocolDecodeError
	require.ErrorAs(t, err, &decodeErr)

	<-s.Done()
	assert.Equal(t, transport.StateClosed, s.State())
	_, err = s.Command(testCtx(t), "y", nil)
	assert.ErrorIs(t, err, transport.ErrNotConnected)
}

func TestDroppedConnectionUnblocksStep(t *testing.T) {
	srv := simtest.NewServer(t, func(simtest.Command) []any {
		return []any{simtest.Result(nil)}
	})
	s := open(t, srv)

	done := make(chan error, 1)
	go func() {
		_, err := s.Step(testCtx(t), "simulator/run", nil)
		done <- err
	}()
	require.Eventually(t, func() bool { return len(srv.Commands()) == 1 }, time.Second, 5*time.Millisecond)

	srv.Drop()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, transport.ErrTransportClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("step wait did not unblock")
	}
}

func TestClose_Idempotent(t *testing.T) {
	srv := simtest.NewServer(t, nil)
	s := open(t, srv)

	require.NoError(t, s.Close(testCtx(t)))
	require.NoError(t, s.Close(testCtx(t)))
	assert.True(t, errors.Is(s.Err(), transport.ErrTransportClosed))

	select {
	case <-srv.Disconnected():
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the disconnect")
	}
}

func TestClose_WithQueuedPushes(t *testing.T) {
	srv := simtest.NewServer(t, nil)
	s := open(t, srv, transport.WithCloseGrace(100*time.Millisecond))

	require.NoError(t, srv.Push(simtest.Episode(domain.EpisodeState{GameTime: domain.GameTime{CurrentFrame: 1}})))
	require.NoError(t, srv.Push(simtest.Episode(domain.EpisodeState{GameTime: domain.GameTime{CurrentFrame: 2}})))
	require.Eventually(t, func() bool { return s.Backlog() == 2 }, time.Second, 5*time.Millisecond)

	closed := make(chan struct{})
	go func() {
		_ = s.Close(context.Background())
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close hung with queued pushes")
	}
}
