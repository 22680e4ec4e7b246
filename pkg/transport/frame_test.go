package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		kind    frameKind
		message string
	}{
		{"null result", `{"result":null}`, kindReply, ""},
		{"scalar result", `{"result":12.5}`, kindReply, ""},
		{"object without type", `{"result":{"name":"BorregasAve"}}`, kindReply, ""},
		{"other typed object", `{"result":{"type":"agent"}}`, kindReply, ""},
		{"string error", `{"error":"x"}`, kindError, "x"},
		{"structured error", `{"error":{"code":3}}`, kindError, `{"code":3}`},
		{"null error is a reply", `{"result":1,"error":null}`, kindReply, ""},
		{"episode", `{"result":{"type":"episode","npcs_state":[],"game_time":{"current_time":0.5,"current_frame":1}}}`, kindStep, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decodeFrame([]byte(tt.frame))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, msg.kind)
			if tt.kind == kindError {
				assert.EqualError(t, msg.err, tt.message)
			}
		})
	}
}

func TestDecodeFrame_Episode(t *testing.T) {
	frame := `{"result":{"type":"episode","npcs_state":[{"agent_id":"a1","transform":{"position":{"x":1,"y":2,"z":3},"rotation":{"x":0,"y":90,"z":0}},"velocity":{"x":3,"y":0,"z":4},"angular_velocity":{"x":0,"y":0.1,"z":0}},{"agent_id":null,"transform":{"position":{"x":0,"y":0,"z":0},"rotation":{"x":0,"y":0,"z":0}},"velocity":{"x":0,"y":0,"z":0},"angular_velocity":{"x":0,"y":0,"z":0}}],"game_time":{"current_time":1.5,"current_frame":3}}}`

	msg, err := decodeFrame([]byte(frame))
	require.NoError(t, err)
	require.Equal(t, kindStep, msg.kind)

	st := msg.step
	assert.Equal(t, int64(3), st.GameTime.CurrentFrame)
	assert.Equal(t, 1.5, st.GameTime.CurrentTime)
	require.Len(t, st.NPCs, 2)
	assert.Equal(t, "a1", st.NPCs[0].AgentID)
	assert.Equal(t, 5.0, st.NPCs[0].Speed())
	assert.Equal(t, 90.0, st.NPCs[0].Transform.Rotation.Y)
	assert.Empty(t, st.NPCs[1].AgentID)
	assert.Nil(t, st.Ego)
}

func TestDecodeFrame_Malformed(t *testing.T) {
	for _, frame := range []string{
		`{not json`,
		`{"result":{"type":"episode","game_time":"soon"}}`,
		`[1,2]`,
	} {
		_, err := decodeFrame([]byte(frame))
		var decodeErr *ProtocolDecodeError
		assert.ErrorAs(t, err, &decodeErr, frame)
	}
}

func TestEncodeCommand(t *testing.T) {
	data, err := encodeCommand("simulator/run", map[string]any{"time_limit": 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"simulator/run","arguments":{"time_limit":0.5}}`, string(data))
}
