package transport

import (
	"bytes"
	"encoding/json"

	"github.com/aretw0/roadtest/pkg/domain"
)

// commandFrame is the outbound wire shape.
type commandFrame struct {
	Command   string `json:"command"`
	Arguments any    `json:"arguments"`
}

// replyFrame is the inbound wire shape: {result} or {error}.
type replyFrame struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

type frameKind int

const (
	kindReply frameKind = iota
	kindError
	kindStep
)

// inbound is a frame decoded once by the reader.
type inbound struct {
	kind   frameKind
	result json.RawMessage
	err    error
	step   *domain.EpisodeState
}

func encodeCommand(name string, args any) ([]byte, error) {
	if args == nil {
		args = map[string]any{}
	}
	return json.Marshal(commandFrame{Command: name, Arguments: args})
}

// decodeFrame classifies one inbound frame.
func decodeFrame(data []byte) (inbound, error) {
	var f replyFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return inbound{}, &ProtocolDecodeError{Frame: data, Err: err}
	}

	if len(f.Error) > 0 && !isNull(f.Error) {
		return inbound{kind: kindError, err: &RemoteError{Message: errorText(f.Error)}}, nil
	}

	if isObject(f.Result) {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(f.Result, &tag); err != nil {
			return inbound{}, &ProtocolDecodeError{Frame: data, Err: err}
		}
		if tag.Type == domain.EpisodeType {
			var st domain.EpisodeState
			if err := json.Unmarshal(f.Result, &st); err != nil {
				return inbound{}, &ProtocolDecodeError{Frame: data, Err: err}
			}
			return inbound{kind: kindStep, step: &st}, nil
		}
	}

	return inbound{kind: kindReply, result: f.Result}, nil
}

// errorText unquotes string errors and passes any other JSON through as text.
func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
