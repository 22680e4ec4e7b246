package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a command is issued on a session that is not open.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrTransportClosed is returned to waiters when the connection ended, cleanly or not.
	ErrTransportClosed = errors.New("transport: connection closed")

	// ErrCommandInFlight is returned when a second command is issued while one is outstanding.
	ErrCommandInFlight = errors.New("transport: command already in flight")
)

// RemoteError carries an error envelope sent by the simulator. Message is kept verbatim.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// ProtocolDecodeError reports an inbound frame that could not be decoded.
// It is fatal to the session.
type ProtocolDecodeError struct {
	Frame []byte
	Err   error
}

func (e *ProtocolDecodeError) Error() string {
	return fmt.Sprintf("transport: malformed frame (%d bytes): %v", len(e.Frame), e.Err)
}

func (e *ProtocolDecodeError) Unwrap() error {
	return e.Err
}
