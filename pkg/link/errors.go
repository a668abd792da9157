package link

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed indicates the arguments of a command can't be parsed.
	ErrMalformed = errors.New("malformed command")
	// ErrUnknownOpcode indicates the opcode is not recognised.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrTimeout indicates no response received in time.
	ErrTimeout = errors.New("response timeout")
	// ErrClosed indicates the link is closed.
	ErrClosed = errors.New("link closed")
	// ErrPeerChanged is returned by a stream read when a new peer took
	// over the stream. The unfinished line of the previous peer is
	// dropped.
	ErrPeerChanged = errors.New("peer changed")
)

// ParseError reports where parsing failed.
type ParseError struct {
	Line []byte
	Pos  int
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed command %q at %d", e.Line, e.Pos)
}

// Unwrap makes errors.Is(err, ErrMalformed) true.
func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// ResponseError wraps a failure response from the robot.
type ResponseError struct {
	Response string
}

// Error implements error.
func (e *ResponseError) Error() string {
	return e.Response
}
