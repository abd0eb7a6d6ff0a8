package dist

import (
	"errors"
	"fmt"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

var (
	ErrConnectionClosed = errors.New("dist: connection closed")
	ErrQueueFull        = errors.New("dist: transport queue is full")
	ErrNoAtomCache      = errors.New("dist: distribution header without atom cache")
)

// UnknownMessageTypeError is returned for a control message operation the
// classifier does not know.
type UnknownMessageTypeError struct {
	Code MessageType
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("dist: unknown message type %d", int32(e.Code))
}

// ControlError is returned when a control tuple does not have the layout
// of its operation.
type ControlError struct {
	Type   MessageType
	Reason string
	Term   etf.Term
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("dist: malformed %s control message: %s", e.Type, e.Reason)
}

// TrailingBytesError is returned when bytes remain after a complete message.
type TrailingBytesError struct {
	Len int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("dist: %d trailing bytes after message", e.Len)
}

// DecodeError wraps a failure of Connection.Decode with the connection it
// happened on.
type DecodeError struct {
	ConnID string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("dist: connection %s: %s", e.ConnID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
