package client

import (
	"errors"
	"fmt"
)

var (
	// ErrClientClosed is returned when using a Client after Close.
	ErrClientClosed = errors.New("sync client closed")

	// ErrSessionClosed is returned when using a Session after Close.
	ErrSessionClosed = errors.New("sync session closed")

	errReleased = errors.New("connection released")
)

// ErrorKind classifies the errors reported by the connection manager.
type ErrorKind uint32

const (
	// ConnectionFailed means that a connection could not be established within
	// the connect timeout, or that the handshake was refused.
	ConnectionFailed ErrorKind = iota
	// HeartbeatTimeout means that no PONG was received within the pong
	// keepalive timeout.
	HeartbeatTimeout
	// ConnectionClosed means that an established connection was lost.
	ConnectionClosed
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionFailed:
		return "Connection Failed"
	case HeartbeatTimeout:
		return "Heartbeat Timeout"
	case ConnectionClosed:
		return "Connection Closed"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint32(k))
}

// Error is the error type reported to the error handler, and returned by
// OpenSession when a connection cannot be established.
type Error struct {
	Kind   ErrorKind
	Server string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s, %s", e.Kind, e.Server)
	}
	return fmt.Sprintf("%s, %s, %v", e.Kind, e.Server, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind checks that err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
