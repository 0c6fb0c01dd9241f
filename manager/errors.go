package manager

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyConnected     = errors.New("manager: already connected")
	ErrNotConnected         = errors.New("manager: not connected")
	ErrConnectionTerminated = errors.New("manager: connection terminated")
	ErrUnclassifiable       = errors.New("manager: unclassifiable message")
)

// TransportError is a fatal socket-level failure. Op names the operation
// that observed it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("manager: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// AuthenticationError reports a rejected login. The session stays connected;
// only the credentials were refused.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("manager: authentication failed: %s", e.Message)
}
