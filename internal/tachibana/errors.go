package tachibana

import (
	"errors"
	"fmt"
)

// AuthError means the login handshake was rejected or returned an unusable
// session. It is fatal to the polling flow; callers must not retry it in a
// tight loop.
type AuthError struct {
	Errno   int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("tachibana auth failed (p_errno=%d): %s", e.Errno, e.Message)
}

// TransportError wraps a network-level failure on a single request. The cycle
// that hit it is skipped; the loop continues.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tachibana transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a response body was missing required fields or carried an
// empty snapshot set. An empty result for a non-empty code list signals a
// session or protocol fault, not a valid empty market.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tachibana decode: %s: %v", e.Reason, e.Err)
	}
	return "tachibana decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrNotAuthenticated is returned when a data request is attempted before a
// successful Login populated the virtual endpoint URLs.
var ErrNotAuthenticated = errors.New("tachibana: session not authenticated")

// Kind classifies an error for metrics and event labels.
func Kind(err error) string {
	var ae *AuthError
	var te *TransportError
	var de *DecodeError
	switch {
	case errors.As(err, &ae), errors.Is(err, ErrNotAuthenticated):
		return "auth"
	case errors.As(err, &te):
		return "transport"
	case errors.As(err, &de):
		return "decode"
	default:
		return "storage"
	}
}
