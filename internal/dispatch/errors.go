package dispatch

import (
	"context"
	"errors"
)

var (
	ErrEndpointNotFound  = errors.New("endpoint not found")
	ErrOperationNotFound = errors.New("operation not found")
	ErrDuplicateEndpoint = errors.New("endpoint already registered")
	ErrInvalidEndpoint   = errors.New("invalid endpoint")

	// ErrHandlerPanic is returned when a handler panics. The scope is ended
	// before the error reaches the transport.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrBadRequest may be wrapped by handlers rejecting their input.
	ErrBadRequest = errors.New("bad request")
)

// Outcome classifies a dispatch result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEndpointNotFound), errors.Is(err, ErrOperationNotFound):
		return "not_found"
	case errors.Is(err, ErrHandlerPanic):
		return "panic"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
