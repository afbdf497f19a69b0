package errors

import "github.com/pkg/errors"

// StackTracer is satisfied by errors that carry a capture point.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer pairs an error with the stack captured where it first crossed
// a usecase boundary. Codes attached below the boundary stay reachable
// through Unwrap.
type ErrorTracer struct {
	Message string
	Err     error
}

// TracerFromError attaches a stack to err unless one is already present.
func TracerFromError(err error) *ErrorTracer {
	cause := err
	if _, ok := err.(StackTracer); !ok {
		cause = errors.WithStack(err)
	}
	return &ErrorTracer{Message: err.Error(), Err: cause}
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace exposes the underlying capture point for log enrichment.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if withStack, ok := e.Err.(StackTracer); ok {
		return withStack.StackTrace()
	}
	return nil
}
