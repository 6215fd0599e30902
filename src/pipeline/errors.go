package pipeline

import "github.com/pkg/errors"

// Error wraps an error returned by a filter or deflate job before it crosses
// the goroutine boundary from a worker back to the single consumer
// goroutine. pkg/errors.WithStack attaches a stack trace on the worker
// goroutine that produced the failure, since the consumer goroutine that
// later reports it is usually far from that point.
type Error struct {
	cause error
}

func (e *Error) Error() string { return e.cause.Error() }
func (e *Error) Unwrap() error { return e.cause }

func wrapJobError(cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{cause: errors.WithStack(cause)}
}
