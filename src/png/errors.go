package png

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error by where it was detected.
type Kind int

const (
	// InvalidInput covers malformed caller input detected synchronously:
	// bad dimensions, bad chunk sizes, out-of-order writes, and the like.
	InvalidInput Kind = iota
	// Other covers everything detected asynchronously or at a lower
	// layer: DEFLATE runtime errors, incomplete input at Finish, worker
	// failures, and sink write failures bubbled up.
	Other
)

func (k Kind) String() string {
	if k == InvalidInput {
		return "InvalidInput"
	}
	return "Other"
}

// Error is the error type every exported operation in this module returns.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("png: %s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("png: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func invalidInput(format string, args ...any) *Error {
	return &Error{Kind: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

// wrapOther wraps cause, attaching a stack trace at the point the pipeline
// observed the failure (a worker error or sink write failure crossing a
// goroutine boundary) so the aborting encoder can report both "what broke"
// and "where we noticed".
func wrapOther(cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    Other,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.WithStack(cause),
	}
}

var (
	// ErrInvalidDimensions is returned when width or height is zero.
	ErrInvalidDimensions = invalidInput("width and height must both be non-zero")
	// ErrHeaderAlreadyWritten is returned by a second call to WriteHeader.
	ErrHeaderAlreadyWritten = invalidInput("header already written")
	// ErrHeaderNotWritten is returned when a write happens before WriteHeader.
	ErrHeaderNotWritten = invalidInput("header not written yet")
	// ErrOutOfOrder is returned when a palette, transparency or ancillary
	// chunk is written after image rows have started, or when rows are
	// written or Finish is called after Finish. The relative order of
	// palette and transparency is not checked.
	ErrOutOfOrder = invalidInput("chunks written out of order")
	// ErrIncompleteImage is returned by Finish when fewer rows were
	// submitted than the header's height requires.
	ErrIncompleteImage = &Error{Kind: Other, Message: "incomplete image input"}
)
