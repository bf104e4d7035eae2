package planner

import (
	"errors"
	"fmt"
)

// Failure kinds for a generation request. Handlers classify with errors.Is;
// the message shown to the caller comes from the wrapping error.
var (
	// ErrPrecondition covers everything that blocks generation before the
	// completion API is called: empty prompt, missing profile, empty catalog.
	ErrPrecondition = errors.New("precondition failed")

	// ErrUpstreamCall means the completion API call itself failed.
	ErrUpstreamCall = errors.New("completion API call failed")

	// ErrMalformedResponse means the completion API returned text that is not
	// valid JSON or does not match the required plan shape.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrCatalogViolation means the model referenced an exercise outside the
	// allowed catalog.
	ErrCatalogViolation = errors.New("exercise not in catalog")

	// ErrCompletionTimeout means the completion call exceeded its deadline.
	ErrCompletionTimeout = errors.New("completion API call timed out")

	// ErrPersistence means a store write failed after generation succeeded.
	ErrPersistence = errors.New("persistence failed")
)

type plannerError struct {
	kind error
	msg  string
}

func (e *plannerError) Error() string { return e.msg }
func (e *plannerError) Unwrap() error { return e.kind }

// failf builds an error that classifies under kind but reads as the
// formatted message, so callers can surface it to the user verbatim.
func failf(kind error, format string, args ...any) error {
	return &plannerError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
