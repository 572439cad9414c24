package types

import (
	"errors"
	"fmt"
)

// ErrorKind tags a failure with its place in the error taxonomy so callers
// can branch on the kind instead of the message text.
type ErrorKind string

const (
	// KindConfiguration is a missing or invalid setting detected before the
	// conversation starts. It is fatal.
	KindConfiguration ErrorKind = "configuration"

	// KindIO is a transcript read, write, or trim failure. The turn continues.
	KindIO ErrorKind = "io"

	// KindGeneration is a failed or malformed generation call. The turn
	// completes with the fallback response.
	KindGeneration ErrorKind = "generation"

	// KindScoring is a failed sentiment call. The turn is abandoned without
	// touching any state.
	KindScoring ErrorKind = "input_scoring"
)

// Error is a tagged failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that failed.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first tagged error in err's chain, or the
// empty kind when there is none.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
