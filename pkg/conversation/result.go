package conversation

import (
	"errors"

	"github.com/entrhq/tutorbot/pkg/session"
)

// Result describes the outcome of one call to Loop.Handle.
type Result struct {
	// Ended is true once the quit command has been received.
	Ended bool

	// Turn is the recorded exchange, nil when no turn was produced.
	Turn *session.Turn

	Sentiment float64
	Prompt    string

	// Errors holds every failure reported during the turn, each tagged with a
	// types.ErrorKind.
	Errors []error
}

// Err joins all reported errors, or returns nil.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Response returns the bot text of the recorded turn, if any.
func (r *Result) Response() string {
	if r == nil || r.Turn == nil {
		return ""
	}
	return r.Turn.BotText
}
