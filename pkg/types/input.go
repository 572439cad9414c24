package types

import "strings"

// InputType defines the type of input read from the console.
type InputType string

const (
	InputTypeUserInput InputType = "user_input" // InputTypeUserInput indicates a text utterance to answer.
	InputTypeQuit      InputType = "quit"       // InputTypeQuit indicates the session-ending sentinel.
)

// DefaultQuitCommand is the sentinel that ends a session. It is matched
// case-insensitively against the whole line.
const DefaultQuitCommand = "quit"

// Input represents one line of console input classified by type.
type Input struct {
	// Content is the raw text as typed, without the trailing line break.
	Content string

	// Type indicates the kind of input.
	Type InputType
}

// NewUserInput creates a new user text input.
func NewUserInput(content string) *Input {
	return &Input{
		Type:    InputTypeUserInput,
		Content: content,
	}
}

// NewQuitInput creates a new session-ending input.
func NewQuitInput(content string) *Input {
	return &Input{
		Type:    InputTypeQuit,
		Content: content,
	}
}

// ParseInput classifies a console line. The line is a quit request only when
// it equals quitCommand ignoring case; surrounding whitespace is significant.
// An empty quitCommand falls back to DefaultQuitCommand.
func ParseInput(line, quitCommand string) *Input {
	if quitCommand == "" {
		quitCommand = DefaultQuitCommand
	}
	if strings.EqualFold(line, quitCommand) {
		return NewQuitInput(line)
	}
	return NewUserInput(line)
}

// IsQuit returns true if this input ends the session.
func (i *Input) IsQuit() bool {
	return i.Type == InputTypeQuit
}

// IsUserInput returns true if this is a user text input.
func (i *Input) IsUserInput() bool {
	return i.Type == InputTypeUserInput
}
