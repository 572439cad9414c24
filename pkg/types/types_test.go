package types

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		quit     string
		wantQuit bool
	}{
		{name: "lower", line: "quit", wantQuit: true},
		{name: "upper", line: "QUIT", wantQuit: true},
		{name: "title", line: "Quit", wantQuit: true},
		{name: "padded is not a sentinel", line: " quit", wantQuit: false},
		{name: "sentence", line: "I want to quit math", wantQuit: false},
		{name: "empty", line: "", wantQuit: false},
		{name: "custom sentinel", line: "Bye", quit: "bye", wantQuit: true},
		{name: "default ignored with custom", line: "quit", quit: "bye", wantQuit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ParseInput(tt.line, tt.quit)
			assert.Equal(t, tt.wantQuit, in.IsQuit())
			assert.Equal(t, !tt.wantQuit, in.IsUserInput())
			assert.Equal(t, tt.line, in.Content)
		})
	}
}

func TestErrorKinds(t *testing.T) {
	base := NewError(KindIO, "trim transcript", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("recording turn: %w", base)

	assert.Equal(t, KindIO, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindIO))
	assert.False(t, IsKind(wrapped, KindGeneration))
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))
	assert.Equal(t, "io: trim transcript: unexpected EOF", base.Error())

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindIO))
	assert.Equal(t, "generation: boom", NewError(KindGeneration, "", errors.New("boom")).Error())
}
