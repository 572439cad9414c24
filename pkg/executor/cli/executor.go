// Package cli provides a line-oriented console executor for the tutor loop.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/entrhq/tutorbot/pkg/conversation"
//	    "github.com/entrhq/tutorbot/pkg/executor/cli"
//	)
//
//	func main() {
//	    loop, err := conversation.NewLoop(deps)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    if err := cli.NewExecutor(loop).Run(context.Background()); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/tutorbot/pkg/conversation"
	"github.com/entrhq/tutorbot/pkg/types"
)

// EndedMessage is printed when the user quits.
const EndedMessage = "Chatbot session ended."

// Handler processes one line of console input.
type Handler interface {
	Handle(ctx context.Context, line string) *conversation.Result
}

// Executor reads user lines from a terminal, hands them to a Handler and
// prints the replies.
type Executor struct {
	handler     Handler
	reader      io.Reader
	writer      io.Writer
	logger      *slog.Logger
	quitCommand string
	styles      styles
}

type styles struct {
	user  lipgloss.Style
	bot   lipgloss.Style
	err   lipgloss.Style
	muted lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		user:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		bot:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		muted: r.NewStyle().Faint(true),
	}
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithReader sets the input source (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = r
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithQuitCommand sets the command named in the welcome banner.
func WithQuitCommand(cmd string) ExecutorOption {
	return func(e *Executor) {
		if cmd != "" {
			e.quitCommand = cmd
		}
	}
}

// NewExecutor creates a new console executor for the given handler.
func NewExecutor(handler Handler, opts ...ExecutorOption) *Executor {
	e := &Executor{
		handler:     handler,
		reader:      os.Stdin,
		writer:      os.Stdout,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		quitCommand: types.DefaultQuitCommand,
	}

	for _, opt := range opts {
		opt(e)
	}
	e.styles = newStyles(e.writer)

	return e
}

type readResult struct {
	line string
	err  error
}

// Run reads and handles lines until the user quits, input ends or ctx is
// canceled. Reaching end of input is not an error.
func (e *Executor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan readResult)
	next := make(chan struct{})
	go e.readLines(ctx, lines, next)

	fmt.Fprintln(e.writer, "Chatbot session started.")
	fmt.Fprintln(e.writer, e.styles.muted.Render(fmt.Sprintf("Type your message and press Enter. Type '%s' to end the session.", e.quitCommand)))
	fmt.Fprintln(e.writer)

	for {
		fmt.Fprint(e.writer, e.styles.user.Render("You:")+" ")

		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			fmt.Fprintln(e.writer)
			return ctx.Err()
		}

		var in readResult
		select {
		case in = <-lines:
		case <-ctx.Done():
			fmt.Fprintln(e.writer)
			return ctx.Err()
		}

		if in.line != "" {
			line := trimLineBreak(in.line)
			if strings.TrimSpace(line) != "" {
				if ended := e.handle(ctx, line); ended {
					return nil
				}
			}
		}

		if in.err != nil {
			if errors.Is(in.err, io.EOF) {
				fmt.Fprintln(e.writer)
				e.logger.Info("input closed")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", in.err)
		}
	}
}

// readLines reads one line per request on next, so no input is consumed
// after the session ends.
func (e *Executor) readLines(ctx context.Context, lines chan<- readResult, next <-chan struct{}) {
	reader := bufio.NewReader(e.reader)
	for {
		select {
		case <-next:
		case <-ctx.Done():
			return
		}

		line, err := reader.ReadString('\n')
		select {
		case lines <- readResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (e *Executor) handle(ctx context.Context, line string) bool {
	res := e.handler.Handle(ctx, line)
	if res == nil {
		return false
	}

	for _, err := range res.Errors {
		fmt.Fprintf(e.writer, "%s %s\n", e.styles.err.Render("Error:"), err)
	}
	if res.Turn != nil {
		fmt.Fprintf(e.writer, "%s %s\n", e.styles.bot.Render("Bot:"), res.Turn.BotText)
	}
	if res.Ended {
		fmt.Fprintln(e.writer, EndedMessage)
		return true
	}
	return false
}

// trimLineBreak strips one trailing "\n" or "\r\n" and nothing else.
func trimLineBreak(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
