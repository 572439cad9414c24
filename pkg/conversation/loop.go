// Package conversation runs the turn-by-turn assistant loop: score the user
// message, compose a prompt, generate a reply and record the exchange.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/tutorbot/pkg/knowledge"
	"github.com/entrhq/tutorbot/pkg/profile"
	"github.com/entrhq/tutorbot/pkg/prompts"
	"github.com/entrhq/tutorbot/pkg/sentiment"
	"github.com/entrhq/tutorbot/pkg/session"
	"github.com/entrhq/tutorbot/pkg/types"
)

// DefaultFallback is recorded as the bot reply when generation fails or
// returns no text.
const DefaultFallback = "I'm not sure how to respond to that."

var (
	// ErrEnded is reported by Handle once the session is over.
	ErrEnded = errors.New("conversation: session has ended")

	// ErrPanic marks a capability that panicked instead of returning an error.
	ErrPanic = errors.New("conversation: capability panicked")
)

// Generator produces a reply for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Transcript is the bounded on-disk record of the conversation.
type Transcript interface {
	Trim() error
	Append(records ...string) error
}

// Deps are the capabilities a Loop needs.
type Deps struct {
	Scorer     sentiment.Scorer
	Generator  Generator
	Transcript Transcript
	Profile    profile.Profile
	Knowledge  *knowledge.Base
}

// Loop is the conversation state machine. It owns the session window and is
// its only writer.
type Loop struct {
	scorer     sentiment.Scorer
	generator  Generator
	transcript Transcript
	profile    profile.Profile
	knowledge  *knowledge.Base

	window      *session.Window
	logger      *slog.Logger
	tokens      *prompts.TokenCounter
	fallback    string
	quitCommand string
	observers   []Observer

	mu    sync.Mutex
	state State
}

// Option configures a Loop.
type Option func(*Loop)

// WithWindow sets the session window. Defaults to an unbounded window.
func WithWindow(w *session.Window) Option {
	return func(l *Loop) {
		if w != nil {
			l.window = w
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFallback sets the reply recorded when generation yields nothing.
func WithFallback(text string) Option {
	return func(l *Loop) {
		if strings.TrimSpace(text) != "" {
			l.fallback = text
		}
	}
}

// WithTokenCounter enables prompt size diagnostics.
func WithTokenCounter(c *prompts.TokenCounter) Option {
	return func(l *Loop) {
		l.tokens = c
	}
}

// WithQuitCommand overrides the sentinel that ends the session.
func WithQuitCommand(cmd string) Option {
	return func(l *Loop) {
		if cmd != "" {
			l.quitCommand = cmd
		}
	}
}

// NewLoop creates a loop in StateAwaitingInput.
func NewLoop(deps Deps, opts ...Option) (*Loop, error) {
	var missing []string
	if deps.Scorer == nil {
		missing = append(missing, "scorer")
	}
	if deps.Generator == nil {
		missing = append(missing, "generator")
	}
	if deps.Transcript == nil {
		missing = append(missing, "transcript")
	}
	if len(missing) > 0 {
		return nil, types.NewError(types.KindConfiguration, "new loop",
			fmt.Errorf("missing dependencies: %s", strings.Join(missing, ", ")))
	}

	kb := deps.Knowledge
	if kb == nil {
		kb = knowledge.New()
	}

	l := &Loop{
		scorer:      deps.Scorer,
		generator:   deps.Generator,
		transcript:  deps.Transcript,
		profile:     deps.Profile,
		knowledge:   kb,
		window:      session.NewWindow(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		fallback:    DefaultFallback,
		quitCommand: types.DefaultQuitCommand,
		state:       StateAwaitingInput,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Window returns the session window. Callers must treat it as read-only.
func (l *Loop) Window() *session.Window {
	return l.window
}

// Handle processes one line of user input.
//
// Every per-turn failure is caught here and reported in the Result; Handle
// itself never fails. A scoring failure abandons the turn without touching
// the window or transcript. Generation and transcript failures still record
// the turn in the window.
func (l *Loop) Handle(ctx context.Context, line string) *Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateEnded {
		return &Result{Ended: true, Errors: []error{ErrEnded}}
	}

	input := types.ParseInput(line, l.quitCommand)
	if input.IsQuit() {
		l.state = StateEnded
		l.logger.Info("session ended", "turns", l.window.Len())
		l.notifyEnd(l.window.Len())
		return &Result{Ended: true}
	}

	res := &Result{}
	defer func() { l.state = StateAwaitingInput }()

	l.state = StateScoring
	score, err := l.score(ctx, input.Content)
	if err != nil {
		l.logger.Warn("sentiment scoring failed", "error", err)
		res.Errors = append(res.Errors, types.NewError(types.KindScoring, "score input", err))
		l.notifyTurn(TurnReport{Errors: res.Errors})
		return res
	}
	res.Sentiment = score

	l.state = StateComposing
	res.Prompt = prompts.Compose(l.profile, score, l.knowledge, l.window, input.Content)
	if l.tokens != nil {
		l.logger.Debug("prompt composed", "bytes", len(res.Prompt), "tokens", l.tokens.Count(res.Prompt))
	}

	l.state = StateGenerating
	started := time.Now()
	reply, err := l.generate(ctx, res.Prompt)
	elapsed := time.Since(started)
	if err != nil {
		l.logger.Warn("generation failed, using fallback", "error", err)
		res.Errors = append(res.Errors, types.NewError(types.KindGeneration, "generate reply", err))
		reply = ""
	}
	fallback := strings.TrimSpace(reply) == ""
	if fallback {
		if err == nil {
			l.logger.Info("empty generation result, using fallback")
		}
		reply = l.fallback
	}

	l.state = StateRecording
	turn := session.NewTurn(input.Content, reply)
	if err := l.transcript.Trim(); err != nil {
		l.logger.Warn("transcript trim failed", "error", err)
		res.Errors = append(res.Errors, asIOError("trim transcript", err))
	}
	if err := l.transcript.Append("User: "+input.Content, "Bot: "+reply); err != nil {
		l.logger.Warn("transcript append failed", "error", err)
		res.Errors = append(res.Errors, asIOError("append transcript", err))
	}
	l.window.Append(turn)
	res.Turn = &turn

	l.logger.Debug("turn recorded", "sentiment", score, "window", l.window.Len(), "errors", len(res.Errors))
	l.notifyTurn(TurnReport{
		Sentiment:  score,
		Generation: elapsed,
		Recorded:   true,
		Fallback:   fallback,
		Errors:     res.Errors,
	})
	return res
}

func (l *Loop) score(ctx context.Context, text string) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	score, err = l.scorer.Score(ctx, text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) {
		return 0, errors.New("scorer returned NaN")
	}
	return sentiment.Clamp(score), nil
}

func (l *Loop) generate(ctx context.Context, prompt string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return l.generator.Generate(ctx, prompt)
}

func asIOError(op string, err error) error {
	if types.IsKind(err, types.KindIO) {
		return err
	}
	return types.NewError(types.KindIO, op, err)
}
