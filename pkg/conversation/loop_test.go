package conversation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/entrhq/tutorbot/pkg/knowledge"
	"github.com/entrhq/tutorbot/pkg/logging"
	"github.com/entrhq/tutorbot/pkg/profile"
	"github.com/entrhq/tutorbot/pkg/sentiment"
	"github.com/entrhq/tutorbot/pkg/session"
	"github.com/entrhq/tutorbot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscript struct {
	trimErr   error
	appendErr error
	trims     int
	records   []string
}

func (f *fakeTranscript) Trim() error {
	f.trims++
	return f.trimErr
}

func (f *fakeTranscript) Append(records ...string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, records...)
	return nil
}

type counters struct {
	scores    int32
	generates int32
}

func fixedScorer(c *counters, v float64) sentiment.Scorer {
	return sentiment.ScorerFunc(func(context.Context, string) (float64, error) {
		atomic.AddInt32(&c.scores, 1)
		return v, nil
	})
}

func fixedGenerator(c *counters, reply string) Generator {
	return GeneratorFunc(func(context.Context, string) (string, error) {
		atomic.AddInt32(&c.generates, 1)
		return reply, nil
	})
}

func newTestLoop(t *testing.T, deps Deps, opts ...Option) *Loop {
	t.Helper()
	l, err := NewLoop(deps, opts...)
	require.NoError(t, err)
	return l
}

func anaProfile(t *testing.T) profile.Profile {
	t.Helper()
	p, err := profile.New(profile.Fields{
		Name:               "Ana",
		Age:                12,
		Interests:          []string{"art", "music"},
		CommunicationStyle: "casual",
		LearningStyle:      "visual",
		FavoriteSubject:    "art",
	})
	require.NoError(t, err)
	return p
}

func TestNewLoopMissingDeps(t *testing.T) {
	_, err := NewLoop(Deps{})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConfiguration))
	assert.Contains(t, err.Error(), "scorer, generator, transcript")
}

func TestQuitEndsWithoutScoringOrGeneration(t *testing.T) {
	for _, input := range []string{"quit", "QUIT", "Quit", "qUiT"} {
		t.Run(input, func(t *testing.T) {
			c := &counters{}
			tr := &fakeTranscript{}
			l := newTestLoop(t, Deps{
				Scorer:     fixedScorer(c, 0.5),
				Generator:  fixedGenerator(c, "hi"),
				Transcript: tr,
			})

			res := l.Handle(context.Background(), input)

			assert.True(t, res.Ended)
			assert.Nil(t, res.Turn)
			assert.NoError(t, res.Err())
			assert.Equal(t, StateEnded, l.State())
			assert.Zero(t, atomic.LoadInt32(&c.scores))
			assert.Zero(t, atomic.LoadInt32(&c.generates))
			assert.Zero(t, tr.trims)
			assert.Empty(t, tr.records)
		})
	}
}

func TestQuitMustMatchExactly(t *testing.T) {
	c := &counters{}
	l := newTestLoop(t, Deps{
		Scorer:     fixedScorer(c, 0),
		Generator:  fixedGenerator(c, "ok"),
		Transcript: &fakeTranscript{},
	})

	res := l.Handle(context.Background(), " quit")
	assert.False(t, res.Ended)
	require.NotNil(t, res.Turn)
	assert.Equal(t, " quit", res.Turn.UserText)
	assert.Equal(t, StateAwaitingInput, l.State())
}

func TestHandleAfterEnded(t *testing.T) {
	c := &counters{}
	l := newTestLoop(t, Deps{
		Scorer:     fixedScorer(c, 0),
		Generator:  fixedGenerator(c, "ok"),
		Transcript: &fakeTranscript{},
	})

	l.Handle(context.Background(), "quit")
	res := l.Handle(context.Background(), "hello again")

	assert.True(t, res.Ended)
	assert.ErrorIs(t, res.Err(), ErrEnded)
	assert.Zero(t, atomic.LoadInt32(&c.scores))
}

func TestCustomQuitCommand(t *testing.T) {
	c := &counters{}
	l := newTestLoop(t, Deps{
		Scorer:     fixedScorer(c, 0),
		Generator:  fixedGenerator(c, "ok"),
		Transcript: &fakeTranscript{},
	}, WithQuitCommand("bye"))

	assert.False(t, l.Handle(context.Background(), "quit").Ended)
	assert.True(t, l.Handle(context.Background(), "BYE").Ended)
}

func TestEmptyGenerationUsesFallback(t *testing.T) {
	for _, reply := range []string{"", "   \n\t"} {
		c := &counters{}
		tr := &fakeTranscript{}
		l := newTestLoop(t, Deps{
			Scorer:     fixedScorer(c, 0.1),
			Generator:  fixedGenerator(c, reply),
			Transcript: tr,
		}, WithFallback("Let's try that again."))

		res := l.Handle(context.Background(), "hmm")

		assert.NoError(t, res.Err(), "empty text is not an error")
		require.NotNil(t, res.Turn)
		assert.Equal(t, "Let's try that again.", res.Response())
		assert.Equal(t, []string{"User: hmm", "Bot: Let's try that again."}, tr.records)
		assert.Equal(t, 1, l.Window().Len())
	}
}

func TestGenerationErrorRecordsFallback(t *testing.T) {
	tr := &fakeTranscript{}
	l := newTestLoop(t, Deps{
		Scorer: sentiment.NewLexiconScorer(),
		Generator: GeneratorFunc(func(context.Context, string) (string, error) {
			return "", errors.New("service unavailable")
		}),
		Transcript: tr,
	})

	res := l.Handle(context.Background(), "hello")

	require.Len(t, res.Errors, 1)
	assert.True(t, types.IsKind(res.Errors[0], types.KindGeneration))
	assert.Contains(t, res.Err().Error(), "service unavailable")
	assert.Equal(t, DefaultFallback, res.Response())
	assert.Equal(t, []string{"User: hello", "Bot: " + DefaultFallback}, tr.records)
	assert.Equal(t, StateAwaitingInput, l.State())
}

func TestGenerationPanicRecovered(t *testing.T) {
	l := newTestLoop(t, Deps{
		Scorer: sentiment.NewLexiconScorer(),
		Generator: GeneratorFunc(func(context.Context, string) (string, error) {
			panic("boom")
		}),
		Transcript: &fakeTranscript{},
	})

	res := l.Handle(context.Background(), "hello")

	require.Len(t, res.Errors, 1)
	assert.True(t, types.IsKind(res.Errors[0], types.KindGeneration))
	assert.ErrorIs(t, res.Errors[0], ErrPanic)
	assert.Equal(t, DefaultFallback, res.Response())
	assert.Equal(t, StateAwaitingInput, l.State())
}

func TestScoringFailureMutatesNothing(t *testing.T) {
	scorers := map[string]sentiment.Scorer{
		"error": sentiment.ScorerFunc(func(context.Context, string) (float64, error) {
			return 0, errors.New("lexicon unavailable")
		}),
		"panic": sentiment.ScorerFunc(func(context.Context, string) (float64, error) {
			panic("bad input")
		}),
	}

	for name, scorer := range scorers {
		t.Run(name, func(t *testing.T) {
			c := &counters{}
			tr := &fakeTranscript{}
			w := session.NewWindow()
			l := newTestLoop(t, Deps{
				Scorer:     scorer,
				Generator:  fixedGenerator(c, "unused"),
				Transcript: tr,
			}, WithWindow(w))

			res := l.Handle(context.Background(), "hello")

			require.Len(t, res.Errors, 1)
			assert.True(t, types.IsKind(res.Errors[0], types.KindScoring))
			assert.Nil(t, res.Turn)
			assert.False(t, res.Ended)
			assert.Zero(t, atomic.LoadInt32(&c.generates))
			assert.Zero(t, tr.trims)
			assert.Empty(t, tr.records)
			assert.Zero(t, w.Len())
			assert.Equal(t, StateAwaitingInput, l.State())
		})
	}
}

func TestScoreIsClamped(t *testing.T) {
	c := &counters{}
	l := newTestLoop(t, Deps{
		Scorer:     fixedScorer(c, 7),
		Generator:  fixedGenerator(c, "ok"),
		Transcript: &fakeTranscript{},
	})

	res := l.Handle(context.Background(), "x")
	assert.Equal(t, 1.0, res.Sentiment)
	assert.Contains(t, res.Prompt, "The user's sentiment score is 1.00.")
}

func TestTranscriptFailuresStillAppendTurn(t *testing.T) {
	c := &counters{}
	tr := &fakeTranscript{
		trimErr:   errors.New("disk full"),
		appendErr: types.NewError(types.KindIO, "append transcript", errors.New("read-only")),
	}
	w := session.NewWindow()
	l := newTestLoop(t, Deps{
		Scorer:     fixedScorer(c, 0),
		Generator:  fixedGenerator(c, "still here"),
		Transcript: tr,
	}, WithWindow(w))

	res := l.Handle(context.Background(), "hello")

	require.Len(t, res.Errors, 2)
	for _, err := range res.Errors {
		assert.True(t, types.IsKind(err, types.KindIO))
	}
	assert.Equal(t, 1, tr.trims, "append is attempted after a failed trim")
	require.NotNil(t, res.Turn)
	assert.Equal(t, []session.Turn{session.NewTurn("hello", "still here")}, w.Recent(5))
}

func TestHistoryFeedsNextPrompt(t *testing.T) {
	c := &counters{}
	var seen []string
	l := newTestLoop(t, Deps{
		Scorer: fixedScorer(c, 0),
		Generator: GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
			seen = append(seen, prompt)
			return "reply", nil
		}),
		Transcript: &fakeTranscript{},
	})

	l.Handle(context.Background(), "first")
	l.Handle(context.Background(), "second")

	require.Len(t, seen, 2)
	assert.NotContains(t, seen[0], "You: first\nBot: reply")
	assert.Contains(t, seen[1], "You: first\nBot: reply\nYou: second\nBot:")
}

func TestEndToEndAna(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatbot_logs.txt")
	clock := func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	transcript := logging.NewTranscript(path, logging.WithClock(clock))

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w := session.NewWindow()
	var gotPrompt string
	l := newTestLoop(t, Deps{
		Scorer: sentiment.ScorerFunc(func(context.Context, string) (float64, error) { return 0.8, nil }),
		Generator: GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return "That's wonderful! What do you like to paint?", nil
		}),
		Transcript: transcript,
		Profile:    anaProfile(t),
		Knowledge:  knowledge.Default(),
	}, WithWindow(w), WithLogger(logger))

	before, err := transcript.Lines()
	require.NoError(t, err)

	res := l.Handle(context.Background(), "I love painting")
	require.NoError(t, res.Err())

	assert.True(t, strings.HasPrefix(gotPrompt, "This user is named Ana, aged 12."))
	assert.Contains(t, gotPrompt, "The user's sentiment score is 0.80.")
	assert.True(t, strings.HasSuffix(gotPrompt, "You: I love painting\nBot:"))
	assert.Equal(t, gotPrompt, res.Prompt)

	lines, err := transcript.Lines()
	require.NoError(t, err)
	require.Len(t, lines, len(before)+2)
	assert.Equal(t, "2024-05-01 09:30:00 - User: I love painting", lines[len(lines)-2])
	assert.Equal(t, "2024-05-01 09:30:00 - Bot: That's wonderful! What do you like to paint?", lines[len(lines)-1])

	recent := w.Recent(5)
	require.NotEmpty(t, recent)
	assert.Equal(t, session.NewTurn("I love painting", "That's wonderful! What do you like to paint?"), recent[len(recent)-1])
	assert.Contains(t, logBuf.String(), "turn recorded")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_input", StateAwaitingInput.String())
	assert.Equal(t, "scoring", StateScoring.String())
	assert.Equal(t, "composing", StateComposing.String())
	assert.Equal(t, "generating", StateGenerating.String())
	assert.Equal(t, "recording", StateRecording.String())
	assert.Equal(t, "ended", StateEnded.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestResultHelpers(t *testing.T) {
	var nilResult *Result
	assert.NoError(t, nilResult.Err())
	assert.Equal(t, "", nilResult.Response())

	r := &Result{Errors: []error{errors.New("a"), errors.New("b")}}
	assert.EqualError(t, r.Err(), "a\nb")
}
