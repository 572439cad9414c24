// Package prompts composes the single text prompt sent to the generation
// model from the learner profile, the sentiment of the latest utterance, the
// knowledge base and the recent session turns.
package prompts

import (
	"fmt"
	"strings"

	"github.com/entrhq/tutorbot/pkg/knowledge"
	"github.com/entrhq/tutorbot/pkg/profile"
	"github.com/entrhq/tutorbot/pkg/session"
)

// HistoryTurns is how many of the most recent turns are rendered.
const HistoryTurns = 5

const (
	userLabel = "You:"
	botLabel  = "Bot:"
)

// PromptBuilder assembles prompts. The zero value renders an empty profile,
// a zero score, no knowledge and no history.
type PromptBuilder struct {
	profile   profile.Profile
	sentiment float64
	knowledge *knowledge.Base
	history   []session.Turn
}

// NewPromptBuilder creates an empty prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// WithProfile sets the learner profile.
func (pb *PromptBuilder) WithProfile(p profile.Profile) *PromptBuilder {
	pb.profile = p
	return pb
}

// WithSentiment sets the sentiment score of the new utterance.
func (pb *PromptBuilder) WithSentiment(score float64) *PromptBuilder {
	pb.sentiment = score
	return pb
}

// WithKnowledge sets the knowledge base.
func (pb *PromptBuilder) WithKnowledge(kb *knowledge.Base) *PromptBuilder {
	pb.knowledge = kb
	return pb
}

// WithHistory sets the session turns, oldest first. Only the last
// HistoryTurns are rendered.
func (pb *PromptBuilder) WithHistory(turns []session.Turn) *PromptBuilder {
	pb.history = turns
	return pb
}

// Build renders the prompt for userText. Sections are joined by '\n' in a
// fixed order: profile, sentiment, knowledge, history, the new utterance and
// the trailing bot cue. Empty sections still occupy their line.
func (pb *PromptBuilder) Build(userText string) string {
	var builder strings.Builder

	builder.WriteString(ProfileContext(pb.profile))
	builder.WriteString("\n")

	builder.WriteString(SentimentContext(pb.sentiment))
	builder.WriteString("\n")

	builder.WriteString(strings.Join(pb.knowledge.Passages(), " "))
	builder.WriteString("\n")

	builder.WriteString(HistoryContext(pb.history))
	builder.WriteString("\n")

	builder.WriteString(userLabel + " " + userText)
	builder.WriteString("\n")
	builder.WriteString(botLabel)

	return builder.String()
}

// Compose renders the prompt for userText from the window's most recent turns.
func Compose(p profile.Profile, sentiment float64, kb *knowledge.Base, window *session.Window, userText string) string {
	var history []session.Turn
	if window != nil {
		history = window.Recent(HistoryTurns)
	}
	return NewPromptBuilder().
		WithProfile(p).
		WithSentiment(sentiment).
		WithKnowledge(kb).
		WithHistory(history).
		Build(userText)
}

// ProfileContext describes the learner in one paragraph.
func ProfileContext(p profile.Profile) string {
	return fmt.Sprintf(
		"This user is named %s, aged %d. They prefer a %s communication style. "+
			"They are interested in %s. Their favorite subject is %s and their learning style is %s.",
		p.Name(), p.Age(), p.CommunicationStyle(),
		strings.Join(p.Interests(), ", "),
		p.FavoriteSubject(), p.LearningStyle(),
	)
}

// SentimentContext renders the score with two decimals, as given.
func SentimentContext(score float64) string {
	return fmt.Sprintf("The user's sentiment score is %.2f.", score)
}

// HistoryContext renders the last HistoryTurns turns as alternating labeled
// lines, oldest first.
func HistoryContext(turns []session.Turn) string {
	if len(turns) > HistoryTurns {
		turns = turns[len(turns)-HistoryTurns:]
	}
	lines := make([]string, 0, 2*len(turns))
	for _, turn := range turns {
		lines = append(lines, userLabel+" "+turn.UserText, botLabel+" "+turn.BotText)
	}
	return strings.Join(lines, "\n")
}
