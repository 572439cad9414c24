package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/entrhq/tutorbot/pkg/logging"
	"github.com/entrhq/tutorbot/pkg/types"
)

const (
	SectionIDTranscript = "transcript"
	SectionIDSession    = "session"
	SectionIDSentiment  = "sentiment"
)

// Scorer names accepted by the sentiment section.
const (
	ScorerLexicon = "lexicon"
	ScorerModel   = "model"
)

// TranscriptSection configures the bounded conversation log.
type TranscriptSection struct {
	Path     string
	MaxBytes int64
	mu       sync.RWMutex
}

func NewTranscriptSection() *TranscriptSection {
	return &TranscriptSection{
		Path:     logging.DefaultTranscriptPath,
		MaxBytes: logging.DefaultMaxBytes,
	}
}

func (s *TranscriptSection) ID() string    { return SectionIDTranscript }
func (s *TranscriptSection) Title() string { return "Transcript" }
func (s *TranscriptSection) Description() string {
	return "Where the conversation log is written and how large it may grow before the oldest lines are dropped."
}

func (s *TranscriptSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"path":      s.Path,
		"max_bytes": s.MaxBytes,
	}
}

func (s *TranscriptSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if path, ok := data["path"].(string); ok && path != "" {
		s.Path = path
	}
	if raw, ok := data["max_bytes"]; ok {
		n, err := toInt64(raw)
		if err != nil {
			return fmt.Errorf("max_bytes: %w", err)
		}
		s.MaxBytes = n
	}
	return nil
}

func (s *TranscriptSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("transcript path is required")
	}
	if s.MaxBytes <= 0 {
		return fmt.Errorf("max_bytes must be positive, got %d", s.MaxBytes)
	}
	return nil
}

func (s *TranscriptSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Path = logging.DefaultTranscriptPath
	s.MaxBytes = logging.DefaultMaxBytes
}

// SessionSection configures the in-memory session and loop behavior.
type SessionSection struct {
	// Capacity bounds stored turns; 0 keeps every turn.
	Capacity    int
	Fallback    string
	QuitCommand string
	mu          sync.RWMutex
}

func NewSessionSection() *SessionSection {
	return &SessionSection{QuitCommand: types.DefaultQuitCommand}
}

func (s *SessionSection) ID() string    { return SectionIDSession }
func (s *SessionSection) Title() string { return "Session" }
func (s *SessionSection) Description() string {
	return "Session window capacity, the reply used when generation fails, and the command that ends a session."
}

func (s *SessionSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"capacity":     s.Capacity,
		"fallback":     s.Fallback,
		"quit_command": s.QuitCommand,
	}
}

func (s *SessionSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := data["capacity"]; ok {
		n, err := toInt64(raw)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		s.Capacity = int(n)
	}
	if fallback, ok := data["fallback"].(string); ok {
		s.Fallback = fallback
	}
	if quit, ok := data["quit_command"].(string); ok && quit != "" {
		s.QuitCommand = quit
	}
	return nil
}

func (s *SessionSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative, got %d", s.Capacity)
	}
	if strings.TrimSpace(s.QuitCommand) != s.QuitCommand || s.QuitCommand == "" {
		return fmt.Errorf("quit_command must be a non-empty word without surrounding spaces, got %q", s.QuitCommand)
	}
	return nil
}

func (s *SessionSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Capacity = 0
	s.Fallback = ""
	s.QuitCommand = types.DefaultQuitCommand
}

// SentimentSection selects the sentiment scorer.
type SentimentSection struct {
	Scorer string
	// Model is used by the model scorer; empty means the LLM section's model.
	Model string
	mu    sync.RWMutex
}

func NewSentimentSection() *SentimentSection {
	return &SentimentSection{Scorer: ScorerLexicon}
}

func (s *SentimentSection) ID() string    { return SectionIDSentiment }
func (s *SentimentSection) Title() string { return "Sentiment" }
func (s *SentimentSection) Description() string {
	return "Scorer used to rate each message: the offline lexicon or an LLM."
}

func (s *SentimentSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"scorer": s.Scorer,
		"model":  s.Model,
	}
}

func (s *SentimentSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if scorer, ok := data["scorer"].(string); ok && scorer != "" {
		s.Scorer = strings.ToLower(scorer)
	}
	if model, ok := data["model"].(string); ok {
		s.Model = model
	}
	return nil
}

func (s *SentimentSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.Scorer {
	case ScorerLexicon, ScorerModel:
		return nil
	default:
		return fmt.Errorf("unknown scorer %q (want %q or %q)", s.Scorer, ScorerLexicon, ScorerModel)
	}
}

func (s *SentimentSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scorer = ScorerLexicon
	s.Model = ""
}

// toInt64 accepts the numeric shapes a JSON decode or a caller may produce.
func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
