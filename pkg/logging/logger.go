package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Logger provides structured diagnostic logging for tutorbot components.
// Records go to a session-specific file in the log directory, separate from
// the conversation transcript.
type Logger struct {
	*slog.Logger

	file      *os.File
	logPath   string
	closeOnce sync.Once
}

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once
)

// SessionID returns the identifier shared by every logger in this process.
func SessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// DefaultLogDirectory returns ~/.tutorbot/logs.
func DefaultLogDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tutorbot", "logs"), nil
}

// NewLogger creates a logger for a component writing JSON records to
// <dir>/<session-id>-tutorbot.log.
//
// If the directory or file cannot be opened it returns a fallback logger
// writing text records to stderr along with the error, so callers can warn
// and carry on.
func NewLogger(dir, component string, level slog.Level) (*Logger, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		err = fmt.Errorf("failed to create log directory: %w", err)
		return newFallbackLogger(component, level, err), err
	}

	logPath := filepath.Join(dir, fmt.Sprintf("%s-tutorbot.log", SessionID()))

	// Append mode: several components may share the session file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, level, err), err
	}

	return &Logger{
		Logger:  newSlog(file, component, level, true),
		file:    file,
		logPath: logPath,
	}, nil
}

// NewWriterLogger creates a logger writing text records to w. It never owns w.
func NewWriterLogger(w io.Writer, component string, level slog.Level) *Logger {
	return &Logger{Logger: newSlog(w, component, level, false)}
}

func newFallbackLogger(component string, level slog.Level, cause error) *Logger {
	l := NewWriterLogger(os.Stderr, component, level)
	l.Warn("failed to initialize file logging, falling back to stderr", "error", cause)
	return l
}

func newSlog(w io.Writer, component string, level slog.Level, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("component", component, "session_id", SessionID())
}

// LogPath returns the path to the log file, empty in fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
