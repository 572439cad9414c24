package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, "test-component", slog.LevelDebug)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.LogPath() == "" {
		t.Fatal("Expected non-empty log path")
	}
	if filepath.Dir(logger.LogPath()) != dir {
		t.Errorf("Expected log in %s, got %s", dir, logger.LogPath())
	}
	if !strings.Contains(filepath.Base(logger.LogPath()), SessionID()) {
		t.Errorf("Expected log file name to carry session ID %s, got %s", SessionID(), logger.LogPath())
	}

	logger.Info("turn recorded", "turns", 3)
	logger.Debug("prompt composed")

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	expectedPatterns := []string{
		`"msg":"turn recorded"`,
		`"turns":3`,
		`"component":"test-component"`,
		`"msg":"prompt composed"`,
	}
	for _, pattern := range expectedPatterns {
		if !strings.Contains(string(content), pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, content)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, "test", slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Info record should be filtered at warn level:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Warn record missing:\n%s", buf.String())
	}
}

func TestNewLoggerFallback(t *testing.T) {
	// A regular file where the directory should be forces the fallback path.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	logger, err := NewLogger(filepath.Join(blocker, "logs"), "test", slog.LevelInfo)
	if err == nil {
		t.Fatal("Expected an error when the log directory cannot be created")
	}
	if logger == nil {
		t.Fatal("Expected a fallback logger")
	}
	if logger.LogPath() != "" {
		t.Errorf("Fallback logger should have no log path, got %q", logger.LogPath())
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close on fallback logger failed: %v", err)
	}
}

func TestLoggerCloseTwice(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), "test", slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestSessionIDStable(t *testing.T) {
	first := SessionID()
	if first == "" {
		t.Fatal("Expected non-empty session ID")
	}
	if SessionID() != first {
		t.Error("Session ID changed between calls")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
