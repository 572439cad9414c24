package logging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/tutorbot/pkg/types"
)

// DefaultTranscriptPath is the transcript file used when none is configured.
const DefaultTranscriptPath = "chatbot_logs.txt"

// recordTimeFormat is the timestamp layout at the start of every record.
const recordTimeFormat = "2006-01-02 15:04:05"

var recordEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Transcript is a size-bounded, line-oriented conversation log backed by a
// single file. Every record is exactly one line. Trim evicts the oldest lines
// once the file outgrows its budget.
//
// The file is opened and closed on every operation. Access is serialized
// within the process only; the file is not locked against other processes.
type Transcript struct {
	path     string
	maxBytes int64
	now      func() time.Time
	mu       sync.Mutex
}

// TranscriptOption configures a Transcript.
type TranscriptOption func(*Transcript)

// WithMaxBytes sets the byte budget enforced by Trim.
func WithMaxBytes(n int64) TranscriptOption {
	return func(t *Transcript) {
		t.maxBytes = n
	}
}

// WithClock sets the time source used to stamp records.
func WithClock(now func() time.Time) TranscriptOption {
	return func(t *Transcript) {
		t.now = now
	}
}

// NewTranscript creates a transcript at path. The file itself is created
// lazily by the first Append.
func NewTranscript(path string, opts ...TranscriptOption) *Transcript {
	if path == "" {
		path = DefaultTranscriptPath
	}
	t := &Transcript{
		path:     path,
		maxBytes: DefaultMaxBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.maxBytes < 0 {
		t.maxBytes = 0
	}
	return t
}

// Path returns the transcript file path.
func (t *Transcript) Path() string {
	return t.path
}

// MaxBytes returns the byte budget.
func (t *Transcript) MaxBytes() int64 {
	return t.maxBytes
}

// Trim rewrites the file without its oldest lines when it exceeds the budget.
// A missing file is not an error.
func (t *Transcript) Trim() (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	file, err := os.OpenFile(t.path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return types.NewError(types.KindIO, "open transcript", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = types.NewError(types.KindIO, "close transcript", cerr)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return types.NewError(types.KindIO, "read transcript", err)
	}

	kept := Trim(content, t.maxBytes)
	if len(kept) == len(content) {
		return nil
	}

	if _, err := file.WriteAt(kept, 0); err != nil {
		return types.NewError(types.KindIO, "rewrite transcript", err)
	}
	if err := file.Truncate(int64(len(kept))); err != nil {
		return types.NewError(types.KindIO, "truncate transcript", err)
	}
	return nil
}

// Append writes one timestamped line per record. Line breaks inside a record
// are escaped so a record never spans two lines.
func (t *Transcript) Append(records ...string) (err error) {
	if len(records) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return types.NewError(types.KindIO, "create transcript directory", err)
		}
	}

	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return types.NewError(types.KindIO, "open transcript", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = types.NewError(types.KindIO, "close transcript", cerr)
		}
	}()

	var buf bytes.Buffer
	stamp := t.now().Format(recordTimeFormat)
	for _, record := range records {
		fmt.Fprintf(&buf, "%s - %s\n", stamp, recordEscaper.Replace(record))
	}

	if _, err := file.Write(buf.Bytes()); err != nil {
		return types.NewError(types.KindIO, "append transcript", err)
	}
	return nil
}

// Lines returns the transcript lines without their line breaks, oldest first.
// A missing file yields no lines.
func (t *Transcript) Lines() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, types.NewError(types.KindIO, "open transcript", err)
	}
	defer file.Close()

	var lines []string
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, types.NewError(types.KindIO, "read transcript", err)
		}
	}
}

// Size returns the current file size in bytes, zero when the file is missing.
func (t *Transcript) Size() (int64, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, types.NewError(types.KindIO, "stat transcript", err)
	}
	return info.Size(), nil
}
