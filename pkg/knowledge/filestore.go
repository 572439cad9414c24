package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

var ErrNotDirectory = errors.New("knowledge: not a directory")

// DefaultPattern selects Markdown notes at any depth.
const DefaultPattern = "**.md"

// FileStore loads knowledge notes from a directory tree. Each note is a
// Markdown file with YAML front-matter naming its topic and sort order.
type FileStore struct {
	dir     string
	pattern string
	matcher glob.Glob
	logger  *slog.Logger
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithPattern restricts loading to paths (relative, slash separated) matching
// the glob pattern.
func WithPattern(pattern string) FileStoreOption {
	return func(fs *FileStore) {
		fs.pattern = pattern
	}
}

// WithLogger sets the logger used to report skipped files.
func WithLogger(logger *slog.Logger) FileStoreOption {
	return func(fs *FileStore) {
		fs.logger = logger
	}
}

func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	store := &FileStore{
		dir:     dir,
		pattern: DefaultPattern,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(store)
	}

	matcher, err := glob.Compile(store.pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("knowledge: invalid pattern %q: %w", store.pattern, err)
	}
	store.matcher = matcher

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("knowledge: open directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return store, nil
}

type located struct {
	rel  string
	note *Note
}

// List returns every valid note matching the pattern, ordered by their
// front-matter order and then by relative path. Corrupt or unreadable files
// are skipped.
func (s *FileStore) List(ctx context.Context) ([]*Note, error) {
	var found []located
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !s.matcher.Match(rel) {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("knowledge: skipping unreadable note", "path", path, "err", err)
			return nil
		}
		note, err := ParseNote(raw)
		if err != nil {
			s.logger.Debug("knowledge: skipping corrupt note", "path", path, "err", err)
			return nil
		}
		found = append(found, located{rel: rel, note: note})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge: list %s: %w", s.dir, err)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].note.Meta.Order != found[j].note.Meta.Order {
			return found[i].note.Meta.Order < found[j].note.Meta.Order
		}
		return found[i].rel < found[j].rel
	})

	notes := make([]*Note, len(found))
	for i, f := range found {
		notes[i] = f.note
	}
	return notes, nil
}

// Load builds a Base from the notes in List order.
func (s *FileStore) Load(ctx context.Context) (*Base, error) {
	notes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	b := New()
	for _, n := range notes {
		b.Add(n.Meta.Topic, n.Passage)
	}
	return b, nil
}

// Load reads a knowledge base from path: a directory of notes or a single
// YAML file.
func Load(ctx context.Context, path string, opts ...FileStoreOption) (*Base, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return LoadYAML(path)
	}
	store, err := NewFileStore(path, opts...)
	if err != nil {
		return nil, err
	}
	return store.Load(ctx)
}
