// Package knowledge provides the static long-term knowledge base: topic
// passages that are included in every prompt in a fixed order. It defines the
// in-memory type, a YAML format that preserves insertion order, and a
// directory store of Markdown files with YAML front-matter.
package knowledge

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidFormat = errors.New("knowledge: invalid format")

// Entry is a single topic and its explanatory passage.
type Entry struct {
	Topic   string
	Passage string
}

// Base is an ordered topic to passage mapping. Iteration follows insertion
// order. Not safe for concurrent mutation; it is meant to be built once at
// startup and then only read.
type Base struct {
	entries []Entry
	index   map[string]int
}

// New creates a base from entries in order.
func New(entries ...Entry) *Base {
	b := &Base{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		b.Add(e.Topic, e.Passage)
	}
	return b
}

// Default returns the built-in general-knowledge passages.
func Default() *Base {
	return New(
		Entry{Topic: "math", Passage: "Mathematics involves problem-solving skills. Key areas include arithmetic, geometry, and algebra."},
		Entry{Topic: "science", Passage: "Science explores natural phenomena. It includes biology, chemistry, physics, and earth sciences."},
		Entry{Topic: "literature", Passage: "Literature is about stories, poetry, and plays. It helps develop imagination and empathy."},
		Entry{Topic: "history", Passage: "History teaches us about past events and important figures. It helps us understand the world today."},
		Entry{Topic: "geography", Passage: "Geography involves learning about places, cultures, and environments around the world."},
	)
}

// Add inserts a topic at the end. Re-adding an existing topic replaces its
// passage and keeps its original position.
func (b *Base) Add(topic, passage string) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[topic]; ok {
		b.entries[i].Passage = passage
		return
	}
	b.index[topic] = len(b.entries)
	b.entries = append(b.entries, Entry{Topic: topic, Passage: passage})
}

// Get returns the passage for topic.
func (b *Base) Get(topic string) (string, bool) {
	if b == nil {
		return "", false
	}
	i, ok := b.index[topic]
	if !ok {
		return "", false
	}
	return b.entries[i].Passage, true
}

// Entries returns a copy of the entries in insertion order.
func (b *Base) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Topics returns the topics in insertion order.
func (b *Base) Topics() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Topic
	}
	return out
}

// Passages returns the passages in insertion order.
func (b *Base) Passages() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Passage
	}
	return out
}

// Len returns the number of topics.
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// ParseYAML decodes a top-level YAML mapping of topic to passage, keeping the
// document order of the keys.
func ParseYAML(raw []byte) (*Base, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("knowledge: parse error: %w", err)
	}

	b := New()
	if len(doc.Content) == 0 {
		return b, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping of topic to passage at line %d", ErrInvalidFormat, root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: passage for %q at line %d is not text", ErrInvalidFormat, key.Value, value.Line)
		}
		b.Add(key.Value, value.Value)
	}
	return b, nil
}

// LoadYAML reads a YAML knowledge file.
func LoadYAML(path string) (*Base, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	return ParseYAML(raw)
}
