package knowledge

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// NoteMeta holds the YAML front-matter of a knowledge note.
type NoteMeta struct {
	Topic string `yaml:"topic"`
	Order int    `yaml:"order"`
}

// Note is a parsed knowledge file: front-matter plus the passage body.
type Note struct {
	Meta    NoteMeta
	Passage string
}

// ParseNote deserializes a Markdown file with YAML front-matter.
func ParseNote(raw []byte) (*Note, error) {
	s := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(s, frontMatterDelimiter) {
		return nil, fmt.Errorf("knowledge: missing front-matter delimiter")
	}
	rest := s[len(frontMatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontMatterDelimiter)
	if idx == -1 {
		return nil, fmt.Errorf("knowledge: unclosed front-matter block")
	}
	yamlBlock := rest[:idx]
	body := rest[idx+len("\n"+frontMatterDelimiter):]

	var meta NoteMeta
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return nil, fmt.Errorf("knowledge: front-matter parse error: %w", err)
	}
	if meta.Topic == "" {
		return nil, fmt.Errorf("knowledge: missing topic")
	}

	// Passages are concatenated on one line in prompts, so fold the body.
	return &Note{Meta: meta, Passage: strings.Join(strings.Fields(body), " ")}, nil
}

// SerializeNote renders a note back to its on-disk representation.
func SerializeNote(n *Note) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(&n.Meta)
	if err != nil {
		return nil, fmt.Errorf("knowledge: serialize error: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(yamlBytes)
	sb.WriteString(frontMatterDelimiter + "\n\n")
	sb.WriteString(n.Passage)
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}
