// Package config loads and saves tutorbot settings as named sections in a
// JSON file.
package config

import (
	"github.com/entrhq/tutorbot/pkg/types"
)

// Config is a loaded configuration with typed access to every section.
type Config struct {
	Manager    *Manager
	LLM        *LLMSection
	Transcript *TranscriptSection
	Session    *SessionSection
	Sentiment  *SentimentSection
}

// New registers the default sections on a manager backed by store. Nothing
// is read until Load is called.
func New(store Store) (*Config, error) {
	cfg := &Config{
		Manager:    NewManager(store),
		LLM:        NewLLMSection(),
		Transcript: NewTranscriptSection(),
		Session:    NewSessionSection(),
		Sentiment:  NewSentimentSection(),
	}

	for _, section := range []Section{cfg.LLM, cfg.Transcript, cfg.Session, cfg.Sentiment} {
		if err := cfg.Manager.RegisterSection(section); err != nil {
			return nil, types.NewError(types.KindConfiguration, "register config section", err)
		}
	}
	return cfg, nil
}

// Load opens the JSON config at path (DefaultPath when empty) and applies it
// to the default sections. A missing file yields defaults.
func Load(path string) (*Config, error) {
	store, err := NewFileStore(path)
	if err != nil {
		return nil, types.NewError(types.KindConfiguration, "open config", err)
	}

	cfg, err := New(store)
	if err != nil {
		return nil, err
	}
	if err := cfg.Manager.LoadAll(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save validates and writes every section.
func (c *Config) Save() error {
	return c.Manager.SaveAll()
}
