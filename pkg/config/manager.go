package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/tutorbot/pkg/types"
)

// Section is one named group of settings persisted under its ID.
type Section interface {
	ID() string
	Title() string
	Description() string

	// Data returns the section as a JSON-compatible map.
	Data() map[string]interface{}

	// SetData updates the section from a map. Unknown keys are ignored.
	SetData(data map[string]interface{}) error

	Validate() error
	Reset()
}

// Manager owns a set of registered sections and moves them to and from a
// Store.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string
	mu       sync.RWMutex
}

// NewManager creates a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("config section %q already registered", id)
	}
	m.sections[id] = section
	m.order = append(m.order, id)
	return nil
}

// GetSection looks up a registered section by ID.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	section, ok := m.sections[id]
	return section, ok
}

// GetSections returns the registered sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sections := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		sections = append(sections, m.sections[id])
	}
	return sections
}

// LoadAll reloads the store and applies its data to every section, then
// validates each one.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return types.NewError(types.KindConfiguration, "load config", err)
	}

	var errs []error
	for _, section := range m.GetSections() {
		data, err := m.store.GetSection(section.ID())
		if err != nil {
			errs = append(errs, fmt.Errorf("section %s: %w", section.ID(), err))
			continue
		}
		if err := section.SetData(data); err != nil {
			errs = append(errs, fmt.Errorf("section %s: %w", section.ID(), err))
			continue
		}
		if err := section.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("section %s: %w", section.ID(), err))
		}
	}
	if len(errs) > 0 {
		return types.NewError(types.KindConfiguration, "load config", errors.Join(errs...))
	}
	return nil
}

// SaveAll validates every section and, if all pass, writes them to the store.
func (m *Manager) SaveAll() error {
	sections := m.GetSections()
	for _, section := range sections {
		if err := section.Validate(); err != nil {
			return types.NewError(types.KindConfiguration, "save config",
				fmt.Errorf("section %s: %w", section.ID(), err))
		}
	}

	for _, section := range sections {
		if err := m.store.SetSection(section.ID(), section.Data()); err != nil {
			return types.NewError(types.KindConfiguration, "save config", err)
		}
	}

	if err := m.store.Save(); err != nil {
		return types.NewError(types.KindConfiguration, "save config", err)
	}
	return nil
}

// ResetAll restores every section to its defaults without saving.
func (m *Manager) ResetAll() {
	for _, section := range m.GetSections() {
		section.Reset()
	}
}

// Store returns the backing store.
func (m *Manager) Store() Store {
	return m.store
}
