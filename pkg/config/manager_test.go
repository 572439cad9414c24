package config

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/entrhq/tutorbot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSection is a test implementation of the Section interface
type mockSection struct {
	id          string
	data        map[string]interface{}
	validateErr error
}

func (m *mockSection) ID() string                                { return m.id }
func (m *mockSection) Title() string                             { return m.id }
func (m *mockSection) Description() string                       { return "" }
func (m *mockSection) Data() map[string]interface{}              { return m.data }
func (m *mockSection) SetData(data map[string]interface{}) error { m.data = data; return nil }
func (m *mockSection) Validate() error                           { return m.validateErr }
func (m *mockSection) Reset()                                    { m.data = make(map[string]interface{}) }

// mockStore is a test implementation of the Store interface
type mockStore struct {
	sections map[string]map[string]interface{}
	loadErr  error
	saveErr  error
	saves    int
}

func newMockStore() *mockStore {
	return &mockStore{sections: make(map[string]map[string]interface{})}
}

func (m *mockStore) Load() error { return m.loadErr }

func (m *mockStore) Save() error {
	m.saves++
	return m.saveErr
}

func (m *mockStore) GetSection(id string) (map[string]interface{}, error) {
	if data, ok := m.sections[id]; ok {
		return data, nil
	}
	return make(map[string]interface{}), nil
}

func (m *mockStore) SetSection(id string, data map[string]interface{}) error {
	m.sections[id] = data
	return nil
}

func (m *mockStore) GetAll() (map[string]map[string]interface{}, error) { return m.sections, nil }

func (m *mockStore) SetAll(data map[string]map[string]interface{}) error {
	m.sections = data
	return nil
}

func TestManagerRegisterSection(t *testing.T) {
	store := newMockStore()
	manager := NewManager(store)
	assert.Same(t, store, manager.Store())
	assert.Empty(t, manager.GetSections())

	require.NoError(t, manager.RegisterSection(&mockSection{id: "first"}))
	require.NoError(t, manager.RegisterSection(&mockSection{id: "second"}))
	assert.Error(t, manager.RegisterSection(&mockSection{id: "first"}), "duplicate ID")

	sections := manager.GetSections()
	require.Len(t, sections, 2)
	assert.Equal(t, "first", sections[0].ID())
	assert.Equal(t, "second", sections[1].ID())

	_, ok := manager.GetSection("second")
	assert.True(t, ok)
	_, ok = manager.GetSection("missing")
	assert.False(t, ok)
}

func TestManagerLoadAll(t *testing.T) {
	t.Run("applies store data", func(t *testing.T) {
		store := newMockStore()
		store.sections["a"] = map[string]interface{}{"k": "v"}
		manager := NewManager(store)
		section := &mockSection{id: "a"}
		require.NoError(t, manager.RegisterSection(section))

		require.NoError(t, manager.LoadAll())
		assert.Equal(t, "v", section.data["k"])
	})

	t.Run("store failure is a configuration error", func(t *testing.T) {
		store := newMockStore()
		store.loadErr = errors.New("disk gone")

		err := NewManager(store).LoadAll()
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.KindConfiguration))
	})

	t.Run("invalid section is reported", func(t *testing.T) {
		manager := NewManager(newMockStore())
		require.NoError(t, manager.RegisterSection(&mockSection{id: "bad", validateErr: errors.New("nope")}))

		err := manager.LoadAll()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "section bad: nope")
	})
}

func TestManagerSaveAll(t *testing.T) {
	t.Run("writes every section", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "a", data: map[string]interface{}{"k1": "v1"}}))
		require.NoError(t, manager.RegisterSection(&mockSection{id: "b", data: map[string]interface{}{"k2": "v2"}}))

		require.NoError(t, manager.SaveAll())
		assert.Equal(t, "v1", store.sections["a"]["k1"])
		assert.Equal(t, "v2", store.sections["b"]["k2"])
		assert.Equal(t, 1, store.saves)
	})

	t.Run("validation failure writes nothing", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "ok", data: map[string]interface{}{"k": "v"}}))
		require.NoError(t, manager.RegisterSection(&mockSection{id: "bad", validateErr: errors.New("invalid")}))

		err := manager.SaveAll()
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.KindConfiguration))
		assert.Empty(t, store.sections)
		assert.Zero(t, store.saves)
	})

	t.Run("store save failure", func(t *testing.T) {
		store := newMockStore()
		store.saveErr = errors.New("read-only")
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "a"}))

		assert.Error(t, manager.SaveAll())
	})
}

func TestManagerResetAll(t *testing.T) {
	manager := NewManager(newMockStore())
	section := &mockSection{id: "a", data: map[string]interface{}{"k": "v"}}
	require.NoError(t, manager.RegisterSection(section))

	manager.ResetAll()
	assert.Empty(t, section.data)
}

func TestManagerConcurrentRegistration(t *testing.T) {
	manager := NewManager(newMockStore())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = manager.RegisterSection(&mockSection{id: fmt.Sprintf("section%d", i)})
			manager.GetSections()
		}(i)
	}
	wg.Wait()

	assert.Len(t, manager.GetSections(), 10)
}
