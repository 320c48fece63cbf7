package shelf

import (
	"fmt"
	"sort"
	"sync"

	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

// Manager keeps the named shelves of a store. Shelves live in process memory;
// the manager serializes access so HTTP handlers can share it. Live *Shelf
// values never leave the lock: mutations go through With and reads get
// point-in-time View snapshots.
type Manager struct {
	mu      sync.Mutex
	shelves map[string]*Shelf
}

// NewManager builds an empty Manager.
func NewManager() *Manager {
	return &Manager{shelves: make(map[string]*Shelf)}
}

// View is a point-in-time snapshot of a shelf, safe to use after the manager
// lock is released.
type View struct {
	Name     string                    `json:"name"`
	Capacity int                       `json:"capacity"`
	Count    int                       `json:"count"`
	Full     bool                      `json:"full"`
	Empty    bool                      `json:"empty"`
	Items    []*medicaments.Medicament `json:"items"`
}

// snapshot must be called with the manager lock held.
func snapshot(name string, s *Shelf) View {
	return View{
		Name:     name,
		Capacity: s.Cap(),
		Count:    s.Len(),
		Full:     s.IsFull(),
		Empty:    s.IsEmpty(),
		Items:    s.Items(),
	}
}

// Create registers a new shelf under name and returns its initial snapshot.
func (m *Manager) Create(name string, capacity int) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.shelves[name]; exists {
		return View{}, fmt.Errorf("shelf %q: %w", name, httpx.ErrDuplicate)
	}
	s, err := New(capacity)
	if err != nil {
		return View{}, err
	}
	m.shelves[name] = s
	return snapshot(name, s), nil
}

// View returns a snapshot of the named shelf.
func (m *Manager) View(name string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shelves[name]
	if !ok {
		return View{}, fmt.Errorf("shelf %q: %w", name, httpx.ErrNotFound)
	}
	return snapshot(name, s), nil
}

// Views lists snapshots of every shelf in name order.
func (m *Manager) Views() []View {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.shelves))
	for name := range m.shelves {
		names = append(names, name)
	}
	sort.Strings(names)
	views := make([]View, 0, len(names))
	for _, name := range names {
		views = append(views, snapshot(name, m.shelves[name]))
	}
	return views
}

// Delete removes the named shelf and everything on it.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shelves[name]; !ok {
		return fmt.Errorf("shelf %q: %w", name, httpx.ErrNotFound)
	}
	delete(m.shelves, name)
	return nil
}

// Names lists registered shelf names in stable order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.shelves))
	for name := range m.shelves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With runs fn while holding the manager lock, so multi-step shelf mutations
// stay consistent under concurrent handlers.
func (m *Manager) With(name string, fn func(*Shelf) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shelves[name]
	if !ok {
		return fmt.Errorf("shelf %q: %w", name, httpx.ErrNotFound)
	}
	return fn(s)
}
