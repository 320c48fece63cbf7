// Package shelf models the fixed-capacity display shelves of the pharmacy.
// A shelf keeps pharmaceutical items in insertion order; positions are
// 1-indexed and always contiguous from 1 to Len().
package shelf

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

// FullError reports an add against a shelf at capacity.
type FullError struct {
	Capacity int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("shelf full: capacity %d reached", e.Capacity)
}

// Unwrap lets callers match on the generic shelf-full kind.
func (e *FullError) Unwrap() error {
	return httpx.ErrShelfFull
}

var fold = cases.Fold()

// Shelf is a fixed-capacity positional container. It is not safe for
// concurrent use; callers serialize access (the Manager does).
type Shelf struct {
	items    []*medicaments.Medicament
	capacity int
	count    int
}

// New creates an empty shelf with the given capacity.
func New(capacity int) (*Shelf, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("shelf: capacity must be > 0, got %d", capacity)
	}
	return &Shelf{items: make([]*medicaments.Medicament, capacity), capacity: capacity}, nil
}

// Add appends the item at the first free position. The item is not inserted
// when the shelf is at capacity.
func (s *Shelf) Add(m *medicaments.Medicament) error {
	if s.count == s.capacity {
		return &FullError{Capacity: s.capacity}
	}
	s.items[s.count] = m
	s.count++
	return nil
}

// Get returns the item at the 1-indexed position, or nil when the position is
// outside [1, Len()].
func (s *Shelf) Get(position int) *medicaments.Medicament {
	if position < 1 || position > s.count {
		return nil
	}
	return s.items[position-1]
}

// FindPosition scans for the first item matching name and category,
// case-insensitively on both. It returns the 1-indexed position, or 0 when
// nothing matches.
func (s *Shelf) FindPosition(name, category string) int {
	wantName := fold.String(name)
	wantCategory := fold.String(category)
	for i := 0; i < s.count; i++ {
		if fold.String(s.items[i].Name) == wantName && fold.String(s.items[i].Category) == wantCategory {
			return i + 1
		}
	}
	return 0
}

// Remove takes the item at the 1-indexed position off the shelf, shifting
// every later item down one slot to keep positions contiguous. It returns nil
// without mutating for an invalid position.
func (s *Shelf) Remove(position int) *medicaments.Medicament {
	if position < 1 || position > s.count {
		return nil
	}
	index := position - 1
	removed := s.items[index]
	copy(s.items[index:s.count-1], s.items[index+1:s.count])
	s.items[s.count-1] = nil
	s.count--
	return removed
}

// RemoveByKey removes the first item matching name and category, or returns
// nil when absent.
func (s *Shelf) RemoveByKey(name, category string) *medicaments.Medicament {
	position := s.FindPosition(name, category)
	if position == 0 {
		return nil
	}
	return s.Remove(position)
}

// IsFull reports whether the shelf is at capacity.
func (s *Shelf) IsFull() bool {
	return s.count == s.capacity
}

// IsEmpty reports whether the shelf holds no items.
func (s *Shelf) IsEmpty() bool {
	return s.count == 0
}

// Len returns the number of items on the shelf.
func (s *Shelf) Len() int {
	return s.count
}

// Cap returns the fixed capacity set at creation.
func (s *Shelf) Cap() int {
	return s.capacity
}

// Items returns the occupied slots in positional order.
func (s *Shelf) Items() []*medicaments.Medicament {
	out := make([]*medicaments.Medicament, s.count)
	copy(out, s.items[:s.count])
	return out
}
