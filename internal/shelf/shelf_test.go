package shelf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

func med(name, category string) *medicaments.Medicament {
	return &medicaments.Medicament{Name: name, Category: category, Kind: medicaments.KindChemical, Price: 10, Stock: 1}
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	_, err = New(-3)
	require.Error(t, err)
}

func TestAddUntilFull(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	require.NoError(t, s.Add(med("Doliprane", "analgesic")))
	require.NoError(t, s.Add(med("Arnica", "topical")))
	require.True(t, s.IsFull())

	err = s.Add(med("Smecta", "digestive"))
	require.ErrorIs(t, err, httpx.ErrShelfFull)

	var full *FullError
	require.ErrorAs(t, err, &full)
	require.Equal(t, 2, full.Capacity)
	require.Equal(t, 2, s.Len())
}

func TestGetIsOneIndexed(t *testing.T) {
	s, _ := New(3)
	require.NoError(t, s.Add(med("Doliprane", "analgesic")))

	require.Nil(t, s.Get(0))
	require.Nil(t, s.Get(2))
	require.NotNil(t, s.Get(1))
	require.Equal(t, "Doliprane", s.Get(1).Name)
}

func TestFindPositionCaseInsensitive(t *testing.T) {
	s, _ := New(3)
	require.NoError(t, s.Add(med("Doliprane", "Analgesic")))
	require.NoError(t, s.Add(med("Arnica", "topical")))

	require.Equal(t, 1, s.FindPosition("DOLIPRANE", "analgesic"))
	require.Equal(t, 2, s.FindPosition("arnica", "TOPICAL"))
	require.Equal(t, 0, s.FindPosition("Doliprane", "topical"))
	require.Equal(t, 0, s.FindPosition("Ghost", "analgesic"))
}

func TestRemoveShiftsLaterItems(t *testing.T) {
	s, _ := New(3)
	require.NoError(t, s.Add(med("A", "x")))
	require.NoError(t, s.Add(med("B", "x")))
	require.NoError(t, s.Add(med("C", "x")))

	removed := s.Remove(1)
	require.NotNil(t, removed)
	require.Equal(t, "A", removed.Name)

	require.Equal(t, 2, s.Len())
	require.Equal(t, "B", s.Get(1).Name)
	require.Equal(t, "C", s.Get(2).Name)
	require.Nil(t, s.Get(3))

	// Freed slot is usable again.
	require.NoError(t, s.Add(med("D", "x")))
	require.Equal(t, "D", s.Get(3).Name)
}

func TestRemoveInvalidPosition(t *testing.T) {
	s, _ := New(2)
	require.NoError(t, s.Add(med("A", "x")))

	require.Nil(t, s.Remove(0))
	require.Nil(t, s.Remove(2))
	require.Equal(t, 1, s.Len())
}

func TestRemoveByKey(t *testing.T) {
	s, _ := New(3)
	require.NoError(t, s.Add(med("Doliprane", "analgesic")))
	require.NoError(t, s.Add(med("Arnica", "topical")))

	removed := s.RemoveByKey("doliprane", "ANALGESIC")
	require.NotNil(t, removed)
	require.Equal(t, "Doliprane", removed.Name)
	require.Equal(t, 1, s.Len())
	require.Equal(t, "Arnica", s.Get(1).Name)

	require.Nil(t, s.RemoveByKey("Doliprane", "analgesic"))
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	created, err := m.Create("front", 5)
	require.NoError(t, err)
	require.Equal(t, "front", created.Name)
	require.Equal(t, 5, created.Capacity)
	require.True(t, created.Empty)

	_, err = m.Create("back", 10)
	require.NoError(t, err)

	_, err = m.Create("front", 3)
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	require.Equal(t, []string{"back", "front"}, m.Names())

	view, err := m.View("front")
	require.NoError(t, err)
	require.Equal(t, 5, view.Capacity)
	require.Zero(t, view.Count)

	views := m.Views()
	require.Len(t, views, 2)
	require.Equal(t, "back", views[0].Name)
	require.Equal(t, "front", views[1].Name)

	require.NoError(t, m.Delete("front"))
	_, err = m.View("front")
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.ErrorIs(t, m.Delete("front"), httpx.ErrNotFound)
}

func TestManagerConcurrentReadsAndWrites(t *testing.T) {
	m := NewManager()
	_, err := m.Create("front", 4)
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			_ = m.With("front", func(s *Shelf) error {
				if s.IsFull() {
					s.Remove(1)
					return nil
				}
				return s.Add(med("Doliprane", "analgesic"))
			})
		}
	}()

	for i := 0; i < 1000; i++ {
		view, err := m.View("front")
		require.NoError(t, err)
		require.LessOrEqual(t, view.Count, view.Capacity)
		require.Len(t, view.Items, view.Count)
		require.NotEmpty(t, m.Views())
	}
	close(done)
	wg.Wait()
}

func TestManagerWith(t *testing.T) {
	m := NewManager()
	_, err := m.Create("front", 2)
	require.NoError(t, err)

	err = m.With("front", func(s *Shelf) error {
		return s.Add(med("Doliprane", "analgesic"))
	})
	require.NoError(t, err)

	err = m.With("missing", func(s *Shelf) error { return nil })
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
