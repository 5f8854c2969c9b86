package jsave

import (
	"path/filepath"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/EAimTY/jsave/assert"
	"github.com/EAimTY/jsave/require"
)

func TestRWReadersCoexistWritersExcluded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.json")
	s, err := CreateRWMutex(1, path)
	require.NoError(t, err)

	g1 := s.RLock()
	g2, ok := s.TryRLock()
	require.True(t, ok, "second reader must be admitted")

	_, ok = s.TryLock()
	assert.False(t, ok, "writer must wait for readers")

	// Save only reads, but it must take the write slot
	saved, err := s.TrySave()
	assert.False(t, saved)
	assert.NoError(t, err)

	g1.Unlock()
	g2.Unlock()

	w, ok := s.TryLock()
	require.True(t, ok)
	_, ok = s.TryRLock()
	assert.False(t, ok, "reader must wait for the writer")
	w.Unlock()

	saved, err = s.TrySave()
	assert.True(t, saved)
	assert.NoError(t, err)
}

func TestRWViewUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.json")
	s, err := CreateRWMutex(map[string]int{}, path)
	require.NoError(t, err)

	err = s.Update(func(m *map[string]int) error {
		(*m)["foo"] = 114514
		return nil
	})
	require.NoError(t, err)

	s.View(func(m *map[string]int) {
		assert.Equal(t, 114514, (*m)["foo"])
	})

	s2, err := OpenRWMutex[map[string]int](path)
	require.NoError(t, err)
	s2.View(func(m *map[string]int) {
		assert.Equal(t, map[string]int{"foo": 114514}, *m)
	})
}

func TestRWConcurrentReadersAndWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.json")
	s, err := CreateRWMutex(0, path)
	require.NoError(t, err)

	var eg errgroup.Group
	for i := 0; i < 4; i++ {
		eg.Go(func() error {
			for j := 0; j < 500; j++ {
				s.With(func(n *int) { *n++ })
			}
			return nil
		})
	}
	for i := 0; i < 4; i++ {
		eg.Go(func() error {
			last := 0
			for j := 0; j < 500; j++ {
				s.View(func(n *int) {
					if *n < last {
						t.Errorf("counter went backwards: %d -> %d", last, *n)
					}
					last = *n
				})
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	s.View(func(n *int) {
		assert.Equal(t, 2000, *n)
	})
}

func TestRWGuardMisusePanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.json")
	s, err := CreateRWMutex(1, path)
	require.NoError(t, err)

	r := s.RLock()
	r.Unlock()
	assert.Panics(t, func() { r.Unlock() })
	assert.Panics(t, func() { _ = r.Value() })

	w := s.Lock()
	w.Unlock()
	assert.Panics(t, func() { w.Unlock() })
	assert.Panics(t, func() { _ = w.Value() })
}
