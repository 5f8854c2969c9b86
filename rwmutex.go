package jsave

import "sync"

// RWMutex guards a value of type T behind a reader-writer lock and
// persists it to a single backing file. Any number of read guards may
// coexist; a write guard excludes everything else.
type RWMutex[T any] struct {
	store
	mu   sync.RWMutex
	data T
}

// OpenRWMutex loads the value encoded in the file at path. It performs no
// write. Returns a *DecodeError if the contents are not a valid encoding
// of T, or an I/O error if the file cannot be read.
func OpenRWMutex[T any](path string, opts ...Option) (*RWMutex[T], error) {
	cfg := newConfig(opts)
	data, err := loadFromPath[T](path, cfg)
	if err != nil {
		return nil, err
	}
	return &RWMutex[T]{store: store{path: path, cfg: cfg}, data: data}, nil
}

// CreateRWMutex constructs a store holding data and immediately writes it
// to path, truncating or creating the file. On write failure no store is
// returned.
func CreateRWMutex[T any](data T, path string, opts ...Option) (*RWMutex[T], error) {
	m := &RWMutex[T]{store: store{path: path, cfg: newConfig(opts)}, data: data}
	if err := m.saveLocked(&m.data); err != nil {
		return nil, err
	}
	return m, nil
}

// RLock blocks until shared access is available and returns a read guard.
func (m *RWMutex[T]) RLock() *ReadGuard[T] {
	m.mu.RLock()
	return &ReadGuard[T]{m: m}
}

// TryRLock is the non-blocking RLock.
func (m *RWMutex[T]) TryRLock() (*ReadGuard[T], bool) {
	if !m.mu.TryRLock() {
		return nil, false
	}
	return &ReadGuard[T]{m: m}, true
}

// Lock blocks until exclusive access is available and returns a guard
// granting mutable access to the value.
func (m *RWMutex[T]) Lock() *WriteGuard[T] {
	m.mu.Lock()
	return &WriteGuard[T]{m: m}
}

// TryLock is the non-blocking Lock.
func (m *RWMutex[T]) TryLock() (*WriteGuard[T], bool) {
	if !m.mu.TryLock() {
		return nil, false
	}
	return &WriteGuard[T]{m: m}, true
}

// Save takes the write slot, encodes the current value and rewrites the
// backing file. It only reads the value, but it takes the write slot so no
// writer can interleave with the snapshot. On failure the in-memory value
// is untouched and Save may be retried.
func (m *RWMutex[T]) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(&m.data)
}

// TrySave is the non-blocking Save. Returns (false, nil) without writing
// if the write slot is contended.
func (m *RWMutex[T]) TrySave() (bool, error) {
	if !m.mu.TryLock() {
		return false, nil
	}
	defer m.mu.Unlock()
	return true, m.saveLocked(&m.data)
}

// View runs f with shared access to the value. f must not mutate it.
func (m *RWMutex[T]) View(f func(*T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f(&m.data)
}

// With runs f with exclusive access to the value.
func (m *RWMutex[T]) With(f func(*T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(&m.data)
}

// Update runs f with exclusive access and, if f returns nil, persists the
// value before releasing the lock.
func (m *RWMutex[T]) Update(f func(*T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := f(&m.data); err != nil {
		return err
	}
	return m.saveLocked(&m.data)
}

// ReadGuard grants shared access to the guarded value until Unlock. The
// value must not be mutated through it.
type ReadGuard[T any] struct {
	m        *RWMutex[T]
	released bool
}

// Value returns the guarded value for inspection. Panics if the guard was
// released.
func (g *ReadGuard[T]) Value() *T {
	if g.released {
		panic("jsave: Value of released ReadGuard")
	}
	return &g.m.data
}

// Unlock releases the guard. Panics on double release.
func (g *ReadGuard[T]) Unlock() {
	if g.released {
		panic("jsave: Unlock of released ReadGuard")
	}
	g.released = true
	g.m.mu.RUnlock()
}

// WriteGuard grants mutable access to the guarded value until Unlock.
type WriteGuard[T any] struct {
	m        *RWMutex[T]
	released bool
}

// Value returns the guarded value. Panics if the guard was released.
func (g *WriteGuard[T]) Value() *T {
	if g.released {
		panic("jsave: Value of released WriteGuard")
	}
	return &g.m.data
}

// Unlock releases the guard. Panics on double release.
func (g *WriteGuard[T]) Unlock() {
	if g.released {
		panic("jsave: Unlock of released WriteGuard")
	}
	g.released = true
	g.m.mu.Unlock()
}
