package jsave

import "sync"

// Mutex guards a value of type T behind an exclusive lock and persists it
// to a single backing file.
type Mutex[T any] struct {
	store
	mu   sync.Mutex
	data T
}

// OpenMutex loads the value encoded in the file at path. It performs no
// write. Returns a *DecodeError if the contents are not a valid encoding
// of T, or an I/O error if the file cannot be read.
func OpenMutex[T any](path string, opts ...Option) (*Mutex[T], error) {
	cfg := newConfig(opts)
	data, err := loadFromPath[T](path, cfg)
	if err != nil {
		return nil, err
	}
	return &Mutex[T]{store: store{path: path, cfg: cfg}, data: data}, nil
}

// CreateMutex constructs a store holding data and immediately writes it to
// path, truncating or creating the file. On write failure no store is
// returned.
func CreateMutex[T any](data T, path string, opts ...Option) (*Mutex[T], error) {
	m := &Mutex[T]{store: store{path: path, cfg: newConfig(opts)}, data: data}
	if err := m.saveLocked(&m.data); err != nil {
		return nil, err
	}
	return m, nil
}

// Lock blocks until exclusive access is available and returns a guard
// granting mutable access to the value.
func (m *Mutex[T]) Lock() *MutexGuard[T] {
	m.mu.Lock()
	return &MutexGuard[T]{m: m}
}

// TryLock is the non-blocking Lock. Returns (nil, false) if the lock is
// held by someone else.
func (m *Mutex[T]) TryLock() (*MutexGuard[T], bool) {
	if !m.mu.TryLock() {
		return nil, false
	}
	return &MutexGuard[T]{m: m}, true
}

// Save acquires exclusive access, encodes the current value and rewrites
// the backing file, releasing the lock when done. The lock is held for the
// whole encode-and-write, so the persisted bytes are a consistent snapshot.
// On failure the in-memory value is untouched and Save may be retried.
func (m *Mutex[T]) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(&m.data)
}

// TrySave is the non-blocking Save. Returns (false, nil) without writing
// if the lock is contended.
func (m *Mutex[T]) TrySave() (bool, error) {
	if !m.mu.TryLock() {
		return false, nil
	}
	defer m.mu.Unlock()
	return true, m.saveLocked(&m.data)
}

// With runs f with exclusive access to the value.
func (m *Mutex[T]) With(f func(*T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(&m.data)
}

// Update runs f with exclusive access and, if f returns nil, persists the
// value before releasing the lock.
func (m *Mutex[T]) Update(f func(*T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := f(&m.data); err != nil {
		return err
	}
	return m.saveLocked(&m.data)
}

// MutexGuard grants mutable access to the guarded value until Unlock.
type MutexGuard[T any] struct {
	m        *Mutex[T]
	released bool
}

// Value returns the guarded value. Panics if the guard was released.
func (g *MutexGuard[T]) Value() *T {
	if g.released {
		panic("jsave: Value of released MutexGuard")
	}
	return &g.m.data
}

// Unlock releases the guard. Panics on double release, like sync.Mutex.
func (g *MutexGuard[T]) Unlock() {
	if g.released {
		panic("jsave: Unlock of released MutexGuard")
	}
	g.released = true
	g.m.mu.Unlock()
}
