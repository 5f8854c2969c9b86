package jsave

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// ReMutex guards a value of type T behind a reentrant exclusive lock and
// persists it to a single backing file. The goroutine holding the lock may
// acquire it again without deadlocking; the underlying exclusive hold is
// released when every guard from that goroutine has been unlocked. In
// particular, Save can be called while holding a guard.
type ReMutex[T any] struct {
	store
	mu    sync.Mutex
	grant sync.Cond // signalled when owner drops the lock
	owner int64     // goroutine id of the holder, 0 when free
	depth int
	data  T
}

// OpenReMutex loads the value encoded in the file at path. It performs no
// write. Returns a *DecodeError if the contents are not a valid encoding
// of T, or an I/O error if the file cannot be read.
func OpenReMutex[T any](path string, opts ...Option) (*ReMutex[T], error) {
	cfg := newConfig(opts)
	data, err := loadFromPath[T](path, cfg)
	if err != nil {
		return nil, err
	}
	m := &ReMutex[T]{store: store{path: path, cfg: cfg}, data: data}
	m.grant.L = &m.mu
	return m, nil
}

// CreateReMutex constructs a store holding data and immediately writes it
// to path, truncating or creating the file. On write failure no store is
// returned.
func CreateReMutex[T any](data T, path string, opts ...Option) (*ReMutex[T], error) {
	m := &ReMutex[T]{store: store{path: path, cfg: newConfig(opts)}, data: data}
	m.grant.L = &m.mu
	if err := m.saveLocked(&m.data); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ReMutex[T]) lock() {
	id := goid()
	m.mu.Lock()
	if m.owner == id {
		m.depth++
		m.mu.Unlock()
		return
	}
	for m.owner != 0 {
		m.grant.Wait()
	}
	m.owner = id
	m.depth = 1
	m.mu.Unlock()
}

func (m *ReMutex[T]) tryLock() bool {
	id := goid()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner == id {
		m.depth++
		return true
	}
	if m.owner != 0 {
		return false
	}
	m.owner = id
	m.depth = 1
	return true
}

func (m *ReMutex[T]) unlock() {
	id := goid()
	m.mu.Lock()
	if m.owner != id {
		m.mu.Unlock()
		panic("jsave: unlock of ReMutex not held by current goroutine")
	}
	m.depth--
	if m.depth == 0 {
		m.owner = 0
		m.grant.Signal()
	}
	m.mu.Unlock()
}

// Lock blocks until exclusive access is available and returns a guard
// granting mutable access to the value. If the calling goroutine already
// holds the lock it succeeds immediately, incrementing the recursion depth.
func (m *ReMutex[T]) Lock() *ReMutexGuard[T] {
	m.lock()
	return &ReMutexGuard[T]{m: m}
}

// TryLock is the non-blocking Lock. It always succeeds for the goroutine
// already holding the lock.
func (m *ReMutex[T]) TryLock() (*ReMutexGuard[T], bool) {
	if !m.tryLock() {
		return nil, false
	}
	return &ReMutexGuard[T]{m: m}, true
}

// Save acquires the lock (reentrantly, so holding a guard does not
// deadlock), encodes the current value and rewrites the backing file. On
// failure the in-memory value is untouched and Save may be retried.
func (m *ReMutex[T]) Save() error {
	m.lock()
	defer m.unlock()
	return m.saveLocked(&m.data)
}

// TrySave is the non-blocking Save. Returns (false, nil) without writing
// if another goroutine holds the lock.
func (m *ReMutex[T]) TrySave() (bool, error) {
	if !m.tryLock() {
		return false, nil
	}
	defer m.unlock()
	return true, m.saveLocked(&m.data)
}

// With runs f with exclusive access to the value.
func (m *ReMutex[T]) With(f func(*T)) {
	m.lock()
	defer m.unlock()
	f(&m.data)
}

// Update runs f with exclusive access and, if f returns nil, persists the
// value before releasing the lock.
func (m *ReMutex[T]) Update(f func(*T) error) error {
	m.lock()
	defer m.unlock()
	if err := f(&m.data); err != nil {
		return err
	}
	return m.saveLocked(&m.data)
}

// ReMutexGuard grants mutable access to the guarded value until Unlock.
// Unlocking an inner guard keeps the lock held while an outer guard from
// the same goroutine is outstanding.
type ReMutexGuard[T any] struct {
	m        *ReMutex[T]
	released bool
}

// Value returns the guarded value. Panics if the guard was released or if
// the caller is not the goroutine holding the lock: the lock is owned per
// goroutine, so a guard handed to another goroutine grants nothing.
func (g *ReMutexGuard[T]) Value() *T {
	if g.released {
		panic("jsave: Value of released ReMutexGuard")
	}
	g.m.mu.Lock()
	owner := g.m.owner
	g.m.mu.Unlock()
	if owner != goid() {
		panic("jsave: Value of ReMutexGuard outside the owning goroutine")
	}
	return &g.m.data
}

// Unlock releases the guard, decrementing the recursion depth. The
// underlying lock is released when the depth reaches zero. Panics on
// double release.
func (g *ReMutexGuard[T]) Unlock() {
	if g.released {
		panic("jsave: Unlock of released ReMutexGuard")
	}
	// unlock panics if the caller is not the owning goroutine; the guard
	// stays usable by the owner in that case
	g.m.unlock()
	g.released = true
}

// goid returns the current goroutine's id by parsing the first line of its
// stack trace, "goroutine 123 [running]:". Real ids start at 1, so 0 is
// free to mean "nobody".
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	id, _ := strconv.ParseInt(string(s), 10, 64)
	return id
}
