// Package jsave guards an in-memory value behind a lock and persists it to
// a single file in a structured text encoding (JSON by default).
//
// It targets small datasets where a simple persistence contract matters more
// than I/O throughput: Save rewrites the whole file with the current value,
// holding the lock for the entire encode-and-write so a concurrent mutation
// can never interleave with the snapshot being written.
//
// Three containers cover the usual locking disciplines:
//   - [Mutex]: exclusive lock
//   - [RWMutex]: any number of readers or one writer
//   - [ReMutex]: exclusive lock the owning goroutine may re-acquire
//
// # Basic Usage
//
//	s, err := jsave.CreateMutex(map[string]int{}, "counts.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	g := s.Lock()
//	(*g.Value())["foo"] = 1
//	g.Unlock()
//
//	if err := s.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// later, or in another run of the program
//	s, err = jsave.OpenMutex[map[string]int]("counts.json")
//
// The closure helpers fold the guard lifetime and the save into one call:
//
//	err = s.Update(func(m *map[string]int) error {
//	    (*m)["foo"]++
//	    return nil
//	})
//
// # Failure Behavior
//
// A failed Save never touches the in-memory value; the caller may retry.
// The default save truncates and rewrites the file in place, so a failure
// mid-write can leave a truncated file on disk. [WithAtomicReplace] switches
// to write-temp-then-rename and removes that window.
//
// Constructors either return a fully initialized store or an error, never a
// partial store. Opening a file that does not parse returns a [*DecodeError].
package jsave
