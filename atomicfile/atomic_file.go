package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ErrDiscarded is returned by Close after Discard.
var ErrDiscarded = errors.New("atomicfile: discarded")

// ensure we implement desired interface
var _ io.WriteCloser = &Writer{}

// Writer writes a file so that the destination ends up holding either its
// previous content or the complete new content, never a truncated mix. The
// data goes to a temporary file in the same directory, which Close syncs
// and renames over the destination. Any failure removes the temporary file
// and leaves the destination untouched.
type Writer struct {
	dst string
	dir string
	tmp *os.File
	err error
}

// New creates a Writer that will replace the file at path on Close.
func New(path string) (*Writer, error) {
	dir, name := filepath.Split(path)
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	tmp, err := os.CreateTemp(dir, name+".tmp*")
	if err != nil {
		return nil, err
	}
	return &Writer{dst: path, dir: dir, tmp: tmp}, nil
}

// Write appends data to the pending file. After the first error all
// subsequent writes fail with it.
func (w *Writer) Write(d []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.tmp.Write(d)
	if err != nil && w.err == nil {
		w.err = err
	}
	return n, err
}

// Close syncs the pending file and renames it over the destination. If
// anything went wrong, in Write or here, the temporary file is removed and
// the destination stays as it was. Calling Close again is a no-op
// returning the first error.
func (w *Writer) Close() error {
	if w.tmp == nil {
		return w.err
	}
	tmp := w.tmp
	w.tmp = nil
	tmpPath := tmp.Name()

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errSync := tmp.Sync()
	errClose := tmp.Close()
	if w.err == nil {
		w.err = errSync
	}
	if w.err == nil {
		w.err = errClose
	}
	if w.err == nil {
		w.err = os.Rename(tmpPath, w.dst)
	}
	if w.err != nil {
		_ = os.Remove(tmpPath)
		return w.err
	}

	// sync the directory so the rename itself survives a crash;
	// best effort, errors here are ignored
	if d, err := os.Open(w.dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Discard abandons the write and removes the temporary file. The
// destination is not touched. Discard after Close is a no-op, so it can be
// deferred unconditionally to get cleanup on panic or early return.
func (w *Writer) Discard() {
	if w.tmp == nil {
		return
	}
	tmp := w.tmp
	w.tmp = nil
	tmpPath := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(tmpPath)
	if w.err == nil {
		w.err = ErrDiscarded
	}
}

// WriteFile atomically replaces the file at path with data.
func WriteFile(path string, data []byte) error {
	w, err := New(path)
	if err != nil {
		return err
	}
	defer w.Discard()
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Close()
}
