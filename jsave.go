package jsave

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/EAimTY/jsave/atomicfile"
)

// DecodeError is returned by the Open constructors when the backing file
// exists and is readable but its contents are not a valid encoding of T.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("jsave: decode %s: %s", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Option configures a store at construction time.
type Option func(*config)

type config struct {
	codec         Codec
	pretty        bool
	useNumber     bool
	atomicReplace bool
	fileLock      bool
}

// WithCodec replaces the default JSON codec. When a codec is supplied,
// WithPretty and WithNumber have no effect; configure the codec directly.
func WithCodec(c Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

// WithPretty makes the default codec emit multi-line indented output
// instead of the compact single-line form. Purely presentational, the
// encoding round-trips either way.
func WithPretty() Option {
	return func(cfg *config) { cfg.pretty = true }
}

// WithNumber makes the default codec decode numbers as json.Number, so
// numeric literals round-trip without float64 precision loss.
func WithNumber() Option {
	return func(cfg *config) { cfg.useNumber = true }
}

// WithAtomicReplace makes Save write to a temporary file in the same
// directory and rename it over the backing file, so the file always holds
// a complete encoding even if a save is interrupted. The default is to
// truncate and rewrite in place.
func WithAtomicReplace() Option {
	return func(cfg *config) { cfg.atomicReplace = true }
}

// WithFileLock holds an advisory lock (flock) around every load and save,
// for callers sharing the path across processes. The lock is taken on a
// sidecar file next to the backing file (path plus ".lock"), never on the
// backing file itself: locking the backing file would create it when it is
// missing, and under WithAtomicReplace the rename would swap the locked
// inode away.
func WithFileLock() Option {
	return func(cfg *config) { cfg.fileLock = true }
}

func newConfig(opts []Option) config {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.codec == nil {
		cfg.codec = JSONCodec{Pretty: cfg.pretty, UseNumber: cfg.useNumber}
	}
	return cfg
}

// store carries what the three container variants share: the backing file
// path, fixed at construction, and the save/load configuration.
type store struct {
	path string
	cfg  config
}

// Path returns the location of the backing file.
func (s *store) Path() string {
	return s.path
}

// saveLocked encodes v and rewrites the backing file. The caller must hold
// exclusive access to v for the full duration; that hold is what makes a
// save immune to concurrent mutation.
func (s *store) saveLocked(v any) error {
	data, err := s.cfg.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("jsave: encode for %s: %w", s.path, err)
	}

	if s.cfg.fileLock {
		fl := flock.New(s.path + ".lock")
		if err := fl.Lock(); err != nil {
			return fmt.Errorf("jsave: lock %s: %w", s.path, err)
		}
		defer fl.Unlock()
	}

	if s.cfg.atomicReplace {
		if err := atomicfile.WriteFile(s.path, data); err != nil {
			return fmt.Errorf("jsave: write %s: %w", s.path, err)
		}
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("jsave: open %s: %w", s.path, err)
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("jsave: write %s: %w", s.path, err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("jsave: sync %s: %w", s.path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("jsave: close %s: %w", s.path, err)
	}
	return nil
}

// loadFromPath reads the backing file and decodes it into a fresh T.
func loadFromPath[T any](path string, cfg config) (T, error) {
	var v T

	if cfg.fileLock {
		fl := flock.New(path + ".lock")
		if err := fl.RLock(); err != nil {
			return v, fmt.Errorf("jsave: lock %s: %w", path, err)
		}
		defer fl.Unlock()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("jsave: read %s: %w", path, err)
	}
	if err := cfg.codec.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, &DecodeError{Path: path, Err: err}
	}
	return v, nil
}
