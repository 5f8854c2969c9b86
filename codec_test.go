package jsave

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EAimTY/jsave/assert"
	"github.com/EAimTY/jsave/require"
)

func TestPrettyOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")

	_, err := CreateMutex(testSettings, path, WithPretty())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n"), "pretty output should be multi-line")
	assert.True(t, strings.Contains(string(data), "  "), "pretty output should be indented")

	// formatting is presentation only, the encoding still round-trips
	s, err := OpenMutex[settings](path)
	require.NoError(t, err)
	s.With(func(v *settings) {
		assert.Equal(t, testSettings, *v)
	})
}

func TestNumberFidelity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	// 2^53+1 is not representable as float64
	require.NoError(t, os.WriteFile(path, []byte(`{"big":9007199254740993}`), 0644))

	s, err := OpenMutex[map[string]any](path, WithNumber())
	require.NoError(t, err)
	s.With(func(m *map[string]any) {
		assert.Equal(t, json.Number("9007199254740993"), (*m)["big"])
	})

	// the literal survives a save unchanged
	require.NoError(t, s.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "9007199254740993"))
}

func TestTOONCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toon")

	_, err := CreateRWMutex(testSettings, path, WithCodec(TOONCodec{}))
	require.NoError(t, err)

	s, err := OpenRWMutex[settings](path, WithCodec(TOONCodec{}))
	require.NoError(t, err)
	s.View(func(v *settings) {
		assert.Equal(t, testSettings, *v)
	})
}

func TestAtomicReplaceSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v.json")

	s, err := CreateMutex(map[string]int{"n": 1}, path, WithAtomicReplace())
	require.NoError(t, err)

	s.With(func(m *map[string]int) { (*m)["n"] = 2 })
	require.NoError(t, s.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may be left behind")

	s2, err := OpenMutex[map[string]int](path)
	require.NoError(t, err)
	s2.With(func(m *map[string]int) {
		assert.Equal(t, map[string]int{"n": 2}, *m)
	})
}

func TestFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.json")

	s, err := CreateMutex(map[string]int{"n": 1}, path, WithFileLock())
	require.NoError(t, err)
	require.NoError(t, s.Update(func(m *map[string]int) error {
		(*m)["n"] = 2
		return nil
	}))

	s2, err := OpenMutex[map[string]int](path, WithFileLock())
	require.NoError(t, err)
	s2.With(func(m *map[string]int) {
		assert.Equal(t, map[string]int{"n": 2}, *m)
	})
}

func TestFileLockOpenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	s, err := OpenMutex[map[string]int](path, WithFileLock())
	assert.Nil(t, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var de *DecodeError
	assert.False(t, errors.As(err, &de))

	// opening must not create the backing file as a side effect
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestFileLockWithAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.json")

	s, err := CreateMutex(map[string]int{"n": 1}, path, WithFileLock(), WithAtomicReplace())
	require.NoError(t, err)
	require.NoError(t, s.Update(func(m *map[string]int) error {
		(*m)["n"] = 2
		return nil
	}))
	require.NoError(t, s.Save())

	s2, err := OpenMutex[map[string]int](path, WithFileLock())
	require.NoError(t, err)
	s2.With(func(m *map[string]int) {
		assert.Equal(t, map[string]int{"n": 2}, *m)
	})

	// the lock lives on the sidecar, which the replacing rename never touches
	_, err = os.Stat(path + ".lock")
	assert.NoError(t, err)
}
