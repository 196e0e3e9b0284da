package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "file"))
	require.NoError(t, err)
	peb, err := NewPebble(filepath.Join(t.TempDir(), "pebble"))
	require.NoError(t, err)

	stores := map[string]Storage{
		BackendMemory: NewMemory(),
		BackendFile:   file,
		BackendPebble: peb,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStorageContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("fileHistory")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Put("fileHistory", []byte(`[]`)))
			require.NoError(t, s.Put("fileHistory", []byte(`[{"name":"a"}]`)))

			v, ok, err := s.Get("fileHistory")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"name":"a"}]`, string(v))

			require.NoError(t, s.Delete("fileHistory"))
			require.NoError(t, s.Delete("fileHistory"))
			_, ok, err = s.Get("fileHistory")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put("fileHistory", []byte(`["x"]`)))

	second, err := NewFile(dir)
	require.NoError(t, err)
	v, ok, err := second.Get("fileHistory")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["x"]`, string(v))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestPebbleSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first, err := NewPebble(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put("fileHistory", []byte(`["y"]`)))
	require.NoError(t, first.Close())

	second, err := NewPebble(dir)
	require.NoError(t, err)
	defer second.Close()
	v, ok, err := second.Get("fileHistory")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["y"]`, string(v))
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open("redis", t.TempDir())
	assert.Error(t, err)

	_, err = Open("file", "")
	assert.Error(t, err)
}
