package marker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTouch_CreatesZeroByteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdk", "esp32", "lib", ".patched")

	assert.False(t, Exists(path))
	require.NoError(t, Touch(path))
	assert.True(t, Exists(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestTouch_TruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".patched")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, Touch(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestExists_Directory(t *testing.T) {
	assert.False(t, Exists(t.TempDir()))
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".patched")

	// Missing flag
	require.NoError(t, Remove(path))

	require.NoError(t, Touch(path))
	require.NoError(t, Remove(path))
	assert.False(t, Exists(path))
}
