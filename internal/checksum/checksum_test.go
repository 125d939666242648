package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func hexSum(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "index.html", "<html></html>")

	sum, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hexSum("<html></html>"), sum)
}

func TestHashFile_LargerThanChunk(t *testing.T) {
	dir := t.TempDir()
	content := string(make([]byte, chunkSize*3+17))
	path := writeFile(t, dir, "app.js", content)

	sum, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hexSum(content), sum)
}

func TestHashFile_Missing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "nope.css"))
	assert.Error(t, err)
}

func TestHashFiles_CombinesHexDigests(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.html", "aaa")
	b := writeFile(t, dir, "b.css", "bbb")

	sum, err := HashFiles([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, hexSum(hexSum("aaa")+hexSum("bbb")), sum)
}

func TestHashFiles_Empty(t *testing.T) {
	sum, err := HashFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, hexSum(""), sum)
}

func TestHashFiles_DetectsChanges(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.html", "aaa")
	b := writeFile(t, dir, "b.css", "bbb")

	before, err := HashFiles([]string{a, b})
	require.NoError(t, err)

	tests := []struct {
		name  string
		paths func() []string
	}{
		{"modified", func() []string {
			writeFile(t, dir, "b.css", "bbc")
			return []string{a, b}
		}},
		{"reordered", func() []string {
			writeFile(t, dir, "b.css", "bbb")
			return []string{b, a}
		}},
		{"removed", func() []string { return []string{a} }},
		{"added", func() []string {
			return []string{a, b, writeFile(t, dir, "c.js", "ccc")}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			after, err := HashFiles(tc.paths())
			require.NoError(t, err)
			assert.NotEqual(t, before, after)
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web", "checksum.sha256")

	sum, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, sum)

	require.NoError(t, Save(path, "abc123"))
	sum, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", sum)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", string(raw))
}

func TestLoad_FirstLineTrimmed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "checksum.sha256", "  deadbeef \nsecond line\n")

	sum, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", sum)
}
