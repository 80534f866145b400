package build

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	c := HashBytes([]byte("hello!"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.String(), 64)
	// BLAKE3 of the empty input.
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", HashBytes(nil).String())
}

func TestHashProvider_FileDigest(t *testing.T) {
	tempDir := t.TempDir()
	provider := NewHashProvider()

	tests := []struct {
		name    string
		content string
	}{
		{"empty_file", ""},
		{"single_character", "a"},
		{"liquid", "{% if x %}<Card/>{% endif %}"},
		{"unicode_content", "こんにちは世界\n🎉🚀✨"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			digest, err := provider.FileDigest(path)
			require.NoError(t, err)
			assert.Equal(t, HashBytes([]byte(tt.content)), digest)

			again, err := provider.FileDigest(path)
			require.NoError(t, err)
			assert.Equal(t, digest, again)
		})
	}

	_, err := provider.FileDigest(filepath.Join(tempDir, "missing"))
	assert.Error(t, err)
}

func TestHashProvider_FileDigestSeesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	provider := NewHashProvider()

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	first, err := provider.FileDigest(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))
	// Size changed, so the metadata key differs even with a coarse clock.
	second, err := provider.FileDigest(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	third, err := provider.FileDigest(path)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestHashProvider_RecordUnchangedForget(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "logo.svg")
	provider := NewHashProvider()
	digest := HashBytes([]byte("svg"))

	assert.False(t, provider.Unchanged(dest, digest))

	provider.Record(dest, digest)
	// Recorded but the file is gone.
	assert.False(t, provider.Unchanged(dest, digest))

	require.NoError(t, os.WriteFile(dest, []byte("svg"), 0o644))
	assert.True(t, provider.Unchanged(dest, digest))
	assert.False(t, provider.Unchanged(dest, HashBytes([]byte("other"))))

	provider.Forget(dest)
	assert.False(t, provider.Unchanged(dest, digest))

	provider.Record(dest, digest)
	provider.Clear()
	assert.False(t, provider.Unchanged(dest, digest))
}
