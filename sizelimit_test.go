package zipvfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionLimits(t *testing.T) {
	t.Parallel()

	limits := ExtensionLimits{
		Default:     100,
		ByExtension: map[string]uint64{"class": 10},
	}

	tests := []struct {
		size uint64
		ext  string
		want bool
	}{
		{100, "txt", false},
		{101, "txt", true},
		{10, "class", false},
		{11, "class", true},
		{101, "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, limits.IsTooLarge(tt.size, tt.ext), "%d %q", tt.size, tt.ext)
	}
	assert.Equal(t, uint64(10), limits.Limit("class"))
	assert.Equal(t, uint64(100), limits.Limit("jar"))
}

func TestDefaultSizeLimit(t *testing.T) {
	t.Parallel()

	l := DefaultSizeLimit()
	assert.False(t, l.IsTooLarge(DefaultMaxSize, "bin"))
	assert.True(t, l.IsTooLarge(DefaultMaxSize+1, "bin"))
}

func TestExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "class", extension("com/acme/Main.CLASS"))
	assert.Equal(t, "gz", extension("a/b.tar.gz"))
	assert.Empty(t, extension("Makefile"))
	assert.Empty(t, extension("dir.d/file"))
}
