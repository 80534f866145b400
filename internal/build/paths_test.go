package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapperMap(t *testing.T) {
	mapper := NewMapper("components")

	tests := []struct {
		rel  string
		want string
		ok   bool
	}{
		{"sections/hero.liquid", "sections/hero.liquid", true},
		{"layout/theme.liquid", "layout/theme.liquid", true},
		{"README.md", "README.md", true},
		{"templates/customers/account.json", "templates/customers/account.json", true},
		{"templates/a/b/c.liquid", "templates/a/b/c.liquid", true},
		{"snippets/icons/cart.liquid", "snippets/icons_cart.liquid", true},
		{"sections/home/hero/banner.liquid", "sections/home_hero_banner.liquid", true},
		{"./sections/hero.liquid", "sections/hero.liquid", true},
		{"components/Card.liquid", "", false},
		{"components/ui/Badge.liquid", "", false},
		{"components", "", false},
		{"componentsextra/a.liquid", "componentsextra/a.liquid", true},
		{".git/config", "", false},
		{"sections/.hero.liquid.swp", "", false},
		{"../outside.liquid", "", false},
		{".", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, ok := mapper.Map(tt.rel)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapperNestedComponentsDir(t *testing.T) {
	mapper := NewMapper("snippets/components/")

	assert.True(t, mapper.IsComponent("snippets/components/Card.liquid"))
	assert.False(t, mapper.IsComponent("snippets/card.liquid"))

	got, ok := mapper.Map("snippets/card.liquid")
	assert.True(t, ok)
	assert.Equal(t, "snippets/card.liquid", got)
}

func TestEnsureOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	folders := []string{"assets", "sections", "templates"}

	created, err := EnsureOutputDir(dir, folders)
	require.NoError(t, err)
	assert.True(t, created)
	for _, folder := range folders {
		assert.DirExists(t, filepath.Join(dir, folder))
	}

	// An existing directory is left as it is.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "assets")))
	created, err = EnsureOutputDir(dir, folders)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoDirExists(t, filepath.Join(dir, "assets"))
}

func TestEnsureOutputDir_BlockedByFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))

	_, err := EnsureOutputDir(filepath.Join(parent, "build"), nil)
	assert.Error(t, err)
}
