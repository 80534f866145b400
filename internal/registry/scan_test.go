package registry

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	lerrors "github.com/conneroisu/liquify/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"tight marker", "prefix text<!--component-->\n  <div></div>\n", "<div></div>", true},
		{"spaced marker", "{% comment %}doc{% endcomment %}\n<!-- component -->\n<p><<children>></p>", "<p><<children>></p>", true},
		{"wide whitespace", "<!--   component\t-->x", "x", true},
		{"no marker", "<div></div>", "", false},
		{"wrong case", "<!-- Component -->x", "", false},
		{"empty body", "<!--component-->   ", "", true},
		{"second marker stays in body", "<!--component-->a<!--component-->b", "a<!--component-->b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBody(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Card.liquid"), "<!--component-->\n<div class=\"card\"><<children>></div>\n")
	writeFile(t, filepath.Join(root, "forms", "Button.liquid"), "docs\n<!-- component -->\n<button><<label>></button>")
	writeFile(t, filepath.Join(root, "forms", "partial.liquid"), "{% render 'x' %}")
	writeFile(t, filepath.Join(root, "notes.txt"), "<!--component-->ignored")

	reg, err := Scan(root, ".liquid")
	require.NoError(t, err)

	assert.Equal(t, []string{"Card", "Button"}, reg.Names())

	card, ok := reg.Get("Card")
	require.True(t, ok)
	assert.Equal(t, `<div class="card"><<children>></div>`, card.Body)
	assert.Equal(t, filepath.Join(root, "Card.liquid"), card.FilePath)

	button, ok := reg.Get("Button")
	require.True(t, ok)
	assert.Equal(t, "<button><<label>></button>", button.Body)

	_, ok = reg.Get("partial")
	assert.False(t, ok)
	_, ok = reg.Get("notes")
	assert.False(t, ok)
}

func TestScan_DuplicateNameLastScannedWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "Badge.liquid"), "<!--component-->first")
	writeFile(t, filepath.Join(root, "b", "Badge.liquid"), "<!--component-->second")

	reg, err := Scan(root, ".liquid")
	require.NoError(t, err)

	body, ok := reg.Body("Badge")
	require.True(t, ok)
	assert.Equal(t, "second", body)
	assert.Equal(t, 1, reg.Count())
}

func TestScan_DefaultExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Card.liquid"), "<!--component-->x")

	reg, err := Scan(root, "")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Count())
}

func TestScan_MissingRootFails(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), ".liquid")
	require.Error(t, err)

	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, lerrors.ErrCodeScanIO, lerrors.Code(err))
}

func TestScan_UnreadableFileFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := t.TempDir()
	path := filepath.Join(root, "Locked.liquid")
	writeFile(t, path, "<!--component-->x")
	require.NoError(t, os.Chmod(path, 0000))
	t.Cleanup(func() { _ = os.Chmod(path, 0644) })

	_, err := Scan(root, ".liquid")
	require.Error(t, err)
	assert.True(t, lerrors.IsIOError(err))
}

func TestScanWhole(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Hero.liquid"), "<section><h1>{title}</h1><slot/></section>\n")
	writeFile(t, filepath.Join(root, "nested", "Icon.liquid"), "<svg>{name}</svg>")

	reg, err := ScanWhole(root, ".liquid")
	require.NoError(t, err)

	assert.Equal(t, []string{"Hero", "Icon"}, reg.Names())
	body, _ := reg.Body("Hero")
	assert.Equal(t, "<section><h1>{title}</h1><slot/></section>\n", body)
}
