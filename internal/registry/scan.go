package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lerrors "github.com/conneroisu/liquify/internal/errors"
)

// DefaultExtension is the template file extension.
const DefaultExtension = ".liquid"

// markerPattern accepts both `<!--component-->` and `<!-- component -->`.
var markerPattern = regexp.MustCompile(`<!--\s*component\s*-->`)

// ScanFunc builds a registry from the template files under root.
type ScanFunc func(root, ext string) (*Registry, error)

// ExtractBody returns the text following the first component marker,
// trimmed. ok is false when text carries no marker.
func ExtractBody(text string) (body string, ok bool) {
	loc := markerPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(text[loc[1]:]), true
}

// Scan registers every template file under root that carries a component
// marker, using the text after the marker as the body. Any unreadable
// directory or file aborts the scan.
func Scan(root, ext string) (*Registry, error) {
	return scan(root, ext, ExtractBody)
}

// ScanWhole registers every template file under root with its entire text as
// the body. The expression dialect uses this layout: there is no marker and
// children go wherever the file places `<slot/>`.
func ScanWhole(root, ext string) (*Registry, error) {
	return scan(root, ext, func(text string) (string, bool) {
		return text, true
	})
}

func scan(root, ext string, extract func(string) (string, bool)) (*Registry, error) {
	if ext == "" {
		ext = DefaultExtension
	}

	reg := New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		body, ok := extract(string(content))
		if !ok {
			return nil
		}

		reg.Register(&ComponentDefinition{
			Name:     strings.TrimSuffix(filepath.Base(path), ext),
			Body:     body,
			FilePath: path,
		})
		return nil
	})
	if err != nil {
		return nil, lerrors.NewIOError(lerrors.ErrCodeScanIO, "scanning components", err).WithFile(root)
	}

	return reg, nil
}
