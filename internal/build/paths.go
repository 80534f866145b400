package build

import (
	"path"
	"path/filepath"
	"strings"
)

// Mapper maps paths relative to the source directory onto paths relative to
// the output directory. The theme output only allows one level of folders,
// so deeper sources are flattened into their top-level folder with the
// remaining segments joined by underscores.
type Mapper struct {
	components string
}

// NewMapper creates a mapper. components is the component directory
// relative to the source directory; nothing under it is emitted.
func NewMapper(components string) *Mapper {
	return &Mapper{components: path.Clean(filepath.ToSlash(components))}
}

// Map returns the output-relative path for rel, a path relative to the
// source directory. It reports false for component sources, hidden files
// and paths outside the source directory.
func (m *Mapper) Map(rel string) (string, bool) {
	rel = path.Clean(filepath.ToSlash(rel))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", false
	}
	if m.IsComponent(rel) {
		return "", false
	}

	segments := strings.Split(rel, "/")
	for _, segment := range segments {
		if strings.HasPrefix(segment, ".") {
			return "", false
		}
	}

	switch {
	case segments[0] == "templates", len(segments) <= 2:
		return rel, true
	default:
		return segments[0] + "/" + strings.Join(segments[1:], "_"), true
	}
}

// IsComponent reports whether rel lies under the component directory.
func (m *Mapper) IsComponent(rel string) bool {
	rel = path.Clean(filepath.ToSlash(rel))
	return rel == m.components || strings.HasPrefix(rel, m.components+"/")
}
