package build

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	lerrors "github.com/conneroisu/liquify/internal/errors"
)

// EnsureOutputDir creates dir with each of folders inside it when dir does
// not exist yet. An existing dir is left untouched. It reports whether the
// directory was created.
func EnsureOutputDir(dir string, folders []string) (bool, error) {
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, lerrors.NewIOError(lerrors.ErrCodeWriteOutput, "checking output directory", err).WithFile(dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, lerrors.NewIOError(lerrors.ErrCodeWriteOutput, "creating output directory", err).WithFile(dir)
	}
	for _, folder := range folders {
		path := filepath.Join(dir, folder)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return true, lerrors.NewIOError(lerrors.ErrCodeWriteOutput, "creating output folder", err).WithFile(path)
		}
	}
	return true, nil
}
