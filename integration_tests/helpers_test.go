//go:build integration
// +build integration

package integration_tests

import (
	"os"
	"path/filepath"
)

func removeFile(root, rel string) error {
	return os.Remove(filepath.Join(root, filepath.FromSlash(rel)))
}
