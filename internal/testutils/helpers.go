// Package testutils builds throwaway theme projects for tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/liquify/internal/config"
	"github.com/stretchr/testify/require"
)

// CreateTempTheme creates a temporary project with src/ holding files, keyed
// by slash-separated paths relative to the project root. The src directory
// always exists.
func CreateTempTheme(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes content at root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ReadFile returns the content at root/rel.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// CreateTestConfig returns a configuration building root/src into
// root/build with every default filled in.
func CreateTestConfig(root, dialect string) *config.Config {
	return &config.Config{
		Source: config.SourceConfig{Dir: filepath.Join(root, "src"), Components: "components"},
		Output: config.OutputConfig{
			Dir:     filepath.Join(root, "build"),
			Folders: append([]string(nil), config.DefaultOutputFolders...),
		},
		Expansion: config.ExpansionConfig{Dialect: dialect, MaxPasses: 100, Extension: ".liquid"},
		Watch:     config.WatchConfig{Debounce: 20 * time.Millisecond, Ignore: []string{".*"}},
		Sync:      config.SyncConfig{Enabled: true, Files: []string{"config/settings_data.json"}},
	}
}

// WaitForContent waits until root/rel holds want.
func WaitForContent(t *testing.T, root, rel, want string, timeout time.Duration) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && string(data) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	data, _ := os.ReadFile(path)
	t.Fatalf("%s did not become %q within %v, last content %q", rel, want, timeout, data)
}

// WaitForRemoval waits until root/rel no longer exists.
func WaitForRemoval(t *testing.T, root, rel string, timeout time.Duration) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("%s still exists after %v", rel, timeout)
}
