package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conneroisu/liquify/internal/config"
	lerrors "github.com/conneroisu/liquify/internal/errors"
	"github.com/conneroisu/liquify/internal/logging"
	"github.com/tidwall/jsonc"
)

// Syncer copies settings files edited in the build output (by the theme
// editor, for instance) back into the source tree. Copies from source to
// build go through the pipeline like any other file.
type Syncer struct {
	sourceDir string
	outputDir string
	files     []string
	hashes    *HashProvider
	logger    logging.Logger
}

// NewSyncer creates a syncer for the files listed in cfg. It shares hashes
// with the pipeline so a pulled file is not copied straight back.
func NewSyncer(cfg *config.Config, hashes *HashProvider, logger logging.Logger) *Syncer {
	if hashes == nil {
		hashes = NewHashProvider()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	files := cfg.Sync.Files
	if !cfg.Sync.Enabled {
		files = nil
	}
	return &Syncer{
		sourceDir: cfg.Source.Dir,
		outputDir: cfg.Output.Dir,
		files:     files,
		hashes:    hashes,
		logger:    logger.WithComponent("sync"),
	}
}

// BuildPaths returns the output-side path of every synced file.
func (s *Syncer) BuildPaths() []string {
	paths := make([]string, 0, len(s.files))
	for _, f := range s.files {
		paths = append(paths, filepath.Join(s.outputDir, filepath.FromSlash(f)))
	}
	return paths
}

func (s *Syncer) relative(buildPath string) (string, bool) {
	rel, err := filepath.Rel(s.outputDir, buildPath)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, f := range s.files {
		if filepath.ToSlash(filepath.Clean(f)) == rel {
			return rel, true
		}
	}
	return "", false
}

// Pull copies buildPath back to the source tree when it is a synced file
// whose content differs from the source copy. The content must be valid
// JSON once comments and trailing commas are stripped; anything else is
// refused with ErrCodeInvalidSettings. It reports whether the source was
// written.
func (s *Syncer) Pull(ctx context.Context, buildPath string) (bool, error) {
	rel, ok := s.relative(buildPath)
	if !ok {
		return false, nil
	}
	srcPath := filepath.Join(s.sourceDir, filepath.FromSlash(rel))

	data, err := os.ReadFile(buildPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, lerrors.NewIOError(lerrors.ErrCodeReadSource, "reading build settings", err).WithFile(buildPath)
	}
	digest := HashBytes(data)

	if current, err := os.ReadFile(srcPath); err == nil && HashBytes(current) == digest {
		s.logger.Debug(ctx, "Settings already in sync", "file", rel)
		return false, nil
	}

	if err := ValidateSettings(data); err != nil {
		return false, lerrors.NewValidationError(lerrors.ErrCodeInvalidSettings,
			"refusing to sync invalid settings", err).WithFile(buildPath)
	}

	if err := writeFile(srcPath, data); err != nil {
		return false, err
	}
	// The pipeline will see the source change; its output already matches.
	s.hashes.Record(buildPath, digest)

	s.logger.Info(ctx, "Synced settings to source", "src", srcPath, "from", buildPath)
	return true, nil
}

// PullAll pulls every synced file.
func (s *Syncer) PullAll(ctx context.Context) error {
	collector := lerrors.NewErrorCollector()
	for _, path := range s.BuildPaths() {
		if _, err := s.Pull(ctx, path); err != nil {
			collector.Add(path, err)
		}
	}
	return collector.Err()
}

// ValidateSettings checks data is JSON, allowing comments and trailing
// commas as the theme editor writes them.
func ValidateSettings(data []byte) error {
	if !json.Valid(jsonc.ToJSON(data)) {
		return fmt.Errorf("settings are not valid JSON")
	}
	return nil
}
