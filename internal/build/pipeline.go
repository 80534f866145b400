// Package build turns a theme source tree into its build output.
//
// Every source file is mapped to an output path. Template files are expanded
// against the component registry; other files are copied, skipping the write
// when the content has not changed since it was last copied. Component
// sources are never emitted themselves.
package build

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/liquify/internal/config"
	lerrors "github.com/conneroisu/liquify/internal/errors"
	"github.com/conneroisu/liquify/internal/expander"
	"github.com/conneroisu/liquify/internal/logging"
	"github.com/conneroisu/liquify/internal/registry"
)

// Action is what processing did with one source file.
type Action int

const (
	ActionIgnored Action = iota
	ActionExpanded
	ActionCopied
	ActionUnchanged
)

// String returns the string representation of the Action
func (a Action) String() string {
	switch a {
	case ActionIgnored:
		return "ignored"
	case ActionExpanded:
		return "expanded"
	case ActionCopied:
		return "copied"
	case ActionUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Result describes the processing of one source file.
type Result struct {
	Source string
	Dest   string
	Action Action
}

// Summary counts what a full build did.
type Summary struct {
	Expanded  int
	Copied    int
	Unchanged int
	Ignored   int
	Failed    int
	Duration  time.Duration
}

func (s *Summary) add(action Action) {
	switch action {
	case ActionExpanded:
		s.Expanded++
	case ActionCopied:
		s.Copied++
	case ActionUnchanged:
		s.Unchanged++
	default:
		s.Ignored++
	}
}

// Pipeline builds source files into the output directory.
type Pipeline struct {
	sourceDir string
	outputDir string
	folders   []string
	extension string

	scan     registry.ScanFunc
	store    *registry.Store
	expander *expander.Expander
	mapper   *Mapper
	hashes   *HashProvider
	logger   logging.Logger
}

// NewPipeline creates a pipeline for cfg. Scanning uses the layout the
// configured dialect expects of component files.
func NewPipeline(cfg *config.Config, hashes *HashProvider, logger logging.Logger) (*Pipeline, error) {
	dialect, err := expander.ForName(cfg.Expansion.Dialect)
	if err != nil {
		return nil, lerrors.NewConfigError("selecting dialect", err)
	}
	if hashes == nil {
		hashes = NewHashProvider()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	scan := registry.Scan
	if dialect.Name() == expander.DialectExpression {
		scan = registry.ScanWhole
	}

	return &Pipeline{
		sourceDir: cfg.Source.Dir,
		outputDir: cfg.Output.Dir,
		folders:   cfg.Output.Folders,
		extension: cfg.Expansion.Extension,
		scan:      scan,
		store:     registry.NewStore(),
		expander:  expander.New(dialect, expander.WithMaxPasses(cfg.Expansion.MaxPasses)),
		mapper:    NewMapper(cfg.Source.Components),
		hashes:    hashes,
		logger:    logger.WithComponent("build"),
	}, nil
}

// Registry returns the most recently loaded registry.
func (p *Pipeline) Registry() *registry.Registry {
	return p.store.Load()
}

// LoadRegistry rescans the component directory and publishes the result. A
// missing component directory yields an empty registry; any failure while
// scanning an existing one is returned and the published registry is kept.
func (p *Pipeline) LoadRegistry(ctx context.Context) (*registry.Registry, error) {
	dir := p.ComponentsDir()
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, lerrors.NewIOError(lerrors.ErrCodeScanIO, "reading component directory", err).WithFile(dir)
		}
		p.logger.Warn(ctx, err, "Component directory not found, no components registered", "dir", dir)
		reg := registry.New()
		p.store.Replace(reg)
		return reg, nil
	}

	reg, err := p.scan(dir, p.extension)
	if err != nil {
		return nil, err
	}

	p.store.Replace(reg)
	p.logger.Debug(ctx, "Loaded component registry", "components", reg.Count())
	return reg, nil
}

// ComponentsDir returns the directory components are scanned from.
func (p *Pipeline) ComponentsDir() string {
	return filepath.Join(p.sourceDir, p.mapper.components)
}

// IsComponent reports whether srcPath is a component source.
func (p *Pipeline) IsComponent(srcPath string) bool {
	rel, err := filepath.Rel(p.sourceDir, srcPath)
	if err != nil {
		return false
	}
	return p.mapper.IsComponent(rel)
}

// Destination returns the output path for srcPath, reporting false when the
// file is not emitted.
func (p *Pipeline) Destination(srcPath string) (string, bool) {
	rel, err := filepath.Rel(p.sourceDir, srcPath)
	if err != nil {
		return "", false
	}
	out, ok := p.mapper.Map(rel)
	if !ok {
		return "", false
	}
	return filepath.Join(p.outputDir, filepath.FromSlash(out)), true
}

// Process reloads the registry and builds one source file.
func (p *Pipeline) Process(ctx context.Context, srcPath string) (Result, error) {
	reg, err := p.LoadRegistry(ctx)
	if err != nil {
		return Result{Source: srcPath}, err
	}
	return p.process(ctx, reg, srcPath)
}

func (p *Pipeline) process(ctx context.Context, reg *registry.Registry, srcPath string) (Result, error) {
	result := Result{Source: srcPath, Action: ActionIgnored}

	dest, ok := p.Destination(srcPath)
	if !ok {
		p.logger.Debug(ctx, "Skipped source", "src", srcPath)
		return result, nil
	}
	result.Dest = dest

	if filepath.Ext(srcPath) == p.extension {
		return p.expandFile(ctx, reg, result)
	}
	return p.copyFile(ctx, result)
}

func (p *Pipeline) expandFile(ctx context.Context, reg *registry.Registry, result Result) (Result, error) {
	content, err := os.ReadFile(result.Source)
	if err != nil {
		return result, lerrors.NewIOError(lerrors.ErrCodeReadSource, "reading source", err).WithFile(result.Source)
	}

	expanded, err := p.expander.Expand(string(content), reg)
	if err != nil {
		var le *lerrors.LiquifyError
		if errors.As(err, &le) {
			return result, le.WithFile(result.Source)
		}
		return result, err
	}

	data := []byte(expanded)
	if err := writeFile(result.Dest, data); err != nil {
		return result, err
	}
	p.hashes.Record(result.Dest, HashBytes(data))

	result.Action = ActionExpanded
	p.logger.Info(ctx, "Expanded template", "src", result.Source, "dest", result.Dest)
	return result, nil
}

func (p *Pipeline) copyFile(ctx context.Context, result Result) (Result, error) {
	digest, err := p.hashes.FileDigest(result.Source)
	if err != nil {
		return result, lerrors.NewIOError(lerrors.ErrCodeReadSource, "hashing source", err).WithFile(result.Source)
	}
	if p.hashes.Unchanged(result.Dest, digest) {
		result.Action = ActionUnchanged
		p.logger.Debug(ctx, "Asset unchanged", "src", result.Source, "digest", digest.String())
		return result, nil
	}

	data, err := os.ReadFile(result.Source)
	if err != nil {
		return result, lerrors.NewIOError(lerrors.ErrCodeReadSource, "reading source", err).WithFile(result.Source)
	}
	if err := writeFile(result.Dest, data); err != nil {
		return result, err
	}
	p.hashes.Record(result.Dest, HashBytes(data))

	result.Action = ActionCopied
	p.logger.Info(ctx, "Copied file", "src", result.Source, "dest", result.Dest)
	return result, nil
}

func writeFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return lerrors.NewIOError(lerrors.ErrCodeWriteOutput, "creating output folder", err).WithFile(dest)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return lerrors.NewIOError(lerrors.ErrCodeWriteOutput, "writing output", err).WithFile(dest)
	}
	return nil
}

// Remove deletes the output of a source file that no longer exists. A
// missing output is not an error.
func (p *Pipeline) Remove(ctx context.Context, srcPath string) error {
	dest, ok := p.Destination(srcPath)
	if !ok {
		return nil
	}

	p.hashes.Forget(dest)
	if err := os.Remove(dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return lerrors.NewIOError(lerrors.ErrCodeWriteOutput, "removing output", err).WithFile(dest)
	}

	p.logger.Info(ctx, "Removed output", "src", srcPath, "dest", dest)
	return nil
}

// BuildAll creates the output directory if needed, loads the registry once
// and builds every source file. A failing file does not stop the build; all
// failures are returned together.
func (p *Pipeline) BuildAll(ctx context.Context) (Summary, error) {
	start := time.Now()
	perf := logging.StartOperation(p.logger, "build")

	var summary Summary
	created, err := EnsureOutputDir(p.outputDir, p.folders)
	if err != nil {
		perf.EndWithError(ctx, err)
		return summary, err
	}
	if created {
		p.logger.Info(ctx, "Created output directory", "dir", p.outputDir)
	}

	reg, err := p.LoadRegistry(ctx)
	if err != nil {
		perf.EndWithError(ctx, err)
		return summary, err
	}

	collector := lerrors.NewErrorCollector()
	componentsDir := filepath.Clean(p.ComponentsDir())
	walkErr := filepath.WalkDir(p.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			collector.Add(path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != p.sourceDir && (strings.HasPrefix(d.Name(), ".") || filepath.Clean(path) == componentsDir) {
				return filepath.SkipDir
			}
			return nil
		}

		result, err := p.process(ctx, reg, path)
		if err != nil {
			summary.Failed++
			collector.Add(path, err)
			p.logger.Error(ctx, err, "Failed to build file", "src", path)
			return nil
		}
		summary.add(result.Action)
		return nil
	})
	summary.Duration = time.Since(start)

	if walkErr != nil {
		perf.EndWithError(ctx, walkErr)
		return summary, walkErr
	}
	if err := collector.Err(); err != nil {
		perf.EndWithError(ctx, err)
		return summary, err
	}

	perf.End(ctx,
		"expanded", summary.Expanded,
		"copied", summary.Copied,
		"unchanged", summary.Unchanged,
	)
	return summary, nil
}

// ExpandFile expands one file against a freshly loaded registry without
// writing anything.
func (p *Pipeline) ExpandFile(ctx context.Context, path string) (string, error) {
	reg, err := p.LoadRegistry(ctx)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", lerrors.NewIOError(lerrors.ErrCodeReadSource, "reading source", err).WithFile(path)
	}
	return p.expander.Expand(string(content), reg)
}
