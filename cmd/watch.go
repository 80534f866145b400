package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/conneroisu/liquify/internal/build"
	"github.com/conneroisu/liquify/internal/config"
	lerrors "github.com/conneroisu/liquify/internal/errors"
	"github.com/conneroisu/liquify/internal/logging"
	"github.com/conneroisu/liquify/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Build the theme and rebuild on every change",
	Long: `Build the theme once, then watch the source tree and rebuild changed files.

Edited files are rebuilt, deleted files are removed from the output and new
directories are watched as they appear. Editing a component rebuilds the
whole theme. Settings files listed under sync.files are also watched in the
output directory and copied back to the source when the theme editor
changes them.

Examples:
  liquify watch                 # Watch with the configured debounce
  liquify watch -l debug        # Log every file processed`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	summary, err := env.pipeline.BuildAll(ctx)
	printSummary(cmd.OutOrStdout(), summary)
	if err != nil {
		// Watching continues so the failing files can be fixed.
		env.logger.Error(ctx, err, "Initial build failed")
	}

	tw := newThemeWatcher(env.cfg, env.pipeline, build.NewSyncer(env.cfg, env.hashes, env.logger), env.logger)
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (press Ctrl+C to stop)\n", env.cfg.Source.Dir)
	return tw.Run(ctx)
}

// themeWatcher feeds debounced file changes into the pipeline and the
// settings syncer.
type themeWatcher struct {
	cfg      *config.Config
	pipeline *build.Pipeline
	syncer   *build.Syncer
	logger   logging.Logger
	errs     *lerrors.ErrorHandler
}

func newThemeWatcher(cfg *config.Config, pipeline *build.Pipeline, syncer *build.Syncer, logger logging.Logger) *themeWatcher {
	logger = logger.WithComponent("watch")
	return &themeWatcher{
		cfg:      cfg,
		pipeline: pipeline,
		syncer:   syncer,
		logger:   logger,
		errs:     lerrors.NewErrorHandler(logger),
	}
}

// Run watches until ctx is cancelled.
func (tw *themeWatcher) Run(ctx context.Context) error {
	source, err := watcher.NewFileWatcher(tw.cfg.Watch.Debounce, tw.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer source.Stop()

	source.AddFilter(watcher.Relative(tw.cfg.Source.Dir, watcher.IgnoreFilter(tw.cfg.Watch.Ignore)))
	source.AddFilter(watcher.NotUnderFilter(tw.cfg.Output.Dir))
	source.AddHandler(func(events []watcher.ChangeEvent) error {
		return tw.handleSource(ctx, events)
	})
	if err := source.AddRecursive(tw.cfg.Source.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", tw.cfg.Source.Dir, err)
	}
	if err := source.Start(ctx); err != nil {
		return err
	}

	if paths := tw.syncer.BuildPaths(); len(paths) > 0 {
		output, err := watcher.NewFileWatcher(tw.cfg.Watch.Debounce, tw.logger)
		if err != nil {
			return fmt.Errorf("failed to create settings watcher: %w", err)
		}
		defer output.Stop()

		output.AddFilter(watcher.OnlyFilter(paths...))
		output.AddHandler(func(events []watcher.ChangeEvent) error {
			return tw.handleBuild(ctx, events)
		})
		for _, dir := range parentDirs(paths) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			if err := output.AddPath(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		if err := output.Start(ctx); err != nil {
			return err
		}
	}

	tw.logger.Info(ctx, "Watching for changes", "dir", tw.cfg.Source.Dir)
	<-ctx.Done()
	tw.logger.Info(ctx, "Stopped watching")
	return nil
}

// handleSource applies a batch of source changes. Failures are logged and
// do not stop the batch.
func (tw *themeWatcher) handleSource(ctx context.Context, events []watcher.ChangeEvent) error {
	rebuild := false
	for _, event := range events {
		if tw.pipeline.IsComponent(event.Path) {
			rebuild = true
			continue
		}

		var err error
		switch {
		case event.Type.Gone():
			err = tw.pipeline.Remove(ctx, event.Path)
		case event.IsDir:
			err = tw.processTree(ctx, event.Path)
		default:
			_, err = tw.pipeline.Process(ctx, event.Path)
		}
		if err != nil {
			tw.errs.Handle(ctx, err)
		}
	}

	if rebuild {
		tw.logger.Info(ctx, "Component changed, rebuilding theme")
		if _, err := tw.pipeline.BuildAll(ctx); err != nil {
			tw.logger.Error(ctx, err, "Rebuild failed")
		}
	}
	return nil
}

// processTree processes every file below a directory that appeared after
// watching started.
func (tw *themeWatcher) processTree(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, err := tw.pipeline.Process(ctx, path); err != nil {
			tw.errs.Handle(ctx, err)
		}
		return nil
	})
}

// handleBuild pulls changed build-side settings back into the source.
func (tw *themeWatcher) handleBuild(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, event := range events {
		if event.Type.Gone() {
			continue
		}
		if _, err := tw.syncer.Pull(ctx, event.Path); err != nil {
			tw.errs.Handle(ctx, err)
		}
	}
	return nil
}

func parentDirs(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	dirs := make([]string, 0, len(paths))
	for _, p := range paths {
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
