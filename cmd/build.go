package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/conneroisu/liquify/internal/build"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Build the theme into the output directory",
	Long: `Build every file of the theme source tree into the output directory.

Template files are expanded against the components found in the component
directory; every other file is copied, skipping files whose content has not
changed. A failing file does not stop the build, but the command exits with
an error listing every failure.

Examples:
  liquify build                         # Build using .liquify.yml
  LIQUIFY_OUTPUT_DIR=dist liquify build # Build into dist/`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	summary, err := env.pipeline.BuildAll(commandContext(cmd))
	printSummary(cmd.OutOrStdout(), summary)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, s build.Summary) {
	fmt.Fprintf(w, "Built in %s: %d expanded, %d copied, %d unchanged",
		s.Duration.Round(time.Millisecond), s.Expanded, s.Copied, s.Unchanged)
	if s.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", s.Failed)
	}
	fmt.Fprintln(w)
}
