package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:     "expand <file>",
	Aliases: []string{"x"},
	Short:   "Print a file with its components expanded",
	Long: `Expand the component usages in one file and print the result to stdout.

Components are loaded from the configured component directory using the
configured dialect. Nothing is written to the output directory.

Examples:
  liquify expand src/sections/hero.liquid
  liquify expand page.liquid > page.expanded.liquid`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	out, err := env.pipeline.ExpandFile(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), out)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
