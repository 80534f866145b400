package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/conneroisu/liquify/internal/version"
	"github.com/spf13/cobra"
)

var versionFormat string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the liquify version, git commit, build time, Go version and
target platform.

Examples:
  liquify version                 # One-line summary
  liquify version --format json   # Output as JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	addFormatFlag(versionCmd.Flags(), &versionFormat, "format", "f", formatText, formatJSON)
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	if versionFormat == formatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			version.BuildInfo
			IsRelease bool `json:"is_release"`
		}{info, info.IsRelease()})
	}

	fmt.Fprintln(out, info.String())
	return nil
}
