package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/liquify/internal/registry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all registered components",
	Long: `List the components found in the component directory with the file
each came from and the placeholders its body uses.

Examples:
  liquify list              # List components in table format
  liquify list -o json      # Output as JSON
  liquify list -o yaml      # Output as YAML`,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)
	addFormatFlag(listCmd.Flags(), &listFormat, "output", "o", formatTable, formatJSON, formatYAML)
}

// componentEntry is one row of list output.
type componentEntry struct {
	Name         string   `json:"name" yaml:"name"`
	File         string   `json:"file" yaml:"file"`
	Placeholders []string `json:"placeholders" yaml:"placeholders"`
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	reg, err := env.pipeline.LoadRegistry(commandContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	entries := componentEntries(reg)
	if len(entries) == 0 && listFormat == formatTable {
		fmt.Fprintln(out, "No components found.")
		return nil
	}

	switch listFormat {
	case formatJSON:
		return outputListJSON(out, entries)
	case formatYAML:
		return outputListYAML(out, entries)
	default:
		return outputListTable(out, entries)
	}
}

func componentEntries(reg *registry.Registry) []componentEntry {
	entries := make([]componentEntry, 0, reg.Count())
	for _, def := range reg.All() {
		placeholders := def.Placeholders()
		if placeholders == nil {
			placeholders = []string{}
		}
		entries = append(entries, componentEntry{
			Name:         def.Name,
			File:         def.FilePath,
			Placeholders: placeholders,
		})
	}
	return entries
}

func outputListTable(w io.Writer, entries []componentEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFILE\tPLACEHOLDERS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.File, strings.Join(e.Placeholders, ", "))
	}
	return tw.Flush()
}

func outputListJSON(w io.Writer, entries []componentEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func outputListYAML(w io.Writer, entries []componentEntry) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(entries)
}
