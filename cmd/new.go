package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/conneroisu/liquify/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new component",
	Long: `Create a component file in the component directory.

The name is converted to the tag form used in templates: words separated by
dashes, underscores or spaces are joined and capitalized, so "product-card"
becomes ProductCard and is used as <ProductCard>. The scaffold matches the
configured dialect. Existing files are never overwritten.

Examples:
  liquify new card
  liquify new product-card`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

var componentNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

var titler = cases.Title(language.Und, cases.NoLower)

// componentName turns user input into a tag name.
func componentName(input string) (string, error) {
	words := strings.FieldsFunc(input, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		words[i] = titler.String(w)
	}
	name := strings.Join(words, "")
	if !componentNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid component name %q: use letters and digits, starting with a letter", input)
	}
	return name, nil
}

// scaffold returns the initial body of a component for dialect.
func scaffold(dialect string) string {
	if dialect == config.DialectExpression {
		return "<div class=\"{class}\">\n  <slot/>\n</div>\n"
	}
	return "<!-- component -->\n<div class=\"<<class>>\">\n  <<children>>\n</div>\n"
}

func runNew(cmd *cobra.Command, args []string) error {
	name, err := componentName(args[0])
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	dir := env.cfg.ComponentsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create component directory: %w", err)
	}

	path := filepath.Join(dir, name+env.cfg.Expansion.Extension)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("component %s already exists at %s", name, path)
		}
		return fmt.Errorf("failed to create component: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(scaffold(env.cfg.Expansion.Dialect)); err != nil {
		return fmt.Errorf("failed to write component: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created component %s at %s\n", name, path)
	return nil
}
