package errors

import (
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

var suggestionsByCode = map[string][]ErrorSuggestion{
	ErrCodeNotConverged: {
		{
			Title:       "Look for a component that uses itself",
			Description: "A component whose body uses its own tag, directly or through another component, never finishes expanding",
			Example:     "components/Card.liquid containing <Card/>",
		},
		{
			Title:       "Raise the pass limit for deeply nested components",
			Description: "Each level of nesting needs one more pass",
			Example:     "expansion:\n       max_passes: 200",
		},
	},
	ErrCodeInvalidSettings: {
		{
			Title:       "Fix the settings file in the build output",
			Description: "The file must be JSON; comments and trailing commas are allowed. The source copy was left unchanged",
		},
	},
	ErrCodeConfigInvalid: {
		{
			Title:       "Check the configuration file",
			Description: "Settings are read from .liquify.yml, LIQUIFY_CONFIG_FILE or --config, then LIQUIFY_ environment variables",
			Example:     "source:\n       dir: ./src\n     output:\n       dir: ./build",
		},
	},
	ErrCodeScanIO: {
		{
			Title:       "Check the component directory is readable",
			Description: "Every file under source.components is read when components are loaded",
			Command:     "liquify list",
		},
	},
	ErrCodeWriteOutput: {
		{
			Title:       "Check the output directory is writable",
			Description: "output.dir and its folders are created on the first build",
		},
	},
}

// Codes returns the distinct LiquifyError codes found anywhere in err's
// tree, in the order they are first found.
func Codes(err error) []string {
	var codes []string
	seen := make(map[string]bool)
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if le, ok := err.(*LiquifyError); ok && le.Code != "" && !seen[le.Code] {
			seen[le.Code] = true
			codes = append(codes, le.Code)
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return codes
}

// Suggestions returns fixes for every coded error in err.
func Suggestions(err error) []ErrorSuggestion {
	var suggestions []ErrorSuggestion
	for _, code := range Codes(err) {
		suggestions = append(suggestions, suggestionsByCode[code]...)
	}
	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
		output.WriteString("\n")
	}

	return output.String()
}
