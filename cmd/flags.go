package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatText  = "text"
)

// choiceValue is a string flag restricted to a fixed set of values. Invalid
// values are rejected while flags are parsed.
type choiceValue struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(def string, p *string, allowed ...string) *choiceValue {
	*p = def
	return &choiceValue{value: p, allowed: allowed}
}

func (c *choiceValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range c.allowed {
		if s == a {
			*c.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(c.allowed, ", "))
}

func (c *choiceValue) String() string {
	if c.value == nil {
		return ""
	}
	return *c.value
}

func (c *choiceValue) Type() string {
	return "string"
}

// addFormatFlag registers --name/-short limited to allowed, defaulting to
// the first allowed value.
func addFormatFlag(fs *pflag.FlagSet, p *string, name, short string, allowed ...string) {
	fs.VarP(newChoiceValue(allowed[0], p, allowed...), name, short,
		fmt.Sprintf("Output format (%s)", strings.Join(allowed, "|")))
}
