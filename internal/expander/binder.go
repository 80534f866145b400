package expander

import (
	"regexp"
	"strings"
)

// Placeholders describes a dialect's placeholder grammar: how a named
// placeholder is spelled, where children go, and what counts as a leftover
// placeholder to strip after binding.
type Placeholders struct {
	open     string
	close    string
	slot     string
	leftover *regexp.Regexp
}

var (
	// TokenPlaceholders is the `<<name>>` grammar with a `<<children>>` slot.
	TokenPlaceholders = Placeholders{
		open:     "<<",
		close:    ">>",
		slot:     "<<children>>",
		leftover: regexp.MustCompile(`<<\w+>>`),
	}

	// BracePlaceholders is the `{name}` grammar with a `<slot/>` slot.
	BracePlaceholders = Placeholders{
		open:     "{",
		close:    "}",
		slot:     "<slot/>",
		leftover: regexp.MustCompile(`\{\w+\}`),
	}
)

// Token returns the placeholder spelling for name.
func (p Placeholders) Token(name string) string {
	return p.open + name + p.close
}

// Slot returns the children marker.
func (p Placeholders) Slot() string {
	return p.slot
}

// Bind fills body with attribute values and children. Every occurrence of
// each attribute's placeholder is replaced with the literal value, every
// slot with the trimmed children, and any placeholder still left is removed.
// Substitution is plain text and values are not escaped, so placeholder
// syntax inside a value or inside the children is bound and stripped like
// any other.
func (p Placeholders) Bind(body string, attrs Attributes, children string) string {
	out := body
	for _, key := range attrs.keys {
		out = strings.ReplaceAll(out, p.Token(key), attrs.values[key])
	}
	out = strings.ReplaceAll(out, p.slot, strings.TrimSpace(children))
	return p.leftover.ReplaceAllLiteralString(out, "")
}
