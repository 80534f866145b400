package expander

import (
	"regexp"
)

// Attributes is an ordered key/value mapping parsed from a tag. Keys keep the
// position of their first occurrence; a repeated key takes the later value.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes builds attributes from alternating key/value strings.
func NewAttributes(pairs ...string) Attributes {
	var a Attributes
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}
	return a
}

// Set stores value under key.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the keys in first-occurrence order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// Len returns the number of distinct keys.
func (a Attributes) Len() int {
	return len(a.keys)
}

var (
	quotedAttrPattern = regexp.MustCompile(`(\w+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	braceAttrPattern  = regexp.MustCompile(`(\w+)\s*=\s*\{(\d+|'[^']*'|"[^"]*")\}`)
)

// ParseAttributes extracts `key="value"` and `key='value'` pairs from the
// attribute text of a tag. Text that is not a well-formed pair is ignored.
func ParseAttributes(text string) Attributes {
	var attrs Attributes
	for _, m := range quotedAttrPattern.FindAllStringSubmatchIndex(text, -1) {
		key := text[m[2]:m[3]]
		if m[4] >= 0 {
			attrs.Set(key, text[m[4]:m[5]])
		} else {
			attrs.Set(key, text[m[6]:m[7]])
		}
	}
	return attrs
}

// ParseExpressionAttributes extracts `key={123}`, `key={'text'}` and
// `key={"text"}` pairs. The braces and the enclosing quotes are dropped.
func ParseExpressionAttributes(text string) Attributes {
	var attrs Attributes
	for _, m := range braceAttrPattern.FindAllStringSubmatch(text, -1) {
		attrs.Set(m[1], unquote(m[2]))
	}
	return attrs
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
