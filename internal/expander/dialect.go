package expander

import (
	"fmt"
	"sort"
	"sync"
)

// Dialect names accepted by ForName and the expansion.dialect setting.
const (
	DialectMarker     = "marker"
	DialectExpression = "expression"
)

// Components is the read-only view of a registry that expansion needs.
// Names fixes the order components are tried in within a pass.
type Components interface {
	Names() []string
	Body(name string) (string, bool)
}

// Map is a Components backed by a plain name to body map. Names are
// returned in sorted order.
type Map map[string]string

// Names returns the sorted component names.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Body returns the body registered under name.
func (m Map) Body(name string) (string, bool) {
	body, ok := m[name]
	return body, ok
}

// Dialect is one tag and placeholder syntax. Pass rewrites every usage it
// can find once and reports whether the content should be passed again.
type Dialect interface {
	Name() string
	Placeholders() Placeholders
	Pass(content string, comps Components) (string, bool)
}

// ForName returns the dialect registered under name.
func ForName(name string) (Dialect, error) {
	switch name {
	case DialectMarker, "":
		return NewMarkerDialect(), nil
	case DialectExpression:
		return ExpressionDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (expected %q or %q)", name, DialectMarker, DialectExpression)
	}
}

// MarkerDialect expands `<Name attr="v"/>` and `<Name attr="v">...</Name>`
// into component bodies using `<<name>>` placeholders. Within one pass each
// registered name is tried in registry order, self-closing usages before
// paired ones. Another pass is needed whenever the content changed.
//
// Compiled patterns are cached per name. The cache only holds names of the
// components most recently passed in, so renamed or deleted components do
// not accumulate over a long watch session.
type MarkerDialect struct {
	mu       sync.Mutex
	scanners map[string][2]*regexScanner
}

// NewMarkerDialect creates a marker dialect with an empty pattern cache.
func NewMarkerDialect() *MarkerDialect {
	return &MarkerDialect{scanners: make(map[string][2]*regexScanner)}
}

// Name implements Dialect.
func (d *MarkerDialect) Name() string { return DialectMarker }

// Placeholders implements Dialect.
func (d *MarkerDialect) Placeholders() Placeholders { return TokenPlaceholders }

// Pass implements Dialect.
func (d *MarkerDialect) Pass(content string, comps Components) (string, bool) {
	names := comps.Names()
	scanners := d.scannersFor(names)

	out := content
	for i, name := range names {
		body, ok := comps.Body(name)
		if !ok {
			continue
		}
		render := func(u TagUsage) string {
			return TokenPlaceholders.Bind(body, u.Attributes, u.InnerContent)
		}

		out, _ = replaceAll(out, scanners[i][0], render)
		out, _ = replaceAll(out, scanners[i][1], render)
	}
	return out, out != content
}

// scannersFor returns the scanner pair of every name, compiling missing
// ones, and drops cached pairs for names no longer present.
func (d *MarkerDialect) scannersFor(names []string) [][2]*regexScanner {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scanners == nil {
		d.scanners = make(map[string][2]*regexScanner, len(names))
	}

	pairs := make([][2]*regexScanner, len(names))
	current := make(map[string]bool, len(names))
	for i, name := range names {
		current[name] = true
		pair, ok := d.scanners[name]
		if !ok {
			selfClosing, paired := markerScanners(name)
			pair = [2]*regexScanner{selfClosing, paired}
			d.scanners[name] = pair
		}
		pairs[i] = pair
	}

	if len(d.scanners) > len(current) {
		for name := range d.scanners {
			if !current[name] {
				delete(d.scanners, name)
			}
		}
	}
	return pairs
}

// ExpressionDialect expands capitalized tags with brace-valued attributes,
// `<Name a={1} b={'x'}>...</Name>`, into component bodies using `{name}`
// placeholders and a `<slot/>` children marker. A pass replaces paired
// usages first and then self-closing ones; another pass is needed whenever a
// registered tag was found, even if its expansion left the text unchanged.
type ExpressionDialect struct{}

// Name implements Dialect.
func (ExpressionDialect) Name() string { return DialectExpression }

// Placeholders implements Dialect.
func (ExpressionDialect) Placeholders() Placeholders { return BracePlaceholders }

// Pass implements Dialect.
func (ExpressionDialect) Pass(content string, comps Components) (string, bool) {
	known := knownNames(comps)
	render := func(u TagUsage) string {
		body, _ := comps.Body(u.ComponentName)
		return BracePlaceholders.Bind(body, u.Attributes, u.InnerContent)
	}

	out, pairedFound := replaceAll(content, expressionScanner{paired: true, known: known}, render)
	out, selfFound := replaceAll(out, expressionScanner{known: known}, render)
	return out, pairedFound || selfFound
}
