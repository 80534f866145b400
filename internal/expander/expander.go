// Package expander inlines component templates into content.
//
// Content is scanned for tags naming registered components; each usage is
// replaced by the component body with its attributes and children bound in.
// Because a body may itself use components, passes repeat until a pass finds
// nothing more to do. Expansion works on raw text: there is no document
// tree, and a component nested directly inside another usage of the same
// component pairs with the wrong closing tag.
//
// Two dialects are supported. The marker dialect uses quoted attributes and
// `<<name>>` placeholders, the expression dialect brace-valued attributes and
// `{name}` placeholders with a `<slot/>` for children.
package expander

import (
	"fmt"

	lerrors "github.com/conneroisu/liquify/internal/errors"
)

// DefaultMaxPasses bounds passes when no limit is configured.
const DefaultMaxPasses = 100

// Expander repeats a dialect's pass over content until it settles.
type Expander struct {
	dialect   Dialect
	maxPasses int
}

// Option configures an Expander.
type Option func(*Expander)

// WithMaxPasses limits how many passes one expansion may run, counting the
// final pass that finds nothing left to do. Values below one select
// DefaultMaxPasses.
func WithMaxPasses(n int) Option {
	return func(e *Expander) {
		e.maxPasses = n
	}
}

// New creates an expander for dialect.
func New(dialect Dialect, opts ...Option) *Expander {
	e := &Expander{dialect: dialect, maxPasses: DefaultMaxPasses}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxPasses < 1 {
		e.maxPasses = DefaultMaxPasses
	}
	return e
}

// Dialect returns the expander's dialect.
func (e *Expander) Dialect() Dialect {
	return e.dialect
}

// Expand rewrites content until a pass has nothing left to expand. A
// component that uses itself, directly or through others, never settles;
// once the pass limit is reached Expand returns the content as last
// rewritten together with an error matching errors.ErrNotConverged.
func (e *Expander) Expand(content string, comps Components) (string, error) {
	for rewrites := 0; ; rewrites++ {
		next, again := e.dialect.Pass(content, comps)
		if !again {
			return next, nil
		}
		if rewrites+1 >= e.maxPasses {
			return next, lerrors.NewExpansionError(
				lerrors.ErrCodeNotConverged,
				fmt.Sprintf("expansion did not converge after %d passes", e.maxPasses),
			).WithContext("dialect", e.dialect.Name())
		}
		content = next
	}
}

// Expand expands content with the marker dialect and the default pass limit.
func Expand(content string, comps Components) (string, error) {
	return New(NewMarkerDialect()).Expand(content, comps)
}

// ExpandExpression expands content with the expression dialect and the
// default pass limit.
func ExpandExpression(content string, comps Components) (string, error) {
	return New(ExpressionDialect{}).Expand(content, comps)
}
