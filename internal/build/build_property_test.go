//go:build property

package build

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestMapperProperties validates the output path mapping
func TestMapperProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	mapper := NewMapper("components")

	// Property: outside templates, output paths are never deeper than two segments
	properties.Property("output depth is at most two", prop.ForAll(
		func(folder string, rest []string) bool {
			if folder == "templates" || folder == "components" {
				return true
			}
			rel := strings.Join(append([]string{folder}, rest...), "/")
			out, ok := mapper.Map(rel)
			return ok && len(strings.Split(out, "/")) <= 2
		},
		gen.Identifier(),
		gen.SliceOfN(4, gen.Identifier()),
	))

	// Property: the top-level folder is preserved
	properties.Property("top-level folder preserved", prop.ForAll(
		func(folder string, rest []string) bool {
			if folder == "components" {
				return true
			}
			rel := strings.Join(append([]string{folder}, rest...), "/")
			out, ok := mapper.Map(rel)
			return ok && strings.Split(out, "/")[0] == folder
		},
		gen.Identifier(),
		gen.SliceOf(gen.Identifier()),
	))

	// Property: templates keep their full relative path
	properties.Property("templates are not flattened", prop.ForAll(
		func(rest []string) bool {
			rel := strings.Join(append([]string{"templates"}, rest...), "/")
			out, ok := mapper.Map(rel)
			return ok && out == rel
		},
		gen.SliceOf(gen.Identifier()),
	))

	// Property: nothing under the component directory is emitted
	properties.Property("components are never emitted", prop.ForAll(
		func(rest []string) bool {
			_, ok := mapper.Map(strings.Join(append([]string{"components"}, rest...), "/"))
			return !ok
		},
		gen.SliceOf(gen.Identifier()),
	))

	// Property: equal content always hashes equal
	properties.Property("digest is deterministic", prop.ForAll(
		func(content string) bool {
			return HashBytes([]byte(content)) == HashBytes([]byte(content))
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
