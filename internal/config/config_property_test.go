//go:build property

package config

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigurationProperties tests configuration validation properties
func TestConfigurationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4321)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	validConfig := func(src, out string, passes int) *Config {
		cfg := &Config{
			Source:    SourceConfig{Dir: src, Components: "components"},
			Output:    OutputConfig{Dir: out, Folders: DefaultOutputFolders},
			Expansion: ExpansionConfig{Dialect: DialectMarker, MaxPasses: passes, Extension: ".liquid"},
			Watch:     WatchConfig{Ignore: []string{".*"}},
			Sync:      SyncConfig{Enabled: true, Files: []string{"config/settings_data.json"}},
		}
		return cfg
	}

	// Property: relative directory trees without traversal validate
	properties.Property("nested relative paths are valid", prop.ForAll(
		func(segments []string, passes int) bool {
			if len(segments) == 0 {
				return true
			}
			src := strings.Join(segments, "/")
			return validateConfig(validConfig(src, src+"_build", passes)) == nil
		},
		gen.SliceOfN(3, gen.Identifier()),
		gen.IntRange(1, 1000),
	))

	// Property: any traversal out of the root is rejected
	properties.Property("parent traversal is rejected", prop.ForAll(
		func(depth int, tail string) bool {
			path := strings.Repeat("../", depth) + tail
			return validatePath(path) != nil
		},
		gen.IntRange(1, 5),
		gen.Identifier(),
	))

	// Property: equal source and output directories are rejected
	properties.Property("source must differ from output", prop.ForAll(
		func(dir string) bool {
			return validateConfig(validConfig(dir, "./"+dir, 10)) != nil
		},
		gen.Identifier(),
	))

	// Property: non-positive pass limits are rejected
	properties.Property("max passes must be positive", prop.ForAll(
		func(passes int) bool {
			return validateConfig(validConfig("src", "build", passes)) != nil
		},
		gen.IntRange(-1000, 0),
	))

	properties.TestingRun(t)
}
