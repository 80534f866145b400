package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// FuzzLoadConfig tests configuration loading with various malformed inputs
func FuzzLoadConfig(f *testing.F) {
	f.Add(`source:
  dir: ./src
  components: components
output:
  dir: ./build`)

	f.Add(`expansion:
  dialect: expression
  max_passes: "lots"`)

	f.Add(`expansion:
  max_passes: -5
  extension: liquid`)

	f.Add(`source:
  components: ../../etc`)

	f.Add(`watch:
  debounce: 1h
  ignore: ["[", ".*"]`)

	f.Add(`malformed: yaml: content`)
	f.Add(``)

	f.Fuzz(func(t *testing.T, yamlContent string) {
		if len(yamlContent) > 50000 {
			t.Skip("Config content too large")
		}

		viper.Reset()
		defer viper.Reset()

		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, ".liquify.yml")
		if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
			t.Skip("Could not write config file")
		}

		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return
		}

		config, err := Load()
		if err != nil {
			return
		}

		// A loaded config has passed validation.
		if config.Expansion.MaxPasses < 1 {
			t.Errorf("max_passes %d accepted", config.Expansion.MaxPasses)
		}
		if !strings.HasPrefix(config.Expansion.Extension, ".") {
			t.Errorf("extension %q accepted", config.Expansion.Extension)
		}
		if config.Expansion.Dialect != DialectMarker && config.Expansion.Dialect != DialectExpression {
			t.Errorf("dialect %q accepted", config.Expansion.Dialect)
		}
		for _, dir := range []string{config.Source.Dir, config.Source.Components, config.Output.Dir} {
			if validatePath(dir) != nil {
				t.Errorf("invalid path %q accepted", dir)
			}
		}
	})
}

// FuzzValidatePath checks a path accepted by validatePath never climbs out
// of its root once cleaned.
func FuzzValidatePath(f *testing.F) {
	f.Add("./src")
	f.Add("../outside")
	f.Add("a/b/../../..")
	f.Add("config/settings_data.json")
	f.Add("")

	f.Fuzz(func(t *testing.T, path string) {
		if validatePath(path) != nil {
			return
		}
		clean := filepath.ToSlash(filepath.Clean(path))
		if clean == ".." || strings.HasPrefix(clean, "../") {
			t.Errorf("path %q escapes its root", path)
		}
	})
}
