// Package cmd provides the command-line interface for liquify.
//
// Configuration System:
//
//	Settings are resolved from several sources, highest priority first:
//	1. Command-line flags (--config, --log-level)
//	2. LIQUIFY_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (LIQUIFY_OUTPUT_DIR, etc.)
//	4. Configuration file (.liquify.yml in the working directory)
//
// Environment Variables:
//
//	LIQUIFY_CONFIG_FILE: Path to custom configuration file
//	LIQUIFY_SOURCE_DIR: Override the theme source directory
//	LIQUIFY_OUTPUT_DIR: Override the build output directory
//	LIQUIFY_EXPANSION_DIALECT: marker or expression
//	And every other key following the LIQUIFY_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/conneroisu/liquify/internal/build"
	"github.com/conneroisu/liquify/internal/config"
	lerrors "github.com/conneroisu/liquify/internal/errors"
	"github.com/conneroisu/liquify/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "liquify",
	Short: "Component macros for Liquid themes",
	Long: `Liquify builds a Liquid theme from a source tree that uses reusable
components. Component usages written as tags are expanded inline, the
source layout is flattened into the folders a theme expects, and settings
edited in the build output are synced back to the source.

Quick Start:
  liquify new card                Scaffold a component
  liquify build                   Build the theme once
  liquify watch                   Build, then rebuild on every change
  liquify list                    List registered components
  liquify expand page.liquid      Print one file expanded

Command Aliases:
  build (b), watch (w), list (l), expand (x)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Errors are printed with any suggestions their codes carry.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, lerrors.FormatSuggestions("Error: "+err.Error(), lerrors.Suggestions(err)))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .liquify.yml, can also use LIQUIFY_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points viper at the configuration file and binds the
// LIQUIFY_ environment overrides. A missing file is not an error; every
// setting has a default.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("LIQUIFY_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".liquify")
	}

	if err := config.BindEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// environment is what every theme command starts from: the loaded
// configuration, a logger and a pipeline sharing one set of digests.
type environment struct {
	cfg      *config.Config
	logger   logging.Logger
	hashes   *build.HashProvider
	pipeline *build.Pipeline
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	hashes := build.NewHashProvider()
	pipeline, err := build.NewPipeline(cfg, hashes, logger)
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:      cfg,
		logger:   logger,
		hashes:   hashes,
		pipeline: pipeline,
	}, nil
}

func newLogger(cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	}), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
