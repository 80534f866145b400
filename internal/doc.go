// Package internal contains the core implementation packages for liquify.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - registry: Component definitions scanned from the component directory
//   - expander: Tag expansion in the marker and expression dialects
//   - build: Output path mapping, the build pipeline and settings sync
//   - watcher: File system monitoring with debouncing
//   - config: Viper-backed configuration with LIQUIFY_ overrides
//   - logging: Structured logging on log/slog
//   - errors: Coded errors, per-file collection and fix suggestions
//   - version: Build information
//   - testutils: Throwaway theme projects for tests
//
// # Data Flow
//
// The watcher reports debounced changes to the command layer, which hands
// each file to the build pipeline. The pipeline reloads the registry from
// disk, expands template files through the expander and copies everything
// else, skipping assets whose blake3 digest has not changed. Settings files
// edited in the build output flow back to the source through the syncer.
//
// # Testing Strategy
//
//   - Unit tests with testify in every package
//   - Property tests with gopter behind the property build tag
//   - Fuzz tests for attribute parsing, expansion and configuration
//   - Integration tests behind the integration build tag
package internal
