// Package config holds a compile session's options: everything cmd/zenac's
// flags populate before handing off to internal/driver. Kept separate from
// the CLI binding itself so the driver and its tests never import
// urfave/cli.
package config

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Config is one compile session's resolved options. Non-goals (spec.md §1)
// mean there is deliberately no optimization-level field here: the core
// never optimizes.
type Config struct {
	// ModuleName is the session's module name. The driver and code
	// generator do not read it, and it is not written into the emitted
	// module: the "name" custom section carries function names only.
	ModuleName string

	// SearchPaths are directories the loader's filesystem resolver
	// searches, in order, for a `use` specifier that isn't `zena:`-prefixed.
	SearchPaths []string

	// DebugNames records the --debug-names flag. The driver and code
	// generator do not read it: every emitted module carries the WasmGC
	// "name" custom section with function names, whether or not it is set.
	DebugNames bool

	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string

	// MinRuntime is the minimum WasmGC runtime version this module targets,
	// validated against semver; informational only; it does not gate any
	// codegen decision, since the core never branches on a target runtime
	// and this spec names a single WasmGC target (spec.md §1).
	MinRuntime string
}

// Default returns a Config with the driver's baseline options.
func Default() *Config {
	return &Config{
		ModuleName: "main",
		LogLevel:   "info",
		MinRuntime: "",
	}
}

// Validate checks field invariants that flag parsing alone can't enforce,
// such as MinRuntime being a well-formed semver when supplied.
func (c *Config) Validate() error {
	if c.MinRuntime != "" && !semver.IsValid(normalizeSemver(c.MinRuntime)) {
		return fmt.Errorf("--min-runtime %q is not a valid semantic version", c.MinRuntime)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("--log-level %q is not one of debug|info|warn|error", c.LogLevel)
	}
	return nil
}

// normalizeSemver prefixes a bare "1.2.3" with "v" since golang.org/x/mod/semver
// requires the leading v that zenac's own --min-runtime flag doesn't.
func normalizeSemver(v string) string {
	if len(v) > 0 && v[0] == 'v' {
		return v
	}
	return "v" + v
}
