// Command zenac is the compiler driver's CLI binding: it wires
// internal/config, internal/loader, internal/driver (parser -> types ->
// codegen -> encoder/wasmgc) together and writes the emitted .wasm bytes,
// replacing the teacher's cmd/malphas LLVM/llc/opt shell-out with a
// direct-to-bytes pipeline since the codegen here already emits a finished
// binary module.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/zena-lang/zenac/internal/clog"
	"github.com/zena-lang/zenac/internal/config"
	"github.com/zena-lang/zenac/internal/diag"
	"github.com/zena-lang/zenac/internal/driver"
	"github.com/zena-lang/zenac/internal/loader"
)

var formatter = diag.NewFormatter()

func main() {
	cmd := &cli.Command{
		Name:  "zenac",
		Usage: "ahead-of-time compiler for zena, emitting binary WasmGC modules",
		Commands: []*cli.Command{
			buildCommand,
			checkCommand,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Aliases: []string{"v"}, Value: "info", Usage: "debug|info|warn|error"},
		},
		Version: "dev",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var sharedFlags = []cli.Flag{
	&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output .wasm path (default: <input base>.wasm)"},
	&cli.StringFlag{Name: "module-name", Value: "main", Usage: "module name (not written into the emitted module)"},
	&cli.StringSliceFlag{Name: "search-path", Aliases: []string{"I"}, Usage: "directory to search for `use` module specifiers (repeatable)"},
	&cli.BoolFlag{Name: "debug-names", Usage: "debug names toggle (the WasmGC name custom section is emitted whether or not it is set)"},
	&cli.StringFlag{Name: "min-runtime", Usage: "minimum WasmGC runtime version this module targets (informational)"},
}

var buildCommand = &cli.Command{
	Name:   "build",
	Usage:  "compile a zena source file to a .wasm module",
	Flags:  sharedFlags,
	Action: runBuild,
}

var checkCommand = &cli.Command{
	Name:   "check",
	Usage:  "compile and report diagnostics, without writing a .wasm file",
	Flags:  []cli.Flag{&cli.StringSliceFlag{Name: "search-path", Aliases: []string{"I"}, Usage: "directory to search for `use` module specifiers (repeatable)"}},
	Action: runCheck,
}

func buildConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()
	if v := cmd.String("module-name"); v != "" {
		cfg.ModuleName = v
	}
	cfg.SearchPaths = cmd.StringSlice("search-path")
	cfg.DebugNames = cmd.Bool("debug-names")
	cfg.MinRuntime = cmd.String("min-runtime")
	if lvl := cmd.Root().String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) clog.Logger {
	log := clog.New()
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		log.SetLevel("info")
	}
	return log
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("usage: zenac build [flags] <file>")
	}
	filename := cmd.Args().First()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	searchPaths := cfg.SearchPaths
	searchPaths = append(searchPaths, filepath.Dir(filename))
	ld := loader.NewFS(searchPaths)
	log := newLogger(cfg)

	d := driver.New(cfg, ld, log)
	result := d.CompileSource(string(src), filename)

	for _, dg := range result.Diagnostics {
		formatter.Format(dg)
	}

	if result.HasErrors() {
		return fmt.Errorf("compilation failed with %d diagnostic(s)", len(result.Diagnostics))
	}

	out := cmd.String("out")
	if out == "" {
		base := filepath.Base(filename)
		ext := filepath.Ext(base)
		out = base[:len(base)-len(ext)] + ".wasm"
	}
	if err := os.WriteFile(out, result.Bytes, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", out, len(result.Bytes))
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("usage: zenac check [flags] <file>")
	}
	filename := cmd.Args().First()

	cfg := config.Default()
	cfg.SearchPaths = cmd.StringSlice("search-path")

	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	searchPaths := append(cfg.SearchPaths, filepath.Dir(filename))
	ld := loader.NewFS(searchPaths)

	d := driver.New(cfg, ld, clog.Default)
	result := d.CompileSource(string(src), filename)

	for _, dg := range result.Diagnostics {
		formatter.Format(dg)
	}

	if result.HasErrors() {
		return fmt.Errorf("check found %d diagnostic(s)", len(result.Diagnostics))
	}
	fmt.Println("ok")
	return nil
}
