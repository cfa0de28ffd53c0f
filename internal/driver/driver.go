// Package driver implements the compiler driver (spec.md §2 component 8):
// it orchestrates parse -> check -> codegen across a module graph rooted at
// one entry source, and returns the final module bytes, exactly as spec.md
// §6 describes the `compile(sourceOrLoader) -> bytes` library entry point.
//
// Per spec.md §5, "one compile session owns a checker context and a codegen
// context, and runs the passes sequentially" — there is no per-module
// checker/codegen re-entry here. Every module reachable from the entry
// source is parsed once (memoised by specifier) and its declarations are
// merged into a single AST before a single Checker/Generator pass runs, so
// cross-module class/interface references resolve the same way same-file
// references do. Each declaration still carries its own source filename in
// its span (attached during parsing), so diagnostics from an imported module
// are attributed correctly even though checking happens in one pass.
package driver

import (
	"fmt"
	"strings"

	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/clog"
	"github.com/zena-lang/zenac/internal/codegen"
	"github.com/zena-lang/zenac/internal/config"
	"github.com/zena-lang/zenac/internal/diag"
	"github.com/zena-lang/zenac/internal/loader"
	"github.com/zena-lang/zenac/internal/parser"
	"github.com/zena-lang/zenac/internal/types"
)

// Result is everything a compile session produces: the emitted module bytes
// (nil if diagnostics blocked codegen) and every diagnostic collected across
// all three passes.
type Result struct {
	Bytes       []byte
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any diagnostic is severe enough to have blocked
// codegen (error or internal-compiler-error; warnings never block it, per
// spec.md §7).
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError || d.Severity == diag.SeverityICE {
			return true
		}
	}
	return false
}

// Driver holds the pieces shared across a compile session: its
// configuration, its module loader, and a logger passes attach phase fields
// to (internal/clog's Phase helper).
type Driver struct {
	cfg *config.Config
	ld  loader.Loader
	log clog.Logger

	parsed map[string]*ast.File // specifier -> parsed module, memoised
}

// New returns a driver ready to compile, wired to the given loader (an
// *loader.FS for the CLI, or a host-supplied implementation per spec.md §6's
// "accepts... a host abstraction resolving module specifiers").
func New(cfg *config.Config, ld loader.Loader, log clog.Logger) *Driver {
	if log == nil {
		log = clog.Default
	}
	return &Driver{cfg: cfg, ld: ld, log: log, parsed: make(map[string]*ast.File)}
}

// CompileSource compiles a single in-memory source string as the entry
// module, following its `use` declarations through the driver's loader.
// This is the `compile(source)` form of spec.md §6's entry point.
func (d *Driver) CompileSource(source, filename string) *Result {
	return d.compile(source, filename)
}

// CompileModule compiles starting from a module specifier resolved through
// the driver's loader. This is the `compile(loader)` form of spec.md §6's
// entry point, when the host names an entry specifier rather than supplying
// raw text directly.
func (d *Driver) CompileModule(specifier string) *Result {
	source, filename, err := d.ld.Load(specifier)
	if err != nil {
		return &Result{Diagnostics: []diag.Diagnostic{{
			Stage:    diag.StageParser,
			Severity: diag.SeverityError,
			Code:     diag.CodeUnknownError,
			Message:  err.Error(),
		}}}
	}
	return d.compile(source, filename)
}

func (d *Driver) compile(source, filename string) *Result {
	var diags []diag.Diagnostic

	entry := d.parseOne(source, filename, &diags)
	if entry == nil {
		return &Result{Diagnostics: diags}
	}

	merged := ast.NewFile(entry.Span())
	merged.Package = entry.Package

	seen := map[string]bool{filename: true}
	d.resolveImports(entry, seen, merged, &diags)
	merged.Decls = append(merged.Decls, entry.Decls...)

	d.log.WithField("module", filename).Debugf("parse complete, %d declaration(s)", len(merged.Decls))

	checker := types.NewChecker()
	checkDiags := checker.CheckWithFilename(merged, filename)
	diags = append(diags, checkDiags...)

	if hasBlockingDiagnostic(diags) {
		d.log.WithField("module", filename).Warnf("check failed with %d diagnostic(s), skipping codegen", len(diags))
		return &Result{Diagnostics: diags}
	}

	out, genDiags := codegen.Generate(merged, checker)
	diags = append(diags, genDiags...)
	return &Result{Bytes: out, Diagnostics: diags}
}

// resolveImports walks file's `use` declarations depth-first, loading and
// parsing each not-yet-seen specifier, recursing into that module's own
// imports, and then appending its declarations to merged (so a module's
// declarations always precede those of its importers).
func (d *Driver) resolveImports(file *ast.File, seen map[string]bool, merged *ast.File, diags *[]diag.Diagnostic) {
	for _, use := range file.Uses {
		specifier := specifierOf(use)
		if seen[specifier] {
			continue
		}
		seen[specifier] = true

		if cached, ok := d.parsed[specifier]; ok {
			d.resolveImports(cached, seen, merged, diags)
			merged.Decls = append(merged.Decls, cached.Decls...)
			continue
		}

		source, filename, err := d.ld.Load(specifier)
		if err != nil {
			*diags = append(*diags, diag.Diagnostic{
				Stage:    diag.StageParser,
				Severity: diag.SeverityError,
				Code:     diag.CodeSymbolNotFound,
				Message:  fmt.Sprintf("cannot resolve module %q: %v", specifier, err),
				Span:     d.toDiagSpan(use),
			})
			continue
		}

		imported := d.parseOne(source, filename, diags)
		if imported == nil {
			continue
		}
		d.parsed[specifier] = imported
		d.resolveImports(imported, seen, merged, diags)
		merged.Decls = append(merged.Decls, imported.Decls...)
	}
}

func (d *Driver) parseOne(source, filename string, diags *[]diag.Diagnostic) *ast.File {
	p := parser.New(source, parser.WithFilename(filename))
	file := p.ParseFile()
	for _, e := range p.Errors() {
		*diags = append(*diags, diag.Diagnostic{
			Stage:    diag.StageParser,
			Severity: e.Severity,
			Code:     diag.CodeParseError,
			Message:  e.Message,
			Span:     diag.Span{Filename: e.Span.Filename, Line: e.Span.Line, Column: e.Span.Column, Start: e.Span.Start, End: e.Span.End},
		})
	}
	return file
}

func (d *Driver) toDiagSpan(n ast.Node) diag.Span {
	s := n.Span()
	return diag.Span{Filename: s.Filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
}

// specifierOf rebuilds a dotted or `zena:`-prefixed module specifier from a
// use declaration's path segments. The parser accepts `.` and `:` as
// interchangeable path separators (parseUseDecl) without recording which one
// was written, so a leading `zena` segment is reconstructed as the
// `zena:`-prefixed builtin form per spec.md §6's example; any other path is
// joined with `.`.
func specifierOf(use *ast.UseDecl) string {
	if len(use.Path) == 0 {
		return ""
	}
	if use.Path[0].Name == "zena" && len(use.Path) > 1 {
		rest := make([]string, 0, len(use.Path)-1)
		for _, seg := range use.Path[1:] {
			rest = append(rest, seg.Name)
		}
		return loader.BuiltinPrefix + strings.Join(rest, ".")
	}
	parts := make([]string, len(use.Path))
	for i, seg := range use.Path {
		parts[i] = seg.Name
	}
	return strings.Join(parts, ".")
}

func hasBlockingDiagnostic(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SeverityError || d.Severity == diag.SeverityICE {
			return true
		}
	}
	return false
}
