// Package codegen lowers a checked zena AST into a WasmGC binary module.
// It targets the function-references and exception-handling proposals: class
// dispatch goes through call_ref against a per-class vtable struct, and
// throw/try/catch lower to a single module-wide exception tag.
package codegen

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/diag"
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

// Generator holds every index the lowering passes need to look up: type
// section slots for classes/interfaces/vtables/structural shapes, function
// indices for methods/constructors/free functions, and the globals holding
// each class's singleton vtable instance.
type Generator struct {
	b       *wasmgc.Builder
	checker *types.Checker
	file    *ast.File

	classTypeIdx      map[*types.Class]uint32 // instance struct type
	classVtableType   map[*types.Class]uint32 // vtable struct type
	classVtableLayout map[*types.Class]wasmgc.VtableLayout
	classVtableGlobal map[*types.Class]uint32
	classCtorFunc     map[*types.Class]uint32
	classMethodFunc   map[*types.Class]map[string]uint32 // class's own slot implementation, by method name
	classes           []*types.Class                     // discovered concrete classes, declaration order

	ifaceVtableType   map[*types.Interface]uint32
	ifaceFatPtrType   map[*types.Interface]uint32
	ifaceLayout       map[*types.Interface]wasmgc.VtableLayout
	classIfaceVtable  map[ifaceInstanceKey]uint32 // (class, interface) -> global holding that class's vtable-for-interface instance
	interfaces        []*types.Interface

	arrayTypeIdx map[string]uint32 // element Type.String() -> array type idx
	tupleTypeIdx map[string]uint32 // Tuple.String() -> struct type idx
	tupleFields  map[string][]types.Type
	recordType   map[string]uint32
	recordFields map[string][]types.RecordField
	funcValType  map[string]uint32 // Function.String() -> func signature type idx (for ref $idx values)

	closureStructIdx map[string]uint32 // Function.String() -> {funcref, ctxref} struct type idx
	closureImplSig   map[string]uint32 // Function.String() -> (anyref ctx, params...) -> ret signature idx
	closureCtxIdx    map[string]uint32 // sorted capture signature -> context struct type idx
	closureCtxFields map[string][]captureVar

	boxedNumberType uint32
	hasBoxedNumber  bool

	captureCellType map[string]uint32 // Type.String() -> one-field mutable cell struct, for mutable closure captures

	stringDataIdx map[string]uint32 // string content -> data segment index

	stringEqFunc       uint32
	hasStringEqFunc    bool
	stringConcatFunc   uint32
	hasStringConcat    bool
	stringGetByteFunc  uint32
	stringHashFunc     uint32
	hasStringHashFunc  bool

	freeFuncIdx   map[*ast.FnDecl]uint32
	freeFuncThunk map[*ast.FnDecl]uint32 // closure-calling-convention wrapper, built lazily when a free function is used as a value

	byteArrayType uint32 // array of i32, zena's ByteArray representation

	exceptionTag uint32

	diags []diag.Diagnostic
}

type ifaceInstanceKey struct {
	class *types.Class
	iface *types.Interface
}

// Generate lowers file into a complete WasmGC binary module, using checker's
// already-populated registries and TypeInfo. Internal invariant violations
// panic with *diag.InternalError, recovered here and reported as an ICE
// diagnostic alongside whatever else was collected.
func Generate(file *ast.File, checker *types.Checker) (out []byte, diags []diag.Diagnostic) {
	g := &Generator{
		b:                 wasmgc.NewBuilder(),
		checker:           checker,
		file:              file,
		classTypeIdx:      make(map[*types.Class]uint32),
		classVtableType:   make(map[*types.Class]uint32),
		classVtableLayout: make(map[*types.Class]wasmgc.VtableLayout),
		classVtableGlobal: make(map[*types.Class]uint32),
		classCtorFunc:     make(map[*types.Class]uint32),
		classMethodFunc:   make(map[*types.Class]map[string]uint32),
		ifaceVtableType:   make(map[*types.Interface]uint32),
		ifaceFatPtrType:   make(map[*types.Interface]uint32),
		ifaceLayout:       make(map[*types.Interface]wasmgc.VtableLayout),
		classIfaceVtable:  make(map[ifaceInstanceKey]uint32),
		arrayTypeIdx:      make(map[string]uint32),
		tupleTypeIdx:      make(map[string]uint32),
		tupleFields:       make(map[string][]types.Type),
		recordType:        make(map[string]uint32),
		recordFields:      make(map[string][]types.RecordField),
		funcValType:       make(map[string]uint32),
		closureStructIdx:  make(map[string]uint32),
		closureImplSig:    make(map[string]uint32),
		closureCtxIdx:     make(map[string]uint32),
		closureCtxFields:  make(map[string][]captureVar),
		stringDataIdx:     make(map[string]uint32),
		freeFuncIdx:       make(map[*ast.FnDecl]uint32),
		freeFuncThunk:     make(map[*ast.FnDecl]uint32),
		captureCellType:   make(map[string]uint32),
	}

	defer func() {
		if r := recover(); r != nil {
			ice, ok := r.(*diag.InternalError)
			if !ok {
				panic(r)
			}
			diags = append(g.diags, ice.AsDiagnostic(diag.StageCodegen))
			out = nil
		}
	}()

	g.discoverClasses()
	g.discoverInterfaces()
	g.buildTypes()
	g.declareExceptionTag()
	g.reserveFuncs()
	g.buildVtableGlobals()
	g.lowerBodies()
	g.buildStringGetByteExport()
	g.buildStart()

	return g.b.Build(), g.diags
}

func (g *Generator) internalError(invariant string, node ast.Node) {
	span := diag.Span{}
	if node != nil {
		s := node.Span()
		span = diag.Span{Filename: s.Filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
	}
	panic(&diag.InternalError{Invariant: invariant, Span: span})
}

// discoverClasses collects every declared class. Generic classes are
// compiled exactly once, in erased form: the checker itself type-checks a
// generic class's body a single time, against its unsubstituted type
// parameters, regardless of how many concrete instantiations
// (List<Number>, List<String>, ...) call sites create. codegen mirrors that:
// a type-parameter-typed field or argument is stored boxed (AnyRef) at the
// Wasm level (see mapType's *TypeParameter case), so every instantiation of
// a generic class shares the one compiled struct/vtable/methods. Any
// instantiated *Class value encountered while lowering (from TypeInfo, or
// resolving a NewExpr's type) is redirected to its GenericSource via
// canonicalClass before any index lookup.
func (g *Generator) discoverClasses() {
	seen := make(map[*types.Class]bool)
	add := func(c *types.Class) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		g.classes = append(g.classes, c)
	}
	for _, name := range sortedClassNames(g.checker.Classes) {
		add(g.checker.Classes[name])
	}
}

// canonicalClass maps an instantiated generic class back to the declared
// source class whose struct/vtable/methods were actually compiled.
func canonicalClass(c *types.Class) *types.Class {
	for c.GenericSource != nil {
		c = c.GenericSource
	}
	return c
}

func (g *Generator) discoverInterfaces() {
	seen := make(map[*types.Interface]bool)
	add := func(i *types.Interface) {
		if i == nil || seen[i] {
			return
		}
		seen[i] = true
		g.interfaces = append(g.interfaces, i)
	}
	for _, name := range sortedInterfaceNames(g.checker.Interfaces) {
		add(g.checker.Interfaces[name])
	}
	for _, c := range g.classes {
		for _, impl := range c.Implements {
			add(impl)
		}
	}
}

func sortedClassNames(m map[string]*types.Class) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sortStrings(names)
	return names
}

func sortedInterfaceNames(m map[string]*types.Interface) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sortStrings(names)
	return names
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// buildStart exports `main`, zena's sole required entry point, under the
// export name "main" when a top-level `fn main()` exists. It does not set a
// Wasm start function; the host calls the exported `main` itself.
func (g *Generator) buildStart() {
	for _, decl := range g.file.Decls {
		fn, ok := decl.(*ast.FnDecl)
		if !ok || fn.Name.Name != "main" {
			continue
		}
		idx, ok := g.freeFuncIdx[fn]
		if !ok {
			continue
		}
		g.b.Export("main", wasmgc.ExportFunc, idx)
	}
}
