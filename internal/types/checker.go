package types

import (
	"fmt"

	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/diag"
)

// ModuleInfo is the result of checking a single file: its global scope and
// any diagnostics raised along the way.
type ModuleInfo struct {
	GlobalScope *Scope
	Diagnostics []diag.Diagnostic
}

// Checker holds all state needed to check a compilation unit. It is used in
// two passes: collectDecls populates GlobalScope and the Classes/Interfaces/
// Mixins/Enums registries with fully resolved signatures (so forward
// references between declarations work), then checkBodies walks every
// function/method/constructor body against that registry.
type Checker struct {
	GlobalScope *Scope
	Env         *Environment
	Interner    *Interner

	Classes    map[string]*Class
	Interfaces map[string]*Interface
	Mixins     map[string]*Mixin
	Enums      map[string]*Enum
	Aliases    map[string]*TypeAlias

	// TypeInfo records the resolved type of every expression node checked,
	// keyed by identity, for codegen to query after Check returns.
	TypeInfo map[ast.Expr]Type

	filename    string
	diagnostics []diag.Diagnostic

	currentClass *Class
	initialized  bool // whether `this` is considered initialized (super() already called)
}

// Enum is the semantic form of an EnumDecl: a closed set of variants, each
// represented at runtime as a distinct WasmGC struct subtype of a common
// supertype.
type Enum struct {
	Name       string
	TypeParams []*TypeParameter
	Variants   []EnumVariant
	Methods    []Method
}

func (e *Enum) String() string { return e.Name }
func (e *Enum) IsType()        {}

// EnumVariant is one case of an Enum, optionally carrying fields.
type EnumVariant struct {
	Name   string
	Fields []Field
}

// NewChecker constructs an empty checker ready for collectDecls.
func NewChecker() *Checker {
	return &Checker{
		GlobalScope: NewScope(nil),
		Env:         NewEnvironment(),
		Interner:    NewInterner(),
		Classes:     make(map[string]*Class),
		Interfaces:  make(map[string]*Interface),
		Mixins:      make(map[string]*Mixin),
		Enums:       make(map[string]*Enum),
		Aliases:     make(map[string]*TypeAlias),
		TypeInfo:    make(map[ast.Expr]Type),
	}
}

// Check runs both passes over file and returns the accumulated diagnostics.
func (c *Checker) Check(file *ast.File) []diag.Diagnostic {
	return c.CheckWithFilename(file, "")
}

// CheckWithFilename is Check with an explicit filename attached to every
// emitted diagnostic's span.
func (c *Checker) CheckWithFilename(file *ast.File, filename string) (diags []diag.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			ice, ok := r.(*diag.InternalError)
			if !ok {
				panic(r)
			}
			diags = append(c.diagnostics, ice.AsDiagnostic(diag.StageCheck))
		}
	}()
	c.filename = filename
	c.collectDecls(file)
	c.checkBodies(file)
	return c.diagnostics
}

func (c *Checker) toDiagSpan(span ast.Node) diag.Span {
	s := span.Span()
	filename := s.Filename
	if filename == "" {
		filename = c.filename
	}
	return diag.Span{Filename: filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
}

func (c *Checker) report(code diag.Code, message string, node ast.Node) {
	c.diagnostics = append(c.diagnostics, diag.Diagnostic{
		Stage:    diag.StageCheck,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  message,
		Span:     c.toDiagSpan(node),
	})
}

func (c *Checker) reportWithSuggestion(code diag.Code, message string, node ast.Node, candidates []string, name string) {
	d := diag.Diagnostic{
		Stage:    diag.StageCheck,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  message,
		Span:     c.toDiagSpan(node),
	}
	d.Suggestion = diag.SuggestSymbol(name, candidates)
	c.diagnostics = append(c.diagnostics, d)
}

// internalError panics with an InternalError; CheckWithFilename recovers it
// and returns it as an ICE diagnostic. Used for conditions the checker's own construction should have
// already ruled out (a nil registry entry for a name collectDecls reserved).
func (c *Checker) internalError(invariant string, node ast.Node) {
	span := diag.Span{}
	if node != nil {
		span = c.toDiagSpan(node)
	}
	panic(&diag.InternalError{Invariant: invariant, Span: span})
}

// resolveType turns a parsed TypeExpr into a semantic Type, looking up named
// types against the checker's registries and the current generic scope.
func (c *Checker) resolveType(t ast.TypeExpr, scope *Scope) Type {
	if t == nil {
		return Void
	}

	switch t := t.(type) {
	case *ast.NamedType:
		return c.resolveNamedType(t.Name.Name, t)
	case *ast.GenericTypeExpr:
		base := c.resolveNamedType(t.Base.Name.Name, t.Base)
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.resolveType(a, scope)
		}
		if class, ok := base.(*Class); ok {
			return c.Interner.Instantiate(class, args)
		}
		return base
	case *ast.ArrayTypeExpr:
		return &Array{Elem: c.resolveType(t.Elem, scope)}
	case *ast.TupleType:
		elems := make([]Type, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = c.resolveType(e, scope)
		}
		return &Tuple{Elements: elems, Unboxed: t.Unboxed}
	case *ast.RecordType:
		fields := make([]RecordField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = RecordField{Name: f.Name.Name, Type: c.resolveType(f.Type, scope)}
		}
		return &Record{Fields: fields}
	case *ast.FunctionType:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.resolveType(p, scope)
		}
		return &Function{Params: params, Return: c.resolveType(t.ReturnType, scope)}
	case *ast.UnionTypeExpr:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.resolveType(m, scope)
		}
		return &Union{Members: members}
	default:
		c.internalError(fmt.Sprintf("unhandled type expression %T", t), t)
		return Unknown
	}
}

func (c *Checker) resolveNamedType(name string, node ast.Node) Type {
	switch name {
	case "Number":
		return Number
	case "Boolean":
		return Boolean
	case "Void":
		return Void
	case "Null":
		return Null
	case "Never":
		return Never
	case "Any":
		return Any
	case "AnyRef":
		return AnyRef
	case "Unknown":
		return Unknown
	case "ByteArray":
		return ByteArr
	case "This":
		return This
	}

	if class, ok := c.Classes[name]; ok {
		return class
	}
	if iface, ok := c.Interfaces[name]; ok {
		return iface
	}
	if mixin, ok := c.Mixins[name]; ok {
		return mixin
	}
	if enum, ok := c.Enums[name]; ok {
		return enum
	}
	if alias, ok := c.Aliases[name]; ok {
		return alias
	}
	if sym := c.GlobalScope.Lookup(name); sym != nil {
		if tp, ok := sym.Type.(*TypeParameter); ok {
			return tp
		}
	}

	candidates := make([]string, 0, len(c.Classes)+len(c.Interfaces)+len(c.Mixins)+len(c.Enums))
	for n := range c.Classes {
		candidates = append(candidates, n)
	}
	for n := range c.Interfaces {
		candidates = append(candidates, n)
	}
	for n := range c.Mixins {
		candidates = append(candidates, n)
	}
	for n := range c.Enums {
		candidates = append(candidates, n)
	}
	c.reportWithSuggestion(diag.CodeSymbolNotFound, "undefined type `"+name+"`", node, candidates, name)
	return Unknown
}
