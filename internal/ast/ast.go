package ast

import "github.com/zena-lang/zenac/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl represents a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// File represents a parsed compilation unit.
type File struct {
	Package *PackageDecl
	Mods    []*ModDecl
	Uses    []*UseDecl
	Decls   []Decl
	span    lexer.Span
}

func (f *File) Span() lexer.Span     { return f.span }
func (f *File) SetSpan(s lexer.Span) { f.span = s }

func NewFile(span lexer.Span) *File { return &File{span: span} }

// PackageDecl names the package a file belongs to.
type PackageDecl struct {
	Name *Ident
	span lexer.Span
}

func (d *PackageDecl) Span() lexer.Span { return d.span }

func NewPackageDecl(name *Ident, span lexer.Span) *PackageDecl {
	return &PackageDecl{Name: name, span: span}
}

// ModDecl declares a submodule of the current file's package.
type ModDecl struct {
	Name *Ident
	span lexer.Span
}

func (d *ModDecl) Span() lexer.Span { return d.span }
func (*ModDecl) declNode()          {}

func NewModDecl(name *Ident, span lexer.Span) *ModDecl {
	return &ModDecl{Name: name, span: span}
}

// UseDecl imports a module, either a user module path or a `zena:`-prefixed built-in.
type UseDecl struct {
	Path  []*Ident
	Alias *Ident
	span  lexer.Span
}

func (d *UseDecl) Span() lexer.Span { return d.span }
func (*UseDecl) declNode()          {}

func NewUseDecl(path []*Ident, alias *Ident, span lexer.Span) *UseDecl {
	return &UseDecl{Path: path, Alias: alias, span: span}
}

// GenericParam is a single type parameter of a generic declaration.
type GenericParam struct {
	Name       *Ident
	Constraint TypeExpr // may be nil
}

// Param is a single function/method parameter.
type Param struct {
	Name *Ident
	Type TypeExpr
	span lexer.Span
}

func (p *Param) Span() lexer.Span { return p.span }

func NewParam(name *Ident, typ TypeExpr, span lexer.Span) *Param {
	return &Param{Name: name, Type: typ, span: span}
}

// FnDecl represents a free function declaration.
type FnDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []GenericParam
	Params     []*Param
	ReturnType TypeExpr
	Body       *BlockExpr
	span       lexer.Span
}

func (d *FnDecl) Span() lexer.Span { return d.span }
func (*FnDecl) declNode()          {}

func NewFnDecl(isPub bool, name *Ident, typeParams []GenericParam, params []*Param, returnType TypeExpr, body *BlockExpr, span lexer.Span) *FnDecl {
	return &FnDecl{Pub: isPub, Name: name, TypeParams: typeParams, Params: params, ReturnType: returnType, Body: body, span: span}
}

// AccessorKind distinguishes a plain method from a property accessor.
type AccessorKind int

const (
	AccessorNone AccessorKind = iota
	AccessorGet
	AccessorSet
)

// MethodDecl is a method belonging to a class, interface, or mixin.
type MethodDecl struct {
	Fn         *FnDecl
	IsAbstract bool
	IsOverride bool
	IsStatic   bool
	IsFinal    bool
	Accessor   AccessorKind
}

// ClassField is a field declared directly on a class body.
type ClassField struct {
	Name *Ident
	Type TypeExpr
	Mut  bool
	span lexer.Span
}

func (f *ClassField) Span() lexer.Span { return f.span }

func NewClassField(name *Ident, typ TypeExpr, mut bool, span lexer.Span) *ClassField {
	return &ClassField{Name: name, Type: typ, Mut: mut, span: span}
}

// ClassDecl declares a class: fields, a constructor, methods, an optional
// superclass, zero or more mixins applied with `with`, and zero or more
// interfaces satisfied with `implements`.
type ClassDecl struct {
	Pub         bool
	Final       bool
	Abstract    bool
	Extension   bool     // true for `extension class X on T { ... }`
	On          TypeExpr // the underlying type an extension class attaches to; nil unless Extension
	Name        *Ident
	TypeParams  []GenericParam
	Super       TypeExpr // nil if no explicit superclass
	Mixins      []TypeExpr
	Implements  []TypeExpr
	Fields      []*ClassField
	Constructor *MethodDecl // nil if the class has no explicit constructor
	Methods     []*MethodDecl
	span        lexer.Span
}

func (d *ClassDecl) Span() lexer.Span     { return d.span }
func (d *ClassDecl) SetSpan(s lexer.Span) { d.span = s }
func (*ClassDecl) declNode()              {}

func NewClassDecl(span lexer.Span) *ClassDecl { return &ClassDecl{span: span} }

// InterfaceDecl declares an interface: method signatures and field
// signatures that conforming classes must provide, plus interfaces it
// extends.
type InterfaceDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []GenericParam
	Extends    []TypeExpr
	Fields     []*ClassField
	Methods    []*MethodDecl
	span       lexer.Span
}

func (d *InterfaceDecl) Span() lexer.Span     { return d.span }
func (d *InterfaceDecl) SetSpan(s lexer.Span) { d.span = s }
func (*InterfaceDecl) declNode()              {}

func NewInterfaceDecl(span lexer.Span) *InterfaceDecl { return &InterfaceDecl{span: span} }

// MixinDecl declares a mixin: a bundle of fields and methods applicable to
// any class whose superclass chain is assignable to On, contributing its own
// Implements list to classes that apply it with `with`.
type MixinDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []GenericParam
	On         TypeExpr
	Implements []TypeExpr
	Fields     []*ClassField
	Methods    []*MethodDecl
	span       lexer.Span
}

func (d *MixinDecl) Span() lexer.Span     { return d.span }
func (d *MixinDecl) SetSpan(s lexer.Span) { d.span = s }
func (*MixinDecl) declNode()              {}

func NewMixinDecl(span lexer.Span) *MixinDecl { return &MixinDecl{span: span} }

// EnumVariant is one case of an EnumDecl, optionally carrying fields.
type EnumVariant struct {
	Name   *Ident
	Fields []*ClassField
	span   lexer.Span
}

func (v *EnumVariant) Span() lexer.Span { return v.span }

func NewEnumVariant(name *Ident, fields []*ClassField, span lexer.Span) *EnumVariant {
	return &EnumVariant{Name: name, Fields: fields, span: span}
}

// EnumDecl declares an algebraic type as a closed union of variants.
type EnumDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []GenericParam
	Variants   []*EnumVariant
	Methods    []*MethodDecl
	span       lexer.Span
}

func (d *EnumDecl) Span() lexer.Span     { return d.span }
func (d *EnumDecl) SetSpan(s lexer.Span) { d.span = s }
func (*EnumDecl) declNode()              {}

func NewEnumDecl(span lexer.Span) *EnumDecl { return &EnumDecl{span: span} }

// TypeAliasDecl binds a name to a type expression. Distinct aliases
// introduce a new nominal identity rather than an interchangeable synonym.
type TypeAliasDecl struct {
	Pub        bool
	Distinct   bool
	Name       *Ident
	TypeParams []GenericParam
	Type       TypeExpr
	span       lexer.Span
}

func (d *TypeAliasDecl) Span() lexer.Span { return d.span }
func (*TypeAliasDecl) declNode()          {}

func NewTypeAliasDecl(pub, distinct bool, name *Ident, typeParams []GenericParam, typ TypeExpr, span lexer.Span) *TypeAliasDecl {
	return &TypeAliasDecl{Pub: pub, Distinct: distinct, Name: name, TypeParams: typeParams, Type: typ, span: span}
}

// --- Expressions ---

// Ident is a bare identifier reference.
type Ident struct {
	Name string
	span lexer.Span
}

func (i *Ident) Span() lexer.Span { return i.span }
func (*Ident) exprNode()          {}

func NewIdent(name string, span lexer.Span) *Ident { return &Ident{Name: name, span: span} }

// IntegerLiteral is an integer literal. The checker types it as Number
// (lowered to f64); it is not typed as i32.
type IntegerLiteral struct {
	Value int64
	span  lexer.Span
}

func (l *IntegerLiteral) Span() lexer.Span { return l.span }
func (*IntegerLiteral) exprNode()          {}

func NewIntegerLiteral(value int64, span lexer.Span) *IntegerLiteral {
	return &IntegerLiteral{Value: value, span: span}
}

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	Value float64
	span  lexer.Span
}

func (l *FloatLiteral) Span() lexer.Span { return l.span }
func (*FloatLiteral) exprNode()          {}

func NewFloatLiteral(value float64, span lexer.Span) *FloatLiteral {
	return &FloatLiteral{Value: value, span: span}
}

// StringLiteral is a string literal with its escapes already decoded.
type StringLiteral struct {
	Value string
	span  lexer.Span
}

func (l *StringLiteral) Span() lexer.Span { return l.span }
func (*StringLiteral) exprNode()          {}

func NewStringLiteral(value string, span lexer.Span) *StringLiteral {
	return &StringLiteral{Value: value, span: span}
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Value bool
	span  lexer.Span
}

func (l *BoolLiteral) Span() lexer.Span { return l.span }
func (*BoolLiteral) exprNode()          {}

func NewBoolLiteral(value bool, span lexer.Span) *BoolLiteral {
	return &BoolLiteral{Value: value, span: span}
}

// NilLiteral is the `null` literal.
type NilLiteral struct {
	span lexer.Span
}

func (l *NilLiteral) Span() lexer.Span { return l.span }
func (*NilLiteral) exprNode()          {}

func NewNilLiteral(span lexer.Span) *NilLiteral { return &NilLiteral{span: span} }

// ArrayLiteral is a growable array literal `[e1, e2, ...]`.
type ArrayLiteral struct {
	Elements []Expr
	span     lexer.Span
}

func (l *ArrayLiteral) Span() lexer.Span { return l.span }
func (*ArrayLiteral) exprNode()          {}

func NewArrayLiteral(elements []Expr, span lexer.Span) *ArrayLiteral {
	return &ArrayLiteral{Elements: elements, span: span}
}

// FixedArrayLiteral is a fixed-length array literal `#[e1, e2, ...]`,
// lowered to a WasmGC array type with a statically known length.
type FixedArrayLiteral struct {
	Elements []Expr
	span     lexer.Span
}

func (l *FixedArrayLiteral) Span() lexer.Span { return l.span }
func (*FixedArrayLiteral) exprNode()          {}

func NewFixedArrayLiteral(elements []Expr, span lexer.Span) *FixedArrayLiteral {
	return &FixedArrayLiteral{Elements: elements, span: span}
}

// TupleLiteral is a positional tuple literal `(e1, e2, ...)`.
type TupleLiteral struct {
	Elements []Expr
	span     lexer.Span
}

func (l *TupleLiteral) Span() lexer.Span { return l.span }
func (*TupleLiteral) exprNode()          {}

func NewTupleLiteral(elements []Expr, span lexer.Span) *TupleLiteral {
	return &TupleLiteral{Elements: elements, span: span}
}

// RecordField is one `name: value` entry of a RecordLiteral.
type RecordField struct {
	Name  *Ident
	Value Expr
}

// RecordLiteral is a structural record literal `{ name: value, ... }`.
type RecordLiteral struct {
	Fields []RecordField
	span   lexer.Span
}

func (l *RecordLiteral) Span() lexer.Span { return l.span }
func (*RecordLiteral) exprNode()          {}

func NewRecordLiteral(fields []RecordField, span lexer.Span) *RecordLiteral {
	return &RecordLiteral{Fields: fields, span: span}
}

// BlockExpr is a brace-delimited sequence of statements, whose value is the
// value of its final expression statement, if any.
type BlockExpr struct {
	Stmts []Stmt
	span  lexer.Span
}

func (b *BlockExpr) Span() lexer.Span { return b.span }
func (*BlockExpr) exprNode()          {}

func NewBlockExpr(stmts []Stmt, span lexer.Span) *BlockExpr {
	return &BlockExpr{Stmts: stmts, span: span}
}

// IfExpr is a conditional expression; Else may be another IfExpr (else-if
// chaining) or a BlockExpr, or nil.
type IfExpr struct {
	Cond Expr
	Then *BlockExpr
	Else Expr
	span lexer.Span
}

func (e *IfExpr) Span() lexer.Span { return e.span }
func (*IfExpr) exprNode()          {}

func NewIfExpr(cond Expr, then *BlockExpr, els Expr, span lexer.Span) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els, span: span}
}

// MatchArm is one `pattern => body` arm of a MatchExpr, with an optional
// guard expression.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr
	Body    Expr
	span    lexer.Span
}

func (a *MatchArm) Span() lexer.Span { return a.span }

func NewMatchArm(pattern Pattern, guard Expr, body Expr, span lexer.Span) *MatchArm {
	return &MatchArm{Pattern: pattern, Guard: guard, Body: body, span: span}
}

// MatchExpr matches Subject against each arm's pattern in order.
type MatchExpr struct {
	Subject Expr
	Arms    []*MatchArm
	span    lexer.Span
}

func (e *MatchExpr) Span() lexer.Span { return e.span }
func (*MatchExpr) exprNode()          {}

func NewMatchExpr(subject Expr, arms []*MatchArm, span lexer.Span) *MatchExpr {
	return &MatchExpr{Subject: subject, Arms: arms, span: span}
}

// PrefixExpr is a unary operator expression (`!x`, `-x`).
type PrefixExpr struct {
	Operator string
	Right    Expr
	span     lexer.Span
}

func (e *PrefixExpr) Span() lexer.Span { return e.span }
func (*PrefixExpr) exprNode()          {}

func NewPrefixExpr(operator string, right Expr, span lexer.Span) *PrefixExpr {
	return &PrefixExpr{Operator: operator, Right: right, span: span}
}

// InfixExpr is a binary operator expression, including `===`/`!==` reference
// equality and `&&`/`||` short-circuit logic.
type InfixExpr struct {
	Left     Expr
	Operator string
	Right    Expr
	span     lexer.Span
}

func (e *InfixExpr) Span() lexer.Span { return e.span }
func (*InfixExpr) exprNode()          {}

func NewInfixExpr(left Expr, operator string, right Expr, span lexer.Span) *InfixExpr {
	return &InfixExpr{Left: left, Operator: operator, Right: right, span: span}
}

// AssignExpr is an assignment to an lvalue (Ident, FieldExpr, or IndexExpr).
type AssignExpr struct {
	Target Expr
	Value  Expr
	span   lexer.Span
}

func (e *AssignExpr) Span() lexer.Span { return e.span }
func (*AssignExpr) exprNode()          {}

func NewAssignExpr(target, value Expr, span lexer.Span) *AssignExpr {
	return &AssignExpr{Target: target, Value: value, span: span}
}

// CallExpr invokes Callee with Args; Callee is typically a FieldExpr for a
// method call or an Ident/FieldExpr for a plain function call.
type CallExpr struct {
	Callee    Expr
	TypeArgs  []TypeExpr
	Args      []Expr
	span      lexer.Span
}

func (e *CallExpr) Span() lexer.Span { return e.span }
func (*CallExpr) exprNode()          {}

func NewCallExpr(callee Expr, typeArgs []TypeExpr, args []Expr, span lexer.Span) *CallExpr {
	return &CallExpr{Callee: callee, TypeArgs: typeArgs, Args: args, span: span}
}

// FieldExpr accesses a named field or method on Target.
type FieldExpr struct {
	Target Expr
	Name   *Ident
	span   lexer.Span
}

func (e *FieldExpr) Span() lexer.Span { return e.span }
func (*FieldExpr) exprNode()          {}

func NewFieldExpr(target Expr, name *Ident, span lexer.Span) *FieldExpr {
	return &FieldExpr{Target: target, Name: name, span: span}
}

// IndexExpr accesses an array element by index.
type IndexExpr struct {
	Target Expr
	Index  Expr
	span   lexer.Span
}

func (e *IndexExpr) Span() lexer.Span { return e.span }
func (*IndexExpr) exprNode()          {}

func NewIndexExpr(target, index Expr, span lexer.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}

// FunctionLiteral is a closure expression; captured free variables are
// resolved by the checker and ordered by the codegen's capture analysis.
type FunctionLiteral struct {
	Params     []*Param
	ReturnType TypeExpr
	Body       *BlockExpr
	span       lexer.Span
}

func (e *FunctionLiteral) Span() lexer.Span { return e.span }
func (*FunctionLiteral) exprNode()          {}

func NewFunctionLiteral(params []*Param, returnType TypeExpr, body *BlockExpr, span lexer.Span) *FunctionLiteral {
	return &FunctionLiteral{Params: params, ReturnType: returnType, Body: body, span: span}
}

// NewExpr constructs an instance of Type, invoking its constructor chain.
type NewExpr struct {
	Type TypeExpr
	Args []Expr
	span lexer.Span
}

func (e *NewExpr) Span() lexer.Span { return e.span }
func (*NewExpr) exprNode()          {}

func NewNewExpr(typ TypeExpr, args []Expr, span lexer.Span) *NewExpr {
	return &NewExpr{Type: typ, Args: args, span: span}
}

// ThisExpr refers to the receiver of the enclosing method or constructor.
type ThisExpr struct {
	span lexer.Span
}

func (e *ThisExpr) Span() lexer.Span { return e.span }
func (*ThisExpr) exprNode()          {}

func NewThisExpr(span lexer.Span) *ThisExpr { return &ThisExpr{span: span} }

// SuperExpr refers to the enclosing method's superclass binding, used as a
// call target (`super(...)`, `super.method(...)`).
type SuperExpr struct {
	span lexer.Span
}

func (e *SuperExpr) Span() lexer.Span { return e.span }
func (*SuperExpr) exprNode()          {}

func NewSuperExpr(span lexer.Span) *SuperExpr { return &SuperExpr{span: span} }

// RangeExpr is a half-open range `start..end`, consumed by for-loops and the
// built-in range iterator.
type RangeExpr struct {
	Start Expr
	End   Expr
	span  lexer.Span
}

func (e *RangeExpr) Span() lexer.Span { return e.span }
func (*RangeExpr) exprNode()          {}

func NewRangeExpr(start, end Expr, span lexer.Span) *RangeExpr {
	return &RangeExpr{Start: start, End: end, span: span}
}

// --- Statements ---

// LetStmt binds Name to the value of Value, optionally Mut (reassignable).
type LetStmt struct {
	Mut   bool
	Name  *Ident
	Type  TypeExpr // nil if inferred
	Value Expr
	span  lexer.Span
}

func (s *LetStmt) Span() lexer.Span { return s.span }
func (*LetStmt) stmtNode()          {}

func NewLetStmt(mut bool, name *Ident, typ TypeExpr, value Expr, span lexer.Span) *LetStmt {
	return &LetStmt{Mut: mut, Name: name, Type: typ, Value: value, span: span}
}

// ExprStmt is an expression evaluated for its value or side effect.
type ExprStmt struct {
	X    Expr
	span lexer.Span
}

func (s *ExprStmt) Span() lexer.Span { return s.span }
func (*ExprStmt) stmtNode()          {}

func NewExprStmt(x Expr, span lexer.Span) *ExprStmt { return &ExprStmt{X: x, span: span} }

// ReturnStmt returns Value (nil for a bare `return`) from the enclosing
// function or method.
type ReturnStmt struct {
	Value Expr
	span  lexer.Span
}

func (s *ReturnStmt) Span() lexer.Span { return s.span }
func (*ReturnStmt) stmtNode()          {}

func NewReturnStmt(value Expr, span lexer.Span) *ReturnStmt {
	return &ReturnStmt{Value: value, span: span}
}

// BreakStmt exits the nearest enclosing loop.
type BreakStmt struct{ span lexer.Span }

func (s *BreakStmt) Span() lexer.Span { return s.span }
func (*BreakStmt) stmtNode()          {}

func NewBreakStmt(span lexer.Span) *BreakStmt { return &BreakStmt{span: span} }

// ContinueStmt jumps to the next iteration of the nearest enclosing loop.
type ContinueStmt struct{ span lexer.Span }

func (s *ContinueStmt) Span() lexer.Span { return s.span }
func (*ContinueStmt) stmtNode()          {}

func NewContinueStmt(span lexer.Span) *ContinueStmt { return &ContinueStmt{span: span} }

// WhileStmt loops while Cond evaluates true.
type WhileStmt struct {
	Cond Expr
	Body *BlockExpr
	span lexer.Span
}

func (s *WhileStmt) Span() lexer.Span { return s.span }
func (*WhileStmt) stmtNode()          {}

func NewWhileStmt(cond Expr, body *BlockExpr, span lexer.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, span: span}
}

// ForStmt iterates Binding over Iterable, desugaring to the `zena:iterator`
// protocol (or a primitive range/array fast path) during codegen.
type ForStmt struct {
	Binding  *Ident
	Iterable Expr
	Body     *BlockExpr
	span     lexer.Span
}

func (s *ForStmt) Span() lexer.Span { return s.span }
func (*ForStmt) stmtNode()          {}

func NewForStmt(binding *Ident, iterable Expr, body *BlockExpr, span lexer.Span) *ForStmt {
	return &ForStmt{Binding: binding, Iterable: iterable, Body: body, span: span}
}

// ThrowStmt raises Value as an exception via the module-wide exception tag.
type ThrowStmt struct {
	Value Expr
	span  lexer.Span
}

func (s *ThrowStmt) Span() lexer.Span { return s.span }
func (*ThrowStmt) stmtNode()          {}

func NewThrowStmt(value Expr, span lexer.Span) *ThrowStmt {
	return &ThrowStmt{Value: value, span: span}
}

// CatchClause binds the payload of a caught exception to Name within Body.
type CatchClause struct {
	Name *Ident
	Body *BlockExpr
	span lexer.Span
}

func (c *CatchClause) Span() lexer.Span { return c.span }

func NewCatchClause(name *Ident, body *BlockExpr, span lexer.Span) *CatchClause {
	return &CatchClause{Name: name, Body: body, span: span}
}

// TryStmt runs Body, routing any thrown exception to Catch.
type TryStmt struct {
	Body  *BlockExpr
	Catch *CatchClause
	span  lexer.Span
}

func (s *TryStmt) Span() lexer.Span { return s.span }
func (*TryStmt) stmtNode()          {}

func NewTryStmt(body *BlockExpr, catch *CatchClause, span lexer.Span) *TryStmt {
	return &TryStmt{Body: body, Catch: catch, span: span}
}

// --- Type expressions ---

// NamedType refers to a type by name, e.g. a class, interface, enum, type
// parameter, or a built-in like `Number`/`Boolean`/`Void`/`Any`.
type NamedType struct {
	Name *Ident
	span lexer.Span
}

func (t *NamedType) Span() lexer.Span { return t.span }
func (*NamedType) typeNode()          {}

func NewNamedType(name *Ident, span lexer.Span) *NamedType {
	return &NamedType{Name: name, span: span}
}

// GenericTypeExpr instantiates a generic named type with concrete type
// arguments, e.g. `List<Number>`.
type GenericTypeExpr struct {
	Base *NamedType
	Args []TypeExpr
	span lexer.Span
}

func (t *GenericTypeExpr) Span() lexer.Span { return t.span }
func (*GenericTypeExpr) typeNode()          {}

func NewGenericTypeExpr(base *NamedType, args []TypeExpr, span lexer.Span) *GenericTypeExpr {
	return &GenericTypeExpr{Base: base, Args: args, span: span}
}

// FunctionType is the type of a closure or function value.
type FunctionType struct {
	Params     []TypeExpr
	ReturnType TypeExpr
	span       lexer.Span
}

func (t *FunctionType) Span() lexer.Span { return t.span }
func (*FunctionType) typeNode()          {}

func NewFunctionType(params []TypeExpr, returnType TypeExpr, span lexer.Span) *FunctionType {
	return &FunctionType{Params: params, ReturnType: returnType, span: span}
}

// TupleType is the type of a fixed-arity positional tuple.
type TupleType struct {
	Elements []TypeExpr
	Unboxed  bool // unboxed tuples are passed by value with no heap allocation
	span     lexer.Span
}

func (t *TupleType) Span() lexer.Span { return t.span }
func (*TupleType) typeNode()          {}

func NewTupleType(elements []TypeExpr, unboxed bool, span lexer.Span) *TupleType {
	return &TupleType{Elements: elements, Unboxed: unboxed, span: span}
}

// RecordFieldType is one named field of a RecordType.
type RecordFieldType struct {
	Name *Ident
	Type TypeExpr
}

// RecordType is a structural record type, compared by field shape rather
// than by name.
type RecordType struct {
	Fields []RecordFieldType
	span   lexer.Span
}

func (t *RecordType) Span() lexer.Span { return t.span }
func (*RecordType) typeNode()          {}

func NewRecordType(fields []RecordFieldType, span lexer.Span) *RecordType {
	return &RecordType{Fields: fields, span: span}
}

// ArrayTypeExpr is the type of a growable array, with no compile-time
// length (WasmGC array types carry no static length either).
type ArrayTypeExpr struct {
	Elem TypeExpr
	span lexer.Span
}

func (t *ArrayTypeExpr) Span() lexer.Span { return t.span }
func (*ArrayTypeExpr) typeNode()          {}

func NewArrayTypeExpr(elem TypeExpr, span lexer.Span) *ArrayTypeExpr {
	return &ArrayTypeExpr{Elem: elem, span: span}
}

// UnionTypeExpr is a syntactic union of alternative types, e.g. `Number | String`.
type UnionTypeExpr struct {
	Members []TypeExpr
	span    lexer.Span
}

func (t *UnionTypeExpr) Span() lexer.Span { return t.span }
func (*UnionTypeExpr) typeNode()          {}

func NewUnionTypeExpr(members []TypeExpr, span lexer.Span) *UnionTypeExpr {
	return &UnionTypeExpr{Members: members, span: span}
}
