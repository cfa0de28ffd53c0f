package types

import "strings"

// Type represents a semantic type in the zena type system. Every Type
// implementation is comparable by identity for the handful of singleton
// kinds (Number, Boolean, Void, ...) and is otherwise compared through the
// checker's assignability cascade rather than Go's `==`.
type Type interface {
	String() string
	IsType()
}

// Singleton represents a primitive or marker kind with no further shape:
// Number, Boolean, Void, Null, Never, Any, AnyRef, Unknown, ByteArray, This.
type Singleton struct {
	Kind string
}

func (s *Singleton) String() string { return s.Kind }
func (s *Singleton) IsType()        {}

var (
	Number  = &Singleton{Kind: "Number"}
	Boolean = &Singleton{Kind: "Boolean"}
	Void    = &Singleton{Kind: "Void"}
	Null    = &Singleton{Kind: "Null"}
	Never   = &Singleton{Kind: "Never"}
	Any     = &Singleton{Kind: "Any"}
	AnyRef  = &Singleton{Kind: "AnyRef"}
	Unknown = &Singleton{Kind: "Unknown"}
	ByteArr = &Singleton{Kind: "ByteArray"}
	This    = &Singleton{Kind: "This"}
)

// Literal is a single-value literal type, e.g. the type of the literal 3 or
// the string literal "ok" before widening.
type Literal struct {
	Kind  string // "number", "string", "boolean"
	Value string // textual representation of the literal value
}

func (l *Literal) String() string { return l.Value }
func (l *Literal) IsType()        {}

// TypeParameter is a reference to a generic type parameter in scope.
type TypeParameter struct {
	Name       string
	Constraint Type // nil if unconstrained
}

func (t *TypeParameter) String() string { return t.Name }
func (t *TypeParameter) IsType()        {}

// TypeAlias is a (possibly distinct) name bound to an underlying type.
// Distinct aliases are never assignable to/from their underlying type or
// sibling aliases; transparent aliases are fully interchangeable with it.
type TypeAlias struct {
	Name       string
	TypeParams []*TypeParameter
	Underlying Type
	Distinct   bool
}

func (a *TypeAlias) String() string { return a.Name }
func (a *TypeAlias) IsType()        {}

// Array is the type of a growable, homogeneously-typed array.
type Array struct {
	Elem Type
}

func (a *Array) String() string { return "Array<" + a.Elem.String() + ">" }
func (a *Array) IsType()        {}

// Tuple is a fixed-arity positional product type. Unboxed tuples are passed
// by value with no heap allocation; boxed tuples are WasmGC struct refs.
type Tuple struct {
	Elements []Type
	Unboxed  bool
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	prefix := ""
	if t.Unboxed {
		prefix = "#"
	}
	return prefix + "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) IsType() {}

// RecordField is one named field of a Record type.
type RecordField struct {
	Name string
	Type Type
}

// Record is a structural type compared by field shape, not by name.
type Record struct {
	Fields []RecordField
}

func (r *Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (r *Record) IsType() {}

// Union is a syntactic union of member types. Dispatch on a union-typed
// value is lowered to a per-member case at each call site.
type Union struct {
	Members []Type
}

func (u *Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}
func (u *Union) IsType() {}

// Function is the type of a closure or plain function value.
type Function struct {
	Params []Type
	Return Type
}

func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	ret := "Void"
	if f.Return != nil {
		ret = f.Return.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + ret
}
func (f *Function) IsType() {}

// Method is a named member signature of a Class/Interface/Mixin.
type Method struct {
	Name       string
	TypeParams []*TypeParameter
	Params     []Type
	Return     Type
	IsStatic   bool
	IsFinal    bool
}

// Field is a named instance field of a Class/Interface/Mixin.
type Field struct {
	Name string
	Type Type
	Mut  bool
}

// Class is a nominal reference type with fields, a vtable of methods, an
// optional superclass, mixins applied via `with`, and interfaces satisfied
// via `implements`. GenericSource/TypeArgs are set on instantiated generic
// classes and are the interning key for the instance.
type Class struct {
	Name          string
	TypeParams    []*TypeParameter
	Super         *Class
	Mixins        []*Mixin
	Implements    []*Interface
	Fields        []Field
	Methods       []Method
	Final         bool
	Abstract      bool
	IsExtension   bool // true for `extension class X on T { ... }`
	OnType        Type // the underlying type an extension class wraps; nil unless IsExtension
	GenericSource *Class
	TypeArgs      []Type
}

func (c *Class) String() string {
	if len(c.TypeArgs) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.TypeArgs))
	for i, a := range c.TypeArgs {
		parts[i] = a.String()
	}
	return c.Name + "<" + strings.Join(parts, ", ") + ">"
}
func (c *Class) IsType() {}

// Interface is a nominal contract of fields and methods that a Class, or a
// composition of mixins applied to a class, may satisfy.
type Interface struct {
	Name       string
	TypeParams []*TypeParameter
	Extends    []*Interface
	Fields     []Field
	Methods    []Method
}

func (i *Interface) String() string { return i.Name }
func (i *Interface) IsType()        {}

// Mixin is a bundle of fields and methods applicable to any class whose
// superclass chain is assignable to On, contributing its own Implements list
// to classes that apply it.
type Mixin struct {
	Name       string
	TypeParams []*TypeParameter
	On         Type
	Implements []*Interface
	Fields     []Field
	Methods    []Method
}

func (m *Mixin) String() string { return m.Name }
func (m *Mixin) IsType()        {}
