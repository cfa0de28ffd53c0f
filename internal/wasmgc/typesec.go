package wasmgc

import "github.com/zena-lang/zenac/internal/encoder"

// FieldType is one field of a struct or the element type of an array;
// Mutable marks fields that may be written after construction.
type FieldType struct {
	Type    ValType
	Mutable bool
}

func (f FieldType) encode(buf *encoder.Buffer) {
	f.Type.Encode(buf)
	if f.Mutable {
		buf.WriteByte(0x01)
	} else {
		buf.WriteByte(0x00)
	}
}

// compositeKind distinguishes the three WasmGC composite type forms.
type compositeKind byte

const (
	compositeFunc compositeKind = iota
	compositeStruct
	compositeArray
)

// TypeDef is one entry of the type section: a function signature, a struct
// layout, or an array element type, each optionally declared `final` and
// optionally a subtype of an earlier struct/array definition.
type TypeDef struct {
	Kind    compositeKind
	Params  []ValType   // func only
	Results []ValType   // func only
	Fields  []FieldType // struct only
	Elem    FieldType   // array only
	Super   int32       // -1 if no declared supertype
	Final   bool
}

// NewFuncType returns a function signature type definition.
func NewFuncType(params, results []ValType) TypeDef {
	return TypeDef{Kind: compositeFunc, Params: params, Results: results, Super: -1, Final: true}
}

// NewStructType returns a struct layout, optionally extending super (the
// type-section index of its declared supertype class/interface).
func NewStructType(fields []FieldType, super int32, final bool) TypeDef {
	return TypeDef{Kind: compositeStruct, Fields: fields, Super: super, Final: final}
}

// NewArrayType returns an array element-type definition.
func NewArrayType(elem FieldType, final bool) TypeDef {
	return TypeDef{Kind: compositeArray, Elem: elem, Super: -1, Final: final}
}

// encode writes the type definition, prefixed with a sub/subfinal wrapper
// whenever it declares a supertype (so the module records the class's
// inheritance chain for runtime downcast checks) or is not final (a bare
// definition is implicitly final and could not be extended).
func (t TypeDef) encode(buf *encoder.Buffer) {
	if t.Super >= 0 || !t.Final {
		if t.Final {
			buf.WriteByte(0x4f) // sub final
		} else {
			buf.WriteByte(0x50) // sub
		}
		if t.Super >= 0 {
			buf.WriteVecHeader(1)
			buf.WriteU32(uint32(t.Super))
		} else {
			buf.WriteVecHeader(0)
		}
	}
	t.encodeComposite(buf)
}

func (t TypeDef) encodeComposite(buf *encoder.Buffer) {
	switch t.Kind {
	case compositeFunc:
		buf.WriteByte(0x60)
		buf.WriteVecHeader(len(t.Params))
		for _, p := range t.Params {
			p.Encode(buf)
		}
		buf.WriteVecHeader(len(t.Results))
		for _, r := range t.Results {
			r.Encode(buf)
		}
	case compositeStruct:
		buf.WriteByte(0x5f)
		buf.WriteVecHeader(len(t.Fields))
		for _, f := range t.Fields {
			f.encode(buf)
		}
	case compositeArray:
		buf.WriteByte(0x5e)
		t.Elem.encode(buf)
	}
}

// TypeSection accumulates the module's recursive type group. WasmGC allows
// types to reference later indices within the same rec group, so every
// class/interface/vtable/array/function shape used anywhere in the module
// is assigned an index here up front, before any code is generated.
type TypeSection struct {
	defs []TypeDef
}

// Add appends a type definition and returns its index.
func (s *TypeSection) Add(def TypeDef) uint32 {
	s.defs = append(s.defs, def)
	return uint32(len(s.defs) - 1)
}

// Reserve allocates a type index before its definition is known, so two
// classes whose fields reference each other (or a class and its own
// vtable/fat-pointer type) can be wired up in either order. Fill must be
// called with the real definition before Encode.
func (s *TypeSection) Reserve() uint32 {
	s.defs = append(s.defs, TypeDef{})
	return uint32(len(s.defs) - 1)
}

// Fill sets the definition for an index previously returned by Reserve.
func (s *TypeSection) Fill(idx uint32, def TypeDef) {
	s.defs[idx] = def
}

// Len reports how many type indices have been assigned.
func (s *TypeSection) Len() int { return len(s.defs) }

// Encode writes the section body as a single `rec` group so forward and
// mutually-recursive references between struct/array/func/vtable types all
// resolve within one type-checking pass.
func (s *TypeSection) Encode() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(s.defs) == 0 {
		return buf
	}
	buf.WriteVecHeader(1)
	buf.WriteByte(0x4e) // rec
	buf.WriteVecHeader(len(s.defs))
	for _, d := range s.defs {
		d.encode(buf)
	}
	return buf
}
