package codegen

import (
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

// mapType resolves a semantic Type to the WasmGC value type codegen stores
// it as. Structural shapes (array/tuple/record/function value) are
// deduplicated by their Type.String() form in the relevant cache, since two
// occurrences of the same structural shape must reuse one type-section
// entry for values to flow between them.
func (g *Generator) mapType(t types.Type) wasmgc.ValType {
	switch t := t.(type) {
	case *types.Singleton:
		switch t {
		case types.Number:
			return wasmgc.F64
		case types.Boolean:
			return wasmgc.I32
		case types.ByteArr:
			return wasmgc.RefNull(g.byteArrayType)
		default: // Void, Null, Never, Any, AnyRef, Unknown, This
			return wasmgc.AnyRefNull
		}
	case *types.Literal:
		switch t.Kind {
		case "number":
			return wasmgc.F64
		case "boolean":
			return wasmgc.I32
		default:
			return wasmgc.AnyRefNull
		}
	case *types.TypeParameter:
		return wasmgc.AnyRefNull
	case *types.TypeAlias:
		return g.mapType(t.Underlying)
	case *types.Array:
		return wasmgc.RefNull(g.arrayTypeIdxFor(t.Elem))
	case *types.Tuple:
		return wasmgc.RefNull(g.tupleTypeIdxFor(t))
	case *types.Record:
		return wasmgc.RefNull(g.recordTypeIdxFor(t))
	case *types.Union:
		return wasmgc.AnyRefNull
	case *types.Function:
		return wasmgc.RefNull(g.closureStructTypeIdxFor(t))
	case *types.Class:
		c := canonicalClass(t)
		idx, ok := g.classTypeIdx[c]
		if !ok {
			g.internalError("class used as a value type before its struct was registered: "+c.Name, nil)
		}
		return wasmgc.RefNull(idx)
	case *types.Interface:
		idx, ok := g.ifaceFatPtrType[t]
		if !ok {
			g.internalError("interface used as a value type before its fat pointer was registered: "+t.Name, nil)
		}
		return wasmgc.RefNull(idx)
	case *types.Enum:
		return wasmgc.AnyRefNull
	case *types.Mixin:
		return wasmgc.AnyRefNull
	default:
		return wasmgc.AnyRefNull
	}
}

// arrayTypeIdxFor returns the type-section index of the array type whose
// element is elem, building it on first request.
func (g *Generator) arrayTypeIdxFor(elem types.Type) uint32 {
	key := elem.String()
	if idx, ok := g.arrayTypeIdx[key]; ok {
		return idx
	}
	elemVal := g.mapType(elem)
	idx := g.b.Types.Add(wasmgc.NewArrayType(wasmgc.FieldType{Type: elemVal, Mutable: true}, true))
	g.arrayTypeIdx[key] = idx
	return idx
}

// tupleTypeIdxFor returns the struct type boxing t's elements positionally;
// tuples are always boxed regardless of the source Unboxed flag, since an
// unboxed-value calling convention is not implemented.
func (g *Generator) tupleTypeIdxFor(t *types.Tuple) uint32 {
	key := t.String()
	if idx, ok := g.tupleTypeIdx[key]; ok {
		return idx
	}
	fields := make([]wasmgc.FieldType, len(t.Elements))
	for i, el := range t.Elements {
		fields[i] = wasmgc.FieldType{Type: g.mapType(el), Mutable: false}
	}
	idx := g.b.Types.Add(wasmgc.NewStructType(fields, -1, true))
	g.tupleTypeIdx[key] = idx
	g.tupleFields[key] = t.Elements
	return idx
}

// recordTypeIdxFor returns the struct type boxing t's named fields in
// declaration order.
func (g *Generator) recordTypeIdxFor(t *types.Record) uint32 {
	key := t.String()
	if idx, ok := g.recordType[key]; ok {
		return idx
	}
	fields := make([]wasmgc.FieldType, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = wasmgc.FieldType{Type: g.mapType(f.Type), Mutable: false}
	}
	idx := g.b.Types.Add(wasmgc.NewStructType(fields, -1, true))
	g.recordType[key] = idx
	g.recordFields[key] = t.Fields
	return idx
}

// resultValTypes is mapType for a return-position type: Void/Never produce
// no results, everything else is a single result value.
func (g *Generator) resultValTypes(t types.Type) []wasmgc.ValType {
	if t == nil || t == types.Void || t == types.Never {
		return nil
	}
	return []wasmgc.ValType{g.mapType(t)}
}
