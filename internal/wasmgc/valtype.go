// Package wasmgc builds a WasmGC binary module on top of internal/encoder's
// byte-level primitives: struct and array type definitions with supertype
// links, function signatures, vtable-bearing fat pointers for interface
// dispatch, and the exception-handling tag used for throw/try/catch.
package wasmgc

import "github.com/zena-lang/zenac/internal/encoder"

// Heap type abstract codes (GC + function-references + exception-handling
// proposals), encoded as negative numbers in the LEB128 heap type grammar.
const (
	heapNone       = 0x71
	heapNoExtern   = 0x72
	heapNoFunc     = 0x73
	heapEq         = 0x6d
	heapStruct     = 0x67
	heapArray      = 0x66
	heapI31        = 0x6c
	heapAny        = 0x6e
	heapExtern     = 0x6f
	heapFunc       = 0x70
	refNullCode    = 0x63
	refCode        = 0x64
)

const (
	numI32 = 0x7f
	numI64 = 0x7e
	numF32 = 0x7d
	numF64 = 0x7c
)

// ValType is a WebAssembly value type: a number type, a vector type, or a
// (possibly nullable) reference type naming either an abstract heap type or
// a concrete type-section index.
type ValType struct {
	code      byte  // numI32/numI64/numF32/numF64, or refNullCode/refCode for references
	heapAbs   int16 // abstract heap type code, used when typeIdx < 0
	typeIdx   int32 // concrete type-section index, -1 if this is an abstract heap type
}

var (
	I32 = ValType{code: numI32}
	I64 = ValType{code: numI64}
	F32 = ValType{code: numF32}
	F64 = ValType{code: numF64}

	AnyRefNull    = ValType{code: refNullCode, heapAbs: heapAny, typeIdx: -1}
	EqRefNull     = ValType{code: refNullCode, heapAbs: heapEq, typeIdx: -1}
	StructRefNull = ValType{code: refNullCode, heapAbs: heapStruct, typeIdx: -1}
	ArrayRefNull  = ValType{code: refNullCode, heapAbs: heapArray, typeIdx: -1}
	I31RefNull    = ValType{code: refNullCode, heapAbs: heapI31, typeIdx: -1}
	FuncRefNull   = ValType{code: refNullCode, heapAbs: heapFunc, typeIdx: -1}
	ExternRefNull = ValType{code: refNullCode, heapAbs: heapExtern, typeIdx: -1}
)

// RefNull returns the nullable reference type `(ref null $idx)` for a
// concrete type-section index.
func RefNull(idx uint32) ValType { return ValType{code: refNullCode, typeIdx: int32(idx)} }

// Ref returns the non-nullable reference type `(ref $idx)` for a concrete
// type-section index.
func Ref(idx uint32) ValType { return ValType{code: refCode, typeIdx: int32(idx)} }

// IsNumeric reports whether v is one of i32/i64/f32/f64.
func (v ValType) IsNumeric() bool {
	return v.code == numI32 || v.code == numI64 || v.code == numF32 || v.code == numF64
}

// Encode writes v's binary representation to buf.
func (v ValType) Encode(buf *encoder.Buffer) {
	if v.IsNumeric() {
		buf.WriteByte(v.code)
		return
	}
	if v.typeIdx >= 0 {
		buf.WriteByte(v.code)
		buf.WriteI32(v.typeIdx)
		return
	}
	// Abstract heap type bytes already are their own single-byte signed
	// LEB128 encoding (the high bit clear, sign bit set), so no further
	// varint encoding is needed here.
	buf.WriteByte(v.code)
	buf.WriteByte(byte(v.heapAbs))
}
