package wasmgc

import "github.com/zena-lang/zenac/internal/encoder"

// BlockType describes the signature of a structured control-flow block:
// Empty, a single ValType result, or a type-section function index for a
// multi-value block (the general `blocktype` form).
type BlockType struct {
	Empty   bool
	Result  ValType
	HasType bool
	TypeIdx int32
}

func (b BlockType) encode(buf *encoder.Buffer) {
	switch {
	case b.HasType:
		buf.WriteI32(b.TypeIdx)
	case b.Empty:
		buf.WriteByte(0x40)
	default:
		b.Result.Encode(buf)
	}
}

// Code accumulates one function body: its locals declaration followed by
// its instruction stream.
type Code struct {
	localGroups []localGroup
	body        *encoder.Buffer
}

type localGroup struct {
	count uint32
	typ   ValType
}

// NewCode returns an empty function body builder.
func NewCode() *Code {
	return &Code{body: encoder.NewBuffer()}
}

// DeclareLocals adds a run of count locals of the given type, beyond the
// function's own parameters, which already occupy local indices 0..n-1.
func (c *Code) DeclareLocals(count uint32, typ ValType) {
	if count == 0 {
		return
	}
	c.localGroups = append(c.localGroups, localGroup{count: count, typ: typ})
}

// Encode returns the complete sized function-body entry for the code section.
func (c *Code) Encode() *encoder.Buffer {
	payload := encoder.NewBuffer()
	payload.WriteVecHeader(len(c.localGroups))
	for _, g := range c.localGroups {
		payload.WriteU32(g.count)
		g.typ.Encode(payload)
	}
	payload.WriteBytes(c.body.Bytes())
	payload.WriteByte(0x0b) // end

	out := encoder.NewBuffer()
	out.WriteSized(payload)
	return out
}

// --- Numeric and control instructions ---

func (c *Code) Unreachable() { c.body.WriteByte(0x00) }
func (c *Code) Nop()         { c.body.WriteByte(0x01) }
func (c *Code) End()         { c.body.WriteByte(0x0b) }
func (c *Code) Else()        { c.body.WriteByte(0x05) }
func (c *Code) Drop()        { c.body.WriteByte(0x1a) }
func (c *Code) Return()      { c.body.WriteByte(0x0f) }

func (c *Code) Block(bt BlockType) {
	c.body.WriteByte(0x02)
	bt.encode(c.body)
}

func (c *Code) Loop(bt BlockType) {
	c.body.WriteByte(0x03)
	bt.encode(c.body)
}

func (c *Code) If(bt BlockType) {
	c.body.WriteByte(0x04)
	bt.encode(c.body)
}

func (c *Code) Br(depth uint32)     { c.body.WriteByte(0x0c); c.body.WriteU32(depth) }
func (c *Code) BrIf(depth uint32)   { c.body.WriteByte(0x0d); c.body.WriteU32(depth) }
func (c *Code) BrOnNull(depth uint32) { c.body.WriteByte(0xd5); c.body.WriteU32(depth) }

func (c *Code) Call(funcIdx uint32) { c.body.WriteByte(0x10); c.body.WriteU32(funcIdx) }

// CallRef calls a `(ref $typeIdx)` function value directly, the mechanism
// vtable method dispatch uses instead of a table + call_indirect.
func (c *Code) CallRef(typeIdx uint32) { c.body.WriteByte(0x14); c.body.WriteU32(typeIdx) }

// CallIndirect calls through tableIdx using a signature from the type
// section. Vtable-dispatched calls do not use it; they go through CallRef.
func (c *Code) CallIndirect(typeIdx, tableIdx uint32) {
	c.body.WriteByte(0x11)
	c.body.WriteU32(typeIdx)
	c.body.WriteU32(tableIdx)
}

func (c *Code) LocalGet(idx uint32) { c.body.WriteByte(0x20); c.body.WriteU32(idx) }
func (c *Code) LocalSet(idx uint32) { c.body.WriteByte(0x21); c.body.WriteU32(idx) }
func (c *Code) LocalTee(idx uint32) { c.body.WriteByte(0x22); c.body.WriteU32(idx) }
func (c *Code) GlobalGet(idx uint32) { c.body.WriteByte(0x23); c.body.WriteU32(idx) }
func (c *Code) GlobalSet(idx uint32) { c.body.WriteByte(0x24); c.body.WriteU32(idx) }

func (c *Code) I32Const(v int32) { c.body.WriteByte(0x41); c.body.WriteI32(v) }
func (c *Code) I64Const(v int64) { c.body.WriteByte(0x42); c.body.WriteI64(v) }
func (c *Code) F64Const(v float64) { c.body.WriteByte(0x44); c.body.WriteF64(v) }

// binop/relop/unop opcodes cover the i32/i64/f64 arithmetic and comparison
// operators the checker's binary expressions lower to.
const (
	OpI32Eqz = 0x45
	OpI32Eq  = 0x46
	OpI32Ne  = 0x47
	OpI32LtS = 0x48
	OpI32GtS = 0x4a
	OpI32LeS = 0x4c
	OpI32GeS = 0x4e
	OpI32Add = 0x6a
	OpI32Sub = 0x6b
	OpI32Mul = 0x6c
	OpI32And = 0x71
	OpI32Or  = 0x72
	OpI32Xor = 0x73

	OpF64Eq  = 0x61
	OpF64Ne  = 0x62
	OpF64Lt  = 0x63
	OpF64Gt  = 0x64
	OpF64Le  = 0x65
	OpF64Ge  = 0x66
	OpF64Add = 0xa0
	OpF64Sub = 0xa1
	OpF64Mul = 0xa2
	OpF64Div = 0xa3

	// conversions between zena's Number (f64) and the raw i32 wasm arrays,
	// strings, and loop counters need for indexing and length.
	OpI32TruncF64S   = 0xaa
	OpF64ConvertI32S = 0xb7
)

// Op emits a single opcode byte for the no-immediate numeric instructions
// listed above.
func (c *Code) Op(opcode byte) { c.body.WriteByte(opcode) }

// --- GC instructions (0xfb prefix) ---

func (c *Code) StructNew(typeIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x00)
	c.body.WriteU32(typeIdx)
}

func (c *Code) StructNewDefault(typeIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x01)
	c.body.WriteU32(typeIdx)
}

func (c *Code) StructGet(typeIdx, fieldIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x02)
	c.body.WriteU32(typeIdx)
	c.body.WriteU32(fieldIdx)
}

func (c *Code) StructSet(typeIdx, fieldIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x05)
	c.body.WriteU32(typeIdx)
	c.body.WriteU32(fieldIdx)
}

func (c *Code) ArrayNew(typeIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x06)
	c.body.WriteU32(typeIdx)
}

func (c *Code) ArrayNewDefault(typeIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x07)
	c.body.WriteU32(typeIdx)
}

// ArrayNewFixed builds an array of exactly n elements from the n values on
// top of the stack (first element deepest), the form array/fixed-array
// literals lower to.
func (c *Code) ArrayNewFixed(typeIdx, n uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x08)
	c.body.WriteU32(typeIdx)
	c.body.WriteU32(n)
}

// ArrayNewData realizes an array from a data segment's bytes, given an
// (offset, size) pair on the stack: the mechanism a string literal uses to
// become a byte array at the point of use, reading from its shared segment
// instead of re-encoding the bytes at every occurrence.
func (c *Code) ArrayNewData(typeIdx, dataIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x09)
	c.body.WriteU32(typeIdx)
	c.body.WriteU32(dataIdx)
}

func (c *Code) ArrayGet(typeIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x0b)
	c.body.WriteU32(typeIdx)
}

func (c *Code) ArraySet(typeIdx uint32) {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x0e)
	c.body.WriteU32(typeIdx)
}

func (c *Code) ArrayLen() {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x0f)
}

// RefCast casts a reference to a concrete (possibly nullable) struct/array
// type, the instruction used for `super` upcasts and checked downcasts.
func (c *Code) RefCast(t ValType) {
	c.body.WriteByte(0xfb)
	if t.code == refNullCode {
		c.body.WriteU32(0x17)
	} else {
		c.body.WriteU32(0x16)
	}
	t.Encode(c.body)
}

func (c *Code) RefTest(t ValType) {
	c.body.WriteByte(0xfb)
	if t.code == refNullCode {
		c.body.WriteU32(0x15)
	} else {
		c.body.WriteU32(0x14)
	}
	t.Encode(c.body)
}

func (c *Code) RefNull(heapAbs byte) {
	c.body.WriteByte(0xd0)
	c.body.WriteByte(heapAbs)
}

// RefNullType emits `ref.null` against t's heap type, concrete struct/array/
// func type index or abstract (any/eq/struct/...), the form needed when the
// null literal's target is a specific class/array/tuple/record type rather
// than a bare anyref.
func (c *Code) RefNullType(t ValType) {
	c.body.WriteByte(0xd0)
	if t.typeIdx >= 0 {
		c.body.WriteI32(t.typeIdx)
		return
	}
	c.body.WriteByte(byte(t.heapAbs))
}

func (c *Code) RefIsNull() { c.body.WriteByte(0xd1) }
func (c *Code) RefFunc(funcIdx uint32) { c.body.WriteByte(0xd2); c.body.WriteU32(funcIdx) }

// RefEq compares two references for identity, the instruction `===`/`!==`
// lower to directly and plain `==`/`!=` fall back to absent an operator
// method.
func (c *Code) RefEq() { c.body.WriteByte(0xd3) }

// RefI31 boxes an i32 into a small immediate reference (31 usable bits),
// the representation a Boolean takes wherever a boxed/AnyRef slot is needed.
func (c *Code) RefI31() {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x1c)
}

// I31GetS unboxes a RefI31 value back to i32, sign-extended (unused by
// Boolean, which only ever occupies bit 0, but kept symmetric with I31GetU).
func (c *Code) I31GetS() {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x1d)
}

// I31GetU unboxes a RefI31 value back to i32, zero-extended.
func (c *Code) I31GetU() {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x1e)
}

// AnyConvertExtern internalizes an externref into the any hierarchy, the
// step `$stringGetByte` needs before it can ref.cast its externref parameter
// down to the byte-array type.
func (c *Code) AnyConvertExtern() {
	c.body.WriteByte(0xfb)
	c.body.WriteU32(0x1a)
}

// RefAsNonNull asserts a nullable reference is non-null, trapping otherwise.
func (c *Code) RefAsNonNull() { c.body.WriteByte(0xd4) }

// --- Exception handling (throw/try_table) ---

func (c *Code) Throw(tagIdx uint32) { c.body.WriteByte(0x08); c.body.WriteU32(tagIdx) }
func (c *Code) ThrowRef()           { c.body.WriteByte(0x0a) }

// CatchClauseKind selects one of try_table's catch handler forms.
type CatchClauseKind byte

const (
	CatchTag      CatchClauseKind = 0x00
	CatchTagRef   CatchClauseKind = 0x01
	CatchAll      CatchClauseKind = 0x02
	CatchAllRef   CatchClauseKind = 0x03
)

// TryTableCatch is one catch clause of a try_table block.
type TryTableCatch struct {
	Kind   CatchClauseKind
	TagIdx uint32 // ignored for CatchAll/CatchAllRef
	Label  uint32
}

// TryTable opens a try_table block: body runs under bt, with each catch
// routing a thrown exception matching its tag to Label.
func (c *Code) TryTable(bt BlockType, catches []TryTableCatch) {
	c.body.WriteByte(0x1f)
	bt.encode(c.body)
	c.body.WriteVecHeader(len(catches))
	for _, cl := range catches {
		c.body.WriteByte(byte(cl.Kind))
		if cl.Kind == CatchTag || cl.Kind == CatchTagRef {
			c.body.WriteU32(cl.TagIdx)
		}
		c.body.WriteU32(cl.Label)
	}
}
