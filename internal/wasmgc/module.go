package wasmgc

import "github.com/zena-lang/zenac/internal/encoder"

// ExportKind identifies what a module export names.
type ExportKind byte

const (
	ExportFunc   ExportKind = 0x00
	ExportTable  ExportKind = 0x01
	ExportMemory ExportKind = 0x02
	ExportGlobal ExportKind = 0x03
	ExportTag    ExportKind = 0x04
)

type export struct {
	name string
	kind ExportKind
	idx  uint32
}

// Global is one module-level global variable.
type Global struct {
	Type    ValType
	Mutable bool
	Init    *Code // a constant-expression body: consts, global.get, struct.new, ref.null
}

// FuncImport describes an imported host function. Built-in modules such as
// `zena:iterator` are zena source served by the loader, not imports.
type FuncImport struct {
	Module, Name string
	TypeIdx      uint32
}

// Builder assembles a complete WasmGC module: the type section is built
// first (via Types), then functions/globals/exports are registered, and
// Build encodes everything in the binary format's required section order.
type Builder struct {
	Types TypeSection

	imports   []FuncImport
	funcTypes []uint32 // function index (after imports) -> type index
	funcCode  []*Code
	funcNames []string // parallel to funcTypes, for the debug name section

	globals []Global

	data []string // passive data segments, one per unique string literal

	tagTypes []uint32 // tag index -> type index of its (param) signature

	exports []export

	memoryMin, memoryMax uint32
	hasMemory            bool
	hasMemoryMax         bool

	tableMin, tableMax uint32
	hasTable           bool
	hasTableMax        bool
	tableElemType      ValType

	startFunc    uint32
	hasStartFunc bool
}

// NewBuilder returns an empty module builder.
func NewBuilder() *Builder {
	return &Builder{Types: TypeSection{}}
}

// ImportFunc registers a host import and returns its function index, which
// shares the same index space as locally defined functions (imports come
// first).
func (b *Builder) ImportFunc(module, name string, typeIdx uint32) uint32 {
	b.imports = append(b.imports, FuncImport{Module: module, Name: name, TypeIdx: typeIdx})
	return uint32(len(b.imports) - 1)
}

// AddFunc registers a locally-defined function body and returns its
// function index (offset past the imported functions).
func (b *Builder) AddFunc(name string, typeIdx uint32, code *Code) uint32 {
	b.funcTypes = append(b.funcTypes, typeIdx)
	b.funcCode = append(b.funcCode, code)
	b.funcNames = append(b.funcNames, name)
	return uint32(len(b.imports) + len(b.funcTypes) - 1)
}

// ReserveFunc allocates a function index with an empty body before its code
// is known, so a class's method table can record every slot's function index
// up front (including forward references to methods of classes not yet
// lowered) and a vtable's `ref.func` globals can be built before any method
// body exists. FillFuncCode must be called with the real body before Build.
func (b *Builder) ReserveFunc(name string, typeIdx uint32) uint32 {
	return b.AddFunc(name, typeIdx, NewCode())
}

// FillFuncCode replaces the body of a function previously registered by
// ReserveFunc (or AddFunc).
func (b *Builder) FillFuncCode(funcIdx uint32, code *Code) {
	b.funcCode[int(funcIdx)-len(b.imports)] = code
}

// AddGlobal registers a module-level global and returns its index.
func (b *Builder) AddGlobal(g Global) uint32 {
	b.globals = append(b.globals, g)
	return uint32(len(b.globals) - 1)
}

// AddDataSegment registers a passive data segment holding bytes and returns
// its data index, for realizing a string literal via array.new_data at the
// point of use rather than re-encoding the bytes inline at every occurrence.
func (b *Builder) AddDataSegment(bytes string) uint32 {
	b.data = append(b.data, bytes)
	return uint32(len(b.data) - 1)
}

// AddTag registers an exception tag (a function type with no results) and
// returns its tag index; zena's single module-wide exception channel uses
// one tag carrying the thrown value boxed as a single anyref.
func (b *Builder) AddTag(typeIdx uint32) uint32 {
	b.tagTypes = append(b.tagTypes, typeIdx)
	return uint32(len(b.tagTypes) - 1)
}

// SetMemory declares the module's single linear memory, in 64KiB pages.
func (b *Builder) SetMemory(min uint32, max uint32, hasMax bool) {
	b.hasMemory = true
	b.memoryMin = min
	b.memoryMax = max
	b.hasMemoryMax = hasMax
}

// SetTable declares the module's single table of elemType references.
// Vtable dispatch uses call_ref and needs no table.
func (b *Builder) SetTable(elemType ValType, min, max uint32, hasMax bool) {
	b.hasTable = true
	b.tableElemType = elemType
	b.tableMin = min
	b.tableMax = max
	b.hasTableMax = hasMax
}

// SetStart marks funcIdx as the module's start function.
func (b *Builder) SetStart(funcIdx uint32) {
	b.startFunc = funcIdx
	b.hasStartFunc = true
}

// Export records a name binding for funcIdx/globalIdx et al.
func (b *Builder) Export(name string, kind ExportKind, idx uint32) {
	b.exports = append(b.exports, export{name: name, kind: kind, idx: idx})
}

// Build encodes the full module in canonical section order.
func (b *Builder) Build() []byte {
	m := encoder.NewModule()

	m.WriteSection(encoder.SectionType, b.Types.Encode())
	m.WriteSection(encoder.SectionImport, b.encodeImports())
	m.WriteSection(encoder.SectionFunction, b.encodeFunctionSection())
	m.WriteSection(encoder.SectionTable, b.encodeTable())
	m.WriteSection(encoder.SectionMemory, b.encodeMemory())
	m.WriteSection(encoder.SectionTag, b.encodeTags())
	m.WriteSection(encoder.SectionGlobal, b.encodeGlobals())
	m.WriteSection(encoder.SectionExport, b.encodeExports())
	if b.hasStartFunc {
		start := encoder.NewBuffer()
		start.WriteU32(b.startFunc)
		m.WriteSection(encoder.SectionStart, start)
	}
	if len(b.data) > 0 {
		cnt := encoder.NewBuffer()
		cnt.WriteU32(uint32(len(b.data)))
		m.WriteSection(encoder.SectionDataCnt, cnt)
	}
	m.WriteSection(encoder.SectionCode, b.encodeCode())
	m.WriteSection(encoder.SectionData, b.encodeData())
	m.WriteCustomSection("name", b.encodeNames())

	return m.Bytes()
}

func (b *Builder) encodeImports() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.imports) == 0 {
		return buf
	}
	buf.WriteVecHeader(len(b.imports))
	for _, imp := range b.imports {
		buf.WriteName(imp.Module)
		buf.WriteName(imp.Name)
		buf.WriteByte(0x00) // func import
		buf.WriteU32(imp.TypeIdx)
	}
	return buf
}

func (b *Builder) encodeFunctionSection() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.funcTypes) == 0 {
		return buf
	}
	buf.WriteVecHeader(len(b.funcTypes))
	for _, t := range b.funcTypes {
		buf.WriteU32(t)
	}
	return buf
}

func (b *Builder) encodeTable() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if !b.hasTable {
		return buf
	}
	buf.WriteVecHeader(1)
	b.tableElemType.Encode(buf)
	if b.hasTableMax {
		buf.WriteByte(0x01)
		buf.WriteU32(b.tableMin)
		buf.WriteU32(b.tableMax)
	} else {
		buf.WriteByte(0x00)
		buf.WriteU32(b.tableMin)
	}
	return buf
}

func (b *Builder) encodeMemory() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if !b.hasMemory {
		return buf
	}
	buf.WriteVecHeader(1)
	if b.hasMemoryMax {
		buf.WriteByte(0x01)
		buf.WriteU32(b.memoryMin)
		buf.WriteU32(b.memoryMax)
	} else {
		buf.WriteByte(0x00)
		buf.WriteU32(b.memoryMin)
	}
	return buf
}

func (b *Builder) encodeTags() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.tagTypes) == 0 {
		return buf
	}
	buf.WriteVecHeader(len(b.tagTypes))
	for _, t := range b.tagTypes {
		buf.WriteByte(0x00) // exception attribute, always 0
		buf.WriteU32(t)
	}
	return buf
}

func (b *Builder) encodeGlobals() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.globals) == 0 {
		return buf
	}
	buf.WriteVecHeader(len(b.globals))
	for _, g := range b.globals {
		g.Type.Encode(buf)
		if g.Mutable {
			buf.WriteByte(0x01)
		} else {
			buf.WriteByte(0x00)
		}
		buf.WriteBytes(g.Init.body.Bytes())
		buf.WriteByte(0x0b)
	}
	return buf
}

func (b *Builder) encodeExports() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.exports) == 0 {
		return buf
	}
	buf.WriteVecHeader(len(b.exports))
	for _, e := range b.exports {
		buf.WriteName(e.name)
		buf.WriteByte(byte(e.kind))
		buf.WriteU32(e.idx)
	}
	return buf
}

func (b *Builder) encodeCode() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.funcCode) == 0 {
		return buf
	}
	buf.WriteVecHeader(len(b.funcCode))
	for _, code := range b.funcCode {
		buf.WriteBytes(code.Encode().Bytes())
	}
	return buf
}

// encodeData emits a passive data segment (mode 01) per registered string
// literal, in registration order, matching the indices returned by
// AddDataSegment.
func (b *Builder) encodeData() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.data) == 0 {
		return buf
	}
	buf.WriteVecHeader(len(b.data))
	for _, s := range b.data {
		buf.WriteByte(0x01) // passive segment
		buf.WriteVecHeader(len(s))
		buf.WriteBytes([]byte(s))
	}
	return buf
}

// encodeNames emits the "name" custom section's function subsection, so
// stack traces and disassemblers show zena function names instead of bare
// indices.
func (b *Builder) encodeNames() *encoder.Buffer {
	buf := encoder.NewBuffer()
	if len(b.funcNames) == 0 {
		return buf
	}
	sub := encoder.NewBuffer()
	sub.WriteVecHeader(len(b.funcNames))
	for i, name := range b.funcNames {
		sub.WriteU32(uint32(len(b.imports) + i))
		sub.WriteName(name)
	}
	buf.WriteByte(0x01) // function names subsection
	buf.WriteSized(sub)
	return buf
}
