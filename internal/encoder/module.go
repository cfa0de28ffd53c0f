package encoder

// SectionID identifies a top-level module section, in the fixed order the
// binary format requires them to appear (when present).
type SectionID byte

const (
	SectionCustom   SectionID = 0
	SectionType     SectionID = 1
	SectionImport   SectionID = 2
	SectionFunction SectionID = 3
	SectionTable    SectionID = 4
	SectionMemory   SectionID = 5
	SectionGlobal   SectionID = 6
	SectionExport   SectionID = 7
	SectionStart    SectionID = 8
	SectionElement  SectionID = 9
	SectionCode     SectionID = 10
	SectionData     SectionID = 11
	SectionDataCnt  SectionID = 12
	SectionTag      SectionID = 13
)

var wasmMagic = [4]byte{0x00, 0x61, 0x73, 0x6d}
var wasmVersion = [4]byte{0x01, 0x00, 0x00, 0x00}

// Module assembles a complete binary module out of ordered sections.
type Module struct {
	out *Buffer
}

// NewModule returns a Module with the binary header already written.
func NewModule() *Module {
	out := NewBuffer()
	out.WriteBytes(wasmMagic[:])
	out.WriteBytes(wasmVersion[:])
	return &Module{out: out}
}

// WriteSection appends a section with the given id, sized to its payload.
// Sections must be appended in the canonical order; an empty payload is
// skipped since a zero-length section is redundant.
func (m *Module) WriteSection(id SectionID, payload *Buffer) {
	if payload.Len() == 0 {
		return
	}
	m.out.WriteByte(byte(id))
	m.out.WriteSized(payload)
}

// WriteCustomSection appends a named custom section (e.g. "name", producing
// debug symbol names for tools that read them).
func (m *Module) WriteCustomSection(name string, body *Buffer) {
	payload := NewBuffer()
	payload.WriteName(name)
	payload.WriteBytes(body.Bytes())
	m.out.WriteByte(byte(SectionCustom))
	m.out.WriteSized(payload)
}

// Bytes returns the complete encoded module.
func (m *Module) Bytes() []byte { return m.out.Bytes() }
