// Package encoder implements the low-level byte-oriented primitives of the
// WebAssembly binary format: LEB128 integers and length-prefixed vectors.
// It has no notion of WasmGC's type grammar; internal/wasmgc builds module
// structure on top of it.
package encoder

import "math"

// Buffer accumulates an encoded byte stream. Its zero value is ready to use.
type Buffer struct {
	buf []byte
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Bytes returns the accumulated bytes.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return len(b.buf) }

// WriteByte appends a single raw byte.
func (b *Buffer) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// WriteBytes appends raw bytes verbatim.
func (b *Buffer) WriteBytes(p []byte) {
	b.buf = append(b.buf, p...)
}

// WriteU32 writes an unsigned LEB128-encoded value.
func (b *Buffer) WriteU32(v uint32) {
	b.writeULEB(uint64(v))
}

// WriteU64 writes an unsigned LEB128-encoded value.
func (b *Buffer) WriteU64(v uint64) {
	b.writeULEB(v)
}

func (b *Buffer) writeULEB(v uint64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b.buf = append(b.buf, c)
		if v == 0 {
			return
		}
	}
}

// WriteI32 writes a signed LEB128-encoded value, sign-extended to 32 bits.
func (b *Buffer) WriteI32(v int32) {
	b.writeSLEB(int64(v))
}

// WriteI64 writes a signed LEB128-encoded value.
func (b *Buffer) WriteI64(v int64) {
	b.writeSLEB(v)
}

func (b *Buffer) writeSLEB(v int64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		signBitSet := c&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			b.buf = append(b.buf, c)
			return
		}
		c |= 0x80
		b.buf = append(b.buf, c)
	}
}

// WriteF32 writes an IEEE-754 single-precision float, little-endian.
func (b *Buffer) WriteF32(v float32) {
	bits := math.Float32bits(v)
	b.buf = append(b.buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

// WriteF64 writes an IEEE-754 double-precision float, little-endian.
func (b *Buffer) WriteF64(v float64) {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		b.buf = append(b.buf, byte(bits>>(8*i)))
	}
}

// WriteName writes a length-prefixed UTF-8 string, the `name` production
// used for imports, exports, and custom sections.
func (b *Buffer) WriteName(s string) {
	b.WriteU32(uint32(len(s)))
	b.buf = append(b.buf, s...)
}

// WriteVecHeader writes the element count of a `vec(B)` production; callers
// write n encoded elements immediately afterward.
func (b *Buffer) WriteVecHeader(n int) {
	b.WriteU32(uint32(n))
}

// WriteSized appends the payload of a sub-encoder prefixed with its own
// byte length, the framing every section and nested block uses.
func (b *Buffer) WriteSized(payload *Buffer) {
	b.WriteU32(uint32(payload.Len()))
	b.WriteBytes(payload.Bytes())
}
