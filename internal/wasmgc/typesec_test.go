package wasmgc_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zena-lang/zenac/internal/encoder"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

func TestTypeSectionReserveThenFillSupportsForwardReferences(t *testing.T) {
	var sec wasmgc.TypeSection

	idx := sec.Reserve()
	if idx != 0 {
		t.Fatalf("expected the first reserved index to be 0, got %d", idx)
	}
	sec.Fill(idx, wasmgc.NewStructType([]wasmgc.FieldType{{Type: wasmgc.I32}}, -1, false))

	if sec.Len() != 1 {
		t.Fatalf("expected 1 registered type, got %d", sec.Len())
	}

	buf := sec.Encode()
	if buf.Len() == 0 {
		t.Fatalf("expected a non-empty encoded rec group")
	}
}

func TestTypeSectionAddReturnsSequentialIndices(t *testing.T) {
	var sec wasmgc.TypeSection
	a := sec.Add(wasmgc.NewFuncType(nil, nil))
	b := sec.Add(wasmgc.NewArrayType(wasmgc.FieldType{Type: wasmgc.I32}, true))
	if a != 0 || b != 1 {
		t.Fatalf("expected sequential indices 0,1, got %d,%d", a, b)
	}
}

func TestEmptyTypeSectionEncodesToNothing(t *testing.T) {
	var sec wasmgc.TypeSection
	buf := sec.Encode()
	if diff := cmp.Diff(0, buf.Len()); diff != "" {
		t.Fatalf("an empty type section must encode to zero bytes (-want +got):\n%s", diff)
	}
}

func TestValTypeEncodeNumeric(t *testing.T) {
	buf := encoder.NewBuffer()
	wasmgc.I32.Encode(buf)
	if got := buf.Bytes(); len(got) != 1 || got[0] != 0x7f {
		t.Fatalf("expected i32 to encode as a single 0x7f byte, got % x", got)
	}
}

func TestValTypeEncodeConcreteRef(t *testing.T) {
	buf := encoder.NewBuffer()
	wasmgc.Ref(3).Encode(buf)
	got := buf.Bytes()
	if len(got) == 0 || got[0] != 0x64 {
		t.Fatalf("expected a non-nullable ref to start with 0x64, got % x", got)
	}
}

func TestValTypeIsNumeric(t *testing.T) {
	if !wasmgc.I32.IsNumeric() {
		t.Fatalf("I32 must report itself as numeric")
	}
	if wasmgc.AnyRefNull.IsNumeric() {
		t.Fatalf("AnyRefNull must not report itself as numeric")
	}
}
