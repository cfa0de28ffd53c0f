package encoder_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zena-lang/zenac/internal/encoder"
)

func TestWriteU32LEB128(t *testing.T) {
	cases := []struct {
		name string
		in   uint32
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"single byte", 0x7f, []byte{0x7f}},
		{"two bytes", 0x80, []byte{0x80, 0x01}},
		{"624485", 624485, []byte{0xe5, 0x8e, 0x26}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := encoder.NewBuffer()
			b.WriteU32(tc.in)
			if diff := cmp.Diff(tc.want, b.Bytes()); diff != "" {
				t.Fatalf("unexpected encoding (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteI32LEB128(t *testing.T) {
	cases := []struct {
		name string
		in   int32
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"positive", 2, []byte{0x02}},
		{"negative one", -1, []byte{0x7f}},
		{"-624485", -624485, []byte{0x9b, 0xf1, 0x59}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := encoder.NewBuffer()
			b.WriteI32(tc.in)
			if diff := cmp.Diff(tc.want, b.Bytes()); diff != "" {
				t.Fatalf("unexpected encoding (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteNamePrefixesLength(t *testing.T) {
	b := encoder.NewBuffer()
	b.WriteName("hi")
	want := []byte{0x02, 'h', 'i'}
	if diff := cmp.Diff(want, b.Bytes()); diff != "" {
		t.Fatalf("unexpected encoding (-want +got):\n%s", diff)
	}
}

func TestWriteSizedPrefixesPayloadLength(t *testing.T) {
	payload := encoder.NewBuffer()
	payload.WriteByte(0xaa)
	payload.WriteByte(0xbb)

	b := encoder.NewBuffer()
	b.WriteSized(payload)

	want := []byte{0x02, 0xaa, 0xbb}
	if diff := cmp.Diff(want, b.Bytes()); diff != "" {
		t.Fatalf("unexpected encoding (-want +got):\n%s", diff)
	}
}

func TestNewModuleWritesHeader(t *testing.T) {
	m := encoder.NewModule()
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	if diff := cmp.Diff(want, m.Bytes()); diff != "" {
		t.Fatalf("unexpected module header (-want +got):\n%s", diff)
	}
}

func TestWriteSectionFramesWithIDAndLength(t *testing.T) {
	m := encoder.NewModule()
	body := encoder.NewBuffer()
	body.WriteByte(0x01)
	m.WriteSection(encoder.SectionType, body)

	got := m.Bytes()[8:] // skip magic + version
	want := []byte{byte(encoder.SectionType), 0x01, 0x01}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected section framing (-want +got):\n%s", diff)
	}
}
