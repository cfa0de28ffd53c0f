package driver_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zena-lang/zenac/internal/clog"
	"github.com/zena-lang/zenac/internal/config"
	"github.com/zena-lang/zenac/internal/diag"
	"github.com/zena-lang/zenac/internal/driver"
	"github.com/zena-lang/zenac/internal/loader"
)

func TestCompileSourceProducesModuleBytes(t *testing.T) {
	cfg := config.Default()
	d := driver.New(cfg, loader.NewFS(nil), clog.Default)

	src := `package test

fn main() {
}
`
	res := d.CompileSource(src, "main.zena")
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if len(res.Bytes) == 0 {
		t.Fatalf("expected non-empty module bytes")
	}
	// WasmGC modules, like all Wasm binaries, open with the \0asm magic
	// followed by the version 1 field.
	wantHeader := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	if diff := cmp.Diff(wantHeader, res.Bytes[:len(wantHeader)]); diff != "" {
		t.Fatalf("unexpected module header (-want +got):\n%s", diff)
	}
}

func TestCompileSourceReportsCheckerDiagnosticsWithoutCodegen(t *testing.T) {
	cfg := config.Default()
	d := driver.New(cfg, loader.NewFS(nil), clog.Default)

	src := `package test

fn main() {
    let x: Boolean = 5;
}
`
	res := d.CompileSource(src, "main.zena")
	if !res.HasErrors() {
		t.Fatalf("expected a type error assigning a number literal to Boolean")
	}
	if res.Bytes != nil {
		t.Fatalf("codegen must not run once checking reports a blocking diagnostic")
	}

	found := false
	for _, dg := range res.Diagnostics {
		if dg.Code == diag.CodeTypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a TYPE_MISMATCH diagnostic, got %+v", res.Diagnostics)
	}
}

func TestCompileSourceResolvesBuiltinModule(t *testing.T) {
	cfg := config.Default()
	d := driver.New(cfg, loader.NewFS(nil), clog.Default)

	src := `package test

use zena:iterator;

fn main() {
}
`
	res := d.CompileSource(src, "main.zena")
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics resolving the builtin iterator module: %+v", res.Diagnostics)
	}
}
