package codegen_test

import (
	"testing"

	"github.com/zena-lang/zenac/internal/codegen"
	"github.com/zena-lang/zenac/internal/parser"
	"github.com/zena-lang/zenac/internal/types"
)

func compile(t *testing.T, src string) ([]byte, []string) {
	t.Helper()
	p := parser.New(src, parser.WithFilename("test.zena"))
	file := p.ParseFile()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors: %+v", p.Errors())
	}
	checker := types.NewChecker()
	diags := checker.Check(file)
	out, genDiags := codegen.Generate(file, checker)
	var msgs []string
	for _, d := range append(diags, genDiags...) {
		msgs = append(msgs, string(d.Code)+": "+d.Message)
	}
	return out, msgs
}

func TestGenerateEmptyMainProducesAValidHeader(t *testing.T) {
	out, msgs := compile(t, "package test\n\nfn main() {\n}\n")
	if len(out) == 0 {
		t.Fatalf("expected non-empty module bytes, diagnostics: %v", msgs)
	}
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for i, b := range want {
		if out[i] != b {
			t.Fatalf("unexpected module header byte %d: got %#x want %#x", i, out[i], b)
		}
	}
}

func TestGenerateClassWithMethodCompiles(t *testing.T) {
	src := `package test

class Counter {
    count: Number;

    new(start: Number) {
        this.count = start;
    }

    fn value() -> Number {
        return this.count;
    }
}

fn main() {
}
`
	out, msgs := compile(t, src)
	if len(out) == 0 {
		t.Fatalf("expected non-empty module bytes for a class declaration, diagnostics: %v", msgs)
	}
}

func TestGenerateInterfaceImplementationCompiles(t *testing.T) {
	src := `package test

interface Greeter {
    fn greet() -> Number;
}

class Person implements Greeter {
    fn greet() -> Number {
        return 1;
    }
}

fn main() {
}
`
	out, msgs := compile(t, src)
	if len(out) == 0 {
		t.Fatalf("expected non-empty module bytes for an interface implementation, diagnostics: %v", msgs)
	}
}

func TestGenerateMutableCaptureClosureCompiles(t *testing.T) {
	// spec.md §4.5.1: a closure that reassigns a captured variable across
	// calls needs a mutable-capture cell, not a copy-once context field.
	src := `package test

fn makeCounter() -> () -> Number {
    let mut count = 0;
    return fn() -> Number {
        count = count + 1;
        return count;
    };
}

fn main() {
    let counter = makeCounter();
    let a = counter();
    let b = counter();
}
`
	out, msgs := compile(t, src)
	if len(out) == 0 {
		t.Fatalf("expected non-empty module bytes for a mutable-capture closure, diagnostics: %v", msgs)
	}
}

func TestGenerateIfMatchAndLoopsCompile(t *testing.T) {
	src := `package test

fn classify(n: Number) -> Number {
    if n < 0 {
        return 0 - 1;
    } else if n == 0 {
        return 0;
    } else {
        return 1;
    }
}

fn sumRange(limit: Number) -> Number {
    let total = 0;
    for i in 0..limit {
        total = total + i;
    }
    return total;
}

fn describe(n: Number) -> Number {
    return match n {
        0 => 0,
        1 => 1,
        _ => 2,
    };
}

fn main() {
    let xs = [1, 2, 3];
    let i = 0;
    while i < 3 {
        i = i + 1;
    }
    for x in xs {
        let y = x;
    }
}
`
	out, msgs := compile(t, src)
	if len(out) == 0 {
		t.Fatalf("expected non-empty module bytes for if/match/loop bodies, diagnostics: %v", msgs)
	}
}
