package types_test

import (
	"testing"

	"github.com/zena-lang/zenac/internal/diag"
	"github.com/zena-lang/zenac/internal/parser"
	"github.com/zena-lang/zenac/internal/types"
)

func checkSource(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	p := parser.New(src, parser.WithFilename("test.zena"))
	file := p.ParseFile()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors: %+v", p.Errors())
	}
	checker := types.NewChecker()
	return checker.Check(file)
}

func errorCodes(diags []diag.Diagnostic) []diag.Code {
	var codes []diag.Code
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			codes = append(codes, d.Code)
		}
	}
	return codes
}

// TestMixinComposition mirrors spec.md §8 scenario S5: a mixin applied to a
// plain class contributes a callable method.
func TestMixinComposition(t *testing.T) {
	src := `package test

class A {
}

mixin M on A {
    fn greet() -> Number {
        return 7;
    }
}

class B extends A with M {
}
`
	diags := checkSource(t, src)
	if codes := errorCodes(diags); len(codes) > 0 {
		t.Fatalf("expected no errors, got %v", codes)
	}
}

// TestDistinctAliasOpacity mirrors spec.md §8 scenario S6: a distinct alias
// rejects its underlying type without an explicit cast.
func TestDistinctAliasOpacity(t *testing.T) {
	src := `package test

distinct type UserId = Number;

fn main() {
    let u: UserId = 5;
}
`
	diags := checkSource(t, src)
	codes := errorCodes(diags)
	found := false
	for _, c := range codes {
		if c == diag.CodeTypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a TypeMismatch diagnostic assigning Number directly to a distinct alias, got %v", codes)
	}
}

func TestAbstractMethodInConcreteClassIsRejected(t *testing.T) {
	src := `package test

class Shape {
    abstract fn area() -> Number;
}
`
	diags := checkSource(t, src)
	codes := errorCodes(diags)
	found := false
	for _, c := range codes {
		if c == diag.CodeAbstractMethodInConcrete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AbstractMethodInConcreteClass for a non-abstract class, got %v", codes)
	}
}

func TestInterfaceImplementationMustMatchSignature(t *testing.T) {
	src := `package test

interface Greeter {
    fn greet() -> Number;
}

class Person implements Greeter {
    fn greet() -> Number {
        return 1;
    }
}
`
	diags := checkSource(t, src)
	if codes := errorCodes(diags); len(codes) > 0 {
		t.Fatalf("expected a matching method to satisfy the interface, got %v", codes)
	}
}

func TestReturnInsideMethodIsAccepted(t *testing.T) {
	// A bare return inside a method body is in a valid return context; the
	// checker's return-context tracking must not flag it.
	src := `package test

class Empty {
    fn ok() -> Void {
        return;
    }
}
`
	diags := checkSource(t, src)
	if codes := errorCodes(diags); len(codes) > 0 {
		t.Fatalf("a return inside a function body must not be flagged, got %v", codes)
	}
}
