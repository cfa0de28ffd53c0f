package types_test

import (
	"testing"

	"github.com/zena-lang/zenac/internal/types"
)

func TestAssignableToPrimitives(t *testing.T) {
	cases := []struct {
		name     string
		src, dst types.Type
		want     bool
	}{
		{"identity", types.Number, types.Number, true},
		{"never flows anywhere", types.Never, types.Boolean, true},
		{"unknown never flows in", types.Unknown, types.Number, false},
		{"unknown never flows out", types.Number, types.Unknown, false},
		{"anything to any", types.Number, types.Any, true},
		{"boolean not number", types.Boolean, types.Number, false},
		{"null to anyref", types.Null, types.AnyRef, true},
		{"number is not a reference, null excluded", types.Null, types.Number, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := types.AssignableTo(tc.src, tc.dst); got != tc.want {
				t.Fatalf("AssignableTo(%s, %s) = %v, want %v", tc.src, tc.dst, got, tc.want)
			}
		})
	}
}

func TestAssignableToLiteralWidening(t *testing.T) {
	lit := &types.Literal{Kind: "number", Value: "5"}
	if !types.AssignableTo(lit, types.Number) {
		t.Fatalf("a number literal must widen to Number")
	}
	if types.AssignableTo(lit, types.Boolean) {
		t.Fatalf("a number literal must not widen to Boolean")
	}
}

func TestAssignableToDistinctAlias(t *testing.T) {
	distinct := &types.TypeAlias{Name: "UserId", Underlying: types.Number, Distinct: true}
	transparent := &types.TypeAlias{Name: "Age", Underlying: types.Number, Distinct: false}

	if types.AssignableTo(types.Number, distinct) {
		t.Fatalf("a distinct alias must not accept its own underlying type (S6)")
	}
	if !types.AssignableTo(distinct, distinct) {
		t.Fatalf("a distinct alias must be assignable to itself")
	}
	if !types.AssignableTo(types.Number, transparent) {
		t.Fatalf("a transparent alias must accept its underlying type")
	}
}

func TestAssignableToFunctionAdaptation(t *testing.T) {
	narrow := &types.Function{Params: []types.Type{types.Number}, Return: types.Number}
	wide := &types.Function{Params: []types.Type{types.Number, types.Number}, Return: types.Number}

	if !types.AssignableTo(narrow, wide) {
		t.Fatalf("a function with fewer parameters must adapt to a wider one (S7)")
	}
	if types.AssignableTo(wide, narrow) {
		t.Fatalf("a function must not adapt to a narrower parameter list")
	}
}

func TestAssignableToUnion(t *testing.T) {
	u := &types.Union{Members: []types.Type{types.Number, types.Boolean}}
	if !types.AssignableTo(types.Number, u) {
		t.Fatalf("a member type must be assignable into its union")
	}
	if !types.AssignableTo(u, types.Any) {
		t.Fatalf("every union is assignable to Any")
	}
	other := &types.Union{Members: []types.Type{types.Number}}
	if types.AssignableTo(u, other) {
		t.Fatalf("a wider union must not be assignable to a narrower one missing a member")
	}
}

func TestAssignableToClassHierarchy(t *testing.T) {
	base := &types.Class{Name: "Animal"}
	derived := &types.Class{Name: "Dog", Super: base}
	unrelated := &types.Class{Name: "Rock"}

	if !types.AssignableTo(derived, base) {
		t.Fatalf("a derived class must be assignable to its superclass")
	}
	if types.AssignableTo(base, derived) {
		t.Fatalf("a superclass must not be assignable to a derived class")
	}
	if types.AssignableTo(unrelated, base) {
		t.Fatalf("an unrelated class must not be assignable")
	}
}

func TestAssignableToClassRecordWidthSubtyping(t *testing.T) {
	// spec.md §4.2 rule 13: a class satisfies a record shape if every field
	// the record names is present, with an assignable type, anywhere on the
	// class's super chain.
	base := &types.Class{
		Name:   "Animal",
		Fields: []types.Field{{Name: "name", Type: types.AnyRef}},
	}
	derived := &types.Class{
		Name:   "Dog",
		Super:  base,
		Fields: []types.Field{{Name: "breed", Type: types.AnyRef}},
	}
	shape := &types.Record{Fields: []types.RecordField{
		{Name: "name", Type: types.AnyRef},
		{Name: "breed", Type: types.AnyRef},
	}}
	missing := &types.Record{Fields: []types.RecordField{
		{Name: "age", Type: types.Number},
	}}

	if !types.AssignableTo(derived, shape) {
		t.Fatalf("Dog must satisfy a record shape combining its own and its superclass's fields")
	}
	if types.AssignableTo(derived, missing) {
		t.Fatalf("Dog must not satisfy a record shape naming a field it doesn't have")
	}
	if types.AssignableTo(base, shape) {
		t.Fatalf("Animal alone must not satisfy a shape requiring Dog's own field")
	}
}

func TestAssignableToInterfaceConformance(t *testing.T) {
	iface := &types.Interface{Name: "Greeter"}
	class := &types.Class{Name: "Person", Implements: []*types.Interface{iface}}
	sub := &types.Class{Name: "Employee", Super: class}

	if !types.AssignableTo(class, iface) {
		t.Fatalf("a class declaring Implements must satisfy the interface")
	}
	if !types.AssignableTo(sub, iface) {
		t.Fatalf("a subclass must inherit its superclass's interface conformance")
	}
}
