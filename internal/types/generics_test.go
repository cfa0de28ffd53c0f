package types_test

import (
	"testing"

	"github.com/zena-lang/zenac/internal/types"
)

func TestInternerReturnsIdenticalInstance(t *testing.T) {
	tp := &types.TypeParameter{Name: "T"}
	box := &types.Class{
		Name:       "Box",
		TypeParams: []*types.TypeParameter{tp},
		Fields:     []types.Field{{Name: "value", Type: tp}},
	}

	in := types.NewInterner()
	c1 := in.Instantiate(box, []types.Type{types.Number})
	c2 := in.Instantiate(box, []types.Type{types.Number})

	if c1 != c2 {
		t.Fatalf("two instantiations of Box<Number> must be identity-equal, got distinct objects")
	}
	if c1.Fields[0].Type != types.Number {
		t.Fatalf("Box<Number>.value must substitute to Number, got %s", c1.Fields[0].Type)
	}
}

func TestInternerDistinguishesTypeArguments(t *testing.T) {
	tp := &types.TypeParameter{Name: "T"}
	box := &types.Class{
		Name:       "Box",
		TypeParams: []*types.TypeParameter{tp},
		Fields:     []types.Field{{Name: "value", Type: tp}},
	}

	in := types.NewInterner()
	ofNumber := in.Instantiate(box, []types.Type{types.Number})
	ofBoolean := in.Instantiate(box, []types.Type{types.Boolean})

	if ofNumber == ofBoolean {
		t.Fatalf("Box<Number> and Box<Boolean> must be distinct instantiations")
	}
}

func TestSubstituteSelfReferentialClassDoesNotRecurse(t *testing.T) {
	// Node<T> { next: Node<T> }: a field typed as the bare generic source
	// (no TypeArgs of its own) is left untouched by Substitute's *Class case,
	// which only recurses when TypeArgs is non-empty. Resolving what
	// Node<Number>.next actually means is deferred to member lookup, per
	// spec.md §4.1 - this is what keeps instantiation from diverging on
	// self-referential generics without needing special-case recursion
	// guards here.
	tp := &types.TypeParameter{Name: "T"}
	node := &types.Class{
		Name:       "Node",
		TypeParams: []*types.TypeParameter{tp},
	}
	node.Fields = []types.Field{
		{Name: "value", Type: tp},
		{Name: "next", Type: node},
	}

	in := types.NewInterner()
	inst := in.Instantiate(node, []types.Type{types.Number})

	if inst.Fields[0].Type != types.Number {
		t.Fatalf("Node<Number>.value must substitute to Number")
	}
	if inst.Fields[1].Type != node {
		t.Fatalf("Node<Number>.next must stay pointed at the bare generic source, not recurse")
	}
}

func TestSubstituteReturnsSameValueWhenUnaffected(t *testing.T) {
	arr := &types.Array{Elem: types.Number}
	got := types.Substitute(arr, map[string]types.Type{"T": types.Boolean})
	if got != arr {
		t.Fatalf("substitution touching nothing under arr must return the same value, not a copy")
	}
}

func TestInternerIdentityArgsReturnsSourceUnchanged(t *testing.T) {
	// spec.md §4.1 rule 1: instantiating a generic class against exactly its
	// own type-parameter list (the shape its own body uses to refer to
	// itself, e.g. `next: Node<T>` inside `class Node<T>`) is not a distinct
	// instantiation - it must return the source class itself, not a clone.
	tp := &types.TypeParameter{Name: "T"}
	node := &types.Class{
		Name:       "Node",
		TypeParams: []*types.TypeParameter{tp},
	}
	node.Fields = []types.Field{
		{Name: "value", Type: tp},
		{Name: "next", Type: node},
	}

	in := types.NewInterner()
	got := in.Instantiate(node, []types.Type{tp})

	if got != node {
		t.Fatalf("instantiating Node<T> against its own type parameters must return the source class, got a distinct instance")
	}
}

func TestInternerCachesInstanceBeforeRecursiveSubstitution(t *testing.T) {
	// A self-referential generic field resolved through Instantiate (rather
	// than left as the bare source class) must find the same cached *Class
	// mid-population instead of recursing unboundedly or building a second,
	// divergent instance: "interning breaks recursion" (spec.md §9).
	tp := &types.TypeParameter{Name: "T"}
	node := &types.Class{
		Name:       "Node",
		TypeParams: []*types.TypeParameter{tp},
	}
	node.Fields = []types.Field{
		{Name: "value", Type: tp},
		{Name: "next", Type: tp},
	}

	in := types.NewInterner()
	inst := in.Instantiate(node, []types.Type{types.Number})

	if inst.Fields[0].Type != types.Number {
		t.Fatalf("Node<Number>.value must substitute to Number")
	}
	if inst.Fields[1].Type != types.Number {
		t.Fatalf("Node<Number>.next must substitute to Number")
	}
}

func TestUnifyBindsTypeParameters(t *testing.T) {
	tp := &types.TypeParameter{Name: "T"}
	subst, err := types.Unify(&types.Array{Elem: tp}, &types.Array{Elem: types.Number})
	if err != nil {
		t.Fatalf("unexpected unify error: %v", err)
	}
	if subst["T"] != types.Number {
		t.Fatalf("expected T bound to Number, got %v", subst["T"])
	}
}
