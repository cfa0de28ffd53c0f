package codegen

import (
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

// boxedNumberTypeIdx returns the single-field struct type a Number value is
// wrapped in whenever it needs to flow through an anyref-typed slot: a
// generic's type-parameter-typed field, a union member, or any other
// AnyRef-shaped storage. Built lazily since most programs box no numbers at
// all.
func (g *Generator) boxedNumberTypeIdx() uint32 {
	if g.hasBoxedNumber {
		return g.boxedNumberType
	}
	idx := g.b.Types.Add(wasmgc.NewStructType([]wasmgc.FieldType{{Type: wasmgc.F64, Mutable: false}}, -1, true))
	g.boxedNumberType = idx
	g.hasBoxedNumber = true
	return idx
}

// needsBoxing reports whether a value of static type src, represented the
// way mapType lays it out, must be boxed before it can occupy a slot typed
// dst: true exactly when src is an unboxed f64/i32 (Number/Boolean) flowing
// into any anyref-shaped destination (AnyRef, Any, a type parameter, a
// union, Unknown).
func needsBoxing(src, dst types.Type) bool {
	if src != types.Number && src != types.Boolean {
		return false
	}
	switch dst.(type) {
	case *types.TypeParameter, *types.Union:
		return true
	}
	if dst == types.AnyRef || dst == types.Any || dst == types.Unknown {
		return true
	}
	return false
}

// needsUnboxing is needsBoxing's inverse: src is an anyref-shaped value
// (AnyRef/Any/a type parameter/a union/Unknown) flowing into an unboxed
// Number or Boolean slot.
func needsUnboxing(src, dst types.Type) bool {
	if dst != types.Number && dst != types.Boolean {
		return false
	}
	switch src.(type) {
	case *types.TypeParameter, *types.Union:
		return true
	}
	if src == types.AnyRef || src == types.Any || src == types.Unknown {
		return true
	}
	return false
}

// box wraps the value on top of the stack (of static type src, either a
// Number f64 or a Boolean i32) into its anyref-shaped carrier: Number gets a
// one-field struct, Boolean gets ref.i31 (a Boolean only ever needs one of
// its 31 immediate bits).
func (g *Generator) box(ctx *lowerCtx, src types.Type) {
	if src == types.Boolean {
		ctx.code.RefI31()
		return
	}
	ctx.code.StructNew(g.boxedNumberTypeIdx())
}

// unbox reverses box: given an anyref on top of the stack known (by the
// static type the checker assigned) to actually carry a Number or Boolean,
// cast it back to its unboxed representation.
func (g *Generator) unbox(ctx *lowerCtx, dst types.Type) {
	if dst == types.Boolean {
		ctx.code.RefCast(wasmgc.I31RefNull)
		ctx.code.I31GetS()
		return
	}
	ctx.code.RefCast(wasmgc.RefNull(g.boxedNumberTypeIdx()))
	ctx.code.StructGet(g.boxedNumberTypeIdx(), 0)
}
