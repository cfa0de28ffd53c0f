package codegen

import "github.com/zena-lang/zenac/internal/wasmgc"

// stringDataIdxFor registers s as a passive data segment the first time it's
// seen and returns its data index, so two occurrences of the identical
// literal in the program share one segment.
func (g *Generator) stringDataIdxFor(s string) uint32 {
	if idx, ok := g.stringDataIdx[s]; ok {
		return idx
	}
	idx := g.b.AddDataSegment(s)
	g.stringDataIdx[s] = idx
	return idx
}

// lowerStringLiteral realizes a string literal as a byte array read out of
// its data segment at the point of use.
func (g *Generator) lowerStringLiteral(ctx *lowerCtx, s string) {
	dataIdx := g.stringDataIdxFor(s)
	ctx.code.I32Const(0)
	ctx.code.I32Const(int32(len(s)))
	ctx.code.ArrayNewData(g.byteArrayType, dataIdx)
}

// stringEqFuncIdx lazily synthesizes $stringEq(anyref, anyref) -> i32,
// comparing two byte arrays for content equality: same length, then every
// byte equal. Used to evaluate a string-literal match pattern, where `==`'s
// ref.eq fallback (see lowerInfixExpr) would wrongly compare identity.
func (g *Generator) stringEqFuncIdx() uint32 {
	if g.hasStringEqFunc {
		return g.stringEqFunc
	}
	sig := g.b.Types.Add(wasmgc.NewFuncType(
		[]wasmgc.ValType{wasmgc.AnyRefNull, wasmgc.AnyRefNull},
		[]wasmgc.ValType{wasmgc.I32},
	))
	idx := g.b.ReserveFunc("$stringEq", sig)
	g.stringEqFunc = idx
	g.hasStringEqFunc = true

	code := wasmgc.NewCode()
	arrTy := g.byteArrayType
	aLocal := uint32(0)
	bLocal := uint32(1)
	code.DeclareLocals(1, wasmgc.RefNull(arrTy)) // local 2: a as array
	code.DeclareLocals(1, wasmgc.RefNull(arrTy)) // local 3: b as array
	code.DeclareLocals(1, wasmgc.I32)            // local 4: length
	code.DeclareLocals(1, wasmgc.I32)            // local 5: loop index
	aArrLocal, bArrLocal, lenLocal, iLocal := uint32(2), uint32(3), uint32(4), uint32(5)

	code.LocalGet(aLocal)
	code.RefCast(wasmgc.RefNull(arrTy))
	code.LocalSet(aArrLocal)
	code.LocalGet(bLocal)
	code.RefCast(wasmgc.RefNull(arrTy))
	code.LocalSet(bArrLocal)

	code.LocalGet(aArrLocal)
	code.ArrayLen()
	code.LocalGet(bArrLocal)
	code.ArrayLen()
	code.Op(wasmgc.OpI32Ne)
	code.If(wasmgc.BlockType{Empty: true})
	code.I32Const(0)
	code.Return()
	code.End()

	code.LocalGet(aArrLocal)
	code.ArrayLen()
	code.LocalSet(lenLocal)
	code.I32Const(0)
	code.LocalSet(iLocal)

	code.Block(wasmgc.BlockType{Empty: true})
	code.Loop(wasmgc.BlockType{Empty: true})
	code.LocalGet(iLocal)
	code.LocalGet(lenLocal)
	code.Op(wasmgc.OpI32LtS)
	code.Op(wasmgc.OpI32Eqz)
	code.BrIf(1)

	code.LocalGet(aArrLocal)
	code.LocalGet(iLocal)
	code.ArrayGet(arrTy)
	code.LocalGet(bArrLocal)
	code.LocalGet(iLocal)
	code.ArrayGet(arrTy)
	code.Op(wasmgc.OpI32Ne)
	code.If(wasmgc.BlockType{Empty: true})
	code.I32Const(0)
	code.Return()
	code.End()

	code.LocalGet(iLocal)
	code.I32Const(1)
	code.Op(wasmgc.OpI32Add)
	code.LocalSet(iLocal)
	code.Br(0)
	code.End() // loop
	code.End() // block

	code.I32Const(1)
	g.b.FillFuncCode(idx, code)
	return idx
}

// stringConcatFuncIdx lazily synthesizes $stringConcat(anyref, anyref) ->
// anyref, building a fresh byte array holding a's bytes followed by b's.
func (g *Generator) stringConcatFuncIdx() uint32 {
	if g.hasStringConcat {
		return g.stringConcatFunc
	}
	sig := g.b.Types.Add(wasmgc.NewFuncType(
		[]wasmgc.ValType{wasmgc.AnyRefNull, wasmgc.AnyRefNull},
		[]wasmgc.ValType{wasmgc.AnyRefNull},
	))
	idx := g.b.ReserveFunc("$stringConcat", sig)
	g.stringConcatFunc = idx
	g.hasStringConcat = true

	code := wasmgc.NewCode()
	arrTy := g.byteArrayType
	aLocal, bLocal := uint32(0), uint32(1)
	code.DeclareLocals(1, wasmgc.RefNull(arrTy)) // 2: a as array
	code.DeclareLocals(1, wasmgc.RefNull(arrTy)) // 3: b as array
	code.DeclareLocals(1, wasmgc.RefNull(arrTy)) // 4: result array
	code.DeclareLocals(1, wasmgc.I32)            // 5: total length
	code.DeclareLocals(1, wasmgc.I32)            // 6: loop index
	aArr, bArr, result, total, i := uint32(2), uint32(3), uint32(4), uint32(5), uint32(6)

	code.LocalGet(aLocal)
	code.RefCast(wasmgc.RefNull(arrTy))
	code.LocalSet(aArr)
	code.LocalGet(bLocal)
	code.RefCast(wasmgc.RefNull(arrTy))
	code.LocalSet(bArr)

	code.LocalGet(aArr)
	code.ArrayLen()
	code.LocalGet(bArr)
	code.ArrayLen()
	code.Op(wasmgc.OpI32Add)
	code.LocalSet(total)

	code.LocalGet(total)
	code.ArrayNewDefault(arrTy)
	code.LocalSet(result)

	code.I32Const(0)
	code.LocalSet(i)
	code.Block(wasmgc.BlockType{Empty: true})
	code.Loop(wasmgc.BlockType{Empty: true})
	code.LocalGet(i)
	code.LocalGet(aArr)
	code.ArrayLen()
	code.Op(wasmgc.OpI32LtS)
	code.Op(wasmgc.OpI32Eqz)
	code.BrIf(1)
	code.LocalGet(result)
	code.LocalGet(i)
	code.LocalGet(aArr)
	code.LocalGet(i)
	code.ArrayGet(arrTy)
	code.ArraySet(arrTy)
	code.LocalGet(i)
	code.I32Const(1)
	code.Op(wasmgc.OpI32Add)
	code.LocalSet(i)
	code.Br(0)
	code.End()
	code.End()

	code.LocalGet(aArr)
	code.ArrayLen()
	code.LocalSet(total) // reuse total as the b-side write offset base
	code.I32Const(0)
	code.LocalSet(i)
	code.Block(wasmgc.BlockType{Empty: true})
	code.Loop(wasmgc.BlockType{Empty: true})
	code.LocalGet(i)
	code.LocalGet(bArr)
	code.ArrayLen()
	code.Op(wasmgc.OpI32LtS)
	code.Op(wasmgc.OpI32Eqz)
	code.BrIf(1)
	code.LocalGet(result)
	code.LocalGet(total)
	code.LocalGet(i)
	code.Op(wasmgc.OpI32Add)
	code.LocalGet(bArr)
	code.LocalGet(i)
	code.ArrayGet(arrTy)
	code.ArraySet(arrTy)
	code.LocalGet(i)
	code.I32Const(1)
	code.Op(wasmgc.OpI32Add)
	code.LocalSet(i)
	code.Br(0)
	code.End()
	code.End()

	code.LocalGet(result)
	g.b.FillFuncCode(idx, code)
	return idx
}

// buildStringGetByteExport builds and exports `$stringGetByte`, a
// host-facing helper returning a byte of a zena string by index. It takes
// an externref since the host never holds zena's internal anyref
// representation directly; any.convert_extern brings it back into the GC
// type hierarchy before the cast.
func (g *Generator) buildStringGetByteExport() {
	sig := g.b.Types.Add(wasmgc.NewFuncType(
		[]wasmgc.ValType{wasmgc.ExternRefNull, wasmgc.I32},
		[]wasmgc.ValType{wasmgc.I32},
	))
	idx := g.b.AddFunc("$stringGetByte", sig, wasmgc.NewCode())
	g.stringGetByteFunc = idx

	code := wasmgc.NewCode()
	code.LocalGet(0)
	code.AnyConvertExtern()
	code.RefCast(wasmgc.RefNull(g.byteArrayType))
	code.LocalGet(1)
	code.ArrayGet(g.byteArrayType)
	g.b.FillFuncCode(idx, code)

	g.b.Export("$stringGetByte", wasmgc.ExportFunc, idx)
}

// stringHashFuncIdx lazily synthesizes $stringHash(anyref) -> i32, an
// FNV-1a hash over a byte array's contents. Nothing in the generator calls
// it, so $stringHash is neither emitted nor exported; zena itself has no
// hash-keyed collection that would call this internally.
func (g *Generator) stringHashFuncIdx() uint32 {
	if g.hasStringHashFunc {
		return g.stringHashFunc
	}
	sig := g.b.Types.Add(wasmgc.NewFuncType([]wasmgc.ValType{wasmgc.AnyRefNull}, []wasmgc.ValType{wasmgc.I32}))
	idx := g.b.ReserveFunc("$stringHash", sig)
	g.stringHashFunc = idx
	g.hasStringHashFunc = true

	code := wasmgc.NewCode()
	arrTy := g.byteArrayType
	code.DeclareLocals(1, wasmgc.RefNull(arrTy)) // 1: arg as array
	code.DeclareLocals(1, wasmgc.I32)            // 2: hash accumulator
	code.DeclareLocals(1, wasmgc.I32)            // 3: loop index
	arr, hash, i := uint32(1), uint32(2), uint32(3)

	code.LocalGet(0)
	code.RefCast(wasmgc.RefNull(arrTy))
	code.LocalSet(arr)
	code.I32Const(int32(-2128831035)) // FNV offset basis, as i32
	code.LocalSet(hash)
	code.I32Const(0)
	code.LocalSet(i)

	code.Block(wasmgc.BlockType{Empty: true})
	code.Loop(wasmgc.BlockType{Empty: true})
	code.LocalGet(i)
	code.LocalGet(arr)
	code.ArrayLen()
	code.Op(wasmgc.OpI32LtS)
	code.Op(wasmgc.OpI32Eqz)
	code.BrIf(1)

	code.LocalGet(hash)
	code.LocalGet(arr)
	code.LocalGet(i)
	code.ArrayGet(arrTy)
	code.Op(wasmgc.OpI32Xor)
	code.I32Const(16777619) // FNV prime
	code.Op(wasmgc.OpI32Mul)
	code.LocalSet(hash)

	code.LocalGet(i)
	code.I32Const(1)
	code.Op(wasmgc.OpI32Add)
	code.LocalSet(i)
	code.Br(0)
	code.End()
	code.End()

	code.LocalGet(hash)
	g.b.FillFuncCode(idx, code)
	return idx
}
