package codegen

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

func (g *Generator) exprStaticType(e ast.Expr) types.Type {
	if t, ok := g.checker.TypeInfo[e]; ok && t != nil {
		return t
	}
	return types.Unknown
}

// isSuperCtorCall reports whether e is a constructor-chaining `super(...)`
// call. The checker has no Void result for this shape (SuperExpr resolves to
// the superclass itself, not a Function), so exprStaticType reports Unknown
// even though the constructor function emits no Wasm result; a bare
// expression statement must not Drop after it.
func isSuperCtorCall(e ast.Expr) bool {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return false
	}
	_, ok = call.Callee.(*ast.SuperExpr)
	return ok
}

func (g *Generator) lowerStmt(ctx *lowerCtx, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.LetStmt:
		g.lowerLetStmt(ctx, s)
	case *ast.ExprStmt:
		g.lowerExpr(ctx, s.X)
		t := g.exprStaticType(s.X)
		if t != types.Void && t != types.Never && !isSuperCtorCall(s.X) {
			ctx.code.Drop()
		}
	case *ast.ReturnStmt:
		if s.Value != nil {
			g.lowerExprInto(ctx, s.Value, ctx.returnType)
		}
		ctx.code.Return()
	case *ast.BreakStmt:
		info := ctx.loopStack[len(ctx.loopStack)-1]
		ctx.code.Br(ctx.depth - info.breakBase - 1)
	case *ast.ContinueStmt:
		info := ctx.loopStack[len(ctx.loopStack)-1]
		ctx.code.Br(ctx.depth - info.continueBase - 1)
	case *ast.WhileStmt:
		g.lowerWhile(ctx, s)
	case *ast.ForStmt:
		g.lowerFor(ctx, s)
	case *ast.ThrowStmt:
		g.lowerExprInto(ctx, s.Value, types.AnyRef)
		ctx.code.Throw(g.exceptionTag)
	case *ast.TryStmt:
		g.lowerTry(ctx, s)
	default:
		g.internalError("unhandled statement in codegen", s)
	}
}

func (g *Generator) lowerLetStmt(ctx *lowerCtx, s *ast.LetStmt) {
	declared := g.exprStaticType(s.Value)
	if s.Type != nil {
		declared = g.resolveTypeExpr(s.Type)
	}
	g.lowerExprInto(ctx, s.Value, declared)
	local := ctx.newLocal(declared)
	ctx.code.LocalSet(local)
	ctx.scope.vars[s.Name.Name] = localVar{idx: local, typ: declared}
}

// lowerStmtBlock lowers a nested block (if/loop/try body) in its own
// variable scope, without touching the enclosing function's return
// bookkeeping.
func (g *Generator) lowerStmtBlock(ctx *lowerCtx, b *ast.BlockExpr) {
	ctx.pushScope()
	for _, s := range b.Stmts {
		g.lowerStmt(ctx, s)
	}
	ctx.popScope()
}

func (g *Generator) lowerWhile(ctx *lowerCtx, s *ast.WhileStmt) {
	breakBase := ctx.depth
	ctx.openBlock(wasmgc.BlockType{Empty: true})
	continueBase := ctx.depth
	ctx.openLoop(wasmgc.BlockType{Empty: true})
	ctx.loopStack = append(ctx.loopStack, loopInfo{breakBase: breakBase, continueBase: continueBase})

	g.lowerExprInto(ctx, s.Cond, types.Boolean)
	ctx.code.Op(wasmgc.OpI32Eqz)
	ctx.code.BrIf(ctx.depth - breakBase - 1)
	g.lowerStmtBlock(ctx, s.Body)
	ctx.code.Br(ctx.depth - continueBase - 1)

	ctx.loopStack = ctx.loopStack[:len(ctx.loopStack)-1]
	ctx.closeBlock() // loop
	ctx.closeBlock() // block
}

// lowerFor supports iterating a Range literal or an Array-typed value; any
// other iterable (a user class implementing the iterator protocol) is
// outside what this pass lowers.
func (g *Generator) lowerFor(ctx *lowerCtx, s *ast.ForStmt) {
	if rng, ok := s.Iterable.(*ast.RangeExpr); ok {
		g.lowerForRange(ctx, s, rng)
		return
	}
	g.lowerForArray(ctx, s)
}

func (g *Generator) lowerForRange(ctx *lowerCtx, s *ast.ForStmt, rng *ast.RangeExpr) {
	g.lowerExprInto(ctx, rng.Start, types.Number)
	idxLocal := ctx.newLocal(types.Number)
	ctx.code.LocalSet(idxLocal)
	g.lowerExprInto(ctx, rng.End, types.Number)
	endLocal := ctx.newLocal(types.Number)
	ctx.code.LocalSet(endLocal)

	breakBase := ctx.depth
	ctx.openBlock(wasmgc.BlockType{Empty: true})
	continueBase := ctx.depth
	ctx.openLoop(wasmgc.BlockType{Empty: true})
	ctx.loopStack = append(ctx.loopStack, loopInfo{breakBase: breakBase, continueBase: continueBase})

	ctx.code.LocalGet(idxLocal)
	ctx.code.LocalGet(endLocal)
	ctx.code.Op(wasmgc.OpF64Lt)
	ctx.code.Op(wasmgc.OpI32Eqz)
	ctx.code.BrIf(ctx.depth - breakBase - 1)

	ctx.pushScope()
	ctx.scope.vars[s.Binding.Name] = localVar{idx: idxLocal, typ: types.Number}
	for _, st := range s.Body.Stmts {
		g.lowerStmt(ctx, st)
	}
	ctx.popScope()

	ctx.code.LocalGet(idxLocal)
	ctx.code.F64Const(1)
	ctx.code.Op(wasmgc.OpF64Add)
	ctx.code.LocalSet(idxLocal)
	ctx.code.Br(ctx.depth - continueBase - 1)

	ctx.loopStack = ctx.loopStack[:len(ctx.loopStack)-1]
	ctx.closeBlock()
	ctx.closeBlock()
}

func (g *Generator) lowerForArray(ctx *lowerCtx, s *ast.ForStmt) {
	iterType := g.exprStaticType(s.Iterable)
	arr, ok := iterType.(*types.Array)
	if !ok {
		g.internalError("for-loop over a non-range, non-array iterable is not supported by this codegen", s)
		return
	}
	arrTypeIdx := g.arrayTypeIdxFor(arr.Elem)

	g.lowerExpr(ctx, s.Iterable)
	arrLocal := ctx.newLocal(arr)
	ctx.code.LocalSet(arrLocal)

	idxLocal := ctx.newLocal(types.Number)
	ctx.code.F64Const(0)
	ctx.code.LocalSet(idxLocal)

	breakBase := ctx.depth
	ctx.openBlock(wasmgc.BlockType{Empty: true})
	continueBase := ctx.depth
	ctx.openLoop(wasmgc.BlockType{Empty: true})
	ctx.loopStack = append(ctx.loopStack, loopInfo{breakBase: breakBase, continueBase: continueBase})

	ctx.code.LocalGet(arrLocal)
	ctx.code.ArrayLen()
	ctx.code.Op(wasmgc.OpF64ConvertI32S)
	lenLocal := ctx.newLocal(types.Number)
	ctx.code.LocalSet(lenLocal)

	ctx.code.LocalGet(idxLocal)
	ctx.code.LocalGet(lenLocal)
	ctx.code.Op(wasmgc.OpF64Lt)
	ctx.code.Op(wasmgc.OpI32Eqz)
	ctx.code.BrIf(ctx.depth - breakBase - 1)

	elemLocal := ctx.newLocal(arr.Elem)
	ctx.code.LocalGet(arrLocal)
	ctx.code.LocalGet(idxLocal)
	ctx.code.Op(wasmgc.OpI32TruncF64S)
	ctx.code.ArrayGet(arrTypeIdx)
	ctx.code.LocalSet(elemLocal)

	ctx.pushScope()
	ctx.scope.vars[s.Binding.Name] = localVar{idx: elemLocal, typ: arr.Elem}
	for _, st := range s.Body.Stmts {
		g.lowerStmt(ctx, st)
	}
	ctx.popScope()

	ctx.code.LocalGet(idxLocal)
	ctx.code.F64Const(1)
	ctx.code.Op(wasmgc.OpF64Add)
	ctx.code.LocalSet(idxLocal)
	ctx.code.Br(ctx.depth - continueBase - 1)

	ctx.loopStack = ctx.loopStack[:len(ctx.loopStack)-1]
	ctx.closeBlock()
	ctx.closeBlock()
}

// lowerTry lowers a try/catch using try_table with a catch clause against
// zena's one module-wide exception tag: the tag carries a single anyref
// param, so catching it delivers the thrown payload directly on the stack,
// with no exnref needed since zena's catch never rethrows.
func (g *Generator) lowerTry(ctx *lowerCtx, s *ast.TryStmt) {
	if s.Catch == nil {
		g.lowerStmtBlock(ctx, s.Body)
		return
	}

	catchBase := ctx.depth
	ctx.openBlock(wasmgc.BlockType{Empty: true}) // outer: landing pad for the catch body
	tryBase := ctx.depth
	ctx.openBlock(wasmgc.BlockType{Result: wasmgc.AnyRefNull}) // inner: try_table's catch target

	ctx.code.TryTable(wasmgc.BlockType{Empty: true}, []wasmgc.TryTableCatch{
		{Kind: wasmgc.CatchTag, TagIdx: g.exceptionTag, Label: ctx.depth - tryBase - 1},
	})
	ctx.depth++
	g.lowerStmtBlock(ctx, s.Body)
	ctx.code.Br(ctx.depth - catchBase - 1)
	ctx.closeBlock() // try_table body itself
	ctx.code.Unreachable()

	ctx.closeBlock() // inner block: catch lands here with the anyref payload on the stack

	ctx.pushScope()
	if s.Catch.Name != nil {
		local := ctx.newLocal(types.AnyRef)
		ctx.code.LocalSet(local)
		ctx.scope.vars[s.Catch.Name.Name] = localVar{idx: local, typ: types.AnyRef}
	} else {
		ctx.code.Drop()
	}
	for _, st := range s.Catch.Body.Stmts {
		g.lowerStmt(ctx, st)
	}
	ctx.popScope()
	ctx.closeBlock() // outer block
}
