package codegen

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

// loopInfo records, for one enclosing loop, the block-nesting depth present
// immediately before each of its two branch targets (the outer break-block,
// the inner continue-loop) was opened. A branch's relative depth is always
// ctx.depth - storedDepth - 1, since storedDepth is the nesting count before
// the target construct itself was opened.
type loopInfo struct {
	breakBase, continueBase uint32
}

// localVar names one Wasm local. A mutably-captured closure variable is
// boxed: idx holds a (ref $cell) rather than the value itself, and every
// access goes through one extra struct.get/struct.set indirection (see
// captureCellTypeIdxFor in closures.go).
type localVar struct {
	idx   uint32
	typ   types.Type
	boxed bool
}

type varScope struct {
	parent *varScope
	vars   map[string]localVar
}

func newVarScope(parent *varScope) *varScope {
	return &varScope{parent: parent, vars: make(map[string]localVar)}
}

func (s *varScope) lookup(name string) (localVar, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return localVar{}, false
}

// lowerCtx carries the state needed while lowering one function/method/
// constructor body: its instruction stream, the current structured-control
// nesting depth (for break/continue targeting), the local variable scope
// chain, and the enclosing class (nil for free functions).
type lowerCtx struct {
	g          *Generator
	code       *wasmgc.Code
	depth      uint32
	nextLocal  uint32
	scope      *varScope
	class      *types.Class
	returnType types.Type
	loopStack  []loopInfo
}

func (ctx *lowerCtx) openBlock(bt wasmgc.BlockType) { ctx.code.Block(bt); ctx.depth++ }
func (ctx *lowerCtx) openLoop(bt wasmgc.BlockType)  { ctx.code.Loop(bt); ctx.depth++ }
func (ctx *lowerCtx) openIf(bt wasmgc.BlockType)    { ctx.code.If(bt); ctx.depth++ }
func (ctx *lowerCtx) closeBlock()                   { ctx.code.End(); ctx.depth-- }

func (ctx *lowerCtx) pushScope()  { ctx.scope = newVarScope(ctx.scope) }
func (ctx *lowerCtx) popScope()   { ctx.scope = ctx.scope.parent }

func (ctx *lowerCtx) newLocal(typ types.Type) uint32 {
	idx := ctx.nextLocal
	ctx.code.DeclareLocals(1, ctx.g.mapType(typ))
	ctx.nextLocal++
	return idx
}

// pushLocalValue pushes v's current value, transparently unwrapping the
// mutable-capture cell indirection (see localVar.boxed) when present.
func (g *Generator) pushLocalValue(ctx *lowerCtx, v localVar) {
	ctx.code.LocalGet(v.idx)
	if v.boxed {
		ctx.code.StructGet(g.captureCellTypeIdxFor(v.typ), 0)
	}
}

// lowerBodies lowers every free function body and every class's constructor
// and own-declared methods, in that order.
func (g *Generator) lowerBodies() {
	for _, decl := range g.file.Decls {
		if fn, ok := decl.(*ast.FnDecl); ok && fn.Body != nil {
			g.lowerFreeFunction(fn)
		}
	}
	for _, c := range g.classes {
		cd := g.classDeclOf(c)
		if cd == nil {
			continue
		}
		g.lowerClassBodies(c, cd)
	}
}

func (g *Generator) lowerFreeFunction(fn *ast.FnDecl) {
	idx := g.freeFuncIdx[fn]
	code := wasmgc.NewCode()
	ctx := &lowerCtx{g: g, code: code, scope: newVarScope(nil), returnType: g.resolveReturnType(fn.ReturnType)}
	for i, p := range fn.Params {
		ctx.scope.vars[p.Name.Name] = localVar{idx: uint32(i), typ: g.resolveParamType(p)}
	}
	ctx.nextLocal = uint32(len(fn.Params))
	g.lowerFuncBody(ctx, fn.Body)
	g.b.FillFuncCode(idx, code)
}

func (g *Generator) lowerClassBodies(c *types.Class, cd *ast.ClassDecl) {
	// An extension class has no constructor function: `super(v)` just names
	// the wrapped value, which is already bound to parameter 0 of every one
	// of its methods, so there is nothing to allocate or chain.
	if !c.IsExtension {
		if cd.Constructor != nil {
			g.lowerConstructor(c, cd)
		} else {
			g.lowerDefaultConstructor(c, cd)
		}
	}
	for _, m := range cd.Methods {
		if m.IsAbstract {
			continue
		}
		g.lowerMethod(c, m)
	}
}

func (g *Generator) lowerConstructor(c *types.Class, cd *ast.ClassDecl) {
	idx := g.classCtorFunc[c]
	code := wasmgc.NewCode()
	ctx := &lowerCtx{g: g, code: code, scope: newVarScope(nil), class: c, returnType: types.Void}
	ctx.scope.vars["this"] = localVar{idx: 0, typ: c}
	for i, p := range cd.Constructor.Fn.Params {
		ctx.scope.vars[p.Name.Name] = localVar{idx: uint32(i + 1), typ: g.resolveParamType(p)}
	}
	ctx.nextLocal = uint32(1 + len(cd.Constructor.Fn.Params))
	g.lowerFuncBody(ctx, cd.Constructor.Fn.Body)
	g.b.FillFuncCode(idx, code)
}

// lowerDefaultConstructor handles a class with no explicit constructor:
// chain to the superclass's constructor (with no arguments) if any, leaving
// every own field at its struct.new_default zero value otherwise.
func (g *Generator) lowerDefaultConstructor(c *types.Class, cd *ast.ClassDecl) {
	idx := g.classCtorFunc[c]
	code := wasmgc.NewCode()
	if c.Super != nil {
		code.LocalGet(0)
		code.Call(g.classCtorFunc[c.Super])
	}
	g.b.FillFuncCode(idx, code)
}

func (g *Generator) lowerMethod(c *types.Class, m *ast.MethodDecl) {
	idx := g.classMethodFunc[c][m.Fn.Name.Name]
	code := wasmgc.NewCode()
	ctx := &lowerCtx{g: g, code: code, scope: newVarScope(nil), class: c, returnType: g.resolveReturnType(m.Fn.ReturnType)}
	for i, p := range m.Fn.Params {
		ctx.scope.vars[p.Name.Name] = localVar{idx: uint32(i + 1), typ: g.resolveParamType(p)}
	}
	ctx.nextLocal = uint32(1 + len(m.Fn.Params))

	if c.IsExtension {
		// Parameter 0 is already the bare underlying value (see
		// reserveExtensionFuncs); there is no vtable receiver to narrow.
		ctx.scope.vars["this"] = localVar{idx: 0, typ: c.OnType}
	} else {
		thisLocal := ctx.newLocal(c)
		code.LocalGet(0)
		code.RefCast(wasmgc.Ref(g.classTypeIdx[c]))
		code.LocalSet(thisLocal)
		ctx.scope.vars["this"] = localVar{idx: thisLocal, typ: c}
	}

	g.lowerFuncBody(ctx, m.Fn.Body)
	g.b.FillFuncCode(idx, code)
}

// lowerFuncBody lowers every top-level statement of a function/method/
// constructor body, then pads a non-void function with an `unreachable` so
// the Wasm validator accepts a body whose only real return lives inside
// conditional branches.
func (g *Generator) lowerFuncBody(ctx *lowerCtx, body *ast.BlockExpr) {
	if body == nil {
		return
	}
	for _, s := range body.Stmts {
		g.lowerStmt(ctx, s)
	}
	if ctx.returnType != nil && ctx.returnType != types.Void && ctx.returnType != types.Never {
		ctx.code.Unreachable()
	}
}
