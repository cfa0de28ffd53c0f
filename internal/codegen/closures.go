package codegen

import (
	"sort"

	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

// captureVar is one free variable a closure literal reaches into its
// enclosing scope for, resolved to the type its outer local carries.
// mutable is true when the closure body reassigns it (spec.md §4.5.1's
// "mutable captures"): such a capture is boxed in a one-field mutable cell
// rather than stored directly in the context struct, so a reassignment
// inside the closure body is visible the next time the same closure value
// is called.
type captureVar struct {
	name    string
	typ     types.Type
	mutable bool
}

// captureCellTypeIdxFor returns the one-field mutable struct type a mutable
// capture of type t is boxed in, building it on first request.
func (g *Generator) captureCellTypeIdxFor(t types.Type) uint32 {
	key := t.String()
	if idx, ok := g.captureCellType[key]; ok {
		return idx
	}
	idx := g.b.Types.Add(wasmgc.NewStructType([]wasmgc.FieldType{{Type: g.mapType(t), Mutable: true}}, -1, true))
	g.captureCellType[key] = idx
	return idx
}

// closureStructTypeIdxFor returns the two-field struct type representing a
// closure value of shape t: a reference to its implementation function and a
// reference to its (boxed, anyref-typed) capture context. The context field
// is always anyref rather than the concrete per-literal context struct type,
// since two closures of the same Function type but different capture sets
// must still share one Wasm value representation.
func (g *Generator) closureStructTypeIdxFor(t *types.Function) uint32 {
	key := t.String()
	if idx, ok := g.closureStructIdx[key]; ok {
		return idx
	}
	implSig := g.closureImplSigIdxFor(t)
	fields := []wasmgc.FieldType{
		{Type: wasmgc.RefNull(implSig), Mutable: false},
		{Type: wasmgc.AnyRefNull, Mutable: false},
	}
	idx := g.b.Types.Add(wasmgc.NewStructType(fields, -1, true))
	g.closureStructIdx[key] = idx
	return idx
}

// closureImplSigIdxFor returns the (anyref ctx, params...) -> return
// signature every implementation function of shape t is built against,
// regardless of what it actually captures.
func (g *Generator) closureImplSigIdxFor(t *types.Function) uint32 {
	key := t.String()
	if idx, ok := g.closureImplSig[key]; ok {
		return idx
	}
	params := make([]wasmgc.ValType, 1+len(t.Params))
	params[0] = wasmgc.AnyRefNull
	for i, p := range t.Params {
		params[i+1] = g.mapType(p)
	}
	idx := g.b.Types.Add(wasmgc.NewFuncType(params, g.resultValTypes(t.Return)))
	g.closureImplSig[key] = idx
	return idx
}

// closureCtxTypeIdxFor returns the struct type boxing exactly this set of
// captures, in the given (already sorted) order, caching by the textual
// signature so two closures with the same capture names/types share it.
func (g *Generator) closureCtxTypeIdxFor(caps []captureVar) uint32 {
	key := captureSignature(caps)
	if idx, ok := g.closureCtxIdx[key]; ok {
		return idx
	}
	fields := make([]wasmgc.FieldType, len(caps))
	for i, cv := range caps {
		if cv.mutable {
			fields[i] = wasmgc.FieldType{Type: wasmgc.Ref(g.captureCellTypeIdxFor(cv.typ)), Mutable: false}
			continue
		}
		fields[i] = wasmgc.FieldType{Type: g.mapType(cv.typ), Mutable: false}
	}
	idx := g.b.Types.Add(wasmgc.NewStructType(fields, -1, true))
	g.closureCtxIdx[key] = idx
	g.closureCtxFields[key] = caps
	return idx
}

func captureSignature(caps []captureVar) string {
	s := ""
	for _, cv := range caps {
		s += cv.name + ":" + cv.typ.String()
		if cv.mutable {
			s += "!"
		}
		s += ";"
	}
	return s
}

// analyzeCaptures finds every free variable of lit's body: a name lit's own
// parameters don't bind, that nonetheless resolves in ctx's enclosing scope
// chain (including the pseudo-name "this"). The result is sorted by name so
// two lexically distinct closures capturing the same names build the exact
// same context struct shape.
func (g *Generator) analyzeCaptures(ctx *lowerCtx, lit *ast.FunctionLiteral) []captureVar {
	bound := make(map[string]bool, len(lit.Params))
	for _, p := range lit.Params {
		bound[p.Name.Name] = true
	}
	free := make(map[string]bool)
	mutated := make(map[string]bool)
	walkBlockFreeVars(lit.Body, bound, free, mutated)

	names := make([]string, 0, len(free))
	for n := range free {
		names = append(names, n)
	}
	sort.Strings(names)

	caps := make([]captureVar, 0, len(names))
	for _, n := range names {
		v, ok := ctx.scope.lookup(n)
		if !ok {
			continue // not a local (a free function, class, or global name): nothing to capture
		}
		caps = append(caps, captureVar{name: n, typ: v.typ, mutable: mutated[n]})
	}
	return caps
}

func copyBound(bound map[string]bool) map[string]bool {
	cp := make(map[string]bool, len(bound))
	for k := range bound {
		cp[k] = true
	}
	return cp
}

// walkBlockFreeVars/walkStmtFreeVars/walkExprFreeVars find every free
// variable of a closure body, recording its name in free and, when the body
// reassigns it directly (an AssignExpr targeting a bare, non-locally-bound
// identifier), also in mutated — the mutable-capture set spec.md §4.5.1
// calls for.
func walkBlockFreeVars(b *ast.BlockExpr, bound map[string]bool, free, mutated map[string]bool) {
	if b == nil {
		return
	}
	bound = copyBound(bound)
	for _, s := range b.Stmts {
		walkStmtFreeVars(s, bound, free, mutated)
	}
}

func walkStmtFreeVars(s ast.Stmt, bound map[string]bool, free, mutated map[string]bool) {
	switch s := s.(type) {
	case *ast.LetStmt:
		walkExprFreeVars(s.Value, bound, free, mutated)
		bound[s.Name.Name] = true
	case *ast.ExprStmt:
		walkExprFreeVars(s.X, bound, free, mutated)
	case *ast.ReturnStmt:
		walkExprFreeVars(s.Value, bound, free, mutated)
	case *ast.BreakStmt, *ast.ContinueStmt:
	case *ast.WhileStmt:
		walkExprFreeVars(s.Cond, bound, free, mutated)
		walkBlockFreeVars(s.Body, bound, free, mutated)
	case *ast.ForStmt:
		walkExprFreeVars(s.Iterable, bound, free, mutated)
		inner := copyBound(bound)
		inner[s.Binding.Name] = true
		walkBlockFreeVars(s.Body, inner, free, mutated)
	case *ast.ThrowStmt:
		walkExprFreeVars(s.Value, bound, free, mutated)
	case *ast.TryStmt:
		walkBlockFreeVars(s.Body, bound, free, mutated)
		if s.Catch != nil {
			inner := copyBound(bound)
			inner[s.Catch.Name.Name] = true
			walkBlockFreeVars(s.Catch.Body, inner, free, mutated)
		}
	}
}

func walkExprFreeVars(e ast.Expr, bound map[string]bool, free, mutated map[string]bool) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *ast.Ident:
		if !bound[e.Name] {
			free[e.Name] = true
		}
	case *ast.ThisExpr:
		if !bound["this"] {
			free["this"] = true
		}
	case *ast.SuperExpr:
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NilLiteral:
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			walkExprFreeVars(el, bound, free, mutated)
		}
	case *ast.FixedArrayLiteral:
		for _, el := range e.Elements {
			walkExprFreeVars(el, bound, free, mutated)
		}
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			walkExprFreeVars(el, bound, free, mutated)
		}
	case *ast.RecordLiteral:
		for _, f := range e.Fields {
			walkExprFreeVars(f.Value, bound, free, mutated)
		}
	case *ast.BlockExpr:
		walkBlockFreeVars(e, bound, free, mutated)
	case *ast.IfExpr:
		walkExprFreeVars(e.Cond, bound, free, mutated)
		walkBlockFreeVars(e.Then, bound, free, mutated)
		walkExprFreeVars(e.Else, bound, free, mutated)
	case *ast.MatchExpr:
		walkExprFreeVars(e.Subject, bound, free, mutated)
		for _, arm := range e.Arms {
			inner := copyBound(bound)
			bindPatternNames(arm.Pattern, inner)
			if arm.Guard != nil {
				walkExprFreeVars(arm.Guard, inner, free, mutated)
			}
			walkExprFreeVars(arm.Body, inner, free, mutated)
		}
	case *ast.PrefixExpr:
		walkExprFreeVars(e.Right, bound, free, mutated)
	case *ast.InfixExpr:
		walkExprFreeVars(e.Left, bound, free, mutated)
		walkExprFreeVars(e.Right, bound, free, mutated)
	case *ast.AssignExpr:
		if ident, ok := e.Target.(*ast.Ident); ok && !bound[ident.Name] {
			mutated[ident.Name] = true
		}
		walkExprFreeVars(e.Target, bound, free, mutated)
		walkExprFreeVars(e.Value, bound, free, mutated)
	case *ast.CallExpr:
		walkExprFreeVars(e.Callee, bound, free, mutated)
		for _, a := range e.Args {
			walkExprFreeVars(a, bound, free, mutated)
		}
	case *ast.FieldExpr:
		walkExprFreeVars(e.Target, bound, free, mutated)
	case *ast.IndexExpr:
		walkExprFreeVars(e.Target, bound, free, mutated)
		walkExprFreeVars(e.Index, bound, free, mutated)
	case *ast.FunctionLiteral:
		inner := copyBound(bound)
		for _, p := range e.Params {
			inner[p.Name.Name] = true
		}
		walkBlockFreeVars(e.Body, inner, free, mutated)
	case *ast.NewExpr:
		for _, a := range e.Args {
			walkExprFreeVars(a, bound, free, mutated)
		}
	case *ast.RangeExpr:
		walkExprFreeVars(e.Start, bound, free, mutated)
		walkExprFreeVars(e.End, bound, free, mutated)
	}
}

func bindPatternNames(p ast.Pattern, bound map[string]bool) {
	switch p := p.(type) {
	case *ast.PatternIdent:
		bound[p.Name.Name] = true
	case *ast.PatternTuple:
		for _, el := range p.Elements {
			bindPatternNames(el, bound)
		}
	case *ast.PatternArray:
		for _, el := range p.Elements {
			bindPatternNames(el, bound)
		}
		if p.Rest != nil {
			bound[p.Rest.Name] = true
		}
	case *ast.PatternEnum:
		for _, f := range p.Fields {
			if f.Pattern != nil {
				bindPatternNames(f.Pattern, bound)
			} else {
				bound[f.Name.Name] = true
			}
		}
	case *ast.PatternOr:
		for _, alt := range p.Alternatives {
			bindPatternNames(alt, bound)
		}
	}
}

// lowerClosureLiteral builds a closure value for lit of the given function
// type, leaving a (ref $closureStruct) on the stack: an implementation
// function capturing nothing itself (every free variable is threaded through
// its boxed context parameter) plus the context instance built from the
// current scope's live values.
func (g *Generator) lowerClosureLiteral(ctx *lowerCtx, lit *ast.FunctionLiteral, fnType *types.Function) {
	caps := g.analyzeCaptures(ctx, lit)
	ctxTypeIdx := g.closureCtxTypeIdxFor(caps)
	implIdx := g.buildClosureImpl(lit, fnType, caps, ctxTypeIdx)

	ctx.code.RefFunc(implIdx)
	for _, cv := range caps {
		v, _ := ctx.scope.lookup(cv.name)
		g.pushLocalValue(ctx, v)
		if cv.mutable {
			ctx.code.StructNew(g.captureCellTypeIdxFor(cv.typ))
		}
	}
	ctx.code.StructNew(ctxTypeIdx)

	ctx.code.StructNew(g.closureStructTypeIdxFor(fnType))
}

// buildClosureImpl emits the standalone function implementing lit: parameter
// 0 is the boxed context (cast to its concrete struct type and destructured
// into locals matching each capture's name), parameters 1.. are lit's own
// parameters at their declared indices.
func (g *Generator) buildClosureImpl(lit *ast.FunctionLiteral, fnType *types.Function, caps []captureVar, ctxTypeIdx uint32) uint32 {
	implSig := g.closureImplSigIdxFor(fnType)
	idx := g.b.ReserveFunc("$closure", implSig)

	code := wasmgc.NewCode()
	newCtx := &lowerCtx{g: g, code: code, scope: newVarScope(nil), returnType: fnType.Return}

	ctxLocal := uint32(1 + len(lit.Params))
	code.DeclareLocals(1, wasmgc.RefNull(ctxTypeIdx))
	code.LocalGet(0)
	code.RefCast(wasmgc.RefNull(ctxTypeIdx))
	code.LocalSet(ctxLocal)

	next := ctxLocal + 1
	for i, cv := range caps {
		local := next
		next++
		if cv.mutable {
			code.DeclareLocals(1, wasmgc.Ref(g.captureCellTypeIdxFor(cv.typ)))
		} else {
			code.DeclareLocals(1, g.mapType(cv.typ))
		}
		code.LocalGet(ctxLocal)
		code.StructGet(ctxTypeIdx, uint32(i))
		code.LocalSet(local)
		newCtx.scope.vars[cv.name] = localVar{idx: local, typ: cv.typ, boxed: cv.mutable}
	}

	for i, p := range lit.Params {
		newCtx.scope.vars[p.Name.Name] = localVar{idx: uint32(i + 1), typ: g.resolveParamType(p)}
	}
	newCtx.nextLocal = next

	g.lowerFuncBody(newCtx, lit.Body)
	g.b.FillFuncCode(idx, code)
	return idx
}

// closurePushCtx pushes a closure's boxed context (the implementation
// function's parameter 0), so the caller can follow it with the call's own
// argument expressions before closureFinishCall pushes the function
// reference and performs call_ref. call_ref requires every operand below the
// funcref itself, which is why fetching the two struct fields can't be done
// back-to-back around the args.
func (g *Generator) closurePushCtx(ctx *lowerCtx, closureLocal uint32, fnType *types.Function) {
	ctx.code.LocalGet(closureLocal)
	ctx.code.StructGet(g.closureStructTypeIdxFor(fnType), 1)
}

// closureFinishCall pushes the implementation function reference and emits
// call_ref, after closurePushCtx and the call's argument expressions have
// already placed their values on the stack.
func (g *Generator) closureFinishCall(ctx *lowerCtx, closureLocal uint32, fnType *types.Function) {
	ctx.code.LocalGet(closureLocal)
	ctx.code.StructGet(g.closureStructTypeIdxFor(fnType), 0)
	ctx.code.CallRef(g.closureImplSigIdxFor(fnType))
}
