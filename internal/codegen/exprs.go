package codegen

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

// lowerExpr lowers e for its own static type, leaving exactly one value (or
// none, for a Void/Never-typed expression) on the stack in mapType's
// representation for that type.
func (g *Generator) lowerExpr(ctx *lowerCtx, e ast.Expr) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		ctx.code.F64Const(float64(e.Value))
	case *ast.FloatLiteral:
		ctx.code.F64Const(e.Value)
	case *ast.StringLiteral:
		g.lowerStringLiteral(ctx, e.Value)
	case *ast.BoolLiteral:
		if e.Value {
			ctx.code.I32Const(1)
		} else {
			ctx.code.I32Const(0)
		}
	case *ast.NilLiteral:
		ctx.code.RefNullType(g.mapType(g.exprStaticType(e)))
	case *ast.Ident:
		g.lowerIdent(ctx, e)
	case *ast.ThisExpr:
		this, _ := ctx.scope.lookup("this")
		ctx.code.LocalGet(this.idx)
	case *ast.SuperExpr:
		this, _ := ctx.scope.lookup("this")
		ctx.code.LocalGet(this.idx)
	case *ast.ArrayLiteral:
		arr, _ := g.exprStaticType(e).(*types.Array)
		g.lowerArrayLiteral(ctx, e.Elements, arr)
	case *ast.FixedArrayLiteral:
		arr, _ := g.exprStaticType(e).(*types.Array)
		g.lowerArrayLiteral(ctx, e.Elements, arr)
	case *ast.TupleLiteral:
		t, _ := g.exprStaticType(e).(*types.Tuple)
		g.lowerTupleLiteral(ctx, e, t)
	case *ast.RecordLiteral:
		t, _ := g.exprStaticType(e).(*types.Record)
		g.lowerRecordLiteral(ctx, e, t)
	case *ast.BlockExpr:
		g.lowerBlockExprValue(ctx, e)
	case *ast.IfExpr:
		g.lowerIfExpr(ctx, e)
	case *ast.MatchExpr:
		g.lowerMatchExpr(ctx, e)
	case *ast.PrefixExpr:
		g.lowerPrefixExpr(ctx, e)
	case *ast.InfixExpr:
		g.lowerInfixExpr(ctx, e)
	case *ast.AssignExpr:
		g.lowerAssignExpr(ctx, e)
	case *ast.CallExpr:
		g.lowerCallExpr(ctx, e)
	case *ast.FieldExpr:
		g.lowerFieldAccess(ctx, e)
	case *ast.IndexExpr:
		g.lowerIndexExpr(ctx, e)
	case *ast.FunctionLiteral:
		fnType, _ := g.exprStaticType(e).(*types.Function)
		g.lowerClosureLiteral(ctx, e, fnType)
	case *ast.NewExpr:
		g.lowerNewExpr(ctx, e)
	case *ast.RangeExpr:
		g.lowerRangeExpr(ctx, e)
	default:
		g.internalError("unhandled expression in codegen", e)
	}
}

// lowerExprInto lowers e and coerces it to fit a slot whose static type is
// target: boxing a Number/Boolean into an anyref-shaped destination,
// unboxing the reverse, or boxing a Class value into the fat pointer an
// Interface-typed destination expects. No coercion at all is the common
// case and costs nothing beyond the two cheap type comparisons.
func (g *Generator) lowerExprInto(ctx *lowerCtx, e ast.Expr, target types.Type) {
	src := g.exprStaticType(e)
	g.lowerExpr(ctx, e)

	if iface, ok := target.(*types.Interface); ok {
		if class, ok2 := src.(*types.Class); ok2 {
			g.boxIntoInterface(ctx, class, iface)
		}
		return
	}
	if needsBoxing(src, target) {
		g.box(ctx, src)
		return
	}
	if needsUnboxing(src, target) {
		g.unbox(ctx, target)
	}
}

func (g *Generator) lowerIdent(ctx *lowerCtx, e *ast.Ident) {
	if v, ok := ctx.scope.lookup(e.Name); ok {
		g.pushLocalValue(ctx, v)
		return
	}
	if fn, ok := g.freeFunctionDecl(e.Name); ok {
		g.lowerFreeFunctionValue(ctx, fn)
		return
	}
	g.internalError("unresolved identifier `"+e.Name+"` in codegen", e)
}

// freeFunctionDecl finds the top-level fn declaration named name.
func (g *Generator) freeFunctionDecl(name string) (*ast.FnDecl, bool) {
	for _, decl := range g.file.Decls {
		if fn, ok := decl.(*ast.FnDecl); ok && fn.Name.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// boxIntoInterface wraps a Class-typed value already on the stack into the
// two-field fat pointer { instance: anyref, vtable: ref $vtableType } that
// interface-typed slots and parameters carry, per FatPointerFields.
func (g *Generator) boxIntoInterface(ctx *lowerCtx, class *types.Class, iface *types.Interface) {
	c := canonicalClass(class)
	global, ok := g.classIfaceVtable[ifaceInstanceKey{class: c, iface: iface}]
	if !ok {
		g.internalError("class `"+c.Name+"` has no built vtable for interface `"+iface.Name+"`", nil)
		return
	}
	instLocal := ctx.newLocal(c)
	ctx.code.LocalSet(instLocal)
	ctx.code.LocalGet(instLocal)
	ctx.code.GlobalGet(global)
	ctx.code.StructNew(g.ifaceFatPtrType[iface])
}

// --- structural literals ---

func (g *Generator) lowerArrayLiteral(ctx *lowerCtx, elements []ast.Expr, arr *types.Array) {
	elemType := types.Type(types.Any)
	if arr != nil {
		elemType = arr.Elem
	}
	arrTypeIdx := g.arrayTypeIdxFor(elemType)
	for _, el := range elements {
		g.lowerExprInto(ctx, el, elemType)
	}
	ctx.code.ArrayNewFixed(arrTypeIdx, uint32(len(elements)))
}

func (g *Generator) lowerTupleLiteral(ctx *lowerCtx, e *ast.TupleLiteral, t *types.Tuple) {
	typeIdx := g.tupleTypeIdxFor(t)
	for i, el := range e.Elements {
		elemType := types.Type(types.Any)
		if i < len(t.Elements) {
			elemType = t.Elements[i]
		}
		g.lowerExprInto(ctx, el, elemType)
	}
	ctx.code.StructNew(typeIdx)
}

func (g *Generator) lowerRecordLiteral(ctx *lowerCtx, e *ast.RecordLiteral, t *types.Record) {
	typeIdx := g.recordTypeIdxFor(t)
	for _, f := range t.Fields {
		for _, src := range e.Fields {
			if src.Name.Name == f.Name {
				g.lowerExprInto(ctx, src.Value, f.Type)
				break
			}
		}
	}
	ctx.code.StructNew(typeIdx)
}

// lowerRangeExpr materializes a Range literal used as a value (rather than
// as a for-loop's iterable, see lowerForRange) into an actual Array<Number>
// holding every integer in [Start, End).
func (g *Generator) lowerRangeExpr(ctx *lowerCtx, e *ast.RangeExpr) {
	arrTypeIdx := g.arrayTypeIdxFor(types.Number)

	g.lowerExprInto(ctx, e.Start, types.Number)
	startLocal := ctx.newLocal(types.Number)
	ctx.code.LocalSet(startLocal)
	g.lowerExprInto(ctx, e.End, types.Number)
	endLocal := ctx.newLocal(types.Number)
	ctx.code.LocalSet(endLocal)

	countLocal := ctx.newLocal(types.Number)
	ctx.code.LocalGet(endLocal)
	ctx.code.LocalGet(startLocal)
	ctx.code.Op(wasmgc.OpF64Sub)
	ctx.code.LocalSet(countLocal)

	arrLocal := ctx.newLocal(&types.Array{Elem: types.Number})
	ctx.code.LocalGet(countLocal)
	ctx.code.Op(wasmgc.OpI32TruncF64S)
	ctx.code.ArrayNewDefault(arrTypeIdx)
	ctx.code.LocalSet(arrLocal)

	idxLocal := ctx.newLocal(types.Number)
	ctx.code.I32Const(0)
	ctx.code.Op(wasmgc.OpF64ConvertI32S)
	ctx.code.LocalSet(idxLocal)

	breakBase := ctx.depth
	ctx.openBlock(wasmgc.BlockType{Empty: true})
	continueBase := ctx.depth
	ctx.openLoop(wasmgc.BlockType{Empty: true})
	ctx.loopStack = append(ctx.loopStack, loopInfo{breakBase: breakBase, continueBase: continueBase})

	ctx.code.LocalGet(idxLocal)
	ctx.code.LocalGet(countLocal)
	ctx.code.Op(wasmgc.OpF64Lt)
	ctx.code.Op(wasmgc.OpI32Eqz)
	ctx.code.BrIf(ctx.depth - breakBase - 1)

	ctx.code.LocalGet(arrLocal)
	ctx.code.LocalGet(idxLocal)
	ctx.code.Op(wasmgc.OpI32TruncF64S)
	ctx.code.LocalGet(startLocal)
	ctx.code.LocalGet(idxLocal)
	ctx.code.Op(wasmgc.OpF64Add)
	ctx.code.ArraySet(arrTypeIdx)

	ctx.code.LocalGet(idxLocal)
	ctx.code.F64Const(1)
	ctx.code.Op(wasmgc.OpF64Add)
	ctx.code.LocalSet(idxLocal)
	ctx.code.Br(ctx.depth - continueBase - 1)

	ctx.loopStack = ctx.loopStack[:len(ctx.loopStack)-1]
	ctx.closeBlock()
	ctx.closeBlock()

	ctx.code.LocalGet(arrLocal)
}

// --- control-flow expressions ---

// lowerBlockExprValue lowers every statement of b but the last as an
// ordinary statement, then lowers the last (if it's an ExprStmt) as the
// block's own value; an empty block or one whose last statement isn't an
// expression has no value (caller must know its static type is Void).
func (g *Generator) lowerBlockExprValue(ctx *lowerCtx, b *ast.BlockExpr) {
	ctx.pushScope()
	defer ctx.popScope()

	if len(b.Stmts) == 0 {
		return
	}
	for _, s := range b.Stmts[:len(b.Stmts)-1] {
		g.lowerStmt(ctx, s)
	}
	last := b.Stmts[len(b.Stmts)-1]
	if es, ok := last.(*ast.ExprStmt); ok {
		g.lowerExpr(ctx, es.X)
		return
	}
	g.lowerStmt(ctx, last)
}

func (g *Generator) lowerIfExpr(ctx *lowerCtx, e *ast.IfExpr) {
	resultType := g.exprStaticType(e)
	hasValue := resultType != nil && resultType != types.Void && resultType != types.Never

	bt := wasmgc.BlockType{Empty: true}
	if hasValue {
		bt = wasmgc.BlockType{Result: g.mapType(resultType)}
	}

	g.lowerExprInto(ctx, e.Cond, types.Boolean)
	ctx.openIf(bt)
	if hasValue {
		g.lowerExprInto(ctx, e.Then, resultType)
	} else {
		g.lowerBlockExprValue(ctx, e.Then)
	}
	if e.Else != nil {
		ctx.code.Else()
		if hasValue {
			g.lowerExprInto(ctx, e.Else, resultType)
		} else {
			g.lowerExpr(ctx, e.Else)
			if t := g.exprStaticType(e.Else); t != types.Void && t != types.Never {
				ctx.code.Drop()
			}
		}
	}
	ctx.closeBlock()
}

// lowerMatchExpr lowers a match expression as a cascade of pattern tests:
// the subject is evaluated once into a local, then each arm in order tests
// its pattern (and guard, if any) and branches into the match's result
// block on success. A match that reaches the end with no arm taken is a
// checker-enforced exhaustiveness violation, so the fallthrough traps.
func (g *Generator) lowerMatchExpr(ctx *lowerCtx, e *ast.MatchExpr) {
	resultType := g.exprStaticType(e)
	hasValue := resultType != nil && resultType != types.Void && resultType != types.Never

	subjType := g.exprStaticType(e.Subject)
	g.lowerExpr(ctx, e.Subject)
	subjLocal := ctx.newLocal(subjType)
	ctx.code.LocalSet(subjLocal)

	bt := wasmgc.BlockType{Empty: true}
	if hasValue {
		bt = wasmgc.BlockType{Result: g.mapType(resultType)}
	}
	matchBase := ctx.depth
	ctx.openBlock(bt)

	for _, arm := range e.Arms {
		armBase := ctx.depth
		ctx.openBlock(wasmgc.BlockType{Empty: true})

		ctx.pushScope()
		g.lowerPatternTest(ctx, arm.Pattern, subjLocal, subjType)
		ctx.code.Op(wasmgc.OpI32Eqz)
		ctx.code.BrIf(ctx.depth - armBase - 1)
		if arm.Guard != nil {
			g.lowerExprInto(ctx, arm.Guard, types.Boolean)
			ctx.code.Op(wasmgc.OpI32Eqz)
			ctx.code.BrIf(ctx.depth - armBase - 1)
		}
		if hasValue {
			g.lowerExprInto(ctx, arm.Body, resultType)
		} else {
			g.lowerExpr(ctx, arm.Body)
			if t := g.exprStaticType(arm.Body); t != types.Void && t != types.Never {
				ctx.code.Drop()
			}
		}
		ctx.popScope()
		ctx.code.Br(ctx.depth - matchBase - 1)
		ctx.closeBlock()
	}
	ctx.code.Unreachable()

	ctx.closeBlock()
}

// lowerPatternTest emits code that leaves an i32 boolean on the stack:
// whether the value held in subjLocal (of static type subjType) matches p,
// binding any names p introduces as new locals in ctx's current scope as a
// side effect of a successful test (consistent with how the rest of the
// arm's Guard/Body expects them to already be in scope; an unsuccessful
// partial match leaves stray bound locals behind, which is harmless since
// the arm's block is abandoned on failure).
func (g *Generator) lowerPatternTest(ctx *lowerCtx, p ast.Pattern, subjLocal uint32, subjType types.Type) bool {
	switch p := p.(type) {
	case *ast.PatternWild:
		ctx.code.I32Const(1)

	case *ast.PatternIdent:
		local := ctx.newLocal(subjType)
		ctx.code.LocalGet(subjLocal)
		ctx.code.LocalSet(local)
		ctx.scope.vars[p.Name.Name] = localVar{idx: local, typ: subjType}
		ctx.code.I32Const(1)

	case *ast.PatternLiteral:
		g.lowerLiteralPatternTest(ctx, p.Value, subjLocal, subjType)

	case *ast.PatternRange:
		ctx.code.LocalGet(subjLocal)
		g.lowerExprInto(ctx, p.Start, types.Number)
		ctx.code.Op(wasmgc.OpF64Ge)
		startLocal := ctx.newLocal(types.Boolean)
		ctx.code.LocalSet(startLocal)
		ctx.code.LocalGet(subjLocal)
		g.lowerExprInto(ctx, p.End, types.Number)
		ctx.code.Op(wasmgc.OpF64Le)
		ctx.code.LocalGet(startLocal)
		ctx.code.Op(wasmgc.OpI32And)

	case *ast.PatternTuple:
		tupleType, _ := subjType.(*types.Tuple)
		g.lowerConjunctivePatternSeq(ctx, p.Elements, func(i int, elPat ast.Pattern) {
			elType := types.Type(types.Any)
			if tupleType != nil && i < len(tupleType.Elements) {
				elType = tupleType.Elements[i]
			}
			elLocal := ctx.newLocal(elType)
			ctx.code.LocalGet(subjLocal)
			ctx.code.StructGet(g.tupleTypeIdxFor(tupleType), uint32(i))
			ctx.code.LocalSet(elLocal)
			g.lowerPatternTest(ctx, elPat, elLocal, elType)
		})

	case *ast.PatternArray:
		g.lowerArrayPatternTest(ctx, p, subjLocal, subjType)

	case *ast.PatternOr:
		g.lowerDisjunctivePatternSeq(ctx, p.Alternatives, subjLocal, subjType)

	case *ast.PatternEnum:
		g.internalError("enum pattern matching is not supported by this codegen pass", p)
		ctx.code.I32Const(0)

	default:
		g.internalError("unhandled pattern kind in codegen", p)
		ctx.code.I32Const(0)
	}
	return true
}

func (g *Generator) lowerLiteralPatternTest(ctx *lowerCtx, value ast.Expr, subjLocal uint32, subjType types.Type) {
	switch lit := value.(type) {
	case *ast.IntegerLiteral, *ast.FloatLiteral:
		ctx.code.LocalGet(subjLocal)
		g.lowerExprInto(ctx, value, types.Number)
		ctx.code.Op(wasmgc.OpF64Eq)
	case *ast.BoolLiteral:
		ctx.code.LocalGet(subjLocal)
		g.lowerExprInto(ctx, value, types.Boolean)
		ctx.code.Op(wasmgc.OpI32Eq)
	case *ast.StringLiteral:
		ctx.code.LocalGet(subjLocal)
		g.lowerExprInto(ctx, value, types.AnyRef)
		ctx.code.Call(g.stringEqFuncIdx())
	case *ast.NilLiteral:
		ctx.code.LocalGet(subjLocal)
		ctx.code.RefIsNull()
	default:
		g.internalError("unhandled literal pattern value in codegen", lit)
		ctx.code.I32Const(0)
	}
}

// lowerConjunctivePatternSeq ANDs together the bool each of n element tests
// (emitted by test) produces, short-circuiting nothing (every element
// always binds its names even past a first failure) since matches are rare
// enough in practice that the simplicity of always running every subtest
// outweighs the branch savings.
func (g *Generator) lowerConjunctivePatternSeq(ctx *lowerCtx, elements []ast.Pattern, test func(i int, p ast.Pattern)) {
	ctx.code.I32Const(1)
	for i, p := range elements {
		test(i, p)
		ctx.code.Op(wasmgc.OpI32And)
	}
}

// lowerArrayPatternTest matches Elements against the leading elements of an
// Array value: without Rest the length must equal len(Elements), with Rest it
// must be at least that. RestPos is not consulted and no suffix is tested;
// Rest (if any) is bound to the whole subject array, not to the elements
// after the matched prefix.
func (g *Generator) lowerArrayPatternTest(ctx *lowerCtx, p *ast.PatternArray, subjLocal uint32, subjType types.Type) {
	arr, _ := subjType.(*types.Array)
	elemType := types.Type(types.Any)
	arrTypeIdx := g.byteArrayType
	if arr != nil {
		elemType = arr.Elem
		arrTypeIdx = g.arrayTypeIdxFor(arr.Elem)
	}

	ctx.code.LocalGet(subjLocal)
	ctx.code.ArrayLen()
	lenLocal := ctx.newLocal(types.Number)
	ctx.code.Op(wasmgc.OpF64ConvertI32S)
	ctx.code.LocalSet(lenLocal)

	ctx.code.LocalGet(lenLocal)
	ctx.code.F64Const(float64(len(p.Elements)))
	if p.Rest != nil {
		ctx.code.Op(wasmgc.OpF64Ge)
	} else {
		ctx.code.Op(wasmgc.OpF64Eq)
	}

	for i, elPat := range p.Elements {
		elLocal := ctx.newLocal(elemType)
		ctx.code.LocalGet(subjLocal)
		ctx.code.I32Const(int32(i))
		ctx.code.ArrayGet(arrTypeIdx)
		ctx.code.LocalSet(elLocal)
		g.lowerPatternTest(ctx, elPat, elLocal, elemType)
		ctx.code.Op(wasmgc.OpI32And)
	}

	if p.Rest != nil {
		restLocal := ctx.newLocal(arr)
		ctx.code.LocalGet(subjLocal)
		ctx.code.LocalSet(restLocal)
		ctx.scope.vars[p.Rest.Name] = localVar{idx: restLocal, typ: arr}
	}
}

// lowerDisjunctivePatternSeq ORs the alternatives' tests together; since
// PatternOr's alternatives must all bind the same names (checker-enforced),
// whichever alternative's test runs last leaves its own locals bound for
// the arm body regardless of which one actually matched -- correct because
// every alternative binds the identical name set at identical types.
func (g *Generator) lowerDisjunctivePatternSeq(ctx *lowerCtx, alts []ast.Pattern, subjLocal uint32, subjType types.Type) {
	ctx.code.I32Const(0)
	for _, alt := range alts {
		g.lowerPatternTest(ctx, alt, subjLocal, subjType)
		ctx.code.Op(wasmgc.OpI32Or)
	}
}

// --- operators ---

func (g *Generator) lowerPrefixExpr(ctx *lowerCtx, e *ast.PrefixExpr) {
	switch e.Operator {
	case "-":
		ctx.code.F64Const(0)
		g.lowerExprInto(ctx, e.Right, types.Number)
		ctx.code.Op(wasmgc.OpF64Sub)
	case "!":
		g.lowerExprInto(ctx, e.Right, types.Boolean)
		ctx.code.Op(wasmgc.OpI32Eqz)
	default:
		g.internalError("unhandled prefix operator `"+e.Operator+"` in codegen", e)
	}
}

// lowerInfixExpr lowers the built-in arithmetic/comparison/logical
// operators. `==`/`!=` fall back to ref.eq identity for any non-Number/
// Boolean operand pair (see RefEq's doc comment); `===`/`!==` always mean
// ref.eq regardless of operand type.
func (g *Generator) lowerInfixExpr(ctx *lowerCtx, e *ast.InfixExpr) {
	leftType := g.exprStaticType(e.Left)

	switch e.Operator {
	case "&&":
		g.lowerExprInto(ctx, e.Left, types.Boolean)
		ctx.openIf(wasmgc.BlockType{Result: wasmgc.I32})
		g.lowerExprInto(ctx, e.Right, types.Boolean)
		ctx.code.Else()
		ctx.code.I32Const(0)
		ctx.closeBlock()
		return
	case "||":
		g.lowerExprInto(ctx, e.Left, types.Boolean)
		ctx.openIf(wasmgc.BlockType{Result: wasmgc.I32})
		ctx.code.I32Const(1)
		ctx.code.Else()
		g.lowerExprInto(ctx, e.Right, types.Boolean)
		ctx.closeBlock()
		return
	}

	if (e.Operator == "==" || e.Operator == "!=") && leftType == types.Number {
		g.lowerExprInto(ctx, e.Left, types.Number)
		g.lowerExprInto(ctx, e.Right, types.Number)
		if e.Operator == "==" {
			ctx.code.Op(wasmgc.OpF64Eq)
		} else {
			ctx.code.Op(wasmgc.OpF64Ne)
		}
		return
	}
	if (e.Operator == "==" || e.Operator == "!=") && leftType == types.Boolean {
		g.lowerExprInto(ctx, e.Left, types.Boolean)
		g.lowerExprInto(ctx, e.Right, types.Boolean)
		if e.Operator == "==" {
			ctx.code.Op(wasmgc.OpI32Eq)
		} else {
			ctx.code.Op(wasmgc.OpI32Ne)
		}
		return
	}

	switch e.Operator {
	case "+", "-", "*", "/":
		g.lowerExprInto(ctx, e.Left, types.Number)
		g.lowerExprInto(ctx, e.Right, types.Number)
		switch e.Operator {
		case "+":
			ctx.code.Op(wasmgc.OpF64Add)
		case "-":
			ctx.code.Op(wasmgc.OpF64Sub)
		case "*":
			ctx.code.Op(wasmgc.OpF64Mul)
		case "/":
			ctx.code.Op(wasmgc.OpF64Div)
		}
	case "<", ">", "<=", ">=":
		g.lowerExprInto(ctx, e.Left, types.Number)
		g.lowerExprInto(ctx, e.Right, types.Number)
		switch e.Operator {
		case "<":
			ctx.code.Op(wasmgc.OpF64Lt)
		case ">":
			ctx.code.Op(wasmgc.OpF64Gt)
		case "<=":
			ctx.code.Op(wasmgc.OpF64Le)
		case ">=":
			ctx.code.Op(wasmgc.OpF64Ge)
		}
	case "==", "!=":
		g.lowerExprInto(ctx, e.Left, types.AnyRef)
		g.lowerExprInto(ctx, e.Right, types.AnyRef)
		ctx.code.RefEq()
		if e.Operator == "!=" {
			ctx.code.Op(wasmgc.OpI32Eqz)
		}
	case "===", "!==":
		g.lowerExprInto(ctx, e.Left, types.AnyRef)
		g.lowerExprInto(ctx, e.Right, types.AnyRef)
		ctx.code.RefEq()
		if e.Operator == "!==" {
			ctx.code.Op(wasmgc.OpI32Eqz)
		}
	default:
		g.internalError("unhandled infix operator `"+e.Operator+"` in codegen", e)
	}
}

// --- assignment ---

func (g *Generator) lowerAssignExpr(ctx *lowerCtx, e *ast.AssignExpr) {
	targetType := g.exprStaticType(e.Target)

	switch target := e.Target.(type) {
	case *ast.Ident:
		v, ok := ctx.scope.lookup(target.Name)
		if !ok {
			g.internalError("assignment to unresolved identifier `"+target.Name+"` in codegen", e)
			return
		}
		if v.boxed {
			ctx.code.LocalGet(v.idx)
			g.lowerExprInto(ctx, e.Value, v.typ)
			ctx.code.StructSet(g.captureCellTypeIdxFor(v.typ), 0)
			return
		}
		g.lowerExprInto(ctx, e.Value, v.typ)
		ctx.code.LocalSet(v.idx)

	case *ast.FieldExpr:
		fieldTargetType := g.exprStaticType(target.Target)
		c, ok := fieldTargetType.(*types.Class)
		if !ok {
			g.internalError("field assignment against a non-class target in codegen", e)
			return
		}
		class := canonicalClass(c)
		slot := fieldSlot(class, target.Name.Name)
		if slot < 0 {
			g.internalError("assignment to unknown field `"+target.Name.Name+"` on class `"+class.Name+"`", e)
			return
		}
		g.lowerExpr(ctx, target.Target)
		g.lowerExprInto(ctx, e.Value, targetType)
		ctx.code.StructSet(g.classTypeIdx[class], uint32(slot))

	case *ast.IndexExpr:
		arr, ok := g.exprStaticType(target.Target).(*types.Array)
		if !ok {
			g.internalError("index assignment against a non-array target in codegen", e)
			return
		}
		arrTypeIdx := g.arrayTypeIdxFor(arr.Elem)
		g.lowerExpr(ctx, target.Target)
		g.lowerExprInto(ctx, target.Index, types.Number)
		ctx.code.Op(wasmgc.OpI32TruncF64S)
		g.lowerExprInto(ctx, e.Value, arr.Elem)
		ctx.code.ArraySet(arrTypeIdx)

	default:
		g.internalError("unhandled assignment target in codegen", e)
	}
}

// --- field access / indexing ---

func (g *Generator) lowerFieldAccess(ctx *lowerCtx, e *ast.FieldExpr) {
	if _, ok := e.Target.(*ast.SuperExpr); ok {
		g.lowerSuperMethodCall(ctx, e, nil)
		return
	}

	targetType := g.exprStaticType(e.Target)
	switch t := targetType.(type) {
	case *types.Class:
		c := canonicalClass(t)
		if slot := fieldSlot(c, e.Name.Name); slot >= 0 {
			g.lowerExpr(ctx, e.Target)
			ctx.code.StructGet(g.classTypeIdx[c], uint32(slot))
			return
		}
		g.lowerMethodDispatch(ctx, e.Target, t, e.Name.Name, nil)
	case *types.Interface:
		g.lowerInterfaceDispatch(ctx, e.Target, t, e.Name.Name, nil)
	default:
		g.lowerExtensionCall(ctx, e.Target, targetType, e.Name.Name, nil)
	}
}

func (g *Generator) lowerIndexExpr(ctx *lowerCtx, e *ast.IndexExpr) {
	targetType := g.exprStaticType(e.Target)
	switch t := targetType.(type) {
	case *types.Array:
		arrTypeIdx := g.arrayTypeIdxFor(t.Elem)
		g.lowerExpr(ctx, e.Target)
		g.lowerExprInto(ctx, e.Index, types.Number)
		ctx.code.Op(wasmgc.OpI32TruncF64S)
		ctx.code.ArrayGet(arrTypeIdx)
	case *types.Tuple:
		lit, ok := e.Index.(*ast.IntegerLiteral)
		if !ok {
			g.internalError("tuple index must be an integer literal in codegen", e)
			return
		}
		typeIdx := g.tupleTypeIdxFor(t)
		g.lowerExpr(ctx, e.Target)
		ctx.code.StructGet(typeIdx, uint32(lit.Value))
	default:
		g.internalError("unhandled index-target type in codegen", e)
	}
}

// --- new ---

// lowerNewExpr allocates a class instance and runs its constructor: the
// struct is built in one struct.new with the class's vtable global plus
// every field's zero value (the vtable field is declared immutable, so a
// struct.new_default + struct.set sequence -- which constructor lowering
// uses for method-receiver narrowing elsewhere -- cannot fill it), bound to
// a local, then passed as receiver to the reserved constructor function
// alongside the lowered argument expressions.
func (g *Generator) lowerNewExpr(ctx *lowerCtx, e *ast.NewExpr) {
	resolved := g.resolveTypeExpr(e.Type)
	class, ok := resolved.(*types.Class)
	if !ok {
		g.internalError("`new` against a non-class type in codegen", e)
		return
	}
	c := canonicalClass(class)

	ctx.code.GlobalGet(g.classVtableGlobal[c])
	for _, f := range flattenFields(c) {
		pushZeroValue(ctx.code, g.mapType(f.Type))
	}
	ctx.code.StructNew(g.classTypeIdx[c])

	local := ctx.newLocal(c)
	ctx.code.LocalSet(local)

	ctx.code.LocalGet(local)

	var params []*ast.Param
	if cd := g.classDeclOf(c); cd != nil && cd.Constructor != nil {
		params = cd.Constructor.Fn.Params
	}
	for i, a := range e.Args {
		pt := types.Type(types.Unknown)
		if i < len(params) {
			pt = g.resolveParamType(params[i])
		}
		g.lowerExprInto(ctx, a, pt)
	}
	ctx.code.Call(g.classCtorFunc[c])

	ctx.code.LocalGet(local)
}

// pushZeroValue pushes t's zero value: 0.0 for f64, 0 for i32, otherwise a
// null reference of t's own heap type.
func pushZeroValue(code *wasmgc.Code, t wasmgc.ValType) {
	switch t {
	case wasmgc.F64:
		code.F64Const(0)
	case wasmgc.I32:
		code.I32Const(0)
	default:
		code.RefNullType(t)
	}
}

// --- calls ---

func (g *Generator) lowerCallExpr(ctx *lowerCtx, e *ast.CallExpr) {
	if isSuperCtorCall(e) {
		g.lowerSuperCtorCall(ctx, e)
		return
	}

	if fe, ok := e.Callee.(*ast.FieldExpr); ok {
		if _, isSuper := fe.Target.(*ast.SuperExpr); isSuper {
			g.lowerSuperMethodCall(ctx, fe, e.Args)
			return
		}

		targetType := g.exprStaticType(fe.Target)
		switch t := targetType.(type) {
		case *types.Class:
			c := canonicalClass(t)
			if slot := fieldSlot(c, fe.Name.Name); slot >= 0 {
				g.lowerExpr(ctx, fe.Target)
				ctx.code.StructGet(g.classTypeIdx[c], uint32(slot))
				fnType, _ := g.exprStaticType(fe).(*types.Function)
				g.lowerClosureCallFromValue(ctx, fnType, e.Args)
				return
			}
			g.lowerMethodDispatch(ctx, fe.Target, t, fe.Name.Name, e.Args)
			return
		case *types.Interface:
			g.lowerInterfaceDispatch(ctx, fe.Target, t, fe.Name.Name, e.Args)
			return
		default:
			g.lowerExtensionCall(ctx, fe.Target, targetType, fe.Name.Name, e.Args)
			return
		}
	}

	calleeType := g.exprStaticType(e.Callee)
	if u, ok := calleeType.(*types.Union); ok {
		g.lowerUnionCall(ctx, e, u)
		return
	}

	if ident, ok := e.Callee.(*ast.Ident); ok {
		if _, isLocal := ctx.scope.lookup(ident.Name); !isLocal {
			if fn, ok2 := g.freeFunctionDecl(ident.Name); ok2 {
				g.lowerFreeCall(ctx, fn, e.Args)
				return
			}
		}
	}

	fnType, _ := calleeType.(*types.Function)
	g.lowerClosureValueCall(ctx, e.Callee, fnType, e.Args)
}

func argType(m *types.Method, i int) types.Type {
	if m != nil && i < len(m.Params) {
		return m.Params[i]
	}
	return types.Unknown
}

// findClassMethodSig finds name's signature among class's (already
// flattened) Methods list.
func findClassMethodSig(class *types.Class, name string) *types.Method {
	for i := range class.Methods {
		if class.Methods[i].Name == name {
			return &class.Methods[i]
		}
	}
	return nil
}

func findInterfaceMethodSig(iface *types.Interface, name string) *types.Method {
	for i := range iface.Methods {
		if iface.Methods[i].Name == name {
			return &iface.Methods[i]
		}
	}
	return nil
}

func (g *Generator) lowerMethodArgs(ctx *lowerCtx, m *types.Method, args []ast.Expr) {
	for i, a := range args {
		g.lowerExprInto(ctx, a, argType(m, i))
	}
}

// lowerMethodDispatch calls name on a Class-typed target: a direct static
// call for a final or extension class (no subclass can override it), for a
// method itself declared final (spec.md §4.5: "the method is final" is
// static-dispatch eligible even on a non-final class, since no subclass may
// override it either), or a vtable-dispatched call_ref otherwise, reached
// through the instance's own stored vtable pointer so overriding always
// resolves to the most-derived implementation regardless of the target
// expression's static type.
func (g *Generator) lowerMethodDispatch(ctx *lowerCtx, targetExpr ast.Expr, classType *types.Class, name string, args []ast.Expr) {
	c := canonicalClass(classType)
	m := findClassMethodSig(c, name)

	if c.Final || (m != nil && m.IsFinal) {
		g.lowerExpr(ctx, targetExpr)
		g.lowerMethodArgs(ctx, m, args)
		ctx.code.Call(g.resolveMethodImpl(c, name))
		return
	}

	g.lowerExpr(ctx, targetExpr)
	instLocal := ctx.newLocal(c)
	ctx.code.LocalSet(instLocal)

	layout := g.classVtableLayout[c]
	slot := wasmgc.MethodSlot(layout, name)
	if slot < 0 {
		g.internalError("no vtable slot for method `"+name+"` on class `"+c.Name+"`", targetExpr)
		return
	}

	ctx.code.LocalGet(instLocal)
	g.lowerMethodArgs(ctx, m, args)
	ctx.code.LocalGet(instLocal)
	ctx.code.StructGet(g.classTypeIdx[c], vtableFieldIdx)
	ctx.code.StructGet(g.classVtableType[c], uint32(slot))
	ctx.code.CallRef(layout.Methods[slot].FuncSig)
}

// lowerInterfaceDispatch calls name through an Interface-typed target's own
// fat pointer: struct.get the boxed instance and the vtable, struct.get the
// method slot off the vtable, then call_ref.
func (g *Generator) lowerInterfaceDispatch(ctx *lowerCtx, targetExpr ast.Expr, iface *types.Interface, name string, args []ast.Expr) {
	m := findInterfaceMethodSig(iface, name)
	layout := g.ifaceLayout[iface]
	slot := wasmgc.MethodSlot(layout, name)
	if slot < 0 {
		g.internalError("no vtable slot for method `"+name+"` on interface `"+iface.Name+"`", targetExpr)
		return
	}
	fatPtrTypeIdx := g.ifaceFatPtrType[iface]

	g.lowerExpr(ctx, targetExpr)
	fpLocal := ctx.newLocal(iface)
	ctx.code.LocalSet(fpLocal)

	ctx.code.LocalGet(fpLocal)
	ctx.code.StructGet(fatPtrTypeIdx, 0)
	g.lowerMethodArgs(ctx, m, args)
	ctx.code.LocalGet(fpLocal)
	ctx.code.StructGet(fatPtrTypeIdx, 1)
	ctx.code.StructGet(g.ifaceVtableType[iface], uint32(slot))
	ctx.code.CallRef(layout.Methods[slot].FuncSig)
}

// findExtensionImpl finds the extension class in the program whose OnType
// is assignable from onType and which declares name, the same resolution
// an extension-method call site needs at codegen time since extension
// dispatch is always static (see reserveExtensionFuncs).
func (g *Generator) findExtensionImpl(onType types.Type, name string) (*types.Class, bool) {
	for _, c := range g.classes {
		if !c.IsExtension {
			continue
		}
		if !types.AssignableTo(onType, c.OnType) {
			continue
		}
		if _, ok := g.classMethodFunc[c][name]; ok {
			return c, true
		}
	}
	return nil, false
}

// lowerExtensionCall resolves and calls an extension method statically: the
// receiver is the bare underlying value itself, not a class instance.
func (g *Generator) lowerExtensionCall(ctx *lowerCtx, targetExpr ast.Expr, targetType types.Type, name string, args []ast.Expr) {
	ext, ok := g.findExtensionImpl(targetType, name)
	if !ok {
		g.internalError("no extension method `"+name+"` found for type `"+targetType.String()+"`", targetExpr)
		return
	}
	m := findClassMethodSig(ext, name)
	g.lowerExprInto(ctx, targetExpr, ext.OnType)
	g.lowerMethodArgs(ctx, m, args)
	ctx.code.Call(g.classMethodFunc[ext][name])
}

// lowerSuperCtorCall lowers a constructor-chaining `super(...)` statement:
// "this" is already allocated (see lowerNewExpr), so it's just a direct
// call to the superclass's reserved constructor function.
func (g *Generator) lowerSuperCtorCall(ctx *lowerCtx, e *ast.CallExpr) {
	this, _ := ctx.scope.lookup("this")
	super := ctx.class.Super
	ctx.code.LocalGet(this.idx)

	var params []*ast.Param
	if super != nil {
		if cd := g.classDeclOf(super); cd != nil && cd.Constructor != nil {
			params = cd.Constructor.Fn.Params
		}
	}
	for i, a := range e.Args {
		pt := types.Type(types.Unknown)
		if i < len(params) {
			pt = g.resolveParamType(params[i])
		}
		g.lowerExprInto(ctx, a, pt)
	}
	ctx.code.Call(g.classCtorFunc[super])
}

// lowerSuperMethodCall lowers `super.method(...)` (or a bare `super.field`
// access, when args is nil): a direct static call to the superclass's own
// implementation, bypassing the vtable entirely since `super` always means
// the statically-known parent, never runtime-dispatched override
// resolution.
func (g *Generator) lowerSuperMethodCall(ctx *lowerCtx, fe *ast.FieldExpr, args []ast.Expr) {
	this, _ := ctx.scope.lookup("this")
	super := ctx.class.Super
	if super == nil {
		g.internalError("`super` used in a class with no superclass", fe)
		return
	}
	m := findClassMethodSig(super, fe.Name.Name)

	ctx.code.LocalGet(this.idx)
	g.lowerMethodArgs(ctx, m, args)
	ctx.code.Call(g.resolveMethodImpl(super, fe.Name.Name))
}

// lowerFreeCall lowers a direct call to a top-level fn, by function index.
func (g *Generator) lowerFreeCall(ctx *lowerCtx, fn *ast.FnDecl, args []ast.Expr) {
	for i, a := range args {
		pt := types.Type(types.Unknown)
		if i < len(fn.Params) {
			pt = g.resolveParamType(fn.Params[i])
		}
		g.lowerExprInto(ctx, a, pt)
	}
	ctx.code.Call(g.freeFuncIdx[fn])
}

// lowerFreeFunctionValue lowers a bare reference to a free function used as
// a first-class value: wraps it in the same {funcref, ctxref} shape every
// closure value carries, via a thunk that ignores its (unused) boxed
// context and forwards straight into the real function.
func (g *Generator) lowerFreeFunctionValue(ctx *lowerCtx, fn *ast.FnDecl) {
	fnType := g.freeFunctionType(fn)
	implIdx := g.freeFunctionThunk(fn, fnType)
	ctx.code.RefFunc(implIdx)
	ctx.code.RefNullType(wasmgc.AnyRefNull)
	ctx.code.StructNew(g.closureStructTypeIdxFor(fnType))
}

func (g *Generator) freeFunctionType(fn *ast.FnDecl) *types.Function {
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = g.resolveParamType(p)
	}
	return &types.Function{Params: params, Return: g.resolveReturnType(fn.ReturnType)}
}

// freeFunctionThunk builds (once per fn) a closure-calling-convention
// wrapper around a free function: an unused anyref context parameter
// followed by a direct call through to the real function.
func (g *Generator) freeFunctionThunk(fn *ast.FnDecl, fnType *types.Function) uint32 {
	if idx, ok := g.freeFuncThunk[fn]; ok {
		return idx
	}
	implSig := g.closureImplSigIdxFor(fnType)
	idx := g.b.ReserveFunc("$thunk$"+fn.Name.Name, implSig)

	code := wasmgc.NewCode()
	for i := range fn.Params {
		code.LocalGet(uint32(i + 1))
	}
	code.Call(g.freeFuncIdx[fn])
	g.b.FillFuncCode(idx, code)

	g.freeFuncThunk[fn] = idx
	return idx
}

// lowerClosureValueCall evaluates calleeExpr to a closure value, binds it to
// a local, and calls through it with args.
func (g *Generator) lowerClosureValueCall(ctx *lowerCtx, calleeExpr ast.Expr, fnType *types.Function, args []ast.Expr) {
	g.lowerExpr(ctx, calleeExpr)
	g.lowerClosureCallFromValue(ctx, fnType, args)
}

// lowerClosureCallFromValue calls through a closure value already on top of
// the stack: bind it to a local (call_ref's operand order -- ctx, then
// args, then the funcref itself -- can't be produced by repeated
// struct.get around the argument expressions), then follow the closure
// calling protocol.
func (g *Generator) lowerClosureCallFromValue(ctx *lowerCtx, fnType *types.Function, args []ast.Expr) {
	if fnType == nil {
		g.internalError("closure call with unresolved function type in codegen", nil)
		return
	}
	local := ctx.newLocal(fnType)
	ctx.code.LocalSet(local)

	g.closurePushCtx(ctx, local, fnType)
	for i, a := range args {
		pt := types.Type(types.Unknown)
		if i < len(fnType.Params) {
			pt = fnType.Params[i]
		}
		g.lowerExprInto(ctx, a, pt)
	}
	g.closureFinishCall(ctx, local, fnType)
}

// lowerUnionCall dispatches a call whose callee is Union-typed: a chain of
// ref.test checks against each member in turn, calling through whichever
// member's own calling convention applies once the actual runtime type is
// known. Only Function members are called; a Class member raises an
// internalError, and members of any other kind are skipped, so a value
// matching no Function member falls through to a trap.
func (g *Generator) lowerUnionCall(ctx *lowerCtx, e *ast.CallExpr, u *types.Union) {
	calleeType := types.Type(types.AnyRef)
	local := ctx.newLocal(calleeType)
	g.lowerExpr(ctx, e.Callee)
	ctx.code.LocalSet(local)

	resultType := g.exprStaticType(e)
	hasValue := resultType != nil && resultType != types.Void && resultType != types.Never
	bt := wasmgc.BlockType{Empty: true}
	if hasValue {
		bt = wasmgc.BlockType{Result: g.mapType(resultType)}
	}

	outerBase := ctx.depth
	ctx.openBlock(bt)

	for _, member := range u.Members {
		fnType, isFn := member.(*types.Function)
		class, isClass := member.(*types.Class)
		if !isFn && !isClass {
			continue
		}

		memberBase := ctx.depth
		ctx.openBlock(wasmgc.BlockType{Empty: true})

		ctx.code.LocalGet(local)
		if isFn {
			ctx.code.RefTest(wasmgc.RefNull(g.closureStructTypeIdxFor(fnType)))
		} else {
			c := canonicalClass(class)
			ctx.code.RefTest(wasmgc.RefNull(g.classTypeIdx[c]))
		}
		ctx.code.Op(wasmgc.OpI32Eqz)
		ctx.code.BrIf(ctx.depth - memberBase - 1)

		if isFn {
			ctx.code.LocalGet(local)
			ctx.code.RefCast(wasmgc.RefNull(g.closureStructTypeIdxFor(fnType)))
			g.lowerClosureCallFromValue(ctx, fnType, e.Args)
		} else {
			g.internalError("calling a Class-typed union member as a value is not supported by this codegen pass", e)
		}
		ctx.code.Br(ctx.depth - outerBase - 1)
		ctx.closeBlock()
	}
	ctx.code.Unreachable()

	ctx.closeBlock()
}
