package types

import "github.com/zena-lang/zenac/internal/ast"
import "github.com/zena-lang/zenac/internal/diag"

func (c *Checker) checkExpr(e ast.Expr, scope *Scope, ctx *funcCtx) Type {
	t := c.checkExprKind(e, scope, ctx)
	c.TypeInfo[e] = t
	return t
}

func (c *Checker) checkExprKind(e ast.Expr, scope *Scope, ctx *funcCtx) Type {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return Number
	case *ast.FloatLiteral:
		return Number
	case *ast.StringLiteral:
		return AnyRef
	case *ast.BoolLiteral:
		return Boolean
	case *ast.NilLiteral:
		return Null

	case *ast.Ident:
		if e.Name == "this" {
			return c.checkThis(e)
		}
		sym := scope.Lookup(e.Name)
		if sym == nil {
			c.reportWithSuggestion(diag.CodeSymbolNotFound, "undefined symbol `"+e.Name+"`", e, scope.VisibleNames(), e.Name)
			return Unknown
		}
		return sym.Type

	case *ast.ThisExpr:
		return c.checkThis(e)

	case *ast.SuperExpr:
		if c.currentClass == nil || c.currentClass.Super == nil {
			c.report(diag.CodeUnknownError, "`super` used outside a subclass", e)
			return Unknown
		}
		return c.currentClass.Super

	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(e.Elements, scope, ctx, e)

	case *ast.FixedArrayLiteral:
		return c.checkArrayLiteral(e.Elements, scope, ctx, e)

	case *ast.TupleLiteral:
		elems := make([]Type, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = c.checkExpr(el, scope, ctx)
		}
		return &Tuple{Elements: elems}

	case *ast.RecordLiteral:
		fields := make([]RecordField, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = RecordField{Name: f.Name.Name, Type: c.checkExpr(f.Value, scope, ctx)}
		}
		return &Record{Fields: fields}

	case *ast.BlockExpr:
		return c.checkBlock(e, scope, ctx)

	case *ast.IfExpr:
		c.checkExpr(e.Cond, scope, ctx)
		thenType := c.checkBlock(e.Then, scope, ctx)
		if e.Else == nil {
			return Void
		}
		elseType := c.checkExpr(e.Else, scope, ctx)
		if AssignableTo(elseType, thenType) {
			return thenType
		}
		if AssignableTo(thenType, elseType) {
			return elseType
		}
		return &Union{Members: []Type{thenType, elseType}}

	case *ast.MatchExpr:
		return c.checkMatchExpr(e, scope, ctx)

	case *ast.PrefixExpr:
		return c.checkExpr(e.Right, scope, ctx)

	case *ast.InfixExpr:
		return c.checkInfixExpr(e, scope, ctx)

	case *ast.AssignExpr:
		targetType := c.checkExpr(e.Target, scope, ctx)
		valType := c.checkExpr(e.Value, scope, ctx)
		if !c.assignable(valType, targetType) {
			c.report(diag.CodeTypeMismatch, "cannot assign value of type `"+valType.String()+"` here, expected `"+targetType.String()+"`", e)
		}
		return targetType

	case *ast.CallExpr:
		return c.checkCallExpr(e, scope, ctx)

	case *ast.FieldExpr:
		return c.checkFieldExpr(e, scope, ctx)

	case *ast.IndexExpr:
		targetType := c.checkExpr(e.Target, scope, ctx)
		c.checkExpr(e.Index, scope, ctx)
		return c.elementTypeOf(targetType)

	case *ast.FunctionLiteral:
		return c.checkFunctionLiteral(e, scope, ctx)

	case *ast.NewExpr:
		return c.checkNewExpr(e, scope, ctx)

	case *ast.RangeExpr:
		c.checkExpr(e.Start, scope, ctx)
		c.checkExpr(e.End, scope, ctx)
		return &Array{Elem: Number}

	default:
		c.internalError("unhandled expression kind", e)
		return Unknown
	}
}

func (c *Checker) checkThis(node ast.Node) Type {
	if c.currentClass == nil {
		c.report(diag.CodeUnknownError, "`this` used outside a method", node)
		return Unknown
	}
	return c.currentClass
}

func (c *Checker) checkArrayLiteral(elements []ast.Expr, scope *Scope, ctx *funcCtx, node ast.Node) Type {
	if len(elements) == 0 {
		return &Array{Elem: Any}
	}
	elemType := c.checkExpr(elements[0], scope, ctx)
	for _, el := range elements[1:] {
		t := c.checkExpr(el, scope, ctx)
		if !AssignableTo(t, elemType) {
			if AssignableTo(elemType, t) {
				elemType = t
				continue
			}
			elemType = Any
		}
	}
	return &Array{Elem: elemType}
}

func (c *Checker) checkInfixExpr(e *ast.InfixExpr, scope *Scope, ctx *funcCtx) Type {
	left := c.checkExpr(e.Left, scope, ctx)
	right := c.checkExpr(e.Right, scope, ctx)
	switch e.Operator {
	case "&&", "||":
		return Boolean
	case "==", "!=", "===", "!==", "<", "<=", ">", ">=":
		return Boolean
	default:
		if left == Number && right == Number {
			return Number
		}
		return Unknown
	}
}

func (c *Checker) checkFunctionLiteral(e *ast.FunctionLiteral, scope *Scope, ctx *funcCtx) Type {
	closureScope := NewScope(scope)
	params := make([]Type, len(e.Params))
	for i, p := range e.Params {
		pt := c.resolveType(p.Type, scope)
		params[i] = pt
		closureScope.Insert(p.Name.Name, &Symbol{Name: p.Name.Name, Type: pt, DefNode: p})
	}
	retType := c.resolveType(e.ReturnType, scope)
	innerCtx := &funcCtx{returnType: retType}
	c.checkBlock(e.Body, closureScope, innerCtx)
	return &Function{Params: params, Return: retType}
}

func (c *Checker) checkNewExpr(e *ast.NewExpr, scope *Scope, ctx *funcCtx) Type {
	t := c.resolveType(e.Type, scope)
	class, ok := t.(*Class)
	if !ok {
		c.report(diag.CodeTypeMismatch, "`new` requires a class type", e)
		return Unknown
	}
	for _, a := range e.Args {
		c.checkExpr(a, scope, ctx)
	}
	return class
}

func (c *Checker) checkCallExpr(e *ast.CallExpr, scope *Scope, ctx *funcCtx) Type {
	calleeType := c.checkExpr(e.Callee, scope, ctx)
	for _, a := range e.Args {
		c.checkExpr(a, scope, ctx)
	}
	switch ct := calleeType.(type) {
	case *Function:
		return ct.Return
	case *Union:
		return c.checkUnionCall(ct, len(e.Args))
	default:
		return Unknown
	}
}

// checkUnionCall resolves the call's result type for a union-typed callee
// (e.g. a field holding `(() -> Number) | (() -> String)`): every member
// must be callable with the supplied arity, and the result is the union of
// each member's return type.
func (c *Checker) checkUnionCall(u *Union, argc int) Type {
	var results []Type
	for _, m := range u.Members {
		fn, ok := m.(*Function)
		if !ok || len(fn.Params) != argc {
			return Unknown
		}
		results = append(results, fn.Return)
	}
	if len(results) == 1 {
		return results[0]
	}
	return &Union{Members: results}
}

func (c *Checker) checkFieldExpr(e *ast.FieldExpr, scope *Scope, ctx *funcCtx) Type {
	targetType := c.checkExpr(e.Target, scope, ctx)
	name := e.Name.Name

	switch t := targetType.(type) {
	case *Class:
		if ft, ok := findField(t, name); ok {
			return ft
		}
		if mt, ok := findMethod(t.Methods, name); ok {
			return mt
		}
		if mt, ok := c.findExtensionMember(t, name); ok {
			return mt
		}
		c.reportWithSuggestion(diag.CodePropertyNotFound, "no field or method `"+name+"` on `"+t.String()+"`", e, memberNames(t), name)
		return Unknown
	case *Interface:
		for _, f := range t.Fields {
			if f.Name == name {
				return f.Type
			}
		}
		if mt, ok := findMethod(t.Methods, name); ok {
			return mt
		}
		if mt, ok := c.findExtensionMember(t, name); ok {
			return mt
		}
		c.report(diag.CodePropertyNotFound, "no field or method `"+name+"` on `"+t.String()+"`", e)
		return Unknown
	case *Record:
		for _, f := range t.Fields {
			if f.Name == name {
				return f.Type
			}
		}
		c.report(diag.CodePropertyNotFound, "no field `"+name+"` on record type", e)
		return Unknown
	default:
		if mt, ok := c.findExtensionMember(targetType, name); ok {
			return mt
		}
		return Unknown
	}
}

// findExtensionMember looks up name as a field or method contributed by any
// `extension class ... on T` whose T the target type is assignable to. This
// is how a primitive, array, or other non-Class value gets method-call
// syntax: the underlying value carries no vtable of its own, so dispatch is
// resolved statically at the call site against the extension's declared
// member table (codegen emits a direct call, never a virtual one).
func (c *Checker) findExtensionMember(t Type, name string) (Type, bool) {
	for _, cls := range c.Classes {
		if !cls.IsExtension || cls.OnType == nil {
			continue
		}
		if !AssignableTo(t, cls.OnType) {
			continue
		}
		if ft, ok := findField(cls, name); ok {
			return ft, true
		}
		if mt, ok := findMethod(cls.Methods, name); ok {
			return mt, true
		}
	}
	return nil, false
}

func findField(class *Class, name string) (Type, bool) {
	for c := class; c != nil; c = c.Super {
		for _, f := range c.Fields {
			if f.Name == name {
				return f.Type, true
			}
		}
	}
	return nil, false
}

func findMethod(methods []Method, name string) (*Function, bool) {
	for _, m := range methods {
		if m.Name == name {
			return &Function{Params: m.Params, Return: m.Return}, true
		}
	}
	return nil, false
}

func memberNames(class *Class) []string {
	var names []string
	for c := class; c != nil; c = c.Super {
		for _, f := range c.Fields {
			names = append(names, f.Name)
		}
		for _, m := range c.Methods {
			names = append(names, m.Name)
		}
	}
	return names
}

func (c *Checker) checkMatchExpr(e *ast.MatchExpr, scope *Scope, ctx *funcCtx) Type {
	subjectType := c.checkExpr(e.Subject, scope, ctx)
	var result Type
	for _, arm := range e.Arms {
		armScope := NewScope(scope)
		c.bindPattern(arm.Pattern, subjectType, armScope)
		if arm.Guard != nil {
			c.checkExpr(arm.Guard, armScope, ctx)
		}
		armType := c.checkExpr(arm.Body, armScope, ctx)
		if result == nil {
			result = armType
		} else if !AssignableTo(armType, result) {
			if AssignableTo(result, armType) {
				result = armType
			} else {
				result = &Union{Members: []Type{result, armType}}
			}
		}
	}
	if result == nil {
		return Void
	}
	return result
}

func (c *Checker) bindPattern(p ast.Pattern, subject Type, scope *Scope) {
	switch p := p.(type) {
	case *ast.PatternIdent:
		scope.Insert(p.Name.Name, &Symbol{Name: p.Name.Name, Type: subject, DefNode: p})
	case *ast.PatternTuple:
		tup, ok := subject.(*Tuple)
		for i, el := range p.Elements {
			var elType Type = Any
			if ok && i < len(tup.Elements) {
				elType = tup.Elements[i]
			}
			c.bindPattern(el, elType, scope)
		}
	case *ast.PatternEnum:
		for _, fb := range p.Fields {
			if fb.Pattern != nil {
				c.bindPattern(fb.Pattern, Any, scope)
			} else {
				scope.Insert(fb.Name.Name, &Symbol{Name: fb.Name.Name, Type: Any, DefNode: fb.Name})
			}
		}
	case *ast.PatternArray:
		elemType := c.elementTypeOf(subject)
		for _, el := range p.Elements {
			c.bindPattern(el, elemType, scope)
		}
		if p.Rest != nil {
			scope.Insert(p.Rest.Name, &Symbol{Name: p.Rest.Name, Type: &Array{Elem: elemType}, DefNode: p.Rest})
		}
	case *ast.PatternOr:
		for _, alt := range p.Alternatives {
			c.bindPattern(alt, subject, scope)
		}
	}
}
