package types

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/diag"
)

// funcCtx tracks the state needed while checking one function/method/
// constructor body: its return type, for ReturnStmt checking. Loop nesting
// (for Break/Continue validity) is not tracked here.
type funcCtx struct {
	returnType Type
}

// checkBodies is the checker's second pass: with every declaration's shape
// already collected, walk each function/method/constructor body and
// type-check its statements and expressions.
func (c *Checker) checkBodies(file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FnDecl:
			c.checkFnBody(d)
		case *ast.ClassDecl:
			c.checkClassBodies(d)
		case *ast.MixinDecl:
			c.checkMixinBodies(d)
		case *ast.EnumDecl:
			c.checkEnumBodies(d)
		}
	}
}

func (c *Checker) checkFnBody(d *ast.FnDecl) {
	scope, _ := c.typeParamScope(d.TypeParams)
	fnScope := NewScope(scope)
	for _, p := range d.Params {
		fnScope.Insert(p.Name.Name, &Symbol{Name: p.Name.Name, Type: c.resolveType(p.Type, scope), DefNode: p})
	}
	ctx := &funcCtx{returnType: c.resolveType(d.ReturnType, scope)}
	if d.Body != nil {
		c.checkBlock(d.Body, fnScope, ctx)
	}
}

func (c *Checker) checkClassBodies(d *ast.ClassDecl) {
	class := c.Classes[d.Name.Name]
	scope, _ := c.typeParamScope(d.TypeParams)
	prevClass, prevInit := c.currentClass, c.initialized
	c.currentClass = class

	if d.Constructor != nil {
		c.initialized = class.Super == nil
		c.checkMethodBody(class, d.Constructor, scope)
	}
	for _, m := range d.Methods {
		if m.IsAbstract {
			if !d.Abstract {
				c.report(diag.CodeAbstractMethodInConcrete, "abstract method `"+m.Fn.Name.Name+"` in non-abstract class `"+d.Name.Name+"`", m.Fn)
			}
			continue
		}
		c.initialized = true
		c.checkMethodBody(class, m, scope)
	}

	if d.Abstract == false && class.Super != nil {
		c.checkAbstractMethodsImplemented(class, d)
	}

	c.currentClass, c.initialized = prevClass, prevInit
}

func (c *Checker) checkAbstractMethodsImplemented(class *Class, d *ast.ClassDecl) {
	for sup := class.Super; sup != nil; sup = sup.Super {
		for _, m := range sup.Methods {
			implemented := false
			for _, own := range class.Methods {
				if own.Name == m.Name {
					implemented = true
					break
				}
			}
			if !implemented {
				c.report(diag.CodeAbstractMethodNotImpl, "class `"+d.Name.Name+"` does not implement abstract method `"+m.Name+"`", d)
			}
		}
	}
}

// checkMixinBodies validates mixin method bodies against the mixin's own
// declared field/method shape. Bodies are not re-checked per applying class;
// `this` is simply the mixin's own shape here.
func (c *Checker) checkMixinBodies(d *ast.MixinDecl) {
	mixin := c.Mixins[d.Name.Name]
	scope, _ := c.typeParamScope(d.TypeParams)
	dummy := &Class{Name: d.Name.Name, Fields: mixin.Fields, Methods: mixin.Methods}
	prevClass := c.currentClass
	c.currentClass = dummy
	c.initialized = true
	for _, m := range d.Methods {
		c.checkMethodBody(dummy, m, scope)
	}
	c.currentClass = prevClass
}

func (c *Checker) checkEnumBodies(d *ast.EnumDecl) {
	enum := c.Enums[d.Name.Name]
	scope, _ := c.typeParamScope(d.TypeParams)
	dummy := &Class{Name: d.Name.Name, Methods: enum.Methods}
	prevClass := c.currentClass
	c.currentClass = dummy
	c.initialized = true
	for _, m := range d.Methods {
		c.checkMethodBody(dummy, m, scope)
	}
	c.currentClass = prevClass
}

func (c *Checker) checkMethodBody(class *Class, m *ast.MethodDecl, classScope *Scope) {
	if m.Fn.Body == nil {
		return
	}
	scope := classScope
	if len(m.Fn.TypeParams) > 0 {
		scope, _ = c.typeParamScopeIn(classScope, m.Fn.TypeParams)
	}
	fnScope := NewScope(scope)
	if !m.IsStatic {
		fnScope.Insert("this", &Symbol{Name: "this", Type: class})
	}
	for _, p := range m.Fn.Params {
		fnScope.Insert(p.Name.Name, &Symbol{Name: p.Name.Name, Type: c.resolveType(p.Type, scope), DefNode: p})
	}
	ctx := &funcCtx{returnType: c.resolveType(m.Fn.ReturnType, scope)}
	c.checkBlock(m.Fn.Body, fnScope, ctx)
}

func (c *Checker) checkBlock(b *ast.BlockExpr, scope *Scope, ctx *funcCtx) Type {
	inner := NewScope(scope)
	var last Type = Void
	for _, stmt := range b.Stmts {
		last = c.checkStmt(stmt, inner, ctx)
	}
	return last
}

func (c *Checker) checkStmt(s ast.Stmt, scope *Scope, ctx *funcCtx) Type {
	switch s := s.(type) {
	case *ast.LetStmt:
		var declared Type
		if s.Type != nil {
			declared = c.resolveType(s.Type, scope)
		}
		valType := c.checkExpr(s.Value, scope, ctx)
		if declared == nil {
			declared = valType
		} else if !c.assignable(valType, declared) {
			c.report(diag.CodeTypeMismatch, "cannot assign value of type `"+valType.String()+"` to `"+s.Name.Name+"` of type `"+declared.String()+"`", s.Value)
		}
		scope.Insert(s.Name.Name, &Symbol{Name: s.Name.Name, Type: declared, DefNode: s})
		return Void

	case *ast.ExprStmt:
		return c.checkExpr(s.X, scope, ctx)

	case *ast.ReturnStmt:
		var valType Type = Void
		if s.Value != nil {
			valType = c.checkExpr(s.Value, scope, ctx)
		}
		if ctx.returnType != nil && !c.assignable(valType, ctx.returnType) {
			c.report(diag.CodeTypeMismatch, "cannot return value of type `"+valType.String()+"`, expected `"+ctx.returnType.String()+"`", s)
		}
		return Never

	case *ast.BreakStmt, *ast.ContinueStmt:
		return Never

	case *ast.WhileStmt:
		c.checkExpr(s.Cond, scope, ctx)
		c.checkBlock(s.Body, scope, ctx)
		return Void

	case *ast.ForStmt:
		iterType := c.checkExpr(s.Iterable, scope, ctx)
		bodyScope := NewScope(scope)
		bodyScope.Insert(s.Binding.Name, &Symbol{Name: s.Binding.Name, Type: c.elementTypeOf(iterType), DefNode: s.Binding})
		c.checkBlock(s.Body, bodyScope, ctx)
		return Void

	case *ast.ThrowStmt:
		c.checkExpr(s.Value, scope, ctx)
		return Never

	case *ast.TryStmt:
		c.checkBlock(s.Body, scope, ctx)
		if s.Catch != nil {
			catchScope := NewScope(scope)
			if s.Catch.Name != nil {
				catchScope.Insert(s.Catch.Name.Name, &Symbol{Name: s.Catch.Name.Name, Type: AnyRef, DefNode: s.Catch.Name})
			}
			c.checkBlock(s.Catch.Body, catchScope, ctx)
		}
		return Void

	default:
		c.internalError("unhandled statement kind", s)
		return Unknown
	}
}

func (c *Checker) elementTypeOf(t Type) Type {
	switch t := t.(type) {
	case *Array:
		return t.Elem
	case *Class:
		if t.GenericSource != nil && len(t.TypeArgs) > 0 {
			return t.TypeArgs[0]
		}
		return Any
	default:
		return Any
	}
}
