package types

import "github.com/zena-lang/zenac/internal/ast"

// collectDecls walks file's top-level declarations twice: once to reserve a
// placeholder registry entry per name (so forward and mutually-recursive
// references resolve), and once to populate each placeholder's shape and
// assemble vtables. FnDecl signatures go straight into GlobalScope, since
// free functions have no vtable to assemble.
func (c *Checker) collectDecls(file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.ClassDecl:
			c.Classes[d.Name.Name] = &Class{Name: d.Name.Name, Final: d.Final, Abstract: d.Abstract, IsExtension: d.Extension}
		case *ast.InterfaceDecl:
			c.Interfaces[d.Name.Name] = &Interface{Name: d.Name.Name}
		case *ast.MixinDecl:
			c.Mixins[d.Name.Name] = &Mixin{Name: d.Name.Name}
		case *ast.EnumDecl:
			c.Enums[d.Name.Name] = &Enum{Name: d.Name.Name}
		case *ast.TypeAliasDecl:
			c.Aliases[d.Name.Name] = &TypeAlias{Name: d.Name.Name, Distinct: d.Distinct}
		}
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.ClassDecl:
			c.collectClassShape(d)
		case *ast.InterfaceDecl:
			c.collectInterfaceShape(d)
		case *ast.MixinDecl:
			c.collectMixinShape(d)
		case *ast.EnumDecl:
			c.collectEnumShape(d)
		case *ast.TypeAliasDecl:
			c.Aliases[d.Name.Name].Underlying = c.resolveType(d.Type, c.GlobalScope)
		case *ast.FnDecl:
			c.collectFnSignature(d)
		}
	}
}

func (c *Checker) typeParamScope(params []ast.GenericParam) (*Scope, []*TypeParameter) {
	return c.typeParamScopeIn(c.GlobalScope, params)
}

func (c *Checker) typeParamScopeIn(parent *Scope, params []ast.GenericParam) (*Scope, []*TypeParameter) {
	scope := NewScope(parent)
	tps := make([]*TypeParameter, len(params))
	for i, p := range params {
		var constraint Type
		if p.Constraint != nil {
			constraint = c.resolveType(p.Constraint, scope)
		}
		tp := &TypeParameter{Name: p.Name.Name, Constraint: constraint}
		tps[i] = tp
		scope.Insert(tp.Name, &Symbol{Name: tp.Name, Type: tp})
	}
	return scope, tps
}

func (c *Checker) collectClassShape(d *ast.ClassDecl) {
	class := c.Classes[d.Name.Name]
	scope, tps := c.typeParamScope(d.TypeParams)
	class.TypeParams = tps

	if d.Super != nil {
		if super, ok := c.resolveType(d.Super, scope).(*Class); ok {
			class.Super = super
		}
	}

	if d.Extension && d.On != nil {
		class.OnType = c.resolveType(d.On, scope)
	}

	for _, m := range d.Mixins {
		if mixin, ok := c.resolveType(m, scope).(*Mixin); ok {
			class.Mixins = append(class.Mixins, mixin)
			class.Implements = append(class.Implements, mixin.Implements...)
		}
	}

	for _, i := range d.Implements {
		if iface, ok := c.resolveType(i, scope).(*Interface); ok {
			class.Implements = append(class.Implements, iface)
			c.Env.RegisterImpl(iface.Name, class)
			// An extension class's conformance belongs to the type it wraps:
			// register it under OnType too, so a bare Number/Array/etc. can
			// satisfy a generic constraint requiring this interface.
			if class.IsExtension && class.OnType != nil {
				c.Env.RegisterImpl(iface.Name, class.OnType)
			}
		}
	}

	for _, f := range d.Fields {
		class.Fields = append(class.Fields, Field{Name: f.Name.Name, Type: c.resolveType(f.Type, scope), Mut: f.Mut})
	}

	class.Methods = c.assembleVtable(class, d.Methods, scope)
}

// assembleVtable orders a class's effective method table: inherited slots
// from Super first (in their inherited order), then slots contributed by
// mixins in application order, then the class's own declared methods,
// with an override replacing its inherited slot in place rather than
// appending a new one.
func (c *Checker) assembleVtable(class *Class, declared []*ast.MethodDecl, scope *Scope) []Method {
	var table []Method
	seen := map[string]int{}

	appendOrOverride := func(m Method) {
		if idx, ok := seen[m.Name]; ok {
			table[idx] = m
			return
		}
		seen[m.Name] = len(table)
		table = append(table, m)
	}

	if class.Super != nil {
		for _, m := range class.Super.Methods {
			appendOrOverride(m)
		}
	}
	for _, mixin := range class.Mixins {
		for _, m := range mixin.Methods {
			appendOrOverride(m)
		}
	}
	for _, md := range declared {
		appendOrOverride(c.methodSignature(md, scope))
	}
	return table
}

func (c *Checker) methodSignature(md *ast.MethodDecl, scope *Scope) Method {
	if len(md.Fn.TypeParams) > 0 {
		scope, _ = c.typeParamScopeIn(scope, md.Fn.TypeParams)
	}
	params := make([]Type, len(md.Fn.Params))
	for i, p := range md.Fn.Params {
		params[i] = c.resolveType(p.Type, scope)
	}
	return Method{
		Name:     md.Fn.Name.Name,
		Params:   params,
		Return:   c.resolveType(md.Fn.ReturnType, scope),
		IsStatic: md.IsStatic,
		IsFinal:  md.IsFinal,
	}
}

func (c *Checker) collectInterfaceShape(d *ast.InterfaceDecl) {
	iface := c.Interfaces[d.Name.Name]
	scope, tps := c.typeParamScope(d.TypeParams)
	iface.TypeParams = tps

	for _, e := range d.Extends {
		if parent, ok := c.resolveType(e, scope).(*Interface); ok {
			iface.Extends = append(iface.Extends, parent)
			iface.Methods = append(iface.Methods, parent.Methods...)
			iface.Fields = append(iface.Fields, parent.Fields...)
		}
	}

	for _, f := range d.Fields {
		iface.Fields = append(iface.Fields, Field{Name: f.Name.Name, Type: c.resolveType(f.Type, scope), Mut: f.Mut})
	}
	for _, md := range d.Methods {
		iface.Methods = append(iface.Methods, c.methodSignature(md, scope))
	}
}

func (c *Checker) collectMixinShape(d *ast.MixinDecl) {
	mixin := c.Mixins[d.Name.Name]
	scope, tps := c.typeParamScope(d.TypeParams)
	mixin.TypeParams = tps

	if d.On != nil {
		mixin.On = c.resolveType(d.On, scope)
	}
	for _, i := range d.Implements {
		if iface, ok := c.resolveType(i, scope).(*Interface); ok {
			mixin.Implements = append(mixin.Implements, iface)
		}
	}
	for _, f := range d.Fields {
		mixin.Fields = append(mixin.Fields, Field{Name: f.Name.Name, Type: c.resolveType(f.Type, scope), Mut: f.Mut})
	}
	for _, md := range d.Methods {
		mixin.Methods = append(mixin.Methods, c.methodSignature(md, scope))
	}
}

func (c *Checker) collectEnumShape(d *ast.EnumDecl) {
	enum := c.Enums[d.Name.Name]
	scope, tps := c.typeParamScope(d.TypeParams)
	enum.TypeParams = tps

	for _, v := range d.Variants {
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Field{Name: f.Name.Name, Type: c.resolveType(f.Type, scope), Mut: f.Mut}
		}
		enum.Variants = append(enum.Variants, EnumVariant{Name: v.Name.Name, Fields: fields})
	}
	for _, md := range d.Methods {
		enum.Methods = append(enum.Methods, c.methodSignature(md, scope))
	}
}

func (c *Checker) collectFnSignature(d *ast.FnDecl) {
	scope, _ := c.typeParamScope(d.TypeParams)
	params := make([]Type, len(d.Params))
	for i, p := range d.Params {
		params[i] = c.resolveType(p.Type, scope)
	}
	fnType := &Function{Params: params, Return: c.resolveType(d.ReturnType, scope)}
	c.GlobalScope.Insert(d.Name.Name, &Symbol{Name: d.Name.Name, Type: fnType, DefNode: d})
}
