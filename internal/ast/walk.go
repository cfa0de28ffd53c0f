package ast

// Walk traverses the AST starting from node, calling fn for each node. If fn
// returns false, Walk stops descending into that node's children.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		if n.Package != nil {
			Walk(n.Package, fn)
		}
		for _, mod := range n.Mods {
			Walk(mod, fn)
		}
		for _, use := range n.Uses {
			Walk(use, fn)
		}
		for _, decl := range n.Decls {
			Walk(decl, fn)
		}

	case *PackageDecl:
		Walk(n.Name, fn)

	case *ModDecl:
		Walk(n.Name, fn)

	case *UseDecl:
		for _, ident := range n.Path {
			Walk(ident, fn)
		}
		if n.Alias != nil {
			Walk(n.Alias, fn)
		}

	case *FnDecl:
		Walk(n.Name, fn)
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *Param:
		Walk(n.Name, fn)
		if n.Type != nil {
			Walk(n.Type, fn)
		}

	case *ClassField:
		Walk(n.Name, fn)
		if n.Type != nil {
			Walk(n.Type, fn)
		}

	case *ClassDecl:
		Walk(n.Name, fn)
		if n.Super != nil {
			Walk(n.Super, fn)
		}
		for _, m := range n.Mixins {
			Walk(m, fn)
		}
		for _, i := range n.Implements {
			Walk(i, fn)
		}
		for _, f := range n.Fields {
			Walk(f, fn)
		}
		if n.Constructor != nil {
			Walk(n.Constructor.Fn, fn)
		}
		for _, m := range n.Methods {
			Walk(m.Fn, fn)
		}

	case *InterfaceDecl:
		Walk(n.Name, fn)
		for _, e := range n.Extends {
			Walk(e, fn)
		}
		for _, f := range n.Fields {
			Walk(f, fn)
		}
		for _, m := range n.Methods {
			Walk(m.Fn, fn)
		}

	case *MixinDecl:
		Walk(n.Name, fn)
		if n.On != nil {
			Walk(n.On, fn)
		}
		for _, i := range n.Implements {
			Walk(i, fn)
		}
		for _, f := range n.Fields {
			Walk(f, fn)
		}
		for _, m := range n.Methods {
			Walk(m.Fn, fn)
		}

	case *EnumDecl:
		Walk(n.Name, fn)
		for _, v := range n.Variants {
			Walk(v, fn)
		}
		for _, m := range n.Methods {
			Walk(m.Fn, fn)
		}

	case *EnumVariant:
		Walk(n.Name, fn)
		for _, f := range n.Fields {
			Walk(f, fn)
		}

	case *TypeAliasDecl:
		Walk(n.Name, fn)
		Walk(n.Type, fn)

	case *BlockExpr:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *LetStmt:
		Walk(n.Name, fn)
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *ExprStmt:
		Walk(n.X, fn)

	case *ReturnStmt:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *WhileStmt:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)

	case *ForStmt:
		Walk(n.Binding, fn)
		Walk(n.Iterable, fn)
		Walk(n.Body, fn)

	case *ThrowStmt:
		Walk(n.Value, fn)

	case *CatchClause:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		Walk(n.Body, fn)

	case *TryStmt:
		Walk(n.Body, fn)
		if n.Catch != nil {
			Walk(n.Catch, fn)
		}

	case *IfExpr:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		if n.Else != nil {
			Walk(n.Else, fn)
		}

	case *MatchExpr:
		Walk(n.Subject, fn)
		for _, a := range n.Arms {
			Walk(a, fn)
		}

	case *MatchArm:
		if n.Guard != nil {
			Walk(n.Guard, fn)
		}
		Walk(n.Body, fn)

	case *PrefixExpr:
		Walk(n.Right, fn)

	case *InfixExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *AssignExpr:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *CallExpr:
		Walk(n.Callee, fn)
		for _, a := range n.TypeArgs {
			Walk(a, fn)
		}
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *FieldExpr:
		Walk(n.Target, fn)
		Walk(n.Name, fn)

	case *IndexExpr:
		Walk(n.Target, fn)
		Walk(n.Index, fn)

	case *FunctionLiteral:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		Walk(n.Body, fn)

	case *NewExpr:
		Walk(n.Type, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *RangeExpr:
		Walk(n.Start, fn)
		Walk(n.End, fn)

	case *ArrayLiteral:
		for _, e := range n.Elements {
			Walk(e, fn)
		}

	case *FixedArrayLiteral:
		for _, e := range n.Elements {
			Walk(e, fn)
		}

	case *TupleLiteral:
		for _, e := range n.Elements {
			Walk(e, fn)
		}

	case *RecordLiteral:
		for _, f := range n.Fields {
			Walk(f.Value, fn)
		}

	case *NamedType:
		Walk(n.Name, fn)

	case *GenericTypeExpr:
		Walk(n.Base, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *FunctionType:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.ReturnType, fn)

	case *TupleType:
		for _, e := range n.Elements {
			Walk(e, fn)
		}

	case *RecordType:
		for _, f := range n.Fields {
			Walk(f.Type, fn)
		}

	case *ArrayTypeExpr:
		Walk(n.Elem, fn)

	case *UnionTypeExpr:
		for _, m := range n.Members {
			Walk(m, fn)
		}
	}
}
