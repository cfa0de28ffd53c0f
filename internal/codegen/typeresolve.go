package codegen

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/types"
)

// resolveParamType and resolveReturnType turn a parsed ast.TypeExpr into a
// semantic Type using the checker's already-populated registries. The
// checker's own resolveType is unexported, so codegen keeps a minimal
// mirror of it here; type parameters resolve to a boxed marker since
// codegen never needs their constraint, only that mapType treats them as
// AnyRef.
func (g *Generator) resolveParamType(p *ast.Param) types.Type {
	return g.resolveTypeExpr(p.Type)
}

func (g *Generator) resolveReturnType(t ast.TypeExpr) types.Type {
	if t == nil {
		return types.Void
	}
	return g.resolveTypeExpr(t)
}

func (g *Generator) resolveTypeExpr(t ast.TypeExpr) types.Type {
	if t == nil {
		return types.Void
	}
	switch t := t.(type) {
	case *ast.NamedType:
		return g.resolveNamedType(t.Name.Name)
	case *ast.GenericTypeExpr:
		base := g.resolveNamedType(t.Base.Name.Name)
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = g.resolveTypeExpr(a)
		}
		if class, ok := base.(*types.Class); ok {
			return g.checker.Interner.Instantiate(class, args)
		}
		return base
	case *ast.ArrayTypeExpr:
		return &types.Array{Elem: g.resolveTypeExpr(t.Elem)}
	case *ast.TupleType:
		elems := make([]types.Type, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = g.resolveTypeExpr(e)
		}
		return &types.Tuple{Elements: elems, Unboxed: t.Unboxed}
	case *ast.RecordType:
		fields := make([]types.RecordField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = types.RecordField{Name: f.Name.Name, Type: g.resolveTypeExpr(f.Type)}
		}
		return &types.Record{Fields: fields}
	case *ast.FunctionType:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = g.resolveTypeExpr(p)
		}
		return &types.Function{Params: params, Return: g.resolveTypeExpr(t.ReturnType)}
	case *ast.UnionTypeExpr:
		members := make([]types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = g.resolveTypeExpr(m)
		}
		return &types.Union{Members: members}
	default:
		g.internalError("unhandled type expression in codegen", t)
		return types.Unknown
	}
}

func (g *Generator) resolveNamedType(name string) types.Type {
	switch name {
	case "Number":
		return types.Number
	case "Boolean":
		return types.Boolean
	case "Void":
		return types.Void
	case "Null":
		return types.Null
	case "Never":
		return types.Never
	case "Any":
		return types.Any
	case "AnyRef":
		return types.AnyRef
	case "Unknown":
		return types.Unknown
	case "ByteArray":
		return types.ByteArr
	case "This":
		return types.This
	}
	if class, ok := g.checker.Classes[name]; ok {
		return class
	}
	if iface, ok := g.checker.Interfaces[name]; ok {
		return iface
	}
	if mixin, ok := g.checker.Mixins[name]; ok {
		return mixin
	}
	if enum, ok := g.checker.Enums[name]; ok {
		return enum
	}
	if alias, ok := g.checker.Aliases[name]; ok {
		return alias
	}
	if sym := g.checker.GlobalScope.Lookup(name); sym != nil {
		if tp, ok := sym.Type.(*types.TypeParameter); ok {
			return tp
		}
	}
	return types.Unknown
}
