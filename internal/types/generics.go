package types

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Substitute replaces type-parameter references in t with their bindings
// from subst, returning t unchanged (same value, not a copy) when nothing
// under it was affected.
func Substitute(t Type, subst map[string]Type) Type {
	if t == nil {
		return nil
	}

	switch t := t.(type) {
	case *TypeParameter:
		if replacement, ok := subst[t.Name]; ok {
			return replacement
		}
		return t
	case *Array:
		newElem := Substitute(t.Elem, subst)
		if newElem == t.Elem {
			return t
		}
		return &Array{Elem: newElem}
	case *Tuple:
		newElems, changed := substituteAll(t.Elements, subst)
		if !changed {
			return t
		}
		return &Tuple{Elements: newElems, Unboxed: t.Unboxed}
	case *Record:
		changed := false
		newFields := make([]RecordField, len(t.Fields))
		for i, f := range t.Fields {
			nf := Substitute(f.Type, subst)
			if nf != f.Type {
				changed = true
			}
			newFields[i] = RecordField{Name: f.Name, Type: nf}
		}
		if !changed {
			return t
		}
		return &Record{Fields: newFields}
	case *Union:
		newMembers, changed := substituteAll(t.Members, subst)
		if !changed {
			return t
		}
		return &Union{Members: newMembers}
	case *Function:
		newParams, changed := substituteAll(t.Params, subst)
		newReturn := Substitute(t.Return, subst)
		if newReturn != t.Return {
			changed = true
		}
		if !changed {
			return t
		}
		return &Function{Params: newParams, Return: newReturn}
	case *Class:
		if len(t.TypeArgs) == 0 {
			return t
		}
		newArgs, changed := substituteAll(t.TypeArgs, subst)
		if !changed {
			return t
		}
		source := t.GenericSource
		if source == nil {
			source = t
		}
		return Instantiate(source, newArgs)
	default:
		return t
	}
}

func substituteAll(ts []Type, subst map[string]Type) ([]Type, bool) {
	out := make([]Type, len(ts))
	changed := false
	for i, t := range ts {
		nt := Substitute(t, subst)
		if nt != t {
			changed = true
		}
		out[i] = nt
	}
	return out, changed
}

// Unify attempts to find a substitution that makes t1 and t2 structurally
// equal, binding any free type parameters encountered along the way.
func Unify(t1, t2 Type) (map[string]Type, error) {
	subst := make(map[string]Type)
	err := unify(t1, t2, subst)
	return subst, err
}

func unify(t1, t2 Type, subst map[string]Type) error {
	t1 = Substitute(t1, subst)
	t2 = Substitute(t2, subst)

	if t1 == t2 {
		return nil
	}

	if p, ok := t1.(*TypeParameter); ok {
		subst[p.Name] = t2
		return nil
	}
	if p, ok := t2.(*TypeParameter); ok {
		subst[p.Name] = t1
		return nil
	}

	switch a := t1.(type) {
	case *Array:
		if b, ok := t2.(*Array); ok {
			return unify(a.Elem, b.Elem, subst)
		}
	case *Tuple:
		if b, ok := t2.(*Tuple); ok && len(a.Elements) == len(b.Elements) {
			for i := range a.Elements {
				if err := unify(a.Elements[i], b.Elements[i], subst); err != nil {
					return err
				}
			}
			return nil
		}
	case *Function:
		if b, ok := t2.(*Function); ok && len(a.Params) == len(b.Params) {
			for i := range a.Params {
				if err := unify(a.Params[i], b.Params[i], subst); err != nil {
					return err
				}
			}
			return unify(a.Return, b.Return, subst)
		}
	case *Class:
		if b, ok := t2.(*Class); ok && a.GenericSource == b.GenericSource && len(a.TypeArgs) == len(b.TypeArgs) {
			for i := range a.TypeArgs {
				if err := unify(a.TypeArgs[i], b.TypeArgs[i], subst); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

// Interner caches generic class instantiations keyed by the pair
// (generic source class, canonical type-argument tuple), so that two
// requests for the same instantiation (e.g. `List<Number>` referenced from
// two call sites) return the identical *Class value. The cache grows
// monotonically and entries are never evicted, matching the determinism
// requirement that repeated compilation of the same source produce
// byte-identical output.
type Interner struct {
	instances map[uint64][]*Class
}

func NewInterner() *Interner {
	return &Interner{instances: make(map[uint64][]*Class)}
}

func internKey(source *Class, args []Type) uint64 {
	var b strings.Builder
	b.WriteString(source.Name)
	b.WriteByte(0)
	for _, a := range args {
		b.WriteString(a.String())
		b.WriteByte(0)
	}
	return xxhash.Sum64String(b.String())
}

// Instantiate returns the interned *Class for (source, args), building and
// caching one via Substitute on first request.
//
// Per spec.md §4.1 rule 1, if args is exactly source's own type-parameter
// list (the shape a generic class's own body uses to refer to itself, e.g.
// `next: Node<T>` inside `class Node<T>`), this is not a distinct
// instantiation at all: it denotes the generic definition itself, still
// being declared. Returning source unchanged, rather than building a
// substituted clone, is what lets that clone-avoidance matter: a clone
// built here would snapshot source's Fields/Methods as they stand at this
// point in declaration, which — for a field referring to the class it's
// declared on — is necessarily incomplete (the field triggering this call
// hasn't been appended to source.Fields yet). Aliasing source itself means
// the self-reference automatically sees the fully-populated declaration
// once collectClassShape finishes.
func (in *Interner) Instantiate(source *Class, args []Type) *Class {
	if identityArgs(source, args) {
		return source
	}

	key := internKey(source, args)
	for _, candidate := range in.instances[key] {
		if sameTypeArgs(candidate.TypeArgs, args) {
			return candidate
		}
	}

	// The instance is cached *before* its fields/methods are substituted
	// ("interning breaks recursion", spec.md §9): a generic class whose
	// substituted body recurses back into Instantiate for this same
	// (source, args) pair must find this same *Class already in the cache,
	// not build a second, divergent one or loop forever.
	inst := &Class{
		Name:          source.Name + "<" + joinTypeArgs(args) + ">",
		Super:         source.Super,
		Mixins:        source.Mixins,
		Implements:    source.Implements,
		Final:         source.Final,
		Abstract:      source.Abstract,
		GenericSource: source,
		TypeArgs:      args,
	}
	in.instances[key] = append(in.instances[key], inst)
	populateInstance(inst, source, args)
	return inst
}

// identityArgs reports whether args is exactly source's own TypeParams, in
// order and by identity.
func identityArgs(source *Class, args []Type) bool {
	if len(args) != len(source.TypeParams) {
		return false
	}
	for i, tp := range source.TypeParams {
		a, ok := args[i].(*TypeParameter)
		if !ok || a != tp {
			return false
		}
	}
	return true
}

func sameTypeArgs(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}

// globalInterner backs the package-level Instantiate convenience function
// used where a dedicated checker-scoped Interner is not threaded through.
var globalInterner = NewInterner()

// Instantiate instantiates a generic class against concrete type arguments
// using the package-level interning cache.
func Instantiate(source *Class, args []Type) *Class {
	return globalInterner.Instantiate(source, args)
}

// populateInstance fills inst's Fields/Methods by substituting source's
// against args, mutating inst in place. inst is already reachable from the
// interning cache by the time this runs, so a self-referential substitution
// that calls back into Instantiate for (source, args) finds inst itself
// instead of recursing unboundedly.
func populateInstance(inst, source *Class, args []Type) {
	subst := make(map[string]Type, len(source.TypeParams))
	for i, tp := range source.TypeParams {
		if i < len(args) {
			subst[tp.Name] = args[i]
		}
	}

	inst.Fields = make([]Field, len(source.Fields))
	for i, f := range source.Fields {
		inst.Fields[i] = Field{Name: f.Name, Type: Substitute(f.Type, subst), Mut: f.Mut}
	}

	inst.Methods = make([]Method, len(source.Methods))
	for i, m := range source.Methods {
		params := make([]Type, len(m.Params))
		for j, p := range m.Params {
			params[j] = Substitute(p, subst)
		}
		inst.Methods[i] = Method{
			Name:     m.Name,
			Params:   params,
			Return:   Substitute(m.Return, subst),
			IsStatic: m.IsStatic,
			IsFinal:  m.IsFinal,
		}
	}
}

func joinTypeArgs(args []Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
