package types

// AssignableTo implements the assignability cascade: is a value of type src
// usable where dst is expected. Rules are checked in order and the first
// match wins; this ordering matters because some rules (Any/AnyRef/Unknown)
// would otherwise shadow more specific structural checks.
func AssignableTo(src, dst Type) bool {
	if src == nil || dst == nil {
		return false
	}

	// 1. Identity: the same type value is always assignable to itself.
	if src == dst {
		return true
	}

	// 2. Unknown never flows implicitly in either direction.
	if src == Unknown || dst == Unknown {
		return false
	}

	// 3. Any accepts anything. A value typed Any is not assignable to a
	// narrower type by this rule; only the rules below can admit it.
	if dst == Any {
		return true
	}

	// 4. AnyRef accepts any reference type (everything except Number/
	// Boolean/Void, which are unboxed).
	if dst == AnyRef && src != Number && src != Boolean && src != Void {
		return true
	}

	// 5. Never is assignable to anything (a divergent expression can stand
	// in for any expected type).
	if src == Never {
		return true
	}

	// 6. Null is assignable to any nominal reference type; there is no
	// distinct nullable wrapper, matching the source language's null
	// semantics.
	if src == Null && isReferenceType(dst) {
		return true
	}

	// 7. A literal type widens to its underlying primitive.
	if lit, ok := src.(*Literal); ok {
		return AssignableTo(widenLiteral(lit), dst)
	}

	// 8. Distinct type aliases are assignable only to themselves or their
	// own underlying type chain stops at the distinct boundary.
	if alias, ok := dst.(*TypeAlias); ok {
		if alias.Distinct {
			return src == dst
		}
		return AssignableTo(src, alias.Underlying)
	}
	if alias, ok := src.(*TypeAlias); ok {
		if alias.Distinct {
			return false
		}
		return AssignableTo(alias.Underlying, dst)
	}

	// 9. A type parameter is assignable to its own constraint (upper
	// bound), and a concrete type is assignable to a type parameter only
	// when they are the identical parameter.
	if tp, ok := src.(*TypeParameter); ok {
		if tp.Constraint != nil {
			return AssignableTo(tp.Constraint, dst)
		}
		return false
	}

	// 10. Arrays are covariant in their element type. An array also flows
	// into an extension class declared `on` an array type, covariant in the
	// element type, so array literals can be passed where such an extension
	// is expected.
	if a, ok := src.(*Array); ok {
		if b, ok := dst.(*Array); ok {
			return AssignableTo(a.Elem, b.Elem)
		}
		if dstClass, ok := dst.(*Class); ok && dstClass.IsExtension {
			if onArr, ok := dstClass.OnType.(*Array); ok {
				return AssignableTo(a.Elem, onArr.Elem)
			}
		}
		return false
	}

	// 11. Tuples are assignable element-wise, same arity and boxing.
	if a, ok := src.(*Tuple); ok {
		b, ok := dst.(*Tuple)
		if !ok || a.Unboxed != b.Unboxed || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !AssignableTo(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	}

	// 12. Records are structurally assignable: dst's fields must all be
	// present in src with assignable types (width subtyping).
	if a, ok := src.(*Record); ok {
		b, ok := dst.(*Record)
		if !ok {
			return false
		}
		for _, df := range b.Fields {
			found := false
			for _, sf := range a.Fields {
				if sf.Name == df.Name && AssignableTo(sf.Type, df.Type) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	// 13. A union is assignable to dst if every member is assignable to dst.
	if u, ok := src.(*Union); ok {
		for _, m := range u.Members {
			if !AssignableTo(m, dst) {
				return false
			}
		}
		return true
	}

	// 14. Any type is assignable to a union if it is assignable to at
	// least one member.
	if u, ok := dst.(*Union); ok {
		for _, m := range u.Members {
			if AssignableTo(src, m) {
				return true
			}
		}
		return false
	}

	// 15. Functions are assignable contravariantly in parameters and
	// covariantly in return type; a function accepting fewer parameters may
	// also satisfy a wider arity via an adapter closure built by codegen.
	if a, ok := src.(*Function); ok {
		b, ok := dst.(*Function)
		if !ok || len(a.Params) > len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !AssignableTo(b.Params[i], a.Params[i]) {
				return false
			}
		}
		return AssignableTo(a.Return, b.Return)
	}

	// 16. A class is assignable to an interface if it (directly or via a
	// mixin) is registered as implementing it, or extends one that does. An
	// extension class additionally forwards to its underlying type: it is
	// assignable wherever the wrapped type would be, and the wrapped type's
	// own conformance doesn't grant the extension's.
	if class, ok := src.(*Class); ok {
		if iface, ok := dst.(*Interface); ok {
			if classImplements(class, iface) {
				return true
			}
			return class.IsExtension && class.OnType != nil && AssignableTo(class.OnType, dst)
		}
		if dstClass, ok := dst.(*Class); ok {
			if classExtends(class, dstClass) {
				return true
			}
			return class.IsExtension && class.OnType != nil && AssignableTo(class.OnType, dst)
		}
		if dstRecord, ok := dst.(*Record); ok {
			if classHasRecordFields(class, dstRecord) {
				return true
			}
			return class.IsExtension && class.OnType != nil && AssignableTo(class.OnType, dst)
		}
		if class.IsExtension && class.OnType != nil {
			return AssignableTo(class.OnType, dst)
		}
		return false
	}

	// 17. An interface is assignable to another interface it extends
	// (directly or transitively).
	if a, ok := src.(*Interface); ok {
		if b, ok := dst.(*Interface); ok {
			return interfaceExtends(a, b)
		}
		return false
	}

	// 18. A primitive or other non-Class value still flows into an
	// extension class declared `on` a type it's assignable to, since
	// extension classes add methods to existing values without wrapping
	// them in new storage.
	if dstClass, ok := dst.(*Class); ok && dstClass.IsExtension && dstClass.OnType != nil {
		return AssignableTo(src, dstClass.OnType)
	}

	// 19. Everything else: only identical singleton kinds are assignable,
	// already covered by the identity check at the top.
	return false
}

// assignable is AssignableTo widened with the checker's dynamic
// interface-conformance registry, so a primitive, array, or other
// non-Class value that satisfies an interface only through a global
// extension class (rather than a nominal Class.Implements entry) is still
// accepted. Call sites that check a value against an expected type should
// use this instead of the bare AssignableTo; AssignableTo itself stays a
// pure function so its internal recursive calls don't need a Checker.
func (c *Checker) assignable(src, dst Type) bool {
	if AssignableTo(src, dst) {
		return true
	}
	if iface, ok := dst.(*Interface); ok {
		return c.Env.HasImpl(iface.Name, src)
	}
	return false
}

func isReferenceType(t Type) bool {
	switch t {
	case Number, Boolean, Void:
		return false
	default:
		return true
	}
}

func widenLiteral(lit *Literal) Type {
	switch lit.Kind {
	case "number":
		return Number
	case "boolean":
		return Boolean
	default:
		return AnyRef
	}
}

func classExtends(class, target *Class) bool {
	for c := class; c != nil; c = c.Super {
		if c == target || c.GenericSource == target {
			return true
		}
	}
	return false
}

// classHasRecordFields implements width subtyping of a class against a
// record shape (spec.md §4.2 rule 13): class satisfies record if, walking
// its super chain the same way classExtends/classImplements do, every field
// record names is present with an assignable type somewhere on that chain.
func classHasRecordFields(class *Class, record *Record) bool {
	for _, rf := range record.Fields {
		found := false
		for c := class; c != nil && !found; c = c.Super {
			for _, cf := range c.Fields {
				if cf.Name == rf.Name && AssignableTo(cf.Type, rf.Type) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func classImplements(class *Class, iface *Interface) bool {
	for c := class; c != nil; c = c.Super {
		for _, i := range c.Implements {
			if interfaceExtends(i, iface) {
				return true
			}
		}
	}
	return false
}

func interfaceExtends(a, b *Interface) bool {
	if a == b {
		return true
	}
	for _, parent := range a.Extends {
		if interfaceExtends(parent, b) {
			return true
		}
	}
	return false
}
