package codegen

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/types"
	"github.com/zena-lang/zenac/internal/wasmgc"
)

// flattenFields returns class's full field list: every ancestor's own
// fields, outermost superclass first, followed by class's own fields. The
// checker only records a class's own declared fields on Class.Fields
// (unlike Methods, which assembleVtable already flattens), so codegen does
// this walk itself; the order matches what WasmGC requires of a struct
// subtype (fields may only ever be appended, never reordered).
func flattenFields(class *types.Class) []types.Field {
	if class.Super == nil {
		return append([]types.Field(nil), class.Fields...)
	}
	return append(flattenFields(class.Super), class.Fields...)
}

// fieldSlot locates a field's struct.get/struct.set index within class's
// instance struct. Index 0 of every class struct is the hidden vtable
// pointer (see buildTypes), so a declared field's slot is its position
// within the flattened field list, offset by one.
func fieldSlot(class *types.Class, name string) int {
	fields := flattenFields(class)
	for i, f := range fields {
		if f.Name == name {
			return i + 1
		}
	}
	return -1
}

// vtableFieldIdx is the struct.get/struct.set index of the vtable pointer
// every class instance carries as its first field, set once at allocation
// time (see NewExpr lowering) and never reassigned afterward. Storing it in
// the instance, rather than reading it off the static type at a call site,
// is what makes overriding dispatch reach the instance's actual runtime
// class: a subclass's struct is a WasmGC struct-subtype of its
// superclass's, and covariant immutable fields let the subclass narrow
// this field's declared type to its own (narrower) vtable type.
const vtableFieldIdx = 0

// methodFuncSigIdx returns the type-section index of the function signature
// used for a vtable dispatch slot (a free-standing wrapper, not this
// specific class's own internal implementation): an anyref receiver
// followed by the method's parameter types, so every class's slot for the
// same method shares the identical function reference type regardless of
// which class actually implements it. Each concrete method body ref.casts
// its receiver back to its own class before use.
func (g *Generator) methodFuncSigIdx(params []types.Type, ret types.Type) uint32 {
	key := "slot("
	for _, p := range params {
		key += p.String() + ","
	}
	key += ")->"
	if ret != nil {
		key += ret.String()
	}
	if idx, ok := g.funcValType[key]; ok {
		return idx
	}
	valParams := make([]wasmgc.ValType, len(params)+1)
	valParams[0] = wasmgc.AnyRefNull
	for i, p := range params {
		valParams[i+1] = g.mapType(p)
	}
	idx := g.b.Types.Add(wasmgc.NewFuncType(valParams, g.resultValTypes(ret)))
	g.funcValType[key] = idx
	return idx
}

// buildTypes reserves and fills every struct/vtable/fat-pointer type the
// module needs. Reservation happens up front so mutually-referencing
// classes (a field of type B inside class A, where B's own fields reference
// A) resolve regardless of declaration order; all of it lives in the same
// `rec` type group, so the binary encoding doesn't care which index is
// filled first.
func (g *Generator) buildTypes() {
	g.byteArrayType = g.b.Types.Add(wasmgc.NewArrayType(wasmgc.FieldType{Type: wasmgc.I32, Mutable: true}, true))

	for _, c := range g.classes {
		// Extension classes add method syntax to an existing value (see
		// OnType); they never own storage or a vtable of their own, so no
		// struct/vtable type is allocated for them at all.
		if c.IsExtension {
			continue
		}
		g.classTypeIdx[c] = g.b.Types.Reserve()
		g.classVtableType[c] = g.b.Types.Reserve()
	}
	for _, i := range g.interfaces {
		g.ifaceVtableType[i] = g.b.Types.Reserve()
		g.ifaceFatPtrType[i] = g.b.Types.Reserve()
	}

	hasSubclass := make(map[*types.Class]bool)
	for _, c := range g.classes {
		if c.Super != nil {
			hasSubclass[c.Super] = true
		}
	}

	for _, c := range g.classes {
		if c.IsExtension {
			continue
		}
		// Field 0 is the hidden vtable pointer (see vtableFieldIdx); every
		// other field is Wasm-mutable regardless of the source-level `mut`
		// flag, since immutability is enforced by the checker rather than
		// the runtime representation, so constructor bodies can assign any
		// field with struct.set after lowerNewExpr's struct.new.
		fields := make([]wasmgc.FieldType, 0, len(flattenFields(c))+1)
		fields = append(fields, wasmgc.FieldType{Type: wasmgc.Ref(g.classVtableType[c]), Mutable: false})
		for _, f := range flattenFields(c) {
			fields = append(fields, wasmgc.FieldType{Type: g.mapType(f.Type), Mutable: true})
		}
		super := int32(-1)
		if c.Super != nil {
			super = int32(g.classTypeIdx[c.Super])
		}
		g.b.Types.Fill(g.classTypeIdx[c], wasmgc.NewStructType(fields, super, !hasSubclass[c]))

		layout := wasmgc.VtableLayout{ClassName: c.Name, Methods: make([]wasmgc.VtableMethod, len(c.Methods))}
		for i, m := range c.Methods {
			layout.Methods[i] = wasmgc.VtableMethod{Name: m.Name, FuncSig: g.methodFuncSigIdx(m.Params, m.Return)}
		}
		g.classVtableLayout[c] = layout

		vtableFields := make([]wasmgc.FieldType, len(layout.Methods))
		for i, m := range layout.Methods {
			vtableFields[i] = wasmgc.FieldType{Type: wasmgc.Ref(m.FuncSig), Mutable: false}
		}
		vsuper := int32(-1)
		if c.Super != nil {
			vsuper = int32(g.classVtableType[c.Super])
		}
		g.b.Types.Fill(g.classVtableType[c], wasmgc.NewStructType(vtableFields, vsuper, !hasSubclass[c]))
	}

	for _, i := range g.interfaces {
		layout := wasmgc.VtableLayout{ClassName: i.Name, Methods: make([]wasmgc.VtableMethod, len(i.Methods))}
		for j, m := range i.Methods {
			layout.Methods[j] = wasmgc.VtableMethod{Name: m.Name, FuncSig: g.methodFuncSigIdx(m.Params, m.Return)}
		}
		g.ifaceLayout[i] = layout

		vtableFields := make([]wasmgc.FieldType, len(layout.Methods))
		for j, m := range layout.Methods {
			vtableFields[j] = wasmgc.FieldType{Type: wasmgc.Ref(m.FuncSig), Mutable: false}
		}
		g.b.Types.Fill(g.ifaceVtableType[i], wasmgc.NewStructType(vtableFields, -1, true))
		g.b.Types.Fill(g.ifaceFatPtrType[i], wasmgc.NewStructType(wasmgc.FatPointerFields(g.ifaceVtableType[i]), -1, true))
	}
}

// declareExceptionTag registers zena's single module-wide exception
// channel: every thrown value is boxed to anyref, so one tag (taking one
// anyref parameter, no results) carries any throw site's payload.
func (g *Generator) declareExceptionTag() {
	sigIdx := g.b.Types.Add(wasmgc.NewFuncType([]wasmgc.ValType{wasmgc.AnyRefNull}, nil))
	g.exceptionTag = g.b.AddTag(sigIdx)
}

// classDeclOf finds the ast.ClassDecl a declared *types.Class was built
// from, by name, within the file's top-level declarations.
func (g *Generator) classDeclOf(c *types.Class) *ast.ClassDecl {
	for _, decl := range g.file.Decls {
		if cd, ok := decl.(*ast.ClassDecl); ok && cd.Name.Name == c.Name {
			return cd
		}
	}
	return nil
}

// reserveFuncs allocates a function index for every free function,
// constructor, and own-declared method in the program before any body is
// lowered, so forward references (a method calling one declared later, a
// vtable global naming a method not yet lowered) resolve.
func (g *Generator) reserveFuncs() {
	for _, decl := range g.file.Decls {
		fn, ok := decl.(*ast.FnDecl)
		if !ok {
			continue
		}
		params := make([]wasmgc.ValType, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = g.mapType(g.resolveParamType(p))
		}
		sig := g.b.Types.Add(wasmgc.NewFuncType(params, g.resultValTypes(g.resolveReturnType(fn.ReturnType))))
		g.freeFuncIdx[fn] = g.b.ReserveFunc(fn.Name.Name, sig)
	}

	for _, c := range g.classes {
		cd := g.classDeclOf(c)
		if cd == nil {
			continue // instantiated-only generic source with no direct decl cannot happen; declared classes always have one
		}
		g.reserveClassFuncs(c, cd)
	}
}

func (g *Generator) reserveClassFuncs(c *types.Class, cd *ast.ClassDecl) {
	if c.IsExtension {
		g.reserveExtensionFuncs(c, cd)
		return
	}

	selfParams := make([]wasmgc.ValType, 1)
	selfParams[0] = wasmgc.Ref(g.classTypeIdx[c])
	if cd.Constructor != nil {
		for _, p := range cd.Constructor.Fn.Params {
			selfParams = append(selfParams, g.mapType(g.resolveParamType(p)))
		}
	}
	ctorSig := g.b.Types.Add(wasmgc.NewFuncType(selfParams, nil))
	g.classCtorFunc[c] = g.b.ReserveFunc(c.Name+"#new", ctorSig)

	g.classMethodFunc[c] = make(map[string]uint32)
	for _, m := range cd.Methods {
		if m.IsAbstract {
			continue
		}
		params := make([]wasmgc.ValType, 1, len(m.Fn.Params)+1)
		params[0] = wasmgc.AnyRefNull
		for _, p := range m.Fn.Params {
			params = append(params, g.mapType(g.resolveParamType(p)))
		}
		sig := g.b.Types.Add(wasmgc.NewFuncType(params, g.resultValTypes(g.resolveReturnType(m.Fn.ReturnType))))
		idx := g.b.ReserveFunc(c.Name+"#"+m.Fn.Name.Name, sig)
		g.classMethodFunc[c][m.Fn.Name.Name] = idx
	}
}

// reserveExtensionFuncs reserves method functions for an extension class.
// There is no constructor function and no vtable slot: the receiver is the
// underlying value itself (OnType, not a struct ref), every call is resolved
// statically at the call site against this exact function index, and
// `super(v)` in the (never-reserved) constructor position just means the
// extension's "this" is v.
func (g *Generator) reserveExtensionFuncs(c *types.Class, cd *ast.ClassDecl) {
	g.classMethodFunc[c] = make(map[string]uint32)
	self := g.mapType(c.OnType)
	for _, m := range cd.Methods {
		if m.IsAbstract {
			continue
		}
		params := make([]wasmgc.ValType, 1, len(m.Fn.Params)+1)
		params[0] = self
		for _, p := range m.Fn.Params {
			params = append(params, g.mapType(g.resolveParamType(p)))
		}
		sig := g.b.Types.Add(wasmgc.NewFuncType(params, g.resultValTypes(g.resolveReturnType(m.Fn.ReturnType))))
		idx := g.b.ReserveFunc(c.Name+"#"+m.Fn.Name.Name, sig)
		g.classMethodFunc[c][m.Fn.Name.Name] = idx
	}
}

// buildVtableGlobals builds, for each class, the module-level global holding
// its one shared vtable instance, with each slot's field set by ref.func to
// the func index that implements it: the class's own declaration if it
// declares or overrides that method, or its nearest ancestor's
// implementation otherwise.
func (g *Generator) buildVtableGlobals() {
	for _, c := range g.classes {
		if c.IsExtension {
			continue
		}
		layout := g.classVtableLayout[c]
		code := wasmgc.NewCode()
		for _, m := range layout.Methods {
			code.RefFunc(g.resolveMethodImpl(c, m.Name))
		}
		code.StructNew(g.classVtableType[c])
		g.classVtableGlobal[c] = g.b.AddGlobal(wasmgc.Global{
			Type: wasmgc.Ref(g.classVtableType[c]), Mutable: false, Init: code,
		})
	}

	g.buildInterfaceVtableInstances()
}

// resolveMethodImpl finds the function index that implements name for
// class, walking up the superclass chain when class itself doesn't declare
// or override it.
func (g *Generator) resolveMethodImpl(class *types.Class, name string) uint32 {
	for c := class; c != nil; c = c.Super {
		if idx, ok := g.classMethodFunc[c][name]; ok {
			return idx
		}
	}
	g.internalError("no implementation found for method `"+name+"` on class `"+class.Name+"`", nil)
	return 0
}

// buildInterfaceVtableInstances builds, for every (class, interface) pair a
// class in the program actually implements, the module-level global holding
// that class's vtable-for-interface instance: every slot is ref.func'd
// straight to the class's resolved method implementation. Because every
// method implementation (see reserveClassFuncs) and every interface slot
// (see methodFuncSigIdx) share the identical "(anyref, ...) -> result"
// signature convention, no dispatch thunk is needed between them -- the
// same function reference serves both the class's own vtable and every
// interface vtable it satisfies.
func (g *Generator) buildInterfaceVtableInstances() {
	for _, c := range g.classes {
		// An extension class's interface conformance is resolved statically
		// at each call site (see findExtensionMember in the checker); it
		// never carries a fat pointer, so it contributes no vtable instance.
		if c.IsExtension {
			continue
		}
		for _, iface := range c.Implements {
			key := ifaceInstanceKey{class: c, iface: iface}
			if _, ok := g.classIfaceVtable[key]; ok {
				continue
			}
			layout := g.ifaceLayout[iface]
			code := wasmgc.NewCode()
			for _, m := range layout.Methods {
				code.RefFunc(g.resolveMethodImpl(c, m.Name))
			}
			code.StructNew(g.ifaceVtableType[iface])
			g.classIfaceVtable[key] = g.b.AddGlobal(wasmgc.Global{
				Type: wasmgc.Ref(g.ifaceVtableType[iface]), Mutable: false, Init: code,
			})
		}
	}
}
