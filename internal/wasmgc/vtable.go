package wasmgc

// VtableLayout records one class's assembled method order, grounded on the
// checker's own inherited-then-mixin-then-declared override assembly: each
// entry is a method name paired with the type-section index of its function
// signature, in vtable slot order.
type VtableLayout struct {
	ClassName string
	Methods   []VtableMethod
}

// VtableMethod is one slot of a VtableLayout.
type VtableMethod struct {
	Name    string
	FuncSig uint32 // type-section index of the method's (ref $functype) shape
}

// BuildVtableStructType declares the struct type holding one non-null
// function reference per method slot, in the layout's order. Every
// instance of the class (and every subclass, via WasmGC's struct subtyping)
// shares one such vtable object, built once at module-initialization time.
func BuildVtableStructType(types *TypeSection, layout VtableLayout, super int32, final bool) uint32 {
	fields := make([]FieldType, len(layout.Methods))
	for i, m := range layout.Methods {
		fields[i] = FieldType{Type: Ref(m.FuncSig), Mutable: false}
	}
	return types.Add(NewStructType(fields, super, final))
}

// FatPointerFields returns the two-field shape of an interface/union value:
// a reference to the concrete instance (as anyref, since the static class
// isn't known at the call site) and a reference to that instance's vtable.
func FatPointerFields(vtableTypeIdx uint32) []FieldType {
	return []FieldType{
		{Type: AnyRefNull, Mutable: false},
		{Type: Ref(vtableTypeIdx), Mutable: false},
	}
}

// BuildFatPointerStructType declares the struct type used to box a class
// instance behind an interface-typed value: { instance: anyref, vtable: ref
// $vtableType }. Dispatching a call through it is struct.get the vtable
// field, struct.get the method slot, then call_ref.
func BuildFatPointerStructType(types *TypeSection, vtableTypeIdx uint32) uint32 {
	return types.Add(NewStructType(FatPointerFields(vtableTypeIdx), -1, true))
}

// MethodSlot locates a method's field index within its class's vtable
// layout, or -1 if the class exposes no such method.
func MethodSlot(layout VtableLayout, name string) int {
	for i, m := range layout.Methods {
		if m.Name == name {
			return i
		}
	}
	return -1
}
