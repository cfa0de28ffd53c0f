package types

import "fmt"

// Satisfies checks that typ satisfies every bound in bounds, where a bound
// is an *Interface a type parameter was constrained against.
func Satisfies(typ Type, bounds []Type, env *Environment) error {
	for _, bound := range bounds {
		if err := satisfiesSingle(typ, bound, env); err != nil {
			return err
		}
	}
	return nil
}

func satisfiesSingle(typ Type, bound Type, env *Environment) error {
	iface, ok := bound.(*Interface)
	if !ok {
		return fmt.Errorf("unsupported constraint type: %s", bound)
	}
	if env != nil && env.HasImpl(iface.Name, typ) {
		return nil
	}
	return fmt.Errorf("type %s does not implement interface %s", typ, iface.Name)
}

// Environment tracks which (interface, type) conformances have been
// registered during declaration collection, so the checker can answer
// Satisfies queries for generic type-parameter constraints without
// re-walking every class's Implements list each time.
type Environment struct {
	impls map[string]map[string]bool
}

func NewEnvironment() *Environment {
	return &Environment{impls: make(map[string]map[string]bool)}
}

// RegisterImpl records that typ conforms to the named interface.
func (e *Environment) RegisterImpl(interfaceName string, typ Type) {
	if e.impls[interfaceName] == nil {
		e.impls[interfaceName] = make(map[string]bool)
	}
	e.impls[interfaceName][typ.String()] = true
}

// HasImpl reports whether typ was previously registered as conforming to
// the named interface.
func (e *Environment) HasImpl(interfaceName string, typ Type) bool {
	return e.impls[interfaceName][typ.String()]
}
