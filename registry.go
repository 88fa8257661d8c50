package strictstates

import (
	"fmt"
	"strings"
)

// DefaultMachine is the machine name used by Registry.State.
const DefaultMachine = "state"

// Registry is the immutable set of StrictMaps built for one namespace.
// It is safe to share for concurrent reads.
type Registry struct {
	namespace string
	order     []string
	machines  map[string]*StrictMap
}

// Namespace returns the namespace the registry was built for.
func (r *Registry) Namespace() string {
	return r.namespace
}

// Machines returns the machine names in declaration order.
func (r *Registry) Machines() []string {
	return append([]string(nil), r.order...)
}

// Machine returns the StrictMap of the named machine.
func (r *Registry) Machine(name string) (*StrictMap, error) {
	m, ok := r.machines[name]
	if !ok {
		return nil, &UnknownMachineError{
			Namespace: r.namespace,
			Machine:   name,
			Known:     r.Machines(),
		}
	}
	return m, nil
}

// LookupOne returns the canonical value of key in machine.
func (r *Registry) LookupOne(machine, key string) (string, error) {
	m, err := r.Machine(machine)
	if err != nil {
		return "", err
	}
	return m.Get(key)
}

// LookupMany resolves keys in order and stops at the first failure, in which
// case the result is nil.
func (r *Registry) LookupMany(machine string, keys ...string) ([]string, error) {
	m, err := r.Machine(machine)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(keys))
	for i, key := range keys {
		v, err := m.Get(key)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// AllValues returns every canonical value of machine in declaration order.
func (r *Registry) AllValues(machine string) ([]string, error) {
	m, err := r.Machine(machine)
	if err != nil {
		return nil, err
	}
	return m.Values(), nil
}

// State looks key up in DefaultMachine.
func (r *Registry) State(key string) (string, error) {
	return r.LookupOne(DefaultMachine, key)
}

// MustLookup is like LookupOne but panics on error. It is intended for
// package-level variables so that a misspelled state stops the program at start.
//
//	var statusPaid = orders.MustLookup("status", "paid")
func (r *Registry) MustLookup(machine, key string) string {
	v, err := r.LookupOne(machine, key)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns a string representation of the registry.
func (r *Registry) String() string {
	return fmt.Sprintf("Registry { Namespace = %s, Machines = [%s] }", r.namespace, strings.Join(r.order, " "))
}
