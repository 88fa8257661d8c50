package strictstates

import (
	"fmt"
	"sort"
)

// Adapter reads the authoritative state names of one machine from a host.
// It runs at build time only, must not mutate the host, and may return plain
// strings or state objects (see RawStates and Namer).
type Adapter func(host any, machine string) ([]any, error)

// AdapterRef says how a machine's states are discovered: either a reference
// to a named engine or a caller-supplied Source.
type AdapterRef interface {
	adapterRef()
}

// Engine refers to a built-in engine or one registered on the catalog.
type Engine string

// Source is a caller-supplied adapter.
type Source Adapter

func (Engine) adapterRef() {}
func (Source) adapterRef() {}

// MachineSpec declares one machine of a namespace and how to discover its states.
type MachineSpec struct {
	Name    string
	Adapter AdapterRef
}

// Built-in engine names.
const (
	// EngineMachines reads from a host implementing MachineSet.
	EngineMachines = "machines"
	// EngineSingle reads from a host implementing DefaultMachineHost; the
	// machine name is ignored.
	EngineSingle = "single"
	// EngineMap reads from a map[string][]string or map[string][]any host.
	EngineMap = "map"
)

// StateSet is a single machine definition able to enumerate its states.
type StateSet interface {
	States() []any
}

// MachineSet is implemented by hosts owning several named machines.
type MachineSet interface {
	StateMachine(name string) (StateSet, bool)
}

// DefaultMachineHost is implemented by hosts owning exactly one machine.
type DefaultMachineHost interface {
	DefaultStateMachine() StateSet
}

var builtinEngines = map[string]Adapter{
	EngineMachines: machinesEngine,
	EngineSingle:   singleEngine,
	EngineMap:      mapEngine,
}

// BuiltinEngines returns the names of the built-in engines, sorted.
func BuiltinEngines() []string {
	return sortedKeys(builtinEngines)
}

func machinesEngine(host any, machine string) ([]any, error) {
	set, ok := host.(MachineSet)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement MachineSet", ErrUnsupportedHost, host)
	}
	sm, ok := set.StateMachine(machine)
	if !ok || isNil(sm) {
		return nil, fmt.Errorf("host %T has no state machine %q", host, machine)
	}
	return sm.States(), nil
}

func singleEngine(host any, _ string) ([]any, error) {
	h, ok := host.(DefaultMachineHost)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement DefaultMachineHost", ErrUnsupportedHost, host)
	}
	sm := h.DefaultStateMachine()
	if isNil(sm) {
		return nil, fmt.Errorf("host %T has no default state machine", host)
	}
	return sm.States(), nil
}

func mapEngine(host any, machine string) ([]any, error) {
	switch m := host.(type) {
	case map[string][]string:
		states, ok := m[machine]
		if !ok {
			return nil, fmt.Errorf("no entry for machine %q", machine)
		}
		return RawStates(states), nil
	case map[string][]any:
		states, ok := m[machine]
		if !ok {
			return nil, fmt.Errorf("no entry for machine %q", machine)
		}
		return append([]any(nil), states...), nil
	default:
		return nil, fmt.Errorf("%w: %T is not map[string][]string or map[string][]any", ErrUnsupportedHost, host)
	}
}

// resolveAdapter turns a reference into a callable adapter. Engine names are
// looked up in the built-in table first, then in registered.
func resolveAdapter(ref AdapterRef, registered map[string]Adapter) (Adapter, error) {
	switch r := ref.(type) {
	case Engine:
		if a, ok := builtinEngines[string(r)]; ok {
			return a, nil
		}
		if a, ok := registered[string(r)]; ok {
			return a, nil
		}
		return nil, fmt.Errorf("unknown engine %q, valid engines are %v", string(r), engineNames(registered))
	case Source:
		if r == nil {
			return nil, fmt.Errorf("source adapter is nil")
		}
		return Adapter(r), nil
	case nil:
		return nil, fmt.Errorf("no engine or source given")
	default:
		return nil, fmt.Errorf("unsupported adapter reference %T", ref)
	}
}

func engineNames(registered map[string]Adapter) []string {
	names := BuiltinEngines()
	names = append(names, sortedKeys(registered)...)
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
