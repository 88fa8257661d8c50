package graph

import (
	"strings"

	"github.com/atlekbai/strictstates"
)

// StateGraph is a symbolic representation of a registry.
type StateGraph struct {
	// Namespace is the namespace of the registry.
	Namespace string

	// Machines are the registry's machines in declaration order.
	Machines []*Machine
}

// NewStateGraph creates a state graph from a registry.
func NewStateGraph(reg *strictstates.Registry) *StateGraph {
	sg := &StateGraph{Namespace: reg.Namespace()}

	for _, name := range reg.Machines() {
		m, err := reg.Machine(name)
		if err != nil {
			continue
		}

		machine := &Machine{Name: name}
		keys, values := m.Keys(), m.Values()
		for i, key := range keys {
			machine.States = append(machine.States, &State{
				Key:      key,
				Value:    values[i],
				NodeName: name + "." + key,
			})
		}
		sg.Machines = append(sg.Machines, machine)
	}

	return sg
}

// ToGraph converts the state graph to a string using the specified style.
func (sg *StateGraph) ToGraph(style Style) string {
	var sb strings.Builder

	sb.WriteString(style.GetPrefix(sg.Namespace))
	for _, machine := range sg.Machines {
		sb.WriteString(style.FormatOneCluster(machine))
	}
	sb.WriteString(style.GetSuffix())

	return sb.String()
}
