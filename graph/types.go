// Package graph renders strictstates registries as diagrams.
package graph

// State represents one state of a machine in the graph.
type State struct {
	// Key is the lookup key of the state.
	Key string

	// Value is the canonical state name.
	Value string

	// NodeName is the name used for the node in the graph.
	NodeName string
}

// Machine represents a machine, drawn as a cluster of its states.
type Machine struct {
	// Name is the machine name.
	Name string

	// States are the machine's states in construction order.
	States []*State
}
