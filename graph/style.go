package graph

// Style defines the interface for formatting state graphs.
type Style interface {
	// GetPrefix returns the text that starts a new graph.
	GetPrefix(namespace string) string

	// FormatOneCluster formats a machine and its states.
	FormatOneCluster(machine *Machine) string

	// FormatOneState formats a single state.
	FormatOneState(state *State) string

	// GetSuffix returns the text that ends the graph.
	GetSuffix() string
}
