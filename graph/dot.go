package graph

import (
	"fmt"
	"strings"

	"github.com/atlekbai/strictstates"
)

// DotGraphStyle generates Graphviz DOT graphs.
type DotGraphStyle struct{}

// NewDotGraphStyle creates a new DOT graph style.
func NewDotGraphStyle() *DotGraphStyle {
	return &DotGraphStyle{}
}

// GetPrefix returns the text that starts a new DOT graph.
func (s *DotGraphStyle) GetPrefix(namespace string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("digraph \"%s\" {\n", EscapeLabel(namespace)))
	sb.WriteString("compound=true;\n")
	sb.WriteString("node [shape=Mrecord]\n")
	sb.WriteString("rankdir=\"LR\"\n")
	return sb.String()
}

// FormatOneCluster formats a machine as a subgraph cluster.
func (s *DotGraphStyle) FormatOneCluster(machine *Machine) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("subgraph \"cluster_%s\"\n", EscapeLabel(machine.Name)))
	sb.WriteString("\t{\n")
	sb.WriteString(fmt.Sprintf("\tlabel = \"%s\"\n", EscapeLabel(machine.Name)))

	for _, state := range machine.States {
		sb.WriteString(s.FormatOneState(state))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// FormatOneState formats a single state. States whose key differs from the
// canonical value show both.
func (s *DotGraphStyle) FormatOneState(state *State) string {
	label := escapeRecord(state.Value)
	if state.Key != state.Value {
		label += "|" + escapeRecord(state.Key)
	}
	return fmt.Sprintf("\"%s\" [label=\"%s\"];\n", EscapeLabel(state.NodeName), label)
}

// GetSuffix closes the DOT graph.
func (s *DotGraphStyle) GetSuffix() string {
	return "}"
}

// EscapeLabel escapes special characters in a label.
func EscapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\\", "\\\\")
	label = strings.ReplaceAll(label, "\"", "\\\"")
	return label
}

// escapeRecord escapes a label used inside a record shape, where braces,
// bars and angle brackets are field syntax.
func escapeRecord(label string) string {
	label = EscapeLabel(label)
	for _, c := range []string{"{", "}", "|", "<", ">"} {
		label = strings.ReplaceAll(label, c, "\\"+c)
	}
	return label
}

// DotGraph generates a DOT graph from a registry.
func DotGraph(reg *strictstates.Registry) string {
	return NewStateGraph(reg).ToGraph(NewDotGraphStyle())
}
