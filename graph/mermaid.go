package graph

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/atlekbai/strictstates"
)

// MermaidGraphDirection specifies the direction of the Mermaid graph.
type MermaidGraphDirection int

const (
	// TopToBottom flows from top to bottom.
	TopToBottom MermaidGraphDirection = iota
	// BottomToTop flows from bottom to top.
	BottomToTop
	// LeftToRight flows from left to right.
	LeftToRight
	// RightToLeft flows from right to left.
	RightToLeft
)

// ParseDirection parses a Mermaid direction code (TB, BT, LR, RL).
func ParseDirection(code string) (MermaidGraphDirection, error) {
	switch strings.ToUpper(code) {
	case "TB", "TD":
		return TopToBottom, nil
	case "BT":
		return BottomToTop, nil
	case "LR":
		return LeftToRight, nil
	case "RL":
		return RightToLeft, nil
	default:
		return TopToBottom, fmt.Errorf("unknown direction %q, want one of TB, BT, LR, RL", code)
	}
}

// MermaidGraphStyle generates Mermaid state diagrams.
type MermaidGraphStyle struct {
	graph     *StateGraph
	direction *MermaidGraphDirection
	ids       map[*State]string
}

// NewMermaidGraphStyle creates a new Mermaid graph style.
func NewMermaidGraphStyle(graph *StateGraph, direction *MermaidGraphDirection) *MermaidGraphStyle {
	return &MermaidGraphStyle{
		graph:     graph,
		direction: direction,
	}
}

// GetPrefix returns the text that starts a new Mermaid graph.
func (s *MermaidGraphStyle) GetPrefix(_ string) string {
	s.buildStateIDs()

	var sb strings.Builder
	sb.WriteString("stateDiagram-v2")

	if s.direction != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("\tdirection %s", getDirectionCode(*s.direction)))
	}

	return sb.String()
}

// FormatOneCluster formats a machine as a composite state.
func (s *MermaidGraphStyle) FormatOneCluster(machine *Machine) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("\tstate %s {\n", sanitizeStateName(machine.Name)))

	for _, state := range machine.States {
		sb.WriteString(s.FormatOneState(state))
	}

	sb.WriteString("\t}")
	return sb.String()
}

// FormatOneState formats a single state as an id with its canonical value
// as description.
func (s *MermaidGraphStyle) FormatOneState(state *State) string {
	return fmt.Sprintf("\t\t%s : %s\n", s.stateID(state), mermaidLabel(state.Value))
}

var mermaidLineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// mermaidLabel puts a state description on one line; Mermaid ends a
// description at the first line break.
func mermaidLabel(label string) string {
	return mermaidLineBreaks.Replace(label)
}

// GetSuffix returns nothing; Mermaid graphs need no terminator.
func (s *MermaidGraphStyle) GetSuffix() string {
	return ""
}

// buildStateIDs assigns every state an id unique across the whole diagram.
// Machine names are reserved first since composite states share the id space.
func (s *MermaidGraphStyle) buildStateIDs() {
	if s.ids != nil {
		return
	}
	s.ids = make(map[*State]string)

	used := make(map[string]bool)
	for _, machine := range s.graph.Machines {
		used[sanitizeStateName(machine.Name)] = true
	}

	for _, machine := range s.graph.Machines {
		for _, state := range machine.States {
			base := sanitizeStateName(machine.Name + "_" + state.Key)
			id := base
			for count := 1; used[id]; count++ {
				id = fmt.Sprintf("%s_%d", base, count)
			}
			used[id] = true
			s.ids[state] = id
		}
	}
}

func (s *MermaidGraphStyle) stateID(state *State) string {
	if id, ok := s.ids[state]; ok {
		return id
	}
	return sanitizeStateName(state.NodeName)
}

// sanitizeStateName removes characters that would cause invalid Mermaid graphs.
func sanitizeStateName(name string) string {
	var result strings.Builder
	for _, c := range name {
		if !unicode.IsSpace(c) && c != ':' && c != '-' && c != '.' {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// getDirectionCode returns the Mermaid direction code.
func getDirectionCode(direction MermaidGraphDirection) string {
	switch direction {
	case TopToBottom:
		return "TB"
	case BottomToTop:
		return "BT"
	case LeftToRight:
		return "LR"
	case RightToLeft:
		return "RL"
	default:
		return "TB"
	}
}

// MermaidGraph generates a Mermaid state diagram from a registry.
func MermaidGraph(reg *strictstates.Registry, direction *MermaidGraphDirection) string {
	graph := NewStateGraph(reg)
	return graph.ToGraph(NewMermaidGraphStyle(graph, direction))
}
