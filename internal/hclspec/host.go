package hclspec

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/atlekbai/strictstates"
)

// Host holds the machines declared in one namespace block.
type Host struct {
	machines map[string]declaredMachine
}

func newHost() *Host {
	return &Host{machines: make(map[string]declaredMachine)}
}

// StateMachine implements strictstates.MachineSet.
func (h *Host) StateMachine(name string) (strictstates.StateSet, bool) {
	m, ok := h.machines[name]
	if !ok {
		return nil, false
	}
	return m, true
}

type declaredMachine []string

func (m declaredMachine) States() []any {
	return strictstates.RawStates(m)
}

// evalStates evaluates a states attribute. The value must be a list or tuple
// of strings; sets are rejected because they do not keep declaration order.
func evalStates(expr hcl.Expression) (declaredMachine, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	rng := expr.Range()
	invalid := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid states",
			Detail:   detail,
			Subject:  &rng,
		}}
	}

	if val.IsNull() || !val.IsWhollyKnown() {
		return nil, invalid("The states attribute must be a list of strings.")
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() {
		return nil, invalid("The states attribute must be a list of strings, got " + ty.FriendlyName() + ".")
	}

	states := make(declaredMachine, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.IsNull() || !v.Type().Equals(cty.String) {
			return nil, invalid("Every state must be a string, got " + v.Type().FriendlyName() + ".")
		}
		states = append(states, v.AsString())
	}
	return states, nil
}
