package strictstates

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSealed is returned by Build and RegisterEngine on a sealed catalog.
	ErrSealed = errors.New("catalog is sealed")

	// ErrUnsupportedHost is wrapped by built-in engines when the host does not
	// expose the shape the engine reads from.
	ErrUnsupportedHost = errors.New("host is not supported by engine")

	// ErrNoStates is wrapped when a source reports an empty state set.
	ErrNoStates = errors.New("source returned no states")
)

// ConfigError indicates malformed build-time input: a bad namespace, an empty
// or invalid machine declaration, or an adapter reference that cannot be resolved.
type ConfigError struct {
	Namespace string
	Param     string
	Message   string
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid config")
	if e.Namespace != "" {
		fmt.Fprintf(&sb, " for namespace %q", e.Namespace)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Param != "" {
		fmt.Fprintf(&sb, " (parameter: %s)", e.Param)
	}
	return sb.String()
}

// DuplicateKeyError is returned when two state names of one machine
// normalize to the same key.
type DuplicateKeyError struct {
	Machine string
	Key     string
	First   string
	Second  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("machine %q: states %q and %q both normalize to key %q",
		e.Machine, e.First, e.Second, e.Key)
}

// UnknownMachineError is returned when a lookup names a machine the registry
// was not built with.
type UnknownMachineError struct {
	Namespace string
	Machine   string
	Known     []string
}

func (e *UnknownMachineError) Error() string {
	return fmt.Sprintf("namespace %q has no machine %q (known machines: %s)",
		e.Namespace, e.Machine, strings.Join(e.Known, ", "))
}

// UnknownKeyError is returned when a lookup uses a key outside a machine's
// state set. Known lists every valid key in construction order.
type UnknownKeyError struct {
	Machine string
	Key     string
	Known   []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %q for machine %q (known keys: %s)",
		e.Key, e.Machine, strings.Join(e.Known, ", "))
}

// UnknownNamespaceError is returned by Catalog.Lookup for a namespace that has
// no published registry.
type UnknownNamespaceError struct {
	Namespace string
	Known     []string
}

func (e *UnknownNamespaceError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("no registry built for namespace %q", e.Namespace)
	}
	return fmt.Sprintf("no registry built for namespace %q (known namespaces: %s)",
		e.Namespace, strings.Join(e.Known, ", "))
}

// SourceError wraps a failure reported by an adapter while a registry was
// being built.
type SourceError struct {
	Namespace string
	Machine   string
	Err       error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("namespace %q: reading states of machine %q: %v", e.Namespace, e.Machine, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
