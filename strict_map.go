package strictstates

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// StrictMap maps normalized state keys to canonical state names.
// It is immutable after construction and safe for concurrent reads.
type StrictMap struct {
	machine string
	keys    []string
	values  []string
	index   map[string]int
}

// NewStrictMap builds a StrictMap for machine from raw state names.
//
// Each name is converted to its canonical string (see stateName) and to a key
// via NormalizeKey. Two names that produce the same key yield a
// DuplicateKeyError; nothing is silently dropped.
func NewStrictMap(machine string, names []any) (*StrictMap, error) {
	m := &StrictMap{
		machine: machine,
		keys:    make([]string, 0, len(names)),
		values:  make([]string, 0, len(names)),
		index:   make(map[string]int, len(names)),
	}

	for _, raw := range names {
		value, err := stateName(raw)
		if err != nil {
			return nil, &ConfigError{Param: "states", Message: fmt.Sprintf("machine %q: %v", machine, err)}
		}

		key := NormalizeKey(value)
		if key == "" {
			return nil, &ConfigError{Param: "states", Message: fmt.Sprintf("machine %q: state %q has an empty key", machine, value)}
		}

		if i, exists := m.index[key]; exists {
			return nil, &DuplicateKeyError{
				Machine: machine,
				Key:     key,
				First:   m.values[i],
				Second:  value,
			}
		}

		m.index[key] = len(m.keys)
		m.keys = append(m.keys, key)
		m.values = append(m.values, value)
	}

	return m, nil
}

// NormalizeKey derives the lookup key for a canonical state name: surrounding
// space is trimmed, letters are lower-cased and every run of whitespace or '-'
// becomes a single '_'.
func NormalizeKey(name string) string {
	var sb strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) || r == '-' {
			pendingSep = true
			continue
		}
		if pendingSep {
			sb.WriteByte('_')
			pendingSep = false
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// Machine returns the name of the machine this map was built for.
func (m *StrictMap) Machine() string {
	return m.machine
}

// Get returns the canonical value stored under key. An absent key is an
// *UnknownKeyError, never a zero value.
func (m *StrictMap) Get(key string) (string, error) {
	i, ok := m.index[key]
	if !ok {
		return "", &UnknownKeyError{
			Machine: m.machine,
			Key:     key,
			Known:   m.Keys(),
		}
	}
	return m.values[i], nil
}

// Contains reports whether key is present.
func (m *StrictMap) Contains(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Keys returns all keys in construction order.
func (m *StrictMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Values returns all canonical values in construction order.
func (m *StrictMap) Values() []string {
	return append([]string(nil), m.values...)
}

// Len returns the number of states.
func (m *StrictMap) Len() int {
	return len(m.keys)
}

// String returns a string representation of the map.
func (m *StrictMap) String() string {
	return fmt.Sprintf("StrictMap { Machine = %s, Values = [%s] }", m.machine, strings.Join(m.values, " "))
}

// Namer is implemented by rich state objects that expose their name.
type Namer interface {
	Name() string
}

// stateName converts a raw state produced by a source into its canonical string.
func stateName(raw any) (string, error) {
	if isNil(raw) {
		return "", fmt.Errorf("nil state")
	}

	switch v := raw.(type) {
	case string:
		return v, nil
	case Namer:
		return v.Name(), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	// Named string types such as `type Status string`.
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return "", fmt.Errorf("unsupported state type %T (want string, Name() string or String() string)", raw)
}

// isNil reports whether v is nil or holds a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// RawStates converts a typed slice into the []any a source returns.
func RawStates[T any](states []T) []any {
	raw := make([]any, len(states))
	for i, s := range states {
		raw[i] = s
	}
	return raw
}
