package strictstates

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"go.uber.org/atomic"
)

var (
	namespacePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	machinePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Option configures a Catalog.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for build diagnostics. Without it the
// catalog logs to slog.Default() as it is at the time of logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Catalog owns the namespace -> Registry table and the engines available to
// its builds. Builds for different namespaces may run concurrently; the table
// is only locked while a finished registry is swapped in.
type Catalog struct {
	mu         sync.RWMutex
	registries map[string]*Registry
	engines    map[string]Adapter
	sealed     atomic.Bool
	logger     *slog.Logger
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return &Catalog{
		registries: make(map[string]*Registry),
		engines:    make(map[string]Adapter),
		logger:     o.logger,
	}
}

func (c *Catalog) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// RegisterEngine makes adapter available to this catalog's builds under name.
// Built-in names and names already registered cannot be reused.
func (c *Catalog) RegisterEngine(name string, adapter Adapter) error {
	if c.Sealed() {
		return ErrSealed
	}
	if name == "" || adapter == nil {
		return &ConfigError{Param: "engine", Message: "engine name and adapter are required"}
	}
	if _, ok := builtinEngines[name]; ok {
		return &ConfigError{Param: "engine", Message: fmt.Sprintf("engine %q is built in", name)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.engines[name]; ok {
		return &ConfigError{Param: "engine", Message: fmt.Sprintf("engine %q is already registered", name)}
	}
	c.engines[name] = adapter
	return nil
}

// MustRegisterEngine panics on registration error. Useful from init() blocks.
func (c *Catalog) MustRegisterEngine(name string, adapter Adapter) {
	if err := c.RegisterEngine(name, adapter); err != nil {
		panic(err)
	}
}

// Build reads the states of every declared machine from host and publishes
// the resulting Registry under namespace, replacing any previous one.
//
// Declarations are validated before any adapter runs. The build is all or
// nothing: if any machine fails, the error is returned and the namespace
// keeps whatever registry it had before.
func (c *Catalog) Build(namespace string, host any, specs []MachineSpec) (*Registry, error) {
	reg, err := c.build(namespace, host, specs)
	if err != nil {
		c.log().Warn("Registry build failed.", "namespace", namespace, "error", err)
		return nil, err
	}
	return reg, nil
}

func (c *Catalog) build(namespace string, host any, specs []MachineSpec) (*Registry, error) {
	if c.Sealed() {
		return nil, ErrSealed
	}

	adapters, err := c.resolve(namespace, specs)
	if err != nil {
		return nil, err
	}

	c.log().Debug("Building registry.", "namespace", namespace, "machines", len(specs))

	reg := &Registry{
		namespace: namespace,
		order:     make([]string, 0, len(specs)),
		machines:  make(map[string]*StrictMap, len(specs)),
	}
	for i, spec := range specs {
		raw, err := adapters[i](host, spec.Name)
		if err != nil {
			return nil, &SourceError{Namespace: namespace, Machine: spec.Name, Err: err}
		}
		if len(raw) == 0 {
			return nil, &SourceError{Namespace: namespace, Machine: spec.Name, Err: ErrNoStates}
		}

		m, err := NewStrictMap(spec.Name, raw)
		if err != nil {
			var cfgErr *ConfigError
			if errors.As(err, &cfgErr) {
				cfgErr.Namespace = namespace
			}
			return nil, err
		}

		c.log().Debug("Machine states loaded.", "namespace", namespace, "machine", spec.Name, "states", m.Len())
		reg.order = append(reg.order, spec.Name)
		reg.machines[spec.Name] = m
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Sealed() {
		return nil, ErrSealed
	}
	if _, exists := c.registries[namespace]; exists {
		c.log().Debug("Replacing registry.", "namespace", namespace)
	}
	c.registries[namespace] = reg

	c.log().Debug("Registry published.", "namespace", namespace, "machines", len(reg.order))
	return reg, nil
}

// resolve validates the declarations and returns one adapter per spec.
func (c *Catalog) resolve(namespace string, specs []MachineSpec) ([]Adapter, error) {
	if namespace == "" {
		return nil, &ConfigError{Param: "namespace", Message: "namespace is required"}
	}
	if !namespacePattern.MatchString(namespace) {
		return nil, &ConfigError{Param: "namespace", Message: fmt.Sprintf("namespace %q is not a plain identifier", namespace)}
	}
	if len(specs) == 0 {
		return nil, &ConfigError{Namespace: namespace, Param: "machines", Message: "at least one machine must be declared"}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	adapters := make([]Adapter, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		if !machinePattern.MatchString(spec.Name) {
			return nil, &ConfigError{
				Namespace: namespace,
				Param:     "machines",
				Message:   fmt.Sprintf("machine %d: name %q is not a plain identifier", i, spec.Name),
			}
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, &ConfigError{
				Namespace: namespace,
				Param:     "machines",
				Message:   fmt.Sprintf("machine %q is declared more than once", spec.Name),
			}
		}
		seen[spec.Name] = struct{}{}

		a, err := resolveAdapter(spec.Adapter, c.engines)
		if err != nil {
			return nil, &ConfigError{
				Namespace: namespace,
				Param:     "machines",
				Message:   fmt.Sprintf("machine %q: %v", spec.Name, err),
			}
		}
		adapters[i] = a
	}
	return adapters, nil
}

// MustBuild is like Build but panics on error.
func (c *Catalog) MustBuild(namespace string, host any, specs []MachineSpec) *Registry {
	reg, err := c.Build(namespace, host, specs)
	if err != nil {
		panic(err)
	}
	return reg
}

// Get returns the registry published for namespace, if any.
func (c *Catalog) Get(namespace string) (*Registry, bool) {
	c.mu.RLock()
	reg, ok := c.registries[namespace]
	c.mu.RUnlock()
	return reg, ok
}

// Lookup is like Get but reports a missing namespace as *UnknownNamespaceError.
func (c *Catalog) Lookup(namespace string) (*Registry, error) {
	if reg, ok := c.Get(namespace); ok {
		return reg, nil
	}
	return nil, &UnknownNamespaceError{Namespace: namespace, Known: c.Namespaces()}
}

// Namespaces returns every namespace with a published registry, sorted.
func (c *Catalog) Namespaces() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.registries)
}

// Discard removes the registry of namespace. It reports whether one existed.
func (c *Catalog) Discard(namespace string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.registries[namespace]
	delete(c.registries, namespace)
	return ok
}

// Sealed reports whether the catalog is sealed.
func (c *Catalog) Sealed() bool { return c.sealed.Load() }

// Seal prevents further builds and engine registrations. It is idempotent;
// it returns true if this call sealed the catalog.
func (c *Catalog) Seal() bool { return !c.sealed.Swap(true) }

var defaultCatalog = NewCatalog()

// Default returns the process-wide catalog used by the package-level functions.
func Default() *Catalog {
	return defaultCatalog
}

// Build builds namespace on the default catalog.
func Build(namespace string, host any, specs []MachineSpec) (*Registry, error) {
	return defaultCatalog.Build(namespace, host, specs)
}

// MustBuild builds namespace on the default catalog and panics on error.
func MustBuild(namespace string, host any, specs []MachineSpec) *Registry {
	return defaultCatalog.MustBuild(namespace, host, specs)
}

// Get returns the registry of namespace from the default catalog.
func Get(namespace string) (*Registry, bool) {
	return defaultCatalog.Get(namespace)
}
