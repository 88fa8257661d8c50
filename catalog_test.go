package strictstates_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/strictstates"
)

// Car owns several machines, the way a model with state machine
// definitions would.
type Car struct {
	machines map[string]carMachine
}

type carMachine []string

func (m carMachine) States() []any { return strictstates.RawStates(m) }

func (c *Car) StateMachine(name string) (strictstates.StateSet, bool) {
	m, ok := c.machines[name]
	if !ok {
		return nil, false
	}
	return m, true
}

type fakeState struct{ name string }

func (s fakeState) Name() string { return s.name }

func newCar() *Car {
	return &Car{machines: map[string]carMachine{
		"state":         {"one", "two", "three"},
		"awesome_level": {"not_awesome", "awesome_11", "bad", "good"},
	}}
}

func newCatalog() *strictstates.Catalog {
	return strictstates.NewCatalog(strictstates.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func engine(name string) strictstates.AdapterRef { return strictstates.Engine(name) }

func TestBuild_BuiltinEngine(t *testing.T) {
	c := newCatalog()

	reg, err := c.Build("Car", newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})
	require.NoError(t, err)

	v, err := reg.LookupOne("state", "two")
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	all, err := reg.AllValues("state")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, all)
}

func TestBuild_UnknownKey(t *testing.T) {
	c := newCatalog()
	reg := c.MustBuild("Car", newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})

	_, err := reg.LookupOne("state", "lunch")

	var unknown *strictstates.UnknownKeyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "lunch", unknown.Key)
	assert.Equal(t, []string{"one", "two", "three"}, unknown.Known)
}

func TestBuild_CustomSource(t *testing.T) {
	c := newCatalog()
	var gotHost any
	var gotMachine string
	source := func(host any, machine string) ([]any, error) {
		gotHost, gotMachine = host, machine
		return []any{fakeState{"new"}, fakeState{"pending"}, fakeState{"goofy"}}, nil
	}
	car := newCar()

	reg, err := c.Build("Car", car, []strictstates.MachineSpec{
		{Name: "bogus", Adapter: strictstates.Source(source)},
	})
	require.NoError(t, err)

	assert.Same(t, car, gotHost)
	assert.Equal(t, "bogus", gotMachine)

	all, err := reg.AllValues("bogus")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "pending", "goofy"}, all)
}

func TestBuild_EmptySpecs(t *testing.T) {
	c := newCatalog()

	for _, specs := range [][]strictstates.MachineSpec{nil, {}} {
		_, err := c.Build("Car", newCar(), specs)

		var cfg *strictstates.ConfigError
		require.ErrorAs(t, err, &cfg)
		assert.Equal(t, "machines", cfg.Param)
	}
	_, ok := c.Get("Car")
	assert.False(t, ok)
}

func TestBuild_UnknownEngine(t *testing.T) {
	c := newCatalog()

	_, err := c.Build("Car", newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine("nonexistent")},
	})

	var cfg *strictstates.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Car", cfg.Namespace)
	assert.Contains(t, err.Error(), `"nonexistent"`)
	for _, name := range strictstates.BuiltinEngines() {
		assert.Contains(t, err.Error(), name)
	}
}

func TestBuild_InvalidDeclarations(t *testing.T) {
	source := strictstates.Source(func(any, string) ([]any, error) { return []any{"a"}, nil })

	tests := []struct {
		name      string
		namespace string
		specs     []strictstates.MachineSpec
		param     string
	}{
		{"missing namespace", "", []strictstates.MachineSpec{{Name: "state", Adapter: source}}, "namespace"},
		{"namespace with spaces", "my car", []strictstates.MachineSpec{{Name: "state", Adapter: source}}, "namespace"},
		{"namespace with trailing dot", "cars.", []strictstates.MachineSpec{{Name: "state", Adapter: source}}, "namespace"},
		{"empty machine name", "Car", []strictstates.MachineSpec{{Name: "", Adapter: source}}, "machines"},
		{"machine name not identifier", "Car", []strictstates.MachineSpec{{Name: "drive-status", Adapter: source}}, "machines"},
		{"duplicate machine", "Car", []strictstates.MachineSpec{{Name: "state", Adapter: source}, {Name: "state", Adapter: source}}, "machines"},
		{"missing adapter", "Car", []strictstates.MachineSpec{{Name: "state"}}, "machines"},
		{"nil source", "Car", []strictstates.MachineSpec{{Name: "state", Adapter: strictstates.Source(nil)}}, "machines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCatalog().Build(tt.namespace, nil, tt.specs)

			var cfg *strictstates.ConfigError
			require.ErrorAs(t, err, &cfg)
			assert.Equal(t, tt.param, cfg.Param)
		})
	}
}

func TestBuild_QualifiedNamespace(t *testing.T) {
	c := newCatalog()
	_, err := c.Build("garage.Car", newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})
	require.NoError(t, err)

	_, ok := c.Get("garage.Car")
	assert.True(t, ok)
}

func TestBuild_ValidatesBeforeRunningAdapters(t *testing.T) {
	c := newCatalog()
	calls := 0
	counting := strictstates.Source(func(any, string) ([]any, error) {
		calls++
		return []any{"a"}, nil
	})

	_, err := c.Build("Car", nil, []strictstates.MachineSpec{
		{Name: "first", Adapter: counting},
		{Name: "second", Adapter: engine("bogus")},
	})
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestBuild_DuplicateKeyIsAtomic(t *testing.T) {
	c := newCatalog()
	host := map[string][]string{
		"state": {"one", "two"},
		"level": {"bad", "Good", "good"},
	}

	_, err := c.Build("Car", host, []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMap)},
		{Name: "level", Adapter: engine(strictstates.EngineMap)},
	})

	var dup *strictstates.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "level", dup.Machine)

	_, ok := c.Get("Car")
	assert.False(t, ok, "no registry may be published after a failed build")
}

func TestBuild_SourceErrorIsAtomic(t *testing.T) {
	c := newCatalog()
	boom := errors.New("boom")

	before := c.MustBuild("Car", newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})

	_, err := c.Build("Car", newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
		{Name: "broken", Adapter: strictstates.Source(func(any, string) ([]any, error) { return nil, boom })},
	})

	var srcErr *strictstates.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "broken", srcErr.Machine)
	assert.ErrorIs(t, err, boom)

	after, ok := c.Get("Car")
	require.True(t, ok)
	assert.Same(t, before, after, "a failed build must not replace the published registry")
}

func TestBuild_EmptyStateSet(t *testing.T) {
	_, err := newCatalog().Build("Car", map[string][]string{"state": {}}, []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMap)},
	})
	assert.ErrorIs(t, err, strictstates.ErrNoStates)
}

func TestBuild_UnsupportedHost(t *testing.T) {
	_, err := newCatalog().Build("Car", "not a host", []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})
	assert.ErrorIs(t, err, strictstates.ErrUnsupportedHost)
}

func TestBuild_BadStateTypeCarriesNamespace(t *testing.T) {
	_, err := newCatalog().Build("Car", map[string][]any{"state": {"one", 2}}, []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMap)},
	})

	var cfg *strictstates.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Car", cfg.Namespace)
}

func TestBuild_NilStateObjectIsAtomic(t *testing.T) {
	c := newCatalog()
	c.MustBuild("Car", newCar(), []strictstates.MachineSpec{{Name: "state", Adapter: engine(strictstates.EngineMachines)}})

	source := strictstates.Source(func(any, string) ([]any, error) {
		return []any{&fakeState{"a"}, (*fakeState)(nil)}, nil
	})

	var err error
	require.NotPanics(t, func() {
		_, err = c.Build("Car", nil, []strictstates.MachineSpec{{Name: "state", Adapter: source}})
	})

	var cfg *strictstates.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Car", cfg.Namespace)

	reg, ok := c.Get("Car")
	require.True(t, ok)
	assert.Equal(t, []string{"state"}, reg.Machines())
}

func TestBuild_Idempotent(t *testing.T) {
	c := newCatalog()
	specs := []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
		{Name: "awesome_level", Adapter: engine(strictstates.EngineMachines)},
	}

	first := c.MustBuild("Car", newCar(), specs)
	second := c.MustBuild("Car", newCar(), specs)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Machines(), second.Machines())
	for _, m := range first.Machines() {
		a, _ := first.Machine(m)
		b, _ := second.Machine(m)
		assert.Equal(t, a.Keys(), b.Keys())
		assert.Equal(t, a.Values(), b.Values())
	}

	current, ok := c.Get("Car")
	require.True(t, ok)
	assert.Same(t, second, current)
}

func TestBuild_LastWriteWinsWithoutMerge(t *testing.T) {
	c := newCatalog()
	c.MustBuild("Car", newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})
	c.MustBuild("Car", newCar(), []strictstates.MachineSpec{
		{Name: "awesome_level", Adapter: engine(strictstates.EngineMachines)},
	})

	reg, ok := c.Get("Car")
	require.True(t, ok)
	assert.Equal(t, []string{"awesome_level"}, reg.Machines())

	_, err := reg.LookupOne("state", "one")
	var unknown *strictstates.UnknownMachineError
	assert.ErrorAs(t, err, &unknown)
}

func TestBuild_DeclarationOrder(t *testing.T) {
	c := newCatalog()
	reg := c.MustBuild("Car", newCar(), []strictstates.MachineSpec{
		{Name: "awesome_level", Adapter: engine(strictstates.EngineMachines)},
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})
	assert.Equal(t, []string{"awesome_level", "state"}, reg.Machines())
}

func TestCatalog_RegisterEngine(t *testing.T) {
	c := newCatalog()
	workflow := func(host any, machine string) ([]any, error) {
		return []any{machine + "_draft", machine + "_final"}, nil
	}
	require.NoError(t, c.RegisterEngine("workflow", workflow))

	reg, err := c.Build("Doc", nil, []strictstates.MachineSpec{
		{Name: "review", Adapter: engine("workflow")},
	})
	require.NoError(t, err)
	all, err := reg.AllValues("review")
	require.NoError(t, err)
	assert.Equal(t, []string{"review_draft", "review_final"}, all)

	var cfg *strictstates.ConfigError
	assert.ErrorAs(t, c.RegisterEngine("workflow", workflow), &cfg)
	assert.ErrorAs(t, c.RegisterEngine(strictstates.EngineMap, workflow), &cfg)
	assert.ErrorAs(t, c.RegisterEngine("", workflow), &cfg)
	assert.ErrorAs(t, c.RegisterEngine("other", nil), &cfg)

	// Engines are per catalog.
	_, err = newCatalog().Build("Doc", nil, []strictstates.MachineSpec{
		{Name: "review", Adapter: engine("workflow")},
	})
	assert.ErrorAs(t, err, &cfg)
}

func TestCatalog_MustRegisterEnginePanics(t *testing.T) {
	c := newCatalog()
	assert.Panics(t, func() {
		c.MustRegisterEngine(strictstates.EngineSingle, func(any, string) ([]any, error) { return nil, nil })
	})
}

func TestCatalog_LookupAndDiscard(t *testing.T) {
	c := newCatalog()
	specs := []strictstates.MachineSpec{{Name: "state", Adapter: engine(strictstates.EngineMachines)}}
	c.MustBuild("Car", newCar(), specs)
	c.MustBuild("Bike", newCar(), specs)

	assert.Equal(t, []string{"Bike", "Car"}, c.Namespaces())

	reg, err := c.Lookup("Car")
	require.NoError(t, err)
	assert.Equal(t, "Car", reg.Namespace())

	_, err = c.Lookup("Truck")
	var unknown *strictstates.UnknownNamespaceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"Bike", "Car"}, unknown.Known)

	assert.True(t, c.Discard("Car"))
	assert.False(t, c.Discard("Car"))
	assert.Equal(t, []string{"Bike"}, c.Namespaces())
}

func TestCatalog_Seal(t *testing.T) {
	c := newCatalog()
	specs := []strictstates.MachineSpec{{Name: "state", Adapter: engine(strictstates.EngineMachines)}}
	c.MustBuild("Car", newCar(), specs)

	assert.True(t, c.Seal())
	assert.False(t, c.Seal())
	assert.True(t, c.Sealed())

	_, err := c.Build("Car", newCar(), specs)
	assert.ErrorIs(t, err, strictstates.ErrSealed)
	assert.ErrorIs(t, c.RegisterEngine("late", func(any, string) ([]any, error) { return nil, nil }), strictstates.ErrSealed)

	_, ok := c.Get("Car")
	assert.True(t, ok, "sealing keeps published registries readable")
}

func TestCatalog_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		newCatalog().MustBuild("Car", newCar(), nil)
	})
}

func TestCatalog_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := strictstates.NewCatalog(strictstates.WithLogger(logger))

	specs := []strictstates.MachineSpec{{Name: "state", Adapter: engine(strictstates.EngineMachines)}}
	c.MustBuild("Car", newCar(), specs)
	c.MustBuild("Car", newCar(), specs)
	_, _ = c.Build("Car", newCar(), nil)

	out := buf.String()
	assert.Contains(t, out, "Registry published.")
	assert.Contains(t, out, "Replacing registry.")
	assert.Contains(t, out, "Registry build failed.")
	assert.Contains(t, out, "namespace=Car")
}

func TestCatalog_ConcurrentBuildsAndReads(t *testing.T) {
	c := newCatalog()
	specs := []strictstates.MachineSpec{{Name: "state", Adapter: engine(strictstates.EngineMachines)}}
	reg := c.MustBuild("Car", newCar(), specs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := c.Build(fmt.Sprintf("Car%d", i), newCar(), specs)
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v, err := reg.LookupOne("state", "three")
				assert.NoError(t, err)
				assert.Equal(t, "three", v)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, c.Namespaces(), 9)
}

func TestDefaultCatalog(t *testing.T) {
	ns := "strictstates_test.DefaultCar"
	t.Cleanup(func() { strictstates.Default().Discard(ns) })

	reg, err := strictstates.Build(ns, newCar(), []strictstates.MachineSpec{
		{Name: "state", Adapter: engine(strictstates.EngineMachines)},
	})
	require.NoError(t, err)

	got, ok := strictstates.Get(ns)
	require.True(t, ok)
	assert.Same(t, reg, got)

	assert.Panics(t, func() { strictstates.MustBuild(ns, newCar(), nil) })
}
