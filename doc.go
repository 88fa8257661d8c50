// Package strictstates provides strict lookups of state names owned by
// state machines defined elsewhere.
//
// A hand-typed state string ("gift card" where the workflow says "gift_card")
// silently never matches. strictstates reads the authoritative state sets once,
// at program start, and turns every later use of a state name into a checked
// lookup that fails loudly on a typo:
//
//   - Per-namespace registries of machines, built from any number of sources
//   - Built-in engines for common host shapes (MachineSet, DefaultMachineHost, plain maps)
//   - Custom sources: any func(host any, machine string) ([]any, error)
//   - All-or-nothing builds; a failed build never replaces a published registry
//   - Immutable registries, safe for concurrent reads
//
// # Basic Usage
//
// Declare the machines of a namespace and build its registry:
//
//	reg, err := strictstates.Build("orders", order, []strictstates.MachineSpec{
//	    {Name: "status", Adapter: strictstates.Engine(strictstates.EngineMachines)},
//	    {Name: "payment", Adapter: strictstates.Source(paymentStates)},
//	})
//
// Look up canonical values:
//
//	paid, err := reg.LookupOne("status", "paid")          // "paid"
//	open, err := reg.LookupMany("status", "new", "paid")  // ["new", "paid"]
//	_, err = reg.LookupOne("status", "payed")             // *UnknownKeyError
//
// # Keys
//
// Each canonical state name is stored under a key: trimmed, lower-cased, with
// runs of spaces and dashes turned into '_'. Lookups match keys exactly. Two
// states of one machine that share a key fail the build with *DuplicateKeyError.
//
// # Catalogs
//
// Registries live in a Catalog keyed by namespace. The package-level Build and
// Get use a process-wide catalog; tests should use NewCatalog instead.
//
// # Graph Generation
//
// Export a registry to DOT or Mermaid format:
//
//	import "github.com/atlekbai/strictstates/graph"
//	dot := graph.DotGraph(reg)
package strictstates
