// Package hclspec loads machine declarations from HCL files.
//
// A file holds any number of namespace blocks, each declaring its machines
// and their states:
//
//	namespace "orders" {
//	  machine "status" {
//	    states = ["new", "paid", "shipped"]
//	  }
//	}
//
// Every namespace is exposed as a Host implementing strictstates.MachineSet,
// so the declared machines build with the built-in "machines" engine.
package hclspec
