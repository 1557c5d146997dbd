// Command singen generates exported accessor functions for provider-managed
// singleton types, and doubles as a lint for the provider contract.
//
// The provider contract keeps managed types unexported, which is what makes
// "exactly one instance" enforceable, but it also means callers outside the
// package cannot name the type and therefore cannot call
// singleton.Instance[T] themselves. singen closes that gap: for every
// contract-satisfying type in a package it generates exported accessors that
// perform the Instance call from inside the package.
//
// Contract recap
//
// A type is managed when it is a named, unexported struct whose pointer type
// has an InitSingleton() error method. singen discovers these structurally by
// parsing the package source; there is no registration file.
//
// Generated API (summary)
//
// For a managed type connPool, the generated file contains:
//
//   - ConnPool() (*connPool, error)  // singleton.Instance[connPool]
//   - MustConnPool() *connPool       // singleton.MustInstance[connPool]
//
// Accessor names are the CamelCase form of the type name. The generated file
// carries a "Code generated by singen; DO NOT EDIT." header, is gofmt clean,
// and is written atomically so builds never observe a half-written file.
//
// Check mode
//
// With -check, singen writes nothing and instead reports contract problems
// as file:line:col findings:
//
//   - an InitSingleton method on an exported type (the provider will reject
//     the type at runtime)
//   - an InitSingleton method on a named non-struct type
//   - an InitSingleton method with a signature other than func() error
//   - two type names that camel-case to the same accessor name
//   - an accessor in a previously generated singen file whose type no longer
//     satisfies the contract (stale output; regenerate)
//
// Exit code 1 when findings exist, 0 otherwise. Generate mode refuses to
// write while findings exist, so a CI step can simply run generation.
//
// Typical go:generate usage
//
// Put this in any Go file of the package that owns the managed types:
//
//	//go:generate go run ../../cmd/singen -dir . -out ./singletons.gen.go
//
// Then:
//
//	go generate ./...
//
// Flags
//
//	-dir   package directory to scan (default ".")
//	-out   output .gen.go file path (required unless -check)
//	-check report contract findings without writing a file
//
// See examples/gen for an end-to-end package using generated accessors.
package main
