// Package graphmap is an object-graph mapper for Cypher-speaking graph
// databases. It projects a declaratively-described graph schema (a root
// fragment plus typed, directed, optionally-recursive relationships) onto a
// Cypher text generator, and reconciles in-memory object graphs back to the
// store through diff-based writes with configurable cascade policies.
//
// # Architecture
//
// The module is split into small, composable packages:
//
//   - graphmap (this package): error taxonomy, cascade policies, identity
//     normalization, and the per-unit-of-work Session identity map.
//   - schema: the immutable metadata model (Fragment, Relationship, View)
//     and the Registry that compiles and caches it.
//   - schema/load: declarative YAML schema documents and a file watcher.
//   - dialect: the driver abstraction executed statements flow through.
//   - dialect/cypher: the read, write, and condition compilers, plus a
//     neo4j-backed driver and a statistics wrapper.
//   - mapper: unit-of-work orchestration (Load/Save against a driver).
//
// Every compiler is a pure, synchronous function of the metadata model; the
// Session is the only mutable state and is scoped to one unit of work.
//
// # Statements
//
// Compilers never execute anything. They return statement text plus a flat
// parameter map, and the caller (usually mapper) hands those to a
// dialect.Driver. A successfully compiled statement list is guaranteed
// schema-consistent: every schema problem surfaces as an error at compile
// time, before the driver is involved.
package graphmap
