// Package cypher compiles graphmap metadata into Cypher statement text.
//
// Three compilers live here, all pure, synchronous functions of the schema
// model:
//
//   - CompileRead turns a view (plus optional conditions, order keys,
//     collection sorts, and per-relationship depth overrides) into one read
//     statement built from nested pattern comprehensions.
//   - CompileSave turns a view, a current object graph, a session snapshot,
//     and a cascade policy into an ordered list of write statements.
//   - CompileWhere turns a condition tree into WHERE text plus parameter
//     bindings, scoping relationship-nested conditions into EXISTS
//     subqueries.
//
// Compilation is deterministic: the same inputs always produce byte
// identical text. Every alias is derived from the relationship field name
// (with _rel/_target suffixes for rich edges and _dN suffixes for recursion
// depth), so compiled statements are stable across processes and releases.
//
// The package also provides a neo4j-backed dialect.Driver and a statistics
// wrapper that layers query counters and slow-query logging over any driver.
package cypher
