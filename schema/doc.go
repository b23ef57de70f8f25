// Package schema holds the immutable metadata model the graphmap compilers
// operate on: fragments (a node type's persistence shape), relationships
// (typed, directed edges with cardinality, nullability, and recursion
// bounds), and views (a root fragment plus its relationship graph, possibly
// nesting further views).
//
// Metadata is declared once, in code or via schema/load from YAML, and
// compiled by a Registry into linked, validated, cached models. Compiled
// models are read-only and safe to share across any number of concurrent
// compiler invocations.
//
// This package performs no I/O and never introspects Go types: the step that
// turns user type declarations into descriptors is an external collaborator.
package schema
