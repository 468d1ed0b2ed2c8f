// Package truth implements the incremental front end of a Truth compiler:
// a statement parser, a document model with indentation-based navigation,
// a transactional edit engine, a per-document phrase graph, an
// inter-document reference resolver, and a fault reporting substrate.
//
// # Statements
//
// A Truth document is a sequence of indentation-structured statements of
// the form:
//
//	declarations : annotations
//
// Declarations introduce types; annotations state supertype relationships,
// regular-expression-shaped patterns, or cross-document URI references.
//
// # Incrementality
//
// Text edits are applied through Document.Edit / Document.EditAtomic,
// which classify the edit, compute the minimal invalidation scope, and
// broadcast CauseInvalidate / CauseRevalidate events in strict pairs so
// that an external type analyzer can re-derive only what changed.
//
// # Scope
//
// This package does not perform semantic type analysis (only the
// invalidate/revalidate hook contract and a verification queue are
// exposed), does not perform URI I/O (see UriReader), and does not emit
// code. See SPEC_FULL.md for the full design.
package truth
