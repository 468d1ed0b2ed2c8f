package truth

import (
	"strings"

	"github.com/google/uuid"
)

// Document is an ordered buffer of Statements plus the document-level
// derived state the rest of the package maintains incrementally: the
// phrase graph root, the dependency graph, and a version stamp (spec §3).
type Document struct {
	ID      uuid.UUID
	uri     *Uri
	program *Program
	terms   *termTable

	statements []*Statement
	root       *Phrase

	uriStatements         []*Statement
	previousUriStatements []*Statement
	dependencies          []*Document
	dependents            []*Document

	version uint64
	inEdit  bool

	faults []Fault
}

func newDocument(program *Program) *Document {
	d := &Document{
		ID:      uuid.New(),
		program: program,
		terms:   program.terms,
	}
	d.root = newRootPhrase(d)
	return d
}

// newDocumentFromText parses text into a fresh Document. It does not
// resolve URI statements into dependencies; callers use
// Program.resolveReferences to do that as part of opening the document.
func newDocumentFromText(program *Program, text string) *Document {
	d := newDocument(program)
	lines := strings.Split(text, "\n")
	d.statements = make([]*Statement, len(lines))
	for i, line := range lines {
		st := ParseStatement(line, d.terms)
		st.line = i
		d.statements[i] = st
	}
	d.rebuildUriStatements()
	d.previousUriStatements = append([]*Statement(nil), d.uriStatements...)
	d.root.createRecursive(d.statements)
	return d
}

// URI returns the document's current URI, or nil if unassigned.
func (d *Document) URI() *Uri { return d.uri }

// Version returns the monotonically increasing edit stamp (spec §3).
func (d *Document) Version() uint64 { return d.version }

// Statements returns the document's current statement buffer. Callers must
// not mutate the returned slice.
func (d *Document) Statements() []*Statement { return d.statements }

// UriStatements returns the subsequence of statements whose declaration is
// a Uri, in document order (spec §3).
func (d *Document) UriStatements() []*Statement { return d.uriStatements }

// Dependencies returns the documents this document references, in order of
// first occurrence of their URI (spec §3).
func (d *Document) Dependencies() []*Document { return d.dependencies }

// Dependents returns the documents that reference this document.
func (d *Document) Dependents() []*Document { return d.dependents }

// Faults returns the union of per-statement parse faults and
// reference-resolution faults (spec §3).
func (d *Document) Faults() []Fault {
	var all []Fault
	for _, st := range d.statements {
		all = append(all, st.StatementFaults...)
	}
	all = append(all, d.faults...)
	return all
}

// ToString reconstructs the document's text. keepOriginal is accepted for
// API symmetry with the source behavior this package implements; the
// round-trip is always exact because a Statement's SourceText is its only
// representation of the line (spec §8 testable property 4).
func (d *Document) ToString(keepOriginal bool) string {
	texts := make([]string, len(d.statements))
	for i, st := range d.statements {
		texts[i] = st.SourceText
	}
	return strings.Join(texts, "\n")
}

func (d *Document) rebuildUriStatements() {
	d.uriStatements = nil
	for _, st := range d.statements {
		if st.HasUri {
			d.uriStatements = append(d.uriStatements, st)
		}
	}
}

func (d *Document) reindex() {
	for i, st := range d.statements {
		st.line = i
	}
}

func (d *Document) bumpVersion() { d.version++ }
