package truth

import (
	"context"
	"sort"
	"strings"
)

type opKind uint8

const (
	opDelete opKind = iota
	opInsert
	opUpdate
)

type editOp struct {
	kind  opKind
	at    int
	count int
	text  string
}

// Mutator records the operations of one edit transaction without applying
// them; Document.Edit classifies and applies the recorded batch once the
// caller's function returns (spec §4.5).
type Mutator struct {
	doc    *Document
	ops    []editOp
	active bool
}

// Delete records the removal of count statements starting at at.
func (m *Mutator) Delete(at, count int) error {
	if !m.active {
		return &NotInEditError{}
	}
	if at < 0 || count <= 0 {
		return &InvalidArgumentError{Func: "Delete", Arg: "at/count", Value: [2]int{at, count}}
	}
	m.ops = append(m.ops, editOp{kind: opDelete, at: at, count: count})
	return nil
}

// Insert records a new statement parsed from text at index at.
func (m *Mutator) Insert(text string, at int) error {
	if !m.active {
		return &NotInEditError{}
	}
	if at < 0 {
		return &InvalidArgumentError{Func: "Insert", Arg: "at", Value: at}
	}
	m.ops = append(m.ops, editOp{kind: opInsert, at: at, text: text})
	return nil
}

// Update records replacing the statement at index at with one parsed from
// text.
func (m *Mutator) Update(text string, at int) error {
	if !m.active {
		return &NotInEditError{}
	}
	if at < 0 {
		return &InvalidArgumentError{Func: "Update", Arg: "at", Value: at}
	}
	m.ops = append(m.ops, editOp{kind: opUpdate, at: at, text: text})
	return nil
}

// Edit opens a transaction against d's statement buffer (spec §4.5, §5).
// Reentrant calls on the same document fail with DoubleTransactionError.
func (d *Document) Edit(fn func(*Mutator)) error {
	return d.EditContext(context.Background(), fn)
}

// EditContext is Edit with an explicit context, used internally when the
// transaction's URI-statement deltas require loading a referenced
// document through the program's UriReader (spec §5 "suspension points").
func (d *Document) EditContext(ctx context.Context, fn func(*Mutator)) error {
	if d.inEdit {
		return &DoubleTransactionError{Document: d}
	}
	d.inEdit = true
	defer func() { d.inEdit = false }()

	m := &Mutator{doc: d, active: true}
	fn(m)
	m.active = false

	return d.applyTransaction(ctx, m.ops)
}

func (d *Document) applyTransaction(ctx context.Context, ops []editOp) error {
	if len(ops) == 0 {
		return nil
	}

	hasDelete, hasInsert, hasUpdate := false, false, false
	for _, op := range ops {
		switch op.kind {
		case opDelete:
			hasDelete = true
		case opInsert:
			hasInsert = true
		case opUpdate:
			hasUpdate = true
		}
	}

	switch {
	case hasUpdate && !hasDelete && !hasInsert:
		if applied := d.tryPureUpdate(ops); applied {
			return d.finalize(ctx)
		}
	case hasDelete && !hasInsert && !hasUpdate:
		if applied := d.tryPureDeleteOfLeaves(ops); applied {
			return d.finalize(ctx)
		}
	case hasInsert && !hasDelete && !hasUpdate:
		if applied := d.tryPureNoopInsert(ops); applied {
			return d.finalize(ctx)
		}
	}

	d.generalPath(ops)
	return d.finalize(ctx)
}

// tryPureUpdate implements fast path 1: updates that change a statement's
// text without changing its indent (spec §4.5).
func (d *Document) tryPureUpdate(ops []editOp) bool {
	byAt := map[int]string{}
	var ats []int
	for _, op := range ops {
		if _, seen := byAt[op.at]; !seen {
			ats = append(ats, op.at)
		}
		byAt[op.at] = op.text
	}
	sort.Ints(ats)

	type pair struct {
		at       int
		old, new *Statement
	}
	var pairs []pair
	for _, at := range ats {
		if at >= len(d.statements) {
			return false
		}
		old := d.statements[at]
		newSt := ParseStatement(byAt[at], d.terms)
		if old.Indent != newSt.Indent && !(old.IsNoop() && newSt.IsNoop()) {
			return false
		}
		pairs = append(pairs, pair{at: at, old: old, new: newSt})
	}

	oldStatements := make([]*Statement, len(pairs))
	newStatements := make([]*Statement, len(pairs))
	indices := make([]int, len(pairs))
	for i, p := range pairs {
		oldStatements[i], newStatements[i], indices[i] = p.old, p.new, p.at
	}

	d.root.deleteRecursive(oldStatements)
	d.program.publish(Cause{Kind: CauseInvalidate, Document: d, Statements: oldStatements, Indices: indices})

	for _, p := range pairs {
		p.old.dispose()
		p.new.line = p.at
		d.statements[p.at] = p.new
	}
	d.rebuildUriStatements()
	d.root.createRecursive(newStatements)

	d.program.publish(Cause{Kind: CauseRevalidate, Document: d, Statements: newStatements, Indices: indices})
	return true
}

// tryPureDeleteOfLeaves implements fast path 2: deleting statements with no
// descendants (spec §4.5).
func (d *Document) tryPureDeleteOfLeaves(ops []editOp) bool {
	indexSet := map[int]bool{}
	for _, op := range ops {
		for i := op.at; i < op.at+op.count; i++ {
			if i < 0 || i >= len(d.statements) {
				return false
			}
			indexSet[i] = true
		}
	}
	var indices []int
	for i := range indexSet {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		if d.HasDescendants(i) {
			return false
		}
	}

	removed := make([]*Statement, len(indices))
	for j, i := range indices {
		removed[j] = d.statements[i]
	}

	d.root.deleteRecursive(removed)
	d.program.publish(Cause{Kind: CauseInvalidate, Document: d, Statements: removed, Indices: indices})

	keep := make([]*Statement, 0, len(d.statements)-len(indices))
	for i, st := range d.statements {
		if !indexSet[i] {
			keep = append(keep, st)
		}
	}
	for _, st := range removed {
		st.dispose()
	}
	d.statements = keep
	d.reindex()
	d.rebuildUriStatements()

	d.program.publish(Cause{Kind: CauseRevalidate, Document: d})
	return true
}

// tryPureNoopInsert implements fast path 3: inserting only comment or
// whitespace statements, which need no invalidate/revalidate broadcast
// (spec §4.5).
func (d *Document) tryPureNoopInsert(ops []editOp) bool {
	type parsed struct {
		at int
		st *Statement
	}
	var inserts []parsed
	for _, op := range ops {
		st := ParseStatement(op.text, d.terms)
		if !st.IsNoop() {
			return false
		}
		inserts = append(inserts, parsed{at: op.at, st: st})
	}
	sort.Slice(inserts, func(i, j int) bool { return inserts[i].at < inserts[j].at })
	for _, ins := range inserts {
		at := ins.at
		if at > len(d.statements) {
			at = len(d.statements)
		}
		d.statements = append(d.statements, nil)
		copy(d.statements[at+1:], d.statements[at:])
		d.statements[at] = ins.st
	}
	d.reindex()
	return true
}

// generalPath implements spec §4.5's fallback: compute invalidated
// parents, apply every op in recorded order, then revalidate the parents
// that survived.
func (d *Document) generalPath(ops []editOp) {
	invalidated := map[*Statement]bool{}
	wholeDocument := false

	for _, op := range ops {
		switch op.kind {
		case opDelete:
			for i := op.at; i < op.at+op.count && i < len(d.statements); i++ {
				st := d.statements[i]
				if st.IsNoop() {
					continue
				}
				parent := d.GetParent(i)
				if parent == nil {
					wholeDocument = true
				} else {
					invalidated[parent] = true
				}
			}
		case opInsert, opUpdate:
			st := ParseStatement(op.text, d.terms)
			parent := d.GetParentFromPosition(op.at, st.Indent)
			if parent == nil {
				wholeDocument = true
			} else {
				invalidated[parent] = true
			}
		}
	}

	parents := pruneDescendantParents(d, invalidated)

	oldIndices := make([]int, len(parents))
	for i, p := range parents {
		oldIndices[i] = p.line
	}
	if wholeDocument {
		d.program.publish(Cause{Kind: CauseInvalidate, Document: d})
	} else {
		d.program.publish(Cause{Kind: CauseInvalidate, Document: d, Statements: parents, Indices: oldIndices})
	}

	var disposed []*Statement
	for _, op := range ops {
		switch op.kind {
		case opDelete:
			end := op.at + op.count
			if end > len(d.statements) {
				end = len(d.statements)
			}
			if op.at >= end {
				continue
			}
			disposed = append(disposed, d.statements[op.at:end]...)
			d.root.deleteRecursive(d.statements[op.at:end])
			d.statements = append(d.statements[:op.at], d.statements[end:]...)
		case opInsert:
			st := ParseStatement(op.text, d.terms)
			at := op.at
			if at > len(d.statements) {
				at = len(d.statements)
			}
			d.statements = append(d.statements, nil)
			copy(d.statements[at+1:], d.statements[at:])
			d.statements[at] = st
			d.root.createRecursive([]*Statement{st})
		case opUpdate:
			if op.at >= len(d.statements) {
				continue
			}
			old := d.statements[op.at]
			disposed = append(disposed, old)
			d.root.deleteRecursive([]*Statement{old})
			st := ParseStatement(op.text, d.terms)
			d.statements[op.at] = st
			d.root.createRecursive([]*Statement{st})
		}
	}
	for _, st := range disposed {
		st.dispose()
	}
	d.reindex()
	d.rebuildUriStatements()

	var surviving []*Statement
	var survivingIndices []int
	for _, p := range parents {
		if p.disposed {
			continue
		}
		surviving = append(surviving, p)
		survivingIndices = append(survivingIndices, p.line)
	}
	if wholeDocument {
		d.program.publish(Cause{Kind: CauseRevalidate, Document: d})
	} else {
		d.program.publish(Cause{Kind: CauseRevalidate, Document: d, Statements: surviving, Indices: survivingIndices})
	}
}

// pruneDescendantParents keeps only the highest ancestor in each
// invalidation chain (spec §4.5: "Prune invalidated parents whose ancestry
// is strictly a descendant of another invalidated parent").
func pruneDescendantParents(d *Document, invalidated map[*Statement]bool) []*Statement {
	var kept []*Statement
	for p := range invalidated {
		isDescendant := false
		for _, anc := range d.GetAncestry(p.line) {
			if invalidated[anc] {
				isDescendant = true
				break
			}
		}
		if !isDescendant {
			kept = append(kept, p)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].line < kept[j].line })
	return kept
}

// finalize runs the bookkeeping common to every edit path: resolving any
// URI-statement deltas, firing CauseEditComplete, and bumping the version
// stamp (spec §4.5 "Finalization").
func (d *Document) finalize(ctx context.Context) error {
	added, deleted := diffURIStatements(d.previousUriStatements, d.uriStatements)
	if len(added) > 0 || len(deleted) > 0 {
		faultsAdded, faultsRemoved := d.program.resolveReferences(ctx, d, deleted, added)
		if len(faultsAdded) > 0 || len(faultsRemoved) > 0 {
			d.program.publish(Cause{Kind: CauseFaultChange, FaultsAdded: faultsAdded, FaultsRemoved: faultsRemoved})
		}
	}
	d.previousUriStatements = append([]*Statement(nil), d.uriStatements...)

	d.bumpVersion()
	d.program.publish(Cause{Kind: CauseEditComplete, Document: d})
	return nil
}

// EditAtomic replaces the document's full text in one transaction,
// diffing newText against the current statement buffer by trimming the
// common leading and trailing lines and translating only the differing
// middle span into update/insert/delete calls (spec §4.5 "edit_atomic";
// the fallback case of delete-affected-lines-then-insert, specialized
// here to the common prefix/suffix case a file-watcher re-read produces).
func (d *Document) EditAtomic(ctx context.Context, newText string) error {
	oldLines := make([]string, len(d.statements))
	for i, st := range d.statements {
		oldLines[i] = st.SourceText
	}
	newLines := strings.Split(newText, "\n")

	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldLines)-prefix && suffix < len(newLines)-prefix &&
		oldLines[len(oldLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	oldMiddle := len(oldLines) - prefix - suffix
	newMiddle := len(newLines) - prefix - suffix
	common := oldMiddle
	if newMiddle < common {
		common = newMiddle
	}

	return d.EditContext(ctx, func(m *Mutator) {
		for i := 0; i < common; i++ {
			m.Update(newLines[prefix+i], prefix+i)
		}
		switch {
		case oldMiddle > newMiddle:
			m.Delete(prefix+common, oldMiddle-common)
		case newMiddle > oldMiddle:
			for i := common; i < newMiddle; i++ {
				m.Insert(newLines[prefix+i], prefix+i)
			}
		}
	})
}

func diffURIStatements(old, new []*Statement) (added, removed []*Statement) {
	oldSet := map[*Statement]bool{}
	for _, s := range old {
		oldSet[s] = true
	}
	newSet := map[*Statement]bool{}
	for _, s := range new {
		newSet[s] = true
		if !oldSet[s] {
			added = append(added, s)
		}
	}
	for _, s := range old {
		if !newSet[s] {
			removed = append(removed, s)
		}
	}
	return added, removed
}
