package truth

import (
	"context"
	"sort"
)

// resolveReferences recomputes doc's dependency edges from its current set
// of URI statements plus the deltas the edit engine just applied (spec
// §4.7). It mutates doc.dependencies, doc.uriStatements, doc.faults, and the
// dependents lists of affected documents, and returns the faults added and
// removed by this call (faultAdded/removed, spec §4.8's faultDelta).
func (p *Program) resolveReferences(ctx context.Context, doc *Document, deleted, added []*Statement) (faultsAdded, faultsRemoved []Fault) {
	// doc.uriStatements already contains added (it is the post-edit set);
	// subtract both deleted and added so proposed lists each statement once.
	existing := subtractStatements(doc.uriStatements, deleted)
	existing = subtractStatements(existing, added)
	proposed := append(append([]*Statement(nil), existing...), added...)
	sort.SliceStable(proposed, func(i, j int) bool { return proposed[i].line > proposed[j].line })

	var faults []Fault
	seenStore := map[string]bool{}
	faulty := map[*Statement]bool{}
	for _, st := range proposed {
		u, ok := uriOf(st)
		if !ok {
			continue
		}
		store := u.StoreString()
		if seenStore[store] {
			f := NewFault(FaultDuplicateReference, st)
			faults = append(faults, f)
			faulty[st] = true
		} else {
			seenStore[store] = true
		}
	}

	addedSet := map[*Statement]bool{}
	for _, st := range added {
		addedSet[st] = true
	}

	newDeps := make([]*Document, 0, len(proposed))
	newDepsSeen := map[*Document]bool{}

	// Preserve document order for the final dependencies/uri_statements
	// lists, processed from the line-descending proposed order above only
	// for the duplicate scan.
	ordered := append([]*Statement(nil), existing...)
	ordered = append(ordered, added...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].line < ordered[j].line })

	for _, st := range ordered {
		u, ok := uriOf(st)
		if !ok {
			continue
		}
		if faulty[st] {
			continue
		}
		if addedSet[st] {
			if doc.uri != nil && (doc.uri.Protocol == "http" || doc.uri.Protocol == "https") && u.Protocol == "file" {
				f := NewFault(FaultInsecureResourceReference, st)
				faults = append(faults, f)
			}
			target, ok := p.GetDocumentByURI(u)
			if !ok {
				loaded, err := p.AddDocumentFromURI(ctx, u, p.reader)
				if err != nil {
					f := NewFault(FaultUnresolvedResource, st)
					faults = append(faults, f)
					faulty[st] = true
					continue
				}
				target = loaded
			}
			if dependencyReaches(target, doc) {
				f := NewFault(FaultCircularResourceReference, st)
				faults = append(faults, f)
				faulty[st] = true
				continue
			}
			if !newDepsSeen[target] {
				newDepsSeen[target] = true
				newDeps = append(newDeps, target)
			}
			continue
		}
		// Pre-existing, non-added statement: its dependency was already
		// resolved when it was added; look it up again by URI.
		if target, ok := p.GetDocumentByURI(u); ok && !newDepsSeen[target] {
			newDepsSeen[target] = true
			newDeps = append(newDeps, target)
		}
	}

	oldDeps := doc.dependencies
	addedDeps, removedDeps := diffDocuments(oldDeps, newDeps)
	for _, dep := range addedDeps {
		dep.dependents = append(dep.dependents, doc)
	}
	for _, dep := range removedDeps {
		dep.dependents = removeDocument(dep.dependents, doc)
	}

	doc.dependencies = newDeps
	doc.uriStatements = ordered

	// ordered ∪ deleted covers every statement this call passed judgment
	// on (the full current uri_statements set plus anything just dropped);
	// drop their old verdicts before recording the fresh ones computed
	// above, so a fixed duplicate/cycle doesn't linger in doc.faults.
	judged := map[*Statement]bool{}
	for _, st := range ordered {
		judged[st] = true
	}
	for _, st := range deleted {
		judged[st] = true
	}
	oldFaults := doc.faults
	kept := oldFaults[:0:0]
	for _, f := range oldFaults {
		if stmt, ok := f.Source.(*Statement); ok && judged[stmt] {
			continue
		}
		kept = append(kept, f)
	}
	doc.faults = append(kept, faults...)
	return faultDelta(oldFaults, doc.faults)
}

func uriOf(st *Statement) (*Uri, bool) {
	if len(st.AllDeclarations) == 0 {
		return nil, false
	}
	return st.AllDeclarations[0].Subject.Uri()
}

func subtractStatements(all, remove []*Statement) []*Statement {
	if len(remove) == 0 {
		return append([]*Statement(nil), all...)
	}
	removed := map[*Statement]bool{}
	for _, s := range remove {
		removed[s] = true
	}
	var out []*Statement
	for _, s := range all {
		if !removed[s] {
			out = append(out, s)
		}
	}
	return out
}

func diffDocuments(oldList, newList []*Document) (added, removed []*Document) {
	oldSet := map[*Document]bool{}
	for _, d := range oldList {
		oldSet[d] = true
	}
	newSet := map[*Document]bool{}
	for _, d := range newList {
		newSet[d] = true
		if !oldSet[d] {
			added = append(added, d)
		}
	}
	for _, d := range oldList {
		if !newSet[d] {
			removed = append(removed, d)
		}
	}
	return added, removed
}

func removeDocument(list []*Document, target *Document) []*Document {
	out := list[:0]
	for _, d := range list {
		if d != target {
			out = append(out, d)
		}
	}
	return out
}
