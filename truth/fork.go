package truth

// Fork is a directed edge from a phrase along one clarifier term to the
// candidate phrases that term could resolve to, in ancestor scopes of the
// same document or the roots of documents in its dependency closure (spec
// §4.6, GLOSSARY "Fork / Outbound").
type Fork struct {
	Origin     *Phrase
	Via        TermID
	Successors []*Phrase
}

// Outbounds computes every Fork originating at p, one per clarifier term.
// Hypothetical phrases have no outbounds.
func (p *Phrase) Outbounds() []Fork {
	if p.isHypothetical {
		return nil
	}
	var forks []Fork
	for _, t := range p.clarifiers {
		subject := NewTermSubject(t, false)
		var successors []*Phrase
		for anc := p.parent; ; anc = anc.parent {
			successors = append(successors, anc.Peek(subject)...)
			if anc.IsRoot() {
				break
			}
		}
		for _, dep := range p.document.transitiveDependencies() {
			successors = append(successors, dep.root.Peek(subject)...)
		}
		forks = append(forks, Fork{Origin: p, Via: t, Successors: successors})
	}
	return forks
}

// transitiveDependencies returns every document reachable from d through
// dependency edges, without duplicates and excluding d itself.
func (d *Document) transitiveDependencies() []*Document {
	seen := map[*Document]bool{d: true}
	var out []*Document
	var walk func(cur *Document)
	walk = func(cur *Document) {
		for _, dep := range cur.dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
			walk(dep)
		}
	}
	walk(d)
	return out
}

// dependencyReaches reports whether target is reachable from start by
// following dependency edges (used by the reference resolver's cycle
// check, spec §4.7 step 4).
func dependencyReaches(start, target *Document) bool {
	seen := map[*Document]bool{}
	var walk func(cur *Document) bool
	walk = func(cur *Document) bool {
		if cur == target {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, dep := range cur.dependencies {
			if walk(dep) {
				return true
			}
		}
		return false
	}
	return walk(start)
}
