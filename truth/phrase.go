package truth

import (
	"sort"
	"strconv"
	"strings"
)

// phraseKey is the (terminal subject, clarifier key) pair that identifies a
// child Phrase within its parent's forwarding map (spec §4.6).
type phraseKey struct {
	subject      Subject
	clarifierKey string
}

// Phrase is a node in a document's per-subject trie: a path of declared
// subjects, annotated at each step by the clarifiers of the statement that
// introduced that step (spec §3, §4.6).
type Phrase struct {
	document *Document
	parent   *Phrase
	terminal Subject
	length   int

	clarifiers   []TermID
	clarifierKey string

	forwardings    map[phraseKey]*Phrase
	inflatingSpans []*Span

	isHypothetical bool
}

func newRootPhrase(d *Document) *Phrase {
	p := &Phrase{document: d, terminal: Void, forwardings: map[phraseKey]*Phrase{}}
	p.parent = p
	return p
}

// IsRoot reports whether p is its document's zero-length root phrase.
func (p *Phrase) IsRoot() bool { return p.parent == p }

// Terminal returns the subject at this phrase's leaf position.
func (p *Phrase) Terminal() Subject { return p.terminal }

// Length returns the number of subjects on the path from the root to p.
func (p *Phrase) Length() int { return p.length }

// IsHypothetical reports whether p was synthesized during lookup rather
// than inflated from an actual declaration span (spec §4.6).
func (p *Phrase) IsHypothetical() bool { return p.isHypothetical }

// InflatingSpans returns the declaration spans that justify p's existence.
// Empty for hypothetical phrases.
func (p *Phrase) InflatingSpans() []*Span { return p.inflatingSpans }

func clarifierKeyOf(ids []TermID) string {
	if len(ids) == 0 {
		return ""
	}
	sorted := append([]TermID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// child returns the existing or newly created non-hypothetical child of p
// keyed by (subject, clarifiers), registering it in p.forwardings.
func (p *Phrase) child(subject Subject, clarifiers []TermID) *Phrase {
	key := phraseKey{subject: subject, clarifierKey: clarifierKeyOf(clarifiers)}
	if c, ok := p.forwardings[key]; ok {
		return c
	}
	c := &Phrase{
		document:     p.document,
		parent:       p,
		terminal:     subject,
		length:       p.length + 1,
		clarifiers:   append([]TermID(nil), clarifiers...),
		clarifierKey: key.clarifierKey,
		forwardings:  map[phraseKey]*Phrase{},
	}
	p.forwardings[key] = c
	return c
}

// hypotheticalChild builds a transient phrase that is never registered in
// p.forwardings (spec §4.6, §9).
func (p *Phrase) hypotheticalChild(subject Subject) *Phrase {
	return &Phrase{
		document:       p.document,
		parent:         p,
		terminal:       subject,
		length:         p.length + 1,
		forwardings:    map[phraseKey]*Phrase{},
		isHypothetical: true,
	}
}

func (p *Phrase) pushSpan(span *Span) {
	for _, s := range p.inflatingSpans {
		if s == span {
			return
		}
	}
	p.inflatingSpans = append(p.inflatingSpans, span)
}

func (p *Phrase) removeSpan(span *Span) {
	for i, s := range p.inflatingSpans {
		if s == span {
			p.inflatingSpans = append(p.inflatingSpans[:i], p.inflatingSpans[i+1:]...)
			return
		}
	}
}

// Peek returns every child phrase keyed by subject, ignoring clarifiers. A
// result of length ≥2 is a homograph (spec §4.6).
func (p *Phrase) Peek(subject Subject) []*Phrase {
	var out []*Phrase
	for key, c := range p.forwardings {
		if key.subject.Equal(subject) {
			out = append(out, c)
		}
	}
	return out
}

// PeekClarified returns the single child phrase keyed by (subject,
// clarifierKey), if any.
func (p *Phrase) PeekClarified(subject Subject, clarifierKey string) (*Phrase, bool) {
	key := phraseKey{subject: subject, clarifierKey: clarifierKey}
	c, ok := p.forwardings[key]
	return c, ok
}

// createRecursive inflates the trie with every declaration span in
// statements (spec §4.6).
func (root *Phrase) createRecursive(statements []*Statement) {
	for _, st := range statements {
		if st.IsNoop() {
			continue
		}
		for _, span := range st.AllDeclarations {
			root.inflate(span)
		}
	}
}

// deleteRecursive removes every declaration span in statements from the
// trie, disposing phrases whose inflating_spans becomes empty (spec §4.6).
func (root *Phrase) deleteRecursive(statements []*Statement) {
	for _, st := range statements {
		if st.IsNoop() {
			continue
		}
		for _, span := range st.AllDeclarations {
			root.deflate(span)
		}
	}
}

// inflate walks every spine of span: one path per Cartesian combination of
// ancestor-statement declarations, terminating at span's own subject (spec
// §4.6: "a span's spines enumerate all paths formed by crossing
// declarations of ancestor statements").
func (root *Phrase) inflate(span *Span) {
	st := span.Statement()
	if st == nil {
		return
	}
	doc := root.document
	ancestors := doc.GetAncestry(st.line)
	for _, combo := range cartesianDeclarations(ancestors) {
		node := root
		for i, declSpan := range combo {
			node = node.child(declSpan.Subject, annotationTermIDs(ancestors[i].AllAnnotations))
			node.pushSpan(span)
		}
		leaf := node.child(span.Subject, annotationTermIDs(st.AllAnnotations))
		leaf.pushSpan(span)
		doc.program.enqueueVerification(VerificationRequest{Document: doc, Phrase: leaf})
	}
}

func (root *Phrase) deflate(span *Span) {
	for _, p := range root.allPhrases() {
		p.removeSpan(span)
	}
	root.disposeEmptyRecursive()
}

func (root *Phrase) allPhrases() []*Phrase {
	var out []*Phrase
	var walk func(p *Phrase)
	walk = func(p *Phrase) {
		out = append(out, p)
		for _, c := range p.forwardings {
			walk(c)
		}
	}
	walk(root)
	return out
}

// disposeEmptyRecursive prunes, bottom-up, any child whose inflating_spans
// and forwardings have both gone empty.
func (p *Phrase) disposeEmptyRecursive() {
	for key, c := range p.forwardings {
		c.disposeEmptyRecursive()
		if len(c.inflatingSpans) == 0 && len(c.forwardings) == 0 {
			delete(p.forwardings, key)
		}
	}
}

// cartesianDeclarations returns one slice per path formed by choosing one
// declaration from each ancestor statement, root-first. A document-root
// statement (no ancestors) yields a single empty combination.
func cartesianDeclarations(ancestors []*Statement) [][]*Span {
	combos := [][]*Span{{}}
	for _, anc := range ancestors {
		var next [][]*Span
		for _, c := range combos {
			for _, d := range anc.AllDeclarations {
				nc := make([]*Span, len(c), len(c)+1)
				copy(nc, c)
				nc = append(nc, d)
				next = append(next, nc)
			}
		}
		combos = next
	}
	return combos
}

func annotationTermIDs(spans []*Span) []TermID {
	var ids []TermID
	for _, a := range spans {
		if id, ok := a.Subject.TermID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FromPathComponents resolves a dotted term path against the document's
// phrase trie (spec §4.6). It returns a single phrase when the path
// resolves unambiguously, or the set of candidates when more than one
// first-level phrase matches and clarifierKey does not disambiguate it. An
// unattested step yields a hypothetical continuation rather than failure.
func (d *Document) FromPathComponents(path []TermID, clarifierKey string) (single *Phrase, ambiguous []*Phrase) {
	if len(path) == 0 {
		return nil, nil
	}
	level := d.root.Peek(NewTermSubject(path[0], false))
	if clarifierKey != "" {
		var narrowed []*Phrase
		for _, c := range level {
			if c.clarifierKey == clarifierKey {
				narrowed = append(narrowed, c)
			}
		}
		level = narrowed
	}
	if len(level) == 0 {
		level = []*Phrase{d.root.hypotheticalChild(NewTermSubject(path[0], false))}
	}
	for _, term := range path[1:] {
		var next []*Phrase
		for _, node := range level {
			matches := node.Peek(NewTermSubject(term, false))
			switch len(matches) {
			case 0:
				next = append(next, node.hypotheticalChild(NewTermSubject(term, false)))
			case 1:
				next = append(next, matches[0])
			default:
				return nil, matches
			}
		}
		level = next
	}
	if len(level) == 1 {
		return level[0], nil
	}
	return nil, level
}
