package truth

import "testing"

func TestPhraseInflateBuildsSpine(t *testing.T) {
	p := NewProgram()
	doc, err := p.AddDocumentFromText("A : B\n\tC : D")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}

	aID := mustTermID(t, doc.Statements()[0].AllDeclarations[0].Subject)
	cID := mustTermID(t, doc.Statements()[1].AllDeclarations[0].Subject)

	single, ambiguous := doc.FromPathComponents([]TermID{aID, cID}, "")
	if ambiguous != nil {
		t.Fatalf("FromPathComponents ambiguous = %+v, want a single match", ambiguous)
	}
	if single == nil {
		t.Fatalf("FromPathComponents = nil, want the inflated C phrase")
	}
	if single.IsHypothetical() {
		t.Fatalf("expected the resolved phrase to be non-hypothetical")
	}
	if single.Terminal() != doc.Statements()[1].AllDeclarations[0].Subject {
		t.Fatalf("Terminal() = %+v, want the C subject", single.Terminal())
	}
	if single.Length() != 2 {
		t.Fatalf("Length() = %d, want 2", single.Length())
	}
	if len(single.InflatingSpans()) != 1 || single.InflatingSpans()[0] != doc.Statements()[1].AllDeclarations[0] {
		t.Fatalf("InflatingSpans() = %+v, want the C declaration span", single.InflatingSpans())
	}
}

func TestPhraseFromPathComponentsHypotheticalContinuation(t *testing.T) {
	p := NewProgram()
	doc, err := p.AddDocumentFromText("A : B")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}
	aID := mustTermID(t, doc.Statements()[0].AllDeclarations[0].Subject)

	// "Z" was never declared anywhere under A; the lookup must still
	// succeed with a hypothetical continuation rather than fail.
	zID := doc.terms.intern("Z")

	single, ambiguous := doc.FromPathComponents([]TermID{aID, zID}, "")
	if ambiguous != nil {
		t.Fatalf("FromPathComponents ambiguous = %+v, want a single hypothetical phrase", ambiguous)
	}
	if single == nil || !single.IsHypothetical() {
		t.Fatalf("FromPathComponents = %+v, want a hypothetical phrase", single)
	}
	if len(single.InflatingSpans()) != 0 {
		t.Fatalf("hypothetical phrase must carry no inflating spans, got %+v", single.InflatingSpans())
	}
}

func TestPhrasePeekDetectsHomograph(t *testing.T) {
	p := NewProgram()
	doc, err := p.AddDocumentFromText("A : B\nA : C")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}
	aSubject := doc.Statements()[0].AllDeclarations[0].Subject

	matches := doc.root.Peek(aSubject)
	if len(matches) != 2 {
		t.Fatalf("Peek(A) = %+v, want two phrases (a homograph: same subject, different clarifiers)", matches)
	}
}

func TestPhraseDeflateOnDelete(t *testing.T) {
	p := NewProgram()
	doc, err := p.AddDocumentFromText("A : B\n\tC : D")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}
	aID := mustTermID(t, doc.Statements()[0].AllDeclarations[0].Subject)
	cID := mustTermID(t, doc.Statements()[1].AllDeclarations[0].Subject)

	if single, _ := doc.FromPathComponents([]TermID{aID, cID}, ""); single == nil || single.IsHypothetical() {
		t.Fatalf("expected C to resolve before deletion")
	}

	if err := doc.Edit(func(m *Mutator) { m.Delete(1, 1) }); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	single, _ := doc.FromPathComponents([]TermID{aID, cID}, "")
	if single != nil && !single.IsHypothetical() {
		t.Fatalf("expected C's phrase to be disposed or hypothetical after deletion, got %+v", single)
	}
}

func TestPhraseOutboundsResolvesClarifierToDeclaration(t *testing.T) {
	p := NewProgram()
	doc, err := p.AddDocumentFromText("Dog : Mammal\nRex : Dog")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}
	dogID := mustTermID(t, doc.Statements()[0].AllDeclarations[0].Subject)
	rexID := mustTermID(t, doc.Statements()[1].AllDeclarations[0].Subject)

	rex, _ := doc.FromPathComponents([]TermID{rexID}, "")
	if rex == nil {
		t.Fatalf("expected Rex to resolve to a phrase")
	}

	forks := rex.Outbounds()
	if len(forks) != 1 || forks[0].Via != dogID {
		t.Fatalf("Outbounds() = %+v, want one fork via the Dog clarifier", forks)
	}
	if len(forks[0].Successors) != 1 {
		t.Fatalf("fork successors = %+v, want the Dog declaration phrase", forks[0].Successors)
	}
	if forks[0].Successors[0].Terminal() != doc.Statements()[0].AllDeclarations[0].Subject {
		t.Fatalf("fork successor terminal = %+v, want the Dog subject", forks[0].Successors[0].Terminal())
	}
}

func TestPhraseOutboundsEmptyForHypothetical(t *testing.T) {
	p := NewProgram()
	doc, err := p.AddDocumentFromText("A : B")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}
	h := doc.root.hypotheticalChild(NewTermSubject(doc.terms.intern("Z"), false))
	if forks := h.Outbounds(); forks != nil {
		t.Fatalf("Outbounds() on a hypothetical phrase = %+v, want nil", forks)
	}
}
