package truth

import (
	"context"
	"testing"
)

type mapReader map[string]string

func (r mapReader) Load(_ context.Context, u *Uri) (string, error) {
	text, ok := r[u.Path]
	if !ok {
		return "", &InvalidArgumentError{Func: "mapReader.Load", Arg: "u", Value: u.StoreString()}
	}
	return text, nil
}

// TestResolverS3DuplicateURI pins spec §8 scenario S3: a document with two
// identical URI references has one UriStatement faulted and keeps at most
// one dependency for that target.
func TestResolverS3DuplicateURI(t *testing.T) {
	r := mapReader{"a": "root"}
	p := NewProgram(WithUriReader(r))
	doc, err := p.AddDocumentFromText("file//a\nfile//a")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}

	found := false
	for _, f := range doc.Faults() {
		if f.Code == FaultDuplicateReference {
			found = true
		}
	}
	if !found {
		t.Fatalf("faults = %+v, want a DuplicateReference fault", doc.Faults())
	}
	if len(doc.Dependencies()) > 1 {
		t.Fatalf("Dependencies() = %+v, want at most one dependency on the shared target", doc.Dependencies())
	}
}

// TestResolverDuplicateWinnerIsLastOccurrence pins the implementation's
// resolution of spec §9's open question on duplicate-URI ordering: the
// proposed list is scanned highest-line-first, so the last occurrence in
// the document is seen first and wins; every earlier occurrence is flagged.
func TestResolverDuplicateWinnerIsLastOccurrence(t *testing.T) {
	r := mapReader{"a": "root"}
	p := NewProgram(WithUriReader(r))
	doc, err := p.AddDocumentFromText("file//a\nfile//a\nfile//a")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}

	var faultedLines []int
	for _, f := range doc.Faults() {
		if f.Code == FaultDuplicateReference {
			if stmt, ok := f.Source.(*Statement); ok {
				faultedLines = append(faultedLines, stmt.line)
			}
		}
	}
	if len(faultedLines) != 2 || faultedLines[0] != 1 || faultedLines[1] != 0 {
		t.Fatalf("faulted lines = %v, want [1, 0] in scan order (the last occurrence at line 2 wins)", faultedLines)
	}
}

// TestResolverS4CircularReference pins spec §8 scenario S4: once X depends
// on Y, adding a reference from Y back to X is refused as a cycle and does
// not extend Y.dependencies.
func TestResolverS4CircularReference(t *testing.T) {
	p := NewProgram()
	x, err := p.AddDocumentFromText("")
	if err != nil {
		t.Fatalf("AddDocumentFromText(x): %v", err)
	}
	y, err := p.AddDocumentFromText("")
	if err != nil {
		t.Fatalf("AddDocumentFromText(y): %v", err)
	}
	if err := p.UpdateURI(x, &Uri{Protocol: "file", Path: "x"}); err != nil {
		t.Fatalf("UpdateURI(x): %v", err)
	}
	if err := p.UpdateURI(y, &Uri{Protocol: "file", Path: "y"}); err != nil {
		t.Fatalf("UpdateURI(y): %v", err)
	}

	// X -> Y first: no cycle yet.
	if err := x.Edit(func(m *Mutator) { m.Update("file//y", 0) }); err != nil {
		t.Fatalf("Edit(x): %v", err)
	}
	if len(x.Dependencies()) != 1 || x.Dependencies()[0] != y {
		t.Fatalf("x.Dependencies() = %+v, want [y]", x.Dependencies())
	}

	// Y -> X would close the cycle X -> Y -> X: refused.
	if err := y.Edit(func(m *Mutator) { m.Update("file//x", 0) }); err != nil {
		t.Fatalf("Edit(y): %v", err)
	}
	foundCycle := false
	for _, f := range y.Faults() {
		if f.Code == FaultCircularResourceReference {
			foundCycle = true
		}
	}
	if !foundCycle {
		t.Fatalf("y faults = %+v, want CircularResourceReference", y.Faults())
	}
	for _, dep := range y.Dependencies() {
		if dep == x {
			t.Fatalf("y.Dependencies() = %+v, must not include x after a refused cyclic reference", y.Dependencies())
		}
	}
}

func TestResolverInsecureHttpsToFile(t *testing.T) {
	r := mapReader{"a": "root"}
	p := NewProgram(WithUriReader(r))
	doc, err := p.AddDocumentFromText("")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}
	if err := p.UpdateURI(doc, &Uri{Protocol: "https", Path: "b"}); err != nil {
		t.Fatalf("UpdateURI: %v", err)
	}

	if err := doc.Edit(func(m *Mutator) { m.Update("file//a", 0) }); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	found := false
	for _, f := range doc.Faults() {
		if f.Code == FaultInsecureResourceReference {
			found = true
		}
	}
	if !found {
		t.Fatalf("faults = %+v, want InsecureResourceReference for an https document referencing file://", doc.Faults())
	}
}

func TestResolverUnresolvedResource(t *testing.T) {
	p := NewProgram(WithUriReader(mapReader{}))
	doc, err := p.AddDocumentFromText("file//missing")
	if err != nil {
		t.Fatalf("AddDocumentFromText: %v", err)
	}

	found := false
	for _, f := range doc.Faults() {
		if f.Code == FaultUnresolvedResource {
			found = true
		}
	}
	if !found {
		t.Fatalf("faults = %+v, want UnresolvedResource", doc.Faults())
	}
	if len(doc.Dependencies()) != 0 {
		t.Fatalf("Dependencies() = %+v, want none for an unresolved reference", doc.Dependencies())
	}
}
