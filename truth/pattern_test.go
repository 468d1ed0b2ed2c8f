package truth

import "testing"

// TestParseStatementS6 pins spec §8 scenario S6: a total numeric pattern
// that rejects the empty string and matches a digit run.
func TestParseStatementS6(t *testing.T) {
	terms := newTermTable()
	st := ParseStatement(`/\d+/ : Number`, terms)

	if !st.HasPattern || !st.HasTotalPattern {
		t.Fatalf("expected a total pattern, got HasPattern=%v HasTotalPattern=%v", st.HasPattern, st.HasTotalPattern)
	}
	if len(st.AllDeclarations) != 1 {
		t.Fatalf("AllDeclarations = %+v, want exactly one pattern declaration", st.AllDeclarations)
	}
	p, ok := st.AllDeclarations[0].Subject.Pattern()
	if !ok {
		t.Fatalf("declaration subject is not a Pattern")
	}
	if p.Matches("") {
		t.Fatalf("expected the compiled matcher to reject the empty string")
	}
	if !p.Matches("12") {
		t.Fatalf("expected the compiled matcher to accept \"12\"")
	}
	if st.JointPosition < 0 {
		t.Fatalf("expected the whitespace before \":\" to not defeat joint detection")
	}
	if len(st.AllAnnotations) != 1 || st.AllAnnotations[0].Subject.String(terms) != "Number" {
		t.Fatalf("AllAnnotations = %+v, want exactly one annotation \"Number\"", st.AllAnnotations)
	}
	for _, f := range st.StatementFaults {
		if f.Code == FaultPatternCanMatchEmpty {
			t.Fatalf("did not expect PatternCanMatchEmpty for a pattern that rejects the empty string")
		}
		if f.Code == FaultPatternWithoutAnnotation {
			t.Fatalf("did not expect PatternWithoutAnnotation: the statement has an annotation")
		}
	}
}

func TestPatternPartial(t *testing.T) {
	terms := newTermTable()
	// No closing "/" on the line: the pattern body runs to end of line,
	// leaving no room for a joint or annotations (spec §4.2 step 6, §4.3
	// totality).
	st := ParseStatement(`/\d+`, terms)

	if !st.HasPattern || st.HasTotalPattern || !st.HasPartialPattern {
		t.Fatalf("expected a partial pattern, got HasPattern=%v HasTotalPattern=%v HasPartialPattern=%v",
			st.HasPattern, st.HasTotalPattern, st.HasPartialPattern)
	}
	p, _ := st.AllDeclarations[0].Subject.Pattern()
	if !p.Matches("123abc") {
		t.Fatalf("expected a partial pattern to match a prefix")
	}
}

func TestPatternCanMatchEmptyFault(t *testing.T) {
	terms := newTermTable()
	st := ParseStatement(`/a*/ : X`, terms)

	found := false
	for _, f := range st.StatementFaults {
		if f.Code == FaultPatternCanMatchEmpty {
			found = true
		}
	}
	if !found {
		t.Fatalf("faults = %+v, want PatternCanMatchEmpty for a pattern that matches \"\"", st.StatementFaults)
	}
}

func TestPatternWithoutAnnotationFault(t *testing.T) {
	terms := newTermTable()
	st := ParseStatement(`/a/`, terms)

	found := false
	for _, f := range st.StatementFaults {
		if f.Code == FaultPatternWithoutAnnotation {
			found = true
		}
	}
	if !found {
		t.Fatalf("faults = %+v, want PatternWithoutAnnotation", st.StatementFaults)
	}
}

func TestPatternPartialWithCombinatorFault(t *testing.T) {
	terms := newTermTable()
	// A partial pattern (no closing "/") whose body can match a literal
	// comma must be flagged: the comma would otherwise be ambiguous with
	// the declaration/annotation list separator.
	st := ParseStatement(`/,*`, terms)

	if st.HasTotalPattern {
		t.Fatalf("expected a partial (unclosed) pattern")
	}
	found := false
	for _, f := range st.StatementFaults {
		if f.Code == FaultPatternPartialWithCombinator {
			found = true
		}
	}
	if !found {
		t.Fatalf("faults = %+v, want PatternPartialWithCombinator", st.StatementFaults)
	}
}

func TestPatternSetWithRangeAndNegation(t *testing.T) {
	terms := newTermTable()
	st := ParseStatement(`/[^a-z]+/ : X`, terms)

	p, ok := st.AllDeclarations[0].Subject.Pattern()
	if !ok {
		t.Fatalf("expected a Pattern subject")
	}
	if !p.Matches("123") {
		t.Fatalf("expected [^a-z]+ to match a non-lowercase run")
	}
	if p.Matches("abc") {
		t.Fatalf("expected [^a-z]+ to reject an all-lowercase run")
	}
}

func TestPatternGroupAlternation(t *testing.T) {
	terms := newTermTable()
	st := ParseStatement(`/(cat|dog)/ : X`, terms)

	p, ok := st.AllDeclarations[0].Subject.Pattern()
	if !ok {
		t.Fatalf("expected a Pattern subject")
	}
	if !p.Matches("cat") || !p.Matches("dog") {
		t.Fatalf("expected (cat|dog) to match both alternatives")
	}
	if p.Matches("cow") {
		t.Fatalf("expected (cat|dog) to reject a non-member")
	}
}

func TestPatternQuantifiers(t *testing.T) {
	terms := newTermTable()

	cases := []struct {
		pattern string
		match   string
		want    bool
	}{
		{`/a{2}/`, "aa", true},
		{`/a{2}/`, "a", false},
		{`/a{2,}/`, "aaaa", true},
		{`/a{1,3}/`, "aaaa", false},
		{`/a{1,3}/`, "aaa", true},
	}
	for _, tc := range cases {
		st := ParseStatement(tc.pattern+" : X", terms)
		p, ok := st.AllDeclarations[0].Subject.Pattern()
		if !ok {
			t.Fatalf("%s: expected a Pattern subject", tc.pattern)
		}
		if got := p.Matches(tc.match); got != tc.want {
			t.Fatalf("%s.Matches(%q) = %v, want %v", tc.pattern, tc.match, got, tc.want)
		}
	}
}

func TestPatternCRCStableAcrossEquivalentAnnotationOrder(t *testing.T) {
	terms := newTermTable()
	st1 := ParseStatement(`/a/ : B, C`, terms)
	st2 := ParseStatement(`/a/ : C, B`, terms)

	if len(st1.AllAnnotations) != 2 || len(st2.AllAnnotations) != 2 {
		t.Fatalf("AllAnnotations = %+v / %+v, want two annotations on each statement", st1.AllAnnotations, st2.AllAnnotations)
	}
	p1, _ := st1.AllDeclarations[0].Subject.Pattern()
	p2, _ := st2.AllDeclarations[0].Subject.Pattern()
	if p1.CRC() == 0 || p2.CRC() == 0 {
		t.Fatalf("CRC() = %d and %d, want both nonzero for a non-empty annotation set", p1.CRC(), p2.CRC())
	}
	if p1.CRC() != p2.CRC() {
		t.Fatalf("CRC() = %d and %d, want equal regardless of annotation order", p1.CRC(), p2.CRC())
	}
}

func TestPatternInfixHole(t *testing.T) {
	terms := newTermTable()
	st := ParseStatement(`/<T> : X`, terms)

	if st.HasTotalPattern {
		t.Fatalf("expected a partial (unclosed) pattern")
	}
	p, ok := st.AllDeclarations[0].Subject.Pattern()
	if !ok {
		t.Fatalf("expected a Pattern subject")
	}
	var sawInfix bool
	for _, u := range p.Units {
		if u.Kind == RegexInfix {
			sawInfix = true
			if u.Infix == nil || len(u.Infix.Declarations) != 1 {
				t.Fatalf("infix unit = %+v, want one declared identifier T", u.Infix)
			}
		}
	}
	if !sawInfix {
		t.Fatalf("units = %+v, want an infix hole unit", p.Units)
	}
}
