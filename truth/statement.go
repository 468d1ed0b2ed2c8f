package truth

import "strings"

// Statement is one parsed source line: declarations, an optional joint,
// annotations, and any faults raised while parsing it (spec §3, §4.2). It
// is immutable after construction except for the disposed flag set when
// its owning Document removes it.
type Statement struct {
	SourceText    string
	Indent        int
	JointPosition int // byte offset, or -1 if the statement has no joint
	Sum           string

	AllDeclarations []*Span
	AllAnnotations  []*Span
	CruftObjects    []FaultSource
	StatementFaults []Fault

	IsWhitespace      bool
	IsComment         bool
	IsRefresh         bool
	IsVacuous         bool
	IsCruft           bool
	HasUri            bool
	HasPattern        bool
	HasTotalPattern   bool
	HasPartialPattern bool

	disposed bool
	line     int
}

// IsNoop reports whether the statement contributes nothing to the document
// tree (spec §3 invariant (i): is_noop ⇔ is_comment ∨ is_whitespace).
func (st *Statement) IsNoop() bool { return st.IsComment || st.IsWhitespace }

// Line returns the statement's current 0-based index within its document.
func (st *Statement) Line() int { return st.line }

// IsDisposed reports whether the statement has been removed from its
// document (spec §5).
func (st *Statement) IsDisposed() bool { return st.disposed }

func (st *Statement) dispose() {
	st.disposed = true
	for _, d := range st.AllDeclarations {
		d.parent = nil
	}
	for _, a := range st.AllAnnotations {
		a.parent = nil
	}
}

// addFault records a fault against this statement, adding its source to
// cruft_objects when the fault's severity is error (spec §4.2, §7).
func (st *Statement) addFault(f Fault) {
	st.StatementFaults = append(st.StatementFaults, f)
	if !f.IsError() {
		return
	}
	for _, c := range st.CruftObjects {
		if c == f.Source {
			return
		}
	}
	st.CruftObjects = append(st.CruftObjects, f.Source)
}

// ParseStatement parses one line of source text into a Statement (spec
// §4.2). It never fails: unparsable text is modeled as a cruft Statement
// carrying faults, preserving the one-statement-per-line invariant.
func ParseStatement(text string, terms *termTable) *Statement {
	st := &Statement{SourceText: text, JointPosition: -1}
	sc := NewScanner(text)

	ws := sc.ReadWhitespace()
	st.Indent = len(ws)
	if strings.ContainsRune(ws, ' ') && strings.ContainsRune(ws, '\t') {
		st.addFault(NewFault(FaultTabsAndSpaces, st))
	}

	if !sc.More() {
		st.IsWhitespace = true
		return st
	}

	if sc.Peek(commentToken) {
		rest := sc.text[sc.Pos()+len(commentToken):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			st.IsComment = true
			return st
		}
	}

	switch {
	case sc.Peek(combinatorToken):
		st.IsCruft = true
		st.addFault(NewFault(FaultStatementBeginsWithComma, st))
	case sc.Peek(listOperator):
		st.IsCruft = true
		st.addFault(NewFault(FaultStatementBeginsWithEllipsis, st))
	case sc.PeekByte('\\') && len(sc.Rest()) > 1 && (sc.Rest()[1] == ' ' || sc.Rest()[1] == '\t'):
		st.IsCruft = true
		st.addFault(NewFault(FaultStatementBeginsWithEscapedSpace, st))
	case sc.Rest() == `\`:
		st.IsCruft = true
		st.addFault(NewFault(FaultStatementContainsOnlyEscapeCharacter, st))
	}

	if uri, ok := tryParseURIStatement(sc); ok {
		st.HasUri = true
		st.AllDeclarations = append(st.AllDeclarations, &Span{
			Boundary: Boundary{0, sc.Pos()},
			Subject:  NewUriSubject(uri),
			parent:   st,
		})
		return st
	}

	if sc.Peek(patternDelim) {
		p, pfaults := ParsePattern(sc, terms, st)
		for _, f := range pfaults {
			st.addFault(f)
		}
		var declSpan *Span
		if p != nil {
			st.HasPattern = true
			st.HasTotalPattern = p.Total
			st.HasPartialPattern = !p.Total
			declSpan = &Span{Boundary: Boundary{0, sc.Pos()}, Subject: NewPatternSubject(p), parent: st}
			st.AllDeclarations = append(st.AllDeclarations, declSpan)
		}
		sc.ReadWhitespace()
		st.tryReadJoint(sc)
		if st.JointPosition >= 0 {
			st.AllAnnotations = parseSubjectSpans(sc, terms, st, false)
			st.Sum = strings.TrimSpace(text[st.JointPosition+1:])
		}
		if p != nil {
			if len(st.AllAnnotations) == 0 {
				st.addFault(NewFault(FaultPatternWithoutAnnotation, st))
			}
			p.ComputeCRC(annotationTexts(st.AllAnnotations, terms))
		}
		st.finalizeFlags()
		st.runPostParseValidations()
		return st
	}

	st.AllDeclarations = parseSubjectSpans(sc, terms, st, true)
	st.tryReadJoint(sc)
	if st.JointPosition >= 0 {
		st.AllAnnotations = parseSubjectSpans(sc, terms, st, false)
		st.Sum = strings.TrimSpace(text[st.JointPosition+1:])
	}
	st.finalizeFlags()
	st.runPostParseValidations()
	return st
}

func tryParseURIStatement(sc *Scanner) (*Uri, bool) {
	start := sc.Pos()
	for proto := range registeredProtocols {
		marker := proto + "//"
		if sc.Peek(marker) {
			end := findWhitespace(sc.text, sc.Pos())
			tok := sc.text[sc.Pos():end]
			if u, ok := ParseUriToken(tok); ok {
				sc.SetPos(end)
				return u, true
			}
		}
	}
	sc.SetPos(start)
	return nil, false
}

func findWhitespace(text string, from int) int {
	i := from
	for i < len(text) {
		if text[i] == ' ' || text[i] == '\t' {
			break
		}
		i++
	}
	return i
}

func isJointAt(sc *Scanner) bool {
	if !sc.PeekByte(':') {
		return false
	}
	rest := sc.Rest()[1:]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// parseSubjectSpans reads a combinator-separated identifier list into
// Spans. When stopAtJoint is true, reading halts before a joint-shaped
// colon (spec §4.2 step 7); otherwise it runs to end of line (step 9).
func parseSubjectSpans(sc *Scanner, terms *termTable, parent *Statement, stopAtJoint bool) []*Span {
	delims := []byte{combinatorToken[0]}
	if stopAtJoint {
		delims = append(delims, ':')
	}
	var spans []*Span
	for {
		sc.ReadWhitespace()
		if !sc.More() {
			break
		}
		if stopAtJoint && isJointAt(sc) {
			break
		}
		rawStart := sc.Pos()
		raw := sc.ReadUntil(delims...)
		trimmed := strings.TrimRight(raw, " \t")
		if trimmed == "" {
			break
		}
		start := rawStart
		end := rawStart + len(trimmed)
		isList := strings.HasSuffix(trimmed, listOperator)
		name := trimmed
		if isList {
			name = strings.TrimSuffix(name, listOperator)
		}
		id := terms.intern(name)
		spans = append(spans, &Span{
			Boundary: Boundary{start, end},
			Subject:  NewTermSubject(id, isList),
			parent:   parent,
		})
		sc.ReadWhitespace()
		if !sc.Read(combinatorToken) {
			break
		}
	}
	return spans
}

func (st *Statement) tryReadJoint(sc *Scanner) {
	if !sc.PeekByte(':') {
		return
	}
	pos := sc.Pos()
	rest := sc.Rest()
	if len(rest) == 1 {
		sc.Read(jointToken)
		st.JointPosition = pos
		return
	}
	if rest[1] == ' ' || rest[1] == '\t' {
		sc.Read(jointToken)
		st.JointPosition = pos
	}
}

func (st *Statement) finalizeFlags() {
	switch {
	case st.JointPosition >= 0 && len(st.AllDeclarations) == 0 && len(st.AllAnnotations) == 0:
		st.AllDeclarations = append(st.AllDeclarations, &Span{
			Boundary: Boundary{st.JointPosition, st.JointPosition},
			Subject:  Void,
			parent:   st,
		})
		st.IsVacuous = true
	case st.JointPosition >= 0 && len(st.AllDeclarations) > 0 && len(st.AllAnnotations) == 0:
		st.IsRefresh = true
	}
}

func (st *Statement) runPostParseValidations() {
	seen := map[TermID]bool{}
	for _, d := range st.AllDeclarations {
		id, ok := d.Subject.TermID()
		if !ok {
			continue
		}
		if seen[id] {
			st.addFault(NewFault(FaultDuplicateDeclaration, d))
		} else {
			seen[id] = true
		}
	}

	declHasList := false
	for _, d := range st.AllDeclarations {
		if d.Subject.IsList() {
			declHasList = true
			break
		}
	}
	if declHasList {
		for _, a := range st.AllAnnotations {
			if a.Subject.IsList() {
				st.addFault(NewFault(FaultListIntrinsicExtendingList, a))
			}
		}
	}
}

func annotationTexts(spans []*Span, terms *termTable) []string {
	texts := make([]string, len(spans))
	for i, s := range spans {
		texts[i] = s.Subject.String(terms)
	}
	return texts
}
