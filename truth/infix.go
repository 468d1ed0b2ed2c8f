package truth

import "strings"

// InfixSpan is a `<…>` / `<<…>>` / `</…/>` hole inside a pattern's body
// (spec §4.3). Its body parses the same declarations-joint-annotations
// shape as a top-level statement, scoped to the hole.
type InfixSpan struct {
	Boundary     Boundary
	Nominal      bool // </…/>
	PatternHole  bool // <<…>>
	Portability  bool // joint with no left side
	HasJoint     bool
	Declarations []Subject
	Annotations  []Subject

	parent *Statement
	faults []Fault
}

func (i *InfixSpan) Statement() *Statement { return i.parent }

// parseInfix parses one infix hole starting at one of the three opening
// delimiters. The scanner must be positioned at '<'.
func parseInfix(sc *Scanner, terms *termTable, statement *Statement) (*InfixSpan, []Fault) {
	start := sc.Pos()
	span := &InfixSpan{parent: statement}
	var closer string
	switch {
	case sc.Read("<<"):
		span.PatternHole = true
		closer = ">>"
	case sc.Read("</"):
		span.Nominal = true
		closer = "/>"
	case sc.Read("<"):
		closer = ">"
	default:
		return nil, nil
	}

	body := sc.ReadUntil('>')
	if span.Nominal && strings.HasSuffix(body, "/") {
		// The "/" of the "/>" closer was read as part of the body.
		body = body[:len(body)-1]
		sc.SetPos(sc.Pos() - 1)
	}
	if !sc.Read(closer) {
		span.Boundary = Boundary{start, sc.Pos()}
		span.faults = append(span.faults, NewFault(FaultPatternInvalid, statement))
		return span, span.faults
	}
	span.Boundary = Boundary{start, sc.Pos()}
	parseInfixBody(span, body, terms)
	validateInfix(span)
	return span, span.faults
}

func parseInfixBody(span *InfixSpan, body string, terms *termTable) {
	if strings.TrimSpace(body) == listOperator {
		span.faults = append(span.faults, NewFault(FaultInfixHoleUsesListOperator, span))
		return
	}
	bsc := NewScanner(body)
	if bsc.Read(jointToken) {
		span.Portability = true
		span.HasJoint = true
	} else {
		span.Declarations = readIdentifierList(bsc, terms, combinatorToken, jointToken)
		if bsc.Read(jointToken) {
			span.HasJoint = true
		}
	}
	if span.HasJoint {
		span.Annotations = readIdentifierList(bsc, terms, combinatorToken, "")
	}
}

func validateInfix(span *InfixSpan) {
	declared := map[TermID]bool{}
	for _, d := range span.Declarations {
		if id, ok := d.TermID(); ok {
			if declared[id] {
				span.faults = append(span.faults, NewFault(FaultInfixDuplicateIdentifier, span))
			}
			declared[id] = true
		}
		if d.IsList() {
			span.faults = append(span.faults, NewFault(FaultInfixListOperatorInIdentifier, span))
		}
	}
	annotated := map[TermID]bool{}
	for _, a := range span.Annotations {
		if id, ok := a.TermID(); ok {
			if annotated[id] {
				span.faults = append(span.faults, NewFault(FaultInfixDuplicateIdentifier, span))
			}
			annotated[id] = true
			if declared[id] {
				span.faults = append(span.faults, NewFault(FaultInfixSelfReferentialType, span))
			}
		}
		if a.IsList() {
			span.faults = append(span.faults, NewFault(FaultInfixListOperatorInIdentifier, span))
		}
	}
	if !span.Nominal && !span.PatternHole && !span.Portability && len(span.Declarations) > 1 {
		span.faults = append(span.faults, NewFault(FaultInfixPopulationMultipleDeclarations, span))
	}
	if span.Portability && len(span.Annotations) > 1 {
		span.faults = append(span.faults, NewFault(FaultInfixPortabilityMultipleDefinitions, span))
	}
}

// readIdentifierList reads terms separated by sep, stopping at stop (if
// non-empty) or end of input. A trailing "..." marks a term list-valued.
// Shared by infix bodies and the statement parser's declaration/annotation
// lists (spec §4.2, §4.3).
func readIdentifierList(sc *Scanner, terms *termTable, sep, stop string) []Subject {
	var subs []Subject
	for {
		sc.ReadWhitespace()
		if !sc.More() {
			break
		}
		if stop != "" && sc.Peek(stop) {
			break
		}
		delims := []byte{sep[0]}
		if stop != "" {
			delims = append(delims, stop[0])
		}
		ident := strings.TrimSpace(sc.ReadUntil(delims...))
		if ident == "" {
			break
		}
		isList := strings.HasSuffix(ident, listOperator)
		name := ident
		if isList {
			name = strings.TrimSuffix(ident, listOperator)
		}
		id := terms.intern(name)
		subs = append(subs, NewTermSubject(id, isList))
		sc.ReadWhitespace()
		if !sc.Read(sep) {
			break
		}
	}
	return subs
}
