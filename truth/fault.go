package truth

import (
	"fmt"
	"strings"
)

// Severity classifies a Fault's impact on downstream type analysis (spec
// §3, §7, §8).
type Severity uint8

const (
	SeverityHint Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// FaultCode is a closed enumeration of the fault catalogue (spec §4.8).
type FaultCode uint16

const (
	FaultTabsAndSpaces FaultCode = iota
	FaultStatementBeginsWithComma
	FaultStatementBeginsWithEllipsis
	FaultStatementBeginsWithEscapedSpace
	FaultStatementContainsOnlyEscapeCharacter
	FaultDuplicateDeclaration
	FaultListIntrinsicExtendingList
	FaultPatternInvalid
	FaultPatternWithoutAnnotation
	FaultPatternCanMatchEmpty
	FaultPatternPartialWithCombinator
	FaultInfixDuplicateIdentifier
	FaultInfixSelfReferentialType
	FaultInfixListOperatorInIdentifier
	FaultInfixPopulationMultipleDeclarations
	FaultInfixPortabilityMultipleDefinitions
	FaultInfixHoleUsesListOperator
	FaultDuplicateReference
	FaultUnresolvedResource
	FaultInsecureResourceReference
	FaultCircularResourceReference
)

type faultKindInfo struct {
	message  string
	severity Severity
}

var faultCatalogue = map[FaultCode]faultKindInfo{
	FaultTabsAndSpaces:                         {"Statement indent mixes tabs and spaces", SeverityWarning},
	FaultStatementBeginsWithComma:               {"Statement begins with a comma", SeverityError},
	FaultStatementBeginsWithEllipsis:            {"Statement begins with an ellipsis", SeverityError},
	FaultStatementBeginsWithEscapedSpace:        {"Statement begins with an escaped space", SeverityError},
	FaultStatementContainsOnlyEscapeCharacter:   {"Statement contains only an escape character", SeverityError},
	FaultDuplicateDeclaration:                   {"Duplicate declaration", SeverityError},
	FaultListIntrinsicExtendingList:             {"A list-marked annotation cannot extend a list-marked declaration", SeverityError},
	FaultPatternInvalid:                         {"Pattern is not well-formed", SeverityError},
	FaultPatternWithoutAnnotation:               {"Pattern has no annotation", SeverityWarning},
	FaultPatternCanMatchEmpty:                   {"Pattern can match the empty string", SeverityWarning},
	FaultPatternPartialWithCombinator:           {"Partial pattern matches the combinator character", SeverityWarning},
	FaultInfixDuplicateIdentifier:               {"Duplicate identifier within one infix side", SeverityError},
	FaultInfixSelfReferentialType:               {"Infix type appears on both sides", SeverityError},
	FaultInfixListOperatorInIdentifier:          {"List operator is not allowed in an infix identifier", SeverityError},
	FaultInfixPopulationMultipleDeclarations:    {"Population infix cannot have multiple declarations", SeverityError},
	FaultInfixPortabilityMultipleDefinitions:    {"Portability infix has multiple compatible definitions", SeverityError},
	FaultInfixHoleUsesListOperator:              {"Infix hole cannot use the list operator", SeverityError},
	FaultDuplicateReference:                     {"Duplicate URI reference", SeverityError},
	FaultUnresolvedResource:                     {"Unable to resolve referenced resource", SeverityError},
	FaultInsecureResourceReference:              {"Insecure reference to a file:// resource from a secure document", SeverityWarning},
	FaultCircularResourceReference:              {"Reference would create a dependency cycle", SeverityError},
}

// FaultSource is the closed set of things a Fault can point at: a
// Statement, a Span, or an InfixSpan (spec §3).
type FaultSource interface {
	isFaultSource()
}

func (*Statement) isFaultSource() {}
func (*Span) isFaultSource()      {}
func (*InfixSpan) isFaultSource() {}

// Fault is a value object describing one parse- or resolution-level
// problem. Identity is irrelevant; faults compare by value (spec §3).
type Fault struct {
	Code     FaultCode
	Severity Severity
	Message  string
	Source   FaultSource
}

// NewFault constructs a Fault from the catalogue, attaching source.
func NewFault(code FaultCode, source FaultSource) Fault {
	info := faultCatalogue[code]
	return Fault{Code: code, Severity: info.severity, Message: info.message, Source: source}
}

// IsError reports whether this fault excludes its source from type
// analysis (spec §4.8, §7: "Severity error excludes the source").
func (f Fault) IsError() bool { return f.Severity == SeverityError }

func (f Fault) hostStatement() *Statement {
	switch src := f.Source.(type) {
	case *Statement:
		return src
	case *Span:
		return src.parent
	case *InfixSpan:
		return src.parent
	default:
		return nil
	}
}

// Range computes the fault's 1-based [startCol, endCol] column range (spec
// §4.8).
func (f Fault) Range() (start, end int) {
	switch src := f.Source.(type) {
	case *Statement:
		if f.Code == FaultTabsAndSpaces {
			return 1, src.Indent + 1
		}
		return src.Indent + 1, len(src.SourceText) + 1
	case *Span:
		return src.Boundary.Start + 1, src.Boundary.End + 1
	case *InfixSpan:
		return src.Boundary.Start + 1, src.Boundary.End + 1
	default:
		return 0, 0
	}
}

// Render formats the fault in the canonical single-line form (spec §6):
//
//	"<message> (<uri-store-form-or-empty> Line <1-based>, Col <startCol>-<endCol>)"
//
// docURI is the URI of the document the fault belongs to, or nil.
func (f Fault) Render(docURI *Uri) string {
	var b strings.Builder
	b.WriteString(f.Message)
	b.WriteString(" (")
	if docURI != nil && !docURI.IsSilentInFaultRendering() {
		b.WriteString(docURI.StoreString())
		b.WriteString(" ")
	}
	line := 0
	if stmt := f.hostStatement(); stmt != nil {
		line = stmt.line + 1
	}
	fmt.Fprintf(&b, "Line %d", line)
	startCol, endCol := f.Range()
	if startCol < endCol {
		fmt.Fprintf(&b, ", Col %d-%d", startCol, endCol)
	}
	b.WriteString(")")
	return b.String()
}

// faultDelta computes the symmetric difference between an old and a new
// fault multiset, in the order CauseFaultChange expects (spec §4.8, §6).
func faultDelta(oldSet, newSet []Fault) (added, removed []Fault) {
	countOld := make(map[Fault]int, len(oldSet))
	for _, f := range oldSet {
		countOld[f]++
	}
	countNew := make(map[Fault]int, len(newSet))
	for _, f := range newSet {
		countNew[f]++
	}
	for _, f := range newSet {
		if countNew[f] > countOld[f] {
			added = append(added, f)
			countNew[f]-- // consume one occurrence of the surplus
		}
	}
	for _, f := range oldSet {
		if countOld[f] > countNew[f] {
			removed = append(removed, f)
			countOld[f]--
		}
	}
	return added, removed
}
