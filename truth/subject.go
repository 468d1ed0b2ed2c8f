package truth

// SubjectKind discriminates the tagged union that a Subject carries (spec
// §3: "one of Term, Pattern, Uri, or void").
type SubjectKind uint8

const (
	SubjectVoid SubjectKind = iota
	SubjectTerm
	SubjectPattern
	SubjectUri
)

func (k SubjectKind) String() string {
	switch k {
	case SubjectVoid:
		return "void"
	case SubjectTerm:
		return "term"
	case SubjectPattern:
		return "pattern"
	case SubjectUri:
		return "uri"
	default:
		return "unknown"
	}
}

// Subject is the tagged union a declaration or annotation resolves to: a
// Term, a Pattern, a Uri, or void (used when a statement has a joint but no
// declarations). Subjects are small value types; equality is variant- and
// payload-sensitive (spec §3).
type Subject struct {
	kind    SubjectKind
	termID  TermID
	isList  bool
	pattern *Pattern
	uri     *Uri
}

// Void is the subject of a vacuous statement's sole declaration.
var Void = Subject{kind: SubjectVoid}

// NewTermSubject builds a Term subject for an interned spelling.
func NewTermSubject(id TermID, isList bool) Subject {
	return Subject{kind: SubjectTerm, termID: id, isList: isList}
}

// NewPatternSubject builds a Pattern subject.
func NewPatternSubject(p *Pattern) Subject {
	return Subject{kind: SubjectPattern, pattern: p}
}

// NewUriSubject builds a Uri subject.
func NewUriSubject(u *Uri) Subject {
	return Subject{kind: SubjectUri, uri: u}
}

func (s Subject) Kind() SubjectKind { return s.kind }
func (s Subject) IsVoid() bool      { return s.kind == SubjectVoid }

// TermID returns the interned id of a Term subject.
func (s Subject) TermID() (TermID, bool) {
	if s.kind != SubjectTerm {
		return 0, false
	}
	return s.termID, true
}

// IsList reports whether a Term subject carries the list-operator marker.
func (s Subject) IsList() bool {
	return s.kind == SubjectTerm && s.isList
}

// Pattern returns the payload of a Pattern subject.
func (s Subject) Pattern() (*Pattern, bool) {
	if s.kind != SubjectPattern {
		return nil, false
	}
	return s.pattern, true
}

// Uri returns the payload of a Uri subject.
func (s Subject) Uri() (*Uri, bool) {
	if s.kind != SubjectUri {
		return nil, false
	}
	return s.uri, true
}

// Equal reports whether two subjects are the same variant with the same
// payload (spec §3: "Two subjects are equal iff same variant and same
// payload").
func (s Subject) Equal(o Subject) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case SubjectVoid:
		return true
	case SubjectTerm:
		return s.termID == o.termID && s.isList == o.isList
	case SubjectPattern:
		return s.pattern != nil && o.pattern != nil && s.pattern.crc == o.pattern.crc
	case SubjectUri:
		return s.uri != nil && o.uri != nil && s.uri.Equal(o.uri)
	default:
		return false
	}
}

// String renders the subject using the given term table for Term spellings.
func (s Subject) String(terms *termTable) string {
	switch s.kind {
	case SubjectVoid:
		return ""
	case SubjectTerm:
		sp := terms.spelling(s.termID)
		if s.isList {
			return sp + listOperator
		}
		return sp
	case SubjectPattern:
		if s.pattern != nil {
			return s.pattern.Text
		}
		return ""
	case SubjectUri:
		if s.uri != nil {
			return s.uri.StoreString()
		}
		return ""
	default:
		return ""
	}
}
