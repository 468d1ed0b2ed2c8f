package truth

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RegexUnitKind discriminates the variants a pattern's body parses into
// (spec §4.3).
type RegexUnitKind uint8

const (
	RegexGrapheme RegexUnitKind = iota
	RegexSign
	RegexSet
	RegexGroup
	RegexInfix
)

// RuneRange is an inclusive character range inside a Set unit (`a-z`).
type RuneRange struct {
	Lo, Hi rune
}

// Quantifier attaches a repetition count to the preceding RegexUnit.
type Quantifier struct {
	Min, Max   int // Max == -1 means unbounded
	Restrained bool
}

// RegexUnit is one element of a pattern's body: a literal grapheme, a named
// sign class, a character set, an alternation group, or a top-level infix
// hole (spec §4.3).
type RegexUnit struct {
	Kind         RegexUnitKind
	Text         string // literal text for Grapheme/Sign
	Negated      bool   // Set: leading '^'
	Ranges       []RuneRange
	Classes      []string // known sign classes nested inside a Set
	Alternatives [][]RegexUnit
	Infix        *InfixSpan
	Quantifier   *Quantifier
}

// Pattern is the parsed form of a `/.../ ` declaration: a regex unit
// sequence, its totality, and the CRC of its owning statement's annotation
// list (spec §3, §4.3).
type Pattern struct {
	Text  string
	Units []RegexUnit
	Total bool

	crc uint32
	re  *regexp.Regexp
}

// CRC returns the pattern's annotation-list fingerprint. It is zero until
// ComputeCRC has been called by the statement parser.
func (p *Pattern) CRC() uint32 { return p.crc }

// ComputeCRC fingerprints the pattern against its statement's annotation
// texts (spec §4.3).
func (p *Pattern) ComputeCRC(annotationTexts []string) {
	p.crc = computePatternCRC(annotationTexts)
}

// Matches reports whether s satisfies the compiled pattern. A total
// pattern must match s in full; a partial pattern need only match a
// prefix of s.
func (p *Pattern) Matches(s string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(s)
}

// ParsePattern parses a `/…/` pattern starting at the scanner's current
// position (which must be the opening delimiter). It returns nil only when
// the scanner is not at the opening delimiter. Malformed input adds a
// PatternInvalid fault; the returned Pattern has no matcher only when the
// translated regular expression fails to compile.
func ParsePattern(sc *Scanner, terms *termTable, statement *Statement) (*Pattern, []Fault) {
	start := sc.Pos()
	if !sc.Read(patternDelim) {
		return nil, nil
	}
	units, faults := parseRegexBody(sc, terms, statement, true, patternDelim)
	total := sc.Read(patternDelim)
	text := statement.SourceText[start:sc.Pos()]

	if len(units) == 0 {
		faults = append(faults, NewFault(FaultPatternInvalid, statement))
	}

	p := &Pattern{Text: text, Units: units, Total: total}
	body := unitsToRegexString(units)
	reStr := "^" + body
	if total {
		reStr += "$"
	}
	re, err := regexp.Compile(reStr)
	if err != nil {
		faults = append(faults, NewFault(FaultPatternInvalid, statement))
	} else {
		p.re = re
		if p.Matches("") {
			faults = append(faults, NewFault(FaultPatternCanMatchEmpty, statement))
		}
		if !total && p.Matches(combinatorToken) {
			faults = append(faults, NewFault(FaultPatternPartialWithCombinator, statement))
		}
	}
	return p, faults
}

// parseRegexBody parses a sequence of RegexUnits until one of breaks is
// seen at the top of the scanner, or end of input. allowInfix restricts
// infix-hole recognition to the top level of a pattern (spec §4.3: "at the
// top level only").
func parseRegexBody(sc *Scanner, terms *termTable, statement *Statement, allowInfix bool, breaks ...string) ([]RegexUnit, []Fault) {
	var units []RegexUnit
	var faults []Fault
	lastWasQuantifier := false

	for sc.More() {
		broke := false
		for _, b := range breaks {
			if sc.Peek(b) {
				broke = true
				break
			}
		}
		if broke {
			break
		}

		switch {
		case sc.Peek("("):
			sc.Read("(")
			group, gfaults := parseGroup(sc, terms, statement)
			units = append(units, group)
			faults = append(faults, gfaults...)
			lastWasQuantifier = false

		case sc.Peek("["):
			sc.Read("[")
			set, ok, sfaults := parseSet(sc, statement)
			faults = append(faults, sfaults...)
			if ok {
				units = append(units, set)
			}
			lastWasQuantifier = false

		case allowInfix && sc.Peek("<"):
			infix, ifaults := parseInfix(sc, terms, statement)
			faults = append(faults, ifaults...)
			if infix != nil {
				units = append(units, RegexUnit{Kind: RegexInfix, Infix: infix})
			}
			lastWasQuantifier = false

		case isQuantifierStart(sc):
			q, ok := readQuantifier(sc)
			if !ok {
				sc.SetPos(sc.Pos() + 1)
				continue
			}
			if lastWasQuantifier || len(units) == 0 {
				faults = append(faults, NewFault(FaultPatternInvalid, statement))
			} else {
				units[len(units)-1].Quantifier = q
			}
			lastWasQuantifier = true

		default:
			if sign, ok := trySign(sc); ok {
				units = append(units, sign)
				lastWasQuantifier = false
				continue
			}
			g, ok := sc.ReadGrapheme()
			if !ok {
				sc.SetPos(sc.Pos() + 1)
				continue
			}
			units = append(units, RegexUnit{Kind: RegexGrapheme, Text: g.Text})
			lastWasQuantifier = false
		}
	}
	return units, faults
}

func parseGroup(sc *Scanner, terms *termTable, statement *Statement) (RegexUnit, []Fault) {
	var alts [][]RegexUnit
	var faults []Fault
	for {
		units, ufaults := parseRegexBody(sc, terms, statement, false, "|", ")")
		faults = append(faults, ufaults...)
		alts = append(alts, units)
		if sc.Read("|") {
			continue
		}
		if sc.Read(")") {
			break
		}
		faults = append(faults, NewFault(FaultPatternInvalid, statement))
		break
	}
	return RegexUnit{Kind: RegexGroup, Alternatives: alts}, faults
}

func parseSet(sc *Scanner, statement *Statement) (RegexUnit, bool, []Fault) {
	unit := RegexUnit{Kind: RegexSet}
	if sc.Read("^") {
		unit.Negated = true
	}
	for sc.More() && !sc.Peek("]") {
		if sign, ok := trySign(sc); ok {
			unit.Classes = append(unit.Classes, sign.Text)
			continue
		}
		g, ok := sc.ReadGrapheme()
		if !ok {
			break
		}
		lo := firstRune(g.Text)
		if sc.Peek("-") && !sc.Peek("-]") {
			sc.Read("-")
			g2, ok2 := sc.ReadGrapheme()
			if ok2 {
				unit.Ranges = append(unit.Ranges, RuneRange{Lo: lo, Hi: firstRune(g2.Text)})
				continue
			}
		}
		unit.Ranges = append(unit.Ranges, RuneRange{Lo: lo, Hi: lo})
	}
	if !sc.Read("]") {
		return unit, false, []Fault{NewFault(FaultPatternInvalid, statement)}
	}
	return unit, true, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// trySign recognizes a backslash-escaped regex sign class (\d, \D, \s, \S,
// \w, \W, \b, \B) — a pattern-level escape distinct from the statement-level
// escapes §4.1 defines for Scanner.ReadGrapheme.
func trySign(sc *Scanner) (RegexUnit, bool) {
	if !sc.PeekByte('\\') {
		return RegexUnit{}, false
	}
	rest := sc.Rest()
	if len(rest) < 2 || strings.IndexByte("dDsSwWbB", rest[1]) < 0 {
		return RegexUnit{}, false
	}
	sc.SetPos(sc.Pos() + 2)
	return RegexUnit{Kind: RegexSign, Text: "\\" + string(rest[1])}, true
}

func isQuantifierStart(sc *Scanner) bool {
	if !sc.More() {
		return false
	}
	switch sc.text[sc.pos] {
	case '*', '+', '{':
		return true
	}
	return false
}

func readQuantifier(sc *Scanner) (*Quantifier, bool) {
	switch {
	case sc.Read("*"):
		q := &Quantifier{Min: 0, Max: -1}
		maybeRestrain(sc, q)
		return q, true
	case sc.Read("+"):
		q := &Quantifier{Min: 1, Max: -1}
		maybeRestrain(sc, q)
		return q, true
	case sc.PeekByte('{'):
		start := sc.Pos()
		sc.Read("{")
		body := sc.ReadUntil('}')
		if !sc.Read("}") {
			sc.SetPos(start)
			return nil, false
		}
		min, max, ok := parseBraceQuantifier(body)
		if !ok {
			sc.SetPos(start)
			return nil, false
		}
		q := &Quantifier{Min: min, Max: max}
		maybeRestrain(sc, q)
		return q, true
	}
	return nil, false
}

func maybeRestrain(sc *Scanner, q *Quantifier) {
	if sc.Read("?") {
		q.Restrained = true
	}
}

func parseBraceQuantifier(body string) (min, max int, ok bool) {
	parts := strings.SplitN(body, ",", 2)
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	if len(parts) == 1 {
		return n, n, true
	}
	rest := strings.TrimSpace(parts[1])
	if rest == "" {
		return n, -1, true
	}
	m, err := strconv.Atoi(rest)
	if err != nil {
		return 0, 0, false
	}
	return n, m, true
}

func unitsToRegexString(units []RegexUnit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(unitToRegexString(u))
	}
	return b.String()
}

func unitToRegexString(u RegexUnit) string {
	var body string
	switch u.Kind {
	case RegexGrapheme:
		body = regexp.QuoteMeta(u.Text)
	case RegexSign:
		body = u.Text
	case RegexSet:
		body = setToRegexString(u)
	case RegexGroup:
		parts := make([]string, len(u.Alternatives))
		for i, alt := range u.Alternatives {
			parts[i] = unitsToRegexString(alt)
		}
		body = "(?:" + strings.Join(parts, "|") + ")"
	case RegexInfix:
		// An infix hole matches whatever the type it is constrained to
		// would accept; lacking a resolved type here, it is treated as a
		// permissive hole so totality/compilation can proceed.
		body = "(?:.*)"
	}
	if u.Quantifier != nil {
		body += quantifierToRegexString(*u.Quantifier)
	}
	return body
}

func setToRegexString(u RegexUnit) string {
	var b strings.Builder
	b.WriteString("[")
	if u.Negated {
		b.WriteString("^")
	}
	for _, c := range u.Classes {
		b.WriteString(c)
	}
	for _, r := range u.Ranges {
		if r.Lo == r.Hi {
			b.WriteString(regexp.QuoteMeta(string(r.Lo)))
		} else {
			b.WriteString(regexp.QuoteMeta(string(r.Lo)))
			b.WriteString("-")
			b.WriteString(regexp.QuoteMeta(string(r.Hi)))
		}
	}
	b.WriteString("]")
	return b.String()
}

func quantifierToRegexString(q Quantifier) string {
	var s string
	switch {
	case q.Min == 0 && q.Max == -1:
		s = "*"
	case q.Min == 1 && q.Max == -1:
		s = "+"
	case q.Max == -1:
		s = fmt.Sprintf("{%d,}", q.Min)
	case q.Min == q.Max:
		s = fmt.Sprintf("{%d}", q.Min)
	default:
		s = fmt.Sprintf("{%d,%d}", q.Min, q.Max)
	}
	if q.Restrained {
		s += "?"
	}
	return s
}
