package truth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner is a cursor over a single statement's source text, used by the
// statement parser and the regex/pattern sub-parser (spec §4.1).
type Scanner struct {
	text string
	pos  int
}

// NewScanner creates a Scanner positioned at the start of text.
func NewScanner(text string) *Scanner {
	return &Scanner{text: text}
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.pos }

// SetPos rewinds or advances the cursor to an absolute offset.
func (s *Scanner) SetPos(pos int) { s.pos = pos }

// More reports whether there is unread input.
func (s *Scanner) More() bool { return s.pos < len(s.text) }

// Rest returns the unread remainder of the text.
func (s *Scanner) Rest() string { return s.text[s.pos:] }

// Peek reports whether tok occurs at the cursor without consuming it.
func (s *Scanner) Peek(tok string) bool {
	return strings.HasPrefix(s.Rest(), tok)
}

// PeekByte reports whether the next byte equals b.
func (s *Scanner) PeekByte(b byte) bool {
	return s.More() && s.text[s.pos] == b
}

// Read advances the cursor past tok iff tok occurs at the cursor.
func (s *Scanner) Read(tok string) bool {
	if s.Peek(tok) {
		s.pos += len(tok)
		return true
	}
	return false
}

// ReadThenTerminal reads tok only if it is immediately followed by
// end-of-input (spec §4.1, used for the joint operator at end of line).
func (s *Scanner) ReadThenTerminal(tok string) bool {
	if strings.HasPrefix(s.Rest(), tok) && len(s.Rest()) == len(tok) {
		s.pos += len(tok)
		return true
	}
	return false
}

// ReadUntil consumes and returns text up to (not including) the first byte
// in delims, or to end-of-input if none occurs.
func (s *Scanner) ReadUntil(delims ...byte) string {
	start := s.pos
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		for _, d := range delims {
			if c == d {
				return s.text[start:s.pos]
			}
		}
		s.pos++
	}
	return s.text[start:s.pos]
}

// ReadWhitespace consumes a run of tabs and spaces and returns it.
func (s *Scanner) ReadWhitespace() string {
	start := s.pos
	for s.pos < len(s.text) && (s.text[s.pos] == ' ' || s.text[s.pos] == '\t') {
		s.pos++
	}
	return s.text[start:s.pos]
}

// ReadGrapheme reads one user-perceived character: an escape sequence, or a
// base rune plus any trailing combining marks. It respects multi-byte UTF-8
// sequences (the Go-native analog of the spec's "surrogate pairs").
func (s *Scanner) ReadGrapheme() (Grapheme, bool) {
	if !s.More() {
		return Grapheme{}, false
	}
	if s.text[s.pos] == escapeChar {
		g, n, ok := decodeEscape(s.text[s.pos+1:])
		if !ok {
			return Grapheme{}, false
		}
		s.pos += 1 + n
		return g, true
	}
	r, size := utf8.DecodeRuneInString(s.Rest())
	if r == utf8.RuneError && size <= 1 {
		return Grapheme{}, false
	}
	end := s.pos + size
	for end < len(s.text) {
		r2, size2 := utf8.DecodeRuneInString(s.text[end:])
		if !unicode.In(r2, unicode.Mn, unicode.Me, unicode.Mc) {
			break
		}
		end += size2
	}
	text := s.text[s.pos:end]
	s.pos = end
	return Grapheme{Text: text}, true
}
