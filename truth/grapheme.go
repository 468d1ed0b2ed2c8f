package truth

import (
	"strconv"
	"strings"
)

// Grapheme is one user-perceived character read from a statement's source
// text, tagged with whether it came from an escape sequence (spec §4.1).
type Grapheme struct {
	Text    string
	Escaped bool
	// Block is set when the grapheme denotes a \u{NAME} Unicode block
	// reference rather than a literal character.
	Block string
}

// IsBlockReference reports whether this grapheme is a block reference
// rather than a literal character.
func (g Grapheme) IsBlockReference() bool { return g.Block != "" }

// decodeEscape consumes the text immediately following a '\' and returns
// the resulting Grapheme plus the number of bytes consumed from rest (not
// counting the leading backslash itself).
func decodeEscape(rest string) (Grapheme, int, bool) {
	if rest == "" {
		// A bare trailing backslash at end of stream is the literal
		// backslash (spec §4.1).
		return Grapheme{Text: `\`}, 0, true
	}
	switch rest[0] {
	case ' ', '\t', ',', '\\':
		return Grapheme{Text: string(rest[0]), Escaped: true}, 1, true
	}
	if strings.HasPrefix(rest, listOperator) {
		return Grapheme{Text: listOperator, Escaped: true}, len(listOperator), true
	}
	if strings.HasPrefix(rest, "u{") {
		close := strings.IndexByte(rest[2:], '}')
		if close < 0 {
			return Grapheme{}, 0, false
		}
		name := rest[2 : 2+close]
		consumed := 2 + close + 1
		if isLowerHex(name) && len(name) >= 1 && len(name) <= 5 {
			cp, err := strconv.ParseInt(name, 16, 32)
			if err == nil && cp >= 0 && cp <= 0x10FFFF {
				return Grapheme{Text: string(rune(cp)), Escaped: true}, consumed, true
			}
		}
		if isRegisteredBlock(name) {
			return Grapheme{Block: name, Escaped: true}, consumed, true
		}
		return Grapheme{}, 0, false
	}
	return Grapheme{}, 0, false
}

func isLowerHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}
