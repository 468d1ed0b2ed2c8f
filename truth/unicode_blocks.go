package truth

import "unicode"

// unicodeBlocks is the registered set of Unicode block names the scanner
// recognizes inside a `\u{NAME}` escape (spec §4.1). A match produces a
// block-reference Grapheme rather than a literal character.
var unicodeBlocks = map[string]*unicode.RangeTable{
	"Latin":      unicode.Latin,
	"Greek":      unicode.Greek,
	"Cyrillic":   unicode.Cyrillic,
	"Armenian":   unicode.Armenian,
	"Hebrew":     unicode.Hebrew,
	"Arabic":     unicode.Arabic,
	"Devanagari": unicode.Devanagari,
	"Bengali":    unicode.Bengali,
	"Han":        unicode.Han,
	"Hiragana":   unicode.Hiragana,
	"Katakana":   unicode.Katakana,
	"Hangul":     unicode.Hangul,
	"Thai":       unicode.Thai,
	"Georgian":   unicode.Georgian,
	"Common":     unicode.Common,
}

func isRegisteredBlock(name string) bool {
	_, ok := unicodeBlocks[name]
	return ok
}

// BlockRangeTable returns the rune range table for a registered block name.
func BlockRangeTable(name string) (*unicode.RangeTable, bool) {
	rt, ok := unicodeBlocks[name]
	return rt, ok
}
