package truth

import (
	"hash/crc32"
	"sort"
	"strings"
)

// patternCRCTable is the IEEE CRC-32 table used to fingerprint a pattern's
// annotation list, grounded on the same table construction the reference
// stream codec uses for frame checksums.
var patternCRCTable = crc32.MakeTable(crc32.IEEE)

// computePatternCRC fingerprints a pattern's sorted, terminator-joined
// annotation texts (spec §4.3: "A pattern's CRC is computed over the
// sorted, terminator-joined annotation texts").
func computePatternCRC(annotationTexts []string) uint32 {
	sorted := append([]string(nil), annotationTexts...)
	sort.Strings(sorted)
	joined := strings.Join(sorted, "\x1f")
	return crc32.Checksum([]byte(joined), patternCRCTable)
}
