package refdata

import "strings"

// JPX market segment names as they appear in the exchange's issue list,
// mapped to the short codes stored in the instrument master.
var segmentCodes = map[string]string{
	"プライム（内国株式）":    "P",
	"スタンダード（内国株式）":  "S",
	"スタンダード（外国株式）":  "S",
	"グロース（内国株式）":    "G",
	"グロース（外国株式）":    "G",
	"PRO Market":    "Pro",
	"ETF・ETN":       "E",
	"REIT・ベンチャーファンド・カントリーファンド・インフラファンド": "R",
	"出資証券": "Y",
}

// NormalizeSegment maps a full segment name to its short code. Values that
// are already short codes pass through; unknown names are returned unchanged
// so they surface in the master instead of being silently dropped.
func NormalizeSegment(s string) string {
	s = strings.TrimSpace(s)
	if code, ok := segmentCodes[s]; ok {
		return code
	}
	return s
}

// normalizeName narrows full-width ASCII letters, digits and punctuation to
// their half-width forms. Katakana is left full-width.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0xFF01 && r <= 0xFF5E:
			r = r - 0xFF01 + '!'
		case r == 0x3000: // ideographic space
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}
